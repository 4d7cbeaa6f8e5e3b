/*
Package assertaction provides testing functions to validate a single command of a plugin, matching
and answering, without driving the whole plugin.

Example:

	assertaction.NotMatch(t, listUsers, &pagerscot.IncomingMessage{NormalizedText: "pager list"})
	assertaction.MatchesAndAnswers(t, list, &pagerscot.IncomingMessage{NormalizedText: "pager list"}, func(t *testing.T, a *pagerscot.Answer) bool {
		return assertanswer.HasText(t, a, "Found 0 active incidents")
	})
*/
package assertaction

import (
	"github.com/alexandre-normand/pagerscot"
	"github.com/stretchr/testify/assert"
	"testing"
)

// AnswerValidator validates the answer of a matching action. It returns true if validation is
// successful and false otherwise (following the testify convention)
type AnswerValidator func(t *testing.T, a *pagerscot.Answer) bool

// MatchesAndAnswers asserts that the action matches m and hands its answer to validateAnswer
func MatchesAndAnswers(t *testing.T, action pagerscot.ActionDefinition, m *pagerscot.IncomingMessage, validateAnswer AnswerValidator) bool {
	if !assert.Truef(t, action.Match(m), "Message [%s] expected to match [%s] but didn't", m.NormalizedText, action.Usage) {
		return false
	}

	return validateAnswer(t, action.Answer(m))
}

// NotMatch asserts that the action doesn't match m
func NotMatch(t *testing.T, action pagerscot.ActionDefinition, m *pagerscot.IncomingMessage) bool {
	return assert.Falsef(t, action.Match(m), "Message [%s] should not match [%s] but did", m.NormalizedText, action.Usage)
}
