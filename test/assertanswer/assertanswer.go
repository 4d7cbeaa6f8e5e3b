/*
Package assertanswer provides testing functions to validate the answers of a plugin command.

Example:

	assertanswer.HasText(t, answer, "Acknowledged incident `P1ZX2`")
	assertanswer.IsThreaded(t, answer, false)
*/
package assertanswer

import (
	"fmt"
	"github.com/alexandre-normand/pagerscot"
	"github.com/stretchr/testify/assert"
	"testing"
)

// ResolvedAnswerOption is an answer option as the engine sees it once applied (i.e. threadedReply=true)
type ResolvedAnswerOption struct {
	Key   string
	Value string
}

// HasText asserts that the answer's text is exactly text
func HasText(t *testing.T, answer *pagerscot.Answer, text string) bool {
	if !assert.NotNil(t, answer) {
		return false
	}

	return assert.Equalf(t, text, answer.Text, "Answer text expected to be [%s] but was [%s]", text, answer.Text)
}

// HasTextContaining asserts that the answer's text contains subString
func HasTextContaining(t *testing.T, answer *pagerscot.Answer, subString string) bool {
	if !assert.NotNil(t, answer) {
		return false
	}

	return assert.Containsf(t, answer.Text, subString, "Answer expected to have text containing [%s] but its text [%s] didn't", subString, answer.Text)
}

// HasOptions asserts that the answer resolves to exactly the given options
func HasOptions(t *testing.T, answer *pagerscot.Answer, options ...ResolvedAnswerOption) bool {
	if !assert.NotNil(t, answer) {
		return false
	}

	resolved := resolve(pagerscot.ApplyAnswerOpts(answer.Options...))
	return assert.ElementsMatchf(t, options, resolved, "Answer options expected %s but were %s", options, resolved)
}

// IsThreaded asserts that the answer goes in a thread, broadcast to the channel or not. Long listings
// (incidents, registered users) are answered that way
func IsThreaded(t *testing.T, answer *pagerscot.Answer, broadcast bool) bool {
	return HasOptions(t, answer,
		ResolvedAnswerOption{Key: pagerscot.ThreadedReplyOpt, Value: "true"},
		ResolvedAnswerOption{Key: pagerscot.BroadcastOpt, Value: fmt.Sprintf("%t", broadcast)})
}

func resolve(sendOpts map[string]string) (resolved []ResolvedAnswerOption) {
	resolved = make([]ResolvedAnswerOption, 0, len(sendOpts))

	for key, value := range sendOpts {
		resolved = append(resolved, ResolvedAnswerOption{Key: key, Value: value})
	}

	return resolved
}
