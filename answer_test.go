package pagerscot_test

import (
	"github.com/alexandre-normand/pagerscot"
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestApplyAnswerOptions(t *testing.T) {
	testCases := []struct {
		name           string
		options        []pagerscot.AnswerOption
		expectedConfig map[string]string
	}{
		{"none", []pagerscot.AnswerOption{}, make(map[string]string)},
		{"threadedReply", []pagerscot.AnswerOption{pagerscot.AnswerInThread()}, map[string]string{pagerscot.ThreadedReplyOpt: "true"}},
		{"threadedReplyWithBroadcast", []pagerscot.AnswerOption{pagerscot.AnswerInThreadWithBroadcast()}, map[string]string{pagerscot.ThreadedReplyOpt: "true", pagerscot.BroadcastOpt: "true"}},
		{"threadedReplyWithoutBroadcast", []pagerscot.AnswerOption{pagerscot.AnswerInThreadWithoutBroadcast()}, map[string]string{pagerscot.ThreadedReplyOpt: "true", pagerscot.BroadcastOpt: "false"}},
		{"noThreading", []pagerscot.AnswerOption{pagerscot.AnswerWithoutThreading()}, map[string]string{pagerscot.ThreadedReplyOpt: "false"}},
		{"threadReplyOnExistingThread", []pagerscot.AnswerOption{pagerscot.AnswerInExistingThread("1000")}, map[string]string{pagerscot.ThreadedReplyOpt: "true", pagerscot.ThreadTimestamp: "1000"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := pagerscot.ApplyAnswerOpts(tc.options...)
			assert.Equal(t, tc.expectedConfig, c)
		})
	}
}
