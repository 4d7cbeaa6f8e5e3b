// Package capture provides captors standing in for the services the bot injects into plugins
package capture

import (
	"github.com/slack-go/slack"
	"sync"
)

// RealTimeSenderCaptor holds messages sent to it keyed
// by channel ID
type RealTimeSenderCaptor struct {
	mu sync.Mutex

	// SentMessages holds the text of messages created for sending, by channel ID
	SentMessages map[string][]string

	// Messages holds the messages actually sent, in order
	Messages []*slack.OutgoingMessage
}

// NewRealTimeSender returns a new initialized RealTimeSenderCaptor instance
func NewRealTimeSender() (rtms *RealTimeSenderCaptor) {
	rtms = new(RealTimeSenderCaptor)
	rtms.SentMessages = make(map[string][]string)
	rtms.Messages = make([]*slack.OutgoingMessage, 0)

	return rtms
}

// NewOutgoingMessage captures the details of a sent message (the message itself and the channel it's sent to)
// The returned OutgoingMessage has the channel ID, the text and the options applied on it
func (rtms *RealTimeSenderCaptor) NewOutgoingMessage(text string, channelID string, options ...slack.RTMsgOption) *slack.OutgoingMessage {
	rtms.mu.Lock()
	defer rtms.mu.Unlock()

	rtms.SentMessages[channelID] = append(rtms.SentMessages[channelID], text)

	om := &slack.OutgoingMessage{Type: "message", Channel: channelID, Text: text}
	for _, opt := range options {
		opt(om)
	}

	return om
}

// SendMessage captures the outgoing message
func (rtms *RealTimeSenderCaptor) SendMessage(outMsg *slack.OutgoingMessage) {
	rtms.mu.Lock()
	defer rtms.mu.Unlock()

	rtms.Messages = append(rtms.Messages, outMsg)
}

// Sent returns a copy of the messages sent so far
func (rtms *RealTimeSenderCaptor) Sent() (msgs []*slack.OutgoingMessage) {
	rtms.mu.Lock()
	defer rtms.mu.Unlock()

	msgs = make([]*slack.OutgoingMessage, len(rtms.Messages))
	copy(msgs, rtms.Messages)

	return msgs
}
