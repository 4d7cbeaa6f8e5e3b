package pagerscot

import (
	"context"
	"fmt"
	"github.com/alexandre-normand/pagerscot/config"
	"github.com/slack-go/slack"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"strings"
)

// responseStrategy formats the text of an answer to an incoming message
type responseStrategy func(m *IncomingMessage, a *Answer) string

// processMessageEvent handles high-level processing of all slack message events. Only new messages from users
// are processed, edits and deletes are ignored
func (b *Bot) processMessageEvent(sender RealTimeMessageSender, msgEvent *slack.MessageEvent) {
	ctx := context.Background()
	b.coreMetrics.msgsSeen.Add(ctx, 1, metric.WithAttributes(attribute.String("name", b.name)))

	// reply_to is set by slack when a sent message has been acknowledged. Those are only meaningful for clients/UI
	isReply := msgEvent.ReplyTo > 0

	if isReply || msgEvent.Type != "message" || msgEvent.SubType != "" {
		b.log.Debugf("Ignoring event of type [%s] and sub type [%s]\n", msgEvent.Type, msgEvent.SubType)
		return
	}

	var outcome string
	d := measure(func() {
		inMsg, answers, rs := b.routeMessage(&msgEvent.Msg)
		for _, a := range answers {
			sender.SendMessage(b.newOutgoingMessage(sender, inMsg, a, rs))
		}

		outcome = outcomeOf(answers)
	})

	attrs := metric.WithAttributes(attribute.String("name", b.name), attribute.String("outcome", outcome))
	b.coreMetrics.msgsProcessed.Add(ctx, 1, attrs)
	b.coreMetrics.msgProcessingLatencyMillis.Record(ctx, d.Milliseconds(), attrs)
}

// routeMessage handles routing the message to commands according to the context. The rules are the following:
//  1. If the message is on a channel with a direct mention to us (@name), we route to commands
//  2. If the message is a direct message to us, we route to commands
//  3. Anything else is ignored
//
// When no command answers, the default answer is returned
func (b *Bot) routeMessage(m *slack.Msg) (inMsg *IncomingMessage, answers []*Answer, rs responseStrategy) {
	// Ignore messages sent by "us"
	if b.selfID != "" && (m.User == b.selfID || m.BotID == b.selfID) {
		b.log.Debugf("Ignoring message from user [%s] because that's \"us\" [%s]\n", m.User, b.selfID)
		return nil, nil, nil
	}

	if b.selfMentionRe != nil {
		if matches := b.selfMentionRe.FindStringSubmatch(m.Text); len(matches) == 3 {
			inMsg = &IncomingMessage{NormalizedText: matches[2], Msg: *m}
			return inMsg, handleCommand(b.defaultAction, b.commands, inMsg), reply
		}
	}

	if strings.HasPrefix(m.Channel, "D") {
		inMsg = &IncomingMessage{NormalizedText: m.Text, Direct: true, Msg: *m}
		return inMsg, handleCommand(b.defaultAction, b.commands, inMsg), directReply
	}

	return nil, nil, nil
}

// handleCommand tries a match with all known actions. If no action answers, the default action is invoked
func handleCommand(defaultAnswer Answerer, actions []ActionDefinition, m *IncomingMessage) (answers []*Answer) {
	answers = handleMessage(actions, m)
	if len(answers) == 0 {
		return []*Answer{defaultAnswer(m)}
	}

	return answers
}

// handleMessage loops over all action definitions and invokes their answerer if the incoming message matches.
// Note that more than one action can be triggered during the processing of a single message
func handleMessage(actions []ActionDefinition, m *IncomingMessage) (answers []*Answer) {
	answers = make([]*Answer, 0)

	for _, action := range actions {
		if action.Match(m) {
			if a := action.Answer(m); a != nil {
				answers = append(answers, a)
			}
		}
	}

	return answers
}

// reply addresses the answer to the user (using @user) who sent the message
func reply(m *IncomingMessage, a *Answer) string {
	return fmt.Sprintf("<@%s>: %s", m.User, a.Text)
}

// directReply answers a direct message as is
func directReply(m *IncomingMessage, a *Answer) string {
	return a.Text
}

// newOutgoingMessage creates the outgoing message for an answer, applying the threading configuration
// and the answer's options
func (b *Bot) newOutgoingMessage(sender RealTimeMessageSender, m *IncomingMessage, a *Answer, rs responseStrategy) *slack.OutgoingMessage {
	sendOpts := ApplyAnswerOpts(a.Options...)

	threaded := b.config.GetBool(config.ThreadedRepliesKey) || m.ThreadTimestamp != ""
	if v, ok := sendOpts[ThreadedReplyOpt]; ok {
		threaded = v == "true"
	}

	broadcast := b.config.GetBool(config.BroadcastThreadedRepliesKey)
	if v, ok := sendOpts[BroadcastOpt]; ok {
		broadcast = v == "true"
	}

	options := make([]slack.RTMsgOption, 0)
	if threaded {
		options = append(options, slack.RTMsgOptionTS(threadTimestampOf(m, sendOpts)))

		if broadcast {
			options = append(options, slack.RTMsgOptionBroadcast())
		}
	}

	return sender.NewOutgoingMessage(rs(m, a), m.Channel, options...)
}

// threadTimestampOf returns the timestamp of the thread to answer in. An explicit answer option wins over
// the thread of the incoming message. Without either, a new thread is started on the message
func threadTimestampOf(m *IncomingMessage, sendOpts map[string]string) string {
	if ts, ok := sendOpts[ThreadTimestamp]; ok && ts != "" {
		return ts
	}

	if m.ThreadTimestamp != "" {
		return m.ThreadTimestamp
	}

	return m.Timestamp
}

func outcomeOf(answers []*Answer) string {
	if len(answers) == 0 {
		return "ignored"
	}

	return "answered"
}
