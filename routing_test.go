package pagerscot

import (
	"fmt"
	"github.com/alexandre-normand/pagerscot/config"
	"github.com/alexandre-normand/pagerscot/test/capture"
	"github.com/slack-go/slack"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"log"
	"strings"
	"testing"
)

type infoFinder struct {
}

func (i *infoFinder) GetInfo() (user *slack.Info) {
	return &slack.Info{User: &slack.UserDetails{ID: "BotUserID", Name: "chickadee"}}
}

type userInfoFinder struct {
	fail bool
}

func (u *userInfoFinder) GetUserInfo(userID string) (user *slack.User, err error) {
	if u.fail {
		return nil, fmt.Errorf("Error loading user [%s]", userID)
	}

	return &slack.User{ID: userID, Name: "Daniel Quinn"}, nil
}

func newMakerPlugin() (p *Plugin) {
	p = new(Plugin)
	p.Name = "maker"
	p.Commands = []ActionDefinition{{
		Match: func(m *IncomingMessage) bool {
			return strings.HasPrefix(m.NormalizedText, "make")
		},
		Usage:       "make `<something>`",
		Description: "Have the test bot make something for you",
		Answer: func(m *IncomingMessage) *Answer {
			return &Answer{Text: fmt.Sprintf("Make it yourself, @%s", m.User)}
		},
	}, {
		Hidden: true,
		Match: func(m *IncomingMessage) bool {
			return strings.HasPrefix(m.NormalizedText, "thread")
		},
		Answer: func(m *IncomingMessage) *Answer {
			return &Answer{Text: "In a thread", Options: []AnswerOption{AnswerInThreadWithBroadcast()}}
		},
	}, {
		Hidden: true,
		Match: func(m *IncomingMessage) bool {
			return strings.HasPrefix(m.NormalizedText, "silent")
		},
		Answer: func(m *IncomingMessage) *Answer {
			return nil
		},
	}}

	return p
}

func newTestBot(t *testing.T, v *viper.Viper) (b *Bot, logs *strings.Builder) {
	logs = new(strings.Builder)

	b, err := New("chickadee", v, OptionLog(log.New(logs, "", 0)), OptionMeter(noop.NewMeterProvider().Meter("test")))
	require.NoError(t, err)

	b.RegisterPlugin(newMakerPlugin())
	b.start(&userInfoFinder{}, capture.NewRealTimeSender())
	b.cacheSelfIdentity(&infoFinder{})

	return b, logs
}

func newMessageEvent(channel string, text string, user string) (msge *slack.MessageEvent) {
	msge = new(slack.MessageEvent)
	msge.Type = "message"
	msge.Channel = channel
	msge.User = user
	msge.Text = text
	msge.Timestamp = "1000.0"

	return msge
}

func TestRouting(t *testing.T) {
	tcs := []struct {
		name          string
		channel       string
		text          string
		user          string
		expectedTexts []string
	}{
		{"mentionCommand", "CGENERAL", "<@BotUserID> make me a sandwich", "U1", []string{"<@U1>: Make it yourself, @U1"}},
		{"mentionWithColon", "CGENERAL", "<@BotUserID>: make me a sandwich", "U1", []string{"<@U1>: Make it yourself, @U1"}},
		{"nameCommand", "CGENERAL", "chickadee make me a sandwich", "U1", []string{"<@U1>: Make it yourself, @U1"}},
		{"atNameCommand", "CGENERAL", "@chickadee make me a sandwich", "U1", []string{"<@U1>: Make it yourself, @U1"}},
		{"directMessage", "DPRIVATE", "make me a sandwich", "U1", []string{"Make it yourself, @U1"}},
		{"unknownCommand", "CGENERAL", "<@BotUserID> fly", "U1", []string{"<@U1>: I don't understand, ask me for \"help\" to get a list of things I do"}},
		{"unknownDirectCommand", "DPRIVATE", "fly", "U1", []string{"I don't understand, ask me for \"help\" to get a list of things I do"}},
		{"nilAnswerFallsBackToDefault", "DPRIVATE", "silent", "U1", []string{"I don't understand, ask me for \"help\" to get a list of things I do"}},
		{"channelChatter", "CGENERAL", "make me a sandwich", "U1", []string{}},
		{"mentionNotAtStart", "CGENERAL", "hey <@BotUserID> make me a sandwich", "U1", []string{}},
		{"fromSelf", "DPRIVATE", "make me a sandwich", "BotUserID", []string{}},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			b, _ := newTestBot(t, config.NewViperWithDefaults())
			sender := capture.NewRealTimeSender()

			b.processMessageEvent(sender, newMessageEvent(tc.channel, tc.text, tc.user))

			texts := make([]string, 0)
			for _, m := range sender.Sent() {
				assert.Equal(t, tc.channel, m.Channel)
				texts = append(texts, m.Text)
			}

			assert.Equal(t, tc.expectedTexts, texts)
		})
	}
}

func TestMentionedCommandKeepsAllLines(t *testing.T) {
	b, _ := newTestBot(t, config.NewViperWithDefaults())

	inMsg, _, _ := b.routeMessage(&slack.Msg{Channel: "CGENERAL", User: "U1", Text: "<@BotUserID> make a sandwich\nwith extra pickles"})

	require.NotNil(t, inMsg)
	assert.Equal(t, "make a sandwich\nwith extra pickles", inMsg.NormalizedText)
	assert.False(t, inMsg.Direct)
}

func TestIgnoredMessageEvents(t *testing.T) {
	b, _ := newTestBot(t, config.NewViperWithDefaults())
	sender := capture.NewRealTimeSender()

	edited := newMessageEvent("DPRIVATE", "make it", "U1")
	edited.SubType = "message_changed"
	b.processMessageEvent(sender, edited)

	ack := newMessageEvent("DPRIVATE", "make it", "U1")
	ack.ReplyTo = 1
	b.processMessageEvent(sender, ack)

	assert.Empty(t, sender.Sent())
}

func TestBotMessagesFromSelfIgnored(t *testing.T) {
	b, _ := newTestBot(t, config.NewViperWithDefaults())
	sender := capture.NewRealTimeSender()

	m := newMessageEvent("DPRIVATE", "make it", "")
	m.BotID = "BotUserID"
	b.processMessageEvent(sender, m)

	assert.Empty(t, sender.Sent())
}

func TestDirectMessagesRoutedBeforeSelfIdentityKnown(t *testing.T) {
	b, err := New("chickadee", config.NewViperWithDefaults(), OptionLog(log.New(new(strings.Builder), "", 0)), OptionMeter(noop.NewMeterProvider().Meter("test")))
	require.NoError(t, err)
	b.RegisterPlugin(newMakerPlugin())
	b.start(&userInfoFinder{}, capture.NewRealTimeSender())

	sender := capture.NewRealTimeSender()
	b.processMessageEvent(sender, newMessageEvent("DPRIVATE", "make it", "U1"))

	if assert.Len(t, sender.Sent(), 1) {
		assert.Equal(t, "Make it yourself, @U1", sender.Sent()[0].Text)
	}
}

func TestThreadingBehavior(t *testing.T) {
	tcs := []struct {
		name              string
		threadedReplies   bool
		broadcast         bool
		text              string
		threadTimestamp   string
		expectedThreadTS  string
		expectedBroadcast bool
	}{
		{"noThreading", false, false, "make it", "", "", false},
		{"threadedByConfig", true, false, "make it", "", "1000.0", false},
		{"threadedWithBroadcastByConfig", true, true, "make it", "", "1000.0", true},
		{"incomingInThread", false, false, "make it", "900.0", "900.0", false},
		{"answerOptionOverridesConfig", false, false, "thread", "", "1000.0", true},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			v := config.NewViperWithDefaults()
			v.Set(config.ThreadedRepliesKey, tc.threadedReplies)
			v.Set(config.BroadcastThreadedRepliesKey, tc.broadcast)

			b, _ := newTestBot(t, v)
			sender := capture.NewRealTimeSender()

			m := newMessageEvent("DPRIVATE", tc.text, "U1")
			m.ThreadTimestamp = tc.threadTimestamp
			b.processMessageEvent(sender, m)

			if assert.Len(t, sender.Sent(), 1) {
				assert.Equal(t, tc.expectedThreadTS, sender.Sent()[0].ThreadTimestamp)
				assert.Equal(t, tc.expectedBroadcast, sender.Sent()[0].ThreadBroadcast)
			}
		})
	}
}

func TestExplicitThreadTimestamp(t *testing.T) {
	m := &IncomingMessage{Msg: slack.Msg{Timestamp: "1000.0", ThreadTimestamp: "900.0"}}

	assert.Equal(t, "800.0", threadTimestampOf(m, ApplyAnswerOpts(AnswerInExistingThread("800.0"))))
	assert.Equal(t, "900.0", threadTimestampOf(m, ApplyAnswerOpts(AnswerInThread())))
}

func TestHandleCommandWithManyAnswers(t *testing.T) {
	always := ActionDefinition{
		Match:  func(m *IncomingMessage) bool { return true },
		Answer: func(m *IncomingMessage) *Answer { return &Answer{Text: "yes"} },
	}

	answers := handleCommand(func(m *IncomingMessage) *Answer { return &Answer{Text: "default"} }, []ActionDefinition{always, always}, &IncomingMessage{NormalizedText: "anything"})

	if assert.Len(t, answers, 2) {
		assert.Equal(t, "yes", answers[0].Text)
		assert.Equal(t, "yes", answers[1].Text)
	}
}
