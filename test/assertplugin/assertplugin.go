package assertplugin

import (
	"fmt"
	"github.com/alexandre-normand/pagerscot"
	"github.com/alexandre-normand/pagerscot/schedule"
	"github.com/alexandre-normand/pagerscot/test/capture"
	"github.com/slack-go/slack"
	"log"
	"strings"
	"testing"
)

// Asserter represents a plugin driver/asserter and holds the bot identifier that tests are using when
// sending test messages for processing
type Asserter struct {
	botUserID      string
	logger         *log.Logger
	userInfoFinder pagerscot.UserInfoFinder
	sender         *capture.RealTimeSenderCaptor
}

// New creates a new asserter with the given botUserId
// (only include the id without the '@' prefix).
// The botUserId is used in order to detect commands formed with
// <@botUserId>
func New(botUserID string, options ...Option) (a *Asserter) {
	a = new(Asserter)
	a.botUserID = botUserID
	a.userInfoFinder = &anonymousUserInfoFinder{}
	a.sender = capture.NewRealTimeSender()

	for _, option := range options {
		option(a)
	}

	return a
}

// Option defines an option for the Asserter
type Option func(*Asserter)

// OptionLog sets a logger for the asserter such that this logger is attached to the plugin when driven by
// the asserter
func OptionLog(logger *log.Logger) func(*Asserter) {
	return func(a *Asserter) {
		a.logger = logger
	}
}

// OptionUserInfoFinder sets the user info finder injected in the plugin. By default, users
// are found with their id as their name
func OptionUserInfoFinder(uf pagerscot.UserInfoFinder) func(*Asserter) {
	return func(a *Asserter) {
		a.userInfoFinder = uf
	}
}

// Sender returns the captor injected as the plugin's real time message sender
func (a *Asserter) Sender() *capture.RealTimeSenderCaptor {
	return a.sender
}

// ResultValidator is a function to do further validation of the answers resulting from
// a plugin processing of all of its commands. The return value is meant to be true if validation
// is successful and false otherwise (following the testify convention)
type ResultValidator func(t *testing.T, answers []*pagerscot.Answer) bool

// Answers drives a plugin and collects its Answers. Once all of those have been collected,
// it passes handling to a validator to assert the expected answers. It follows the style of
// github.com/stretchr/testify/assert as far as returning true/false to indicate success for further nested testing.
//
// Note that all commands are evaluated but this is a simplified version of how pagerscot actually drives
// plugins. Messages starting with <@botUserID> on a channel are commands and so are all messages
// on a channel name starting with D. Anything else yields no answers
func (a *Asserter) Answers(t *testing.T, p *pagerscot.Plugin, m *slack.Msg, validate ResultValidator) (valid bool) {
	a.inject(p)

	answers := a.driveActions(p, m)

	return validate(t, answers)
}

// SentMessagesValidator is a function to validate the messages sent by scheduled actions. The return value
// is meant to be true if validation is successful and false otherwise (following the testify convention)
type SentMessagesValidator func(t *testing.T, sentMsgs []*slack.OutgoingMessage) bool

// RunsOnSchedule runs the plugin's scheduled actions with the given schedule definition and validates the
// messages they sent. It returns false if the plugin has no scheduled action on that schedule
func (a *Asserter) RunsOnSchedule(t *testing.T, p *pagerscot.Plugin, def schedule.Definition, validate SentMessagesValidator) (valid bool) {
	a.inject(p)

	ran := false
	for _, sa := range p.ScheduledActions {
		if sa.Schedule == def {
			sa.Action()
			ran = true
		}
	}

	if !ran {
		t.Errorf("Plugin [%s] has no scheduled action running [%s]", p.Name, def)
		return false
	}

	return validate(t, a.sender.Sent())
}

// DoesNotRunOnSchedule returns true if none of the plugin's scheduled actions runs with the given schedule definition
func (a *Asserter) DoesNotRunOnSchedule(t *testing.T, p *pagerscot.Plugin, def schedule.Definition) (valid bool) {
	for _, sa := range p.ScheduledActions {
		if sa.Schedule == def {
			t.Errorf("Plugin [%s] has a scheduled action running [%s]", p.Name, def)
			return false
		}
	}

	return true
}

// inject sets the services a running bot would provide to the plugin
func (a *Asserter) inject(p *pagerscot.Plugin) {
	p.Logger = pagerscot.NewSLogger(getLogger(a), true)
	p.UserInfoFinder = a.userInfoFinder
	p.RealTimeMsgSender = a.sender
}

func getLogger(a *Asserter) (logger *log.Logger) {
	if a.logger != nil {
		return a.logger
	}

	var b strings.Builder
	return log.New(&b, "", 0)
}

func (a *Asserter) driveActions(p *pagerscot.Plugin, m *slack.Msg) (answers []*pagerscot.Answer) {
	botMentionPrefix := fmt.Sprintf("<@%s> ", a.botUserID)

	if strings.HasPrefix(m.Text, botMentionPrefix) {
		normalizedText := strings.TrimPrefix(m.Text, botMentionPrefix)
		inMsg := pagerscot.IncomingMessage{NormalizedText: normalizedText, Msg: *m}

		return runActions(p.Commands, &inMsg)
	}

	if strings.HasPrefix(m.Channel, "D") {
		inMsg := pagerscot.IncomingMessage{NormalizedText: m.Text, Direct: true, Msg: *m}

		return runActions(p.Commands, &inMsg)
	}

	return []*pagerscot.Answer{}
}

func runActions(actions []pagerscot.ActionDefinition, m *pagerscot.IncomingMessage) (answers []*pagerscot.Answer) {
	answers = make([]*pagerscot.Answer, 0)

	for _, action := range actions {
		if action.Match(m) {
			a := action.Answer(m)

			if a != nil {
				answers = append(answers, a)
			}
		}
	}

	return answers
}

type anonymousUserInfoFinder struct {
}

func (u *anonymousUserInfoFinder) GetUserInfo(userID string) (user *slack.User, err error) {
	return &slack.User{ID: userID, Name: userID}, nil
}
