package pagerscot

import (
	"github.com/alexandre-normand/pagerscot/config"
	"github.com/alexandre-normand/pagerscot/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"log"
	"strings"
	"testing"
)

func newPluginWithActionsOfAllTypes() (p *Plugin) {
	p = new(Plugin)
	p.Name = "thank"
	p.Commands = []ActionDefinition{{
		Match: func(m *IncomingMessage) bool {
			return strings.HasPrefix(m.NormalizedText, "thank")
		},
		Usage:       "thank <someone or something to thank>",
		Description: "Format a thank you note",
		Answer: func(m *IncomingMessage) *Answer {
			return nil
		}}, {
		Hidden: true,
		Match: func(m *IncomingMessage) bool {
			return strings.HasPrefix(m.NormalizedText, "secret")
		},
		Usage:       "secret",
		Description: "Not listed",
		Answer: func(m *IncomingMessage) *Answer {
			return nil
		}}}

	p.ScheduledActions = []ScheduledActionDefinition{
		{Schedule: schedule.Definition{Interval: 30, Unit: schedule.Seconds}, Description: "Sends a heartbeat every 30 seconds", Action: func() {}},
		{Hidden: true, Schedule: schedule.Definition{Interval: 1, Unit: schedule.Days}, Description: "Hidden", Action: func() {}},
	}

	return p
}

func newHelpForTest(t *testing.T, uf UserInfoFinder) (help *helpPlugin) {
	b, err := New("robert", config.NewViperWithDefaults(), OptionMeter(noop.NewMeterProvider().Meter("test")))
	require.NoError(t, err)

	b.RegisterPlugin(newPluginWithActionsOfAllTypes())

	help = b.newHelpPlugin("1.0.0")
	help.UserInfoFinder = uf
	help.Logger = NewSLogger(log.New(new(strings.Builder), "", 0), true)

	return help
}

func TestHelpMatching(t *testing.T) {
	help := newHelpForTest(t, &userInfoFinder{})

	cmd := help.Commands[0]
	assert.False(t, cmd.Match(&IncomingMessage{NormalizedText: " help"}))
	assert.True(t, cmd.Match(&IncomingMessage{NormalizedText: "help"}))
	assert.True(t, cmd.Match(&IncomingMessage{NormalizedText: "help and something else"}))
}

func TestHelpAnswer(t *testing.T) {
	help := newHelpForTest(t, &userInfoFinder{})

	a := help.Commands[0].Answer(&IncomingMessage{NormalizedText: "help"})
	require.NotNil(t, a)

	assert.Equal(t, "🤝 You're `Daniel Quinn` and I'm `robert` (engine `v1.0.0`). I help the team with PagerDuty from chat :pager:.\n\n"+
		"I currently support the following commands:\n\t• `thank <someone or something to thank>` - Format a thank you note\n\n"+
		"And do those things periodically:\n"+
		"\t• [`thank`] `Every 30 seconds` (`Local`) - Sends a heartbeat every 30 seconds\n", a.Text)
	assert.Equal(t, map[string]string{ThreadedReplyOpt: "true"}, ApplyAnswerOpts(a.Options...))
}

func TestHelpAnswerWhenUserLookupFails(t *testing.T) {
	help := newHelpForTest(t, &userInfoFinder{fail: true})

	a := help.Commands[0].Answer(&IncomingMessage{NormalizedText: "help"})
	require.NotNil(t, a)

	assert.True(t, strings.HasPrefix(a.Text, "🤝 I'm `robert` (engine `v1.0.0`)."))
	assert.NotContains(t, a.Text, "Daniel Quinn")
}

func TestHelpWithoutPlugins(t *testing.T) {
	b, err := New("robert", config.NewViperWithDefaults(), OptionMeter(noop.NewMeterProvider().Meter("test")))
	require.NoError(t, err)

	help := b.newHelpPlugin("1.0.0")
	help.UserInfoFinder = &userInfoFinder{}

	a := help.Commands[0].Answer(&IncomingMessage{NormalizedText: "help"})
	require.NotNil(t, a)
	assert.NotContains(t, a.Text, "commands")
	assert.NotContains(t, a.Text, "periodically")
}
