/*
Package actions provides a fluent API for creating pagerscot plugin actions. Typical usages
will also involve using the plugin fluent API from github.com/alexandre-normand/pagerscot/plugin.

A quick example could look like:

	import (
		"github.com/alexandre-normand/pagerscot"
		"github.com/alexandre-normand/pagerscot/actions"
		"github.com/alexandre-normand/pagerscot/plugin"
		"github.com/alexandre-normand/pagerscot/schedule"
	)

	func newPlugin() (p *pagerscot.Plugin) {
		p = plugin.New("status").
			WithCommand(actions.NewCommand().
				WithMatcher(func(m *pagerscot.IncomingMessage) bool {
					return strings.HasPrefix(m.NormalizedText, "status")
				}).
				WithUsage("status").
				WithDescription("Report the service status").
				WithAnswerer(func(m *pagerscot.IncomingMessage) *pagerscot.Answer {
					return &pagerscot.Answer{Text: ":white_check_mark: All good"}
				}).
				Build()).
			WithScheduledAction(actions.NewScheduledAction().
				WithSchedule(schedule.New().Every(time.Monday.String()).AtTime("10:00").Build()).
				WithDescription("Start the week off with a status report").
				WithAction(weeklyReport).
				Build()).
			Build()
		return p
	}
*/
package actions

import (
	"fmt"
	"github.com/alexandre-normand/pagerscot"
	"github.com/alexandre-normand/pagerscot/schedule"
)

// ActionBuilder holds the action to build
type ActionBuilder struct {
	action pagerscot.ActionDefinition
}

// ScheduledActionBuilder holds the scheduled action to build
type ScheduledActionBuilder struct {
	scheduledAction pagerscot.ScheduledActionDefinition
}

var (
	// Default to always match. An Answerer returning nil is equivalent to not matching
	defaultMatcher = func(m *pagerscot.IncomingMessage) bool {
		return true
	}

	// Default to always return nil. This is not a default you want to use in most cases
	defaultAnswerer = func(m *pagerscot.IncomingMessage) *pagerscot.Answer {
		return nil
	}
)

// NewCommand returns a new ActionBuilder to build a new command. When done with the setup,
// the caller is expected to call Build() to get the action
func NewCommand() (ab *ActionBuilder) {
	ab = new(ActionBuilder)
	ab.action = pagerscot.ActionDefinition{Hidden: false}

	ab.action.Match = defaultMatcher
	ab.action.Answer = defaultAnswerer

	return ab
}

// WithMatcher sets the action's matcher function
func (ab *ActionBuilder) WithMatcher(matcher pagerscot.Matcher) *ActionBuilder {
	ab.action.Match = matcher
	return ab
}

// WithUsage sets the action usage
func (ab *ActionBuilder) WithUsage(usage string) *ActionBuilder {
	ab.action.Usage = usage
	return ab
}

// WithDescription sets the action description
func (ab *ActionBuilder) WithDescription(description string) *ActionBuilder {
	ab.action.Description = description
	return ab
}

// WithDescriptionf sets the action description delegating format and arguments to fmt.Sprintf
func (ab *ActionBuilder) WithDescriptionf(format string, a ...interface{}) *ActionBuilder {
	ab.action.Description = fmt.Sprintf(format, a...)
	return ab
}

// WithAnswerer sets the action's answerer function
func (ab *ActionBuilder) WithAnswerer(answerer pagerscot.Answerer) *ActionBuilder {
	ab.action.Answer = answerer
	return ab
}

// Hidden sets the action to hidden
func (ab *ActionBuilder) Hidden() *ActionBuilder {
	ab.action.Hidden = true
	return ab
}

// Build returns the ActionDefinition
func (ab *ActionBuilder) Build() pagerscot.ActionDefinition {
	return ab.action
}

// NewScheduledAction returns a new ScheduledActionBuilder to build a new ScheduledActionDefinition
func NewScheduledAction() (sab *ScheduledActionBuilder) {
	sab = new(ScheduledActionBuilder)
	sab.scheduledAction = pagerscot.ScheduledActionDefinition{Hidden: false}
	sab.scheduledAction.Action = func() {}

	return sab
}

// WithSchedule sets the schedule for the scheduled action
func (sab *ScheduledActionBuilder) WithSchedule(schedule schedule.Definition) *ScheduledActionBuilder {
	sab.scheduledAction.Schedule = schedule
	return sab
}

// WithDescription sets the scheduled action description
func (sab *ScheduledActionBuilder) WithDescription(desc string) *ScheduledActionBuilder {
	sab.scheduledAction.Description = desc
	return sab
}

// WithDescriptionf sets the scheduled action description delegating format and arguments to fmt.Sprintf
func (sab *ScheduledActionBuilder) WithDescriptionf(format string, a ...interface{}) *ScheduledActionBuilder {
	sab.scheduledAction.Description = fmt.Sprintf(format, a...)
	return sab
}

// WithAction sets the action function to run on schedule
func (sab *ScheduledActionBuilder) WithAction(action pagerscot.ScheduledAction) *ScheduledActionBuilder {
	sab.scheduledAction.Action = action
	return sab
}

// Build returns the ScheduledActionDefinition
func (sab *ScheduledActionBuilder) Build() pagerscot.ScheduledActionDefinition {
	return sab.scheduledAction
}
