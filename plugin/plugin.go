// Package plugin provides a fluent API for building pagerscot plugins
package plugin

import (
	"github.com/alexandre-normand/pagerscot"
)

// Builder holds a plugin to build
type Builder struct {
	plugin *pagerscot.Plugin
}

// New creates a new Builder with a plugin with the given name and empty set of actions
func New(name string) (pb *Builder) {
	pb = new(Builder)
	pb.plugin = new(pagerscot.Plugin)
	pb.plugin.Name = name
	pb.plugin.Commands = make([]pagerscot.ActionDefinition, 0)
	pb.plugin.ScheduledActions = make([]pagerscot.ScheduledActionDefinition, 0)

	return pb
}

// WithCommand adds a command to the plugin
func (pb *Builder) WithCommand(command pagerscot.ActionDefinition) *Builder {
	pb.plugin.Commands = append(pb.plugin.Commands, command)
	return pb
}

// WithScheduledAction adds a scheduled action to the plugin
func (pb *Builder) WithScheduledAction(scheduledAction pagerscot.ScheduledActionDefinition) *Builder {
	pb.plugin.ScheduledActions = append(pb.plugin.ScheduledActions, scheduledAction)
	return pb
}

// Build returns the created Plugin instance
func (pb *Builder) Build() (p *pagerscot.Plugin) {
	return pb.plugin
}
