package pagerscot

import (
	"fmt"
	"github.com/alexandre-normand/pagerscot/config"
	"io"
	"strings"
)

type helpPlugin struct {
	Plugin

	name                   string
	version                string
	timeLocation           string
	commands               []ActionDefinition
	pluginScheduledActions []pluginScheduledAction
}

const (
	helpPluginName = "help"
)

// pluginScheduledAction represents a plugin's scheduled action with the plugin name and the action's definition
type pluginScheduledAction struct {
	plugin string
	ScheduledActionDefinition
}

func (b *Bot) newHelpPlugin(version string) *helpPlugin {
	commands, scheduledActions := findAllActions(b.plugins)

	helpPlugin := new(helpPlugin)
	helpPlugin.timeLocation = b.config.GetString(config.TimeLocationKey)
	helpPlugin.name = b.name
	helpPlugin.version = version
	helpPlugin.commands = commands
	helpPlugin.pluginScheduledActions = scheduledActions

	helpPlugin.Plugin = Plugin{Name: helpPluginName, Commands: []ActionDefinition{{
		Match: func(m *IncomingMessage) bool {
			return strings.HasPrefix(m.NormalizedText, "help")
		},
		Usage:       helpPluginName,
		Description: "Reply with usage instructions",
		Answer:      helpPlugin.showHelp,
	}}}

	return helpPlugin
}

// showHelp generates a message providing a list of all of the commands and scheduled actions.
// Note that definitions with the flag Hidden set to true won't be included in the list
func (h *helpPlugin) showHelp(m *IncomingMessage) *Answer {
	var b strings.Builder

	user, err := h.UserInfoFinder.GetUserInfo(m.User)
	if err != nil {
		h.Logger.Debugf("Error getting user info for user id [%s] so skipping mentioning the name (it would be awkward): %v\n", m.User, err)
		fmt.Fprintf(&b, "🤝 I'm `%s` (engine `v%s`). I help the team with PagerDuty from chat :pager:.\n", h.name, h.version)
	} else {
		fmt.Fprintf(&b, "🤝 You're `%s` and I'm `%s` (engine `v%s`). I help the team with PagerDuty from chat :pager:.\n", user.Name, h.name, h.version)
	}

	if len(h.commands) > 0 {
		fmt.Fprintf(&b, "\nI currently support the following commands:\n")

		appendActions(&b, h.commands)
	}

	if len(h.pluginScheduledActions) > 0 {
		fmt.Fprintf(&b, "\nAnd do those things periodically:\n")

		appendScheduledActions(&b, h.timeLocation, h.pluginScheduledActions)
	}

	return &Answer{Text: b.String(), Options: []AnswerOption{AnswerInThread()}}
}

func appendActions(w io.Writer, actions []ActionDefinition) {
	for _, value := range actions {
		if value.Usage != "" {
			fmt.Fprintf(w, "\t• `%s` - %s\n", value.Usage, value.Description)
		}
	}
}

func appendScheduledActions(w io.Writer, timeLocationName string, scheduledActions []pluginScheduledAction) {
	for _, value := range scheduledActions {
		fmt.Fprintf(w, "\t• [`%s`] `%s` (`%s`) - %s\n", value.plugin, value.Schedule, timeLocationName, value.Description)
	}
}

func findAllActions(plugins []*Plugin) (commands []ActionDefinition, pluginScheduledActions []pluginScheduledAction) {
	commands = make([]ActionDefinition, 0)
	pluginScheduledActions = make([]pluginScheduledAction, 0)

	for _, p := range plugins {
		commands = append(commands, filterNonHiddenActions(p.Commands)...)
		pluginScheduledActions = append(pluginScheduledActions, filterNonHiddenScheduledActions(p.Name, p.ScheduledActions)...)
	}

	return commands, pluginScheduledActions
}

func filterNonHiddenActions(actions []ActionDefinition) (visibleActions []ActionDefinition) {
	visibleActions = make([]ActionDefinition, 0)
	for _, a := range actions {
		if !a.Hidden {
			visibleActions = append(visibleActions, a)
		}
	}

	return visibleActions
}

func filterNonHiddenScheduledActions(pluginName string, actions []ScheduledActionDefinition) (visibleActions []pluginScheduledAction) {
	visibleActions = make([]pluginScheduledAction, 0)

	for _, sa := range actions {
		if !sa.Hidden {
			visibleActions = append(visibleActions, pluginScheduledAction{plugin: pluginName, ScheduledActionDefinition: sa})
		}
	}

	return visibleActions
}
