/*
Package pagerscot provides a slack bot that lets a team work with PagerDuty from chat.

The bot is made of a small engine and plugins. Plugins combine commands and scheduled actions
and get services injected on startup:
 - UserInfoFinder: To query user info
 - SLogger: To log debug/info statements
 - RealTimeMessageSender: To send messages outside the normal answer flow (i.e. from a scheduled action)

Commands are routed to plugins when the bot is mentioned in a channel (@pagerscot pager list) or when
it's sent a direct message. Anything else is ignored.

Example code (see cmd/pagerscot for the full program):

	package main

	import (
		"github.com/alexandre-normand/pagerscot"
		"github.com/alexandre-normand/pagerscot/config"
		"github.com/alexandre-normand/pagerscot/plugins"
		"log"
	)

	func main() {
		// Load the configuration in v and open a store.StringStorer

		bot, err := pagerscot.NewBot("pagerscot", v).
			WithConfigurablePluginErr(plugins.PagerDutyPluginName, func(c *config.PluginConfig) (*pagerscot.Plugin, error) {
				return plugins.NewPagerDuty(c, storer)
			}).
			WithCloser(storer).
			Build()
		if err != nil {
			log.Fatal(err)
		}
		defer bot.Close()

		err = bot.Run()
		if err != nil {
			log.Fatal(err)
		}
	}
*/
package pagerscot
