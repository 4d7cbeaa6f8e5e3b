/*
Package pager holds the PagerDuty domain of pagerscot: the registry of chat users known to PagerDuty,
the on-call resolution for a schedule and the gateway to the PagerDuty REST and events APIs.

The chat-facing commands live in github.com/alexandre-normand/pagerscot/plugins and only
talk to PagerDuty through the types of this package:

	registry := pager.NewRegistry(storer)
	gateway, err := pager.NewGateway(conf)
	resolver := pager.NewOncallResolver(gateway, registry)

	u, err := resolver.GetOncallUser(ctx, conf.ScheduleID)
*/
package pager
