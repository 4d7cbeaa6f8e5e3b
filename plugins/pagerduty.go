package plugins

import (
	"context"
	"fmt"
	"github.com/alexandre-normand/pagerscot"
	"github.com/alexandre-normand/pagerscot/actions"
	"github.com/alexandre-normand/pagerscot/config"
	"github.com/alexandre-normand/pagerscot/pager"
	"github.com/alexandre-normand/pagerscot/plugin"
	"github.com/alexandre-normand/pagerscot/schedule"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// pagerDuty holds the plugin data for the pagerduty plugin. The plugin lets chat users register
// with their PagerDuty identity, find out who has the pager, steal it and manage incidents
type pagerDuty struct {
	*pagerscot.Plugin

	conf      pager.Config
	configErr error

	reportChannelID string

	registry *pager.Registry
	gateway  pager.IncidentGateway
	resolver *pager.OncallResolver

	now   func() time.Time
	meter metric.Meter
}

const (
	// PagerDutyPluginName holds identifying name for the pagerduty plugin and its configuration
	PagerDutyPluginName = "pagerduty"
)

// Plugin configuration keys
const (
	subdomainKey             = "subdomain"
	apiKeyKey                = "apiKey"
	serviceAPIKeyKey         = "serviceApiKey"
	scheduleIDKey            = "scheduleId"
	requestTimeoutKey        = "requestTimeout"
	oncallWindowKey          = "oncallWindow"
	apiEndpointKey           = "apiEndpoint"
	eventsEndpointKey        = "eventsEndpoint"
	triggerDescriptionKey    = "triggerDescription"
	oncallReportChannelIDKey = "oncallReport.channelId"
	oncallReportAtTimeKey    = "oncallReport.atTime"
)

const (
	defaultOncallReportAtTime = "09:00"
)

// Answers shared by many commands
const (
	notConfiguredMsg   = "Sorry, PagerDuty is not configured"
	groupChatOnlyMsg   = "Sorry, you need to use group chat for PagerDuty commands"
	unknownUserMsg     = "Sorry, I don't know who you are. Please use `pager register <email>` to teach me your email address"
	checkTheLogsMsg    = "Sorry, something went wrong. You should check the logs."
	oncallUnknownMsgFn = "Sorry, I couldn't figure out who is on call currently: %v"
)

var (
	registerRegex   = regexp.MustCompile(`(?i)\Apager register(?:\s+(\S+))?\s*\z`)
	unregisterRegex = regexp.MustCompile(`(?i)\Apager unregister\s*\z`)
	whoamiRegex     = regexp.MustCompile(`(?i)\Apager whoami\s*\z`)
	listUsersRegex  = regexp.MustCompile(`(?i)\Apager listusers\s*\z`)
	listRegex       = regexp.MustCompile(`(?i)\Apager list\s*\z`)
	showRegex       = regexp.MustCompile(`(?i)\Apager show(?:\s+(\S+))?\s*\z`)
	ackRegex        = regexp.MustCompile(`(?i)\Apager ack(?:\s+(\S+))?\s*\z`)
	resolveRegex    = regexp.MustCompile(`(?i)\Apager resolve(?:\s+(\S+))?\s*\z`)
	triggerRegex    = regexp.MustCompile(`(?is)\Apager trigger(?:\s+(.+?))?\s*\z`)
	oncallRegex     = regexp.MustCompile(`(?i)\A(?:pager )?oncall\s*\z`)
	stealRegex      = regexp.MustCompile(`(?i)\Apager steal(?:\s+(\S+))?\s*\z`)

	// Slack renders email addresses as <mailto:alice@example.com|alice@example.com>
	mailtoRegex = regexp.MustCompile(`\A<mailto:([^|>]+)(?:\|[^>]*)?>\z`)
)

// PagerDutyOption defines an option for the pagerduty plugin
type PagerDutyOption func(*pagerDuty)

// OptionPagerDutyGateway sets the gateway used to talk to PagerDuty instead of one
// created from the plugin configuration
func OptionPagerDutyGateway(gateway pager.IncidentGateway) func(*pagerDuty) {
	return func(p *pagerDuty) {
		p.gateway = gateway
	}
}

// OptionPagerDutyClock sets the function returning the current time
func OptionPagerDutyClock(now func() time.Time) func(*pagerDuty) {
	return func(p *pagerDuty) {
		p.now = now
	}
}

// OptionPagerDutyMeter sets the meter of the PagerDuty call metrics. The global otel meter provider
// is used by default
func OptionPagerDutyMeter(meter metric.Meter) func(*pagerDuty) {
	return func(p *pagerDuty) {
		p.meter = meter
	}
}

// NewPagerDuty creates a new instance of the PagerDuty plugin. A nil or incomplete configuration
// doesn't fail: the plugin is created and all of its commands answer that PagerDuty is not configured
func NewPagerDuty(c *config.PluginConfig, storer pager.Storer, options ...PagerDutyOption) (*pagerscot.Plugin, error) {
	p := new(pagerDuty)
	p.registry = pager.NewRegistry(storer)
	p.now = time.Now

	for _, opt := range options {
		opt(p)
	}

	if p.meter == nil {
		p.meter = otel.GetMeterProvider().Meter(PagerDutyPluginName)
	}

	p.conf = loadPagerConfig(c)
	if p.configErr = p.conf.Validate(); p.configErr == nil {
		if err := p.connect(); err != nil {
			return nil, err
		}
	}

	pb := plugin.New(PagerDutyPluginName)
	for _, cmd := range p.commands() {
		pb = pb.WithCommand(cmd)
	}

	if c != nil && c.GetString(oncallReportChannelIDKey) != "" {
		p.reportChannelID = c.GetString(oncallReportChannelIDKey)

		c.SetDefault(oncallReportAtTimeKey, defaultOncallReportAtTime)
		pb = pb.WithScheduledAction(actions.NewScheduledAction().
			WithSchedule(schedule.New().EveryN(1, schedule.Days).AtTime(c.GetString(oncallReportAtTimeKey)).Build()).
			WithDescriptionf("Report who has the pager in <#%s>", p.reportChannelID).
			WithAction(p.reportOncall).
			Build())
	}

	p.Plugin = pb.Build()

	return p.Plugin, nil
}

// loadPagerConfig reads the PagerDuty settings from the plugin configuration. A nil configuration
// results in an empty one
func loadPagerConfig(c *config.PluginConfig) (conf pager.Config) {
	if c == nil {
		return conf
	}

	conf.Subdomain = c.GetString(subdomainKey)
	conf.APIKey = c.GetString(apiKeyKey)
	conf.ServiceAPIKey = c.GetString(serviceAPIKeyKey)
	conf.ScheduleID = c.GetString(scheduleIDKey)
	conf.APIEndpoint = c.GetString(apiEndpointKey)
	conf.EventsEndpoint = c.GetString(eventsEndpointKey)
	conf.TriggerDescription = c.GetString(triggerDescriptionKey)
	conf.RequestTimeout = c.GetDuration(requestTimeoutKey)
	conf.OncallWindow = c.GetDuration(oncallWindowKey)

	return conf.WithDefaults()
}

// connect sets up the gateway, unless one was given, and the on-call resolver
func (p *pagerDuty) connect() (err error) {
	if p.gateway == nil {
		if p.gateway, err = pager.NewGateway(p.conf, pager.OptionLogger(gatewayLogger{p})); err != nil {
			return err
		}
	}

	if p.gateway, err = pager.NewIncidentGatewayWithTelemetry(p.gateway, PagerDutyPluginName, p.meter); err != nil {
		return errors.Wrap(err, "Error setting up PagerDuty metrics")
	}

	p.resolver = pager.NewOncallResolver(p.gateway, p.registry, pager.OptionOncallWindow(p.conf.OncallWindow), pager.OptionClock(p.now))

	return nil
}

// gatewayLogger logs gateway events with the plugin's logger once the bot has injected it
type gatewayLogger struct {
	p *pagerDuty
}

func (gl gatewayLogger) Printf(format string, v ...interface{}) {
	if gl.p.Plugin == nil || gl.p.Logger == nil {
		return
	}

	gl.p.Logger.Printf("[%s] "+format, append([]interface{}{PagerDutyPluginName}, v...)...)
}

// commands assembles the commands for the plugin
func (p *pagerDuty) commands() []pagerscot.ActionDefinition {
	return []pagerscot.ActionDefinition{
		actions.NewCommand().
			WithMatcher(matcherOf(registerRegex)).
			WithUsage("pager register <email>").
			WithDescription("Register as a PagerDuty user with the bot via your email address").
			WithAnswerer(p.configured(groupChatOnly(p.register))).
			Build(),
		actions.NewCommand().
			WithMatcher(matcherOf(unregisterRegex)).
			WithUsage("pager unregister").
			WithDescription("Remove your PagerDuty user registration").
			WithAnswerer(p.configured(groupChatOnly(p.unregister))).
			Build(),
		actions.NewCommand().
			WithMatcher(matcherOf(whoamiRegex)).
			WithUsage("pager whoami").
			WithDescription("... and how did I get here?").
			WithAnswerer(p.configured(groupChatOnly(p.whoami))).
			Build(),
		actions.NewCommand().
			WithMatcher(matcherOf(listUsersRegex)).
			WithUsage("pager listusers").
			WithDescription("List PagerDuty users registered with the bot").
			WithAnswerer(p.configured(p.listUsers)).
			Build(),
		actions.NewCommand().
			WithMatcher(matcherOf(listRegex)).
			WithUsage("pager list").
			WithDescription("List triggered and acknowledged incidents").
			WithAnswerer(p.configured(p.listIncidents)).
			Build(),
		actions.NewCommand().
			WithMatcher(matcherOf(showRegex)).
			WithUsage("pager show <incident id>").
			WithDescription("Show the details of an incident").
			WithAnswerer(p.configured(p.showIncident)).
			Build(),
		actions.NewCommand().
			WithMatcher(matcherOf(ackRegex)).
			WithUsage("pager ack <incident id>").
			WithDescription("Acknowledge an incident by its alphanumeric ID").
			WithAnswerer(p.configured(groupChatOnly(p.acknowledge))).
			Build(),
		actions.NewCommand().
			WithMatcher(matcherOf(resolveRegex)).
			WithUsage("pager resolve <incident id>").
			WithDescription("Resolve an incident by its alphanumeric ID").
			WithAnswerer(p.configured(groupChatOnly(p.resolve))).
			Build(),
		actions.NewCommand().
			WithMatcher(matcherOf(triggerRegex)).
			WithUsage("pager trigger <message>").
			WithDescription("Trigger an incident").
			WithAnswerer(p.configured(groupChatOnly(p.trigger))).
			Build(),
		actions.NewCommand().
			WithMatcher(matcherOf(oncallRegex)).
			WithUsage("pager oncall").
			WithDescription("Find out who has the pager (`oncall` works too)").
			WithAnswerer(p.configured(p.oncall)).
			Build(),
		actions.NewCommand().
			WithMatcher(matcherOf(stealRegex)).
			WithUsage("pager steal <minutes>").
			WithDescription("Steal the pager for N minutes").
			WithAnswerer(p.configured(groupChatOnly(p.steal))).
			Build(),
	}
}

// matcherOf returns a matcher of the message's normalized text against the regex
func matcherOf(re *regexp.Regexp) pagerscot.Matcher {
	return func(m *pagerscot.IncomingMessage) bool {
		return re.MatchString(m.NormalizedText)
	}
}

// argumentOf returns the first capture group of the regex on the message's normalized text
func argumentOf(re *regexp.Regexp, m *pagerscot.IncomingMessage) string {
	matches := re.FindStringSubmatch(m.NormalizedText)
	if len(matches) < 2 {
		return ""
	}

	return strings.TrimSpace(matches[1])
}

// configured answers that PagerDuty is not configured instead of running the answerer when the
// configuration is missing or incomplete
func (p *pagerDuty) configured(answerer pagerscot.Answerer) pagerscot.Answerer {
	return func(m *pagerscot.IncomingMessage) *pagerscot.Answer {
		if p.configErr != nil {
			p.Logger.Debugf("[%s] Refusing [%s]: %v\n", PagerDutyPluginName, m.NormalizedText, p.configErr)
			return &pagerscot.Answer{Text: notConfiguredMsg}
		}

		return answerer(m)
	}
}

// groupChatOnly refuses direct messages for commands acting on behalf of the sender
func groupChatOnly(answerer pagerscot.Answerer) pagerscot.Answerer {
	return func(m *pagerscot.IncomingMessage) *pagerscot.Answer {
		if m.Direct {
			return &pagerscot.Answer{Text: groupChatOnlyMsg}
		}

		return answerer(m)
	}
}

// parseEmail returns the email address as typed by the user, undoing the slack mailto link formatting
func parseEmail(raw string) string {
	if matches := mailtoRegex.FindStringSubmatch(raw); len(matches) == 2 {
		return matches[1]
	}

	return raw
}

func (p *pagerDuty) register(m *pagerscot.IncomingMessage) *pagerscot.Answer {
	email := parseEmail(argumentOf(registerRegex, m))
	if email == "" {
		return &pagerscot.Answer{Text: "I can't register you without an email address"}
	}

	if u, err := p.registry.GetUser(m.User); err == nil {
		return &pagerscot.Answer{Text: fmt.Sprintf("You are already registered as %s", u.Email)}
	} else if !isNotFound(err) {
		return p.somethingWentWrong("loading user", err)
	}

	if u, err := p.registry.FindByEmail(email); err == nil {
		return &pagerscot.Answer{Text: fmt.Sprintf("The email address you provided is already registered to <@%s>", u.ChatID)}
	} else if !isNotFound(err) {
		return p.somethingWentWrong("loading user", err)
	}

	pagerDutyID, err := p.gateway.FindUserIDByEmail(context.Background(), email)
	if isNotFound(err) {
		return &pagerscot.Answer{Text: "Sorry, I couldn't find a PagerDuty user with that email address"}
	} else if err != nil {
		p.Logger.Printf("[%s] Error looking up PagerDuty user with email [%s]: %v\n", PagerDutyPluginName, email, err)
		return &pagerscot.Answer{Text: fmt.Sprintf("Sorry, I couldn't reach PagerDuty to look you up: %v", err)}
	}

	if err = p.registry.AddUser(m.User, email, pagerDutyID); err != nil {
		var ce *pager.ConflictError
		if errors.As(err, &ce) {
			return &pagerscot.Answer{Text: fmt.Sprintf("Sorry, %s [%s] was registered to <@%s> in the meantime", ce.Field, ce.Value, ce.Existing.ChatID)}
		}

		return p.somethingWentWrong("registering user", err)
	}

	p.Logger.Printf("[%s] Registered user [%s] as [%s] with PagerDuty ID [%s]\n", PagerDutyPluginName, m.User, email, pagerDutyID)

	return &pagerscot.Answer{Text: "You are now licensed to kill"}
}

func (p *pagerDuty) unregister(m *pagerscot.IncomingMessage) *pagerscot.Answer {
	err := p.registry.RemoveUser(m.User)
	if isNotFound(err) {
		return &pagerscot.Answer{Text: "Sorry, I'm afraid I don't know who you are to begin with"}
	} else if err != nil {
		return p.somethingWentWrong("unregistering user", err)
	}

	p.Logger.Printf("[%s] Unregistered user [%s]\n", PagerDutyPluginName, m.User)

	return &pagerscot.Answer{Text: "You're dead to me"}
}

func (p *pagerDuty) whoami(m *pagerscot.IncomingMessage) *pagerscot.Answer {
	u, err := p.registry.GetUser(m.User)
	if isNotFound(err) {
		return &pagerscot.Answer{Text: "I don't think I know you. Use `pager register <email>` to introduce yourself"}
	} else if err != nil {
		return p.somethingWentWrong("loading user", err)
	}

	return &pagerscot.Answer{Text: fmt.Sprintf("I have you registered as %s with PagerDuty ID `%s`", u.Email, u.PagerDutyID)}
}

func (p *pagerDuty) listUsers(m *pagerscot.IncomingMessage) *pagerscot.Answer {
	users, err := p.registry.ListUsers()
	if err != nil {
		return p.somethingWentWrong("listing users", err)
	}

	if len(users) == 0 {
		return &pagerscot.Answer{Text: "Nobody is registered with PagerDuty yet", Options: []pagerscot.AnswerOption{pagerscot.AnswerInThreadWithoutBroadcast()}}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Here are the users registered with PagerDuty:\n")
	for _, u := range users {
		fmt.Fprintf(&b, "\t• <@%s> - %s (`%s`)\n", u.ChatID, u.Email, u.PagerDutyID)
	}

	return &pagerscot.Answer{Text: b.String(), Options: []pagerscot.AnswerOption{pagerscot.AnswerInThreadWithoutBroadcast()}}
}

func (p *pagerDuty) listIncidents(m *pagerscot.IncomingMessage) *pagerscot.Answer {
	incidents, err := p.gateway.ListActive(context.Background())
	if err != nil {
		p.Logger.Printf("[%s] Error listing active incidents: %v\n", PagerDutyPluginName, err)
		return &pagerscot.Answer{Text: fmt.Sprintf("Sorry, I couldn't list incidents: %v", err)}
	}

	p.Logger.Debugf("[%s] Found [%d] active incidents\n", PagerDutyPluginName, len(incidents))

	if len(incidents) == 0 {
		return &pagerscot.Answer{Text: "Found 0 active incidents"}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d active incidents:\n", len(incidents))
	for _, i := range incidents {
		fmt.Fprintf(&b, "\t• <%s|#%d> `%s` [%s] %s\n", p.conf.IncidentURL(i.ID), i.IncidentNumber, i.ID, i.Status, i.Title)
	}

	return &pagerscot.Answer{Text: b.String(), Options: []pagerscot.AnswerOption{pagerscot.AnswerInThreadWithoutBroadcast()}}
}

func (p *pagerDuty) showIncident(m *pagerscot.IncomingMessage) *pagerscot.Answer {
	incidentID := argumentOf(showRegex, m)
	if incidentID == "" {
		return &pagerscot.Answer{Text: "Sorry, you need to tell me which incident to show"}
	}

	i, err := p.gateway.GetIncident(context.Background(), incidentID)
	if err != nil {
		p.Logger.Printf("[%s] Error getting incident [%s]: %v\n", PagerDutyPluginName, incidentID, err)
		return &pagerscot.Answer{Text: fmt.Sprintf("Sorry, I couldn't get incident `%s`: %v", incidentID, causeOf(err))}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<%s|#%d> `%s` [%s] %s\n", p.conf.IncidentURL(i.ID), i.IncidentNumber, i.ID, i.Status, i.Title)
	if i.Service.Summary != "" {
		fmt.Fprintf(&b, "\tService: %s\n", i.Service.Summary)
	}
	if i.CreatedAt != "" {
		fmt.Fprintf(&b, "\tCreated at: %s\n", i.CreatedAt)
	}

	return &pagerscot.Answer{Text: b.String(), Options: []pagerscot.AnswerOption{pagerscot.AnswerInThreadWithoutBroadcast()}}
}

// incidentTransition is implemented by the gateway methods changing the status of an incident
type incidentTransition func(ctx context.Context, requestor pager.UserRecord, incidentID string) (err error)

func (p *pagerDuty) acknowledge(m *pagerscot.IncomingMessage) *pagerscot.Answer {
	return p.transitionIncident(m, argumentOf(ackRegex, m), "acknowledge", "Acknowledged", p.gateway.Acknowledge)
}

func (p *pagerDuty) resolve(m *pagerscot.IncomingMessage) *pagerscot.Answer {
	return p.transitionIncident(m, argumentOf(resolveRegex, m), "resolve", "Resolved", p.gateway.Resolve)
}

// transitionIncident changes the status of an incident on behalf of the registered sender
func (p *pagerDuty) transitionIncident(m *pagerscot.IncomingMessage, incidentID string, verb string, pastVerb string, transition incidentTransition) *pagerscot.Answer {
	requestor, err := p.registry.GetUser(m.User)
	if isNotFound(err) {
		return &pagerscot.Answer{Text: unknownUserMsg}
	} else if err != nil {
		return p.somethingWentWrong("loading user", err)
	}

	if incidentID == "" {
		return &pagerscot.Answer{Text: fmt.Sprintf("Sorry, you need to tell me which incident to %s", verb)}
	}

	p.Logger.Printf("[%s] Request to %s incident [%s] by [%s]\n", PagerDutyPluginName, verb, incidentID, requestor.ChatID)

	if err = transition(context.Background(), requestor, incidentID); err != nil {
		p.Logger.Printf("[%s] Error trying to %s incident [%s]: %v\n", PagerDutyPluginName, verb, incidentID, err)
		return &pagerscot.Answer{Text: fmt.Sprintf("Failed to %s incident `%s`: %v", verb, incidentID, causeOf(err))}
	}

	return &pagerscot.Answer{Text: fmt.Sprintf("%s incident `%s`", pastVerb, incidentID)}
}

func (p *pagerDuty) trigger(m *pagerscot.IncomingMessage) *pagerscot.Answer {
	message := argumentOf(triggerRegex, m)
	if message == "" {
		return &pagerscot.Answer{Text: "Sorry, you need to tell me what's going on to trigger an incident"}
	}

	incidentKey, err := p.gateway.Trigger(context.Background(), p.conf.ServiceAPIKey, p.requestorName(m.User), message)
	if err != nil {
		var tfe *pager.TriggerFailedError
		if errors.As(err, &tfe) {
			p.Logger.Printf("[%s] Non-200 response: %d\n", PagerDutyPluginName, tfe.StatusCode)
			p.Logger.Printf("[%s] Body: %s\n", PagerDutyPluginName, tfe.Body)

			return &pagerscot.Answer{Text: checkTheLogsMsg}
		}

		p.Logger.Printf("[%s] Error triggering incident: %v\n", PagerDutyPluginName, err)
		return &pagerscot.Answer{Text: fmt.Sprintf("Sorry, I couldn't reach PagerDuty to trigger the incident: %v", causeOf(err))}
	}

	return &pagerscot.Answer{Text: fmt.Sprintf("Triggered incident `%s`", incidentKey)}
}

// requestorName returns the chat name of the user or its ID if the user can't be found
func (p *pagerDuty) requestorName(userID string) string {
	u, err := p.UserInfoFinder.GetUserInfo(userID)
	if err != nil {
		p.Logger.Debugf("[%s] Error getting user info for [%s], using the user id as requestor: %v\n", PagerDutyPluginName, userID, err)
		return userID
	}

	return u.Name
}

func (p *pagerDuty) oncall(m *pagerscot.IncomingMessage) *pagerscot.Answer {
	return &pagerscot.Answer{Text: p.whoHasThePager()}
}

// whoHasThePager returns a message naming the registered user on call or explaining why it isn't known
func (p *pagerDuty) whoHasThePager() string {
	u, err := p.resolver.GetOncallUser(context.Background(), p.conf.ScheduleID)
	if err == nil {
		return fmt.Sprintf("<@%s> has the pager", u.ChatID)
	}

	var uoe *pager.UnknownOncallUserError
	switch {
	case errors.As(err, &uoe):
		return fmt.Sprintf("PagerDuty user `%s` has the pager but isn't registered with me", uoe.PagerDutyID)
	case errors.Is(err, pager.ErrNobodyOncall):
		return "Nobody has the pager right now"
	}

	p.Logger.Printf("[%s] Error finding who is on call for schedule [%s]: %v\n", PagerDutyPluginName, p.conf.ScheduleID, err)

	return fmt.Sprintf(oncallUnknownMsgFn, causeOf(err))
}

func (p *pagerDuty) steal(m *pagerscot.IncomingMessage) *pagerscot.Answer {
	rawDuration := argumentOf(stealRegex, m)
	if rawDuration == "" {
		return &pagerscot.Answer{Text: "Sorry, you need to specify the number of minutes for which you'd like to steal the pager"}
	}

	requestor, err := p.registry.GetUser(m.User)
	if isNotFound(err) {
		return &pagerscot.Answer{Text: unknownUserMsg}
	} else if err != nil {
		return p.somethingWentWrong("loading user", err)
	}

	minutes, err := parseMinutes(rawDuration)
	if err != nil {
		var ve *pager.ValidationError
		if errors.As(err, &ve) {
			return &pagerscot.Answer{Text: fmt.Sprintf("Sorry, I could not transform `%s` into a number of minutes", ve.Value)}
		}

		return p.somethingWentWrong("parsing duration", err)
	}

	ctx := context.Background()
	oncallID, err := p.resolver.OncallPagerDutyID(ctx, p.conf.ScheduleID)
	if err != nil && !errors.Is(err, pager.ErrNobodyOncall) {
		p.Logger.Printf("[%s] Error finding who is on call for schedule [%s]: %v\n", PagerDutyPluginName, p.conf.ScheduleID, err)
		return &pagerscot.Answer{Text: fmt.Sprintf(oncallUnknownMsgFn, causeOf(err))}
	}

	if oncallID == requestor.PagerDutyID {
		return &pagerscot.Answer{Text: "Sorry, you are already on call"}
	}

	p.Logger.Printf("[%s] Override of schedule [%s] requested by [%s] for [%d] minutes\n", PagerDutyPluginName, p.conf.ScheduleID, requestor.ChatID, minutes)

	if err = p.gateway.CreateOverride(ctx, p.conf.ScheduleID, requestor.PagerDutyID, p.now(), minutes); err != nil {
		p.Logger.Printf("[%s] Error overriding schedule [%s]: %v\n", PagerDutyPluginName, p.conf.ScheduleID, err)
		return &pagerscot.Answer{Text: fmt.Sprintf("Sorry, I couldn't steal the pager for you: %v", causeOf(err))}
	}

	return &pagerscot.Answer{Text: fmt.Sprintf("Rejoice ye oncall, <@%s> has the pager for %d minute(s)", requestor.ChatID, minutes)}
}

// parseMinutes returns the number of minutes of a steal duration. A ValidationError is returned
// if the duration isn't a positive integer
func parseMinutes(raw string) (minutes int, err error) {
	minutes, err = strconv.Atoi(raw)
	if err != nil {
		return 0, &pager.ValidationError{Field: "duration", Value: raw, Reason: "not an integer"}
	}

	if minutes <= 0 {
		return 0, &pager.ValidationError{Field: "duration", Value: raw, Reason: "must be a positive number of minutes"}
	}

	return minutes, nil
}

// reportOncall posts who has the pager on the report channel
func (p *pagerDuty) reportOncall() {
	if p.configErr != nil {
		p.Logger.Printf("[%s] Skipping on-call report: %v\n", PagerDutyPluginName, p.configErr)
		return
	}

	p.RealTimeMsgSender.SendMessage(p.RealTimeMsgSender.NewOutgoingMessage(p.whoHasThePager(), p.reportChannelID))
}

// somethingWentWrong logs an unexpected error and returns a generic answer
func (p *pagerDuty) somethingWentWrong(what string, err error) *pagerscot.Answer {
	p.Logger.Printf("[%s] Error %s: %v\n", PagerDutyPluginName, what, err)

	return &pagerscot.Answer{Text: checkTheLogsMsg}
}

func isNotFound(err error) bool {
	var nf *pager.NotFoundError
	return errors.As(err, &nf)
}

// causeOf returns the cause of an upstream error, the error itself otherwise
func causeOf(err error) error {
	var ue *pager.UpstreamError
	if errors.As(err, &ue) {
		return ue.Err
	}

	return err
}
