package pagerscot

import (
	"fmt"
	"github.com/alexandre-normand/pagerscot/config"
	"github.com/alexandre-normand/pagerscot/schedule"
	"github.com/go-co-op/gocron"
	"github.com/slack-go/slack"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"io"
	"log"
	"os"
	"os/signal"
	"regexp"
	"syscall"
	"time"
)

// VERSION is the engine version reported by the help command
const VERSION = "1.0.0"

// Bot represents what defines a pagerscot bot (mostly, a name and its plugins)
type Bot struct {
	name          string
	config        *viper.Viper
	defaultAction Answerer
	plugins       []*Plugin
	closers       []io.Closer

	// Flattened commands of all plugins, help included, set when the bot starts
	commands []ActionDefinition

	selfID        string
	selfName      string
	selfMentionRe *regexp.Regexp

	logger *log.Logger
	log    *sLogger
	meter  metric.Meter
	*instrumenter

	scheduler *gocron.Scheduler
}

// Plugin represents a plugin (its name, action definitions and the services injected by the bot)
type Plugin struct {
	Name             string
	Commands         []ActionDefinition
	ScheduledActions []ScheduledActionDefinition

	// Services injected on startup

	// Logger is the bot's logger, available to plugins for their own logging
	Logger SLogger

	// UserInfoFinder looks up slack users
	UserInfoFinder UserInfoFinder

	// RealTimeMsgSender sends messages outside of the normal answer flow (i.e. from a scheduled action)
	RealTimeMsgSender RealTimeMessageSender
}

// ActionDefinition represents how an action is triggered, published, used and described
// along with defining the function defining its behavior
type ActionDefinition struct {
	// Indicates whether the action should be omitted from the help message
	Hidden bool

	// Matcher that will determine whether or not the action should be triggered
	Match Matcher

	// Usage example
	Usage string

	// Help description for the action
	Description string

	// Function to execute if the Matcher matches
	Answer Answerer
}

// IncomingMessage holds a slack message along with its text normalized for matching. For a command
// addressed with a mention, the normalized text is the text without the bot mention prefix
type IncomingMessage struct {
	NormalizedText string

	// Direct is true when the message was sent in a direct conversation with the bot
	Direct bool

	slack.Msg
}

// Matcher is the function that determines whether or not an action should be triggered. Note that a match doesn't guarantee that the action should
// actually respond with anything once invoked
type Matcher func(m *IncomingMessage) bool

// Answerer is what gets executed when an ActionDefinition is triggered. A nil Answer means
// the action has nothing to say
type Answerer func(m *IncomingMessage) *Answer

// ScheduledActionDefinition represents when a scheduled action is triggered as well
// as what it does and how
type ScheduledActionDefinition struct {
	// Indicates whether the action should be omitted from the help message
	Hidden bool

	// Schedule definition determining when the action runs
	Schedule schedule.Definition

	// Help description for the scheduled action
	Description string

	// Action is the function that is invoked when the schedule activates
	Action ScheduledAction
}

// ScheduledAction is what gets executed when a ScheduledActionDefinition is triggered (by its Schedule)
type ScheduledAction func()

// String returns a friendly description of a ScheduledActionDefinition
func (a ScheduledActionDefinition) String() string {
	return fmt.Sprintf("`%s` - %s", a.Schedule, a.Description)
}

// String returns a friendly description of an ActionDefinition
func (a ActionDefinition) String() string {
	return fmt.Sprintf("`%s` - %s", a.Usage, a.Description)
}

// selfInfoFinder defines the interface for finding our (the bot instance) user info
type selfInfoFinder interface {
	GetInfo() (user *slack.Info)
}

// terminationEvent is pushed on the event channel to stop the event loop
type terminationEvent struct {
}

// Option defines an option for a Bot
type Option func(*Bot)

// OptionLog sets a logger for the bot
func OptionLog(logger *log.Logger) func(*Bot) {
	return func(b *Bot) {
		b.logger = logger
	}
}

// OptionLogfile sets a logfile for the bot's logger
func OptionLogfile(logfile *os.File) func(*Bot) {
	return func(b *Bot) {
		b.logger = log.New(logfile, defaultLogPrefix, defaultLogFlag)
	}
}

// OptionMeter sets the meter used for the bot's metrics. The global otel meter provider is used
// by default
func OptionMeter(meter metric.Meter) func(*Bot) {
	return func(b *Bot) {
		b.meter = meter
	}
}

const (
	defaultLogPrefix = "pagerscot: "
	defaultLogFlag   = log.Lshortfile | log.LstdFlags
)

// New creates a new bot given a name and a viper configuration. Prefer NewBot to also
// register plugins
func New(name string, v *viper.Viper, options ...Option) (b *Bot, err error) {
	b = new(Bot)
	b.name = name
	b.config = v
	b.plugins = make([]*Plugin, 0)
	b.closers = make([]io.Closer, 0)
	b.defaultAction = func(m *IncomingMessage) *Answer {
		return &Answer{Text: fmt.Sprintf("I don't understand, ask me for \"%s\" to get a list of things I do", helpPluginName)}
	}

	b.logger = log.New(os.Stdout, defaultLogPrefix, defaultLogFlag)

	for _, opt := range options {
		opt(b)
	}

	if b.meter == nil {
		b.meter = otel.GetMeterProvider().Meter(name)
	}

	b.log = NewSLogger(b.logger, v.GetBool(config.DebugKey))

	if b.instrumenter, err = newInstrumenter(b.meter); err != nil {
		return nil, err
	}

	return b, nil
}

// RegisterPlugin registers a plugin with the bot. This should be invoked
// prior to calling Run
func (b *Bot) RegisterPlugin(p *Plugin) {
	b.plugins = append(b.plugins, p)
}

// Close closes all registered closers. The first error encountered is returned but all
// closers are closed regardless
func (b *Bot) Close() (err error) {
	for _, c := range b.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}

	return err
}

// Run starts the bot and loops until the process is interrupted
func (b *Bot) Run() (err error) {
	api := slack.New(
		b.config.GetString(config.TokenKey),
		slack.OptionDebug(b.config.GetBool(config.DebugKey)),
		slack.OptionLog(log.New(os.Stdout, "slack: ", defaultLogFlag)),
	)

	rtm := api.NewRTM()
	go rtm.ManageConnection()
	defer rtm.Disconnect()

	timeLoc, err := config.GetTimeLocation(b.config)
	if err != nil {
		return err
	}

	uf, err := NewCachingUserInfoFinder(b.config, api, b.log)
	if err != nil {
		return err
	}

	tuf, err := NewUserInfoFinderWithTelemetry(uf, b.name, b.meter)
	if err != nil {
		return err
	}

	b.start(tuf, rtm)

	if err = b.startActionScheduler(timeLoc); err != nil {
		return err
	}
	defer b.scheduler.Stop()

	go b.watchForTerminationSignalToAbort(rtm.IncomingEvents)

	termination := make(chan bool)
	go b.handleIncomingEvents(rtm.IncomingEvents, termination, rtm, rtm)

	<-termination
	b.log.Printf("Terminating [%s]\n", b.name)

	return nil
}

// start registers the help plugin, injects services into all plugins and flattens their commands
func (b *Bot) start(uf UserInfoFinder, sender RealTimeMessageSender) {
	help := b.newHelpPlugin(VERSION)
	b.RegisterPlugin(&help.Plugin)

	b.commands = make([]ActionDefinition, 0)
	for _, p := range b.plugins {
		p.Logger = b.log
		p.UserInfoFinder = uf
		p.RealTimeMsgSender = sender

		b.commands = append(b.commands, p.Commands...)
	}
}

// watchForTerminationSignalToAbort waits for a SIGTERM or SIGINT and pushes a termination event to finish
// the main event loop and terminate cleanly. Note that this is meant to run in a go routine given that this is blocking
func (b *Bot) watchForTerminationSignalToAbort(events chan<- slack.RTMEvent) {
	tSignals := make(chan os.Signal, 1)
	signal.Notify(tSignals, syscall.SIGINT, syscall.SIGTERM)
	sig := <-tSignals

	b.log.Debugf("Received termination signal [%s], stopping event processing\n", sig)
	events <- slack.RTMEvent{Type: "termination", Data: &terminationEvent{}}
}

// handleIncomingEvents processes events until the channel is closed, a termination event is received
// or slack reports invalid credentials. A value is sent on termination once processing is done
func (b *Bot) handleIncomingEvents(events <-chan slack.RTMEvent, termination chan<- bool, sender RealTimeMessageSender, sif selfInfoFinder) {
	defer func() { termination <- true }()

	for msg := range events {
		switch e := msg.Data.(type) {
		case *slack.ConnectedEvent:
			b.log.Printf("Infos: %v\n", e.Info)
			b.log.Printf("Connection counter: %d\n", e.ConnectionCount)
			b.cacheSelfIdentity(sif)

		case *slack.MessageEvent:
			b.processMessageEvent(sender, e)

		case *slack.LatencyReport:
			b.log.Debugf("Current latency: %v\n", e.Value)

		case *slack.RTMError:
			b.log.Printf("Error: %s\n", e.Error())

		case *slack.InvalidAuthEvent:
			b.log.Printf("Invalid credentials\n")
			return

		case *terminationEvent:
			return

		default:
			// Ignoring other events
		}
	}
}

// cacheSelfIdentity gets "our" identity and keeps the selfID and selfName to avoid having to look it up every time
func (b *Bot) cacheSelfIdentity(sif selfInfoFinder) {
	info := sif.GetInfo()
	if info == nil || info.User == nil {
		b.log.Printf("Self identity unavailable, commands won't be detected until the next connection\n")
		return
	}

	b.selfID = info.User.ID
	b.selfName = info.User.Name
	b.selfMentionRe = regexp.MustCompile("(?s)^(<@" + regexp.QuoteMeta(b.selfID) + ">|@?" + regexp.QuoteMeta(b.selfName) + "):? (.+)")

	b.log.Debugf("Caching self id [%s] and self name [%s]\n", b.selfID, b.selfName)
}

// startActionScheduler registers all plugins' scheduled actions with a new scheduler and starts it
func (b *Bot) startActionScheduler(timeLoc *time.Location) (err error) {
	b.scheduler = gocron.NewScheduler(timeLoc)

	for _, p := range b.plugins {
		for _, sa := range p.ScheduledActions {
			j, err := schedule.Schedule(b.scheduler, sa.Schedule, sa.Action)
			if err != nil {
				return fmt.Errorf("Unable to schedule action [%s] of plugin [%s]: %v", sa.Schedule, p.Name, err)
			}

			b.log.Debugf("Added job [%s] to scheduler, next run at [%s]\n", sa.Schedule, j.NextRun())
		}
	}

	b.scheduler.StartAsync()

	return nil
}
