package pagerscot

import (
	"github.com/alexandre-normand/pagerscot/config"
	"github.com/spf13/viper"
	"io"
)

// Builder holds a bot instance to build
type Builder struct {
	bot *Bot
	err error
}

// NewBot returns a new Builder used to set up a new bot
func NewBot(name string, v *viper.Viper, options ...Option) (bb *Builder) {
	bb = new(Builder)
	bb.bot, bb.err = New(name, v, options...)

	return bb
}

// WithPlugin adds a plugin to the bot
func (bb *Builder) WithPlugin(p *Plugin) *Builder {
	if bb.err != nil {
		return bb
	}

	bb.bot.RegisterPlugin(p)

	return bb
}

// WithPluginErr adds a plugin that has a creation function returning (Plugin, error) to the bot
func (bb *Builder) WithPluginErr(p *Plugin, err error) *Builder {
	if bb.err == nil && err != nil {
		bb.err = err
	}

	return bb.WithPlugin(p)
}

// ConfigurablePluginErr is a plugin creation function taking the plugin's configuration
type ConfigurablePluginErr func(c *config.PluginConfig) (p *Plugin, err error)

// WithConfigurablePluginErr adds a plugin created with its configuration sub-tree (plugins.<name>). A missing
// configuration is given as nil, leaving it to the plugin to decide whether it can do without it
func (bb *Builder) WithConfigurablePluginErr(name string, newPlugin ConfigurablePluginErr) *Builder {
	if bb.err != nil {
		return bb
	}

	pc, err := config.GetPluginConfig(bb.bot.config, name)
	if err != nil {
		bb.bot.log.Printf("%v, creating plugin [%s] without configuration\n", err, name)
		pc = nil
	}

	return bb.WithPluginErr(newPlugin(pc))
}

// WithPluginCloserErr adds a plugin that has a creation function returning (io.Closer, Plugin, error) to the bot.
// The closer is closed when the bot is
func (bb *Builder) WithPluginCloserErr(closer io.Closer, p *Plugin, err error) *Builder {
	if bb.err == nil && err != nil {
		bb.err = err
	}

	if bb.err != nil {
		return bb
	}

	bb.bot.RegisterPlugin(p)

	if closer != nil {
		bb.bot.closers = append(bb.bot.closers, closer)
	}

	return bb
}

// WithCloser adds a closer to close along with the bot (i.e. a storer shared by plugins)
func (bb *Builder) WithCloser(closer io.Closer) *Builder {
	if bb.err == nil && closer != nil {
		bb.bot.closers = append(bb.bot.closers, closer)
	}

	return bb
}

// Build returns the built bot instance. If there was an error during
// setup, the error is returned along with a nil bot
func (bb *Builder) Build() (b *Bot, err error) {
	if bb.err != nil {
		return nil, bb.err
	}

	return bb.bot, nil
}
