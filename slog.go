package pagerscot

import (
	"fmt"
	"log"
)

// SLogger is the logger injected in plugins. Printf always logs while Debugf only logs when
// the bot runs with debug enabled
type SLogger interface {
	Printf(format string, v ...interface{})

	Debugf(format string, v ...interface{})
}

type sLogger struct {
	logger *log.Logger
	debug  bool
}

// NewSLogger returns an SLogger writing to logger. Debug statements are dropped unless debug is true
func NewSLogger(logger *log.Logger, debug bool) (sl *sLogger) {
	sl = new(sLogger)
	sl.logger = logger
	sl.debug = debug

	return sl
}

// Debugf logs a debug statement if debug is enabled
func (sl *sLogger) Debugf(format string, v ...interface{}) {
	if !sl.debug {
		return
	}

	sl.output(format, v...)
}

// Printf logs a statement
func (sl *sLogger) Printf(format string, v ...interface{}) {
	sl.output(format, v...)
}

// output writes to the underlying logger with the call depth of the caller of Printf/Debugf
func (sl *sLogger) output(format string, v ...interface{}) {
	sl.logger.Output(3, fmt.Sprintf(format, v...))
}
