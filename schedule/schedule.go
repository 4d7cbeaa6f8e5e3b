// Package schedule defines the scheduling of pagerscot actions
package schedule

import (
	"fmt"
	"github.com/go-co-op/gocron"
	"strings"
	"time"
)

// Definition represents when a scheduled action runs
type Definition struct {
	// Interval value (every 1 minute would be expressed with an interval of 1). Must be set explicitly or implicitly (a weekday value implicitly sets the interval to 1)
	Interval int

	// Must be set explicitly or implicitly ("weeks" is implicitly set when "Weekday" is set). Valid time units are: "weeks", "hours", "days", "minutes", "seconds"
	Unit string

	// Optional day of the week. If set, unit and interval are ignored and implicitly considered to be "every 1 week"
	Weekday string

	// Optional "at time" value (i.e. "10:30")
	AtTime string
}

// Unit values
const (
	Weeks   = "weeks"
	Hours   = "hours"
	Days    = "days"
	Minutes = "minutes"
	Seconds = "seconds"
)

var weekdayToNumeral = map[string]time.Weekday{
	time.Monday.String():    time.Monday,
	time.Tuesday.String():   time.Tuesday,
	time.Wednesday.String(): time.Wednesday,
	time.Thursday.String():  time.Thursday,
	time.Friday.String():    time.Friday,
	time.Saturday.String():  time.Saturday,
	time.Sunday.String():    time.Sunday,
}

// String returns a human-friendly string for the Definition
func (d Definition) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Every ")

	if d.Weekday != "" {
		fmt.Fprintf(&b, "%s", d.Weekday)
	} else if d.Interval == 1 {
		fmt.Fprintf(&b, "%s", strings.TrimSuffix(d.Unit, "s"))
	} else {
		fmt.Fprintf(&b, "%d %s", d.Interval, d.Unit)
	}

	if d.AtTime != "" {
		fmt.Fprintf(&b, " at %s", d.AtTime)
	}

	return b.String()
}

// Schedule registers the action with the scheduler according to the definition. An error is returned
// if the definition is invalid, in which case nothing is scheduled
func Schedule(s *gocron.Scheduler, d Definition, action func()) (j *gocron.Job, err error) {
	weekday, isWeekly := weekdayToNumeral[d.Weekday]
	if !isWeekly && !isValidUnit(d.Unit) {
		return nil, fmt.Errorf("Invalid schedule unit [%s]", d.Unit)
	}

	if isWeekly {
		s = s.Every(1).Weekday(weekday)
	} else {
		s = s.Every(d.Interval)

		switch d.Unit {
		case Weeks:
			s = s.Weeks()
		case Hours:
			s = s.Hours()
		case Days:
			s = s.Days()
		case Minutes:
			s = s.Minutes()
		case Seconds:
			s = s.Seconds()
		}
	}

	if d.AtTime != "" {
		s = s.At(d.AtTime)
	}

	return s.Do(action)
}

func isValidUnit(unit string) bool {
	switch unit {
	case Weeks, Hours, Days, Minutes, Seconds:
		return true
	}

	return false
}

// Builder holds a Definition to build
type Builder struct {
	definition Definition
}

// New returns a new Builder to set up a schedule Definition
func New() (b *Builder) {
	b = new(Builder)
	b.definition = Definition{}

	return b
}

// Every sets the weekday (a time.Weekday name) of a weekly schedule
func (b *Builder) Every(weekday string) *Builder {
	b.definition.Weekday = weekday
	b.definition.Interval = 1

	return b
}

// EveryN sets an interval and unit for the schedule
func (b *Builder) EveryN(interval int, unit string) *Builder {
	b.definition.Interval = interval
	b.definition.Unit = unit

	return b
}

// AtTime sets the "at time" of the schedule (i.e. "10:30")
func (b *Builder) AtTime(atTime string) *Builder {
	b.definition.AtTime = atTime

	return b
}

// Build returns the schedule Definition
func (b *Builder) Build() Definition {
	return b.definition
}
