package pager

import (
	"context"
	"github.com/PagerDuty/go-pagerduty"
	"github.com/pkg/errors"
	"time"
)

// ScheduleEntryLister is implemented by any value that has the ScheduleEntries method. IncidentGateway
// implementations satisfy it
type ScheduleEntryLister interface {
	ScheduleEntries(ctx context.Context, scheduleID string, since time.Time, until time.Time) (entries []pagerduty.RenderedScheduleEntry, err error)
}

// OncallResolver finds who is currently on call for a schedule
type OncallResolver struct {
	entries  ScheduleEntryLister
	registry *Registry
	window   time.Duration
	now      func() time.Time
}

// ResolverOption defines an option for an OncallResolver
type ResolverOption func(*OncallResolver)

// OptionOncallWindow sets the length of the window, starting now, in which schedule entries are considered
func OptionOncallWindow(window time.Duration) func(*OncallResolver) {
	return func(r *OncallResolver) {
		if window > 0 {
			r.window = window
		}
	}
}

// OptionClock sets the function returning the current time
func OptionClock(now func() time.Time) func(*OncallResolver) {
	return func(r *OncallResolver) {
		r.now = now
	}
}

// NewOncallResolver returns a new OncallResolver looking up schedule entries with the lister and
// on-call users with the registry
func NewOncallResolver(entries ScheduleEntryLister, registry *Registry, options ...ResolverOption) (r *OncallResolver) {
	r = new(OncallResolver)
	r.entries = entries
	r.registry = registry
	r.window = DefaultOncallWindow
	r.now = time.Now

	for _, opt := range options {
		opt(r)
	}

	return r
}

// OncallPagerDutyID returns the PagerDuty ID of the user on call for the schedule. When more than one
// entry falls in the window, the one starting first wins. ErrNobodyOncall is returned if the window
// has no entries
func (r *OncallResolver) OncallPagerDutyID(ctx context.Context, scheduleID string) (pagerDutyID string, err error) {
	since := r.now()
	until := since.Add(r.window)

	entries, err := r.entries.ScheduleEntries(ctx, scheduleID, since, until)
	if err != nil {
		var ue *UpstreamError
		if !errors.As(err, &ue) {
			err = &UpstreamError{Op: "get schedule", ID: scheduleID, Err: err}
		}

		return "", err
	}

	if len(entries) == 0 {
		return "", errors.Wrapf(ErrNobodyOncall, "schedule [%s] has no entry between [%s] and [%s]", scheduleID, since.Format(time.RFC3339), until.Format(time.RFC3339))
	}

	return earliestEntry(entries).User.ID, nil
}

// GetOncallUser returns the registered user on call for the schedule. An UnknownOncallUserError
// is returned when the on-call PagerDuty user isn't registered
func (r *OncallResolver) GetOncallUser(ctx context.Context, scheduleID string) (u UserRecord, err error) {
	pagerDutyID, err := r.OncallPagerDutyID(ctx, scheduleID)
	if err != nil {
		return UserRecord{}, err
	}

	u, err = r.registry.FindByPagerDutyID(pagerDutyID)

	var nf *NotFoundError
	if errors.As(err, &nf) {
		return UserRecord{}, &UnknownOncallUserError{PagerDutyID: pagerDutyID, ScheduleID: scheduleID}
	}

	return u, err
}

// earliestEntry returns the entry with the earliest start. Ties, and entries with a start that
// can't be parsed, keep the upstream order
func earliestEntry(entries []pagerduty.RenderedScheduleEntry) (earliest pagerduty.RenderedScheduleEntry) {
	earliest = entries[0]
	earliestStart, err := time.Parse(time.RFC3339, earliest.Start)
	if err != nil {
		return earliest
	}

	for _, e := range entries[1:] {
		start, err := time.Parse(time.RFC3339, e.Start)
		if err != nil {
			continue
		}

		if start.Before(earliestStart) {
			earliest = e
			earliestStart = start
		}
	}

	return earliest
}
