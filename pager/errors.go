package pager

import (
	"fmt"
	"github.com/pkg/errors"
)

var (
	// ErrNotConfigured is returned when the PagerDuty configuration is missing or incomplete
	ErrNotConfigured = errors.New("pagerduty is not configured")

	// ErrNobodyOncall is returned when a schedule has no entry in the on-call window
	ErrNobodyOncall = errors.New("nobody is on call")
)

// NotFoundError is returned when a lookup finds nothing
type NotFoundError struct {
	// Subject is what was looked up (i.e. "user")
	Subject string
	Field   string
	Value   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s found with %s [%s]", e.Subject, e.Field, e.Value)
}

// ConflictError is returned when adding a user would break the uniqueness of its chat ID or email
type ConflictError struct {
	Field    string
	Value    string
	Existing UserRecord
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s [%s] is already registered to [%s]", e.Field, e.Value, e.Existing.ChatID)
}

// UpstreamError is returned when a call to PagerDuty fails, times out or is rejected
type UpstreamError struct {
	Op  string
	ID  string
	Err error
}

func (e *UpstreamError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s [%s] failed: %v", e.Op, e.ID, e.Err)
	}

	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

// Unwrap returns the cause of the upstream failure
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// UnknownOncallUserError is returned when the on-call PagerDuty user isn't registered with a chat user
type UnknownOncallUserError struct {
	PagerDutyID string
	ScheduleID  string
}

func (e *UnknownOncallUserError) Error() string {
	return fmt.Sprintf("on-call PagerDuty user [%s] for schedule [%s] is not registered", e.PagerDutyID, e.ScheduleID)
}

// TriggerFailedError is returned when the events endpoint answers anything other than a 200
type TriggerFailedError struct {
	StatusCode int
	Body       string
}

func (e *TriggerFailedError) Error() string {
	return fmt.Sprintf("trigger failed with status [%d]: %s", e.StatusCode, e.Body)
}

// ValidationError is returned when user input can't be used as given
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s [%s]: %s", e.Field, e.Value, e.Reason)
}
