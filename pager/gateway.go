package pager

import (
	"context"
	"github.com/PagerDuty/go-pagerduty"
	"net/http"
	"strings"
	"time"
)

// Incident statuses
const (
	StatusTriggered    = "triggered"
	StatusAcknowledged = "acknowledged"
	StatusResolved     = "resolved"
)

const (
	incidentReferenceType = "incident_reference"
	userReferenceType     = "user_reference"
	incidentsPageSize     = 100
	maxIncidentPages      = 10
)

// IncidentGateway is implemented by any value that can query and manipulate PagerDuty incidents, users and schedules
type IncidentGateway interface {
	// ListActive returns the triggered incidents followed by the acknowledged ones
	ListActive(ctx context.Context) (incidents []pagerduty.Incident, err error)

	// GetIncident returns a single incident
	GetIncident(ctx context.Context, incidentID string) (incident *pagerduty.Incident, err error)

	// Acknowledge acknowledges an incident on behalf of the requestor
	Acknowledge(ctx context.Context, requestor UserRecord, incidentID string) (err error)

	// Resolve resolves an incident on behalf of the requestor
	Resolve(ctx context.Context, requestor UserRecord, incidentID string) (err error)

	// Trigger creates a new incident on the service and returns its incident key
	Trigger(ctx context.Context, serviceKey string, requestorName string, message string) (incidentKey string, err error)

	// CreateOverride puts the PagerDuty user on call for the schedule from start for the duration in minutes
	CreateOverride(ctx context.Context, scheduleID string, pagerDutyID string, start time.Time, durationMinutes int) (err error)

	// FindUserIDByEmail returns the ID of the PagerDuty user with the email
	FindUserIDByEmail(ctx context.Context, email string) (pagerDutyID string, err error)

	// ScheduleEntries returns the final rendered entries of a schedule between since and until
	ScheduleEntries(ctx context.Context, scheduleID string, since time.Time, until time.Time) (entries []pagerduty.RenderedScheduleEntry, err error)
}

// apiClient is implemented by any value that has the subset of *pagerduty.Client methods used by the Gateway
type apiClient interface {
	ListIncidentsWithContext(ctx context.Context, o pagerduty.ListIncidentsOptions) (*pagerduty.ListIncidentsResponse, error)
	GetIncidentWithContext(ctx context.Context, id string) (*pagerduty.Incident, error)
	ManageIncidentsWithContext(ctx context.Context, from string, incidents []pagerduty.ManageIncidentsOptions) (*pagerduty.ListIncidentsResponse, error)
	ListUsersWithContext(ctx context.Context, o pagerduty.ListUsersOptions) (*pagerduty.ListUsersResponse, error)
	GetScheduleWithContext(ctx context.Context, id string, o pagerduty.GetScheduleOptions) (*pagerduty.Schedule, error)
	CreateOverrideWithContext(ctx context.Context, scheduleID string, o pagerduty.Override) (*pagerduty.Override, error)
}

// Gateway implements IncidentGateway with the PagerDuty REST API (through github.com/PagerDuty/go-pagerduty)
// and the generic events API
type Gateway struct {
	client         apiClient
	httpClient     *http.Client
	eventsEndpoint string
	description    string
	timeout        time.Duration
	log            Logger
}

// Logger is implemented by any value that can log a formatted message (i.e. *log.Logger)
type Logger interface {
	Printf(format string, v ...interface{})
}

type discardLogger struct {
}

func (d discardLogger) Printf(format string, v ...interface{}) {
}

// GatewayOption defines an option for a Gateway
type GatewayOption func(*Gateway)

// OptionHTTPClient sets the http client used to send events
func OptionHTTPClient(httpClient *http.Client) func(*Gateway) {
	return func(g *Gateway) {
		g.httpClient = httpClient
	}
}

// OptionLogger sets the logger for events worth reporting that aren't failures
func OptionLogger(logger Logger) func(*Gateway) {
	return func(g *Gateway) {
		g.log = logger
	}
}

// NewGateway returns a new Gateway for the configuration. ErrNotConfigured is returned (wrapped) if
// the configuration is incomplete
func NewGateway(conf Config, options ...GatewayOption) (g *Gateway, err error) {
	if err = conf.Validate(); err != nil {
		return nil, err
	}

	conf = conf.WithDefaults()

	g = new(Gateway)
	g.client = pagerduty.NewClient(conf.APIKey, pagerduty.WithAPIEndpoint(conf.APIEndpoint))
	g.httpClient = &http.Client{Timeout: conf.RequestTimeout}
	g.eventsEndpoint = conf.EventsEndpoint
	g.description = conf.TriggerDescription
	g.timeout = conf.RequestTimeout
	g.log = discardLogger{}

	for _, opt := range options {
		opt(g)
	}

	return g, nil
}

// call runs the operation with the gateway timeout and turns any failure into an UpstreamError
func (g *Gateway) call(ctx context.Context, op string, id string, operation func(ctx context.Context) error) (err error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err = operation(ctx); err != nil {
		return &UpstreamError{Op: op, ID: id, Err: err}
	}

	return nil
}

// ListActive returns the triggered incidents followed by the acknowledged ones, each group in the
// order PagerDuty returns them
func (g *Gateway) ListActive(ctx context.Context) (incidents []pagerduty.Incident, err error) {
	incidents = make([]pagerduty.Incident, 0)

	for _, status := range []string{StatusTriggered, StatusAcknowledged} {
		byStatus, err := g.listIncidents(ctx, status)
		if err != nil {
			return nil, err
		}

		incidents = append(incidents, byStatus...)
	}

	return incidents, nil
}

func (g *Gateway) listIncidents(ctx context.Context, status string) (incidents []pagerduty.Incident, err error) {
	incidents = make([]pagerduty.Incident, 0)

	err = g.call(ctx, "list incidents", status, func(ctx context.Context) error {
		opts := pagerduty.ListIncidentsOptions{Statuses: []string{status}, Limit: incidentsPageSize}

		for page := 0; page < maxIncidentPages; page++ {
			resp, err := g.client.ListIncidentsWithContext(ctx, opts)
			if err != nil {
				return err
			}

			incidents = append(incidents, resp.Incidents...)

			if !resp.More || len(resp.Incidents) == 0 {
				return nil
			}

			opts.Offset = opts.Offset + uint(len(resp.Incidents))
		}

		g.log.Printf("Stopped listing [%s] incidents after [%d] pages, returning the first [%d] only\n", status, maxIncidentPages, len(incidents))
		return nil
	})

	return incidents, err
}

// GetIncident returns a single incident
func (g *Gateway) GetIncident(ctx context.Context, incidentID string) (incident *pagerduty.Incident, err error) {
	err = g.call(ctx, "get incident", incidentID, func(ctx context.Context) (err error) {
		incident, err = g.client.GetIncidentWithContext(ctx, incidentID)
		return err
	})

	return incident, err
}

// Acknowledge acknowledges an incident on behalf of the requestor
func (g *Gateway) Acknowledge(ctx context.Context, requestor UserRecord, incidentID string) (err error) {
	return g.call(ctx, "acknowledge incident", incidentID, func(ctx context.Context) error {
		return g.manageIncident(ctx, requestor, incidentID, StatusAcknowledged)
	})
}

// Resolve resolves an incident on behalf of the requestor
func (g *Gateway) Resolve(ctx context.Context, requestor UserRecord, incidentID string) (err error) {
	return g.call(ctx, "resolve incident", incidentID, func(ctx context.Context) error {
		return g.manageIncident(ctx, requestor, incidentID, StatusResolved)
	})
}

// manageIncident changes the status of an incident. The PagerDuty API identifies the requestor
// by its email in the From header
func (g *Gateway) manageIncident(ctx context.Context, requestor UserRecord, incidentID string, status string) (err error) {
	_, err = g.client.ManageIncidentsWithContext(ctx, requestor.Email, []pagerduty.ManageIncidentsOptions{{
		ID:     incidentID,
		Type:   incidentReferenceType,
		Status: status,
	}})

	return err
}

// CreateOverride puts the PagerDuty user on call for the schedule from start for the duration in minutes
func (g *Gateway) CreateOverride(ctx context.Context, scheduleID string, pagerDutyID string, start time.Time, durationMinutes int) (err error) {
	end := start.Add(time.Duration(durationMinutes) * time.Minute)

	return g.call(ctx, "create override", scheduleID, func(ctx context.Context) (err error) {
		_, err = g.client.CreateOverrideWithContext(ctx, scheduleID, pagerduty.Override{
			Start: start.Format(time.RFC3339),
			End:   end.Format(time.RFC3339),
			User:  pagerduty.APIObject{ID: pagerDutyID, Type: userReferenceType},
		})

		return err
	})
}

// FindUserIDByEmail returns the ID of the PagerDuty user with the email. A NotFoundError is returned
// if PagerDuty has no user with that email
func (g *Gateway) FindUserIDByEmail(ctx context.Context, email string) (pagerDutyID string, err error) {
	var users []pagerduty.User

	err = g.call(ctx, "find user", email, func(ctx context.Context) error {
		resp, err := g.client.ListUsersWithContext(ctx, pagerduty.ListUsersOptions{Query: email})
		if err != nil {
			return err
		}

		users = resp.Users
		return nil
	})

	if err != nil {
		return "", err
	}

	// The query is a prefix match on names and emails so only an exact email match counts
	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			return u.ID, nil
		}
	}

	return "", &NotFoundError{Subject: "PagerDuty user", Field: "email", Value: email}
}

// ScheduleEntries returns the final rendered entries of a schedule between since and until. Overflow
// is left to its PagerDuty default (disabled) so entries are clipped to the window
func (g *Gateway) ScheduleEntries(ctx context.Context, scheduleID string, since time.Time, until time.Time) (entries []pagerduty.RenderedScheduleEntry, err error) {
	err = g.call(ctx, "get schedule", scheduleID, func(ctx context.Context) error {
		s, err := g.client.GetScheduleWithContext(ctx, scheduleID, pagerduty.GetScheduleOptions{
			Since: since.Format(time.RFC3339),
			Until: until.Format(time.RFC3339),
		})
		if err != nil {
			return err
		}

		entries = s.FinalSchedule.RenderedScheduleEntries
		return nil
	})

	return entries, err
}
