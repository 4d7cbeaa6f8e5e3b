package pager

import (
	"github.com/pkg/errors"
	"sort"
	"strings"
	"time"
)

// Defaults of the optional configuration values
const (
	DefaultAPIEndpoint        = "https://api.pagerduty.com"
	DefaultEventsEndpoint     = "https://events.pagerduty.com/generic/2010-04-15/create_event.json"
	DefaultTriggerDescription = "Urgent page via chat"
	DefaultRequestTimeout     = 10 * time.Second
	DefaultOncallWindow       = time.Hour
)

// Config holds the PagerDuty settings
type Config struct {
	// Subdomain of the PagerDuty account (i.e. "acme" for acme.pagerduty.com)
	Subdomain string

	// APIKey is the REST API token
	APIKey string

	// ServiceAPIKey is the integration key of the service incidents are triggered on
	ServiceAPIKey string

	// ScheduleID is the on-call schedule
	ScheduleID string

	APIEndpoint        string
	EventsEndpoint     string
	TriggerDescription string

	// RequestTimeout bounds every call made to PagerDuty
	RequestTimeout time.Duration

	// OncallWindow is the length of the window, starting now, in which on-call entries are looked up
	OncallWindow time.Duration
}

// WithDefaults returns a copy of the configuration with defaults set for the optional values left empty
func (c Config) WithDefaults() Config {
	if c.APIEndpoint == "" {
		c.APIEndpoint = DefaultAPIEndpoint
	}

	if c.EventsEndpoint == "" {
		c.EventsEndpoint = DefaultEventsEndpoint
	}

	if c.TriggerDescription == "" {
		c.TriggerDescription = DefaultTriggerDescription
	}

	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}

	if c.OncallWindow <= 0 {
		c.OncallWindow = DefaultOncallWindow
	}

	return c
}

// Validate returns an error wrapping ErrNotConfigured when any of the required values is missing
func (c Config) Validate() (err error) {
	missing := make([]string, 0)

	for name, value := range map[string]string{"subdomain": c.Subdomain, "apiKey": c.APIKey, "serviceApiKey": c.ServiceAPIKey, "scheduleId": c.ScheduleID} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return errors.Wrapf(ErrNotConfigured, "missing %s", strings.Join(missing, ", "))
	}

	return nil
}

// IncidentURL returns the web URL of an incident on the configured subdomain
func (c Config) IncidentURL(incidentID string) string {
	return "https://" + c.Subdomain + ".pagerduty.com/incidents/" + incidentID
}
