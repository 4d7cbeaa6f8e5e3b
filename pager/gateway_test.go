package pager_test

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/alexandre-normand/pagerscot/pager"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

const (
	testAPIKey     = "test-key"
	testServiceKey = "service-key"
	testScheduleID = "S1"
)

// fakePagerDuty is a minimal PagerDuty REST and events API
type fakePagerDuty struct {
	mu sync.Mutex

	incidentsByStatus map[string][]map[string]interface{}
	users             []map[string]interface{}
	entries           []map[string]interface{}
	failPaths         map[string]int
	delay             time.Duration
	moreIncidents     bool
	incidentListings  int

	managed      []map[string]interface{}
	managedFrom  []string
	overrides    []map[string]interface{}
	scheduleArgs []string
	events       []map[string]interface{}
	eventStatus  int
	eventBody    string
}

func newFakePagerDuty() (f *fakePagerDuty) {
	f = new(fakePagerDuty)
	f.incidentsByStatus = make(map[string][]map[string]interface{})
	f.failPaths = make(map[string]int)
	f.eventStatus = http.StatusOK
	f.eventBody = `{"status":"success","message":"Event processed","incident_key":"abc123"}`

	return f
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (f *fakePagerDuty) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if status, ok := f.failPaths[r.URL.Path]; ok {
		writeJSON(w, status, map[string]interface{}{"error": map[string]interface{}{"message": "boom", "code": 2001}})
		return
	}

	switch {
	case r.URL.Path == "/events":
		var event map[string]interface{}
		json.NewDecoder(r.Body).Decode(&event)
		f.events = append(f.events, event)

		w.WriteHeader(f.eventStatus)
		io.WriteString(w, f.eventBody)

	case r.URL.Path == "/incidents" && r.Method == http.MethodGet:
		f.incidentListings++
		incidents := make([]map[string]interface{}, 0)
		for status, byStatus := range f.incidentsByStatus {
			if strings.Contains(r.URL.RawQuery, status) {
				incidents = append(incidents, byStatus...)
			}
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"incidents": incidents, "more": f.moreIncidents})

	case r.URL.Path == "/incidents" && r.Method == http.MethodPut:
		var body struct {
			Incidents []map[string]interface{} `json:"incidents"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		f.managed = append(f.managed, body.Incidents...)
		f.managedFrom = append(f.managedFrom, r.Header.Get("From"))
		writeJSON(w, http.StatusOK, map[string]interface{}{"incidents": body.Incidents})

	case strings.HasPrefix(r.URL.Path, "/incidents/"):
		id := strings.TrimPrefix(r.URL.Path, "/incidents/")
		writeJSON(w, http.StatusOK, map[string]interface{}{"incident": map[string]interface{}{"id": id, "title": "db down", "status": "triggered"}})

	case r.URL.Path == "/users":
		writeJSON(w, http.StatusOK, map[string]interface{}{"users": f.users, "more": false})

	case r.URL.Path == "/schedules/"+testScheduleID:
		f.scheduleArgs = append(f.scheduleArgs, r.URL.RawQuery)
		writeJSON(w, http.StatusOK, map[string]interface{}{"schedule": map[string]interface{}{
			"id":             testScheduleID,
			"final_schedule": map[string]interface{}{"rendered_schedule_entries": f.entries},
		}})

	case r.URL.Path == "/schedules/"+testScheduleID+"/overrides":
		var body map[string]map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		f.overrides = append(f.overrides, body["override"])
		writeJSON(w, http.StatusCreated, map[string]interface{}{"override": body["override"]})

	default:
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"error": map[string]interface{}{"message": "not found", "code": 2100}})
	}
}

func newTestGateway(t *testing.T, f *fakePagerDuty, timeout time.Duration, options ...pager.GatewayOption) (g *pager.Gateway) {
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	g, err := pager.NewGateway(pager.Config{
		Subdomain:      "acme",
		APIKey:         testAPIKey,
		ServiceAPIKey:  testServiceKey,
		ScheduleID:     testScheduleID,
		APIEndpoint:    srv.URL,
		EventsEndpoint: srv.URL + "/events",
		RequestTimeout: timeout,
	}, options...)
	require.NoError(t, err)

	return g
}

func TestNewGatewayWithIncompleteConfig(t *testing.T) {
	_, err := pager.NewGateway(pager.Config{APIKey: testAPIKey})

	if assert.Error(t, err) {
		assert.True(t, errors.Is(err, pager.ErrNotConfigured))
		assert.Contains(t, err.Error(), "scheduleId, serviceApiKey, subdomain")
	}
}

func TestListActiveOrdersTriggeredBeforeAcknowledged(t *testing.T) {
	f := newFakePagerDuty()
	f.incidentsByStatus[pager.StatusAcknowledged] = []map[string]interface{}{{"id": "A1", "status": "acknowledged"}}
	f.incidentsByStatus[pager.StatusTriggered] = []map[string]interface{}{{"id": "T1", "status": "triggered"}, {"id": "T2", "status": "triggered"}}
	g := newTestGateway(t, f, time.Second)

	incidents, err := g.ListActive(context.Background())
	assert.NoError(t, err)

	ids := make([]string, 0)
	for _, i := range incidents {
		ids = append(ids, i.ID)
	}
	assert.Equal(t, []string{"T1", "T2", "A1"}, ids)
}

func TestListActiveStopsAfterMaxPages(t *testing.T) {
	f := newFakePagerDuty()
	f.moreIncidents = true
	f.incidentsByStatus[pager.StatusTriggered] = []map[string]interface{}{{"id": "T1", "status": "triggered"}}

	var logs strings.Builder
	g := newTestGateway(t, f, time.Second, pager.OptionLogger(log.New(&logs, "", 0)))

	incidents, err := g.ListActive(context.Background())
	assert.NoError(t, err)
	assert.Len(t, incidents, 10)

	// 10 pages of triggered incidents and a single empty page of acknowledged ones
	assert.Equal(t, 11, f.incidentListings)
	assert.Equal(t, "Stopped listing [triggered] incidents after [10] pages, returning the first [10] only\n", logs.String())
}

func TestListActiveWithNoIncidents(t *testing.T) {
	g := newTestGateway(t, newFakePagerDuty(), time.Second)

	incidents, err := g.ListActive(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, incidents)
}

func TestListActiveUpstreamFailure(t *testing.T) {
	f := newFakePagerDuty()
	f.failPaths["/incidents"] = http.StatusInternalServerError
	g := newTestGateway(t, f, time.Second)

	_, err := g.ListActive(context.Background())

	var ue *pager.UpstreamError
	if assert.True(t, errors.As(err, &ue)) {
		assert.Equal(t, "list incidents", ue.Op)
	}
}

func TestGetIncident(t *testing.T) {
	g := newTestGateway(t, newFakePagerDuty(), time.Second)

	incident, err := g.GetIncident(context.Background(), "P1")
	assert.NoError(t, err)
	if assert.NotNil(t, incident) {
		assert.Equal(t, "P1", incident.ID)
		assert.Equal(t, "db down", incident.Title)
	}
}

func TestAcknowledgeAndResolve(t *testing.T) {
	f := newFakePagerDuty()
	g := newTestGateway(t, f, time.Second)
	requestor := pager.UserRecord{ChatID: "U1", Email: "a@x.com", PagerDutyID: "P1"}

	assert.NoError(t, g.Acknowledge(context.Background(), requestor, "I1"))
	assert.NoError(t, g.Resolve(context.Background(), requestor, "I2"))

	if assert.Len(t, f.managed, 2) {
		assert.Equal(t, "I1", f.managed[0]["id"])
		assert.Equal(t, "acknowledged", f.managed[0]["status"])
		assert.Equal(t, "incident_reference", f.managed[0]["type"])
		assert.Equal(t, "I2", f.managed[1]["id"])
		assert.Equal(t, "resolved", f.managed[1]["status"])
	}
	assert.Equal(t, []string{"a@x.com", "a@x.com"}, f.managedFrom)
}

func TestAcknowledgeUpstreamFailureCarriesIncidentID(t *testing.T) {
	f := newFakePagerDuty()
	f.failPaths["/incidents"] = http.StatusBadRequest
	g := newTestGateway(t, f, time.Second)

	err := g.Acknowledge(context.Background(), pager.UserRecord{Email: "a@x.com"}, "I1")

	var ue *pager.UpstreamError
	if assert.True(t, errors.As(err, &ue)) {
		assert.Equal(t, "I1", ue.ID)
		assert.Contains(t, ue.Error(), "I1")
	}
}

func TestCreateOverride(t *testing.T) {
	f := newFakePagerDuty()
	g := newTestGateway(t, f, time.Second)
	start := time.Date(2020, 1, 1, 10, 0, 0, 0, time.UTC)

	err := g.CreateOverride(context.Background(), testScheduleID, "P1", start, 90)
	assert.NoError(t, err)

	if assert.Len(t, f.overrides, 1) {
		assert.Equal(t, "2020-01-01T10:00:00Z", f.overrides[0]["start"])
		assert.Equal(t, "2020-01-01T11:30:00Z", f.overrides[0]["end"])
		assert.Equal(t, "P1", f.overrides[0]["user"].(map[string]interface{})["id"])
	}
}

func TestFindUserIDByEmail(t *testing.T) {
	f := newFakePagerDuty()
	f.users = []map[string]interface{}{
		{"id": "PX", "email": "a@x.com.au", "name": "Other"},
		{"id": "P1", "email": "A@x.com", "name": "Alice"},
	}
	g := newTestGateway(t, f, time.Second)

	id, err := g.FindUserIDByEmail(context.Background(), "a@x.com")
	assert.NoError(t, err)
	assert.Equal(t, "P1", id)
}

func TestFindUserIDByEmailWithNoMatch(t *testing.T) {
	f := newFakePagerDuty()
	f.users = []map[string]interface{}{{"id": "PX", "email": "a@x.com.au", "name": "Other"}}
	g := newTestGateway(t, f, time.Second)

	_, err := g.FindUserIDByEmail(context.Background(), "a@x.com")

	var nf *pager.NotFoundError
	if assert.True(t, errors.As(err, &nf)) {
		assert.Equal(t, "a@x.com", nf.Value)
	}
}

func TestScheduleEntries(t *testing.T) {
	f := newFakePagerDuty()
	f.entries = []map[string]interface{}{{"start": "2020-01-01T10:00:00Z", "end": "2020-01-01T11:00:00Z", "user": map[string]interface{}{"id": "P1"}}}
	g := newTestGateway(t, f, time.Second)
	since := time.Date(2020, 1, 1, 10, 0, 0, 0, time.UTC)

	entries, err := g.ScheduleEntries(context.Background(), testScheduleID, since, since.Add(time.Hour))
	assert.NoError(t, err)
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "P1", entries[0].User.ID)
	}

	if assert.Len(t, f.scheduleArgs, 1) {
		assert.Contains(t, f.scheduleArgs[0], "since=2020-01-01T10%3A00%3A00Z")
		assert.Contains(t, f.scheduleArgs[0], "until=2020-01-01T11%3A00%3A00Z")
	}
}

func TestUpstreamTimeout(t *testing.T) {
	f := newFakePagerDuty()
	f.delay = 500 * time.Millisecond
	g := newTestGateway(t, f, 50*time.Millisecond)

	_, err := g.GetIncident(context.Background(), "P1")

	var ue *pager.UpstreamError
	assert.True(t, errors.As(err, &ue))
}

func TestTrigger(t *testing.T) {
	f := newFakePagerDuty()
	g := newTestGateway(t, f, time.Second)

	key, err := g.Trigger(context.Background(), testServiceKey, "alice", "db down")
	assert.NoError(t, err)
	assert.Equal(t, "abc123", key)

	if assert.Len(t, f.events, 1) {
		assert.Equal(t, map[string]interface{}{
			"service_key": testServiceKey,
			"event_type":  "trigger",
			"description": pager.DefaultTriggerDescription,
			"details":     map[string]interface{}{"requestor": "alice", "message": "db down"},
		}, f.events[0])
	}
}

func TestTriggerWithNon200Status(t *testing.T) {
	tcs := []int{http.StatusCreated, http.StatusBadRequest, http.StatusForbidden, http.StatusInternalServerError}

	for _, status := range tcs {
		t.Run(fmt.Sprintf("%d", status), func(t *testing.T) {
			f := newFakePagerDuty()
			f.eventStatus = status
			f.eventBody = `{"status":"invalid event","message":"Event object is invalid"}`
			g := newTestGateway(t, f, time.Second)

			_, err := g.Trigger(context.Background(), testServiceKey, "alice", "db down")

			var tf *pager.TriggerFailedError
			if assert.True(t, errors.As(err, &tf)) {
				assert.Equal(t, status, tf.StatusCode)
				assert.Contains(t, tf.Body, "Event object is invalid")
			}
		})
	}
}

func TestTriggerUnreachable(t *testing.T) {
	g, err := pager.NewGateway(pager.Config{
		Subdomain:      "acme",
		APIKey:         testAPIKey,
		ServiceAPIKey:  testServiceKey,
		ScheduleID:     testScheduleID,
		EventsEndpoint: "http://127.0.0.1:1/events",
		RequestTimeout: time.Second,
	})
	require.NoError(t, err)

	_, err = g.Trigger(context.Background(), testServiceKey, "alice", "db down")

	var ue *pager.UpstreamError
	assert.True(t, errors.As(err, &ue))
}
