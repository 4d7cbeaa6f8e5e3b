package pager

import (
	"bytes"
	"context"
	"encoding/json"
	"github.com/pkg/errors"
	"io"
	"net/http"
)

const (
	triggerEventType = "trigger"
	maxErrorBodySize = 4096
)

// triggerEvent is the payload of the generic events API
type triggerEvent struct {
	ServiceKey  string        `json:"service_key"`
	EventType   string        `json:"event_type"`
	Description string        `json:"description"`
	Details     triggerDetail `json:"details"`
}

type triggerDetail struct {
	Requestor string `json:"requestor"`
	Message   string `json:"message"`
}

type triggerResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	IncidentKey string `json:"incident_key"`
}

// Trigger creates a new incident on the service and returns its incident key. Any status other
// than 200 results in a TriggerFailedError carrying the response body
func (g *Gateway) Trigger(ctx context.Context, serviceKey string, requestorName string, message string) (incidentKey string, err error) {
	payload, err := json.Marshal(triggerEvent{
		ServiceKey:  serviceKey,
		EventType:   triggerEventType,
		Description: g.description,
		Details:     triggerDetail{Requestor: requestorName, Message: message},
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to encode trigger event")
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.eventsEndpoint, bytes.NewReader(payload))
	if err != nil {
		return "", &UpstreamError{Op: "trigger incident", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", &UpstreamError{Op: "trigger incident", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return "", &TriggerFailedError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var tr triggerResponse
	if err = json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", &UpstreamError{Op: "trigger incident", Err: errors.Wrap(err, "failed to decode response")}
	}

	return tr.IncidentKey, nil
}
