package pager

import (
	"context"
	"github.com/PagerDuty/go-pagerduty"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"time"
)

const (
	callsMetricName   = "incidentGateway.calls"
	errorsMetricName  = "incidentGateway.errors"
	latencyMetricName = "incidentGateway.processingTimeMillis"
)

// IncidentGatewayWithTelemetry implements IncidentGateway with all methods wrapped
// with open telemetry metrics
type IncidentGatewayWithTelemetry struct {
	base          IncidentGateway
	name          string
	methodCounter metric.Int64Counter
	errCounter    metric.Int64Counter
	timeRecorder  metric.Int64Histogram
}

// NewIncidentGatewayWithTelemetry returns an instance of the IncidentGateway decorated with open telemetry timing and count metrics
func NewIncidentGatewayWithTelemetry(base IncidentGateway, name string, meter metric.Meter) (g *IncidentGatewayWithTelemetry, err error) {
	g = &IncidentGatewayWithTelemetry{base: base, name: name}

	if g.methodCounter, err = meter.Int64Counter(callsMetricName, metric.WithDescription("Calls to PagerDuty by method")); err != nil {
		return nil, err
	}

	if g.errCounter, err = meter.Int64Counter(errorsMetricName, metric.WithDescription("Failed calls to PagerDuty by method")); err != nil {
		return nil, err
	}

	if g.timeRecorder, err = meter.Int64Histogram(latencyMetricName, metric.WithUnit("ms"), metric.WithDescription("PagerDuty call latency by method")); err != nil {
		return nil, err
	}

	return g, nil
}

// record counts a call to the method along with its error, if any, and its latency
func (_d *IncidentGatewayWithTelemetry) record(method string, since time.Time, err error) {
	ctx := context.Background()
	attrs := metric.WithAttributes(attribute.String("name", _d.name), attribute.String("method", method))

	if err != nil {
		_d.errCounter.Add(ctx, 1, attrs)
	}

	_d.methodCounter.Add(ctx, 1, attrs)
	_d.timeRecorder.Record(ctx, time.Since(since).Milliseconds(), attrs)
}

// ListActive implements IncidentGateway
func (_d *IncidentGatewayWithTelemetry) ListActive(ctx context.Context) (incidents []pagerduty.Incident, err error) {
	defer func(since time.Time) { _d.record("ListActive", since, err) }(time.Now())
	return _d.base.ListActive(ctx)
}

// GetIncident implements IncidentGateway
func (_d *IncidentGatewayWithTelemetry) GetIncident(ctx context.Context, incidentID string) (incident *pagerduty.Incident, err error) {
	defer func(since time.Time) { _d.record("GetIncident", since, err) }(time.Now())
	return _d.base.GetIncident(ctx, incidentID)
}

// Acknowledge implements IncidentGateway
func (_d *IncidentGatewayWithTelemetry) Acknowledge(ctx context.Context, requestor UserRecord, incidentID string) (err error) {
	defer func(since time.Time) { _d.record("Acknowledge", since, err) }(time.Now())
	return _d.base.Acknowledge(ctx, requestor, incidentID)
}

// Resolve implements IncidentGateway
func (_d *IncidentGatewayWithTelemetry) Resolve(ctx context.Context, requestor UserRecord, incidentID string) (err error) {
	defer func(since time.Time) { _d.record("Resolve", since, err) }(time.Now())
	return _d.base.Resolve(ctx, requestor, incidentID)
}

// Trigger implements IncidentGateway
func (_d *IncidentGatewayWithTelemetry) Trigger(ctx context.Context, serviceKey string, requestorName string, message string) (incidentKey string, err error) {
	defer func(since time.Time) { _d.record("Trigger", since, err) }(time.Now())
	return _d.base.Trigger(ctx, serviceKey, requestorName, message)
}

// CreateOverride implements IncidentGateway
func (_d *IncidentGatewayWithTelemetry) CreateOverride(ctx context.Context, scheduleID string, pagerDutyID string, start time.Time, durationMinutes int) (err error) {
	defer func(since time.Time) { _d.record("CreateOverride", since, err) }(time.Now())
	return _d.base.CreateOverride(ctx, scheduleID, pagerDutyID, start, durationMinutes)
}

// FindUserIDByEmail implements IncidentGateway
func (_d *IncidentGatewayWithTelemetry) FindUserIDByEmail(ctx context.Context, email string) (pagerDutyID string, err error) {
	defer func(since time.Time) { _d.record("FindUserIDByEmail", since, err) }(time.Now())
	return _d.base.FindUserIDByEmail(ctx, email)
}

// ScheduleEntries implements IncidentGateway
func (_d *IncidentGatewayWithTelemetry) ScheduleEntries(ctx context.Context, scheduleID string, since time.Time, until time.Time) (entries []pagerduty.RenderedScheduleEntry, err error) {
	defer func(start time.Time) { _d.record("ScheduleEntries", start, err) }(time.Now())
	return _d.base.ScheduleEntries(ctx, scheduleID, since, until)
}
