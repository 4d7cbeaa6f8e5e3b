package pagerscot

import (
	"context"
	"github.com/slack-go/slack"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"time"
)

// UserInfoFinderWithTelemetry implements UserInfoFinder with all methods wrapped
// with open telemetry metrics
type UserInfoFinderWithTelemetry struct {
	base          UserInfoFinder
	name          string
	methodCounter metric.Int64Counter
	errCounter    metric.Int64Counter
	timeRecorder  metric.Int64Histogram
}

// NewUserInfoFinderWithTelemetry returns an instance of the UserInfoFinder decorated with open telemetry timing and count metrics
func NewUserInfoFinderWithTelemetry(base UserInfoFinder, name string, meter metric.Meter) (uf *UserInfoFinderWithTelemetry, err error) {
	uf = &UserInfoFinderWithTelemetry{base: base, name: name}

	if uf.methodCounter, err = meter.Int64Counter("userInfoFinder.calls"); err != nil {
		return nil, err
	}

	if uf.errCounter, err = meter.Int64Counter("userInfoFinder.errors"); err != nil {
		return nil, err
	}

	if uf.timeRecorder, err = meter.Int64Histogram("userInfoFinder.processingTimeMillis", metric.WithUnit("ms")); err != nil {
		return nil, err
	}

	return uf, nil
}

// GetUserInfo implements UserInfoFinder
func (_d *UserInfoFinderWithTelemetry) GetUserInfo(userID string) (user *slack.User, err error) {
	defer func(start time.Time) {
		ctx := context.Background()
		attrs := metric.WithAttributes(attribute.String("name", _d.name), attribute.String("method", "GetUserInfo"))

		if err != nil {
			_d.errCounter.Add(ctx, 1, attrs)
		}

		_d.methodCounter.Add(ctx, 1, attrs)
		_d.timeRecorder.Record(ctx, time.Since(start).Milliseconds(), attrs)
	}(time.Now())

	return _d.base.GetUserInfo(userID)
}
