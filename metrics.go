package pagerscot

import (
	"go.opentelemetry.io/otel/metric"
	"time"
)

// instrumenter holds data for core instrumentation
type instrumenter struct {
	coreMetrics coreMetrics
}

// coreMetrics holds core pagerscot metrics
type coreMetrics struct {
	msgsSeen                   metric.Int64Counter
	msgsProcessed              metric.Int64Counter
	msgProcessingLatencyMillis metric.Int64Histogram
}

// newInstrumenter creates a new core instrumenter
func newInstrumenter(meter metric.Meter) (ins *instrumenter, err error) {
	ins = new(instrumenter)

	if ins.coreMetrics.msgsSeen, err = meter.Int64Counter("msgSeen", metric.WithDescription("Message events received")); err != nil {
		return nil, err
	}

	if ins.coreMetrics.msgsProcessed, err = meter.Int64Counter("msgProcessed", metric.WithDescription("Messages processed by outcome")); err != nil {
		return nil, err
	}

	if ins.coreMetrics.msgProcessingLatencyMillis, err = meter.Int64Histogram("msgProcessingLatencyMillis", metric.WithUnit("ms"), metric.WithDescription("Message processing latency")); err != nil {
		return nil, err
	}

	return ins, nil
}

type timed func()

// measure returns the execution duration of a timed function
func measure(operation timed) (d time.Duration) {
	before := time.Now()

	operation()

	return time.Since(before)
}
