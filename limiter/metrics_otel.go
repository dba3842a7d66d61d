package limiter

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics instruments limiter decisions with the OTel metric API. A nil
// *Metrics is safe to call, so wiring metrics stays optional.
type Metrics struct {
	requestsTotal      metric.Int64Counter
	allowedTotal       metric.Int64Counter
	rejectedTotal      metric.Int64Counter
	storeFailuresTotal metric.Int64Counter
}

// NewMetrics registers the limiter instruments on the meter (the global
// meter provider when nil).
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		meter = otel.Meter("github.com/fedgate/admission/limiter")
	}

	m := &Metrics{}
	var err error

	if m.requestsTotal, err = meter.Int64Counter(
		"admission_limiter_requests_total",
		metric.WithDescription("Total rate limit checks"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, err
	}

	if m.allowedTotal, err = meter.Int64Counter(
		"admission_limiter_allowed_total",
		metric.WithDescription("Checks that admitted the request"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, err
	}

	if m.rejectedTotal, err = meter.Int64Counter(
		"admission_limiter_rejected_total",
		metric.WithDescription("Checks that denied the request"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, err
	}

	if m.storeFailuresTotal, err = meter.Int64Counter(
		"admission_limiter_store_failures_total",
		metric.WithDescription("Store errors that caused a fail-open admit"),
		metric.WithUnit("{error}"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordDecision counts one check outcome.
func (m *Metrics) RecordDecision(ctx context.Context, tier string, allowed bool) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("tier", tier))
	m.requestsTotal.Add(ctx, 1, attrs)
	if allowed {
		m.allowedTotal.Add(ctx, 1, attrs)
	} else {
		m.rejectedTotal.Add(ctx, 1, attrs)
	}
}

// RecordStoreFailure counts one fail-open event.
func (m *Metrics) RecordStoreFailure(ctx context.Context, tier string) {
	if m == nil {
		return
	}
	m.storeFailuresTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("tier", tier)))
	m.requestsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("tier", tier)))
}
