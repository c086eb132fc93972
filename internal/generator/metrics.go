package generator

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	outcomeOrdered           = "ordered"
	outcomeSkippedQuantity   = "skipped_quantity"
	outcomeSkippedUnresolved = "skipped_unresolved"
	outcomeSkippedRule       = "skipped_invalid_rule"
)

// Metrics records engine activity. A nil *Metrics records nothing.
type Metrics struct {
	templates metric.Int64Counter
	orders    metric.Int64Counter
	duration  metric.Float64Histogram
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	templates, err := meter.Int64Counter("generator.templates",
		metric.WithDescription("Templates evaluated, by outcome."),
	)
	if err != nil {
		return nil, err
	}

	orders, err := meter.Int64Counter("generator.orders",
		metric.WithDescription("Orders reconciled, by result."),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram("generator.run.duration",
		metric.WithDescription("Duration of a generation run."),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{templates: templates, orders: orders, duration: duration}, nil
}

func (m *Metrics) template(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.templates.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *Metrics) order(ctx context.Context, created bool) {
	if m == nil {
		return
	}
	result := "updated"
	if created {
		result = "created"
	}
	m.orders.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

func (m *Metrics) run(ctx context.Context, started time.Time, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.duration.Record(ctx, time.Since(started).Seconds(), metric.WithAttributes(attribute.String("status", status)))
}
