package reporting

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	TracerName = "reportd.reporting"
	MeterName  = "reportd.reporting"
)

// Metrics holds the aggregator's instruments
type Metrics struct {
	SubQueriesTotal   metric.Int64Counter
	SubQueryFailures  metric.Int64Counter
	SubQueryDuration  metric.Float64Histogram
	AggregateDuration metric.Float64Histogram
}

// NewMetrics creates the aggregator instruments on meter
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	subQueries, err := meter.Int64Counter(
		"report_subqueries_total",
		metric.WithDescription("Total number of aggregate sub-queries executed"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sub-query counter: %w", err)
	}

	failures, err := meter.Int64Counter(
		"report_subquery_failures_total",
		metric.WithDescription("Total number of sub-queries replaced by their default value"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sub-query failure counter: %w", err)
	}

	subQueryDuration, err := meter.Float64Histogram(
		"report_subquery_duration_seconds",
		metric.WithDescription("Sub-query duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sub-query histogram: %w", err)
	}

	aggregateDuration, err := meter.Float64Histogram(
		"report_aggregate_duration_seconds",
		metric.WithDescription("Duration of a full aggregation fan-out in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create aggregate histogram: %w", err)
	}

	return &Metrics{
		SubQueriesTotal:   subQueries,
		SubQueryFailures:  failures,
		SubQueryDuration:  subQueryDuration,
		AggregateDuration: aggregateDuration,
	}, nil
}

// defaultMetrics builds instruments on the global meter provider, which is a
// no-op until telemetry is initialized
func defaultMetrics() *Metrics {
	m, err := NewMetrics(otel.Meter(MeterName))
	if err != nil {
		return nil
	}
	return m
}

func (m *Metrics) recordSubQuery(ctx context.Context, q AggregateQuery, kind string, d time.Duration, failed bool) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("query", q.Name),
		attribute.String("query_kind", string(q.Kind)),
		attribute.String("entity_kind", kind),
	)
	m.SubQueriesTotal.Add(ctx, 1, attrs)
	m.SubQueryDuration.Record(ctx, d.Seconds(), attrs)
	if failed {
		m.SubQueryFailures.Add(ctx, 1, attrs)
	}
}

func (m *Metrics) recordAggregate(ctx context.Context, kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.AggregateDuration.Record(ctx, d.Seconds(),
		metric.WithAttributes(attribute.String("entity_kind", kind)))
}
