package reporting

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"reportd/pkg/contracts/domain"
)

// Aggregator runs aggregate queries concurrently against a RecordStore
type Aggregator struct {
	store        RecordStore
	logger       *slog.Logger
	tracer       trace.Tracer
	metrics      *Metrics
	queryTimeout time.Duration
	maxRows      int
}

// Option configures an Aggregator
type Option func(*Aggregator)

// WithLogger sets the logger used to report failed sub-queries
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithQueryTimeout bounds each store call. Zero disables the bound.
func WithQueryTimeout(d time.Duration) Option {
	return func(a *Aggregator) {
		a.queryTimeout = d
	}
}

// WithMaxRows sets the hard cap applied to every row listing
func WithMaxRows(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.maxRows = n
		}
	}
}

// WithMetrics replaces the instruments created on the global meter
func WithMetrics(m *Metrics) Option {
	return func(a *Aggregator) {
		a.metrics = m
	}
}

// NewAggregator creates an aggregator reading from store
func NewAggregator(store RecordStore, opts ...Option) *Aggregator {
	a := &Aggregator{
		store:   store,
		logger:  slog.Default(),
		tracer:  otel.Tracer(TracerName),
		maxRows: DefaultRowLimit,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.metrics == nil {
		a.metrics = defaultMetrics()
	}
	a.logger = a.logger.With(slog.String("component", "aggregator"))
	return a
}

// Run executes every query concurrently and waits for all of them.
// It never fails: a query that errors, times out or panics gets its declared
// default. Query names are expected to be unique; a later duplicate replaces
// an earlier one in the result.
func (a *Aggregator) Run(ctx context.Context, kind domain.EntityKind, rng domain.DateRange, queries []AggregateQuery) AggregateResult {
	start := time.Now()
	ctx, span := a.tracer.Start(ctx, "reporting.aggregate",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("report.entity_kind", string(kind)),
			attribute.Int("report.query_count", len(queries)),
		),
	)
	defer span.End()

	// each unit owns exactly one slot
	values := make([]QueryValue, len(queries))

	var g errgroup.Group
	for i, q := range queries {
		g.Go(func() error {
			values[i] = a.runUnit(ctx, kind, rng, q)
			return nil
		})
	}
	_ = g.Wait()

	result := make(AggregateResult, len(queries))
	failed := 0
	for i, q := range queries {
		result[q.Name] = values[i]
		if values[i].Failed() {
			failed++
		}
	}

	span.SetAttributes(attribute.Int("report.failed_queries", failed))
	a.metrics.recordAggregate(ctx, string(kind), time.Since(start))

	a.logger.DebugContext(ctx, "aggregation complete",
		slog.String("entity_kind", string(kind)),
		slog.Int("queries", len(queries)),
		slog.Int("failed", failed),
		slog.Duration("duration", time.Since(start)))

	return result
}

// runUnit executes one query and converts any failure into its default
func (a *Aggregator) runUnit(ctx context.Context, kind domain.EntityKind, rng domain.DateRange, q AggregateQuery) (value QueryValue) {
	start := time.Now()
	target := q.Target(kind)

	ctx, span := a.tracer.Start(ctx, "reporting.query."+q.Name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("report.query", q.Name),
			attribute.String("report.query_kind", string(q.Kind)),
			attribute.String("report.target", string(target)),
		),
	)

	defer func() {
		if rec := recover(); rec != nil {
			value = a.fallback(ctx, q, fmt.Errorf("panic: %v", rec))
		}
		if value.Failed() {
			span.RecordError(value.Err)
			span.SetStatus(codes.Error, value.Err.Error())
		}
		span.End()
		a.metrics.recordSubQuery(ctx, q, string(kind), time.Since(start), value.Failed())
	}()

	if a.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.queryTimeout)
		defer cancel()
	}

	switch q.Kind {
	case QueryKindSum:
		sum, err := a.store.Sum(ctx, FieldQuery{Kind: target, Range: rng, Field: q.Field})
		if err != nil {
			return a.fallback(ctx, q, err)
		}
		return QueryValue{Kind: q.Kind, Sum: sum}

	case QueryKindGroupedCount:
		groups, err := a.store.CountBy(ctx, FieldQuery{Kind: target, Range: rng, Field: q.Field})
		if err != nil {
			return a.fallback(ctx, q, err)
		}
		sorted := make([]domain.GroupBucket, len(groups))
		copy(sorted, groups)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })
		return QueryValue{Kind: q.Kind, Groups: sorted}

	case QueryKindRowList:
		limit := a.rowLimit(q)
		rows, err := a.store.Rows(ctx, RowQuery{Kind: target, Range: rng, Limit: limit, Order: q.Order})
		if err != nil {
			return a.fallback(ctx, q, err)
		}
		if len(rows) > limit {
			rows = rows[:limit]
		}
		out := make([]domain.RowRecord, len(rows))
		copy(out, rows)
		return QueryValue{Kind: q.Kind, Rows: out}

	default:
		return a.fallback(ctx, q, fmt.Errorf("unknown query kind %q", q.Kind))
	}
}

func (a *Aggregator) rowLimit(q AggregateQuery) int {
	if q.Limit <= 0 || q.Limit > a.maxRows {
		return a.maxRows
	}
	return q.Limit
}

func (a *Aggregator) fallback(ctx context.Context, q AggregateQuery, err error) QueryValue {
	a.logger.WarnContext(ctx, "sub-query failed, using default",
		slog.String("query", q.Name),
		slog.String("query_kind", string(q.Kind)),
		slog.String("error", err.Error()))

	v := q.Default()
	v.Err = &SubQueryError{Query: q.Name, Err: err}
	return v
}
