package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"reportd/internal/exporter"
	"reportd/internal/infrastructure"
	"reportd/internal/reporting"
	"reportd/pkg/contracts/domain"
)

// Clock returns the current time
type Clock func() time.Time

// ExportStage names the steps an export moves through, in order
type ExportStage string

const (
	StageValidating  ExportStage = "validating"
	StageNormalizing ExportStage = "normalizing"
	StageAggregating ExportStage = "aggregating"
	StageFormatting  ExportStage = "formatting"
	StageDone        ExportStage = "done"
)

// ExportService turns export requests into serialized reports.
// It only reads from the record store.
type ExportService struct {
	aggregator *reporting.Aggregator
	formatters *exporter.Registry
	validate   *validator.Validate
	metrics    *infrastructure.BusinessMetrics
	tracer     trace.Tracer
	logger     *slog.Logger
	now        Clock
	rowLimit   int
}

// ExportOption configures an ExportService
type ExportOption func(*ExportService)

// WithClock replaces the clock used for timestamps and filenames
func WithClock(now Clock) ExportOption {
	return func(s *ExportService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRowLimit caps the main row listing of every export
func WithRowLimit(n int) ExportOption {
	return func(s *ExportService) {
		if n > 0 {
			s.rowLimit = n
		}
	}
}

// WithBusinessMetrics records export outcomes on m
func WithBusinessMetrics(m *infrastructure.BusinessMetrics) ExportOption {
	return func(s *ExportService) {
		s.metrics = m
	}
}

// WithTracer replaces the tracer export spans are started on
func WithTracer(tracer trace.Tracer) ExportOption {
	return func(s *ExportService) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithExportLogger sets the service logger
func WithExportLogger(logger *slog.Logger) ExportOption {
	return func(s *ExportService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewExportService creates an export service
func NewExportService(aggregator *reporting.Aggregator, formatters *exporter.Registry, opts ...ExportOption) *ExportService {
	s := &ExportService{
		aggregator: aggregator,
		formatters: formatters,
		validate:   newValidator(),
		tracer:     otel.Tracer("reportd.services"),
		logger:     slog.Default(),
		now:        time.Now,
		rowLimit:   reporting.DefaultRowLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(slog.String("service", "export"))
	return s
}

// newValidator reports fields by their request parameter names
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Export validates the raw request, aggregates the records it selects and
// serializes them. Errors wrap ErrInvalidRequest, ErrInvalidDate or
// ErrFormattingFailed; sub-query failures never surface.
func (s *ExportService) Export(ctx context.Context, kindRaw, formatRaw, fromRaw, toRaw string) (result *domain.ExportResult, err error) {
	start := time.Now()
	stage := StageValidating

	ctx, span := s.tracer.Start(ctx, "export",
		trace.WithAttributes(
			attribute.String("report.entity_kind", kindRaw),
			attribute.String("report.format", formatRaw),
		),
	)
	defer func() {
		span.SetAttributes(attribute.String("report.stage", string(stage)))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		size, records := 0, 0
		if result != nil {
			size, records = len(result.Bytes), result.RecordCount
		}
		infrastructure.RecordExportMetrics(ctx, s.metrics, kindRaw, formatRaw, time.Since(start), size, records, err)
	}()

	req := domain.ExportRequest{
		Kind:   domain.EntityKind(normalize(kindRaw)),
		Format: domain.OutputFormat(normalize(formatRaw)),
	}
	if err := s.validateStruct(req); err != nil {
		s.logger.InfoContext(ctx, "export request rejected", slog.String("error", err.Error()))
		return nil, err
	}

	stage = StageNormalizing
	req.Range, err = reporting.NormalizeRange(fromRaw, toRaw)
	if err != nil {
		s.logger.InfoContext(ctx, "export date rejected", slog.String("error", err.Error()))
		return nil, err
	}

	stage = StageAggregating
	generatedAt := s.now().UTC()
	queries := reporting.QuerySet(req.Kind, s.rowLimit)
	aggregates := s.aggregator.Run(ctx, req.Kind, req.Range, queries)
	doc := buildDocument(req.Kind, aggregates, queries, generatedAt)
	if len(doc.Unavailable) > 0 {
		infrastructure.AddSpanEvent(ctx, "report.sections_unavailable",
			attribute.StringSlice("report.sections", doc.Unavailable))
	}

	stage = StageFormatting
	formatter, err := s.formatters.Get(req.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormattingFailed, err)
	}
	out, err := formatter.Format(ctx, doc)
	if err != nil {
		s.logger.ErrorContext(ctx, "export formatting failed",
			slog.String("entity_kind", string(req.Kind)),
			slog.String("format", string(req.Format)),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", ErrFormattingFailed, err)
	}

	stage = StageDone
	result = &domain.ExportResult{
		Bytes:       out.Bytes,
		MediaType:   out.MediaType,
		Filename:    Filename(req.Kind, generatedAt, out.Extension),
		RecordCount: len(doc.Rows),
		GeneratedAt: generatedAt,
	}

	s.logger.InfoContext(ctx, "export completed",
		slog.String("entity_kind", string(req.Kind)),
		slog.String("format", string(req.Format)),
		slog.String("filename", result.Filename),
		slog.Int("records", result.RecordCount),
		slog.Int("bytes", len(result.Bytes)),
		slog.Any("unavailable", doc.Unavailable),
		slog.Duration("duration", time.Since(start)))

	return result, nil
}

// summaryRequest is the validated part of a summary request
type summaryRequest struct {
	Kind domain.EntityKind `json:"entityKind" validate:"required,oneof=person sponsor transaction"`
}

// Summary runs the non-row aggregates of kind over the range
func (s *ExportService) Summary(ctx context.Context, kindRaw, fromRaw, toRaw string) (*domain.Summary, error) {
	ctx, span := s.tracer.Start(ctx, "summary", trace.WithAttributes(attribute.String("report.entity_kind", kindRaw)))
	defer span.End()

	req := summaryRequest{Kind: domain.EntityKind(normalize(kindRaw))}
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}

	rng, err := reporting.NormalizeRange(fromRaw, toRaw)
	if err != nil {
		return nil, err
	}

	queries := reporting.SummaryQueries(req.Kind)
	aggregates := s.aggregator.Run(ctx, req.Kind, rng, queries)

	summary := &domain.Summary{
		Kind:        req.Kind,
		Range:       rng,
		GeneratedAt: s.now().UTC(),
		Sums:        make(map[string]float64),
		Groups:      make(map[string][]domain.GroupBucket),
		Failed:      aggregates.Failed(queries),
	}
	for _, q := range queries {
		switch q.Kind {
		case reporting.QueryKindSum:
			summary.Sums[q.Name] = aggregates.Sum(q.Name)
		case reporting.QueryKindGroupedCount:
			summary.Groups[q.Name] = aggregates.Groups(q.Name)
		}
	}
	return summary, nil
}

// validateStruct converts validator failures into a RequestError
func (s *ExportService) validateStruct(v interface{}) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	reqErr := &RequestError{}
	for _, fe := range verrs {
		reqErr.Violations = append(reqErr.Violations, FieldViolation{
			Field:  fe.Field(),
			Reason: violationReason(fe),
		})
	}
	return reqErr
}

func violationReason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %q", fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// buildDocument arranges aggregate results for the formatters. Sections keep
// the order of queries.
func buildDocument(kind domain.EntityKind, aggregates reporting.AggregateResult, queries []reporting.AggregateQuery, generatedAt time.Time) exporter.Document {
	doc := exporter.Document{
		Kind:        kind,
		Rows:        aggregates.Rows(reporting.QueryRows),
		GeneratedAt: generatedAt,
	}

	for _, q := range queries {
		v := aggregates[q.Name]
		if v.Failed() {
			doc.Unavailable = append(doc.Unavailable, q.Title())
		}

		switch q.Kind {
		case reporting.QueryKindSum:
			doc.Metrics = append(doc.Metrics, exporter.Metric{Name: q.Title(), Value: v.Sum})
		case reporting.QueryKindGroupedCount:
			doc.Breakdowns = append(doc.Breakdowns, exporter.Breakdown{Name: q.Title(), Buckets: v.Groups})
		case reporting.QueryKindRowList:
			if q.Name != reporting.QueryRows {
				doc.Listings = append(doc.Listings, exporter.Listing{Name: q.Title(), Kind: q.Target(kind), Rows: v.Rows})
			}
		}
	}
	return doc
}

// Filename returns the attachment name "<kind>-report-<yyyy-MM-dd>.<ext>"
func Filename(kind domain.EntityKind, at time.Time, ext string) string {
	return fmt.Sprintf("%s-report-%s.%s", kind, at.UTC().Format(reporting.DateLayout), ext)
}

func normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
