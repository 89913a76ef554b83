package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"reportd/internal/exporter"
	"reportd/internal/reporting"
	"reportd/internal/store/memory"
	"reportd/pkg/contracts/domain"
)

var fixedNow = time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(store reporting.RecordStore, opts ...ExportOption) *ExportService {
	agg := reporting.NewAggregator(store, reporting.WithLogger(discardLogger()))
	opts = append([]ExportOption{WithClock(func() time.Time { return fixedNow }), WithExportLogger(discardLogger())}, opts...)
	return NewExportService(agg, exporter.NewRegistry(nil), opts...)
}

func transaction(id string, amount float64, status, method string, date time.Time) domain.RowRecord {
	return domain.RowRecord{
		Kind:              domain.EntityKindTransaction,
		ID:                id,
		Amount:            ptr(amount),
		CounterpartyName:  "Ada Lovelace",
		CounterpartyEmail: "ada@example.org",
		Status:            status,
		Method:            method,
		Date:              date,
		CreatedAt:         date,
	}
}

// failingCountStore fails every grouped count
type failingCountStore struct {
	*memory.Store
}

func (failingCountStore) CountBy(context.Context, reporting.FieldQuery) ([]domain.GroupBucket, error) {
	return nil, errors.New("connection reset")
}

type brokenFormatter struct{}

func (brokenFormatter) Format(context.Context, exporter.Document) (exporter.Output, error) {
	return exporter.Output{}, errors.New("disk full")
}

func TestExportService_TabularScenario(t *testing.T) {
	store := memory.New(transaction("tx-1", 50, "COMPLETED", "card", time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)))
	svc := newTestService(store)

	result, err := svc.Export(context.Background(), "transaction", "tabular", "2024-01-01", "2024-01-31")
	require.NoError(t, err)

	want := "id,amount,counterpartyName,counterpartyEmail,status,date,method\n" +
		`"tx-1",50,"Ada Lovelace","ada@example.org",COMPLETED,2024-01-15,"card"`
	assert.Equal(t, want, string(result.Bytes))
	assert.Equal(t, exporter.MediaTypeCSV, result.MediaType)
	assert.Equal(t, "transaction-report-2024-02-01.csv", result.Filename)
	assert.Equal(t, 1, result.RecordCount)
	assert.Equal(t, fixedNow, result.GeneratedAt)
}

func TestExportService_CaseInsensitiveParameters(t *testing.T) {
	svc := newTestService(memory.New())

	result, err := svc.Export(context.Background(), " Person ", "TABULAR", "", "")
	require.NoError(t, err)
	assert.Equal(t, "person-report-2024-02-01.csv", result.Filename)
}

func TestExportService_InvalidRequest(t *testing.T) {
	svc := newTestService(memory.New())

	tests := []struct {
		name      string
		kind      string
		format    string
		wantField []string
	}{
		{name: "missing kind", kind: "", format: "tabular", wantField: []string{"entityKind"}},
		{name: "unknown kind", kind: "donor", format: "tabular", wantField: []string{"entityKind"}},
		{name: "missing format", kind: "person", format: "", wantField: []string{"outputFormat"}},
		{name: "unknown format", kind: "person", format: "pdf", wantField: []string{"outputFormat"}},
		{name: "both invalid", kind: "", format: "docx", wantField: []string{"entityKind", "outputFormat"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Export(context.Background(), tt.kind, tt.format, "", "")
			require.Error(t, err)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, ErrInvalidRequest)

			var reqErr *RequestError
			require.True(t, errors.As(err, &reqErr))
			var fields []string
			for _, v := range reqErr.Violations {
				fields = append(fields, v.Field)
			}
			assert.Equal(t, tt.wantField, fields)
		})
	}
}

func TestExportService_InvalidRequestWinsOverDate(t *testing.T) {
	svc := newTestService(memory.New())
	_, err := svc.Export(context.Background(), "donor", "tabular", "not-a-date", "")
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.NotErrorIs(t, err, ErrInvalidDate)
}

func TestExportService_InvalidDate(t *testing.T) {
	svc := newTestService(memory.New())

	tests := []struct {
		name      string
		from, to  string
		wantBound string
	}{
		{name: "bad month", from: "2024-13-01", wantBound: "from"},
		{name: "wrong layout", to: "01/31/2024", wantBound: "to"},
		{name: "timestamp", from: "2024-01-01T00:00:00Z", wantBound: "from"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Export(context.Background(), "person", "document", tt.from, tt.to)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidDate)

			var dateErr *reporting.DateError
			require.True(t, errors.As(err, &dateErr))
			assert.Equal(t, tt.wantBound, dateErr.Bound)
		})
	}
}

func TestExportService_EmptyDataset(t *testing.T) {
	svc := newTestService(memory.New())

	result, err := svc.Export(context.Background(), "person", "tabular", "", "")
	require.NoError(t, err)
	assert.Equal(t, "id,name,age,location,sponsored,createdAt,story,needs", string(result.Bytes))
	assert.Zero(t, result.RecordCount)

	doc, err := svc.Export(context.Background(), "sponsor", "document", "", "")
	require.NoError(t, err)
	assert.Contains(t, string(doc.Bytes), "Records: 0")
	assert.Equal(t, "sponsor-report-2024-02-01.html", doc.Filename)
}

func TestExportService_PreservesStoreOrder(t *testing.T) {
	store := memory.New(
		transaction("tx-old", 10, "COMPLETED", "card", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)),
		transaction("tx-new", 20, "COMPLETED", "card", time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)),
		transaction("tx-mid", 30, "PENDING", "transfer", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)),
	)
	svc := newTestService(store)

	result, err := svc.Export(context.Background(), "transaction", "tabular", "", "")
	require.NoError(t, err)

	body := string(result.Bytes)
	newIdx := strings.Index(body, `"tx-new"`)
	midIdx := strings.Index(body, `"tx-mid"`)
	oldIdx := strings.Index(body, `"tx-old"`)
	assert.True(t, newIdx < midIdx && midIdx < oldIdx, "rows should be newest first:\n%s", body)
}

func TestExportService_RowLimit(t *testing.T) {
	store := memory.New(
		transaction("a", 1, "COMPLETED", "card", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		transaction("b", 1, "COMPLETED", "card", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)),
		transaction("c", 1, "COMPLETED", "card", time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)),
	)
	svc := newTestService(store, WithRowLimit(2))

	result, err := svc.Export(context.Background(), "transaction", "tabular", "", "")
	require.NoError(t, err)
	assert.Equal(t, 2, result.RecordCount)
}

func TestExportService_Idempotent(t *testing.T) {
	store := memory.New(
		transaction("tx-1", 50, "COMPLETED", "card", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)),
		transaction("tx-2", 5, "PENDING", "transfer", time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)),
	)
	svc := newTestService(store)

	for _, format := range []string{"tabular", "document"} {
		first, err := svc.Export(context.Background(), "transaction", format, "2024-01-01", "2024-01-31")
		require.NoError(t, err)
		second, err := svc.Export(context.Background(), "transaction", format, "2024-01-01", "2024-01-31")
		require.NoError(t, err)
		assert.Equal(t, first, second, format)
	}
}

func TestExportService_SubQueryFailureIsContained(t *testing.T) {
	store := failingCountStore{memory.New(transaction("tx-1", 50, "COMPLETED", "card", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)))}
	svc := newTestService(store)

	result, err := svc.Export(context.Background(), "transaction", "document", "", "")
	require.NoError(t, err)
	assert.Equal(t, 1, result.RecordCount)

	body := string(result.Bytes)
	assert.Contains(t, body, "Unavailable sections: By status By method")
	assert.Contains(t, body, "Total amount: 50")
}

func TestExportService_SpanListsUnavailableSections(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	store := failingCountStore{memory.New(transaction("tx-1", 50, "COMPLETED", "card", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)))}
	svc := newTestService(store, WithTracer(tp.Tracer("test")))

	_, err := svc.Export(context.Background(), "transaction", "tabular", "", "")
	require.NoError(t, err)

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "export", ended[0].Name())

	var sections []string
	for _, ev := range ended[0].Events() {
		if ev.Name != "report.sections_unavailable" {
			continue
		}
		for _, kv := range ev.Attributes {
			if kv.Key == "report.sections" {
				sections = kv.Value.AsStringSlice()
			}
		}
	}
	assert.Equal(t, []string{"By status", "By method"}, sections)
}

func TestExportService_FormattingFailed(t *testing.T) {
	agg := reporting.NewAggregator(memory.New(), reporting.WithLogger(discardLogger()))
	registry := exporter.NewRegistry(nil)
	registry.Register(domain.OutputFormatTabular, brokenFormatter{})
	svc := NewExportService(agg, registry, WithExportLogger(discardLogger()))

	result, err := svc.Export(context.Background(), "person", "tabular", "", "")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrFormattingFailed)
	assert.Contains(t, err.Error(), "disk full")
}

func TestExportService_Summary(t *testing.T) {
	store := memory.New(
		transaction("tx-1", 50, "COMPLETED", "card", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)),
		transaction("tx-2", 25, "PENDING", "card", time.Date(2024, 1, 31, 23, 0, 0, 0, time.UTC)),
		transaction("tx-3", 100, "COMPLETED", "transfer", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)),
	)
	svc := newTestService(store)

	summary, err := svc.Summary(context.Background(), "transaction", "2024-01-01", "2024-01-31")
	require.NoError(t, err)

	assert.Equal(t, domain.EntityKindTransaction, summary.Kind)
	assert.Equal(t, fixedNow, summary.GeneratedAt)
	assert.InDelta(t, 75.0, summary.Sums[reporting.QueryTotalAmount], 1e-9)
	assert.Equal(t, []domain.GroupBucket{
		{Key: "COMPLETED", Count: 1, Total: 50},
		{Key: "PENDING", Count: 1, Total: 25},
	}, summary.Groups[reporting.QueryByStatus])
	assert.Equal(t, []domain.GroupBucket{{Key: "card", Count: 2, Total: 75}}, summary.Groups[reporting.QueryByMethod])
	assert.Empty(t, summary.Failed)
}

func TestExportService_SummaryErrors(t *testing.T) {
	svc := newTestService(memory.New())

	_, err := svc.Summary(context.Background(), "donor", "", "")
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.Summary(context.Background(), "person", "yesterday", "")
	assert.ErrorIs(t, err, ErrInvalidDate)

	failing := newTestService(failingCountStore{memory.New()})
	summary, err := failing.Summary(context.Background(), "sponsor", "", "")
	require.NoError(t, err)
	assert.Equal(t, []string{reporting.QueryByStatus}, summary.Failed)
	assert.Equal(t, []domain.GroupBucket{}, summary.Groups[reporting.QueryByStatus])
}

func TestFilename(t *testing.T) {
	at := time.Date(2024, 3, 9, 23, 30, 0, 0, time.FixedZone("UTC-5", -5*3600))
	assert.Equal(t, "person-report-2024-03-10.pdf", Filename(domain.EntityKindPerson, at, "pdf"))
}
