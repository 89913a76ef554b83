package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportd/internal/reporting"
	"reportd/internal/store/fixtures"
	"reportd/pkg/contracts/domain"
)

func newSeededStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	s, err := Open(ctx, ":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	records, err := fixtures.Load("../fixtures/testdata/sample.yaml")
	require.NoError(t, err)
	n, err := s.Insert(ctx, records)
	require.NoError(t, err)
	require.Equal(t, len(records), n)
	return s
}

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func ids(rows []domain.RowRecord) []string {
	out := []string{}
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out
}

func TestStore_Rows(t *testing.T) {
	s := newSeededStore(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		query reporting.RowQuery
		want  []string
	}{
		{
			name:  "newest first",
			query: reporting.RowQuery{Kind: domain.EntityKindTransaction, Order: reporting.Order{Field: reporting.FieldDate, Descending: true}},
			want:  []string{"tx-3", "tx-2", "tx-1"},
		},
		{
			name: "inclusive day bounds",
			query: reporting.RowQuery{
				Kind:  domain.EntityKindTransaction,
				Range: domain.DateRange{From: day(2024, 1, 15), To: day(2024, 1, 31)},
				Order: reporting.Order{Field: reporting.FieldDate},
			},
			want: []string{"tx-1", "tx-2"},
		},
		{
			name: "reversed range",
			query: reporting.RowQuery{
				Kind:  domain.EntityKindPerson,
				Range: domain.DateRange{From: day(2024, 3, 1), To: day(2024, 1, 1)},
			},
			want: []string{},
		},
		{
			name:  "limit",
			query: reporting.RowQuery{Kind: domain.EntityKindPerson, Limit: 1, Order: reporting.Order{Field: reporting.FieldCreatedAt, Descending: true}},
			want:  []string{"p-3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := s.Rows(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(rows))
		})
	}
}

func TestStore_RowValues(t *testing.T) {
	s := newSeededStore(t)
	ctx := context.Background()

	people, err := s.Rows(ctx, reporting.RowQuery{Kind: domain.EntityKindPerson, Order: reporting.Order{Field: reporting.FieldID}})
	require.NoError(t, err)
	require.Len(t, people, 3)

	require.NotNil(t, people[0].Age)
	assert.Equal(t, 9, *people[0].Age)
	require.NotNil(t, people[0].Sponsored)
	assert.True(t, *people[0].Sponsored)
	assert.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), people[0].CreatedAt)
	assert.Nil(t, people[2].Age)
	assert.Nil(t, people[2].Sponsored)

	txs, err := s.Rows(ctx, reporting.RowQuery{Kind: domain.EntityKindTransaction, Order: reporting.Order{Field: reporting.FieldID}})
	require.NoError(t, err)
	require.NotNil(t, txs[0].Amount)
	assert.Equal(t, 50.0, *txs[0].Amount)
	assert.Equal(t, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), txs[0].Date)
	assert.Equal(t, "card", txs[0].Method)
}

func TestStore_Sum(t *testing.T) {
	s := newSeededStore(t)
	ctx := context.Background()

	total, err := s.Sum(ctx, reporting.FieldQuery{Kind: domain.EntityKindTransaction, Field: reporting.FieldAmount})
	require.NoError(t, err)
	assert.InDelta(t, 175.5, total, 1e-9)

	empty, err := s.Sum(ctx, reporting.FieldQuery{
		Kind:  domain.EntityKindTransaction,
		Field: reporting.FieldAmount,
		Range: domain.DateRange{From: day(2030, 1, 1)},
	})
	require.NoError(t, err)
	assert.Zero(t, empty)

	_, err = s.Sum(ctx, reporting.FieldQuery{Kind: domain.EntityKindSponsor, Field: reporting.FieldAmount})
	assert.ErrorIs(t, err, reporting.ErrUnsupportedField)
}

func TestStore_CountBy(t *testing.T) {
	s := newSeededStore(t)
	ctx := context.Background()

	methods, err := s.CountBy(ctx, reporting.FieldQuery{Kind: domain.EntityKindTransaction, Field: reporting.FieldMethod})
	require.NoError(t, err)
	assert.Equal(t, []domain.GroupBucket{
		{Key: "card", Count: 2, Total: 150},
		{Key: "transfer", Count: 1, Total: 25.5},
	}, methods)

	sponsored, err := s.CountBy(ctx, reporting.FieldQuery{Kind: domain.EntityKindPerson, Field: reporting.FieldSponsored})
	require.NoError(t, err)
	assert.Equal(t, []domain.GroupBucket{
		{Key: "false", Count: 1},
		{Key: "true", Count: 1},
		{Key: reporting.GroupUnspecified, Count: 1},
	}, sponsored)

	january, err := s.CountBy(ctx, reporting.FieldQuery{
		Kind:  domain.EntityKindSponsor,
		Field: reporting.FieldStatus,
		Range: domain.DateRange{From: day(2024, 1, 1), To: day(2024, 1, 31)},
	})
	require.NoError(t, err)
	assert.Equal(t, []domain.GroupBucket{{Key: "PAUSED", Count: 1}}, january)

	_, err = s.CountBy(ctx, reporting.FieldQuery{Kind: domain.EntityKindSponsor, Field: reporting.FieldMethod})
	assert.ErrorIs(t, err, reporting.ErrUnsupportedField)
}

func TestStore_InsertIsUpsert(t *testing.T) {
	s := newSeededStore(t)
	ctx := context.Background()

	amount := 75.0
	_, err := s.Insert(ctx, []domain.RowRecord{{
		Kind:   domain.EntityKindTransaction,
		ID:     "tx-1",
		Amount: &amount,
		Date:   time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
	}})
	require.NoError(t, err)

	total, err := s.Sum(ctx, reporting.FieldQuery{Kind: domain.EntityKindTransaction, Field: reporting.FieldAmount})
	require.NoError(t, err)
	assert.InDelta(t, 200.5, total, 1e-9)
}

func TestStore_InsertUnknownKind(t *testing.T) {
	s := newSeededStore(t)
	_, err := s.Insert(context.Background(), []domain.RowRecord{{Kind: "donor", ID: "x"}})
	assert.Error(t, err)
	assert.NoError(t, s.Ping(context.Background()))
}

func TestStore_UnknownKind(t *testing.T) {
	s := newSeededStore(t)
	_, err := s.Rows(context.Background(), reporting.RowQuery{Kind: "donor"})
	assert.Error(t, err)
}

func TestStore_UndatedTransactionUsesCreatedAt(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, ":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	amount := 10.0
	_, err = s.Insert(ctx, []domain.RowRecord{
		{Kind: domain.EntityKindTransaction, ID: "dated", Amount: &amount,
			Date:      time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC),
			CreatedAt: time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC)},
		{Kind: domain.EntityKindTransaction, ID: "undated", Amount: &amount,
			CreatedAt: time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC)},
	})
	require.NoError(t, err)

	february := domain.DateRange{From: day(2024, 2, 1), To: day(2024, 2, 29)}
	rows, err := s.Rows(ctx, reporting.RowQuery{Kind: domain.EntityKindTransaction, Range: february})
	require.NoError(t, err)
	assert.Equal(t, []string{"undated"}, ids(rows))

	march := domain.DateRange{From: day(2024, 3, 1), To: day(2024, 3, 31)}
	total, err := s.Sum(ctx, reporting.FieldQuery{Kind: domain.EntityKindTransaction, Field: reporting.FieldAmount, Range: march})
	require.NoError(t, err)
	assert.Equal(t, 10.0, total)
}
