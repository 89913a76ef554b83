// Package memory implements reporting.RecordStore over records held in memory.
// It backs tests and fixture-only deployments.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"reportd/internal/reporting"
	"reportd/pkg/contracts/domain"
)

// Store is a concurrency-safe in-memory record store
type Store struct {
	mu      sync.RWMutex
	records map[domain.EntityKind][]domain.RowRecord
}

var _ reporting.RecordStore = (*Store)(nil)

// New creates a store holding records
func New(records ...domain.RowRecord) *Store {
	s := &Store{records: make(map[domain.EntityKind][]domain.RowRecord)}
	s.Add(records...)
	return s
}

// Add appends records to the store
func (s *Store) Add(records ...domain.RowRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		s.records[r.Kind] = append(s.records[r.Kind], r)
	}
}

// Len returns the number of records of kind
func (s *Store) Len(kind domain.EntityKind) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records[kind])
}

// Ping reports whether the store can serve queries
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Rows implements reporting.RecordStore
func (s *Store) Rows(ctx context.Context, q reporting.RowQuery) ([]domain.RowRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	less, err := orderFunc(q.Kind, q.Order)
	if err != nil {
		return nil, err
	}

	rows := s.matching(q.Kind, q.Range)
	sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j]) })

	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}
	return rows, nil
}

// Sum implements reporting.RecordStore
func (s *Store) Sum(ctx context.Context, q reporting.FieldQuery) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if q.Field != reporting.FieldAmount || q.Kind != domain.EntityKindTransaction {
		return 0, fmt.Errorf("sum %s.%s: %w", q.Kind, q.Field, reporting.ErrUnsupportedField)
	}

	var total float64
	for _, r := range s.matching(q.Kind, q.Range) {
		if r.Amount != nil {
			total += *r.Amount
		}
	}
	return total, nil
}

// CountBy implements reporting.RecordStore. Buckets are sorted by key.
func (s *Store) CountBy(ctx context.Context, q reporting.FieldQuery) ([]domain.GroupBucket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key, err := groupKey(q.Kind, q.Field)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	var buckets []domain.GroupBucket
	for _, r := range s.matching(q.Kind, q.Range) {
		k := key(r)
		i, ok := index[k]
		if !ok {
			i = len(buckets)
			index[k] = i
			buckets = append(buckets, domain.GroupBucket{Key: k})
		}
		buckets[i].Count++
		if r.Amount != nil {
			buckets[i].Total += *r.Amount
		}
	}

	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Key < buckets[j].Key })
	return buckets, nil
}

// matching returns a copy of the records of kind inside rng
func (s *Store) matching(kind domain.EntityKind, rng domain.DateRange) []domain.RowRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.RowRecord, 0, len(s.records[kind]))
	for _, r := range s.records[kind] {
		if rng.Contains(r.Timestamp()) {
			out = append(out, r)
		}
	}
	return out
}

func groupKey(kind domain.EntityKind, field string) (func(domain.RowRecord) string, error) {
	switch {
	case field == reporting.FieldStatus && kind != domain.EntityKindPerson:
		return func(r domain.RowRecord) string { return orUnspecified(r.Status) }, nil
	case field == reporting.FieldMethod && kind == domain.EntityKindTransaction:
		return func(r domain.RowRecord) string { return orUnspecified(r.Method) }, nil
	case field == reporting.FieldLocation && kind == domain.EntityKindPerson:
		return func(r domain.RowRecord) string { return orUnspecified(r.Location) }, nil
	case field == reporting.FieldSponsored && kind == domain.EntityKindPerson:
		return func(r domain.RowRecord) string {
			if r.Sponsored == nil {
				return reporting.GroupUnspecified
			}
			return strconv.FormatBool(*r.Sponsored)
		}, nil
	}
	return nil, fmt.Errorf("group %s.%s: %w", kind, field, reporting.ErrUnsupportedField)
}

func orderFunc(kind domain.EntityKind, order reporting.Order) (func(a, b domain.RowRecord) bool, error) {
	var less func(a, b domain.RowRecord) bool
	switch order.Field {
	case "", reporting.FieldCreatedAt:
		less = byTime(func(r domain.RowRecord) time.Time { return r.CreatedAt })
	case reporting.FieldDate:
		if kind != domain.EntityKindTransaction {
			return nil, fmt.Errorf("order %s.%s: %w", kind, order.Field, reporting.ErrUnsupportedField)
		}
		less = byTime(func(r domain.RowRecord) time.Time { return r.Date })
	case reporting.FieldID:
		less = func(a, b domain.RowRecord) bool { return a.ID < b.ID }
	case reporting.FieldAmount:
		if kind != domain.EntityKindTransaction {
			return nil, fmt.Errorf("order %s.%s: %w", kind, order.Field, reporting.ErrUnsupportedField)
		}
		less = func(a, b domain.RowRecord) bool { return amount(a) < amount(b) }
	default:
		return nil, fmt.Errorf("order %s.%s: %w", kind, order.Field, reporting.ErrUnsupportedField)
	}

	if order.Descending {
		return func(a, b domain.RowRecord) bool { return less(b, a) }, nil
	}
	return less, nil
}

func byTime(get func(domain.RowRecord) time.Time) func(a, b domain.RowRecord) bool {
	return func(a, b domain.RowRecord) bool { return get(a).Before(get(b)) }
}

func amount(r domain.RowRecord) float64 {
	if r.Amount == nil {
		return 0
	}
	return *r.Amount
}

func orUnspecified(v string) string {
	if v == "" {
		return reporting.GroupUnspecified
	}
	return v
}
