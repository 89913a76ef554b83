package reporting

import (
	"context"
	"errors"

	"reportd/pkg/contracts/domain"
)

// Field names understood by RecordStore implementations
const (
	FieldID        = "id"
	FieldAmount    = "amount"
	FieldStatus    = "status"
	FieldMethod    = "method"
	FieldSponsored = "sponsored"
	FieldLocation  = "location"
	FieldCreatedAt = "createdAt"
	FieldDate      = "date"
)

// GroupUnspecified is the bucket key for records with no value in the grouped field
const GroupUnspecified = "unspecified"

// ErrUnsupportedField is returned by stores for fields a kind does not carry
var ErrUnsupportedField = errors.New("unsupported field")

// Order describes the ordering of a row listing
type Order struct {
	Field      string
	Descending bool
}

// RowQuery asks a store for the rows of one entity kind
type RowQuery struct {
	Kind  domain.EntityKind
	Range domain.DateRange
	// Limit is a hard upper bound on the number of rows returned
	Limit int
	Order Order
}

// FieldQuery asks a store for an aggregate over one field
type FieldQuery struct {
	Kind  domain.EntityKind
	Range domain.DateRange
	Field string
}

// RecordStore is the read-only data source the engine queries.
// Implementations must be safe for concurrent use.
type RecordStore interface {
	// Rows returns at most q.Limit rows matching q.Range in q.Order.
	Rows(ctx context.Context, q RowQuery) ([]domain.RowRecord, error)

	// Sum returns the total of a numeric field over the matching rows.
	Sum(ctx context.Context, q FieldQuery) (float64, error)

	// CountBy groups the matching rows by a field and counts each group.
	CountBy(ctx context.Context, q FieldQuery) ([]domain.GroupBucket, error)
}
