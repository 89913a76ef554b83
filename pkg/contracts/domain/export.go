package domain

import (
	"time"
)

// EntityKind identifies which stored entity an export is built from
type EntityKind string

const (
	EntityKindPerson      EntityKind = "person"
	EntityKindSponsor     EntityKind = "sponsor"
	EntityKindTransaction EntityKind = "transaction"
)

// EntityKinds lists every supported kind in a stable order
var EntityKinds = []EntityKind{
	EntityKindPerson,
	EntityKindSponsor,
	EntityKindTransaction,
}

// Title returns the human readable name used in report headings
func (k EntityKind) Title() string {
	switch k {
	case EntityKindPerson:
		return "People"
	case EntityKindSponsor:
		return "Sponsors"
	case EntityKindTransaction:
		return "Transactions"
	default:
		return string(k)
	}
}

// OutputFormat selects the serializer used for an export
type OutputFormat string

const (
	OutputFormatTabular  OutputFormat = "tabular"
	OutputFormatDocument OutputFormat = "document"
	OutputFormatWorkbook OutputFormat = "workbook"
)

// OutputFormats lists every supported format
var OutputFormats = []OutputFormat{
	OutputFormatTabular,
	OutputFormatDocument,
	OutputFormatWorkbook,
}

// DateRange is an optional calendar-day window. Both bounds are inclusive
// and either may be nil for an open-ended range.
type DateRange struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

// IsOpen reports whether the range applies no filtering at all
func (r DateRange) IsOpen() bool {
	return r.From == nil && r.To == nil
}

// Lower returns the first instant included by the range
func (r DateRange) Lower() (time.Time, bool) {
	if r.From == nil {
		return time.Time{}, false
	}
	return startOfDay(*r.From), true
}

// Upper returns the first instant after the range (exclusive bound)
func (r DateRange) Upper() (time.Time, bool) {
	if r.To == nil {
		return time.Time{}, false
	}
	return startOfDay(*r.To).AddDate(0, 0, 1), true
}

// Contains reports whether t falls on or between the range's days
func (r DateRange) Contains(t time.Time) bool {
	t = t.UTC()
	if lower, ok := r.Lower(); ok && t.Before(lower) {
		return false
	}
	if upper, ok := r.Upper(); ok && !t.Before(upper) {
		return false
	}
	return true
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// RowRecord is a flattened, read-only view of one stored entity holding only
// the fields that reach an export. Optional values are pointers so that a
// missing value can be told apart from a zero value.
type RowRecord struct {
	Kind EntityKind `json:"kind"`
	ID   string     `json:"id"`
	Name string     `json:"name,omitempty"`

	// person
	Age       *int   `json:"age,omitempty"`
	Location  string `json:"location,omitempty"`
	Sponsored *bool  `json:"sponsored,omitempty"`
	Story     string `json:"story,omitempty"`
	Needs     string `json:"needs,omitempty"`

	// sponsor
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`

	// sponsor and transaction
	Status string `json:"status,omitempty"`

	// transaction
	Amount            *float64 `json:"amount,omitempty"`
	CounterpartyName  string   `json:"counterparty_name,omitempty"`
	CounterpartyEmail string   `json:"counterparty_email,omitempty"`
	Method            string   `json:"method,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	Date      time.Time `json:"date,omitempty"`
}

// Timestamp returns the instant a date range is matched against
func (r RowRecord) Timestamp() time.Time {
	if r.Kind == EntityKindTransaction && !r.Date.IsZero() {
		return r.Date
	}
	return r.CreatedAt
}

// GroupBucket is one group of a grouped count
type GroupBucket struct {
	Key   string  `json:"key"`
	Count int64   `json:"count"`
	Total float64 `json:"total,omitempty"`
}

// ExportRequest is a fully parsed export request
type ExportRequest struct {
	Kind   EntityKind   `json:"entityKind" validate:"required,oneof=person sponsor transaction"`
	Format OutputFormat `json:"outputFormat" validate:"required,oneof=tabular document workbook"`
	Range  DateRange    `json:"range"`
}

// ExportResult is the serialized export handed to the response layer
type ExportResult struct {
	Bytes       []byte    `json:"-"`
	MediaType   string    `json:"media_type"`
	Filename    string    `json:"filename"`
	RecordCount int       `json:"record_count"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Summary holds the non-row aggregates for an entity kind
type Summary struct {
	Kind        EntityKind               `json:"entity_kind"`
	Range       DateRange                `json:"range"`
	GeneratedAt time.Time                `json:"generated_at"`
	Sums        map[string]float64       `json:"sums"`
	Groups      map[string][]GroupBucket `json:"groups"`
	Failed      []string                 `json:"failed,omitempty"`
}
