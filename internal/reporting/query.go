package reporting

import (
	"fmt"

	"reportd/pkg/contracts/domain"
)

// QueryKind is the shape of an aggregate query's payload
type QueryKind string

const (
	QueryKindSum          QueryKind = "sum"
	QueryKindGroupedCount QueryKind = "grouped-count"
	QueryKindRowList      QueryKind = "row-list"
)

// AggregateQuery is one named, independent unit of work
type AggregateQuery struct {
	Name string
	// Label is the heading used when the query is rendered
	Label string
	Kind  QueryKind
	// Entity overrides the export's entity kind for related listings
	Entity domain.EntityKind
	Field  string
	// Limit caps row-list results; zero means the aggregator's maximum
	Limit int
	Order Order
}

// Target returns the entity kind the query reads
func (q AggregateQuery) Target(kind domain.EntityKind) domain.EntityKind {
	if q.Entity != "" {
		return q.Entity
	}
	return kind
}

// Title returns Label, or Name when no label is set
func (q AggregateQuery) Title() string {
	if q.Label != "" {
		return q.Label
	}
	return q.Name
}

// Default returns the value substituted when the query fails
func (q AggregateQuery) Default() QueryValue {
	v := QueryValue{Kind: q.Kind}
	switch q.Kind {
	case QueryKindGroupedCount:
		v.Groups = []domain.GroupBucket{}
	case QueryKindRowList:
		v.Rows = []domain.RowRecord{}
	}
	return v
}

// QueryValue is the payload of one query. Only the field matching Kind is
// meaningful. Err is set when the payload is the query's default.
type QueryValue struct {
	Kind   QueryKind
	Sum    float64
	Groups []domain.GroupBucket
	Rows   []domain.RowRecord
	Err    error
}

// Failed reports whether the value is a substituted default
func (v QueryValue) Failed() bool {
	return v.Err != nil
}

// SubQueryError records why a query fell back to its default.
// It never leaves the aggregator as a returned error.
type SubQueryError struct {
	Query string
	Err   error
}

// Error implements the error interface
func (e *SubQueryError) Error() string {
	return fmt.Sprintf("sub-query %s failed: %v", e.Query, e.Err)
}

// Unwrap returns the store error
func (e *SubQueryError) Unwrap() error {
	return e.Err
}

// AggregateResult maps query names to values. A result returned by
// Aggregator.Run holds an entry for every requested query.
type AggregateResult map[string]QueryValue

// Rows returns the rows of a row-list query, or nil when absent
func (r AggregateResult) Rows(name string) []domain.RowRecord {
	return r[name].Rows
}

// Sum returns the total of a sum query, or zero when absent
func (r AggregateResult) Sum(name string) float64 {
	return r[name].Sum
}

// Groups returns the buckets of a grouped-count query, or nil when absent
func (r AggregateResult) Groups(name string) []domain.GroupBucket {
	return r[name].Groups
}

// Failed returns the names of queries that fell back to their default
func (r AggregateResult) Failed(queries []AggregateQuery) []string {
	var names []string
	for _, q := range queries {
		if v, ok := r[q.Name]; ok && v.Failed() {
			names = append(names, q.Name)
		}
	}
	return names
}
