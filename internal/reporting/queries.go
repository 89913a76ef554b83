package reporting

import "reportd/pkg/contracts/domain"

// Query names shared by the fixed query sets
const (
	QueryRows               = "rows"
	QueryTotalAmount        = "totalAmount"
	QueryByStatus           = "byStatus"
	QueryByMethod           = "byMethod"
	QueryBySponsored        = "bySponsored"
	QueryByLocation         = "byLocation"
	QueryRecentTransactions = "recentTransactions"
)

// DefaultRowLimit is the row cap applied when none is configured
const DefaultRowLimit = 100

// relatedRowLimit caps listings of related entities
const relatedRowLimit = 5

// QuerySet returns the fixed queries run for an export of kind.
// rowLimit caps the main row listing; non-positive values use DefaultRowLimit.
func QuerySet(kind domain.EntityKind, rowLimit int) []AggregateQuery {
	if rowLimit <= 0 {
		rowLimit = DefaultRowLimit
	}

	switch kind {
	case domain.EntityKindPerson:
		return []AggregateQuery{
			{Name: QueryRows, Kind: QueryKindRowList, Limit: rowLimit, Order: Order{Field: FieldCreatedAt, Descending: true}},
			{Name: QueryBySponsored, Label: "By sponsorship", Kind: QueryKindGroupedCount, Field: FieldSponsored},
			{Name: QueryByLocation, Label: "By location", Kind: QueryKindGroupedCount, Field: FieldLocation},
		}
	case domain.EntityKindSponsor:
		return []AggregateQuery{
			{Name: QueryRows, Kind: QueryKindRowList, Limit: rowLimit, Order: Order{Field: FieldCreatedAt, Descending: true}},
			{Name: QueryByStatus, Label: "By status", Kind: QueryKindGroupedCount, Field: FieldStatus},
			{
				Name:   QueryRecentTransactions,
				Label:  "Recent transactions",
				Kind:   QueryKindRowList,
				Entity: domain.EntityKindTransaction,
				Limit:  relatedRowLimit,
				Order:  Order{Field: FieldDate, Descending: true},
			},
		}
	case domain.EntityKindTransaction:
		return []AggregateQuery{
			{Name: QueryRows, Kind: QueryKindRowList, Limit: rowLimit, Order: Order{Field: FieldDate, Descending: true}},
			{Name: QueryTotalAmount, Label: "Total amount", Kind: QueryKindSum, Field: FieldAmount},
			{Name: QueryByStatus, Label: "By status", Kind: QueryKindGroupedCount, Field: FieldStatus},
			{Name: QueryByMethod, Label: "By method", Kind: QueryKindGroupedCount, Field: FieldMethod},
		}
	default:
		return nil
	}
}

// SummaryQueries returns the queries of QuerySet that are not row listings
func SummaryQueries(kind domain.EntityKind) []AggregateQuery {
	var out []AggregateQuery
	for _, q := range QuerySet(kind, 0) {
		if q.Kind != QueryKindRowList {
			out = append(out, q)
		}
	}
	return out
}
