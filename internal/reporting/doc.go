// Package reporting gathers the statistics and row listings behind an export.
//
// An export for one entity kind runs a fixed set of named AggregateQuery
// values against a RecordStore. The Aggregator launches every query in its
// own goroutine and joins them all before returning. A query that fails,
// times out or panics does not affect its siblings; its slot in the
// AggregateResult receives the query's declared default instead:
//
//	sum           -> 0
//	grouped-count -> empty bucket list
//	row-list      -> empty row list
//
// The result is therefore always total: it holds one entry for every
// requested query name.
//
// # Date ranges
//
// NormalizeRange turns the raw "from" and "to" request values into a
// domain.DateRange. Both bounds are calendar days in UTC and both are
// inclusive. A range whose from is after its to is returned unchanged and
// simply matches no rows.
//
// Example usage:
//
//	rng, err := reporting.NormalizeRange("2024-01-01", "2024-01-31")
//	if err != nil {
//		return err // wraps reporting.ErrInvalidDate
//	}
//	agg := reporting.NewAggregator(store, reporting.WithLogger(logger))
//	result := agg.Run(ctx, domain.EntityKindTransaction, rng,
//		reporting.QuerySet(domain.EntityKindTransaction, 100))
//	rows := result.Rows(reporting.QueryRows)
package reporting
