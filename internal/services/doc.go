// Package services implements the business logic layer between the HTTP and
// CLI front ends and the reporting engine.
//
// ExportService drives one export through its stages:
//
//	validating -> normalizing -> aggregating -> formatting -> done
//
// Validation rejects unknown entity kinds and output formats with a
// RequestError wrapping ErrInvalidRequest. Date bounds that are not calendar
// days fail with ErrInvalidDate. Aggregation never fails; a failed sub-query
// shows up as an unavailable section of the report. Serializer failures wrap
// ErrFormattingFailed.
//
//	svc := services.NewExportService(aggregator, exporter.NewRegistry(nil),
//	    services.WithRowLimit(cfg.Export.RowLimit))
//	result, err := svc.Export(ctx, "transaction", "tabular", "2024-01-01", "2024-01-31")
//
// HealthService backs the liveness and readiness endpoints.
package services
