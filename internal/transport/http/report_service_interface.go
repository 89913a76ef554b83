package http

import (
	"context"

	"reportd/pkg/contracts/domain"
)

// ReportServiceInterface defines the report operations exposed over HTTP
type ReportServiceInterface interface {
	Export(ctx context.Context, kind, format, from, to string) (*domain.ExportResult, error)
	Summary(ctx context.Context, kind, from, to string) (*domain.Summary, error)
}
