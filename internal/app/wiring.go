package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"reportd/internal/config"
	"reportd/internal/exporter"
	"reportd/internal/infrastructure"
	"reportd/internal/reporting"
	"reportd/internal/services"
	"reportd/internal/store/fixtures"
	"reportd/internal/store/memory"
	"reportd/internal/store/sqlite"
	"reportd/pkg/contracts/domain"
)

// RecordStore is a record store the application owns for its lifetime
type RecordStore interface {
	reporting.RecordStore
	services.Pinger
	io.Closer
}

// memoryStore adapts the in-memory store to RecordStore
type memoryStore struct {
	*memory.Store
}

func (memoryStore) Close() error { return nil }

// OpenStore opens the configured record store and loads the fixtures file
// into it when one is configured
func OpenStore(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (RecordStore, error) {
	var records []domain.RowRecord
	if cfg.FixturesPath != "" {
		var err error
		records, err = fixtures.Load(cfg.FixturesPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load fixtures: %w", err)
		}
	}

	switch cfg.Driver {
	case config.StoreDriverMemory:
		store := memory.New(records...)
		attrs := []any{slog.String("fixtures", cfg.FixturesPath)}
		for _, kind := range domain.EntityKinds {
			attrs = append(attrs, slog.Int(string(kind), store.Len(kind)))
		}
		logger.InfoContext(ctx, "memory store ready", attrs...)
		return memoryStore{store}, nil

	case config.StoreDriverSQLite:
		store, err := sqlite.Open(ctx, cfg.DSN, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		if len(records) > 0 {
			n, err := store.Insert(ctx, records)
			if err != nil {
				store.Close()
				return nil, fmt.Errorf("failed to seed sqlite store: %w", err)
			}
			logger.InfoContext(ctx, "sqlite store seeded",
				slog.String("fixtures", cfg.FixturesPath),
				slog.Int("records", n))
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unsupported store driver: %q", cfg.Driver)
	}
}

// NewExportService assembles the aggregator, formatter registry and export
// service from configuration
func NewExportService(cfg *config.Config, store reporting.RecordStore, logger *slog.Logger, metrics *infrastructure.BusinessMetrics, aggMetrics *reporting.Metrics) *services.ExportService {
	aggOpts := []reporting.Option{
		reporting.WithLogger(logger),
		reporting.WithQueryTimeout(cfg.Export.QueryTimeout),
		reporting.WithMaxRows(cfg.Export.RowLimit),
	}
	if aggMetrics != nil {
		aggOpts = append(aggOpts, reporting.WithMetrics(aggMetrics))
	}
	aggregator := reporting.NewAggregator(store, aggOpts...)

	var pdf *exporter.PDFRenderer
	if cfg.Export.DocumentEngine == config.DocumentEnginePDF {
		pdf = exporter.NewPDFRenderer(cfg.Export.ChromePath, cfg.Export.RenderTimeout, logger)
	}

	return services.NewExportService(aggregator, exporter.NewRegistry(pdf),
		services.WithRowLimit(cfg.Export.RowLimit),
		services.WithBusinessMetrics(metrics),
		services.WithExportLogger(logger),
	)
}
