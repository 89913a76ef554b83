package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"reportd/pkg/contracts/domain"
)

// Insert upserts records in a single transaction and returns how many were written.
// It is used by the seed command; the report engine itself never writes.
func (s *Store) Insert(ctx context.Context, records []domain.RowRecord) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	stmts := make(map[domain.EntityKind]*sql.Stmt, len(tables))
	for kind, t := range tables {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(t.columns)), ", ")
		stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT OR REPLACE INTO %s (%s) VALUES (%s)",
			t.name, strings.Join(t.columns, ", "), placeholders))
		if err != nil {
			return 0, fmt.Errorf("prepare %s insert: %w", t.name, err)
		}
		defer stmt.Close()
		stmts[kind] = stmt
	}

	written := 0
	for _, rec := range records {
		stmt, ok := stmts[rec.Kind]
		if !ok {
			return written, fmt.Errorf("record %s: unknown entity kind %q", rec.ID, rec.Kind)
		}
		if _, err := stmt.ExecContext(ctx, values(rec)...); err != nil {
			return written, fmt.Errorf("insert %s %s: %w", rec.Kind, rec.ID, err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed: %w", err)
	}

	s.logger.InfoContext(ctx, "records seeded", slog.Int("count", written))
	return written, nil
}

// values returns column values in the order of the kind's table columns
func values(rec domain.RowRecord) []any {
	switch rec.Kind {
	case domain.EntityKindPerson:
		var age, sponsored any
		if rec.Age != nil {
			age = *rec.Age
		}
		if rec.Sponsored != nil {
			sponsored = *rec.Sponsored
		}
		return []any{rec.ID, rec.Name, age, rec.Location, sponsored, rec.Story, rec.Needs, formatTime(rec.CreatedAt)}
	case domain.EntityKindSponsor:
		return []any{rec.ID, rec.Name, rec.Email, rec.Phone, rec.Address, rec.Status, formatTime(rec.CreatedAt)}
	case domain.EntityKindTransaction:
		var amount any
		if rec.Amount != nil {
			amount = *rec.Amount
		}
		return []any{rec.ID, amount, rec.CounterpartyName, rec.CounterpartyEmail, rec.Status, rec.Method,
			formatTime(rec.Date), formatTime(rec.CreatedAt)}
	}
	return nil
}
