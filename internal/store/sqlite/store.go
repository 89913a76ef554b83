// Package sqlite implements reporting.RecordStore on a SQLite database
// through database/sql and github.com/mattn/go-sqlite3.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"reportd/internal/reporting"
	"reportd/pkg/contracts/domain"
)

// timeLayout is fixed width so that text comparison orders instants
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store reads report records from SQLite
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ reporting.RecordStore = (*Store)(nil)

// Open connects to dsn and creates the schema when missing
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}
	if strings.Contains(dsn, ":memory:") {
		// every connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	logger.Info("sqlite store opened", slog.String("dsn", dsn))
	return &Store{db: db, logger: logger.With(slog.String("component", "sqlite_store"))}, nil
}

// Close releases the database handle
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Rows implements reporting.RecordStore
func (s *Store) Rows(ctx context.Context, q reporting.RowQuery) ([]domain.RowRecord, error) {
	t, err := lookup(q.Kind)
	if err != nil {
		return nil, err
	}
	orderBy, err := t.orderClause(q.Order)
	if err != nil {
		return nil, err
	}
	where, args := t.rangeClause(q.Range)

	limit := q.Limit
	if limit <= 0 {
		limit = -1
	}
	args = append(args, limit)

	query := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s LIMIT ?",
		strings.Join(t.columns, ", "), t.name, where, orderBy)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s rows: %w", t.name, err)
	}
	defer rows.Close()

	var out []domain.RowRecord
	for rows.Next() {
		rec, err := scanRecord(q.Kind, rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s row: %w", t.name, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s rows: %w", t.name, err)
	}
	return out, nil
}

// Sum implements reporting.RecordStore
func (s *Store) Sum(ctx context.Context, q reporting.FieldQuery) (float64, error) {
	t, err := lookup(q.Kind)
	if err != nil {
		return 0, err
	}
	if !t.sums[q.Field] {
		return 0, fmt.Errorf("sum %s.%s: %w", q.Kind, q.Field, reporting.ErrUnsupportedField)
	}
	where, args := t.rangeClause(q.Range)

	query := fmt.Sprintf("SELECT COALESCE(SUM(%s), 0) FROM %s%s", t.fields[q.Field], t.name, where)

	var total float64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum %s.%s: %w", q.Kind, q.Field, err)
	}
	return total, nil
}

// CountBy implements reporting.RecordStore. Buckets are sorted by key.
func (s *Store) CountBy(ctx context.Context, q reporting.FieldQuery) ([]domain.GroupBucket, error) {
	t, err := lookup(q.Kind)
	if err != nil {
		return nil, err
	}
	if !t.groups[q.Field] {
		return nil, fmt.Errorf("group %s.%s: %w", q.Kind, q.Field, reporting.ErrUnsupportedField)
	}
	where, args := t.rangeClause(q.Range)

	total := "0"
	if _, ok := t.fields[reporting.FieldAmount]; ok {
		total = "COALESCE(SUM(amount), 0)"
	}
	query := fmt.Sprintf("SELECT %s AS bucket, COUNT(*), %s FROM %s%s GROUP BY bucket ORDER BY bucket",
		groupExpr(q.Field, t.fields[q.Field]), total, t.name, where)
	args = append([]any{reporting.GroupUnspecified}, args...)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("group %s.%s: %w", q.Kind, q.Field, err)
	}
	defer rows.Close()

	buckets := []domain.GroupBucket{}
	for rows.Next() {
		var b domain.GroupBucket
		if err := rows.Scan(&b.Key, &b.Count, &b.Total); err != nil {
			return nil, fmt.Errorf("scan %s bucket: %w", q.Field, err)
		}
		buckets = append(buckets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s buckets: %w", q.Field, err)
	}
	return buckets, nil
}

func lookup(kind domain.EntityKind) (table, error) {
	t, ok := tables[kind]
	if !ok {
		return table{}, fmt.Errorf("unknown entity kind %q", kind)
	}
	return t, nil
}

// rangeClause builds the WHERE clause for rng on the kind's timestamp expression
func (t table) rangeClause(rng domain.DateRange) (string, []any) {
	if rng.IsOpen() {
		return "", nil
	}
	var conds []string
	var args []any
	if lower, ok := rng.Lower(); ok {
		conds = append(conds, t.timestamp+" >= ?")
		args = append(args, formatTime(lower))
	}
	if upper, ok := rng.Upper(); ok {
		conds = append(conds, t.timestamp+" < ?")
		args = append(args, formatTime(upper))
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// orderClause ties on insertion order so results match the memory store
func (t table) orderClause(o reporting.Order) (string, error) {
	field := o.Field
	if field == "" {
		field = reporting.FieldCreatedAt
	}
	col, ok := t.fields[field]
	if !ok || !orderable(field) {
		return "", fmt.Errorf("order %s.%s: %w", t.name, field, reporting.ErrUnsupportedField)
	}
	if o.Descending {
		return col + " DESC, rowid ASC", nil
	}
	return col + " ASC, rowid ASC", nil
}

func orderable(field string) bool {
	switch field {
	case reporting.FieldID, reporting.FieldCreatedAt, reporting.FieldDate, reporting.FieldAmount:
		return true
	}
	return false
}

// groupExpr maps missing values to the first bind parameter
func groupExpr(field, col string) string {
	if field == reporting.FieldSponsored {
		return "CASE WHEN " + col + " IS NULL THEN ? WHEN " + col + " <> 0 THEN 'true' ELSE 'false' END"
	}
	return "CASE WHEN " + col + " = '' THEN ? ELSE " + col + " END"
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(kind domain.EntityKind, row scanner) (domain.RowRecord, error) {
	rec := domain.RowRecord{Kind: kind}
	var created string

	switch kind {
	case domain.EntityKindPerson:
		var age sql.NullInt64
		var sponsored sql.NullBool
		if err := row.Scan(&rec.ID, &rec.Name, &age, &rec.Location, &sponsored, &rec.Story, &rec.Needs, &created); err != nil {
			return rec, err
		}
		if age.Valid {
			v := int(age.Int64)
			rec.Age = &v
		}
		if sponsored.Valid {
			v := sponsored.Bool
			rec.Sponsored = &v
		}

	case domain.EntityKindSponsor:
		if err := row.Scan(&rec.ID, &rec.Name, &rec.Email, &rec.Phone, &rec.Address, &rec.Status, &created); err != nil {
			return rec, err
		}

	case domain.EntityKindTransaction:
		var amount sql.NullFloat64
		var date string
		if err := row.Scan(&rec.ID, &amount, &rec.CounterpartyName, &rec.CounterpartyEmail, &rec.Status, &rec.Method, &date, &created); err != nil {
			return rec, err
		}
		if amount.Valid {
			v := amount.Float64
			rec.Amount = &v
		}
		d, err := parseTime(date)
		if err != nil {
			return rec, err
		}
		rec.Date = d
	}

	t, err := parseTime(created)
	if err != nil {
		return rec, err
	}
	rec.CreatedAt = t
	return rec, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored timestamp %q: %w", s, err)
	}
	return t, nil
}
