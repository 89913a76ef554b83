package sqlite

import (
	"reportd/internal/reporting"
	"reportd/pkg/contracts/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS people (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	age        INTEGER,
	location   TEXT NOT NULL DEFAULT '',
	sponsored  INTEGER,
	story      TEXT NOT NULL DEFAULT '',
	needs      TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_people_created_at ON people (created_at);

CREATE TABLE IF NOT EXISTS sponsors (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	email      TEXT NOT NULL DEFAULT '',
	phone      TEXT NOT NULL DEFAULT '',
	address    TEXT NOT NULL DEFAULT '',
	status     TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_sponsors_created_at ON sponsors (created_at);

CREATE TABLE IF NOT EXISTS transactions (
	id                 TEXT PRIMARY KEY,
	amount             REAL,
	counterparty_name  TEXT NOT NULL DEFAULT '',
	counterparty_email TEXT NOT NULL DEFAULT '',
	status             TEXT NOT NULL DEFAULT '',
	method             TEXT NOT NULL DEFAULT '',
	date               TEXT NOT NULL DEFAULT '',
	created_at         TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions (date);
`

// table describes how one entity kind maps onto SQL
type table struct {
	name      string
	columns   []string
	timestamp string
	// fields maps store field names to column names; only listed fields may
	// appear in ORDER BY, SUM or GROUP BY clauses
	fields map[string]string
	sums   map[string]bool
	groups map[string]bool
}

var tables = map[domain.EntityKind]table{
	domain.EntityKindPerson: {
		name:      "people",
		columns:   []string{"id", "name", "age", "location", "sponsored", "story", "needs", "created_at"},
		timestamp: "created_at",
		fields: map[string]string{
			reporting.FieldID:        "id",
			reporting.FieldCreatedAt: "created_at",
			reporting.FieldLocation:  "location",
			reporting.FieldSponsored: "sponsored",
		},
		groups: map[string]bool{reporting.FieldLocation: true, reporting.FieldSponsored: true},
	},
	domain.EntityKindSponsor: {
		name:      "sponsors",
		columns:   []string{"id", "name", "email", "phone", "address", "status", "created_at"},
		timestamp: "created_at",
		fields: map[string]string{
			reporting.FieldID:        "id",
			reporting.FieldCreatedAt: "created_at",
			reporting.FieldStatus:    "status",
		},
		groups: map[string]bool{reporting.FieldStatus: true},
	},
	domain.EntityKindTransaction: {
		name:      "transactions",
		columns:   []string{"id", "amount", "counterparty_name", "counterparty_email", "status", "method", "date", "created_at"},
		// an undated transaction is matched on created_at, as RowRecord.Timestamp does
		timestamp: "COALESCE(NULLIF(date, ''), created_at)",
		fields: map[string]string{
			reporting.FieldID:        "id",
			reporting.FieldCreatedAt: "created_at",
			reporting.FieldDate:      "date",
			reporting.FieldAmount:    "amount",
			reporting.FieldStatus:    "status",
			reporting.FieldMethod:    "method",
		},
		sums:   map[string]bool{reporting.FieldAmount: true},
		groups: map[string]bool{reporting.FieldStatus: true, reporting.FieldMethod: true},
	},
}
