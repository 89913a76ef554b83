package exporter

import (
	"errors"
	"fmt"
	"time"

	"reportd/pkg/contracts/domain"
)

// ErrUnknownKind is returned for an entity kind without a column table
var ErrUnknownKind = errors.New("unknown entity kind")

// ErrKindMismatch is returned when a row does not belong to the formatted kind
var ErrKindMismatch = errors.New("row kind does not match export kind")

// ValueType controls how a column's values are written
type ValueType int

const (
	ValueText ValueType = iota
	ValueNumber
	ValueEnum
	ValueBool
	ValueDate
)

// Column is one exported field of an entity kind
type Column struct {
	Name  string
	Label string
	Type  ValueType
	// value returns the canonical text and false when the value is missing
	value func(domain.RowRecord) (string, bool)
}

// Value returns the canonical text of the column for row
func (c Column) Value(row domain.RowRecord) (string, bool) {
	return c.value(row)
}

// Quoted reports whether tabular output wraps the value in double quotes
func (c Column) Quoted() bool {
	return c.Type == ValueText
}

func text(get func(domain.RowRecord) string) func(domain.RowRecord) (string, bool) {
	return func(r domain.RowRecord) (string, bool) {
		v := get(r)
		return v, v != ""
	}
}

func date(get func(domain.RowRecord) time.Time) func(domain.RowRecord) (string, bool) {
	return func(r domain.RowRecord) (string, bool) {
		t := get(r)
		if t.IsZero() {
			return "", false
		}
		return formatDate(t), true
	}
}

var (
	colID = Column{Name: "id", Label: "ID", Type: ValueText,
		value: text(func(r domain.RowRecord) string { return r.ID })}
	colName = Column{Name: "name", Label: "Name", Type: ValueText,
		value: text(func(r domain.RowRecord) string { return r.Name })}
	colCreatedAt = Column{Name: "createdAt", Label: "Created", Type: ValueDate,
		value: date(func(r domain.RowRecord) time.Time { return r.CreatedAt })}
	colStatus = Column{Name: "status", Label: "Status", Type: ValueEnum,
		value: text(func(r domain.RowRecord) string { return r.Status })}
)

// columnTable is the single source of truth for every formatter
var columnTable = map[domain.EntityKind][]Column{
	domain.EntityKindPerson: {
		colID,
		colName,
		{Name: "age", Label: "Age", Type: ValueNumber, value: func(r domain.RowRecord) (string, bool) {
			if r.Age == nil {
				return "", false
			}
			return formatInt(*r.Age), true
		}},
		{Name: "location", Label: "Location", Type: ValueText,
			value: text(func(r domain.RowRecord) string { return r.Location })},
		{Name: "sponsored", Label: "Sponsored", Type: ValueBool, value: func(r domain.RowRecord) (string, bool) {
			if r.Sponsored == nil {
				return "", false
			}
			return formatBool(*r.Sponsored), true
		}},
		colCreatedAt,
		{Name: "story", Label: "Story", Type: ValueText,
			value: text(func(r domain.RowRecord) string { return r.Story })},
		{Name: "needs", Label: "Needs", Type: ValueText,
			value: text(func(r domain.RowRecord) string { return r.Needs })},
	},
	domain.EntityKindSponsor: {
		colID,
		colName,
		{Name: "email", Label: "Email", Type: ValueText,
			value: text(func(r domain.RowRecord) string { return r.Email })},
		{Name: "phone", Label: "Phone", Type: ValueText,
			value: text(func(r domain.RowRecord) string { return r.Phone })},
		{Name: "address", Label: "Address", Type: ValueText,
			value: text(func(r domain.RowRecord) string { return r.Address })},
		colStatus,
		colCreatedAt,
	},
	domain.EntityKindTransaction: {
		colID,
		{Name: "amount", Label: "Amount", Type: ValueNumber, value: func(r domain.RowRecord) (string, bool) {
			if r.Amount == nil {
				return "", false
			}
			return formatFloat(*r.Amount), true
		}},
		{Name: "counterpartyName", Label: "Donor", Type: ValueText,
			value: text(func(r domain.RowRecord) string { return r.CounterpartyName })},
		{Name: "counterpartyEmail", Label: "Donor Email", Type: ValueText,
			value: text(func(r domain.RowRecord) string { return r.CounterpartyEmail })},
		colStatus,
		{Name: "date", Label: "Date", Type: ValueDate,
			value: date(func(r domain.RowRecord) time.Time { return r.Date })},
		{Name: "method", Label: "Method", Type: ValueText,
			value: text(func(r domain.RowRecord) string { return r.Method })},
	},
}

// Columns returns the ordered columns of kind
func Columns(kind domain.EntityKind) ([]Column, error) {
	cols, ok := columnTable[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return cols, nil
}

// Header returns the column names of kind in output order
func Header(kind domain.EntityKind) ([]string, error) {
	cols, err := Columns(kind)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names, nil
}

// checkKind rejects rows tagged with a different entity kind
func checkKind(rows []domain.RowRecord, kind domain.EntityKind) error {
	for i, row := range rows {
		if row.Kind != "" && row.Kind != kind {
			return fmt.Errorf("%w: row %d is %q, export is %q", ErrKindMismatch, i, row.Kind, kind)
		}
	}
	return nil
}
