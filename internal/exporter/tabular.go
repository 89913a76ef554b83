package exporter

import (
	"bytes"
	"strings"

	"reportd/pkg/contracts/domain"
)

const (
	tabularSeparator = ","
	tabularNewline   = "\n"
)

// FormatTabular writes a header line followed by one line per row, in the
// order received. Lines are separated by a newline with none after the last.
// Quoted values are wrapped as-is: embedded quotes are not escaped.
func FormatTabular(rows []domain.RowRecord, kind domain.EntityKind) ([]byte, error) {
	cols, err := Columns(kind)
	if err != nil {
		return nil, err
	}
	if err := checkKind(rows, kind); err != nil {
		return nil, err
	}

	header, _ := Header(kind)

	var buf bytes.Buffer
	buf.WriteString(strings.Join(header, tabularSeparator))

	for _, row := range rows {
		buf.WriteString(tabularNewline)
		for i, col := range cols {
			if i > 0 {
				buf.WriteString(tabularSeparator)
			}
			buf.WriteString(tabularCell(col, row))
		}
	}

	return buf.Bytes(), nil
}

func tabularCell(col Column, row domain.RowRecord) string {
	v, ok := col.Value(row)
	if !ok {
		return `""`
	}
	if col.Quoted() {
		return `"` + v + `"`
	}
	return v
}
