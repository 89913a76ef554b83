package exporter

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"reportd/pkg/contracts/domain"
)

const summarySheet = "Summary"

// FormatWorkbook renders doc as an xlsx workbook with a summary sheet and a
// data sheet named after the entity kind
func FormatWorkbook(doc Document) ([]byte, error) {
	cols, err := Columns(doc.Kind)
	if err != nil {
		return nil, err
	}
	if err := checkKind(doc.Rows, doc.Kind); err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("failed to name summary sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	summary := [][]interface{}{
		{doc.Title()},
		{"Generated", formatTimestamp(doc.GeneratedAt)},
		{"Records", len(doc.Rows)},
	}
	for _, m := range doc.Metrics {
		summary = append(summary, []interface{}{m.Name, m.Value})
	}
	for _, b := range doc.Breakdowns {
		summary = append(summary, []interface{}{}, []interface{}{b.Name})
		for _, bucket := range b.Buckets {
			summary = append(summary, []interface{}{bucket.Key, bucket.Count})
		}
	}
	if len(doc.Unavailable) > 0 {
		summary = append(summary, []interface{}{})
		for _, name := range doc.Unavailable {
			summary = append(summary, []interface{}{"Unavailable", name})
		}
	}
	if err := writeRows(f, summarySheet, summary); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(summarySheet, "A1", "A1", bold); err != nil {
		return nil, fmt.Errorf("failed to style title: %w", err)
	}

	dataSheet := doc.Kind.Title()
	if _, err := f.NewSheet(dataSheet); err != nil {
		return nil, fmt.Errorf("failed to create data sheet: %w", err)
	}

	data := make([][]interface{}, 0, len(doc.Rows)+1)
	header := make([]interface{}, len(cols))
	for i, c := range cols {
		header[i] = c.Name
	}
	data = append(data, header)
	for _, row := range doc.Rows {
		cells := make([]interface{}, len(cols))
		for i, c := range cols {
			cells[i] = workbookCell(c, row)
		}
		data = append(data, cells)
	}
	if err := writeRows(f, dataSheet, data); err != nil {
		return nil, err
	}

	lastHeader, err := excelize.CoordinatesToCellName(len(cols), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(dataSheet, "A1", lastHeader, bold); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// workbookCell keeps numbers numeric so spreadsheets can sum them
func workbookCell(col Column, row domain.RowRecord) interface{} {
	v, ok := col.Value(row)
	if !ok {
		return ""
	}
	if col.Type == ValueNumber {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	}
	return v
}
