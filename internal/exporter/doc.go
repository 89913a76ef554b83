// Package exporter serializes aggregated report data.
//
// The package contains one column table and several formatters that read it:
//
// Columns: the fixed, ordered column list of each entity kind. Every
// formatter resolves cells through this table so the serializations cannot
// drift apart.
//
// FormatTabular: comma separated text. Text columns are wrapped in double
// quotes, numbers, statuses, booleans (Yes/No) and dates (YYYY-MM-DD) are
// written bare, and missing values render as "".
//
// FormatDocument: an HTML report with a title, a summary block (generation
// time and record count), aggregate sections and the row table. Values are
// escaped by html/template.
//
// PDFRenderer: prints the HTML document to PDF through headless Chrome.
//
// FormatWorkbook: an xlsx workbook with a summary sheet and a data sheet.
//
// Example usage:
//
//	body, err := exporter.FormatTabular(rows, domain.EntityKindTransaction)
//
//	html, err := exporter.FormatDocument(exporter.Document{
//		Kind:        domain.EntityKindTransaction,
//		Rows:        rows,
//		GeneratedAt: time.Now(),
//	})
package exporter
