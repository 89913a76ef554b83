package exporter

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"reportd/pkg/contracts/domain"
)

// Metric is a named scalar aggregate shown in a document
type Metric struct {
	Name  string
	Value float64
}

// Breakdown is a named grouped count shown in a document
type Breakdown struct {
	Name    string
	Buckets []domain.GroupBucket
}

// Listing is a secondary row table, such as a related entity listing
type Listing struct {
	Name string
	Kind domain.EntityKind
	Rows []domain.RowRecord
}

// Document is everything a document style export needs
type Document struct {
	Kind        domain.EntityKind
	Rows        []domain.RowRecord
	GeneratedAt time.Time
	Metrics     []Metric
	Breakdowns  []Breakdown
	Listings    []Listing
	// Unavailable names aggregate sections whose data fell back to defaults
	Unavailable []string
}

// Title returns the document heading
func (d Document) Title() string {
	return d.Kind.Title() + " Report"
}

type tableView struct {
	Headers []string
	Rows    [][]string
}

type listingView struct {
	Name  string
	Table tableView
}

type documentView struct {
	Title       string
	GeneratedAt string
	RecordCount int
	Metrics     []Metric
	Breakdowns  []Breakdown
	Listings    []listingView
	Unavailable []string
	Table       tableView
}

var documentTemplate = template.Must(template.New("document").Funcs(template.FuncMap{
	"number": formatFloat,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body{font-family:Helvetica,Arial,sans-serif;margin:32px;color:#1f2933}
h1{font-size:22px;margin-bottom:4px}
h2{font-size:16px;margin-top:28px}
.summary{background:#f5f7fa;border:1px solid #d9e2ec;padding:12px 16px}
.summary p{margin:4px 0}
.unavailable{color:#b44d12}
table{border-collapse:collapse;width:100%;font-size:12px}
th,td{border:1px solid #d9e2ec;padding:6px;text-align:left;vertical-align:top}
th{background:#e4e7eb}
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<section class="summary">
<p>Generated: <time>{{.GeneratedAt}}</time></p>
<p>Records: {{.RecordCount}}</p>
{{- range .Metrics}}
<p>{{.Name}}: {{number .Value}}</p>
{{- end}}
{{- if .Unavailable}}
<p class="unavailable">Unavailable sections:{{range .Unavailable}} {{.}}{{end}}</p>
{{- end}}
</section>
{{- range .Breakdowns}}
<h2>{{.Name}}</h2>
<table>
<thead><tr><th>Group</th><th>Count</th></tr></thead>
<tbody>
{{- range .Buckets}}
<tr><td>{{.Key}}</td><td>{{.Count}}</td></tr>
{{- end}}
</tbody>
</table>
{{- end}}
{{- range .Listings}}
<h2>{{.Name}}</h2>
{{template "table" .Table}}
{{- end}}
<h2>Records</h2>
{{template "table" .Table}}
</body>
</html>
{{define "table"}}<table>
<thead><tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- range .Rows}}
<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
</tbody>
</table>{{end}}`))

// FormatDocument renders doc as a standalone HTML report
func FormatDocument(doc Document) ([]byte, error) {
	table, err := buildTable(doc.Kind, doc.Rows)
	if err != nil {
		return nil, err
	}

	view := documentView{
		Title:       doc.Title(),
		GeneratedAt: formatTimestamp(doc.GeneratedAt),
		RecordCount: len(doc.Rows),
		Metrics:     doc.Metrics,
		Breakdowns:  doc.Breakdowns,
		Unavailable: doc.Unavailable,
		Table:       table,
	}

	for _, l := range doc.Listings {
		lt, err := buildTable(l.Kind, l.Rows)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", l.Name, err)
		}
		view.Listings = append(view.Listings, listingView{Name: l.Name, Table: lt})
	}

	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("failed to render document: %w", err)
	}
	return buf.Bytes(), nil
}

// buildTable resolves display text for every cell through the column table
func buildTable(kind domain.EntityKind, rows []domain.RowRecord) (tableView, error) {
	cols, err := Columns(kind)
	if err != nil {
		return tableView{}, err
	}
	if err := checkKind(rows, kind); err != nil {
		return tableView{}, err
	}

	t := tableView{
		Headers: make([]string, len(cols)),
		Rows:    make([][]string, 0, len(rows)),
	}
	for i, c := range cols {
		t.Headers[i] = c.Label
	}
	for _, row := range rows {
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i], _ = c.Value(row)
		}
		t.Rows = append(t.Rows, cells)
	}
	return t, nil
}
