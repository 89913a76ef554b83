package exporter

import (
	"context"
	"fmt"

	"reportd/pkg/contracts/domain"
)

// Media types of the produced outputs
const (
	MediaTypeCSV  = "text/csv; charset=utf-8"
	MediaTypeHTML = "text/html; charset=utf-8"
	MediaTypePDF  = "application/pdf"
	MediaTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Document engines selectable for the document output format
const (
	EngineHTML = "html"
	EnginePDF  = "pdf"
)

// Output is a serialized export body
type Output struct {
	Bytes     []byte
	MediaType string
	Extension string
}

// Formatter serializes a Document
type Formatter interface {
	Format(ctx context.Context, doc Document) (Output, error)
}

// TabularFormatter writes the row listing as comma separated text
type TabularFormatter struct{}

// Format implements Formatter
func (TabularFormatter) Format(_ context.Context, doc Document) (Output, error) {
	b, err := FormatTabular(doc.Rows, doc.Kind)
	if err != nil {
		return Output{}, err
	}
	return Output{Bytes: b, MediaType: MediaTypeCSV, Extension: "csv"}, nil
}

// DocumentFormatter writes an HTML report, printed to PDF when a renderer is set
type DocumentFormatter struct {
	PDF *PDFRenderer
}

// Format implements Formatter
func (f DocumentFormatter) Format(ctx context.Context, doc Document) (Output, error) {
	html, err := FormatDocument(doc)
	if err != nil {
		return Output{}, err
	}
	if f.PDF == nil {
		return Output{Bytes: html, MediaType: MediaTypeHTML, Extension: "html"}, nil
	}
	pdf, err := f.PDF.Render(ctx, html)
	if err != nil {
		return Output{}, err
	}
	return Output{Bytes: pdf, MediaType: MediaTypePDF, Extension: "pdf"}, nil
}

// WorkbookFormatter writes an xlsx workbook
type WorkbookFormatter struct{}

// Format implements Formatter
func (WorkbookFormatter) Format(_ context.Context, doc Document) (Output, error) {
	b, err := FormatWorkbook(doc)
	if err != nil {
		return Output{}, err
	}
	return Output{Bytes: b, MediaType: MediaTypeXLSX, Extension: "xlsx"}, nil
}

// Registry maps output formats to formatters
type Registry struct {
	formatters map[domain.OutputFormat]Formatter
}

// NewRegistry creates the standard formatters. pdf may be nil, in which case
// documents are delivered as HTML.
func NewRegistry(pdf *PDFRenderer) *Registry {
	return &Registry{
		formatters: map[domain.OutputFormat]Formatter{
			domain.OutputFormatTabular:  TabularFormatter{},
			domain.OutputFormatDocument: DocumentFormatter{PDF: pdf},
			domain.OutputFormatWorkbook: WorkbookFormatter{},
		},
	}
}

// Register replaces the formatter used for format
func (r *Registry) Register(format domain.OutputFormat, f Formatter) {
	r.formatters[format] = f
}

// Get returns the formatter for format
func (r *Registry) Get(format domain.OutputFormat) (Formatter, error) {
	f, ok := r.formatters[format]
	if !ok {
		return nil, fmt.Errorf("no formatter for output format %q", format)
	}
	return f, nil
}
