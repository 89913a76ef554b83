package exporter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// ErrPDFEngine wraps failures of the headless browser
var ErrPDFEngine = errors.New("pdf engine failed")

// PDFRenderer prints HTML documents to PDF with headless Chrome
type PDFRenderer struct {
	execPath string
	timeout  time.Duration
	logger   *slog.Logger
}

// NewPDFRenderer creates a renderer. An empty execPath lets chromedp look
// for a Chrome or Chromium binary on the PATH.
func NewPDFRenderer(execPath string, timeout time.Duration, logger *slog.Logger) *PDFRenderer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFRenderer{
		execPath: execPath,
		timeout:  timeout,
		logger:   logger.With(slog.String("component", "pdf_renderer")),
	}
}

// Render loads html into a blank page and prints it
func (p *PDFRenderer) Render(ctx context.Context, html []byte) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.DisableGPU,
	)
	if p.execPath != "" {
		opts = append(opts, chromedp.ExecPath(p.execPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancel := context.WithTimeout(browserCtx, p.timeout)
	defer cancel()

	start := time.Now()
	var out []byte
	err := chromedp.Run(runCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, string(html)).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				Do(ctx)
			if err != nil {
				return err
			}
			out = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFEngine, err)
	}

	p.logger.DebugContext(ctx, "document printed to pdf",
		slog.Int("html_bytes", len(html)),
		slog.Int("pdf_bytes", len(out)),
		slog.Duration("duration", time.Since(start)))

	return out, nil
}
