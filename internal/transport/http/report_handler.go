package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "reportd/internal/errors"
	"reportd/internal/infrastructure"
)

// Query parameters accepted by the report endpoints
const (
	ParamEntityKind   = "entityKind"
	ParamOutputFormat = "outputFormat"
	ParamFrom         = "from"
	ParamTo           = "to"
)

// ReportHandler serves report exports and summaries
type ReportHandler struct {
	service      ReportServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewReportHandler creates a new report handler with RFC 7807 error handling
func NewReportHandler(service ReportServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReportHandler {
	return &ReportHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "report_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the report routes
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/export", h.Export)
	r.With(render.SetContentType(render.ContentTypeJSON)).Get("/summary", h.Summary)
	return r
}

// Export handles GET /api/reports/export
func (h *ReportHandler) Export(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	result, err := h.service.Export(r.Context(),
		q.Get(ParamEntityKind),
		q.Get(ParamOutputFormat),
		q.Get(ParamFrom),
		q.Get(ParamTo),
	)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	logger := infrastructure.LoggerWithContext(r.Context(), h.logger)
	logger.Debug("export generated",
		slog.String("filename", result.Filename),
		slog.Int("records", result.RecordCount),
		slog.Int("bytes", len(result.Bytes)))

	w.Header().Set("Content-Type", result.MediaType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Bytes)))
	w.Header().Set("X-Record-Count", strconv.Itoa(result.RecordCount))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(result.Bytes); err != nil {
		logger.Warn("failed to write export body", slog.String("error", err.Error()))
	}
}

// Summary handles GET /api/reports/summary
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	summary, err := h.service.Summary(r.Context(),
		q.Get(ParamEntityKind),
		q.Get(ParamFrom),
		q.Get(ParamTo),
	)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, summary)
}
