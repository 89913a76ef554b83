package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"reportd/internal/infrastructure"
	"reportd/internal/reporting"
	"reportd/internal/services"
)

// Common error types following RFC 7807
const (
	TypeValidation  = "/errors/validation"
	TypeNotFound    = "/errors/not-found"
	TypeRateLimit   = "/errors/rate-limit"
	TypeInternal    = "/errors/internal"
	TypeServiceDown = "/errors/service-unavailable"
	TypeTimeout     = "/errors/timeout"
)

// Report error types
const (
	TypeInvalidRequest   = "/errors/report/invalid-request"
	TypeInvalidDate      = "/errors/report/invalid-date"
	TypeFormattingFailed = "/errors/report/formatting-failed"
)

// ErrorHandler provides centralized error handling
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
	metrics      *infrastructure.BusinessMetrics
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// WithMetrics counts 5xx responses and recovered panics on m
func (h *ErrorHandler) WithMetrics(m *infrastructure.BusinessMetrics) *ErrorHandler {
	h.metrics = m
	return h
}

// HandleError converts any error to RFC 7807 format and responds
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	reqID := middleware.GetReqID(r.Context())
	problem := h.ErrorToProblem(err, r)
	problem.WithExtension("trace_id", reqID)

	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.LogAttrs(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.Int("status", problem.Status),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	if problem.Status >= http.StatusInternalServerError {
		infrastructure.RecordSystemError(r.Context(), h.metrics, problem.Type)
		if h.includeStack {
			problem.WithExtension("stack", getStackTrace())
		}
	}

	render.Render(w, r, problem)
}

// ErrorToProblem converts an error to RFC 7807 Problem Details
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	var (
		reqErr  *services.RequestError
		dateErr *reporting.DateError
		apiErr  *APIError
	)

	switch {
	case errors.As(err, &reqErr):
		return NewProblemDetails(
			http.StatusBadRequest,
			TypeInvalidRequest,
			"Invalid Report Request",
			err.Error(),
			r.URL.Path,
		).WithExtension("errors", reqErr.Violations)

	case errors.Is(err, services.ErrInvalidRequest):
		return NewProblemDetails(
			http.StatusBadRequest,
			TypeInvalidRequest,
			"Invalid Report Request",
			err.Error(),
			r.URL.Path,
		)

	case errors.As(err, &dateErr):
		return NewProblemDetails(
			http.StatusBadRequest,
			TypeInvalidDate,
			"Invalid Date",
			dateErr.Error(),
			r.URL.Path,
		).WithExtension("errors", []services.FieldViolation{{
			Field:  dateErr.Bound,
			Reason: "must be a calendar day in YYYY-MM-DD form",
		}})

	case errors.Is(err, services.ErrInvalidDate):
		return NewProblemDetails(
			http.StatusBadRequest,
			TypeInvalidDate,
			"Invalid Date",
			err.Error(),
			r.URL.Path,
		)

	case errors.Is(err, services.ErrFormattingFailed):
		return NewProblemDetails(
			http.StatusInternalServerError,
			TypeFormattingFailed,
			"Report Formatting Failed",
			"The report could not be serialized in the requested format",
			r.URL.Path,
		)

	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		return NewProblemDetails(
			http.StatusGatewayTimeout,
			TypeTimeout,
			"Request Timeout",
			"The request took too long to process and was cancelled",
			r.URL.Path,
		)

	case errors.As(err, &apiErr):
		return h.apiErrorToProblem(apiErr, r)

	default:
		return NewProblemDetails(
			http.StatusInternalServerError,
			TypeInternal,
			"Internal Server Error",
			"An unexpected error occurred while processing your request",
			r.URL.Path,
		)
	}
}

// apiErrorToProblem converts APIError to ProblemDetails
func (h *ErrorHandler) apiErrorToProblem(apiErr *APIError, r *http.Request) *ProblemDetails {
	problemType := TypeInternal
	switch apiErr.ErrorCode {
	case "VALIDATION_FAILED":
		problemType = TypeValidation
	case "NOT_FOUND":
		problemType = TypeNotFound
	case "RATE_LIMIT_EXCEEDED":
		problemType = TypeRateLimit
	case "SERVICE_UNAVAILABLE":
		problemType = TypeServiceDown
	}

	problem := NewProblemDetails(
		apiErr.StatusCode,
		problemType,
		http.StatusText(apiErr.StatusCode),
		apiErr.Message,
		r.URL.Path,
	).WithExtension("error_code", apiErr.ErrorCode)

	if apiErr.Details != nil {
		problem.WithExtension("details", apiErr.Details)
	}

	return problem
}

// HandlePanic recovers from panics and returns RFC 7807 error
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.ErrorContext(r.Context(), "panic recovered",
		slog.Any("panic", recovered),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("stack", string(debug.Stack())),
	)

	infrastructure.RecordSystemError(r.Context(), h.metrics, "panic")

	problem := h.apiErrorToProblem(ErrPanic(recovered), r).WithExtension("trace_id", reqID)
	if !h.includeStack {
		delete(problem.Extensions, "details")
	} else {
		problem.WithExtension("stack", getStackTrace())
	}

	render.Render(w, r, problem)
}

// NotFound returns a standard 404 error
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusNotFound,
		TypeNotFound,
		"Not Found",
		"The requested resource was not found",
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))

	render.Render(w, r, problem)
}

// MethodNotAllowed returns a standard 405 error
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusMethodNotAllowed,
		TypeInternal,
		"Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method),
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))

	render.Render(w, r, problem)
}

// getStackTrace returns the current stack trace
func getStackTrace() string {
	buf := make([]byte, 1024*8)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}
