// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/keunyop/rubricheck/internal/adapters/extract"
	"github.com/keunyop/rubricheck/internal/adapters/llm"
	service "github.com/keunyop/rubricheck/internal/app"
	"github.com/keunyop/rubricheck/internal/domain/llmjson"
	"github.com/keunyop/rubricheck/internal/domain/model"
	"github.com/keunyop/rubricheck/internal/domain/reconcile"
	"github.com/keunyop/rubricheck/internal/domain/report"
	"github.com/keunyop/rubricheck/internal/domain/schema"
	"github.com/keunyop/rubricheck/internal/domain/scoring"
	"github.com/keunyop/rubricheck/internal/domain/types"
	"github.com/keunyop/rubricheck/pkg/metrics"
)

// Server configuration constants.
const (
	defaultMaxUploadBytes = 5 << 20

	// requestTimeout bounds a whole request including both model calls.
	requestTimeout = 150 * time.Second

	corsMaxAgeSeconds = 300
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Evaluate runs the grading pipeline for one request.
	Evaluate(ctx context.Context, req model.Request) (types.FinalReport, error)
}

// Server wires HTTP routes for the grading API.
type Server struct {
	maxUploadBytes int64

	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	evaluateHandler *EvaluateHandler
	rootHandler     *RootHandler
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMaxUploadBytes sets the per-request upload cap.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		maxUploadBytes: defaultMaxUploadBytes,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.evaluateHandler = NewEvaluateHandler(deps, s.maxUploadBytes)
	s.rootHandler = NewRootHandler()

	return s
}

// Register attaches middleware and all HTTP routes to r.
func (s *Server) Register(ctx context.Context, r chi.Router) {
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         corsMaxAgeSeconds,
	}))

	r.Get("/", MetricsMiddleware(s.rootHandler.HandleRoot, "root"))
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	r.Post("/api/evaluate", MetricsMiddleware(s.evaluateHandler.HandleEvaluate, "evaluate"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	writeFieldError(w, status, code, "", err)
}

func writeFieldError(w http.ResponseWriter, status int, code, field string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg, Field: field})
}

// evaluationError maps a pipeline failure to a status and error code.
// Everything downstream of a validated evaluation collapses into
// evaluation_failed: the caller cannot act on the distinction.
func evaluationError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrMissingInput):
		return http.StatusBadRequest, "missing_input"
	case errors.Is(err, llm.ErrUnavailable):
		return http.StatusServiceUnavailable, "model_unavailable"
	case errors.Is(err, llmjson.ErrUnparseable):
		return http.StatusBadGateway, "model_output_unparseable"
	case errors.Is(err, schema.ErrRubricInvalid):
		return http.StatusUnprocessableEntity, "rubric_invalid"
	case errors.Is(err, schema.ErrEvaluationInvalid),
		errors.Is(err, reconcile.ErrMismatch),
		errors.Is(err, scoring.ErrDegenerateTotal),
		errors.Is(err, report.ErrTooFewImprovements):
		return http.StatusBadGateway, "evaluation_failed"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// sourceError maps a failure resolving one input field to a status and
// error code.
func sourceError(err error) (int, string) {
	switch {
	case errors.Is(err, extract.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType, "unsupported_file_type"
	case errors.Is(err, extract.ErrExtraction):
		return http.StatusUnprocessableEntity, "text_extraction_failed"
	default:
		return http.StatusBadRequest, "missing_input"
	}
}
