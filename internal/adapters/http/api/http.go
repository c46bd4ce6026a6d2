// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	service "github.com/okian/skinsight/internal/app"
	"github.com/okian/skinsight/internal/domain/model"
	"github.com/okian/skinsight/pkg/logger"
	"github.com/okian/skinsight/pkg/metrics"
)

const (
	defaultMaxUploadBytes = 5 * 1024 * 1024

	// HeaderAPIKey carries the caller credential.
	HeaderAPIKey = "X-API-Key"
	// FormFieldFile is the multipart field holding the upload.
	FormFieldFile = "file"
)

// Service is the business API the handlers call into.
type Service interface {
	Authorize(ctx context.Context, credential string) error
	Upload(ctx context.Context, in service.UploadInput) (string, error)
	Analyze(ctx context.Context, in service.AnalyzeInput) (model.AnalysisResult, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	svc            Service
	stats          StatsProvider
	validate       *validator.Validate
	maxUploadBytes int64
	corsOrigins    []string
	mounts         []func(chi.Router)
	logger         logger.Logger
}

// NewServer creates a new API server backed by svc.
func NewServer(svc Service, stats StatsProvider, opts ...Option) *Server {
	s := &Server{
		svc:            svc,
		stats:          stats,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
		maxUploadBytes: defaultMaxUploadBytes,
		corsOrigins:    []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("http")
	}
	return s
}

// Handler builds the router with every route and middleware attached.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", HeaderAPIKey},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(LoggingMiddleware(s.logger))
	r.Use(MetricsMiddleware)

	r.Get("/", s.handleRoot)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	r.Get("/stats", NewStatsHandler(s.stats).HandleStats)
	r.Post("/upload", s.handleUpload)
	r.Post("/analyze", s.handleAnalyze)

	for _, mount := range s.mounts {
		mount(r)
	}
	return r
}

type statusResponse struct {
	Service string `json:"service,omitempty"`
	Status  string `json:"status"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Service: "Image Analysis API", Status: "running"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
