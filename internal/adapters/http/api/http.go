// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/okian/icexg/internal/app"
	"github.com/okian/icexg/internal/domain/dedupe"
	"github.com/okian/icexg/internal/domain/scoring"
	"github.com/okian/icexg/internal/domain/shot"
	"github.com/okian/icexg/pkg/logger"
	"golang.org/x/time/rate"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ModelLoaded() bool
	ModelInfo() service.ModelInfo

	// Predict scores one shot.
	Predict(ctx context.Context, ev shot.Event) (scoring.Assessment, error)
	// PredictBatch scores shots in order; it fails as a whole.
	PredictBatch(ctx context.Context, evs []shot.Event) (service.BatchResult, error)
	MaxBatchSize() int

	// NewDeduper returns a fresh shot ID tracker for one live stream.
	NewDeduper() dedupe.Deduper
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps Dependencies

	healthHandler    *HealthHandler
	predictHandler   *PredictHandler
	modelInfoHandler *ModelInfoHandler
	streamHandler    *StreamHandler

	maxBodyBytes   int64
	rateLimitRPS   float64
	rateLimitBurst int
	corsOrigin     string
	limiter        *rate.Limiter

	logger logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:         deps,
		maxBodyBytes: defaultMaxBodyBytes,
		corsOrigin:   defaultCORSOrigin,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("api")
	}
	if s.rateLimitRPS > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(s.rateLimitRPS), s.rateLimitBurst)
	}

	s.healthHandler = NewHealthHandler(deps)
	s.predictHandler = NewPredictHandler(deps, s.maxBodyBytes)
	s.modelInfoHandler = NewModelInfoHandler(deps)
	s.streamHandler = NewStreamHandler(deps, s.rateLimitRPS, s.rateLimitBurst, s.logger.Named("stream"))
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/health", s.route("health", s.healthHandler.HandleHealth, false))
	mux.HandleFunc("/model/info", s.route("model_info", s.modelInfoHandler.HandleModelInfo, false))
	mux.HandleFunc("/predict/expected-goals", s.route("predict", s.predictHandler.HandlePredict, true))
	mux.HandleFunc("/predict/batch", s.route("predict_batch", s.predictHandler.HandleBatch, true))
	mux.HandleFunc("/ws/game/{gameId}", s.route("stream", s.streamHandler.HandleStream, false))
	mux.Handle("/metrics", MetricsHandler())
}

// route applies the middleware chain shared by every business endpoint.
func (s *Server) route(endpoint string, h http.HandlerFunc, limited bool) http.HandlerFunc {
	if limited && s.limiter != nil {
		h = RateLimitMiddleware(h, s.limiter, endpoint)
	}
	h = MetricsMiddleware(h, endpoint)
	h = RequestIDMiddleware(h, s.logger)
	return CORSMiddleware(h, s.corsOrigin)
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

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
