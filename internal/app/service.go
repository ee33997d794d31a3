// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	workerpool "github.com/okian/icexg/internal/adapters/mq/worker"
	"github.com/okian/icexg/internal/domain/dedupe"
	"github.com/okian/icexg/internal/domain/scoring"
	"github.com/okian/icexg/internal/domain/shot"
	"github.com/okian/icexg/pkg/logger"
	"github.com/okian/icexg/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultMaxBatchSize = 10_000
	defaultDedupeSize   = 5_000
	engineName          = "zone-heuristic"
	modelVersion        = "1.0.0"
)

// ModelInfo describes the scoring model served by the service.
type ModelInfo struct {
	ModelType       string   `json:"model_type"`
	Accuracy        float64  `json:"accuracy"`
	AUCScore        float64  `json:"auc_score"`
	NFeatures       int      `json:"n_features"`
	TrainingSamples int      `json:"training_samples"`
	ShotTypes       []string `json:"shot_types"`
	Version         string   `json:"version"`
	Engine          string   `json:"engine"`
	ModelLoaded     bool     `json:"model_loaded"`
}

// BatchResult is the outcome of scoring a batch of shots.
type BatchResult struct {
	Assessments []scoring.Assessment
	TotalXG     float64
	AverageXG   float64
}

// Service implements the API dependencies for the expected-goals service.
type Service struct {
	mu sync.RWMutex

	// Core components
	engine     *scoring.Engine
	workerPool *workerpool.Pool

	// Configuration
	modelPath    string
	workerCount  int
	maxBatchSize int
	dedupeSize   int

	// State
	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithModelPath sets where the trained model file is probed.
func WithModelPath(path string) Option {
	return func(s *Service) {
		s.modelPath = path
	}
}

// WithWorkerCount sets the number of batch scoring goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithMaxBatchSize caps the number of shots accepted per batch.
func WithMaxBatchSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.maxBatchSize = size
		}
	}
}

// WithDedupeSize sets how many shot IDs each live stream remembers.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size >= 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:  runtime.NumCPU(),
		maxBatchSize: defaultMaxBatchSize,
		dedupeSize:   defaultDedupeSize,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start builds the engine and starts the batch worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.engine = scoring.NewEngine(scoring.WithModelPath(s.modelPath))
	s.workerPool = workerpool.NewPool(s.workerCount, s.engine,
		workerpool.WithLogger(s.logger.Named("worker-pool")),
	)
	s.workerPool.Start(ctx)
	metrics.SetModelLoaded(s.engine.ModelLoaded())

	s.started = true
	s.logger.Info(ctx, "expected goals service started",
		logger.Int("workers", s.workerPool.Size()),
		logger.Int("maxBatchSize", s.maxBatchSize),
		logger.String("modelPath", s.engine.ModelPath()),
		logger.Bool("modelLoaded", s.engine.ModelLoaded()),
	)
	return nil
}

// Stop shuts down the worker pool. It is safe to call more than once.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.workerPool.Stop()
	s.started = false
	s.logger.Info(context.Background(), "expected goals service stopped")
}

// ModelLoaded reports whether a trained model file was present at start.
func (s *Service) ModelLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine != nil && s.engine.ModelLoaded()
}

// MaxBatchSize returns the largest accepted batch.
func (s *Service) MaxBatchSize() int { return s.maxBatchSize }

// ModelInfo returns static metadata about the model.
func (s *Service) ModelInfo() ModelInfo {
	types := make([]string, len(shot.Types))
	for i, t := range shot.Types {
		types[i] = t.String()
	}
	return ModelInfo{
		ModelType:       "Random Forest",
		Accuracy:        0.9228,
		AUCScore:        0.9228,
		NFeatures:       43,
		TrainingSamples: 313244,
		ShotTypes:       types,
		Version:         modelVersion,
		Engine:          engineName,
		ModelLoaded:     s.ModelLoaded(),
	}
}

// Predict scores a single shot.
func (s *Service) Predict(ctx context.Context, ev shot.Event) (scoring.Assessment, error) {
	engine, _, err := s.components()
	if err != nil {
		return scoring.Assessment{}, err
	}

	a := engine.Score(ev)
	recordScore(ev, a)
	s.logger.Debug(ctx, "shot scored",
		logger.Float64("x", ev.X),
		logger.Float64("y", ev.Y),
		logger.Float64("xg", a.ExpectedGoals),
		logger.String("zone", string(a.Zone)),
	)
	return a, nil
}

// PredictBatch scores every shot in evs, preserving order. The batch either
// succeeds entirely or fails.
func (s *Service) PredictBatch(ctx context.Context, evs []shot.Event) (BatchResult, error) {
	if len(evs) > s.maxBatchSize {
		return BatchResult{}, fmt.Errorf("%d shots exceeds limit of %d: %w", len(evs), s.maxBatchSize, ErrBatchTooLarge)
	}

	_, pool, err := s.components()
	if err != nil {
		return BatchResult{}, err
	}

	assessments, err := pool.ScoreBatch(ctx, evs)
	if err != nil {
		return BatchResult{}, err
	}

	res := BatchResult{Assessments: assessments}
	for i, a := range assessments {
		res.TotalXG += a.ExpectedGoals
		recordScore(evs[i], a)
	}
	if len(assessments) > 0 {
		res.AverageXG = res.TotalXG / float64(len(assessments))
	}
	metrics.RecordBatchSize(len(evs))

	s.logger.Debug(ctx, "batch scored",
		logger.Int("count", len(evs)),
		logger.Float64("totalXG", res.TotalXG),
	)
	return res, nil
}

// NewDeduper returns a shot ID tracker sized for one live stream. A dedupe
// size of zero remembers every ID.
func (s *Service) NewDeduper() dedupe.Deduper {
	return dedupe.New(dedupe.WithMaxSize(s.dedupeSize))
}

func recordScore(ev shot.Event, a scoring.Assessment) {
	metrics.RecordPrediction(string(a.Quality), string(a.Danger), a.ExpectedGoals)
	if !ev.Type.Known() {
		metrics.RecordUnknownShotType()
	}
}

func (s *Service) components() (*scoring.Engine, *workerpool.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, ErrNotStarted
	}
	return s.engine, s.workerPool, nil
}
