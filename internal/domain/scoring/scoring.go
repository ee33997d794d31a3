// Package scoring is the expected-goals engine: it turns a shot into a goal
// probability, a quality tier and a danger zone.
//
// Every function here is pure. An Engine is immutable after construction and
// may be shared by any number of goroutines.
package scoring

import (
	"os"

	"github.com/okian/icexg/internal/domain/shot"
)

// Default engine configuration constants.
const (
	defaultModelPath = "models/xg_model_final.pkl"
)

// Assessment is the scored result for one shot. Quality and Danger are derived
// from the numeric fields by the engine and are never set independently.
type Assessment struct {
	ExpectedGoals float64
	BaseXG        float64
	Distance      float64
	Angle         float64
	Zone          Zone
	Quality       Quality
	Danger        Danger
	Factors       []string
}

// Scorer computes assessments for shots.
type Scorer interface {
	// Score assesses a single shot.
	Score(ev shot.Event) Assessment
	// ScoreBatch assesses each shot independently, preserving order.
	ScoreBatch(evs []shot.Event) []Assessment
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithModelPath sets where a trained model would be looked up.
func WithModelPath(path string) Option {
	return func(e *Engine) {
		if path != "" {
			e.modelPath = path
		}
	}
}

// Engine implements Scorer with the fixed zone heuristic.
type Engine struct {
	modelPath   string
	modelLoaded bool
}

// NewEngine creates an engine. The presence of a trained model file is probed
// once here and exposed through ModelLoaded; scoring never depends on it.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		modelPath: defaultModelPath,
	}

	for _, opt := range opts {
		opt(e)
	}

	if _, err := os.Stat(e.modelPath); err == nil {
		e.modelLoaded = true
	}

	return e
}

// ModelLoaded reports whether a trained model file was found at construction.
func (e *Engine) ModelLoaded() bool { return e.modelLoaded }

// ModelPath returns the configured model location.
func (e *Engine) ModelPath() string { return e.modelPath }

// Score assesses a single shot.
func (e *Engine) Score(ev shot.Event) Assessment {
	return Assess(ev)
}

// ScoreBatch assesses each shot with Score, preserving input order.
func (e *Engine) ScoreBatch(evs []shot.Event) []Assessment {
	out := make([]Assessment, len(evs))
	for i, ev := range evs {
		out[i] = e.Score(ev)
	}
	return out
}

// Assess runs the full pipeline for ev.
func Assess(ev shot.Event) Assessment {
	distance, angle := Features(ev.X, ev.Y)
	base, zone := BaseProbability(distance, angle)

	factors := Factors(ev)
	xg := Cap(Adjust(base, factors))

	names := make([]string, len(factors))
	for i, f := range factors {
		names[i] = f.Name
	}

	return Assessment{
		ExpectedGoals: xg,
		BaseXG:        base,
		Distance:      distance,
		Angle:         angle,
		Zone:          zone,
		Quality:       ClassifyQuality(xg),
		Danger:        ClassifyDanger(distance, angle),
		Factors:       names,
	}
}
