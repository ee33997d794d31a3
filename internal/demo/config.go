package demo

import (
	"time"

	"github.com/okian/icexg/internal/domain/shot"
)

// Config holds configuration for a demo run.
type Config struct {
	BaseURL      string        // server to verify against; empty runs locally only
	ScenarioFile string        // YAML scenarios; empty uses the built-in set
	Random       int           // extra random shots appended to the scenarios
	Seed         uint64        // seed for random shots
	BatchSize    int           // shots per remote batch request
	RPS          float64       // remote request rate; zero is unlimited
	Timeout      time.Duration // HTTP request timeout
	Tolerance    float64       // allowed absolute difference per numeric field
	Verbose      bool          // print every row, not only the named scenarios
}

// Scenario is a named shot.
type Scenario struct {
	Name     string  `yaml:"name" json:"-"`
	X        float64 `yaml:"x" json:"xCord"`
	Y        float64 `yaml:"y" json:"yCord"`
	ShotType string  `yaml:"shot_type" json:"shotType,omitempty"`
	Rebound  bool    `yaml:"rebound" json:"shotRebound"`
	Rush     bool    `yaml:"rush" json:"shotRush"`
	Strength string  `yaml:"strength" json:"strengthState,omitempty"`
}

// Event converts the scenario to a shot with the usual defaults.
func (s Scenario) Event() shot.Event {
	ev := shot.New(s.X, s.Y, s.ShotType, s.Rebound, s.Rush, s.Strength)
	ev.ID = s.Name
	return ev
}

// Prediction is one row of a batch response.
type Prediction struct {
	ExpectedGoals float64  `json:"expected_goals"`
	ShotQuality   string   `json:"shot_quality"`
	DangerZone    string   `json:"danger_zone"`
	Distance      float64  `json:"distance"`
	Angle         float64  `json:"angle"`
	Zone          string   `json:"zone"`
	Factors       []string `json:"factors"`
}

// BatchResponse mirrors POST /predict/batch.
type BatchResponse struct {
	Predictions []Prediction `json:"predictions"`
	Count       int          `json:"count"`
	TotalXG     float64      `json:"total_xg"`
	AverageXG   float64      `json:"average_xg"`
}
