package demo

import (
	_ "embed"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"os"
	"strconv"

	"github.com/okian/icexg/internal/domain/shot"
	"gopkg.in/yaml.v3"
)

// Rink bounds for random shots.
const (
	rinkHalfLength = 100.0
	rinkHalfWidth  = 42.5
)

//go:embed scenarios.yaml
var defaultScenarios []byte

type scenarioFile struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// DefaultScenarios returns the built-in reference shots.
func DefaultScenarios() []Scenario {
	s, err := ParseScenarios(defaultScenarios)
	if err != nil {
		panic("demo: built-in scenarios are invalid: " + err.Error())
	}
	return s
}

// LoadScenarios reads scenarios from a YAML file.
func LoadScenarios(path string) ([]Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenarios: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read scenarios: %w", err)
	}
	return ParseScenarios(data)
}

// ParseScenarios decodes a YAML document with a top-level scenarios list.
func ParseScenarios(data []byte) ([]Scenario, error) {
	var doc scenarioFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScenario, err)
	}
	for i, s := range doc.Scenarios {
		if s.Name == "" {
			return nil, fmt.Errorf("%w: scenario %d has no name", ErrInvalidScenario, i)
		}
		if math.IsNaN(s.X) || math.IsInf(s.X, 0) || math.IsNaN(s.Y) || math.IsInf(s.Y, 0) {
			return nil, fmt.Errorf("%w: %s has non-finite coordinates", ErrInvalidScenario, s.Name)
		}
	}
	return doc.Scenarios, nil
}

// RandomScenarios returns n shots spread over the attacking half of the rink.
// The same seed always yields the same shots.
func RandomScenarios(n int, seed uint64) []Scenario {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	strengths := []string{shot.StrengthEven.String(), shot.StrengthPowerPlay.String(), shot.StrengthPenaltyKill.String()}

	out := make([]Scenario, n)
	for i := range out {
		out[i] = Scenario{
			Name:     "random-" + strconv.Itoa(i+1),
			X:        r.Float64() * rinkHalfLength,
			Y:        (r.Float64()*2 - 1) * rinkHalfWidth,
			ShotType: shot.Types[r.IntN(len(shot.Types))].String(),
			Rebound:  r.IntN(5) == 0,
			Rush:     r.IntN(4) == 0,
			Strength: strengths[r.IntN(len(strengths))],
		}
	}
	return out
}
