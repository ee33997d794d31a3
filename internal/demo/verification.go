package demo

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/okian/icexg/internal/domain/scoring"
)

// maxReportedMismatches bounds the detail in a mismatch error.
const maxReportedMismatches = 5

// Verify checks that remote predictions equal the local assessments, within
// tolerance for numeric fields.
func Verify(scenarios []Scenario, local []scoring.Assessment, remote []Prediction, tolerance float64) error {
	if len(local) != len(remote) {
		return fmt.Errorf("%w: %d local results, %d remote", ErrMismatch, len(local), len(remote))
	}

	var diffs []string
	for i := range local {
		if d := compare(local[i], remote[i], tolerance); d != "" {
			diffs = append(diffs, scenarios[i].Name+": "+d)
		}
	}
	if len(diffs) == 0 {
		return nil
	}

	shown := diffs[:min(len(diffs), maxReportedMismatches)]
	return fmt.Errorf("%w: %d of %d shots differ: %s", ErrMismatch, len(diffs), len(local), strings.Join(shown, "; "))
}

func compare(a scoring.Assessment, p Prediction, tolerance float64) string {
	var out []string
	near := func(name string, want, got float64) {
		if math.Abs(want-got) > tolerance {
			out = append(out, fmt.Sprintf("%s %.6f != %.6f", name, got, want))
		}
	}
	same := func(name, want, got string) {
		if want != got {
			out = append(out, fmt.Sprintf("%s %q != %q", name, got, want))
		}
	}

	near("xg", a.ExpectedGoals, p.ExpectedGoals)
	near("distance", a.Distance, p.Distance)
	near("angle", a.Angle, p.Angle)
	same("quality", string(a.Quality), p.ShotQuality)
	same("danger", string(a.Danger), p.DangerZone)
	same("zone", string(a.Zone), p.Zone)
	if !slices.Equal(a.Factors, p.Factors) && (len(a.Factors) > 0 || len(p.Factors) > 0) {
		out = append(out, fmt.Sprintf("factors %v != %v", p.Factors, a.Factors))
	}
	return strings.Join(out, ", ")
}
