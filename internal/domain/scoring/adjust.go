package scoring

import (
	"strings"

	"github.com/okian/icexg/internal/domain/shot"
)

// Situational multipliers.
const (
	reboundMultiplier     = 1.25
	rushMultiplier        = 1.15
	powerPlayMultiplier   = 1.10
	penaltyKillMultiplier = 0.85
	neutralMultiplier     = 1.0
)

var shotTypeMultipliers = map[shot.Type]float64{
	shot.TypeWrist:      1.0,
	shot.TypeSlap:       0.8,
	shot.TypeSnap:       0.95,
	shot.TypeBackhand:   1.1,
	shot.TypeTipIn:      1.3,
	shot.TypeDeflection: 1.2,
}

// Factor is a single named multiplicative adjustment.
type Factor struct {
	Name  string
	Value float64
}

// ShotTypeMultiplier returns the multiplier for t; unknown types are neutral.
func ShotTypeMultiplier(t shot.Type) float64 {
	if m, ok := shotTypeMultipliers[t]; ok {
		return m
	}
	return neutralMultiplier
}

// StrengthMultiplier returns the multiplier for s; even and unknown are neutral.
func StrengthMultiplier(s shot.Strength) float64 {
	switch s {
	case shot.StrengthPowerPlay:
		return powerPlayMultiplier
	case shot.StrengthPenaltyKill:
		return penaltyKillMultiplier
	default:
		return neutralMultiplier
	}
}

// Factors lists the adjustments that apply to ev. Neutral multipliers are
// omitted. The factors commute, so order carries no meaning.
func Factors(ev shot.Event) []Factor {
	var out []Factor
	if ev.Rebound {
		out = append(out, Factor{Name: "rebound", Value: reboundMultiplier})
	}
	if ev.Rush {
		out = append(out, Factor{Name: "rush", Value: rushMultiplier})
	}
	if m := ShotTypeMultiplier(ev.Type); m != neutralMultiplier {
		out = append(out, Factor{Name: "shot_type:" + strings.ToLower(ev.Type.String()), Value: m})
	}
	if m := StrengthMultiplier(ev.Strength); m != neutralMultiplier {
		out = append(out, Factor{Name: "strength:" + strings.ToLower(ev.Strength.String()), Value: m})
	}
	return out
}

// Adjust applies factors to base and returns the uncapped probability.
func Adjust(base float64, factors []Factor) float64 {
	xg := base
	for _, f := range factors {
		xg *= f.Value
	}
	return xg
}
