package shot

import "strings"

// Strength is the numeric parity of the two teams on ice.
type Strength int

// Strength states. StrengthUnknown is treated like even strength.
const (
	StrengthUnknown Strength = iota
	StrengthEven
	StrengthPowerPlay
	StrengthPenaltyKill
)

var strengthNames = map[Strength]string{
	StrengthUnknown:     "UNKNOWN",
	StrengthEven:        "5v5",
	StrengthPowerPlay:   "PP",
	StrengthPenaltyKill: "PK",
}

var strengthAliases = map[string]Strength{
	"5V5":  StrengthEven,
	"EV":   StrengthEven,
	"EVEN": StrengthEven,
	"PP":   StrengthPowerPlay,
	"PK":   StrengthPenaltyKill,
	"SH":   StrengthPenaltyKill,
}

// ParseStrength maps a strength state string to a Strength (case-insensitive).
// Empty means even strength; unrecognised values are StrengthUnknown.
func ParseStrength(s string) Strength {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return StrengthEven
	}
	if st, ok := strengthAliases[s]; ok {
		return st
	}
	return StrengthUnknown
}

func (s Strength) String() string {
	if name, ok := strengthNames[s]; ok {
		return name
	}
	return strengthNames[StrengthUnknown]
}
