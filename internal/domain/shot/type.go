package shot

import "strings"

// Type enumerates the recognised shot types.
type Type int

// Shot types. TypeUnknown is the fallback for anything unrecognised.
const (
	TypeUnknown Type = iota
	TypeWrist
	TypeSlap
	TypeSnap
	TypeBackhand
	TypeTipIn
	TypeDeflection
)

// Types lists the recognised shot types in display order.
var Types = []Type{TypeWrist, TypeSlap, TypeSnap, TypeBackhand, TypeTipIn, TypeDeflection}

var typeNames = map[Type]string{
	TypeUnknown:    "UNKNOWN",
	TypeWrist:      "WRIST",
	TypeSlap:       "SLAP",
	TypeSnap:       "SNAP",
	TypeBackhand:   "BACKHAND",
	TypeTipIn:      "TIP-IN",
	TypeDeflection: "DEFLECTION",
}

var typeAliases = map[string]Type{
	"WRIST":      TypeWrist,
	"SLAP":       TypeSlap,
	"SNAP":       TypeSnap,
	"BACKHAND":   TypeBackhand,
	"TIP-IN":     TypeTipIn,
	"TIP_IN":     TypeTipIn,
	"TIPIN":      TypeTipIn,
	"TIP":        TypeTipIn,
	"DEFLECTION": TypeDeflection,
	"DEFLECTED":  TypeDeflection,
}

// ParseType maps a shot type string to a Type. Matching is case-insensitive.
// An empty string is a wrist shot; any other unrecognised value is TypeUnknown.
func ParseType(s string) Type {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return TypeWrist
	}
	if t, ok := typeAliases[s]; ok {
		return t
	}
	return TypeUnknown
}

// String returns the canonical upper-case name, e.g. "TIP-IN".
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return typeNames[TypeUnknown]
}

// Known reports whether t is one of the recognised shot types.
func (t Type) Known() bool {
	return t > TypeUnknown && t <= TypeDeflection
}
