// Package shot contains the shot value objects passed between layers.
package shot

// Goal-mouth reference point in rink coordinates. X runs -100..100 along the
// rink, Y runs -42.5..42.5 across it.
const (
	GoalX = 89.0
	GoalY = 0.0
)

// Event represents a single shot attempt.
// It is a plain value: build it per request and pass it by value.
type Event struct {
	ID       string   // optional caller-supplied identifier, e.g. a live feed shotId
	X        float64  // rink x coordinate
	Y        float64  // rink y coordinate
	Type     Type     // shot type, TypeUnknown scores neutrally
	Rebound  bool     // second shot off a loose puck
	Rush     bool     // shot taken off a fast transition
	Strength Strength // game strength state, StrengthUnknown scores neutrally
}

// New builds an Event from raw categorical strings, applying the documented
// defaults for empty values.
func New(x, y float64, shotType string, rebound, rush bool, strength string) Event {
	return Event{
		X:        x,
		Y:        y,
		Type:     ParseType(shotType),
		Rebound:  rebound,
		Rush:     rush,
		Strength: ParseStrength(strength),
	}
}
