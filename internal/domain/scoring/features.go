package scoring

import (
	"math"

	"github.com/okian/icexg/internal/domain/shot"
)

const maxAngle = 90.0

// Features derives the distance and angle of a shot taken at (x, y).
//
// Distance is measured to the goal-mouth reference point (89, 0). Angle is the
// angle in degrees between the shot line and the centre line, with the goal
// mouth as vertex. Shots from behind the goal line report 90, which scores the
// same as the raw atan2 value since every angle threshold is below 45.
func Features(x, y float64) (distance, angle float64) {
	dx := x - shot.GoalX
	dy := y - shot.GoalY
	distance = math.Hypot(dx, dy)
	angle = math.Atan2(math.Abs(dy), shot.GoalX-x) * 180 / math.Pi
	if angle > maxAngle {
		angle = maxAngle
	}
	return distance, angle
}
