package scoring

// Zone names the base-probability bucket a shot falls in.
type Zone string

// Zones ordered from most to least dangerous.
const (
	ZoneCrease   Zone = "crease"
	ZoneSlot     Zone = "slot"
	ZoneHighSlot Zone = "high_slot"
	ZoneMedium   Zone = "medium"
	ZoneLow      Zone = "low"
)

// Zone thresholds in feet and degrees.
const (
	creaseDistance   = 10.0
	slotDistance     = 20.0
	highSlotDistance = 30.0
	mediumDistance   = 40.0
	slotMaxAngle     = 45.0
)

type zoneRule struct {
	zone  Zone
	base  float64
	match func(distance, angle float64) bool
}

// zoneTable is evaluated top to bottom; the first matching rule wins.
var zoneTable = []zoneRule{
	{ZoneCrease, 0.35, func(d, _ float64) bool { return d < creaseDistance }},
	{ZoneSlot, 0.18, func(d, a float64) bool { return d < slotDistance && a < slotMaxAngle }},
	{ZoneHighSlot, 0.08, func(d, _ float64) bool { return d < highSlotDistance }},
	{ZoneMedium, 0.045, func(d, _ float64) bool { return d < mediumDistance }},
}

var lowZone = zoneRule{zone: ZoneLow, base: 0.022}

// BaseProbability buckets a shot by distance and angle into a coarse goal
// probability. NaN features match no rule and fall into the low zone.
func BaseProbability(distance, angle float64) (float64, Zone) {
	for _, r := range zoneTable {
		if r.match(distance, angle) {
			return r.base, r.zone
		}
	}
	return lowZone.base, lowZone.zone
}
