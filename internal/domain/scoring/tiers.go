package scoring

// Maximum plausible goal probability for a single shot.
const maxExpectedGoals = 0.95

// Quality is the shot quality tier derived from the final probability.
type Quality string

// Quality tiers, best first.
const (
	QualityExcellent Quality = "Excellent"
	QualityGood      Quality = "Good"
	QualityAverage   Quality = "Average"
	QualityPoor      Quality = "Poor"
)

// Danger is the danger zone derived from shot geometry alone.
type Danger string

// Danger zones, most dangerous first.
const (
	DangerHigh   Danger = "High Danger"
	DangerMedium Danger = "Medium Danger"
	DangerLow    Danger = "Low Danger"
)

// Cap clamps xg into [0, maxExpectedGoals]. NaN maps to 0.
func Cap(xg float64) float64 {
	if !(xg > 0) {
		return 0
	}
	if xg > maxExpectedGoals {
		return maxExpectedGoals
	}
	return xg
}

// ClassifyQuality maps a final probability to a quality tier.
func ClassifyQuality(xg float64) Quality {
	switch {
	case xg > 0.20:
		return QualityExcellent
	case xg > 0.12:
		return QualityGood
	case xg > 0.08:
		return QualityAverage
	default:
		return QualityPoor
	}
}

// ClassifyDanger maps raw shot geometry to a danger zone.
func ClassifyDanger(distance, angle float64) Danger {
	switch {
	case distance < slotDistance && angle < slotMaxAngle:
		return DangerHigh
	case distance < mediumDistance:
		return DangerMedium
	default:
		return DangerLow
	}
}
