package weather

import "time"

// Activity levels reported for solar output and radiation.
const (
	LevelLow      = "low"
	LevelModerate = "moderate"
	LevelHigh     = "high"
	LevelExtreme  = "extreme"
)

// Meteoroid risk levels.
const (
	RiskMinimal  = "minimal"
	RiskLow      = "low"
	RiskModerate = "moderate"
	RiskHigh     = "high"
	RiskSevere   = "severe"
)

// Report is a point-in-time space weather assessment.
type Report struct {
	Timestamp      time.Time `json:"timestamp"`
	SolarActivity  string    `json:"solar_activity"`
	RadiationLevel string    `json:"radiation_level"`
	MeteoroidRisk  string    `json:"meteoroid_risk"`
	Recommendation string    `json:"recommendation"`
	ValidHours     int       `json:"valid_hours"`
}
