package health

import "time"

// Record captures a traveller's pre-flight health check.
type Record struct {
	ID               string
	UserID           string
	CheckDate        time.Time
	BloodPressureSys int
	BloodPressureDia int
	HeartRate        int
	Weight           float64
	Height           float64
	Notes            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Evaluation is the outcome of checking a record against the flight
// requirements.
type Evaluation struct {
	Passed  bool
	Reasons []string
}
