package training

import "time"

// Type identifies a training program.
type Type string

const (
	TypeZeroGravity   Type = "zero_gravity"
	TypeEmergency     Type = "emergency"
	TypeSpacecraft    Type = "spacecraft"
	TypeHealth        Type = "health"
	TypeCommunication Type = "communication"
)

// Level sets the session difficulty.
type Level string

const (
	LevelBasic        Level = "basic"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Program describes one training module of the pre-flight curriculum.
type Program struct {
	Type         Type
	DurationDays int
	Requirements []string
	Equipment    []string
	Description  string
}

// Record is a persisted training outcome for a traveller.
type Record struct {
	ID             string
	UserID         string
	TrainingType   Type
	CompletionDate time.Time
	Score          float64
	Status         string
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SessionResult is the outcome of a simulated training session.
type SessionResult struct {
	UserID       string
	TrainingType Type
	Level        Level
	Date         time.Time
	Score        float64
	Passed       bool
	Feedback     string
	NextSteps    []string
}

// ScheduleModule is one entry of a generated training schedule.
type ScheduleModule struct {
	Type         Type
	StartDate    time.Time
	EndDate      time.Time
	DurationDays int
	Requirements []string
	Equipment    []string
	Description  string
}

// Schedule lays the required modules out ahead of a departure.
type Schedule struct {
	UserID        string
	StartDate     time.Time
	EndDate       time.Time
	DepartureDate time.Time
	Modules       []ScheduleModule
}
