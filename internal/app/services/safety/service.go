// Package safety runs pre-flight health screening and the mandatory training
// curriculum. Training sessions are simulated; scores come from a seeded
// generator so outcomes are reproducible in tests.
package safety

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/nekoneko-space/travel-platform/internal/app/domain/health"
	"github.com/nekoneko-space/travel-platform/internal/app/domain/training"
	"github.com/nekoneko-space/travel-platform/internal/app/storage"
	"github.com/nekoneko-space/travel-platform/pkg/logger"
)

// Flight health requirements.
const (
	maxSystolicBP  = 140
	maxDiastolicBP = 90
)

// Training session constants.
const (
	passingScore = 80
	minBaseScore = 60
	maxBaseScore = 100

	// Days of margin around the training block.
	prepMarginDays   = 14
	finishBeforeDays = 7
	restDays         = 1
)

var levelMultipliers = map[training.Level]float64{
	training.LevelBasic:        1.0,
	training.LevelIntermediate: 0.9,
	training.LevelAdvanced:     0.8,
}

// curriculum lists the required modules in the order they are taken.
var curriculum = []training.Program{
	{
		Type:         training.TypeZeroGravity,
		DurationDays: 5,
		Requirements: []string{"medical clearance", "swimming proficiency"},
		Equipment:    []string{"flight suit", "parabolic aircraft"},
		Description:  "Adaptation to weightlessness through parabolic flight sessions.",
	},
	{
		Type:         training.TypeEmergency,
		DurationDays: 3,
		Requirements: []string{"zero gravity training"},
		Equipment:    []string{"pressure suit", "escape pod mockup"},
		Description:  "Cabin depressurization, fire response and evacuation drills.",
	},
	{
		Type:         training.TypeSpacecraft,
		DurationDays: 7,
		Requirements: []string{"emergency training"},
		Equipment:    []string{"full-motion simulator"},
		Description:  "Spacecraft systems, docking procedures and manual overrides.",
	},
	{
		Type:         training.TypeHealth,
		DurationDays: 2,
		Requirements: []string{},
		Equipment:    []string{"biometric monitors"},
		Description:  "In-flight health monitoring and self-assessment.",
	},
	{
		Type:         training.TypeCommunication,
		DurationDays: 1,
		Requirements: []string{},
		Equipment:    []string{"radio console"},
		Description:  "Ground control protocols and emergency phraseology.",
	},
}

// Service runs health checks and training.
type Service struct {
	healthStore   storage.HealthStore
	trainingStore storage.TrainingStore
	log           *logger.Logger

	rng *rand.Rand
	now func() time.Time
}

// New constructs a safety service seeded from the current time.
func New(healthStore storage.HealthStore, trainingStore storage.TrainingStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("safety")
	}
	return &Service{
		healthStore:   healthStore,
		trainingStore: trainingStore,
		log:           log,
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
		now:           time.Now,
	}
}

// WithSeed replaces the score generator with a deterministic one.
func (s *Service) WithSeed(seed int64) *Service {
	s.rng = rand.New(rand.NewSource(seed))
	return s
}

// Programs returns the training curriculum in order.
func Programs() []training.Program {
	out := make([]training.Program, len(curriculum))
	copy(out, curriculum)
	return out
}

// Program looks up a single module by type.
func Program(t training.Type) (training.Program, error) {
	for _, p := range curriculum {
		if p.Type == t {
			return p, nil
		}
	}
	return training.Program{}, fmt.Errorf("unknown training type %q", t)
}

// Evaluate checks a health record against the flight requirements. Every
// vital must be present, and blood pressure must not exceed the limits.
func Evaluate(rec health.Record) health.Evaluation {
	var reasons []string
	if rec.BloodPressureSys <= 0 || rec.BloodPressureDia <= 0 {
		reasons = append(reasons, "blood pressure readings are missing")
	}
	if rec.HeartRate <= 0 {
		reasons = append(reasons, "heart rate reading is missing")
	}
	if rec.Weight <= 0 {
		reasons = append(reasons, "weight reading is missing")
	}
	if rec.Height <= 0 {
		reasons = append(reasons, "height reading is missing")
	}
	if rec.BloodPressureSys > maxSystolicBP {
		reasons = append(reasons, fmt.Sprintf("systolic blood pressure %d exceeds limit %d", rec.BloodPressureSys, maxSystolicBP))
	}
	if rec.BloodPressureDia > maxDiastolicBP {
		reasons = append(reasons, fmt.Sprintf("diastolic blood pressure %d exceeds limit %d", rec.BloodPressureDia, maxDiastolicBP))
	}
	return health.Evaluation{Passed: len(reasons) == 0, Reasons: reasons}
}

// RecordHealthCheck validates, persists and evaluates a health check.
func (s *Service) RecordHealthCheck(ctx context.Context, rec health.Record) (health.Record, health.Evaluation, error) {
	if rec.UserID == "" {
		return health.Record{}, health.Evaluation{}, fmt.Errorf("user_id is required")
	}
	if rec.BloodPressureSys <= 0 || rec.BloodPressureDia <= 0 {
		return health.Record{}, health.Evaluation{}, fmt.Errorf("blood pressure readings are required")
	}
	if rec.HeartRate <= 0 {
		return health.Record{}, health.Evaluation{}, fmt.Errorf("heart rate is required")
	}
	if rec.CheckDate.IsZero() {
		rec.CheckDate = s.now().UTC()
	}

	rec, err := s.healthStore.CreateHealthRecord(ctx, rec)
	if err != nil {
		return health.Record{}, health.Evaluation{}, err
	}

	eval := Evaluate(rec)
	s.log.WithField("user_id", rec.UserID).
		WithField("passed", eval.Passed).
		Info("health check recorded")
	return rec, eval, nil
}

// CheckFlightReadiness evaluates the traveller's latest health record.
func (s *Service) CheckFlightReadiness(ctx context.Context, userID string) (health.Evaluation, error) {
	rec, err := s.healthStore.LatestHealthRecord(ctx, userID)
	if err != nil {
		return health.Evaluation{}, fmt.Errorf("no health record on file: %w", err)
	}
	return Evaluate(rec), nil
}

// BuildSchedule lays the full curriculum out ahead of a departure, one rest
// day between modules, finishing a week before launch.
func (s *Service) BuildSchedule(userID string, departure time.Time) (training.Schedule, error) {
	if userID == "" {
		return training.Schedule{}, fmt.Errorf("user_id is required")
	}
	if !departure.After(s.now()) {
		return training.Schedule{}, fmt.Errorf("departure must be in the future")
	}

	totalDays := 0
	for _, p := range curriculum {
		totalDays += p.DurationDays
	}
	totalDays += restDays * (len(curriculum) - 1)

	start := departure.AddDate(0, 0, -(totalDays + prepMarginDays))
	cursor := start

	modules := make([]training.ScheduleModule, 0, len(curriculum))
	for i, p := range curriculum {
		if i > 0 {
			cursor = cursor.AddDate(0, 0, restDays)
		}
		end := cursor.AddDate(0, 0, p.DurationDays)
		modules = append(modules, training.ScheduleModule{
			Type:         p.Type,
			StartDate:    cursor,
			EndDate:      end,
			DurationDays: p.DurationDays,
			Requirements: p.Requirements,
			Equipment:    p.Equipment,
			Description:  p.Description,
		})
		cursor = end
	}

	return training.Schedule{
		UserID:        userID,
		StartDate:     start,
		EndDate:       departure.AddDate(0, 0, -finishBeforeDays),
		DepartureDate: departure,
		Modules:       modules,
	}, nil
}

// RunSession simulates a training session, persists the outcome and returns
// the scored result. Harder levels scale the raw score down.
func (s *Service) RunSession(ctx context.Context, userID string, t training.Type, level training.Level) (training.SessionResult, error) {
	if userID == "" {
		return training.SessionResult{}, fmt.Errorf("user_id is required")
	}
	if _, err := Program(t); err != nil {
		return training.SessionResult{}, err
	}
	mult, ok := levelMultipliers[level]
	if !ok {
		return training.SessionResult{}, fmt.Errorf("unknown training level %q", level)
	}

	base := float64(minBaseScore + s.rng.Intn(maxBaseScore-minBaseScore+1))
	score := base * mult
	passed := score >= passingScore

	result := training.SessionResult{
		UserID:       userID,
		TrainingType: t,
		Level:        level,
		Date:         s.now().UTC(),
		Score:        score,
		Passed:       passed,
		Feedback:     feedback(score),
		NextSteps:    nextSteps(t, passed),
	}

	status := "failed"
	if passed {
		status = "passed"
	}
	rec := training.Record{
		UserID:         userID,
		TrainingType:   t,
		CompletionDate: result.Date,
		Score:          score,
		Status:         status,
	}
	if _, err := s.trainingStore.CreateTrainingRecord(ctx, rec); err != nil {
		return training.SessionResult{}, err
	}

	s.log.WithField("user_id", userID).
		WithField("training_type", string(t)).
		WithField("score", score).
		WithField("passed", passed).
		Info("training session completed")
	return result, nil
}

// ListHealthRecords returns the traveller's health checks, newest first.
func (s *Service) ListHealthRecords(ctx context.Context, userID string) ([]health.Record, error) {
	return s.healthStore.ListHealthRecords(ctx, userID)
}

// History returns the traveller's training records.
func (s *Service) History(ctx context.Context, userID string) ([]training.Record, error) {
	return s.trainingStore.ListTrainingRecords(ctx, userID)
}

func feedback(score float64) string {
	switch {
	case score >= 90:
		return "Outstanding performance. Cleared for the next module."
	case score >= passingScore:
		return "Solid performance. Review the debrief notes before the next module."
	default:
		return "Below passing threshold. A repeat session is required."
	}
}

func nextSteps(t training.Type, passed bool) []string {
	if !passed {
		return []string{fmt.Sprintf("retake %s training", t), "review the training manual"}
	}
	for i, p := range curriculum {
		if p.Type == t && i+1 < len(curriculum) {
			return []string{fmt.Sprintf("proceed to %s training", curriculum[i+1].Type)}
		}
	}
	return []string{"curriculum complete"}
}
