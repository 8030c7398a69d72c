package safety

import (
	"context"
	"testing"
	"time"

	"github.com/nekoneko-space/travel-platform/internal/app/domain/health"
	"github.com/nekoneko-space/travel-platform/internal/app/domain/training"
	"github.com/nekoneko-space/travel-platform/internal/app/domain/user"
	"github.com/nekoneko-space/travel-platform/internal/app/storage/memory"
)

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	store := memory.New()
	u, err := store.CreateUser(context.Background(), user.User{
		Email:        "jiro@example.com",
		PasswordHash: "x",
		FirstName:    "Jiro",
		LastName:     "Suzuki",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return New(store, store, nil).WithSeed(42), u.ID
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name   string
		sys    int
		dia    int
		passed bool
	}{
		{"healthy", 120, 80, true},
		{"boundary-below", 139, 89, true},
		{"systolic-at-limit", 140, 80, true},
		{"diastolic-at-limit", 120, 90, true},
		{"both-at-limit", 140, 90, true},
		{"systolic-over", 141, 80, false},
		{"diastolic-over", 120, 91, false},
		{"both-over", 160, 100, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval := Evaluate(health.Record{
				BloodPressureSys: tt.sys,
				BloodPressureDia: tt.dia,
				HeartRate:        64,
				Weight:           70,
				Height:           172,
			})
			if eval.Passed != tt.passed {
				t.Fatalf("passed: got %v want %v (reasons %v)", eval.Passed, tt.passed, eval.Reasons)
			}
			if !tt.passed && len(eval.Reasons) == 0 {
				t.Fatal("failed evaluation must carry reasons")
			}
		})
	}
}

func TestEvaluateMissingVitals(t *testing.T) {
	eval := Evaluate(health.Record{BloodPressureSys: 120, BloodPressureDia: 80})
	if eval.Passed {
		t.Fatal("record without heart rate, weight and height must fail")
	}
	if len(eval.Reasons) != 3 {
		t.Fatalf("reasons: got %d want 3 (%v)", len(eval.Reasons), eval.Reasons)
	}
}

func TestRecordHealthCheck(t *testing.T) {
	svc, userID := newTestService(t)
	ctx := context.Background()

	rec, eval, err := svc.RecordHealthCheck(ctx, health.Record{
		UserID:           userID,
		BloodPressureSys: 118,
		BloodPressureDia: 76,
		HeartRate:        64,
		Weight:           70,
		Height:           172,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID == "" {
		t.Fatal("record id not assigned")
	}
	if !eval.Passed {
		t.Fatalf("expected pass, got reasons %v", eval.Reasons)
	}

	ready, err := svc.CheckFlightReadiness(ctx, userID)
	if err != nil {
		t.Fatalf("flight readiness: %v", err)
	}
	if !ready.Passed {
		t.Fatal("expected flight readiness from latest record")
	}
}

func TestRecordHealthCheckValidation(t *testing.T) {
	svc, userID := newTestService(t)
	ctx := context.Background()

	if _, _, err := svc.RecordHealthCheck(ctx, health.Record{UserID: "", BloodPressureSys: 120, BloodPressureDia: 80, HeartRate: 60}); err == nil {
		t.Fatal("expected error for empty user id")
	}
	if _, _, err := svc.RecordHealthCheck(ctx, health.Record{UserID: userID, HeartRate: 60}); err == nil {
		t.Fatal("expected error for missing blood pressure")
	}
	if _, _, err := svc.RecordHealthCheck(ctx, health.Record{UserID: userID, BloodPressureSys: 120, BloodPressureDia: 80}); err == nil {
		t.Fatal("expected error for missing heart rate")
	}
}

func TestBuildSchedule(t *testing.T) {
	svc, userID := newTestService(t)
	departure := time.Now().AddDate(0, 3, 0)

	schedule, err := svc.BuildSchedule(userID, departure)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(schedule.Modules) != len(Programs()) {
		t.Fatalf("modules: got %d want %d", len(schedule.Modules), len(Programs()))
	}

	// Modules run in curriculum order with a rest day between each.
	for i := 1; i < len(schedule.Modules); i++ {
		prev, cur := schedule.Modules[i-1], schedule.Modules[i]
		if want := prev.EndDate.AddDate(0, 0, restDays); !cur.StartDate.Equal(want) {
			t.Fatalf("module %d start: got %v want %v", i, cur.StartDate, want)
		}
	}

	last := schedule.Modules[len(schedule.Modules)-1]
	if !last.EndDate.Before(departure) {
		t.Fatal("training must finish before departure")
	}
	if want := departure.AddDate(0, 0, -finishBeforeDays); !schedule.EndDate.Equal(want) {
		t.Fatalf("schedule end: got %v want %v", schedule.EndDate, want)
	}
}

func TestBuildScheduleRejectsPastDeparture(t *testing.T) {
	svc, userID := newTestService(t)
	if _, err := svc.BuildSchedule(userID, time.Now().AddDate(0, 0, -1)); err == nil {
		t.Fatal("expected error for past departure")
	}
}

func TestRunSession(t *testing.T) {
	svc, userID := newTestService(t)
	ctx := context.Background()

	result, err := svc.RunSession(ctx, userID, training.TypeZeroGravity, training.LevelBasic)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Score < 60 || result.Score > 100 {
		t.Fatalf("basic score out of range: %f", result.Score)
	}
	// Sessions score in whole points; only the level multiplier fractions.
	if result.Score != float64(int(result.Score)) {
		t.Fatalf("basic score not a whole-point draw: %f", result.Score)
	}
	if result.Passed != (result.Score >= 80) {
		t.Fatalf("passed flag inconsistent with score %f", result.Score)
	}
	if result.Feedback == "" {
		t.Fatal("expected feedback")
	}
	if len(result.NextSteps) == 0 {
		t.Fatal("expected next steps")
	}

	records, err := svc.History(ctx, userID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records: got %d want 1", len(records))
	}
	if records[0].TrainingType != training.TypeZeroGravity {
		t.Fatalf("training type: got %s", records[0].TrainingType)
	}
}

func TestRunSessionLevelScaling(t *testing.T) {
	// With the same seed, the advanced session scores 80% of the basic one.
	basicSvc, basicUser := newTestService(t)
	advSvc, advUser := newTestService(t)
	ctx := context.Background()

	basic, err := basicSvc.RunSession(ctx, basicUser, training.TypeEmergency, training.LevelBasic)
	if err != nil {
		t.Fatalf("basic session: %v", err)
	}
	advanced, err := advSvc.RunSession(ctx, advUser, training.TypeEmergency, training.LevelAdvanced)
	if err != nil {
		t.Fatalf("advanced session: %v", err)
	}

	want := basic.Score * 0.8
	if diff := advanced.Score - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("advanced score: got %f want %f", advanced.Score, want)
	}
}

func TestRunSessionValidation(t *testing.T) {
	svc, userID := newTestService(t)
	ctx := context.Background()

	if _, err := svc.RunSession(ctx, userID, training.Type("swimming"), training.LevelBasic); err == nil {
		t.Fatal("expected error for unknown training type")
	}
	if _, err := svc.RunSession(ctx, userID, training.TypeHealth, training.Level("expert")); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestProgramDurations(t *testing.T) {
	want := map[training.Type]int{
		training.TypeZeroGravity:   5,
		training.TypeEmergency:     3,
		training.TypeSpacecraft:    7,
		training.TypeHealth:        2,
		training.TypeCommunication: 1,
	}
	for typ, days := range want {
		p, err := Program(typ)
		if err != nil {
			t.Fatalf("%s: %v", typ, err)
		}
		if p.DurationDays != days {
			t.Fatalf("%s duration: got %d want %d", typ, p.DurationDays, days)
		}
	}
}
