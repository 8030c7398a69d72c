package routes

import (
	"testing"
	"time"
)

func TestPlan(t *testing.T) {
	svc := New(nil)
	departure := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		destination string
		wantType    string
		wantHours   float64
	}{
		{"moon", "moon", "lunar approach", 384_400 / 28_000.0 * 1.1},
		{"mars", "mars", "interplanetary cruise", 225_000_000 / 28_000.0 * 0.8},
		{"iss", "iss", "orbital rendezvous", 408 / 28_000.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := svc.Plan(tt.destination, departure)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if plan.RouteType != tt.wantType {
				t.Fatalf("route type: got %q want %q", plan.RouteType, tt.wantType)
			}
			if diff := plan.DurationHours - tt.wantHours; diff > 1e-6 || diff < -1e-6 {
				t.Fatalf("duration: got %f want %f", plan.DurationHours, tt.wantHours)
			}
			if !plan.ArrivalTime.After(plan.DepartureTime) {
				t.Fatal("arrival must be after departure")
			}
			if len(plan.Waypoints) == 0 {
				t.Fatal("expected waypoints")
			}
		})
	}
}

func TestPlanUnknownDestination(t *testing.T) {
	svc := New(nil)
	if _, err := svc.Plan("venus", time.Now()); err == nil {
		t.Fatal("expected error for unknown destination")
	}
}

func TestFuelReserve(t *testing.T) {
	svc := New(nil)
	plan, err := svc.Plan("moon", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantMain := 384_400 * 0.1 / 0.85
	if diff := plan.Fuel.Main - wantMain; diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("main fuel: got %f want %f", plan.Fuel.Main, wantMain)
	}
	if diff := plan.Fuel.Reserve - wantMain*0.2; diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("reserve fuel: got %f want %f", plan.Fuel.Reserve, wantMain*0.2)
	}
	if diff := plan.Fuel.Total - (plan.Fuel.Main + plan.Fuel.Reserve); diff > 1e-9 || diff < -1e-9 {
		t.Fatal("total fuel must equal main plus reserve")
	}
}

func TestNextLaunchWindow(t *testing.T) {
	svc := New(nil)
	from := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)

	moon, err := svc.NextLaunchWindow("moon", from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !moon.Equal(from) {
		t.Fatalf("moon window should be immediate, got %v", moon)
	}

	iss, err := svc.NextLaunchWindow("iss", from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := from.Add(12 * time.Hour); !iss.Equal(want) {
		t.Fatalf("iss window: got %v want %v", iss, want)
	}

	mars, err := svc.NextLaunchWindow("mars", from)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !mars.After(from) {
		t.Fatalf("mars window must be in the future, got %v", mars)
	}
	// The window recurs on the synodic period, so it is never more than one
	// full period away.
	if mars.Sub(from) > 780*24*time.Hour {
		t.Fatalf("mars window too far out: %v", mars)
	}

	if _, err := svc.NextLaunchWindow("venus", from); err == nil {
		t.Fatal("expected error for unknown destination")
	}
}
