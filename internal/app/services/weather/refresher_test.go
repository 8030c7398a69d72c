package weather

import (
	"context"
	"testing"
	"time"
)

func TestRefresherLifecycle(t *testing.T) {
	cache := NewMemoryCache()
	svc := New(cache, time.Hour, nil).WithSeed(3)
	r := NewRefresher(svc, "@every 1h", nil)
	ctx := context.Background()

	if err := r.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Start primes the cache immediately.
	if _, ok, _ := cache.Get(ctx); !ok {
		t.Fatal("expected cache primed after start")
	}

	if err := r.Start(ctx); err == nil {
		t.Fatal("expected error starting twice")
	}

	if err := r.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	// Stopping again is a no-op.
	if err := r.Stop(ctx); err != nil {
		t.Fatalf("second stop: %v", err)
	}
}

func TestRefresherRejectsBadSpec(t *testing.T) {
	svc := New(NewMemoryCache(), time.Hour, nil)
	r := NewRefresher(svc, "not a cron spec", nil)

	if err := r.Start(context.Background()); err == nil {
		t.Fatal("expected error for invalid spec")
	}
}
