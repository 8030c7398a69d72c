package weather

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/nekoneko-space/travel-platform/pkg/logger"
)

// Refresher regenerates the weather report on a cron schedule so the cache
// never serves a stale assessment.
type Refresher struct {
	svc  *Service
	spec string
	log  *logger.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// NewRefresher builds the background refresher. spec accepts standard cron
// expressions and the @every form.
func NewRefresher(svc *Service, spec string, log *logger.Logger) *Refresher {
	if log == nil {
		log = logger.NewDefault("weather-refresher")
	}
	return &Refresher{svc: svc, spec: spec, log: log}
}

// Name implements system.Service.
func (r *Refresher) Name() string { return "weather-refresher" }

// Start primes the cache and schedules periodic refreshes.
func (r *Refresher) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return fmt.Errorf("weather refresher already started")
	}

	if _, err := r.svc.Refresh(ctx); err != nil {
		return fmt.Errorf("initial weather refresh: %w", err)
	}

	c := cron.New()
	_, err := c.AddFunc(r.spec, func() {
		if _, err := r.svc.Refresh(context.Background()); err != nil {
			r.log.WithError(err).Error("scheduled weather refresh failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid refresh spec %q: %w", r.spec, err)
	}

	c.Start()
	r.cron = c
	r.running = true
	r.log.WithField("spec", r.spec).Info("weather refresher started")
	return nil
}

// Stop halts the schedule and waits for an in-flight refresh to finish.
func (r *Refresher) Stop(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return nil
	}

	done := r.cron.Stop().Done()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	r.cron = nil
	r.running = false
	r.log.Info("weather refresher stopped")
	return nil
}
