// Package weather produces space weather assessments for flight planning.
// Conditions are simulated from a seeded generator; a real deployment would
// swap the generator for a NOAA SWPC feed.
package weather

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/nekoneko-space/travel-platform/internal/app/domain/weather"
	"github.com/nekoneko-space/travel-platform/internal/app/metrics"
	"github.com/nekoneko-space/travel-platform/pkg/logger"
)

const reportValidHours = 24

var activityLevels = []string{
	weather.LevelLow,
	weather.LevelModerate,
	weather.LevelHigh,
	weather.LevelExtreme,
}

var meteoroidRisks = []string{
	weather.RiskMinimal,
	weather.RiskLow,
	weather.RiskModerate,
	weather.RiskHigh,
	weather.RiskSevere,
}

// Cache stores the latest report so repeated lookups within the validity
// window return a consistent assessment.
type Cache interface {
	Get(ctx context.Context) (weather.Report, bool, error)
	Set(ctx context.Context, rep weather.Report, ttl time.Duration) error
}

// Service generates and caches space weather reports.
type Service struct {
	cache Cache
	ttl   time.Duration
	log   *logger.Logger

	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// New constructs a weather service. cache may be nil, in which case every
// Current call generates a fresh report.
func New(cache Cache, ttl time.Duration, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("weather")
	}
	if ttl <= 0 {
		ttl = reportValidHours * time.Hour
	}
	return &Service{
		cache: cache,
		ttl:   ttl,
		log:   log,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		now:   time.Now,
	}
}

// WithSeed replaces the condition generator with a deterministic one.
func (s *Service) WithSeed(seed int64) *Service {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng = rand.New(rand.NewSource(seed))
	return s
}

// Current returns the cached report when one is still valid, otherwise a
// freshly generated one.
func (s *Service) Current(ctx context.Context) (weather.Report, error) {
	if s.cache != nil {
		rep, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.log.WithError(err).Warn("weather cache read failed")
		} else if ok {
			return rep, nil
		}
	}
	return s.Refresh(ctx)
}

// Refresh generates a new report and stores it in the cache.
func (s *Service) Refresh(ctx context.Context) (weather.Report, error) {
	rep := s.generate()
	if s.cache != nil {
		if err := s.cache.Set(ctx, rep, s.ttl); err != nil {
			s.log.WithError(err).Warn("weather cache write failed")
		}
	}
	metrics.RecordWeatherReport()
	s.log.WithField("solar_activity", rep.SolarActivity).
		WithField("radiation_level", rep.RadiationLevel).
		WithField("meteoroid_risk", rep.MeteoroidRisk).
		Debug("weather report generated")
	return rep, nil
}

func (s *Service) generate() weather.Report {
	s.mu.Lock()
	solar := activityLevels[s.rng.Intn(len(activityLevels))]
	radiation := activityLevels[s.rng.Intn(len(activityLevels))]
	meteoroid := meteoroidRisks[s.rng.Intn(len(meteoroidRisks))]
	s.mu.Unlock()

	return weather.Report{
		Timestamp:      s.now().UTC(),
		SolarActivity:  solar,
		RadiationLevel: radiation,
		MeteoroidRisk:  meteoroid,
		Recommendation: Recommendation(solar, radiation, meteoroid),
		ValidHours:     reportValidHours,
	}
}

// Recommendation derives launch guidance from the three condition readings.
// High or extreme activity, or high or severe meteoroid risk, grounds the
// launch; any moderate reading calls for caution.
func Recommendation(solar, radiation, meteoroid string) string {
	if solar == weather.LevelHigh || solar == weather.LevelExtreme ||
		radiation == weather.LevelHigh || radiation == weather.LevelExtreme ||
		meteoroid == weather.RiskHigh || meteoroid == weather.RiskSevere {
		return "Launch should be postponed due to hazardous space weather."
	}
	if solar == weather.LevelModerate || radiation == weather.LevelModerate || meteoroid == weather.RiskModerate {
		return "Launch possible with caution. Monitor conditions closely."
	}
	return "Conditions are favorable for launch."
}
