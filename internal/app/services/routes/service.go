// Package routes plans transfers between Earth and the destinations served by
// the agency. The ephemeris is a static table; positions are long-term
// averages, not live data.
package routes

import (
	"fmt"
	"strings"
	"time"

	"github.com/nekoneko-space/travel-platform/internal/app/domain/route"
	"github.com/nekoneko-space/travel-platform/pkg/logger"
)

// Craft performance used for every transfer.
const (
	maxSpeedKMH       = 28_000.0
	fuelEfficiency    = 0.85
	passengerCapacity = 4
)

// marsWindowAnchor is the reference opposition for the 780 day synodic cycle.
var marsWindowAnchor = time.Date(2022, time.September, 1, 0, 0, 0, 0, time.UTC)

var bodies = map[string]route.Body{
	"moon": {Name: "moon", DistanceKM: 384_400, OrbitPeriod: 27.32},
	"mars": {Name: "mars", DistanceKM: 225_000_000, OrbitPeriod: 687},
	"iss":  {Name: "iss", DistanceKM: 408, OrbitPeriod: 0.0625},
}

// Service plans routes and launch windows.
type Service struct {
	log *logger.Logger
}

// New constructs a route planning service.
func New(log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("routes")
	}
	return &Service{log: log}
}

// Capacity returns the passenger capacity of the standard craft.
func (s *Service) Capacity() int { return passengerCapacity }

// Plan computes the transfer to a destination for a departure time.
func (s *Service) Plan(destination string, departure time.Time) (route.Plan, error) {
	dest := strings.ToLower(strings.TrimSpace(destination))
	body, ok := bodies[dest]
	if !ok {
		return route.Plan{}, fmt.Errorf("unknown destination %q", destination)
	}

	baseHours := body.DistanceKM / maxSpeedKMH
	hours := optimizeHours(baseHours, dest)

	plan := route.Plan{
		Destination:   dest,
		DepartureTime: departure,
		ArrivalTime:   departure.Add(time.Duration(hours * float64(time.Hour))),
		DurationHours: hours,
		DistanceKM:    body.DistanceKM,
		RouteType:     routeType(dest),
		Waypoints:     waypoints(dest),
		Fuel:          fuelFor(body.DistanceKM),
	}

	s.log.WithField("destination", dest).
		WithField("duration_hours", hours).
		Debug("route planned")
	return plan, nil
}

// NextLaunchWindow returns the earliest launch opportunity at or after the
// given time.
func (s *Service) NextLaunchWindow(destination string, from time.Time) (time.Time, error) {
	dest := strings.ToLower(strings.TrimSpace(destination))
	if _, ok := bodies[dest]; !ok {
		return time.Time{}, fmt.Errorf("unknown destination %q", destination)
	}

	switch dest {
	case "mars":
		// Mars windows recur on the synodic period.
		const synodicDays = 780
		elapsed := int(from.Sub(marsWindowAnchor).Hours() / 24)
		daysUntil := synodicDays - elapsed%synodicDays
		return from.AddDate(0, 0, daysUntil), nil
	case "moon":
		return from, nil
	default:
		// Orbital rendezvous; next alignment is half a day out.
		return from.Add(12 * time.Hour), nil
	}
}

func optimizeHours(baseHours float64, destination string) float64 {
	switch destination {
	case "mars":
		// Gravity assist trims interplanetary cruises by 20%.
		return baseHours * 0.8
	case "moon":
		// Lunar approach adds margin over the straight-line figure.
		return baseHours * 1.1
	default:
		return baseHours
	}
}

func routeType(destination string) string {
	switch destination {
	case "mars":
		return "interplanetary cruise"
	case "moon":
		return "lunar approach"
	default:
		return "orbital rendezvous"
	}
}

func waypoints(destination string) []string {
	switch destination {
	case "mars":
		return []string{"earth orbit departure", "lunar orbit transit", "deep space cruise", "mars orbit insertion"}
	case "moon":
		return []string{"earth orbit departure", "lunar orbit insertion"}
	default:
		return []string{"low earth orbit"}
	}
}

func fuelFor(distanceKM float64) route.Fuel {
	main := distanceKM * 0.1 / fuelEfficiency
	reserve := main * 0.2
	return route.Fuel{
		Main:    main,
		Reserve: reserve,
		Total:   main + reserve,
	}
}
