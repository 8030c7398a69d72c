package route

import "time"

// Body holds the orbital data used for transfer planning.
type Body struct {
	Name        string
	DistanceKM  float64
	OrbitPeriod float64 // days
}

// Fuel is the propellant estimate for a transfer, in arbitrary units.
type Fuel struct {
	Main    float64 `json:"main_fuel"`
	Reserve float64 `json:"reserve"`
	Total   float64 `json:"total"`
}

// Plan is a computed transfer to a destination.
type Plan struct {
	Destination   string    `json:"destination"`
	DepartureTime time.Time `json:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time"`
	DurationHours float64   `json:"flight_duration_hours"`
	DistanceKM    float64   `json:"distance_km"`
	RouteType     string    `json:"route_type"`
	Waypoints     []string  `json:"waypoints"`
	Fuel          Fuel      `json:"fuel_requirements"`
}
