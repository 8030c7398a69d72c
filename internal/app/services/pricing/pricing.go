// Package pricing computes travel package prices from the published rate
// tables.
package pricing

import (
	"fmt"
	"strings"
)

// Base prices per destination in yen.
var basePrices = map[string]int64{
	"moon":          1_000_000,
	"mars":          5_000_000,
	"space_station": 800_000,
}

// Multipliers per package tier.
var packageMultipliers = map[string]float64{
	"economy":  1.0,
	"business": 1.5,
	"first":    2.0,
}

const (
	defaultBasePrice  = int64(1_000_000)
	defaultMultiplier = 1.0
)

// Destinations returns the destinations with a published base price.
func Destinations() []string {
	return []string{"moon", "mars", "space_station"}
}

// PackageTypes returns the known package tiers in ascending price order.
func PackageTypes() []string {
	return []string{"economy", "business", "first"}
}

// BasePrice returns the per-day, per-passenger base price for a destination.
// Unknown destinations fall back to the default rate, matching the published
// table.
func BasePrice(destination string) int64 {
	if price, ok := basePrices[normalize(destination)]; ok {
		return price
	}
	return defaultBasePrice
}

// Quote computes the total price for a trip.
func Quote(destination string, days int, packageType string, passengers int) (int64, error) {
	if days < 1 {
		return 0, fmt.Errorf("days must be at least 1")
	}
	if passengers < 1 {
		return 0, fmt.Errorf("passengers must be at least 1")
	}

	base := BasePrice(destination)

	multiplier := defaultMultiplier
	if m, ok := packageMultipliers[normalize(packageType)]; ok {
		multiplier = m
	}

	total := float64(base) * multiplier * float64(days) * float64(passengers)
	return int64(total), nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
