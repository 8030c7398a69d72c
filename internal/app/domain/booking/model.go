package booking

import "time"

// Status tracks the booking lifecycle.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Booking represents a reserved travel package and its computed price.
type Booking struct {
	ID            string
	UserID        string
	Destination   string
	PackageType   string
	DepartureDate time.Time
	ReturnDate    time.Time
	Passengers    int
	TotalPrice    int64
	Status        Status
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
