// Package bookings manages the reservation lifecycle for travel packages.
package bookings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nekoneko-space/travel-platform/internal/app/domain/booking"
	"github.com/nekoneko-space/travel-platform/internal/app/metrics"
	"github.com/nekoneko-space/travel-platform/internal/app/services/pricing"
	"github.com/nekoneko-space/travel-platform/internal/app/storage"
	"github.com/nekoneko-space/travel-platform/pkg/logger"
)

// Trip durations per destination in days.
var tripDays = map[string]int{
	"moon":          3,
	"mars":          30,
	"space_station": 5,
}

const (
	maxPassengers = 4 // spacecraft capacity
	minLeadDays   = 30
	maxLeadDays   = 365
)

// Service manages bookings.
type Service struct {
	users storage.UserStore
	store storage.BookingStore
	log   *logger.Logger

	now func() time.Time
}

// New constructs a booking service.
func New(users storage.UserStore, store storage.BookingStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("bookings")
	}
	return &Service{
		users: users,
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// TripDays returns the itinerary length for a destination.
func TripDays(destination string) (int, error) {
	days, ok := tripDays[strings.ToLower(strings.TrimSpace(destination))]
	if !ok {
		return 0, fmt.Errorf("unknown destination %q", destination)
	}
	return days, nil
}

// Create validates and persists a new booking with its quoted price. The
// booking starts pending and is confirmed by a successful payment.
func (s *Service) Create(ctx context.Context, userID, destination, packageType string, departure time.Time, passengers int) (booking.Booking, error) {
	userID = strings.TrimSpace(userID)
	destination = strings.ToLower(strings.TrimSpace(destination))
	packageType = strings.ToLower(strings.TrimSpace(packageType))

	if userID == "" {
		return booking.Booking{}, fmt.Errorf("user_id is required")
	}
	days, err := TripDays(destination)
	if err != nil {
		return booking.Booking{}, err
	}
	if passengers < 1 || passengers > maxPassengers {
		return booking.Booking{}, fmt.Errorf("passengers must be between 1 and %d", maxPassengers)
	}

	lead := departure.Sub(s.now())
	if lead < minLeadDays*24*time.Hour {
		return booking.Booking{}, fmt.Errorf("departure must be at least %d days out", minLeadDays)
	}
	if lead > maxLeadDays*24*time.Hour {
		return booking.Booking{}, fmt.Errorf("departure must be within %d days", maxLeadDays)
	}

	if s.users != nil {
		if _, err := s.users.GetUser(ctx, userID); err != nil {
			return booking.Booking{}, fmt.Errorf("user validation failed: %w", err)
		}
	}

	price, err := pricing.Quote(destination, days, packageType, passengers)
	if err != nil {
		return booking.Booking{}, err
	}

	b := booking.Booking{
		UserID:        userID,
		Destination:   destination,
		PackageType:   packageType,
		DepartureDate: departure.UTC(),
		ReturnDate:    departure.UTC().AddDate(0, 0, days),
		Passengers:    passengers,
		TotalPrice:    price,
		Status:        booking.StatusPending,
	}
	b, err = s.store.CreateBooking(ctx, b)
	if err != nil {
		return booking.Booking{}, err
	}

	metrics.RecordBooking(b.PackageType)
	s.log.WithField("booking_id", b.ID).
		WithField("user_id", userID).
		WithField("destination", destination).
		WithField("total_price", price).
		Info("booking created")
	return b, nil
}

// Confirm marks a pending booking as confirmed.
func (s *Service) Confirm(ctx context.Context, bookingID string) (booking.Booking, error) {
	b, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return booking.Booking{}, err
	}
	if b.Status == booking.StatusCancelled {
		return booking.Booking{}, fmt.Errorf("booking %s is cancelled", bookingID)
	}
	if b.Status == booking.StatusConfirmed {
		return b, nil
	}

	b.Status = booking.StatusConfirmed
	b, err = s.store.UpdateBooking(ctx, b)
	if err != nil {
		return booking.Booking{}, err
	}
	s.log.WithField("booking_id", b.ID).Info("booking confirmed")
	return b, nil
}

// Cancel marks a booking as cancelled. Cancelling twice is not an error.
func (s *Service) Cancel(ctx context.Context, bookingID string) (booking.Booking, error) {
	b, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return booking.Booking{}, err
	}
	if b.Status == booking.StatusCancelled {
		return b, nil
	}

	b.Status = booking.StatusCancelled
	b, err = s.store.UpdateBooking(ctx, b)
	if err != nil {
		return booking.Booking{}, err
	}
	s.log.WithField("booking_id", b.ID).Info("booking cancelled")
	return b, nil
}

// Get retrieves a booking by id.
func (s *Service) Get(ctx context.Context, id string) (booking.Booking, error) {
	return s.store.GetBooking(ctx, id)
}

// List returns bookings for a user.
func (s *Service) List(ctx context.Context, userID string) ([]booking.Booking, error) {
	return s.store.ListBookings(ctx, userID)
}

// WithClock overrides the time source, primarily for tests.
func (s *Service) WithClock(now func() time.Time) {
	s.now = now
}
