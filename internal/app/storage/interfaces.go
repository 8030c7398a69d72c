package storage

import (
	"context"

	"github.com/nekoneko-space/travel-platform/internal/app/domain/booking"
	"github.com/nekoneko-space/travel-platform/internal/app/domain/health"
	"github.com/nekoneko-space/travel-platform/internal/app/domain/payment"
	"github.com/nekoneko-space/travel-platform/internal/app/domain/training"
	"github.com/nekoneko-space/travel-platform/internal/app/domain/user"
)

// UserStore persists traveller accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	UpdateUser(ctx context.Context, u user.User) (user.User, error)
	GetUser(ctx context.Context, id string) (user.User, error)
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
	ListUsers(ctx context.Context) ([]user.User, error)
}

// BookingStore persists bookings.
type BookingStore interface {
	CreateBooking(ctx context.Context, b booking.Booking) (booking.Booking, error)
	UpdateBooking(ctx context.Context, b booking.Booking) (booking.Booking, error)
	GetBooking(ctx context.Context, id string) (booking.Booking, error)
	ListBookings(ctx context.Context, userID string) ([]booking.Booking, error)
}

// TrainingStore persists training records.
type TrainingStore interface {
	CreateTrainingRecord(ctx context.Context, rec training.Record) (training.Record, error)
	GetTrainingRecord(ctx context.Context, id string) (training.Record, error)
	ListTrainingRecords(ctx context.Context, userID string) ([]training.Record, error)
}

// HealthStore persists health check records.
type HealthStore interface {
	CreateHealthRecord(ctx context.Context, rec health.Record) (health.Record, error)
	GetHealthRecord(ctx context.Context, id string) (health.Record, error)
	LatestHealthRecord(ctx context.Context, userID string) (health.Record, error)
	ListHealthRecords(ctx context.Context, userID string) ([]health.Record, error)
}

// PaymentStore persists payment records.
type PaymentStore interface {
	CreatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error)
	UpdatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error)
	GetPayment(ctx context.Context, id string) (payment.Payment, error)
	ListPayments(ctx context.Context, bookingID string) ([]payment.Payment, error)
}
