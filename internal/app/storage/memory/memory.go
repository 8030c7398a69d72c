// Package memory provides a thread-safe in-memory persistence layer
// implementing the storage interfaces. It is intended for tests and
// prototyping and deliberately keeps the implementation simple.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nekoneko-space/travel-platform/internal/app/domain/booking"
	"github.com/nekoneko-space/travel-platform/internal/app/domain/health"
	"github.com/nekoneko-space/travel-platform/internal/app/domain/payment"
	"github.com/nekoneko-space/travel-platform/internal/app/domain/training"
	"github.com/nekoneko-space/travel-platform/internal/app/domain/user"
	"github.com/nekoneko-space/travel-platform/internal/app/storage"
)

var _ storage.UserStore = (*Store)(nil)
var _ storage.BookingStore = (*Store)(nil)
var _ storage.TrainingStore = (*Store)(nil)
var _ storage.HealthStore = (*Store)(nil)
var _ storage.PaymentStore = (*Store)(nil)

// Store is the in-memory implementation of every storage interface.
type Store struct {
	mu       sync.RWMutex
	nextID   int64
	users    map[string]user.User
	bookings map[string]booking.Booking
	training map[string]training.Record
	healths  map[string]health.Record
	payments map[string]payment.Payment
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		nextID:   1,
		users:    make(map[string]user.User),
		bookings: make(map[string]booking.Booking),
		training: make(map[string]training.Record),
		healths:  make(map[string]health.Record),
		payments: make(map[string]payment.Payment),
	}
}

func (s *Store) nextIDLocked() string {
	id := s.nextID
	s.nextID++
	return fmt.Sprintf("%d", id)
}

// UserStore implementation ----------------------------------------------------

func (s *Store) CreateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return user.User{}, fmt.Errorf("user with email %s already exists", u.Email)
		}
	}

	if u.ID == "" {
		u.ID = s.nextIDLocked()
	} else if _, exists := s.users[u.ID]; exists {
		return user.User{}, fmt.Errorf("user %s already exists", u.ID)
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	s.users[u.ID] = u
	return u, nil
}

func (s *Store) UpdateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.users[u.ID]
	if !ok {
		return user.User{}, fmt.Errorf("user %s not found", u.ID)
	}

	u.CreatedAt = original.CreatedAt
	u.UpdatedAt = time.Now().UTC()
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, fmt.Errorf("user %s not found", id)
	}
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return user.User{}, fmt.Errorf("user with email %s not found", email)
}

func (s *Store) ListUsers(_ context.Context) ([]user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]user.User, 0, len(s.users))
	for _, u := range s.users {
		result = append(result, u)
	}
	sortByCreated(result, func(u user.User) time.Time { return u.CreatedAt })
	return result, nil
}

// BookingStore implementation -------------------------------------------------

func (s *Store) CreateBooking(_ context.Context, b booking.Booking) (booking.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[b.UserID]; !ok {
		return booking.Booking{}, fmt.Errorf("user %s not found", b.UserID)
	}

	if b.ID == "" {
		b.ID = s.nextIDLocked()
	} else if _, exists := s.bookings[b.ID]; exists {
		return booking.Booking{}, fmt.Errorf("booking %s already exists", b.ID)
	}

	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now

	s.bookings[b.ID] = b
	return b, nil
}

func (s *Store) UpdateBooking(_ context.Context, b booking.Booking) (booking.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.bookings[b.ID]
	if !ok {
		return booking.Booking{}, fmt.Errorf("booking %s not found", b.ID)
	}

	b.UserID = original.UserID
	b.CreatedAt = original.CreatedAt
	b.UpdatedAt = time.Now().UTC()
	s.bookings[b.ID] = b
	return b, nil
}

func (s *Store) GetBooking(_ context.Context, id string) (booking.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[id]
	if !ok {
		return booking.Booking{}, fmt.Errorf("booking %s not found", id)
	}
	return b, nil
}

func (s *Store) ListBookings(_ context.Context, userID string) ([]booking.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []booking.Booking
	for _, b := range s.bookings {
		if userID == "" || b.UserID == userID {
			result = append(result, b)
		}
	}
	sortByCreated(result, func(b booking.Booking) time.Time { return b.CreatedAt })
	return result, nil
}

// TrainingStore implementation ------------------------------------------------

func (s *Store) CreateTrainingRecord(_ context.Context, rec training.Record) (training.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[rec.UserID]; !ok {
		return training.Record{}, fmt.Errorf("user %s not found", rec.UserID)
	}

	if rec.ID == "" {
		rec.ID = s.nextIDLocked()
	}

	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	s.training[rec.ID] = rec
	return rec, nil
}

func (s *Store) GetTrainingRecord(_ context.Context, id string) (training.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.training[id]
	if !ok {
		return training.Record{}, fmt.Errorf("training record %s not found", id)
	}
	return rec, nil
}

func (s *Store) ListTrainingRecords(_ context.Context, userID string) ([]training.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []training.Record
	for _, rec := range s.training {
		if userID == "" || rec.UserID == userID {
			result = append(result, rec)
		}
	}
	sortByCreated(result, func(r training.Record) time.Time { return r.CreatedAt })
	return result, nil
}

// HealthStore implementation --------------------------------------------------

func (s *Store) CreateHealthRecord(_ context.Context, rec health.Record) (health.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[rec.UserID]; !ok {
		return health.Record{}, fmt.Errorf("user %s not found", rec.UserID)
	}

	if rec.ID == "" {
		rec.ID = s.nextIDLocked()
	}

	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	if rec.CheckDate.IsZero() {
		rec.CheckDate = now
	}
	s.healths[rec.ID] = rec
	return rec, nil
}

func (s *Store) GetHealthRecord(_ context.Context, id string) (health.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.healths[id]
	if !ok {
		return health.Record{}, fmt.Errorf("health record %s not found", id)
	}
	return rec, nil
}

func (s *Store) LatestHealthRecord(_ context.Context, userID string) (health.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		latest health.Record
		found  bool
	)
	for _, rec := range s.healths {
		if rec.UserID != userID {
			continue
		}
		if !found || rec.CheckDate.After(latest.CheckDate) {
			latest = rec
			found = true
		}
	}
	if !found {
		return health.Record{}, fmt.Errorf("no health records for user %s", userID)
	}
	return latest, nil
}

func (s *Store) ListHealthRecords(_ context.Context, userID string) ([]health.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []health.Record
	for _, rec := range s.healths {
		if userID == "" || rec.UserID == userID {
			result = append(result, rec)
		}
	}
	sortByCreated(result, func(r health.Record) time.Time { return r.CreatedAt })
	return result, nil
}

// PaymentStore implementation -------------------------------------------------

func (s *Store) CreatePayment(_ context.Context, p payment.Payment) (payment.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bookings[p.BookingID]; !ok {
		return payment.Payment{}, fmt.Errorf("booking %s not found", p.BookingID)
	}

	if p.ID == "" {
		p.ID = s.nextIDLocked()
	}

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.payments[p.ID] = p
	return p, nil
}

func (s *Store) UpdatePayment(_ context.Context, p payment.Payment) (payment.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.payments[p.ID]
	if !ok {
		return payment.Payment{}, fmt.Errorf("payment %s not found", p.ID)
	}

	p.BookingID = original.BookingID
	p.CreatedAt = original.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	s.payments[p.ID] = p
	return p, nil
}

func (s *Store) GetPayment(_ context.Context, id string) (payment.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.payments[id]
	if !ok {
		return payment.Payment{}, fmt.Errorf("payment %s not found", id)
	}
	return p, nil
}

func (s *Store) ListPayments(_ context.Context, bookingID string) ([]payment.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []payment.Payment
	for _, p := range s.payments {
		if bookingID == "" || p.BookingID == bookingID {
			result = append(result, p)
		}
	}
	sortByCreated(result, func(p payment.Payment) time.Time { return p.CreatedAt })
	return result, nil
}

func sortByCreated[T any](items []T, createdAt func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return createdAt(items[i]).Before(createdAt(items[j]))
	})
}
