package memory

import (
	"context"
	"testing"
	"time"

	"github.com/nekoneko-space/travel-platform/internal/app/domain/booking"
	"github.com/nekoneko-space/travel-platform/internal/app/domain/health"
	"github.com/nekoneko-space/travel-platform/internal/app/domain/payment"
	"github.com/nekoneko-space/travel-platform/internal/app/domain/training"
	"github.com/nekoneko-space/travel-platform/internal/app/domain/user"
)

func seedUser(t *testing.T, s *Store) user.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), user.User{
		Email:        "taro@example.com",
		PasswordHash: "x",
		FirstName:    "Taro",
		LastName:     "Yamada",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func seedBooking(t *testing.T, s *Store, userID string) booking.Booking {
	t.Helper()
	b, err := s.CreateBooking(context.Background(), booking.Booking{
		UserID:        userID,
		Destination:   "moon",
		PackageType:   "economy",
		DepartureDate: time.Now().AddDate(0, 2, 0),
		ReturnDate:    time.Now().AddDate(0, 2, 3),
		Passengers:    1,
		TotalPrice:    3_000_000,
		Status:        booking.StatusPending,
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	return b
}

func TestUserCRUD(t *testing.T) {
	s := New()
	ctx := context.Background()
	u := seedUser(t, s)

	if u.ID == "" || u.CreatedAt.IsZero() {
		t.Fatalf("identity fields not assigned: %+v", u)
	}

	byID, err := s.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if byID.Email != u.Email {
		t.Fatalf("email: got %q", byID.Email)
	}

	byEmail, err := s.GetUserByEmail(ctx, "taro@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail.ID != u.ID {
		t.Fatalf("lookup mismatch: %q vs %q", byEmail.ID, u.ID)
	}

	u.FirstName = "Ichiro"
	updated, err := s.UpdateUser(ctx, u)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.FirstName != "Ichiro" {
		t.Fatalf("update not applied: %q", updated.FirstName)
	}
	if !updated.CreatedAt.Equal(u.CreatedAt) {
		t.Fatal("update must not change created_at")
	}

	if _, err := s.GetUser(ctx, "missing"); err == nil {
		t.Fatal("expected error for missing user")
	}
}

func TestDuplicateEmailRejected(t *testing.T) {
	s := New()
	seedUser(t, s)
	_, err := s.CreateUser(context.Background(), user.User{
		Email:        "taro@example.com",
		PasswordHash: "y",
		FirstName:    "Other",
		LastName:     "User",
	})
	if err == nil {
		t.Fatal("expected duplicate email error")
	}
}

func TestBookingForeignKey(t *testing.T) {
	s := New()
	_, err := s.CreateBooking(context.Background(), booking.Booking{UserID: "missing"})
	if err == nil {
		t.Fatal("expected error for unknown user")
	}
}

func TestListBookingsFiltersByUser(t *testing.T) {
	s := New()
	ctx := context.Background()
	u := seedUser(t, s)
	other, err := s.CreateUser(ctx, user.User{Email: "other@example.com", PasswordHash: "x", FirstName: "O", LastName: "U"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	seedBooking(t, s, u.ID)
	seedBooking(t, s, u.ID)
	seedBooking(t, s, other.ID)

	mine, err := s.ListBookings(ctx, u.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("got %d bookings want 2", len(mine))
	}

	all, err := s.ListBookings(ctx, "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d bookings want 3", len(all))
	}
}

func TestPaymentRequiresBooking(t *testing.T) {
	s := New()
	ctx := context.Background()
	u := seedUser(t, s)
	b := seedBooking(t, s, u.ID)

	if _, err := s.CreatePayment(ctx, payment.Payment{BookingID: "missing", Amount: 1}); err == nil {
		t.Fatal("expected error for unknown booking")
	}

	p, err := s.CreatePayment(ctx, payment.Payment{
		BookingID:     b.ID,
		Amount:        3_135_000,
		PaymentMethod: "credit_card",
		Status:        payment.StatusSucceeded,
		TransactionID: "tx-1",
	})
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}

	list, err := s.ListPayments(ctx, b.ID)
	if err != nil {
		t.Fatalf("list payments: %v", err)
	}
	if len(list) != 1 || list[0].ID != p.ID {
		t.Fatalf("unexpected payments %+v", list)
	}
}

func TestTrainingAndHealthRecords(t *testing.T) {
	s := New()
	ctx := context.Background()
	u := seedUser(t, s)

	if _, err := s.CreateTrainingRecord(ctx, training.Record{UserID: "missing"}); err == nil {
		t.Fatal("expected error for unknown user")
	}
	rec, err := s.CreateTrainingRecord(ctx, training.Record{
		UserID:         u.ID,
		TrainingType:   training.TypeZeroGravity,
		CompletionDate: time.Now(),
		Score:          87.5,
		Status:         "passed",
	})
	if err != nil {
		t.Fatalf("create training record: %v", err)
	}
	got, err := s.GetTrainingRecord(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get training record: %v", err)
	}
	if got.Score != 87.5 {
		t.Fatalf("score: got %f", got.Score)
	}

	first, err := s.CreateHealthRecord(ctx, health.Record{
		UserID:           u.ID,
		CheckDate:        time.Now().AddDate(0, 0, -2),
		BloodPressureSys: 150,
		BloodPressureDia: 95,
		HeartRate:        80,
	})
	if err != nil {
		t.Fatalf("create health record: %v", err)
	}
	second, err := s.CreateHealthRecord(ctx, health.Record{
		UserID:           u.ID,
		CheckDate:        time.Now(),
		BloodPressureSys: 120,
		BloodPressureDia: 78,
		HeartRate:        62,
	})
	if err != nil {
		t.Fatalf("create health record: %v", err)
	}
	_ = first

	latest, err := s.LatestHealthRecord(ctx, u.ID)
	if err != nil {
		t.Fatalf("latest health record: %v", err)
	}
	if latest.ID != second.ID {
		t.Fatalf("latest: got %q want %q", latest.ID, second.ID)
	}

	records, err := s.ListHealthRecords(ctx, u.ID)
	if err != nil {
		t.Fatalf("list health records: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records want 2", len(records))
	}
}
