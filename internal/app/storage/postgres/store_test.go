package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/nekoneko-space/travel-platform/internal/app/domain/booking"
	"github.com/nekoneko-space/travel-platform/internal/app/domain/user"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

func TestCreateUser(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(sqlmock.AnyArg(), "taro@example.com", "hash", "Taro", "Yamada", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	u, err := store.CreateUser(context.Background(), user.User{
		Email:        "taro@example.com",
		PasswordHash: "hash",
		FirstName:    "Taro",
		LastName:     "Yamada",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID == "" {
		t.Fatal("id not assigned")
	}
	if u.CreatedAt.IsZero() || u.UpdatedAt.IsZero() {
		t.Fatal("timestamps not assigned")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetUser(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "first_name", "last_name", "created_at", "updated_at"}).
		AddRow("u-1", "taro@example.com", "hash", "Taro", "Yamada", now, now)
	mock.ExpectQuery(`SELECT id, email, password_hash, first_name, last_name, created_at, updated_at\s+FROM users\s+WHERE id = \$1`).
		WithArgs("u-1").
		WillReturnRows(rows)

	u, err := store.GetUser(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Email != "taro@example.com" {
		t.Fatalf("email: got %q", u.Email)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetUserNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT .* FROM users`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := store.GetUser(context.Background(), "missing")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("want sql.ErrNoRows, got %v", err)
	}
}

func TestUpdateBookingMissingRow(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "user_id", "destination", "package_type", "departure_date", "return_date", "passengers", "total_price", "status", "created_at", "updated_at"}).
		AddRow("b-1", "u-1", "moon", "economy", now, now.AddDate(0, 0, 3), 1, int64(3_000_000), "pending", now, now)
	mock.ExpectQuery(`SELECT .* FROM bookings`).
		WithArgs("b-1").
		WillReturnRows(rows)

	// The row vanishes between read and write.
	mock.ExpectExec(`UPDATE bookings`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := store.UpdateBooking(context.Background(), booking.Booking{
		ID:          "b-1",
		Destination: "moon",
		PackageType: "economy",
		Status:      booking.StatusConfirmed,
	})
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("want sql.ErrNoRows, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListBookings(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "user_id", "destination", "package_type", "departure_date", "return_date", "passengers", "total_price", "status", "created_at", "updated_at"}).
		AddRow("b-1", "u-1", "moon", "economy", now, now.AddDate(0, 0, 3), 1, int64(3_000_000), "pending", now, now).
		AddRow("b-2", "u-1", "mars", "first", now, now.AddDate(0, 0, 30), 2, int64(600_000_000), "confirmed", now, now)
	mock.ExpectQuery(`SELECT .* FROM bookings`).
		WithArgs("u-1").
		WillReturnRows(rows)

	list, err := store.ListBookings(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d bookings want 2", len(list))
	}
	if list[1].Status != booking.StatusConfirmed {
		t.Fatalf("status: got %s", list[1].Status)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestLatestHealthRecordOrdersByCheckDate(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "user_id", "health_check_date", "blood_pressure_sys", "blood_pressure_dia", "heart_rate", "weight", "height", "notes", "created_at", "updated_at"}).
		AddRow("h-2", "u-1", now, 120, 80, 62, 70.0, 172.0, "", now, now)
	mock.ExpectQuery(`ORDER BY health_check_date DESC\s+LIMIT 1`).
		WithArgs("u-1").
		WillReturnRows(rows)

	rec, err := store.LatestHealthRecord(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID != "h-2" {
		t.Fatalf("id: got %q", rec.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
