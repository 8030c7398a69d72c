package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/nekoneko-space/travel-platform/internal/app/domain/booking"
	"github.com/nekoneko-space/travel-platform/internal/app/domain/health"
	"github.com/nekoneko-space/travel-platform/internal/app/domain/payment"
	"github.com/nekoneko-space/travel-platform/internal/app/domain/training"
	"github.com/nekoneko-space/travel-platform/internal/app/domain/user"
	"github.com/nekoneko-space/travel-platform/internal/app/storage"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.BookingStore = (*Store)(nil)
var _ storage.TrainingStore = (*Store)(nil)
var _ storage.HealthStore = (*Store)(nil)
var _ storage.PaymentStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// --- UserStore --------------------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, first_name, last_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return user.User{}, err
	}
	return u, nil
}

func (s *Store) UpdateUser(ctx context.Context, u user.User) (user.User, error) {
	existing, err := s.GetUser(ctx, u.ID)
	if err != nil {
		return user.User{}, err
	}

	u.CreatedAt = existing.CreatedAt
	u.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET email = $2, password_hash = $3, first_name = $4, last_name = $5, updated_at = $6
		WHERE id = $1
	`, u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.UpdatedAt)
	if err != nil {
		return user.User{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return user.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (user.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, first_name, last_name, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, first_name, last_name, created_at, updated_at
		FROM users
		WHERE lower(email) = lower($1)
	`, email))
}

func (s *Store) scanUser(row *sql.Row) (user.User, error) {
	var u user.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return user.User{}, err
	}
	return u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]user.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, password_hash, first_name, last_name, created_at, updated_at
		FROM users
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []user.User
	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

// --- BookingStore -----------------------------------------------------------

func (s *Store) CreateBooking(ctx context.Context, b booking.Booking) (booking.Booking, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bookings (id, user_id, destination, package_type, departure_date, return_date, passengers, total_price, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, b.ID, b.UserID, b.Destination, b.PackageType, b.DepartureDate, b.ReturnDate, b.Passengers, b.TotalPrice, string(b.Status), b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return booking.Booking{}, err
	}
	return b, nil
}

func (s *Store) UpdateBooking(ctx context.Context, b booking.Booking) (booking.Booking, error) {
	existing, err := s.GetBooking(ctx, b.ID)
	if err != nil {
		return booking.Booking{}, err
	}

	b.UserID = existing.UserID
	b.CreatedAt = existing.CreatedAt
	b.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE bookings
		SET destination = $2, package_type = $3, departure_date = $4, return_date = $5, passengers = $6, total_price = $7, status = $8, updated_at = $9
		WHERE id = $1
	`, b.ID, b.Destination, b.PackageType, b.DepartureDate, b.ReturnDate, b.Passengers, b.TotalPrice, string(b.Status), b.UpdatedAt)
	if err != nil {
		return booking.Booking{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return booking.Booking{}, sql.ErrNoRows
	}
	return b, nil
}

func (s *Store) GetBooking(ctx context.Context, id string) (booking.Booking, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, destination, package_type, departure_date, return_date, passengers, total_price, status, created_at, updated_at
		FROM bookings
		WHERE id = $1
	`, id)

	var (
		b      booking.Booking
		status string
	)
	if err := row.Scan(&b.ID, &b.UserID, &b.Destination, &b.PackageType, &b.DepartureDate, &b.ReturnDate, &b.Passengers, &b.TotalPrice, &status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return booking.Booking{}, err
	}
	b.Status = booking.Status(status)
	return b, nil
}

func (s *Store) ListBookings(ctx context.Context, userID string) ([]booking.Booking, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, destination, package_type, departure_date, return_date, passengers, total_price, status, created_at, updated_at
		FROM bookings
		WHERE $1 = '' OR user_id = $1
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []booking.Booking
	for rows.Next() {
		var (
			b      booking.Booking
			status string
		)
		if err := rows.Scan(&b.ID, &b.UserID, &b.Destination, &b.PackageType, &b.DepartureDate, &b.ReturnDate, &b.Passengers, &b.TotalPrice, &status, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		b.Status = booking.Status(status)
		result = append(result, b)
	}
	return result, rows.Err()
}

// --- TrainingStore ----------------------------------------------------------

func (s *Store) CreateTrainingRecord(ctx context.Context, rec training.Record) (training.Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	var completion sql.NullTime
	if !rec.CompletionDate.IsZero() {
		completion = sql.NullTime{Time: rec.CompletionDate, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO training_records (id, user_id, training_type, completion_date, score, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, rec.ID, rec.UserID, string(rec.TrainingType), completion, rec.Score, rec.Status, rec.Notes, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return training.Record{}, err
	}
	return rec, nil
}

func (s *Store) GetTrainingRecord(ctx context.Context, id string) (training.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, training_type, completion_date, score, status, notes, created_at, updated_at
		FROM training_records
		WHERE id = $1
	`, id)
	return scanTrainingRecord(row.Scan)
}

func (s *Store) ListTrainingRecords(ctx context.Context, userID string) ([]training.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, training_type, completion_date, score, status, notes, created_at, updated_at
		FROM training_records
		WHERE $1 = '' OR user_id = $1
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []training.Record
	for rows.Next() {
		rec, err := scanTrainingRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

func scanTrainingRecord(scan func(...any) error) (training.Record, error) {
	var (
		rec        training.Record
		trType     string
		completion sql.NullTime
	)
	if err := scan(&rec.ID, &rec.UserID, &trType, &completion, &rec.Score, &rec.Status, &rec.Notes, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return training.Record{}, err
	}
	rec.TrainingType = training.Type(trType)
	if completion.Valid {
		rec.CompletionDate = completion.Time
	}
	return rec, nil
}

// --- HealthStore ------------------------------------------------------------

func (s *Store) CreateHealthRecord(ctx context.Context, rec health.Record) (health.Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	if rec.CheckDate.IsZero() {
		rec.CheckDate = now
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO health_records (id, user_id, health_check_date, blood_pressure_sys, blood_pressure_dia, heart_rate, weight, height, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, rec.ID, rec.UserID, rec.CheckDate, rec.BloodPressureSys, rec.BloodPressureDia, rec.HeartRate, rec.Weight, rec.Height, rec.Notes, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return health.Record{}, err
	}
	return rec, nil
}

func (s *Store) GetHealthRecord(ctx context.Context, id string) (health.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, health_check_date, blood_pressure_sys, blood_pressure_dia, heart_rate, weight, height, notes, created_at, updated_at
		FROM health_records
		WHERE id = $1
	`, id)
	return scanHealthRecord(row.Scan)
}

func (s *Store) LatestHealthRecord(ctx context.Context, userID string) (health.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, health_check_date, blood_pressure_sys, blood_pressure_dia, heart_rate, weight, height, notes, created_at, updated_at
		FROM health_records
		WHERE user_id = $1
		ORDER BY health_check_date DESC
		LIMIT 1
	`, userID)
	return scanHealthRecord(row.Scan)
}

func (s *Store) ListHealthRecords(ctx context.Context, userID string) ([]health.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, health_check_date, blood_pressure_sys, blood_pressure_dia, heart_rate, weight, height, notes, created_at, updated_at
		FROM health_records
		WHERE $1 = '' OR user_id = $1
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []health.Record
	for rows.Next() {
		rec, err := scanHealthRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

func scanHealthRecord(scan func(...any) error) (health.Record, error) {
	var rec health.Record
	if err := scan(&rec.ID, &rec.UserID, &rec.CheckDate, &rec.BloodPressureSys, &rec.BloodPressureDia, &rec.HeartRate, &rec.Weight, &rec.Height, &rec.Notes, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return health.Record{}, err
	}
	return rec, nil
}

// --- PaymentStore -----------------------------------------------------------

func (s *Store) CreatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payments (id, booking_id, amount, payment_method, status, transaction_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, p.ID, p.BookingID, p.Amount, p.PaymentMethod, string(p.Status), p.TransactionID, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return payment.Payment{}, err
	}
	return p, nil
}

func (s *Store) UpdatePayment(ctx context.Context, p payment.Payment) (payment.Payment, error) {
	existing, err := s.GetPayment(ctx, p.ID)
	if err != nil {
		return payment.Payment{}, err
	}

	p.BookingID = existing.BookingID
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE payments
		SET amount = $2, payment_method = $3, status = $4, transaction_id = $5, updated_at = $6
		WHERE id = $1
	`, p.ID, p.Amount, p.PaymentMethod, string(p.Status), p.TransactionID, p.UpdatedAt)
	if err != nil {
		return payment.Payment{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return payment.Payment{}, sql.ErrNoRows
	}
	return p, nil
}

func (s *Store) GetPayment(ctx context.Context, id string) (payment.Payment, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, booking_id, amount, payment_method, status, transaction_id, created_at, updated_at
		FROM payments
		WHERE id = $1
	`, id)

	var (
		p      payment.Payment
		status string
	)
	if err := row.Scan(&p.ID, &p.BookingID, &p.Amount, &p.PaymentMethod, &status, &p.TransactionID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return payment.Payment{}, err
	}
	p.Status = payment.Status(status)
	return p, nil
}

func (s *Store) ListPayments(ctx context.Context, bookingID string) ([]payment.Payment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, booking_id, amount, payment_method, status, transaction_id, created_at, updated_at
		FROM payments
		WHERE $1 = '' OR booking_id = $1
		ORDER BY created_at
	`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []payment.Payment
	for rows.Next() {
		var (
			p      payment.Payment
			status string
		)
		if err := rows.Scan(&p.ID, &p.BookingID, &p.Amount, &p.PaymentMethod, &status, &p.TransactionID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.Status = payment.Status(status)
		result = append(result, p)
	}
	return result, rows.Err()
}
