// Package users manages traveller registration and credential checks.
package users

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/nekoneko-space/travel-platform/internal/app/domain/user"
	"github.com/nekoneko-space/travel-platform/internal/app/metrics"
	"github.com/nekoneko-space/travel-platform/internal/app/storage"
	"github.com/nekoneko-space/travel-platform/pkg/logger"
)

// Service manages traveller accounts.
type Service struct {
	store storage.UserStore
	log   *logger.Logger
}

// New constructs a user service.
func New(store storage.UserStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("users")
	}
	return &Service{store: store, log: log}
}

// Register creates a traveller account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, email, password, firstName, lastName string) (user.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)

	if email == "" || !strings.Contains(email, "@") {
		return user.User{}, fmt.Errorf("a valid email is required")
	}
	if len(password) < 8 {
		return user.User{}, fmt.Errorf("password must be at least 8 characters")
	}
	if firstName == "" || lastName == "" {
		return user.User{}, fmt.Errorf("first_name and last_name are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return user.User{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.store.CreateUser(ctx, user.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    firstName,
		LastName:     lastName,
	})
	if err != nil {
		return user.User{}, err
	}

	if all, err := s.store.ListUsers(ctx); err == nil {
		metrics.SetActiveUsers(len(all))
	}

	s.log.WithField("user_id", u.ID).Info("user registered")
	return u, nil
}

// Authenticate verifies a traveller's credentials and returns the account.
func (s *Service) Authenticate(ctx context.Context, email, password string) (user.User, error) {
	u, err := s.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return user.User{}, fmt.Errorf("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return user.User{}, fmt.Errorf("invalid credentials")
	}
	return u, nil
}

// Get retrieves an account by id.
func (s *Service) Get(ctx context.Context, id string) (user.User, error) {
	return s.store.GetUser(ctx, id)
}

// List returns all accounts.
func (s *Service) List(ctx context.Context) ([]user.User, error) {
	return s.store.ListUsers(ctx)
}
