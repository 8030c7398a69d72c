package user

import "time"

// User represents a registered traveller.
type User struct {
	ID           string
	Email        string
	PasswordHash string `json:"-"`
	FirstName    string
	LastName     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
