package auth

import "time"

// User represents an authenticated volunteer account.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	// Grants is the flattened permission token string, empty for
	// volunteers without any elevated access.
	Grants    string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
