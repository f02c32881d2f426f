package shared

import "errors"

var (
	// ErrNotFound is returned when a volunteer, event or other record
	// does not exist or is not visible to the caller.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidCredentials is returned for a failed login attempt.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrCSRFTokenMissing is returned when a mutating request carries no token.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch is returned when the token does not match the session.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)
