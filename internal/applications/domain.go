package applications

import (
	"errors"
	"time"
)

// Status tracks the lifecycle of a volunteer application.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether the status is one of the known values.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

var (
	// ErrApplicationsClosed indicates the event is not accepting
	// applications at this time.
	ErrApplicationsClosed = errors.New("applications: event is not accepting applications")
	// ErrAlreadyApplied indicates the volunteer already has an
	// application for the event.
	ErrAlreadyApplied = errors.New("applications: volunteer already applied to this event")
	// ErrInvalidTransition indicates a decision on a non-pending
	// application.
	ErrInvalidTransition = errors.New("applications: only pending applications can be decided")
)

// Application is a volunteer's request to help out at an event.
type Application struct {
	ID          int64
	EventID     int64
	VolunteerID int64
	Status      Status
	Motivation  string
	TShirtSize  string
	// PreferredHours is the number of shift hours the volunteer wants
	// per day.
	PreferredHours int
	DecidedBy      int64
	DecidedAt      time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ListFilter narrows application listings.
type ListFilter struct {
	EventID int64
	Status  Status
	Page    int
	PerPage int
}
