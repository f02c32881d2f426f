package events

import (
	"time"

	"github.com/animecon/volunteer-manager/internal/schedule"
)

// Event represents a convention edition volunteers can sign up for.
type Event struct {
	ID        int64
	Slug      string
	Name      string
	Location  string
	StartTime time.Time
	EndTime   time.Time
	// Hidden events are only visible to volunteers holding event.visible.
	Hidden bool

	// Applications window gates when volunteers may apply. Override
	// forces the window open regardless of timing.
	ApplicationsStart    time.Time
	ApplicationsEnd      time.Time
	ApplicationsOverride bool

	// Schedule window gates when volunteers can see their shifts.
	ScheduleStart    time.Time
	ScheduleEnd      time.Time
	ScheduleOverride bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Availability summarises the state of the event's gated features.
type Availability struct {
	Applications schedule.AvailabilityStatus `json:"applications"`
	Schedule     schedule.AvailabilityStatus `json:"schedule"`
}

// AvailabilityAt computes the availability of all gated features at the
// given moment.
func (e Event) AvailabilityAt(now time.Time) Availability {
	return Availability{
		Applications: schedule.DetermineAvailabilityStatus(now,
			schedule.Window{Start: e.ApplicationsStart, End: e.ApplicationsEnd},
			e.EndTime, e.ApplicationsOverride),
		Schedule: schedule.DetermineAvailabilityStatus(now,
			schedule.Window{Start: e.ScheduleStart, End: e.ScheduleEnd},
			e.EndTime, e.ScheduleOverride),
	}
}

// Stats aggregates headline numbers for the event dashboard.
type Stats struct {
	Applications int `json:"applications"`
	Accepted     int `json:"accepted"`
	HotelRooms   int `json:"hotelRooms"`
}
