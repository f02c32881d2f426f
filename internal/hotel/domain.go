package hotel

import (
	"errors"
	"time"
)

var (
	// ErrRoomUnavailable indicates the room is already booked for an
	// overlapping stay.
	ErrRoomUnavailable = errors.New("hotel: room is no longer available")
	// ErrRoomFull indicates the room has reached its occupant capacity.
	ErrRoomFull = errors.New("hotel: room is at capacity")
	// ErrInvalidStay indicates check-out does not come after check-in.
	ErrInvalidStay = errors.New("hotel: check-out must come after check-in")
)

// Room is a bookable hotel room tied to an event.
type Room struct {
	ID       int64
	EventID  int64
	Hotel    string
	Name     string
	Capacity int
	// PriceCents is the nightly rate in euro cents.
	PriceCents int
	CreatedAt  time.Time
}

// Booking reserves a bed in a room for a volunteer's stay.
type Booking struct {
	ID          int64
	EventID     int64
	RoomID      int64
	VolunteerID int64
	CheckIn     time.Time
	CheckOut    time.Time
	Confirmed   bool
	CreatedAt   time.Time
}

// Nights returns the length of the stay.
func (b Booking) Nights() int {
	return int(b.CheckOut.Sub(b.CheckIn).Hours() / 24)
}
