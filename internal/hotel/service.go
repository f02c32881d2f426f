package hotel

import (
	"context"
	"fmt"
	"strconv"

	"github.com/animecon/volunteer-manager/internal/shared"
)

// Service orchestrates room inventory and bookings.
type Service struct {
	repo  Repository
	audit *shared.AuditLogger
}

// NewService constructs a Service.
func NewService(repo Repository, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit}
}

// ListRooms returns the room inventory of an event.
func (s *Service) ListRooms(ctx context.Context, eventID int64) ([]Room, error) {
	return s.repo.ListRooms(ctx, eventID)
}

// CreateRoom adds a room to the inventory.
func (s *Service) CreateRoom(ctx context.Context, actorID int64, room Room) (Room, error) {
	if room.Capacity < 1 {
		return Room{}, fmt.Errorf("hotel: capacity must be at least 1")
	}
	if room.Hotel == "" || room.Name == "" {
		return Room{}, fmt.Errorf("hotel: hotel and room name required")
	}
	created, err := s.repo.CreateRoom(ctx, room)
	if err != nil {
		return Room{}, err
	}
	s.record(ctx, actorID, "hotel.room.create", created.ID, map[string]any{
		"hotel": created.Hotel,
		"name":  created.Name,
	})
	return created, nil
}

// DeleteRoom removes a room that has no live bookings.
func (s *Service) DeleteRoom(ctx context.Context, actorID, id int64) error {
	if err := s.repo.DeleteRoom(ctx, id); err != nil {
		return err
	}
	s.record(ctx, actorID, "hotel.room.delete", id, nil)
	return nil
}

// Book reserves a bed for a volunteer. Capacity is checked up front and the
// database constraint backstops racing bookings.
func (s *Service) Book(ctx context.Context, volunteerID int64, booking Booking) (Booking, error) {
	if !booking.CheckOut.After(booking.CheckIn) {
		return Booking{}, ErrInvalidStay
	}
	room, err := s.repo.GetRoom(ctx, booking.RoomID)
	if err != nil {
		return Booking{}, err
	}
	occupants, err := s.repo.CountOccupants(ctx, booking.RoomID)
	if err != nil {
		return Booking{}, err
	}
	if occupants >= room.Capacity {
		return Booking{}, ErrRoomFull
	}

	booking.EventID = room.EventID
	booking.VolunteerID = volunteerID
	created, err := s.repo.CreateBooking(ctx, booking)
	if err != nil {
		return Booking{}, err
	}
	s.record(ctx, volunteerID, "hotel.booking.create", created.ID, map[string]any{
		"roomId": created.RoomID,
		"nights": created.Nights(),
	})
	return created, nil
}

// Cancel withdraws the volunteer's own booking.
func (s *Service) Cancel(ctx context.Context, volunteerID, id int64) error {
	if err := s.repo.CancelBooking(ctx, id, volunteerID); err != nil {
		return err
	}
	s.record(ctx, volunteerID, "hotel.booking.cancel", id, nil)
	return nil
}

// Bookings returns the live bookings of an event.
func (s *Service) Bookings(ctx context.Context, eventID int64) ([]Booking, error) {
	return s.repo.ListBookings(ctx, eventID)
}

func (s *Service) record(ctx context.Context, actorID int64, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "hotel",
		EntityID: strconv.FormatInt(entityID, 10),
		Meta:     meta,
	})
}
