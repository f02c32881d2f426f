package hotel

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/animecon/volunteer-manager/internal/shared"
)

// Repository defines persistence operations for rooms and bookings.
type Repository interface {
	ListRooms(ctx context.Context, eventID int64) ([]Room, error)
	GetRoom(ctx context.Context, id int64) (Room, error)
	CreateRoom(ctx context.Context, room Room) (Room, error)
	DeleteRoom(ctx context.Context, id int64) error
	CreateBooking(ctx context.Context, booking Booking) (Booking, error)
	ListBookings(ctx context.Context, eventID int64) ([]Booking, error)
	CountOccupants(ctx context.Context, roomID int64) (int, error)
	CancelBooking(ctx context.Context, id, volunteerID int64) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// ListRooms returns all rooms of an event.
func (r *PGRepository) ListRooms(ctx context.Context, eventID int64) ([]Room, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, event_id, hotel, name, capacity, price_cents, created_at
		FROM hotel_rooms WHERE event_id = $1 ORDER BY hotel, name`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Room
	for rows.Next() {
		var (
			room      Room
			createdAt pgtype.Timestamptz
		)
		if err := rows.Scan(&room.ID, &room.EventID, &room.Hotel, &room.Name,
			&room.Capacity, &room.PriceCents, &createdAt); err != nil {
			return nil, err
		}
		room.CreatedAt = createdAt.Time
		result = append(result, room)
	}
	return result, rows.Err()
}

// GetRoom fetches a room by ID.
func (r *PGRepository) GetRoom(ctx context.Context, id int64) (Room, error) {
	var (
		room      Room
		createdAt pgtype.Timestamptz
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, event_id, hotel, name, capacity, price_cents, created_at
		FROM hotel_rooms WHERE id = $1`, id).
		Scan(&room.ID, &room.EventID, &room.Hotel, &room.Name,
			&room.Capacity, &room.PriceCents, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Room{}, shared.ErrNotFound
		}
		return Room{}, err
	}
	room.CreatedAt = createdAt.Time
	return room, nil
}

// CreateRoom inserts a room.
func (r *PGRepository) CreateRoom(ctx context.Context, room Room) (Room, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO hotel_rooms (event_id, hotel, name, capacity, price_cents)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		room.EventID, room.Hotel, room.Name, room.Capacity, room.PriceCents).
		Scan(&room.ID, &room.CreatedAt)
	return room, err
}

// DeleteRoom removes an unbooked room.
func (r *PGRepository) DeleteRoom(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM hotel_rooms
		WHERE id = $1 AND NOT EXISTS (
			SELECT 1 FROM hotel_bookings WHERE room_id = $1 AND cancelled_at IS NULL)`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CreateBooking inserts a booking. A unique constraint on room, volunteer
// and stay keeps retried submissions from double-booking.
func (r *PGRepository) CreateBooking(ctx context.Context, booking Booking) (Booking, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO hotel_bookings (event_id, room_id, volunteer_id, check_in, check_out, confirmed)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		booking.EventID, booking.RoomID, booking.VolunteerID,
		booking.CheckIn, booking.CheckOut, booking.Confirmed).
		Scan(&booking.ID, &booking.CreatedAt)
	if err != nil {
		if isStayConflict(err) {
			return Booking{}, ErrRoomUnavailable
		}
		return Booking{}, err
	}
	return booking, nil
}

// isStayConflict reports whether err is the unique-constraint violation
// raised when a volunteer already holds a booking for the same stay.
func isStayConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.ConstraintName == "uq_hotel_bookings_stay"
}

// ListBookings returns all live bookings of an event.
func (r *PGRepository) ListBookings(ctx context.Context, eventID int64) ([]Booking, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, event_id, room_id, volunteer_id, check_in, check_out, confirmed, created_at
		FROM hotel_bookings
		WHERE event_id = $1 AND cancelled_at IS NULL
		ORDER BY check_in, id`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Booking
	for rows.Next() {
		var (
			booking   Booking
			createdAt pgtype.Timestamptz
		)
		if err := rows.Scan(&booking.ID, &booking.EventID, &booking.RoomID,
			&booking.VolunteerID, &booking.CheckIn, &booking.CheckOut,
			&booking.Confirmed, &createdAt); err != nil {
			return nil, err
		}
		booking.CreatedAt = createdAt.Time
		result = append(result, booking)
	}
	return result, rows.Err()
}

// CountOccupants counts live bookings for a room.
func (r *PGRepository) CountOccupants(ctx context.Context, roomID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM hotel_bookings
		WHERE room_id = $1 AND cancelled_at IS NULL`, roomID).Scan(&count)
	return count, err
}

// CancelBooking soft-deletes the volunteer's own booking.
func (r *PGRepository) CancelBooking(ctx context.Context, id, volunteerID int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE hotel_bookings SET cancelled_at = NOW()
		WHERE id = $1 AND volunteer_id = $2 AND cancelled_at IS NULL`, id, volunteerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
