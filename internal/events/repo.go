package events

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/animecon/volunteer-manager/internal/shared"
)

// Repository defines persistence operations for events.
type Repository interface {
	List(ctx context.Context, includeHidden bool) ([]Event, error)
	GetBySlug(ctx context.Context, slug string) (Event, error)
	Create(ctx context.Context, event Event) (Event, error)
	Update(ctx context.Context, event Event) (Event, error)
	Stats(ctx context.Context, eventID int64) (Stats, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const eventColumns = `id, slug, name, COALESCE(location, ''), start_time, end_time, hidden,
	applications_start, applications_end, applications_override,
	schedule_start, schedule_end, schedule_override,
	created_at, updated_at`

// List returns events ordered by start time, newest first. Hidden events are
// filtered out unless includeHidden is set.
func (r *PGRepository) List(ctx context.Context, includeHidden bool) ([]Event, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE hidden = false OR $1
		ORDER BY start_time DESC`, includeHidden)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, event)
	}
	return result, rows.Err()
}

// GetBySlug fetches a single event by its URL slug.
func (r *PGRepository) GetBySlug(ctx context.Context, slug string) (Event, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE slug = $1`, slug)
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Event{}, shared.ErrNotFound
		}
		return Event{}, err
	}
	return event, nil
}

// Create inserts a new event.
func (r *PGRepository) Create(ctx context.Context, event Event) (Event, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO events (slug, name, location, start_time, end_time, hidden,
			applications_start, applications_end, applications_override,
			schedule_start, schedule_end, schedule_override)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+eventColumns,
		event.Slug, event.Name, event.Location, event.StartTime, event.EndTime, event.Hidden,
		nullableTime(event.ApplicationsStart), nullableTime(event.ApplicationsEnd), event.ApplicationsOverride,
		nullableTime(event.ScheduleStart), nullableTime(event.ScheduleEnd), event.ScheduleOverride)
	return scanEvent(row)
}

// Update replaces the mutable fields of an existing event.
func (r *PGRepository) Update(ctx context.Context, event Event) (Event, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE events SET name = $2, location = NULLIF($3, ''), start_time = $4, end_time = $5,
			hidden = $6,
			applications_start = $7, applications_end = $8, applications_override = $9,
			schedule_start = $10, schedule_end = $11, schedule_override = $12,
			updated_at = NOW()
		WHERE slug = $1
		RETURNING `+eventColumns,
		event.Slug, event.Name, event.Location, event.StartTime, event.EndTime, event.Hidden,
		nullableTime(event.ApplicationsStart), nullableTime(event.ApplicationsEnd), event.ApplicationsOverride,
		nullableTime(event.ScheduleStart), nullableTime(event.ScheduleEnd), event.ScheduleOverride)
	updated, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Event{}, shared.ErrNotFound
		}
		return Event{}, err
	}
	return updated, nil
}

// Stats aggregates dashboard counters for a single event.
func (r *PGRepository) Stats(ctx context.Context, eventID int64) (Stats, error) {
	var stats Stats
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM applications WHERE event_id = $1),
			(SELECT COUNT(*) FROM applications WHERE event_id = $1 AND status = 'accepted'),
			(SELECT COUNT(*) FROM hotel_bookings WHERE event_id = $1)`,
		eventID).Scan(&stats.Applications, &stats.Accepted, &stats.HotelRooms)
	return stats, err
}

func scanEvent(row pgx.Row) (Event, error) {
	var (
		event            Event
		appStart, appEnd pgtype.Timestamptz
		schStart, schEnd pgtype.Timestamptz
		createdAt        pgtype.Timestamptz
		updatedAt        pgtype.Timestamptz
	)
	if err := row.Scan(&event.ID, &event.Slug, &event.Name, &event.Location,
		&event.StartTime, &event.EndTime, &event.Hidden,
		&appStart, &appEnd, &event.ApplicationsOverride,
		&schStart, &schEnd, &event.ScheduleOverride,
		&createdAt, &updatedAt); err != nil {
		return Event{}, err
	}
	event.ApplicationsStart = appStart.Time
	event.ApplicationsEnd = appEnd.Time
	event.ScheduleStart = schStart.Time
	event.ScheduleEnd = schEnd.Time
	event.CreatedAt = createdAt.Time
	event.UpdatedAt = updatedAt.Time
	return event, nil
}

// nullableTime maps the zero time to NULL so unset windows stay open-ended.
func nullableTime(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: !t.IsZero()}
}

var _ Repository = (*PGRepository)(nil)
