package applications

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/animecon/volunteer-manager/internal/shared"
)

// Repository defines persistence operations for applications.
type Repository interface {
	Create(ctx context.Context, application Application) (Application, error)
	Get(ctx context.Context, id int64) (Application, error)
	GetByVolunteer(ctx context.Context, eventID, volunteerID int64) (Application, error)
	List(ctx context.Context, filter ListFilter) ([]Application, int, error)
	UpdateStatus(ctx context.Context, id int64, from, to Status, decidedBy int64) (Application, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const applicationColumns = `id, event_id, volunteer_id, status, COALESCE(motivation, ''),
	COALESCE(tshirt_size, ''), preferred_hours, COALESCE(decided_by, 0), decided_at,
	created_at, updated_at`

// Create inserts a pending application.
func (r *PGRepository) Create(ctx context.Context, application Application) (Application, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO applications (event_id, volunteer_id, status, motivation, tshirt_size, preferred_hours)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6)
		RETURNING `+applicationColumns,
		application.EventID, application.VolunteerID, StatusPending,
		application.Motivation, application.TShirtSize, application.PreferredHours)
	return scanApplication(row)
}

// Get fetches an application by ID.
func (r *PGRepository) Get(ctx context.Context, id int64) (Application, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	application, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Application{}, shared.ErrNotFound
		}
		return Application{}, err
	}
	return application, nil
}

// GetByVolunteer fetches the volunteer's application for an event, if any.
func (r *PGRepository) GetByVolunteer(ctx context.Context, eventID, volunteerID int64) (Application, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+applicationColumns+`
		FROM applications WHERE event_id = $1 AND volunteer_id = $2`, eventID, volunteerID)
	application, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Application{}, shared.ErrNotFound
		}
		return Application{}, err
	}
	return application, nil
}

// List returns a filtered page of applications plus the unpaged total.
func (r *PGRepository) List(ctx context.Context, filter ListFilter) ([]Application, int, error) {
	page := shared.NewPagination(filter.Page, filter.PerPage, 0)

	var total int
	if err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM applications
		WHERE event_id = $1 AND ($2 = '' OR status = $2)`,
		filter.EventID, string(filter.Status)).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+applicationColumns+`
		FROM applications
		WHERE event_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at, id
		LIMIT $3 OFFSET $4`,
		filter.EventID, string(filter.Status), page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Application
	for rows.Next() {
		application, err := scanApplication(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, application)
	}
	return result, total, rows.Err()
}

// UpdateStatus moves an application between states. The expected current
// status guards against racing decisions.
func (r *PGRepository) UpdateStatus(ctx context.Context, id int64, from, to Status, decidedBy int64) (Application, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE applications
		SET status = $3, decided_by = NULLIF($4, 0), decided_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING `+applicationColumns, id, from, to, decidedBy)
	application, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Either the row is missing or it is no longer in the
			// expected state.
			if _, getErr := r.Get(ctx, id); errors.Is(getErr, shared.ErrNotFound) {
				return Application{}, shared.ErrNotFound
			}
			return Application{}, ErrInvalidTransition
		}
		return Application{}, err
	}
	return application, nil
}

func scanApplication(row pgx.Row) (Application, error) {
	var (
		application Application
		decidedAt   pgtype.Timestamptz
		createdAt   pgtype.Timestamptz
		updatedAt   pgtype.Timestamptz
	)
	if err := row.Scan(&application.ID, &application.EventID, &application.VolunteerID,
		&application.Status, &application.Motivation, &application.TShirtSize,
		&application.PreferredHours, &application.DecidedBy, &decidedAt,
		&createdAt, &updatedAt); err != nil {
		return Application{}, err
	}
	application.DecidedAt = decidedAt.Time
	application.CreatedAt = createdAt.Time
	application.UpdatedAt = updatedAt.Time
	return application, nil
}

var _ Repository = (*PGRepository)(nil)
