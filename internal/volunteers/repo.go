package volunteers

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/animecon/volunteer-manager/internal/shared"
)

// Repository defines persistence operations for volunteer accounts.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Volunteer, int, error)
	Get(ctx context.Context, id int64) (Volunteer, error)
	UpdateProfile(ctx context.Context, id int64, name, phone string) (Volunteer, error)
	UpdateGrants(ctx context.Context, id int64, grants string) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const volunteerColumns = `id, email, name, COALESCE(phone, ''), COALESCE(grants, ''), is_active, created_at, updated_at`

// List returns a page of volunteers plus the unpaged total.
func (r *PGRepository) List(ctx context.Context, filter ListFilter) ([]Volunteer, int, error) {
	page := shared.NewPagination(filter.Page, filter.PerPage, 0)
	search := "%" + strings.TrimSpace(filter.Search) + "%"

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM volunteers WHERE name ILIKE $1 OR email ILIKE $1`, search).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+volunteerColumns+`
		FROM volunteers
		WHERE name ILIKE $1 OR email ILIKE $1
		ORDER BY name, id
		LIMIT $2 OFFSET $3`,
		search, page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Volunteer
	for rows.Next() {
		volunteer, err := scanVolunteer(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, volunteer)
	}
	return result, total, rows.Err()
}

// Get fetches a single volunteer by ID.
func (r *PGRepository) Get(ctx context.Context, id int64) (Volunteer, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+volunteerColumns+` FROM volunteers WHERE id = $1`, id)
	volunteer, err := scanVolunteer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Volunteer{}, shared.ErrNotFound
		}
		return Volunteer{}, err
	}
	return volunteer, nil
}

// UpdateProfile updates mutable profile fields.
func (r *PGRepository) UpdateProfile(ctx context.Context, id int64, name, phone string) (Volunteer, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE volunteers SET name = $2, phone = NULLIF($3, ''), updated_at = NOW()
		WHERE id = $1
		RETURNING `+volunteerColumns, id, name, phone)
	volunteer, err := scanVolunteer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Volunteer{}, shared.ErrNotFound
		}
		return Volunteer{}, err
	}
	return volunteer, nil
}

// UpdateGrants replaces the stored permission tokens. An empty grant string
// is stored as NULL.
func (r *PGRepository) UpdateGrants(ctx context.Context, id int64, grants string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE volunteers SET grants = $2, updated_at = NOW() WHERE id = $1`,
		id, pgtype.Text{String: grants, Valid: grants != ""})
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanVolunteer(row pgx.Row) (Volunteer, error) {
	var (
		volunteer Volunteer
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(&volunteer.ID, &volunteer.Email, &volunteer.Name, &volunteer.Phone,
		&volunteer.Grants, &volunteer.IsActive, &createdAt, &updatedAt); err != nil {
		return Volunteer{}, err
	}
	volunteer.CreatedAt = createdAt.Time
	volunteer.UpdatedAt = updatedAt.Time
	return volunteer, nil
}

var _ Repository = (*PGRepository)(nil)
