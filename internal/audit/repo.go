package audit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Timeline reads filtered audit records, newest first.
func (r *PGRepository) Timeline(ctx context.Context, filters TimelineFilters, limit, offset int) ([]TimelineRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT occurred_at, actor_id, action, entity, entity_id, COALESCE(meta::text, '')
		FROM audit_logs
		WHERE ($1::timestamptz IS NULL OR occurred_at >= $1)
		  AND ($2::timestamptz IS NULL OR occurred_at < $2)
		  AND ($3 = 0 OR actor_id = $3)
		  AND ($4 = '' OR entity = $4)
		  AND ($5 = '' OR action = $5)
		ORDER BY occurred_at DESC, id DESC
		LIMIT $6 OFFSET $7`,
		toPgTime(filters.From), toPgTime(filters.To),
		filters.ActorID, filters.Entity, filters.Action,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []TimelineRow
	for rows.Next() {
		var (
			row TimelineRow
			at  pgtype.Timestamptz
		)
		if err := rows.Scan(&at, &row.ActorID, &row.Action, &row.Entity, &row.EntityID, &row.Meta); err != nil {
			return nil, err
		}
		row.At = at.Time
		result = append(result, row)
	}
	return result, rows.Err()
}

// Purge deletes audit records older than the given number of days.
func (r *PGRepository) Purge(ctx context.Context, olderThanDays int) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		fmt.Sprintf(`DELETE FROM audit_logs WHERE occurred_at < NOW() - INTERVAL '%s days'`,
			strconv.Itoa(olderThanDays)))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func toPgTime(t time.Time) pgtype.Timestamptz {
	if t.IsZero() {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: t, Valid: true}
}

var _ Repository = (*PGRepository)(nil)
