package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/animecon/volunteer-manager/internal/audit"
	jobmetrics "github.com/animecon/volunteer-manager/internal/jobs"
	"github.com/animecon/volunteer-manager/internal/shared"
)

// AuditSweepJob prunes audit records and stale idempotency keys past the
// retention window.
type AuditSweepJob struct {
	Audit         *audit.Service
	Idempotency   *shared.IdempotencyStore
	RetentionDays int
	Logger        *slog.Logger
	Metrics       *jobmetrics.Metrics
}

// Handle executes one retention sweep.
func (j *AuditSweepJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Audit == nil {
		return errors.New("audit sweep: handler not configured")
	}
	tracker := j.Metrics.Track("audit_sweep")

	removed, err := j.Audit.Purge(ctx, j.RetentionDays)
	if err != nil {
		return tracker.End(err)
	}
	if j.Idempotency != nil {
		retention := time.Duration(j.RetentionDays) * 24 * time.Hour
		if err := j.Idempotency.Cleanup(ctx, retention); err != nil {
			return tracker.End(err)
		}
	}
	if j.Logger != nil {
		j.Logger.Info("audit sweep complete",
			slog.Int64("removed", removed),
			slog.Int("retention_days", j.RetentionDays))
	}
	return tracker.End(nil)
}
