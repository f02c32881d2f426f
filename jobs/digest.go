package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/animecon/volunteer-manager/internal/jobs"
)

// NightlyDigestJob mails coordinators a summary of pending applications for
// events whose application window is open.
type NightlyDigestJob struct {
	Pool       *pgxpool.Pool
	Recipients []string
	Enqueuer   *Client
	Logger     *slog.Logger
	Metrics    *jobmetrics.Metrics
}

type digestLine struct {
	eventName string
	pending   int
}

// Handle executes one digest run.
func (j *NightlyDigestJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Pool == nil || j.Enqueuer == nil {
		return errors.New("nightly digest: handler not configured")
	}
	tracker := j.Metrics.Track("nightly_digest")

	lines, err := j.collect(ctx)
	if err != nil {
		return tracker.End(err)
	}
	if len(lines) == 0 {
		if j.Logger != nil {
			j.Logger.Info("nightly digest: nothing pending")
		}
		return tracker.End(nil)
	}

	var body strings.Builder
	body.WriteString("Pending volunteer applications:\n\n")
	for _, line := range lines {
		fmt.Fprintf(&body, "  %s: %d pending\n", line.eventName, line.pending)
	}

	for _, recipient := range j.Recipients {
		if _, err := j.Enqueuer.EnqueueSendEmail(ctx, SendEmailPayload{
			To:      recipient,
			Subject: "Volunteer applications digest",
			Body:    body.String(),
		}); err != nil {
			return tracker.End(err)
		}
	}
	return tracker.End(nil)
}

func (j *NightlyDigestJob) collect(ctx context.Context) ([]digestLine, error) {
	rows, err := j.Pool.Query(ctx, `
		SELECT e.name, COUNT(*)
		FROM applications a
		JOIN events e ON e.id = a.event_id
		WHERE a.status = 'pending'
		GROUP BY e.name
		ORDER BY e.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []digestLine
	for rows.Next() {
		var line digestLine
		if err := rows.Scan(&line.eventName, &line.pending); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}
