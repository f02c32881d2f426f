package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/animecon/volunteer-manager/internal/jobs"
)

// Mailer sends transactional email over SMTP.
type Mailer struct {
	Host   string
	Port   int
	From   string
	Logger *slog.Logger

	// send is swapped out in tests.
	send func(addr, from string, to []string, msg []byte) error
}

// NewMailer constructs a Mailer.
func NewMailer(host string, port int, from string, logger *slog.Logger) *Mailer {
	return &Mailer{
		Host: host, Port: port, From: from, Logger: logger,
		send: func(addr, from string, to []string, msg []byte) error {
			return smtp.SendMail(addr, nil, from, to, msg)
		},
	}
}

// Send delivers one message.
func (m *Mailer) Send(payload SendEmailPayload) error {
	if m == nil || m.Host == "" {
		return errors.New("mailer: not configured")
	}
	if payload.To == "" {
		return errors.New("mailer: recipient required")
	}
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.From)
	fmt.Fprintf(&msg, "To: %s\r\n", payload.To)
	fmt.Fprintf(&msg, "Subject: %s\r\n", payload.Subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(payload.Body)

	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	return m.send(addr, m.From, []string{payload.To}, []byte(msg.String()))
}

// SendEmailJob processes queued email tasks.
type SendEmailJob struct {
	Mailer  *Mailer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// Handle executes one send-email task.
func (j *SendEmailJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Mailer == nil {
		return errors.New("send email: handler not configured")
	}
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	tracker := j.Metrics.Track("send_email")
	err := j.Mailer.Send(payload)
	if err != nil {
		j.Metrics.AddEmail("failure")
		if j.Logger != nil {
			j.Logger.Error("send email", slog.String("to", payload.To), slog.Any("error", err))
		}
		return tracker.End(err)
	}
	j.Metrics.AddEmail("success")
	if j.Logger != nil {
		j.Logger.Info("sent email", slog.String("to", payload.To), slog.String("subject", payload.Subject))
	}
	return tracker.End(nil)
}
