package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeAuditSweep prunes audit records past the retention window.
	TaskTypeAuditSweep = "audit:sweep"
	// TaskTypeNightlyDigest mails coordinators a summary of open work.
	TaskTypeNightlyDigest = "digest:nightly"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// NewAuditSweepTask constructs the retention sweep task.
func NewAuditSweepTask() *asynq.Task {
	return asynq.NewTask(TaskTypeAuditSweep, nil)
}

// NewNightlyDigestTask constructs the digest task.
func NewNightlyDigestTask() *asynq.Task {
	return asynq.NewTask(TaskTypeNightlyDigest, nil)
}
