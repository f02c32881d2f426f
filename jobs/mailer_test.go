package jobs

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

func testMailer(sent *[][]byte) *Mailer {
	m := NewMailer("localhost", 1025, "noreply@animecon.nl", nil)
	m.send = func(addr, from string, to []string, msg []byte) error {
		*sent = append(*sent, msg)
		return nil
	}
	return m
}

func TestMailerFormatsMessage(t *testing.T) {
	var sent [][]byte
	m := testMailer(&sent)

	err := m.Send(SendEmailPayload{
		To:      "volunteer@example.com",
		Subject: "Application received",
		Body:    "Thank you for applying.",
	})
	require.NoError(t, err)
	require.Len(t, sent, 1)

	msg := string(sent[0])
	require.Contains(t, msg, "From: noreply@animecon.nl\r\n")
	require.Contains(t, msg, "To: volunteer@example.com\r\n")
	require.Contains(t, msg, "Subject: Application received\r\n")
	require.Contains(t, msg, "\r\n\r\nThank you for applying.")
}

func TestMailerRequiresRecipient(t *testing.T) {
	var sent [][]byte
	m := testMailer(&sent)

	require.Error(t, m.Send(SendEmailPayload{Subject: "no recipient"}))
	require.Empty(t, sent)
}

func TestSendEmailJobSkipsBadPayload(t *testing.T) {
	var sent [][]byte
	job := &SendEmailJob{Mailer: testMailer(&sent)}

	task := asynq.NewTask(TaskTypeSendEmail, []byte("{not json"))
	err := job.Handle(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry)
	require.Empty(t, sent)
}

func TestSendEmailJobDelivers(t *testing.T) {
	var sent [][]byte
	job := &SendEmailJob{Mailer: testMailer(&sent)}

	payload, err := json.Marshal(SendEmailPayload{To: "a@b.nl", Subject: "hi", Body: "x"})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), asynq.NewTask(TaskTypeSendEmail, payload)))
	require.Len(t, sent, 1)
}
