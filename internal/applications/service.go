package applications

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/hibiken/asynq"

	"github.com/animecon/volunteer-manager/internal/events"
	"github.com/animecon/volunteer-manager/internal/schedule"
	"github.com/animecon/volunteer-manager/internal/shared"
	"github.com/animecon/volunteer-manager/internal/volunteers"
	"github.com/animecon/volunteer-manager/jobs"
)

// EventProvider resolves events for availability gating. Implemented by
// events.Service.
type EventProvider interface {
	Get(ctx context.Context, slug string, includeHidden bool) (events.Event, error)
}

// Idempotency deduplicates retried submissions. Implemented by
// shared.IdempotencyStore.
type Idempotency interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// Notifier enqueues outbound email. Implemented by jobs.Client.
type Notifier interface {
	EnqueueSendEmail(ctx context.Context, payload jobs.SendEmailPayload) (*asynq.TaskInfo, error)
}

// VolunteerDirectory resolves volunteer contact details. Implemented by
// volunteers.Service.
type VolunteerDirectory interface {
	Get(ctx context.Context, id int64) (volunteers.Volunteer, error)
}

// Service orchestrates the application lifecycle.
type Service struct {
	repo      Repository
	events    EventProvider
	idem      Idempotency
	audit     *shared.AuditLogger
	notifier  Notifier
	directory VolunteerDirectory
	now       func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repository, provider EventProvider, idem Idempotency, audit *shared.AuditLogger, notifier Notifier, directory VolunteerDirectory) *Service {
	return &Service{repo: repo, events: provider, idem: idem, audit: audit, notifier: notifier, directory: directory, now: time.Now}
}

// SubmitInput carries one application form submission.
type SubmitInput struct {
	EventSlug      string
	IdempotencyKey string
	Motivation     string
	TShirtSize     string
	PreferredHours int
}

// Submit files a new application. The event's applications window must be
// open, a volunteer can apply once per event, and retried submissions with
// the same idempotency key are absorbed by returning the stored application.
func (s *Service) Submit(ctx context.Context, volunteerID int64, input SubmitInput) (Application, error) {
	event, err := s.events.Get(ctx, input.EventSlug, false)
	if err != nil {
		return Application{}, err
	}

	status := event.AvailabilityAt(s.now()).Applications
	if status != schedule.StatusActive && status != schedule.StatusOverride {
		return Application{}, ErrApplicationsClosed
	}

	if existing, err := s.repo.GetByVolunteer(ctx, event.ID, volunteerID); err == nil {
		if existing.Status != StatusCancelled {
			return Application{}, ErrAlreadyApplied
		}
	} else if !errors.Is(err, shared.ErrNotFound) {
		return Application{}, err
	}

	if s.idem != nil && input.IdempotencyKey != "" {
		if err := s.idem.CheckAndInsert(ctx, input.IdempotencyKey, "applications"); err != nil {
			if errors.Is(err, shared.ErrIdempotencyConflict) {
				return s.repo.GetByVolunteer(ctx, event.ID, volunteerID)
			}
			return Application{}, err
		}
	}

	application, err := s.repo.Create(ctx, Application{
		EventID:        event.ID,
		VolunteerID:    volunteerID,
		Motivation:     input.Motivation,
		TShirtSize:     input.TShirtSize,
		PreferredHours: input.PreferredHours,
	})
	if err != nil {
		if s.idem != nil && input.IdempotencyKey != "" {
			_ = s.idem.Delete(ctx, input.IdempotencyKey)
		}
		return Application{}, err
	}

	s.record(ctx, volunteerID, "application.submit", application, nil)
	s.notify(ctx, volunteerID,
		fmt.Sprintf("Application received for %s", event.Name),
		"Thank you for applying. We will contact you once the team has reviewed your application.")
	return application, nil
}

// Decide accepts or rejects a pending application.
func (s *Service) Decide(ctx context.Context, actorID, id int64, to Status) (Application, error) {
	if to != StatusAccepted && to != StatusRejected {
		return Application{}, fmt.Errorf("applications: cannot decide towards %q", to)
	}
	application, err := s.repo.UpdateStatus(ctx, id, StatusPending, to, actorID)
	if err != nil {
		return Application{}, err
	}

	s.record(ctx, actorID, "application."+string(to), application, map[string]any{"status": to})
	subject := "Your application has been accepted"
	body := "Welcome aboard! You will receive your schedule once it is published."
	if to == StatusRejected {
		subject = "About your application"
		body = "Unfortunately we cannot offer you a spot this time."
	}
	s.notify(ctx, application.VolunteerID, subject, body)
	return application, nil
}

// Cancel withdraws the volunteer's own pending application.
func (s *Service) Cancel(ctx context.Context, volunteerID, eventID int64) (Application, error) {
	application, err := s.repo.GetByVolunteer(ctx, eventID, volunteerID)
	if err != nil {
		return Application{}, err
	}
	updated, err := s.repo.UpdateStatus(ctx, application.ID, StatusPending, StatusCancelled, volunteerID)
	if err != nil {
		return Application{}, err
	}
	s.record(ctx, volunteerID, "application.cancel", updated, nil)
	return updated, nil
}

// List returns applications for an event.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Application, shared.Pagination, error) {
	result, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return result, shared.NewPagination(filter.Page, filter.PerPage, total), nil
}

// Own returns the volunteer's application for an event.
func (s *Service) Own(ctx context.Context, volunteerID, eventID int64) (Application, error) {
	return s.repo.GetByVolunteer(ctx, eventID, volunteerID)
}

func (s *Service) record(ctx context.Context, actorID int64, action string, application Application, meta map[string]any) {
	if s.audit == nil {
		return
	}
	if meta == nil {
		meta = map[string]any{}
	}
	meta["eventId"] = application.EventID
	meta["volunteerId"] = application.VolunteerID
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "application",
		EntityID: strconv.FormatInt(application.ID, 10),
		Meta:     meta,
	})
}

func (s *Service) notify(ctx context.Context, volunteerID int64, subject, body string) {
	if s.notifier == nil || s.directory == nil {
		return
	}
	volunteer, err := s.directory.Get(ctx, volunteerID)
	if err != nil || volunteer.Email == "" {
		return
	}
	// Email delivery is best effort; the queue retries on its own.
	_, _ = s.notifier.EnqueueSendEmail(ctx, jobs.SendEmailPayload{
		To:      volunteer.Email,
		Subject: subject,
		Body:    body,
	})
}
