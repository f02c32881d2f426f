package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/animecon/volunteer-manager/internal/shared"
)

const statsTTL = 30 * time.Second

// Service orchestrates event administration and availability.
type Service struct {
	repo  Repository
	audit *shared.AuditLogger
	redis *redis.Client
	group singleflight.Group
	now   func() time.Time
}

// NewService constructs a Service. The redis client may be nil, in which
// case dashboard stats are only deduplicated in-process.
func NewService(repo Repository, audit *shared.AuditLogger, rdb *redis.Client) *Service {
	return &Service{repo: repo, audit: audit, redis: rdb, now: time.Now}
}

// List returns visible events. Hidden events are included only when the
// caller holds the event visibility permission.
func (s *Service) List(ctx context.Context, includeHidden bool) ([]Event, error) {
	return s.repo.List(ctx, includeHidden)
}

// Get fetches an event by slug. Hidden events surface as not found unless
// the caller may see them.
func (s *Service) Get(ctx context.Context, slug string, includeHidden bool) (Event, error) {
	event, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return Event{}, err
	}
	if event.Hidden && !includeHidden {
		return Event{}, shared.ErrNotFound
	}
	return event, nil
}

// Availability reports the state of the event's gated features right now.
func (s *Service) Availability(ctx context.Context, slug string, includeHidden bool) (Availability, error) {
	event, err := s.Get(ctx, slug, includeHidden)
	if err != nil {
		return Availability{}, err
	}
	return event.AvailabilityAt(s.now()), nil
}

// Create adds a new event after checking its timing.
func (s *Service) Create(ctx context.Context, actorID int64, event Event) (Event, error) {
	if err := validateTiming(event); err != nil {
		return Event{}, err
	}
	event.Slug = strings.ToLower(strings.TrimSpace(event.Slug))
	created, err := s.repo.Create(ctx, event)
	if err != nil {
		return Event{}, err
	}
	s.record(ctx, actorID, "event.create", created)
	return created, nil
}

// Update replaces an event's settings.
func (s *Service) Update(ctx context.Context, actorID int64, event Event) (Event, error) {
	if err := validateTiming(event); err != nil {
		return Event{}, err
	}
	updated, err := s.repo.Update(ctx, event)
	if err != nil {
		return Event{}, err
	}
	s.invalidateStats(ctx, updated.ID)
	s.record(ctx, actorID, "event.update", updated)
	return updated, nil
}

// Stats returns dashboard counters for an event. Concurrent callers share a
// single repository query, and results are cached briefly in Redis.
func (s *Service) Stats(ctx context.Context, eventID int64) (Stats, error) {
	key := statsKey(eventID)
	if s.redis != nil {
		if raw, err := s.redis.Get(ctx, key).Bytes(); err == nil {
			var stats Stats
			if json.Unmarshal(raw, &stats) == nil {
				return stats, nil
			}
		}
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		stats, err := s.repo.Stats(ctx, eventID)
		if err != nil {
			return Stats{}, err
		}
		if s.redis != nil {
			if raw, err := json.Marshal(stats); err == nil {
				s.redis.Set(ctx, key, raw, statsTTL)
			}
		}
		return stats, nil
	})
	if err != nil {
		return Stats{}, err
	}
	return v.(Stats), nil
}

func (s *Service) invalidateStats(ctx context.Context, eventID int64) {
	if s.redis != nil {
		s.redis.Del(ctx, statsKey(eventID))
	}
}

func statsKey(eventID int64) string {
	return "events:stats:" + strconv.FormatInt(eventID, 10)
}

func validateTiming(event Event) error {
	if !event.EndTime.After(event.StartTime) {
		return fmt.Errorf("events: end time must come after start time")
	}
	if !event.ApplicationsStart.IsZero() && !event.ApplicationsEnd.IsZero() &&
		event.ApplicationsEnd.Before(event.ApplicationsStart) {
		return fmt.Errorf("events: applications window ends before it starts")
	}
	if !event.ScheduleStart.IsZero() && !event.ScheduleEnd.IsZero() &&
		event.ScheduleEnd.Before(event.ScheduleStart) {
		return fmt.Errorf("events: schedule window ends before it starts")
	}
	return nil
}

func (s *Service) record(ctx context.Context, actorID int64, action string, event Event) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "event",
		EntityID: event.Slug,
		Meta: map[string]any{
			"name":   event.Name,
			"hidden": event.Hidden,
		},
	})
}
