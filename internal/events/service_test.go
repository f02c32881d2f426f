package events

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/animecon/volunteer-manager/internal/schedule"
	"github.com/animecon/volunteer-manager/internal/shared"
)

type memoryRepo struct {
	events     map[string]Event
	statsCalls atomic.Int32
	statsDelay time.Duration
}

func newMemoryRepo(events ...Event) *memoryRepo {
	repo := &memoryRepo{events: make(map[string]Event)}
	for _, e := range events {
		repo.events[e.Slug] = e
	}
	return repo
}

func (r *memoryRepo) List(ctx context.Context, includeHidden bool) ([]Event, error) {
	var result []Event
	for _, e := range r.events {
		if e.Hidden && !includeHidden {
			continue
		}
		result = append(result, e)
	}
	return result, nil
}

func (r *memoryRepo) GetBySlug(ctx context.Context, slug string) (Event, error) {
	e, ok := r.events[slug]
	if !ok {
		return Event{}, shared.ErrNotFound
	}
	return e, nil
}

func (r *memoryRepo) Create(ctx context.Context, event Event) (Event, error) {
	event.ID = int64(len(r.events) + 1)
	r.events[event.Slug] = event
	return event, nil
}

func (r *memoryRepo) Update(ctx context.Context, event Event) (Event, error) {
	existing, ok := r.events[event.Slug]
	if !ok {
		return Event{}, shared.ErrNotFound
	}
	event.ID = existing.ID
	r.events[event.Slug] = event
	return event, nil
}

func (r *memoryRepo) Stats(ctx context.Context, eventID int64) (Stats, error) {
	r.statsCalls.Add(1)
	if r.statsDelay > 0 {
		time.Sleep(r.statsDelay)
	}
	return Stats{Applications: 42, Accepted: 17, HotelRooms: 5}, nil
}

func testService(t *testing.T, repo Repository) (*Service, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewService(repo, nil, rdb), rdb
}

func TestGetHiddenEvent(t *testing.T) {
	repo := newMemoryRepo(Event{ID: 1, Slug: "classic-2026", Hidden: true})
	svc, _ := testService(t, repo)

	_, err := svc.Get(context.Background(), "classic-2026", false)
	require.ErrorIs(t, err, shared.ErrNotFound)

	event, err := svc.Get(context.Background(), "classic-2026", true)
	require.NoError(t, err)
	require.Equal(t, int64(1), event.ID)
}

func TestAvailabilityFollowsWindows(t *testing.T) {
	now := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)
	repo := newMemoryRepo(Event{
		Slug:              "animecon-2026",
		StartTime:         now.AddDate(0, 1, 0),
		EndTime:           now.AddDate(0, 1, 3),
		ApplicationsStart: now.AddDate(0, 0, -7),
		ApplicationsEnd:   now.AddDate(0, 0, 7),
		ScheduleStart:     now.AddDate(0, 0, 20),
	})
	svc, _ := testService(t, repo)
	svc.now = func() time.Time { return now }

	availability, err := svc.Availability(context.Background(), "animecon-2026", false)
	require.NoError(t, err)
	require.Equal(t, schedule.StatusActive, availability.Applications)
	require.Equal(t, schedule.StatusFuture, availability.Schedule)
}

func TestCreateRejectsInvertedTiming(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := testService(t, repo)

	start := time.Date(2026, 6, 12, 10, 0, 0, 0, time.UTC)
	_, err := svc.Create(context.Background(), 1, Event{
		Slug: "broken", Name: "Broken", StartTime: start, EndTime: start.AddDate(0, 0, -1),
	})
	require.Error(t, err)
	require.Empty(t, repo.events)
}

func TestCreateNormalisesSlug(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := testService(t, repo)

	start := time.Date(2026, 6, 12, 10, 0, 0, 0, time.UTC)
	created, err := svc.Create(context.Background(), 1, Event{
		Slug: "  AnimeCon-2026 ", Name: "AnimeCon 2026", StartTime: start, EndTime: start.AddDate(0, 0, 3),
	})
	require.NoError(t, err)
	require.Equal(t, "animecon-2026", created.Slug)
}

func TestStatsDeduplicatesConcurrentCallers(t *testing.T) {
	repo := newMemoryRepo()
	repo.statsDelay = 20 * time.Millisecond
	svc := NewService(repo, nil, nil)

	var wg sync.WaitGroup
	results := make([]Stats, 8)
	errs := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = svc.Stats(context.Background(), 1)
		}()
	}
	wg.Wait()
	for i := range results {
		require.NoError(t, errs[i])
		require.Equal(t, 42, results[i].Applications)
	}
	require.Equal(t, int32(1), repo.statsCalls.Load())
}

func TestStatsCachedInRedis(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := testService(t, repo)

	first, err := svc.Stats(context.Background(), 7)
	require.NoError(t, err)
	second, err := svc.Stats(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, int32(1), repo.statsCalls.Load())
}
