package audit

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	rows   []TimelineRow
	purged int
}

func (r *memoryRepo) Timeline(ctx context.Context, filters TimelineFilters, limit, offset int) ([]TimelineRow, error) {
	var filtered []TimelineRow
	for _, row := range r.rows {
		if filters.Action != "" && row.Action != filters.Action {
			continue
		}
		filtered = append(filtered, row)
	}
	if offset >= len(filtered) {
		return nil, nil
	}
	filtered = filtered[offset:]
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered, nil
}

func (r *memoryRepo) Purge(ctx context.Context, olderThanDays int) (int64, error) {
	r.purged = olderThanDays
	return 3, nil
}

func sampleRows(n int) []TimelineRow {
	rows := make([]TimelineRow, 0, n)
	at := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		rows = append(rows, TimelineRow{
			At:       at.Add(time.Duration(i) * time.Minute),
			ActorID:  1,
			Action:   "volunteer.permissions.update",
			Entity:   "volunteer",
			EntityID: "2",
		})
	}
	return rows
}

func TestTimelinePaging(t *testing.T) {
	repo := &memoryRepo{rows: sampleRows(25)}
	svc := NewService(repo)

	result, err := svc.Timeline(context.Background(), TimelineFilters{Page: 1, PageSize: 20})
	require.NoError(t, err)
	require.Len(t, result.Rows, 20)
	require.True(t, result.Paging.HasNext)
	require.Equal(t, 2, result.Paging.NextPage)
	require.Zero(t, result.Paging.PrevPage)

	result, err = svc.Timeline(context.Background(), TimelineFilters{Page: 2, PageSize: 20})
	require.NoError(t, err)
	require.Len(t, result.Rows, 5)
	require.False(t, result.Paging.HasNext)
	require.Equal(t, 1, result.Paging.PrevPage)
}

func TestTimelineClampsPageSize(t *testing.T) {
	repo := &memoryRepo{rows: sampleRows(80)}
	svc := NewService(repo)

	result, err := svc.Timeline(context.Background(), TimelineFilters{PageSize: 500})
	require.NoError(t, err)
	require.Len(t, result.Rows, 50)
	require.Equal(t, 50, result.Paging.PageSize)
}

func TestExportRendersCSV(t *testing.T) {
	repo := &memoryRepo{rows: sampleRows(2)}
	svc := NewService(repo)

	data, err := svc.Export(context.Background(), TimelineFilters{})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "at,actor_id,action,entity,entity_id,meta", lines[0])
	require.Contains(t, lines[1], "volunteer.permissions.update")
}

func TestPurgeRequiresRetention(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo)

	_, err := svc.Purge(context.Background(), 0)
	require.Error(t, err)

	removed, err := svc.Purge(context.Background(), 90)
	require.NoError(t, err)
	require.Equal(t, int64(3), removed)
	require.Equal(t, 90, repo.purged)
}
