package schedule

import (
	"testing"
	"time"
)

func TestDetermineAvailabilityStatus(t *testing.T) {
	now := time.Date(2026, 6, 13, 12, 0, 0, 0, time.UTC)
	pastWindow := Window{Start: now.Add(-48 * time.Hour), End: now.Add(-24 * time.Hour)}
	futureWindow := Window{Start: now.Add(24 * time.Hour), End: now.Add(48 * time.Hour)}
	spanningWindow := Window{Start: now.Add(-24 * time.Hour), End: now.Add(24 * time.Hour)}
	eventEnded := now.Add(-time.Hour)
	eventOngoing := now.Add(72 * time.Hour)

	cases := []struct {
		name     string
		window   Window
		eventEnd time.Time
		override bool
		want     AvailabilityStatus
	}{
		{"no window, event ongoing", Window{}, eventOngoing, false, StatusFuture},
		{"no window, event ended", Window{}, eventEnded, false, StatusPast},
		{"past window, event ongoing", pastWindow, eventOngoing, false, StatusPast},
		{"past window, event ended", pastWindow, eventEnded, false, StatusPast},
		{"future window, event ongoing", futureWindow, eventOngoing, false, StatusFuture},
		{"future window, event ended", futureWindow, eventEnded, false, StatusFuture},
		{"spanning window, event ongoing", spanningWindow, eventOngoing, false, StatusActive},
		{"spanning window, event ended", spanningWindow, eventEnded, false, StatusActive},
		{"override beats everything", pastWindow, eventEnded, true, StatusOverride},
		{"override without window", Window{}, eventOngoing, true, StatusOverride},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DetermineAvailabilityStatus(now, tc.window, tc.eventEnd, tc.override)
			if got != tc.want {
				t.Fatalf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestOpenEndedWindows(t *testing.T) {
	now := time.Date(2026, 6, 13, 12, 0, 0, 0, time.UTC)

	if got := DetermineAvailabilityStatus(now, Window{Start: now.Add(-time.Hour)}, time.Time{}, false); got != StatusActive {
		t.Fatalf("start-only window should stay open, got %s", got)
	}
	if got := DetermineAvailabilityStatus(now, Window{End: now.Add(time.Hour)}, time.Time{}, false); got != StatusActive {
		t.Fatalf("end-only window should be open already, got %s", got)
	}
	if got := DetermineAvailabilityStatus(now, Window{End: now.Add(-time.Hour)}, time.Time{}, false); got != StatusPast {
		t.Fatalf("expired end-only window should be past, got %s", got)
	}
}
