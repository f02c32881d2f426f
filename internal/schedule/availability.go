// Package schedule contains scheduling helpers shared by the event and
// application modules.
package schedule

import "time"

// AvailabilityStatus describes whether a time-gated feature is open.
type AvailabilityStatus string

const (
	// StatusPast means the window has closed, or the event is over.
	StatusPast AvailabilityStatus = "past"
	// StatusFuture means the window has not opened yet.
	StatusFuture AvailabilityStatus = "future"
	// StatusActive means the window is currently open.
	StatusActive AvailabilityStatus = "active"
	// StatusOverride means an administrator forced the feature open.
	StatusOverride AvailabilityStatus = "override"
)

// Window is an optional start/end pair gating a feature. A zero Start or
// End leaves that edge open.
type Window struct {
	Start time.Time
	End   time.Time
}

// IsZero reports whether no window was configured at all.
func (w Window) IsZero() bool {
	return w.Start.IsZero() && w.End.IsZero()
}

// DetermineAvailabilityStatus decides whether a feature gated by an
// availability window is open at the given moment. The override flag
// short-circuits everything. With a window configured the window decides;
// without one the feature opens only once announced, so it reads as future
// until the event has ended.
func DetermineAvailabilityStatus(now time.Time, window Window, eventEnd time.Time, override bool) AvailabilityStatus {
	if override {
		return StatusOverride
	}
	if !window.IsZero() {
		if !window.Start.IsZero() && now.Before(window.Start) {
			return StatusFuture
		}
		if !window.End.IsZero() && now.After(window.End) {
			return StatusPast
		}
		return StatusActive
	}
	if !eventEnd.IsZero() && now.After(eventEnd) {
		return StatusPast
	}
	return StatusFuture
}
