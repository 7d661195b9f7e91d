package valueobject

import (
	"fmt"
	"time"
)

// Window is a trailing time window used by frequency checks and reports.
// The zero value is unbounded.
type Window struct {
	name string
	span time.Duration
	days int
}

var (
	Window24h = Window{name: "24h", span: 24 * time.Hour, days: 1}
	Window7d  = Window{name: "7d", span: 7 * 24 * time.Hour, days: 7}
	Window30d = Window{name: "30d", span: 30 * 24 * time.Hour, days: 30}
)

// ParseWindow reconstructs a Window from its string representation.
// An empty string yields the 7-day window.
func ParseWindow(s string) (Window, error) {
	switch s {
	case "24h", "1d":
		return Window24h, nil
	case "7d", "":
		return Window7d, nil
	case "30d":
		return Window30d, nil
	default:
		return Window{}, fmt.Errorf("invalid window: %q (want 24h, 7d or 30d)", s)
	}
}

// Duration returns the span of the window.
func (w Window) Duration() time.Duration { return w.span }

// Days returns the number of calendar days the window covers.
func (w Window) Days() int { return w.days }

// IsZero returns true for the unbounded window.
func (w Window) IsZero() bool { return w.span == 0 }

// Start returns the earliest instant inside the window ending at now.
func (w Window) Start(now time.Time) time.Time {
	return now.Add(-w.span)
}

// Contains reports whether t lies in [now-span, now]. The unbounded window
// contains every instant.
func (w Window) Contains(t, now time.Time) bool {
	if w.IsZero() {
		return true
	}
	return !t.Before(w.Start(now)) && !t.After(now)
}

// String returns the string representation.
func (w Window) String() string {
	if w.IsZero() {
		return "all"
	}
	return w.name
}
