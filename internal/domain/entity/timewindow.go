package entity

import "time"

// TimeWindow is a recency filter over publish timestamps. It accepts every
// timestamp from Reference-Span onward, with no upper bound: a future-dated
// publish time always counts as recent. Comparisons assume UTC on both sides.
type TimeWindow struct {
	Reference time.Time
	Span      time.Duration
}

// NewTimeWindow creates a window of the given span ending at the reference time.
func NewTimeWindow(reference time.Time, span time.Duration) TimeWindow {
	return TimeWindow{Reference: reference, Span: span}
}

// WindowSince creates a window spanning from the given span before now.
func WindowSince(span time.Duration) TimeWindow {
	return NewTimeWindow(time.Now().UTC(), span)
}

// Contains reports whether t falls inside the window.
func (w TimeWindow) Contains(t time.Time) bool {
	cutoff := w.Reference.Add(-w.Span)
	return !t.Before(cutoff)
}

// Cutoff returns the oldest publish time the window accepts.
func (w TimeWindow) Cutoff() time.Time {
	return w.Reference.Add(-w.Span)
}
