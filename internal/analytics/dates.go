// Package analytics derives every dashboard number from in-memory record
// slices. Functions here are pure and total: no I/O, no stored state, and
// malformed input degrades to zero values instead of errors or panics.
package analytics

import (
	"time"

	"github.com/error-autopsy/backend/internal/models"
)

// ParseDate parses a DD-MM-YYYY string. ok is false for empty or malformed
// input; callers skip those records rather than fail the aggregation.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// MonthKey returns the sortable YYYY-MM key for a date.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// MonthLabel returns the display label for a month, e.g. "Dec 2025".
// Ordering must always come from the underlying date, never from the label.
func MonthLabel(t time.Time) string {
	return t.Format("Jan 2006")
}

// CurrentAndPreviousMonth returns the first day of ref's month and the first
// day of the month before it, correct across the January rollover.
func CurrentAndPreviousMonth(ref time.Time) (current, previous time.Time) {
	current = time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	previous = current.AddDate(0, -1, 0)
	return current, previous
}

// RelativeCutoff turns a months filter into a concrete cutoff time.
// nil means no filtering (ok=false). 0 means the first day of the current
// calendar month. N>0 means now minus N*30 days; the calendar-exact zero
// case versus the rolling 30-day approximation is deliberate.
//
// Record dates parse as UTC midnights, so the cutoff is built on the same
// scale; a location-bound cutoff would shift boundary records in or out of
// the window with the process timezone.
func RelativeCutoff(now time.Time, months *int) (time.Time, bool) {
	if months == nil {
		return time.Time{}, false
	}
	if *months == 0 {
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC), true
	}
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -*months*30), true
}
