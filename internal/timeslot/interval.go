package timeslot

import "time"

// Interval is a half-open time range [Start, End) on one calendar date.
// It is the value the overlap check operates on; it is never persisted.
type Interval struct {
	Date  time.Time
	Start time.Time
	End   time.Time
}

// Overlaps reports whether the two intervals share at least one instant.
// Under half-open semantics an interval ending exactly when another begins
// does not overlap, so adjacent slots are legal. Intervals on different
// dates never overlap.
func (iv Interval) Overlaps(other Interval) bool {
	if !sameDate(iv.Date, other.Date) {
		return false
	}
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// OverlapsAny reports whether candidate collides with any existing interval,
// and returns the intervals it collides with. This is the single overlap
// predicate used both at slot creation and at booking-range validation.
func OverlapsAny(candidate Interval, existing []Interval) (bool, []Interval) {
	var conflicts []Interval
	for _, iv := range existing {
		if candidate.Overlaps(iv) {
			conflicts = append(conflicts, iv)
		}
	}
	return len(conflicts) > 0, conflicts
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
