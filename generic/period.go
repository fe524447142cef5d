package generic

// =============================================================================
// PERIOD - A closed date window, optionally open-ended
// =============================================================================

// Period is a window [Start, End]. A zero End means the window has not
// closed yet (an ongoing leave, an open suspension).
//
// Examples:
//   - Study leave: 2024-09-01 - 2026-08-31
//   - Sabbatical with no return date recorded: 2025-01-15 - (open)
type Period struct {
	Start TimePoint
	End   TimePoint
}

// IsOpen reports whether the period has no recorded end.
func (p Period) IsOpen() bool { return p.End.IsZero() }

// Contains returns true if the time point is within the period. A period
// without a start contains nothing.
func (p Period) Contains(t TimePoint) bool {
	if p.Start.IsZero() || t.IsZero() {
		return false
	}
	if t.Before(p.Start) {
		return false
	}
	return p.IsOpen() || t.BeforeOrEqual(p.End)
}

// Valid reports whether End is absent or not before Start.
func (p Period) Valid() bool {
	if p.Start.IsZero() {
		return p.End.IsZero()
	}
	return p.IsOpen() || !p.End.Before(p.Start)
}

// String returns a string representation of the period.
func (p Period) String() string {
	end := p.End.String()
	if p.IsOpen() {
		end = "open"
	}
	return "[" + p.Start.String() + ", " + end + "]"
}
