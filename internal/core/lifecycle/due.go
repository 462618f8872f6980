package lifecycle

import "time"

const hoursPerDay = 24

// DaysUntilDue returns the signed number of calendar days from now to due.
// Both instants are reduced to dates in due's location, so 23:59 and 00:01 on
// the same day count as zero.
func DaysUntilDue(due, now time.Time) int {
	loc := due.Location()
	return int(civilDate(due, loc).Sub(civilDate(now.In(loc), loc)).Hours() / hoursPerDay)
}

// civilDate maps t to midnight UTC of its calendar date in loc. Using UTC
// keeps every day exactly 24h long regardless of DST in loc.
func civilDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns 23:59:59 on the calendar date of t, in t's location.
// Due dates entered as plain dates are stored this way.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}
