package domain

import "time"

// MonthBounds returns the first and last instant of the calendar month that
// contains t, as observed in loc. The last instant is truncated to microseconds
// so it survives a round trip through Postgres timestamps.
func MonthBounds(t time.Time, loc *time.Location) (start, end time.Time) {
	if loc == nil {
		loc = time.Local
	}
	lt := t.In(loc)
	start = time.Date(lt.Year(), lt.Month(), 1, 0, 0, 0, 0, loc)
	end = start.AddDate(0, 1, 0).Add(-time.Microsecond)
	return start, end
}
