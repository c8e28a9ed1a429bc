package rental

import "time"

// DayWindow returns the epoch-second bounds [start, end) of the calendar day
// containing now, as observed in loc.
func DayWindow(now time.Time, loc *time.Location) (int64, int64) {
	if loc == nil {
		loc = time.Local
	}
	t := now.In(loc)
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1) // DST 日不一定是 24h
	return start.Unix(), end.Unix()
}
