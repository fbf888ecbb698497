package availability

import "time"

// Interval is the half-open span [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps uses half-open semantics: intervals that only touch do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && i.End.After(o.Start)
}

func overlapsAny(iv Interval, busy []Interval) bool {
	for _, b := range busy {
		if iv.Overlaps(b) {
			return true
		}
	}
	return false
}

// Days lists the calendar dates (YYYY-MM-DD, in loc) that iv touches.
func (i Interval) Days(loc *time.Location) []string {
	var days []string
	start := i.Start.In(loc)
	y, m, d := start.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, loc)
	for day.Before(i.End) {
		days = append(days, day.Format("2006-01-02"))
		day = day.AddDate(0, 0, 1)
	}
	if len(days) == 0 {
		days = append(days, start.Format("2006-01-02"))
	}
	return days
}
