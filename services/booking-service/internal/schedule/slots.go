package schedule

import (
	"fmt"
	"time"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

const DateLayout = "2006-01-02"

type Slot struct {
	Start time.Time
	End   time.Time
}

// Generate lays duration-long slots on the given marks. It does not drop
// slots in the past; the write path re-validates at commit time.
func Generate(marks []Mark, date time.Time, duration time.Duration) []Slot {
	slots := make([]Slot, 0, len(marks))
	for _, m := range marks {
		start := m.On(date)
		slots = append(slots, Slot{Start: start, End: start.Add(duration)})
	}
	return slots
}

// StartOfDay is midnight of t's calendar date in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ParseDate reads YYYY-MM-DD as midnight in loc.
func ParseDate(raw string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q: want YYYY-MM-DD", model.ErrValidation, raw)
	}
	return d, nil
}
