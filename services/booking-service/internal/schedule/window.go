// Package schedule turns salon settings into candidate slots for a day.
package schedule

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/md-rashed-zaman/salonbook/services/booking-service/internal/model"
)

// Granularity is the spacing of marks derived from opening/closing times.
const Granularity = 30 * time.Minute

var ErrInvalidConfig = errors.New("invalid schedule configuration")

// Mark is a time of day, stored as minutes after midnight.
type Mark int

func ParseMark(raw string) (Mark, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok || len(h) != 2 || len(m) != 2 {
		return 0, fmt.Errorf("time of day %q: want HH:MM", raw)
	}
	hh, err1 := strconv.Atoi(h)
	mm, err2 := strconv.Atoi(m)
	if err1 != nil || err2 != nil || hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return 0, fmt.Errorf("time of day %q: out of range", raw)
	}
	return Mark(hh*60 + mm), nil
}

func (m Mark) String() string {
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

// On places the mark on date's calendar day, in date's location.
func (m Mark) On(date time.Time) time.Time {
	y, mo, d := date.Date()
	return time.Date(y, mo, d, int(m)/60, int(m)%60, 0, 0, date.Location())
}

// Validate reports malformed settings wrapped in ErrInvalidConfig.
func Validate(s model.Settings) error {
	_, err := parse(s)
	return err
}

type window struct {
	open, close Mark
	days        map[time.Weekday]bool
	marks       []Mark
}

func parse(s model.Settings) (window, error) {
	w := window{days: map[time.Weekday]bool{}}

	var err error
	if w.open, err = ParseMark(s.OpeningTime); err != nil {
		return w, fmt.Errorf("%w: opening: %v", ErrInvalidConfig, err)
	}
	if w.close, err = ParseMark(s.ClosingTime); err != nil {
		return w, fmt.Errorf("%w: closing: %v", ErrInvalidConfig, err)
	}
	if w.close <= w.open {
		return w, fmt.Errorf("%w: closing %s is not after opening %s", ErrInvalidConfig, w.close, w.open)
	}
	for _, d := range s.WorkingDays {
		if d < 0 || d > 6 {
			return w, fmt.Errorf("%w: working day %d outside 0..6", ErrInvalidConfig, d)
		}
		w.days[time.Weekday(d)] = true
	}

	if len(s.TimeSlots) == 0 {
		step := Mark(Granularity / time.Minute)
		for m := w.open; m+step <= w.close; m += step {
			w.marks = append(w.marks, m)
		}
		return w, nil
	}

	seen := map[Mark]bool{}
	for _, raw := range s.TimeSlots {
		m, err := ParseMark(raw)
		if err != nil {
			return w, fmt.Errorf("%w: slot: %v", ErrInvalidConfig, err)
		}
		if !seen[m] {
			seen[m] = true
			w.marks = append(w.marks, m)
		}
	}
	sort.Slice(w.marks, func(i, j int) bool { return w.marks[i] < w.marks[j] })
	return w, nil
}

// Resolve returns the ordered marks valid on date's weekday, or nil when the
// salon is closed that day. date's location decides the weekday.
func Resolve(s model.Settings, date time.Time) ([]Mark, error) {
	w, err := parse(s)
	if err != nil {
		return nil, err
	}
	if !w.days[date.Weekday()] {
		return nil, nil
	}
	return w.marks, nil
}
