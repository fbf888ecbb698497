package model

import (
	"fmt"
	"strings"
	"time"
)

// ReminderLead is how long before a booking its reminder fires.
type ReminderLead string

const (
	Lead10Min  ReminderLead = "10min"
	Lead30Min  ReminderLead = "30min"
	Lead1Hour  ReminderLead = "1hour"
	Lead2Hours ReminderLead = "2hours"
	Lead1Day   ReminderLead = "1day"

	DefaultReminderLead = Lead1Hour
)

func ParseReminderLead(raw string) (ReminderLead, error) {
	switch l := ReminderLead(strings.TrimSpace(raw)); l {
	case Lead10Min, Lead30Min, Lead1Hour, Lead2Hours, Lead1Day:
		return l, nil
	default:
		return "", fmt.Errorf("%w: unknown reminder lead %q", ErrValidation, raw)
	}
}

func (l ReminderLead) Duration() time.Duration {
	switch l {
	case Lead10Min:
		return 10 * time.Minute
	case Lead30Min:
		return 30 * time.Minute
	case Lead2Hours:
		return 2 * time.Hour
	case Lead1Day:
		return 24 * time.Hour
	default:
		return time.Hour
	}
}

// Preferences are a user's reminder choices. A booking gets a single
// reminder, sent at the longest lead the user picked.
type Preferences struct {
	UserID        string
	ReminderLeads []ReminderLead
}

// Lead returns the longest chosen lead. ok is false when nothing is chosen.
func (p Preferences) Lead() (lead ReminderLead, ok bool) {
	for _, l := range p.ReminderLeads {
		if !ok || l.Duration() > lead.Duration() {
			lead, ok = l, true
		}
	}
	return lead, ok
}

// Settings is the salon-wide schedule. WorkingDays uses time.Weekday numbering.
type Settings struct {
	OpeningTime  string
	ClosingTime  string
	WorkingDays  []int
	TimeSlots    []string
	AdminPhone   string
	ReminderLead ReminderLead
}

func DefaultSettings() Settings {
	return Settings{
		OpeningTime: "09:00",
		ClosingTime: "19:00",
		WorkingDays: []int{1, 2, 3, 4, 5, 6},
		TimeSlots: []string{
			"09:00", "09:30", "10:00", "10:30", "11:00", "11:30",
			"14:00", "14:30", "15:00", "15:30", "16:00", "16:30", "17:00", "17:30", "18:00",
		},
		ReminderLead: DefaultReminderLead,
	}
}

// WithDefaults fills unset fields from DefaultSettings. An explicitly empty
// TimeSlots list is kept so marks get derived from opening/closing.
func (s Settings) WithDefaults() Settings {
	d := DefaultSettings()
	if s.OpeningTime == "" {
		s.OpeningTime = d.OpeningTime
	}
	if s.ClosingTime == "" {
		s.ClosingTime = d.ClosingTime
	}
	if s.WorkingDays == nil {
		s.WorkingDays = d.WorkingDays
	}
	if s.TimeSlots == nil {
		s.TimeSlots = d.TimeSlots
	}
	if s.ReminderLead == "" {
		s.ReminderLead = d.ReminderLead
	}
	return s
}
