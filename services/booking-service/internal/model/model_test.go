package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus(" Confirmed ")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, s)

	_, err = ParseStatus("done")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusPending, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
	assert.False(t, StatusCancelled.Active())
	assert.True(t, StatusPending.Active())
}

func TestReminderLead(t *testing.T) {
	l, err := ParseReminderLead("2hours")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, l.Duration())

	_, err = ParseReminderLead("3hours")
	assert.ErrorIs(t, err, ErrValidation)

	assert.Equal(t, time.Hour, ReminderLead("").Duration())
}

func TestPreferencesLead(t *testing.T) {
	_, ok := Preferences{}.Lead()
	assert.False(t, ok)

	lead, ok := Preferences{ReminderLeads: []ReminderLead{Lead30Min, Lead1Day, Lead10Min}}.Lead()
	require.True(t, ok)
	assert.Equal(t, Lead1Day, lead)
}

func TestSettingsWithDefaults(t *testing.T) {
	s := Settings{OpeningTime: "08:00", TimeSlots: []string{}}.WithDefaults()
	assert.Equal(t, "08:00", s.OpeningTime)
	assert.Equal(t, "19:00", s.ClosingTime)
	assert.Empty(t, s.TimeSlots)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, s.WorkingDays)
	assert.Equal(t, Lead1Hour, s.ReminderLead)

	assert.Len(t, Settings{}.WithDefaults().TimeSlots, 15)
}

func TestOwnedBy(t *testing.T) {
	b := Booking{UserID: "u1"}
	assert.True(t, b.OwnedBy(Identity{ID: "u1"}))
	assert.False(t, b.OwnedBy(Identity{ID: "u2"}))
	assert.False(t, Booking{}.OwnedBy(Identity{}))
}
