package model

import (
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(raw))); s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return s, nil
	default:
		return "", fmt.Errorf("%w: unknown status %q", ErrValidation, raw)
	}
}

// Active reports whether a booking in this status occupies its provider.
func (s Status) Active() bool {
	return s != StatusCancelled
}

// CanTransitionTo encodes pending -> confirmed and pending|confirmed -> cancelled.
// Setting the current status again is a no-op and allowed.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusPending || next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusCancelled:
		return next == StatusCancelled
	default:
		return false
	}
}

type Booking struct {
	ID           string
	UserID       string
	UserName     string
	UserPhone    string
	UserEmail    string
	ProviderID   string
	ProviderName string
	ServiceID    string
	ServiceName  string
	StartTime    time.Time
	Status       Status
	Manual       bool
	CreatedAt    time.Time
}

// OwnedBy reports whether the identity may act on the booking as its requester.
func (b Booking) OwnedBy(id Identity) bool {
	return id.ID != "" && b.UserID == id.ID
}

// Contact is where messages for the requester go: phone first, then email.
func (b Booking) Contact() string {
	if b.UserPhone != "" {
		return b.UserPhone
	}
	return b.UserEmail
}

// Identity is the already-verified caller.
type Identity struct {
	ID      string
	IsAdmin bool
	Name    string
	Phone   string
	Email   string
}
