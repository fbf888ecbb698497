// Package notify delivers outbound messages by SMS or email.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrNoAddress = errors.New("no destination address")

// Dispatcher delivers body to a phone number or email address. There is no
// retry contract; callers log and drop failures.
type Dispatcher interface {
	Send(ctx context.Context, to, body string) error
}

// Router sends addresses containing "@" by email and everything else by SMS.
type Router struct {
	SMS   Dispatcher
	Email Dispatcher
}

func (r Router) Send(ctx context.Context, to, body string) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return ErrNoAddress
	}
	d, channel := r.SMS, "sms"
	if strings.Contains(to, "@") {
		d, channel = r.Email, "email"
	}
	if d == nil {
		return fmt.Errorf("%s channel not configured", channel)
	}
	return d.Send(ctx, to, body)
}
