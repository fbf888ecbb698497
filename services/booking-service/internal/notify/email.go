package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPSender sends plain-text mail via unauthenticated SMTP (Mailpit-compatible).
type SMTPSender struct {
	addr    string
	from    string
	subject string
	send    func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPSender(host, port, from, subject string) *SMTPSender {
	from = strings.TrimSpace(from)
	if from == "" {
		from = "no-reply@salonbook.local"
	}
	if subject == "" {
		subject = "Your appointment"
	}
	return &SMTPSender{
		addr:    strings.TrimSpace(host) + ":" + strings.TrimSpace(port),
		from:    from,
		subject: subject,
		send:    smtp.SendMail,
	}
}

// Send ignores ctx deadlines once the SMTP exchange has started; net/smtp
// offers no cancellation.
func (s *SMTPSender) Send(ctx context.Context, to string, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := buildMessage(s.from, to, s.subject, body)
	return s.send(s.addr, nil, s.from, []string{to}, []byte(msg))
}

func buildMessage(from, to, subject, body string) string {
	return fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		from, to, subject, body,
	)
}
