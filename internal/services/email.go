package services

import (
	"fmt"
	"net/http"
	"net/mail"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"

	"github.com/littlenotes/encore/internal/metrics"
)

// Mailer sends notification email. Sends are fire-and-forget: a failed send
// is logged and counted, never surfaced to the user, and never rolls back the
// registration that triggered it.
type Mailer interface {
	Send(to, subject, textBody string)
}

var mailer Mailer

// SetMailer installs the outbound mailer; a nil mailer silently drops sends
// (tests and local dev run without one).
func SetMailer(m Mailer) {
	mailer = m
}

func sendMail(to, subject, body string) {
	if mailer == nil || strings.TrimSpace(to) == "" {
		return
	}
	mailer.Send(to, subject, body)
}

type sendgridMailer struct {
	key    string
	from   *sgmail.Email
	logger *logrus.Logger
}

func NewSendgridMailer(key, fromName, fromEmail string, logger *logrus.Logger) Mailer {
	return &sendgridMailer{
		key:    key,
		from:   sgmail.NewEmail(fromName, fromEmail),
		logger: logger,
	}
}

func (m *sendgridMailer) Send(to, subject, textBody string) {
	go func() {
		msg := sgmail.NewSingleEmail(m.from, subject, sgmail.NewEmail("", to), textBody, "")
		resp, err := sendgrid.NewSendClient(m.key).Send(msg)
		if err != nil {
			metrics.EmailSendFailures.Inc()
			m.logger.WithError(err).WithField("to", to).Error("email send failed")
			return
		}
		if resp.StatusCode >= http.StatusBadRequest {
			metrics.EmailSendFailures.Inc()
			m.logger.WithFields(logrus.Fields{
				"to":     to,
				"status": resp.StatusCode,
			}).Error(fmt.Sprintf("email rejected: %s", resp.Body))
		}
	}()
}

// NormEmail lowercases and validates an email address; empty is treated as
// ok/optional.
func NormEmail(s string) (string, bool) {
	e := strings.TrimSpace(strings.ToLower(s))
	if e == "" {
		return "", true
	}
	_, err := mail.ParseAddress(e)
	return e, err == nil
}

// NormPhone strips everything but digits and a leading plus. Phone is an
// optional contact/pickup field here, not an identity.
func NormPhone(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for i, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}
