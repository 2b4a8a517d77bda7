// Package mail provides outbound notification mail composition and delivery.
// All transport failures, whether returned or raised by the underlying
// library, are normalized into a single error form before they reach the
// business logic.
package mail

import (
	"context"
	"fmt"

	gomail "gopkg.in/gomail.v2"

	apperrors "github.com/allisson/privacy/internal/errors"
)

// ErrSendFailed indicates the mail transport could not deliver the message.
var ErrSendFailed = apperrors.Wrap(apperrors.ErrUnavailable, "mail delivery failed")

// Message is a composed notification mail ready for delivery.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers notification mails.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig holds the mail relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// dialer abstracts the gomail transport so delivery failures of either
// convention can be simulated.
type dialer interface {
	DialAndSend(msgs ...*gomail.Message) error
}

// SMTPMailer delivers mails through an SMTP relay using gomail.
type SMTPMailer struct {
	dialer dialer
	from   string
}

// NewSMTPMailer creates an SMTPMailer for the given relay configuration.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// Send delivers the message through the SMTP relay. The transport library can
// fail by returned error or by panic; both are converted into ErrSendFailed
// so callers only handle one failure convention.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.Wrap(ErrSendFailed, fmt.Sprintf("mail transport panic: %v", r))
		}
	}()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return apperrors.Wrap(ErrSendFailed, ctxErr.Error())
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Body)

	if sendErr := m.dialer.DialAndSend(gm); sendErr != nil {
		return apperrors.Wrap(ErrSendFailed, sendErr.Error())
	}

	return nil
}
