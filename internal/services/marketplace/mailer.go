package marketplace

import (
	"context"

	"github.com/sirupsen/logrus"
)

type Email struct {
	To      string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, mail Email) error
}

// LogMailer writes outbound mail to the log instead of an SMTP relay.
type LogMailer struct {
	From string
	Log  logrus.FieldLogger
}

func (m LogMailer) Send(ctx context.Context, mail Email) error {
	m.Log.WithFields(logrus.Fields{
		"from":    m.From,
		"to":      mail.To,
		"subject": mail.Subject,
	}).Info("outbound email")
	m.Log.WithField("to", mail.To).Debug(mail.Body)
	return nil
}
