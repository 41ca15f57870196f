package mailer

import "gopkg.in/gomail.v2"

// Mailer sends outbound mail. Delivery failures propagate to the
// caller; nothing here retries.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer delivers mail through a single SMTP endpoint.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

var _ Mailer = (*SMTPMailer)(nil)

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return m.dialer.DialAndSend(msg)
}
