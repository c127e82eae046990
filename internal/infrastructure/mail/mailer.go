package mail

import (
	"github.com/ashif1996/recipe-nest/internal/config"
	gomail "gopkg.in/gomail.v2"
)

// Mailer sends emails.
type Mailer interface {
	SendEmail(to, subject, htmlBody string) error
	SendEmailReplyTo(to, replyTo, subject, htmlBody string) error
}

type mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(cfg *config.Config) Mailer {
	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	return &mailer{dialer: d, from: cfg.SMTPFrom}
}

func (m *mailer) SendEmail(to, subject, htmlBody string) error {
	return m.send(to, "", subject, htmlBody)
}

func (m *mailer) SendEmailReplyTo(to, replyTo, subject, htmlBody string) error {
	return m.send(to, replyTo, subject, htmlBody)
}

func (m *mailer) send(to, replyTo, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	if replyTo != "" {
		msg.SetHeader("Reply-To", replyTo)
	}
	msg.SetBody("text/html", htmlBody)
	return m.dialer.DialAndSend(msg)
}
