// Package contact forwards contact form submissions to the site mailbox.
package contact

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/ashif1996/recipe-nest/internal/domain"
)

type Mailer interface {
	SendEmailReplyTo(to, replyTo, subject, htmlBody string) error
}

type Service interface {
	// Send forwards the submission to the configured recipient with the
	// sender's address set as Reply-To.
	Send(ctx context.Context, req domain.ContactRequest) error
}

type ServiceDeps struct {
	Mailer    Mailer
	Recipient string
}

type service struct {
	mailer    Mailer
	recipient string
}

func NewService(d ServiceDeps) Service {
	return &service{mailer: d.Mailer, recipient: d.Recipient}
}

func (s *service) Send(_ context.Context, req domain.ContactRequest) error {
	replyTo := strings.ToLower(strings.TrimSpace(req.Email))
	subject := fmt.Sprintf("RecipeNest contact form: %s", strings.TrimSpace(req.Name))

	// User-supplied text goes into an HTML mail, so escape it.
	body := fmt.Sprintf(
		"<p><strong>From:</strong> %s &lt;%s&gt;</p><p>%s</p>",
		html.EscapeString(req.Name),
		html.EscapeString(replyTo),
		html.EscapeString(req.Message),
	)
	if err := s.mailer.SendEmailReplyTo(s.recipient, replyTo, subject, body); err != nil {
		return fmt.Errorf("send contact email: %w", domain.ErrDelivery)
	}
	return nil
}
