package resend

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v3"

	"github.com/dmitrymomot/scaffold/pkg/mailer"
)

// ProviderName identifies this sender in provider factories.
const ProviderName = "resend"

// Sender delivers messages through the Resend API.
type Sender struct {
	client *resend.Client
	from   mailer.Address
}

// New creates a Resend sender.
func New(cfg Config) *Sender {
	return &Sender{
		client: resend.NewClient(cfg.APIKey),
		from:   mailer.Address{Email: cfg.SenderEmail, Name: cfg.SenderName},
	}
}

func (s *Sender) Send(ctx context.Context, msg *mailer.Message) (*mailer.Result, error) {
	from := msg.From
	if from.IsZero() {
		from = s.from
	}

	req := &resend.SendEmailRequest{
		From:    from.String(),
		To:      mailer.AddressList(msg.To),
		Cc:      mailer.AddressList(msg.CC),
		Bcc:     mailer.AddressList(msg.BCC),
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
		Headers: msg.Headers,
	}
	if msg.ReplyTo != nil {
		req.ReplyTo = msg.ReplyTo.String()
	}
	for _, a := range msg.Attachments {
		req.Attachments = append(req.Attachments, &resend.Attachment{
			Filename:    a.Name,
			Content:     a.Content,
			ContentType: a.Type,
			ContentId:   a.ContentID,
		})
	}
	for name, value := range msg.Tags {
		req.Tags = append(req.Tags, resend.Tag{Name: name, Value: value})
	}

	sent, err := s.client.Emails.SendWithContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("resend: send email: %w", err)
	}
	return &mailer.Result{ID: sent.Id, Provider: ProviderName}, nil
}
