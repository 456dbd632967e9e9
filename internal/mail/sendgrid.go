package mail

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// ErrNotConfigured is returned when a send is attempted without an API key.
var ErrNotConfigured = errors.New("mailer is not configured")

// Config holds SendGrid settings.
type Config struct {
	APIKey      string
	SenderEmail string
	SenderName  string
}

// SendGrid implements Mailer over the SendGrid v3 API.
type SendGrid struct {
	client *sendgrid.Client
	from   *sgmail.Email
}

// NewSendGrid creates a SendGrid mailer. With an empty API key the
// mailer is disabled but still constructible, so wiring does not branch
// on configuration.
func NewSendGrid(cfg Config) *SendGrid {
	m := &SendGrid{
		from: sgmail.NewEmail(cfg.SenderName, cfg.SenderEmail),
	}
	if cfg.APIKey != "" {
		m.client = sendgrid.NewSendClient(cfg.APIKey)
	}
	return m
}

// Enabled reports whether an API key was configured.
func (m *SendGrid) Enabled() bool {
	return m.client != nil
}

// Send dispatches one message.
func (m *SendGrid) Send(ctx context.Context, msg Message) error {
	if m.client == nil {
		return ErrNotConfigured
	}

	v3 := sgmail.NewV3Mail()
	v3.SetFrom(m.from)
	v3.Subject = msg.Subject
	v3.AddContent(sgmail.NewContent("text/html", msg.HTML))

	p := sgmail.NewPersonalization()
	p.AddTos(sgmail.NewEmail(msg.ToName, msg.ToEmail))
	v3.AddPersonalizations(p)

	addAttachments(v3, msg.Attachments)

	return m.send(ctx, v3)
}

// SendBatch dispatches a batch as one API call with one personalization
// per recipient.
func (m *SendGrid) SendBatch(ctx context.Context, batch Batch) error {
	if m.client == nil {
		return ErrNotConfigured
	}
	if len(batch.Recipients) == 0 {
		return nil
	}

	v3 := sgmail.NewV3Mail()
	v3.SetFrom(m.from)
	v3.Subject = batch.Subject
	v3.AddContent(sgmail.NewContent("text/html", batch.HTML))

	for _, rcp := range batch.Recipients {
		p := sgmail.NewPersonalization()
		p.AddTos(sgmail.NewEmail(rcp.Name, rcp.Email))
		v3.AddPersonalizations(p)
	}

	addAttachments(v3, batch.Attachments)

	return m.send(ctx, v3)
}

func (m *SendGrid) send(ctx context.Context, v3 *sgmail.SGMailV3) error {
	resp, err := m.client.SendWithContext(ctx, v3)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

func addAttachments(v3 *sgmail.SGMailV3, attachments []Attachment) {
	for _, a := range attachments {
		att := sgmail.NewAttachment()
		att.SetFilename(a.Filename)
		att.SetType(a.MIMEType)
		att.SetContent(base64.StdEncoding.EncodeToString(a.Content))
		disposition := a.Disposition
		if disposition == "" {
			disposition = "attachment"
		}
		att.SetDisposition(disposition)
		v3.AddAttachment(att)
	}
}
