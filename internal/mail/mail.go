// Package mail is the outbound notification dispatcher for the NutriLife
// Campus API.
//
// Delivery goes through SendGrid. An unconfigured dispatcher (no API
// key) is a valid, handled state: callers check Enabled and skip
// dispatch with a warning instead of failing their workflow.
package mail

import "context"

// Attachment is a file attached to an outbound message. Content is the
// raw bytes; base64 encoding happens at the SendGrid boundary.
type Attachment struct {
	Filename    string
	MIMEType    string
	Content     []byte
	Disposition string
}

// Message is a single outbound email.
type Message struct {
	ToName      string
	ToEmail     string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// Recipient is one addressee of a batch send.
type Recipient struct {
	Name  string
	Email string
}

// Batch is one message delivered to many recipients in a single
// dispatch: shared subject, body and attachments, personalized address.
type Batch struct {
	Recipients  []Recipient
	Subject     string
	HTML        string
	Attachments []Attachment
}

// Mailer dispatches notifications with an at-least-once contract: a nil
// return means the provider accepted the message, an error means the
// caller must assume nothing was delivered and may retry.
type Mailer interface {
	// Enabled reports whether the dispatcher is configured. When false,
	// Send and SendBatch must not be called.
	Enabled() bool

	// Send dispatches one message.
	Send(ctx context.Context, msg Message) error

	// SendBatch dispatches one batch as a single provider call.
	SendBatch(ctx context.Context, batch Batch) error
}
