package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nutrilife/campus/api/internal/mail"
	"github.com/nutrilife/campus/api/internal/model"
	"github.com/nutrilife/campus/api/pkg/ics"
)

// RegistrationLister lists an event's registrations for bulk mail.
type RegistrationLister interface {
	ListByEvent(ctx context.Context, eventID string, onlyConfirmed bool) ([]*model.Registration, error)
}

// ReminderService sends the administrative bulk reminder for an event.
type ReminderService struct {
	events        EventReader
	registrations RegistrationLister
	mailer        mail.Mailer
	loc           *time.Location
	senderName    string
}

// ReminderServiceConfig holds dependencies for the reminder service.
type ReminderServiceConfig struct {
	Events        EventReader
	Registrations RegistrationLister
	Mailer        mail.Mailer
	Timezone      *time.Location
	SenderName    string
}

// NewReminderService constructs the reminder service.
func NewReminderService(cfg ReminderServiceConfig) *ReminderService {
	loc := cfg.Timezone
	if loc == nil {
		loc = time.UTC
	}
	name := cfg.SenderName
	if name == "" {
		name = "NutriLife Campus"
	}
	return &ReminderService{
		events:        cfg.Events,
		registrations: cfg.Registrations,
		mailer:        cfg.Mailer,
		loc:           loc,
		senderName:    name,
	}
}

// ReminderResult reports a bulk reminder dispatch.
type ReminderResult struct {
	Sent          int    `json:"sent"`
	OnlyConfirmed bool   `json:"only_confirmed"`
	Message       string `json:"message,omitempty"`
}

// SendEventReminder dispatches one reminder per registrant as a single
// batch. callerID must identify an authenticated caller. When the
// mailer is unconfigured the call succeeds with a zero count and an
// explanatory message instead of failing.
func (s *ReminderService) SendEventReminder(ctx context.Context, callerID, eventID string, onlyConfirmed bool) (*ReminderResult, error) {
	if callerID == "" {
		return nil, ErrUnauthenticated
	}
	if eventID == "" {
		return nil, ErrEventIDRequired
	}

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}

	regs, err := s.registrations.ListByEvent(ctx, eventID, onlyConfirmed)
	if err != nil {
		return nil, err
	}

	recipients := make([]mail.Recipient, 0, len(regs))
	for _, reg := range regs {
		if reg.Email == "" {
			continue
		}
		name := reg.Name
		if name == "" {
			name = "Participant"
		}
		recipients = append(recipients, mail.Recipient{Name: name, Email: reg.Email})
	}

	if !s.mailer.Enabled() {
		slog.Warn("mailer not configured, skipping event reminder",
			slog.String("event_id", eventID),
			slog.Int("recipients", len(recipients)),
		)
		return &ReminderResult{Sent: 0, Message: "mailer not configured"}, nil
	}

	// One shared artifact for the whole batch; the seed is tied to the
	// event, not any single registrant.
	invite := ics.Build(ics.Invite{
		Seed:        "bulk-" + eventID,
		Title:       event.Title,
		Start:       event.StartAt,
		End:         event.EndAt,
		Location:    s.locationLine(event),
		Description: event.Description,
	}, time.Now())

	start := s.formatLocal(event.StartAt)
	batch := mail.Batch{
		Recipients: recipients,
		Subject:    fmt.Sprintf("Reminder: %s starts %s", event.Title, start),
		HTML: fmt.Sprintf(`<p>Hi,</p>
<p>This is a friendly reminder that <strong>%s</strong> is starting soon.</p>
<p><strong>When:</strong> %s &ndash; %s<br/>
   <strong>Where:</strong> %s</p>
<p>Please find the calendar invite attached.</p>
<p>%s</p>`,
			event.Title,
			start,
			s.formatLocal(event.EndAt),
			s.locationLine(event),
			s.senderName,
		),
		Attachments: []mail.Attachment{{
			Filename:    event.Title + ".ics",
			MIMEType:    "text/calendar",
			Content:     []byte(invite),
			Disposition: "attachment",
		}},
	}

	if err := s.mailer.SendBatch(ctx, batch); err != nil {
		return nil, fmt.Errorf("dispatch event reminder: %w", err)
	}

	slog.Info("event reminder sent",
		slog.String("event_id", eventID),
		slog.Int("sent", len(recipients)),
		slog.Bool("only_confirmed", onlyConfirmed),
	)

	return &ReminderResult{Sent: len(recipients), OnlyConfirmed: onlyConfirmed}, nil
}

// locationLine picks the best available location text for an event.
func (s *ReminderService) locationLine(event *model.Event) string {
	if event.Location.Name != "" {
		return event.Location.Name
	}
	if event.Location.Address != "" {
		return event.Location.Address
	}
	return "See event page"
}

// formatLocal renders a timestamp in the configured display timezone.
func (s *ReminderService) formatLocal(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(s.loc).Format("2 Jan 2006, 3:04 pm")
}
