package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nutrilife/campus/api/internal/mail"
	"github.com/nutrilife/campus/api/internal/model"
	"github.com/nutrilife/campus/api/pkg/ics"
)

// EventReader reads events for the post-allocation notification step.
type EventReader interface {
	GetByID(ctx context.Context, eventID string) (*model.Event, error)
}

// RegistrationStore is the registration-side interface for the lifecycle
// coordinator.
type RegistrationStore interface {
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*model.Registration, error)
	SetMailedAt(ctx context.Context, registrationID string, mailedAt time.Time) error
}

// LifecycleService coordinates the registration lifecycle: on creation
// it runs the seat allocation engine and then dispatches exactly one
// confirmation/waitlist notification; on deletion it releases a
// previously confirmed seat.
type LifecycleService struct {
	alloc         *AllocationService
	events        EventReader
	registrations RegistrationStore
	mailer        mail.Mailer
	loc           *time.Location
	senderName    string
}

// LifecycleServiceConfig holds dependencies for the lifecycle coordinator.
type LifecycleServiceConfig struct {
	Allocation    *AllocationService
	Events        EventReader
	Registrations RegistrationStore
	Mailer        mail.Mailer

	// Timezone is the display timezone for email bodies.
	Timezone *time.Location

	// SenderName signs outbound email bodies.
	SenderName string
}

// NewLifecycleService constructs the lifecycle coordinator.
func NewLifecycleService(cfg LifecycleServiceConfig) *LifecycleService {
	loc := cfg.Timezone
	if loc == nil {
		loc = time.UTC
	}
	name := cfg.SenderName
	if name == "" {
		name = "NutriLife Campus"
	}
	return &LifecycleService{
		alloc:         cfg.Allocation,
		events:        cfg.Events,
		registrations: cfg.Registrations,
		mailer:        cfg.Mailer,
		loc:           loc,
		senderName:    name,
	}
}

// HandleRegistrationCreated runs the creation workflow: allocation first,
// then the notification step. The allocation must commit before any
// notification is attempted; an allocation failure aborts the whole
// workflow with no mail sent.
//
// The notification step is idempotent: a registration whose mailed_at is
// already set, or that vanished in a concurrent delete, is skipped
// silently. A dispatch failure propagates without stamping mailed_at so
// a redelivered trigger sends again (at-least-once, never zero).
func (s *LifecycleService) HandleRegistrationCreated(ctx context.Context, eventID, userID string) error {
	status, err := s.alloc.Allocate(ctx, eventID, userID)
	if err != nil {
		return err
	}

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	reg, err := s.registrations.GetByEventAndUser(ctx, eventID, userID)
	if err != nil {
		return err
	}
	if event == nil || reg == nil {
		// Lost a race with a concurrent delete; nothing left to notify.
		return nil
	}
	if reg.MailedAt != nil {
		return nil
	}

	now := time.Now()
	invite := ics.Build(ics.Invite{
		Seed:        userID,
		Title:       event.Title,
		Start:       event.StartAt,
		End:         event.EndAt,
		Location:    event.Location.Name,
		Description: event.Description,
	}, now)

	msg := s.composeDecisionMail(event, reg, status, invite)

	if !s.mailer.Enabled() {
		slog.Warn("mailer not configured, skipping registration notification",
			slog.String("event_id", eventID),
			slog.String("user_id", userID),
		)
	} else if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("dispatch registration notification: %w", err)
	}

	return s.registrations.SetMailedAt(ctx, reg.ID, now)
}

// HandleRegistrationDeleted runs the deletion workflow: a registration
// that never held a confirmed seat releases nothing.
func (s *LifecycleService) HandleRegistrationDeleted(ctx context.Context, eventID string, lastKnown *model.Registration) error {
	if lastKnown == nil || lastKnown.Status != model.RegistrationStatusConfirmed {
		return nil
	}
	return s.alloc.Release(ctx, eventID)
}

// composeDecisionMail builds the confirmation or waitlist message for a
// decided registration.
func (s *LifecycleService) composeDecisionMail(event *model.Event, reg *model.Registration, status, invite string) mail.Message {
	subject := "Waitlist Confirmation: " + event.Title
	if status == model.RegistrationStatusConfirmed {
		subject = "Registration Confirmed: " + event.Title
	}

	name := reg.Name
	if name == "" {
		name = "there"
	}

	html := fmt.Sprintf(`<p>Hi %s,</p>
<p>Your registration status: <strong>%s</strong></p>
<p><strong>%s</strong><br/>
   %s &ndash; %s<br/>
   %s</p>
<p>See attached calendar invite.</p>
<p>%s</p>`,
		name,
		strings.ToUpper(status),
		event.Title,
		s.formatLocal(event.StartAt),
		s.formatLocal(event.EndAt),
		event.Location.Name,
		s.senderName,
	)

	return mail.Message{
		ToName:  reg.Name,
		ToEmail: reg.Email,
		Subject: subject,
		HTML:    html,
		Attachments: []mail.Attachment{{
			Filename:    event.Title + ".ics",
			MIMEType:    "text/calendar",
			Content:     []byte(invite),
			Disposition: "attachment",
		}},
	}
}

// formatLocal renders a timestamp in the configured display timezone.
func (s *LifecycleService) formatLocal(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(s.loc).Format("2 Jan 2006, 3:04 pm")
}
