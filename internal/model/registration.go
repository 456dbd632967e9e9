package model

import "time"

// Registration is a user's registration for an event. One registration
// exists per (event, user) pair.
//
// Lifecycle: created as pending by the registrant, transitioned exactly
// once to confirmed or waitlist by the seat allocation engine, stamped
// with mailed_at at most once by the lifecycle coordinator, deleted by
// the registrant or an admin.
type Registration struct {
	ID      string `json:"id"`
	EventID string `json:"event_id"`
	UserID  string `json:"user_id"`

	Name  string `json:"name"`
	Email string `json:"email"`

	Status string `json:"status"`

	// MailedAt is set once the confirmation/waitlist notification has been
	// dispatched (or deliberately skipped). Nil means a retried trigger
	// must still attempt notification.
	MailedAt *time.Time `json:"mailed_at,omitempty"`

	CreatedOn time.Time `json:"created_on"`
}

// Registration status constants
const (
	RegistrationStatusPending   = "pending"
	RegistrationStatusConfirmed = "confirmed"
	RegistrationStatusWaitlist  = "waitlist"
)

// CreateRegistrationRequest is the request body for registering for an event.
type CreateRegistrationRequest struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// SeatDecision is the typed outcome of one allocation transaction: the
// final registration status together with the event-side capacity write
// it must commit with.
type SeatDecision struct {
	EventID string
	UserID  string

	// Status is the final registration status (confirmed or waitlist).
	Status string

	// ExpectedSeatsLeft is the seats_left value the deciding read observed;
	// the write is guarded on it so a concurrent allocation forces a retry.
	ExpectedSeatsLeft int

	// SeatsLeft is the value to write when UpdateEvent is true.
	SeatsLeft   int
	UpdateEvent bool
}
