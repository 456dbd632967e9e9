package service

import (
	"context"
	"log/slog"

	"github.com/nutrilife/campus/api/internal/model"
)

// defaultAllocationAttempts bounds the optimistic retry loop. Contention
// on one event is short-lived; anything that conflicts this many times
// in a row is surfaced as ErrAllocationConflict rather than spun on.
const defaultAllocationAttempts = 5

// SeatStore is the event-side store interface the allocation engine needs.
type SeatStore interface {
	GetByID(ctx context.Context, eventID string) (*model.Event, error)
	ApplySeatDecision(ctx context.Context, registrationID string, d model.SeatDecision) (bool, error)
	ReleaseSeat(ctx context.Context, eventID string) (bool, error)
}

// RegistrationReader is the registration-side read interface for the engine.
type RegistrationReader interface {
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*model.Registration, error)
}

// AllocationService is the seat allocation engine: it decides confirmed
// vs. waitlist for a pending registration and adjusts the event's
// seats_left, atomically.
type AllocationService struct {
	events        SeatStore
	registrations RegistrationReader
	maxAttempts   int
}

// AllocationServiceConfig holds dependencies for the allocation engine.
type AllocationServiceConfig struct {
	Events        SeatStore
	Registrations RegistrationReader

	// MaxAttempts overrides the conflict retry budget; 0 means default.
	MaxAttempts int
}

// NewAllocationService constructs the seat allocation engine.
func NewAllocationService(cfg AllocationServiceConfig) *AllocationService {
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = defaultAllocationAttempts
	}
	return &AllocationService{
		events:        cfg.Events,
		registrations: cfg.Registrations,
		maxAttempts:   attempts,
	}
}

// Allocate decides the final status for a registration and commits the
// decision together with the matching seats_left change.
//
// A registration that is no longer pending was decided by an earlier
// invocation; its status is returned unchanged with no writes, which
// makes the engine safe under at-least-once trigger delivery.
//
// The read-decide-apply cycle repeats while the guarded write reports
// contention; each retry re-reads both documents, so the cycle is
// equivalent to a store transaction retried on conflict.
func (s *AllocationService) Allocate(ctx context.Context, eventID, userID string) (string, error) {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		event, err := s.events.GetByID(ctx, eventID)
		if err != nil {
			return "", err
		}
		if event == nil {
			return "", ErrEventNotFound
		}

		reg, err := s.registrations.GetByEventAndUser(ctx, eventID, userID)
		if err != nil {
			return "", err
		}
		if reg == nil {
			return "", ErrRegistrationNotFound
		}

		if reg.Status != model.RegistrationStatusPending {
			return reg.Status, nil
		}

		decision := decideSeat(event, userID)
		applied, err := s.events.ApplySeatDecision(ctx, reg.ID, decision)
		if err != nil {
			return "", err
		}
		if applied {
			return decision.Status, nil
		}

		slog.Debug("seat allocation conflict, retrying",
			slog.String("event_id", eventID),
			slog.String("user_id", userID),
			slog.Int("attempt", attempt),
		)
	}

	return "", ErrAllocationConflict
}

// Release returns a seat to an event after a confirmed registration was
// deleted. A missing event is a no-op inside the store; contention is
// retried under the same budget as Allocate.
func (s *AllocationService) Release(ctx context.Context, eventID string) error {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		applied, err := s.events.ReleaseSeat(ctx, eventID)
		if err != nil {
			return err
		}
		if applied {
			return nil
		}

		slog.Debug("seat release conflict, retrying",
			slog.String("event_id", eventID),
			slog.Int("attempt", attempt),
		)
	}

	return ErrAllocationConflict
}

// decideSeat is the allocation decision as a pure function of the
// documents the transaction read: one typed value carrying both the
// final status and the event write it must commit with.
func decideSeat(event *model.Event, userID string) model.SeatDecision {
	d := model.SeatDecision{
		EventID:           event.ID,
		UserID:            userID,
		ExpectedSeatsLeft: event.SeatsLeft,
	}
	if event.SeatsLeft > 0 {
		d.Status = model.RegistrationStatusConfirmed
		d.SeatsLeft = event.SeatsLeft - 1
		d.UpdateEvent = true
		return d
	}
	d.Status = model.RegistrationStatusWaitlist
	return d
}
