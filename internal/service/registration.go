package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nutrilife/campus/api/internal/model"
	"github.com/nutrilife/campus/api/internal/repository"
)

// RegistrationWriter creates and deletes registration documents.
type RegistrationWriter interface {
	Create(ctx context.Context, eventID string, req model.CreateRegistrationRequest) (*model.Registration, error)
	Delete(ctx context.Context, eventID, userID string) (*model.Registration, error)
}

// TriggerPublisher publishes registration lifecycle triggers to the bus.
// Publication happens after the document write commits, mirroring a
// document store's create/delete hooks.
type TriggerPublisher interface {
	RegistrationCreated(eventID, userID string)
	RegistrationDeleted(eventID string, lastKnown *model.Registration)
}

// RegistrationService handles the registrant-facing surface: creating a
// pending registration and deleting one, each followed by a trigger
// publication that drives the lifecycle coordinator.
type RegistrationService struct {
	registrations RegistrationWriter
	triggers      TriggerPublisher
}

// RegistrationServiceConfig holds dependencies for the registration service.
type RegistrationServiceConfig struct {
	Registrations RegistrationWriter
	Triggers      TriggerPublisher
}

// NewRegistrationService constructs the registration service.
func NewRegistrationService(cfg RegistrationServiceConfig) *RegistrationService {
	return &RegistrationService{
		registrations: cfg.Registrations,
		triggers:      cfg.Triggers,
	}
}

// Register validates the request, creates a pending registration and
// publishes the creation trigger. The allocation decision itself happens
// asynchronously in the trigger workflow.
func (s *RegistrationService) Register(ctx context.Context, eventID string, req model.CreateRegistrationRequest) (*model.Registration, error) {
	if eventID == "" {
		return nil, ErrEventIDRequired
	}
	req.UserID = strings.TrimSpace(req.UserID)
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	if req.UserID == "" {
		return nil, ErrUserIDRequired
	}
	if req.Name == "" {
		return nil, ErrNameRequired
	}
	if req.Email == "" {
		return nil, ErrEmailRequired
	}
	if !isValidEmail(req.Email) {
		return nil, ErrInvalidEmail
	}

	reg, err := s.registrations.Create(ctx, eventID, req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEventMissing):
			return nil, ErrEventNotFound
		case errors.Is(err, repository.ErrAlreadyRegistered):
			return nil, ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("create registration: %w", err)
	}

	s.triggers.RegistrationCreated(eventID, reg.UserID)
	return reg, nil
}

// Deregister deletes a registration and publishes the deletion trigger
// with the last-known document state.
func (s *RegistrationService) Deregister(ctx context.Context, eventID, userID string) error {
	if eventID == "" {
		return ErrEventIDRequired
	}
	if userID == "" {
		return ErrUserIDRequired
	}

	lastKnown, err := s.registrations.Delete(ctx, eventID, userID)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	if lastKnown == nil {
		return ErrRegistrationNotFound
	}

	s.triggers.RegistrationDeleted(eventID, lastKnown)
	return nil
}

// isValidEmail does a basic structural check.
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	return len(parts[0]) > 0 && strings.Contains(parts[1], ".")
}
