package handler

import (
	"errors"

	"github.com/nutrilife/campus/api/internal/model"
	"github.com/nutrilife/campus/api/internal/service"
)

// MapServiceError converts a service error to a ProblemDetails response.
// This centralizes error handling logic for all handlers, ensuring consistent
// HTTP status codes and error messages across the API.
func MapServiceError(err error) *model.ProblemDetails {
	if err == nil {
		return nil
	}

	switch {
	// ===== Authentication Errors → 401 =====
	case errors.Is(err, service.ErrUnauthenticated):
		return model.NewUnauthorizedError(err.Error())

	// ===== Not Found Errors → 404 =====
	case errors.Is(err, service.ErrEventNotFound):
		return model.NewNotFoundError("event")
	case errors.Is(err, service.ErrRegistrationNotFound):
		return model.NewNotFoundError("registration")
	case errors.Is(err, service.ErrRecipeNotFound):
		return model.NewNotFoundError("recipe")

	// ===== Conflict Errors → 409 =====
	case errors.Is(err, service.ErrAlreadyRegistered),
		errors.Is(err, service.ErrAlreadyRated):
		return model.NewConflictError(err.Error())
	case errors.Is(err, service.ErrAllocationConflict):
		return model.NewConflictError("the event is being updated concurrently, please retry")

	// ===== Validation Errors → 422 =====
	case errors.Is(err, service.ErrUserIDRequired):
		return model.NewValidationError([]model.FieldError{{Field: "user_id", Message: err.Error()}})
	case errors.Is(err, service.ErrNameRequired):
		return model.NewValidationError([]model.FieldError{{Field: "name", Message: err.Error()}})
	case errors.Is(err, service.ErrEmailRequired),
		errors.Is(err, service.ErrInvalidEmail):
		return model.NewValidationError([]model.FieldError{{Field: "email", Message: err.Error()}})
	case errors.Is(err, service.ErrInvalidStars):
		return model.NewValidationError([]model.FieldError{{Field: "stars", Message: err.Error()}})
	case errors.Is(err, service.ErrEventIDRequired):
		return model.NewValidationError([]model.FieldError{{Field: "event_id", Message: err.Error()}})

	// ===== Default → 500 =====
	default:
		return model.NewInternalError("")
	}
}

// MapServiceErrorWithContext converts a service error to a ProblemDetails response
// with additional context about the operation that failed.
func MapServiceErrorWithContext(err error, operation string) *model.ProblemDetails {
	pd := MapServiceError(err)
	if pd != nil && pd.Status == 500 {
		pd.Detail = operation + ": an unexpected error occurred"
	}
	return pd
}
