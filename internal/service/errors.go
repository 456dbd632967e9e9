package service

import "errors"

// Centralized service layer errors.
// All errors returned by service methods are defined here for consistency
// and to make error handling in handlers predictable.

// ===== Not Found Errors =====
var (
	ErrEventNotFound        = errors.New("event not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrRecipeNotFound       = errors.New("recipe not found")
)

// ===== Seat Allocation Errors =====
var (
	// ErrAllocationConflict means the retry budget for the allocation or
	// release transaction ran out under contention. Never swallowed:
	// seats_left correctness depends on the caller seeing this.
	ErrAllocationConflict = errors.New("seat allocation retry budget exhausted")
)

// ===== Registration Errors =====
var (
	ErrAlreadyRegistered = errors.New("already registered for this event")
	ErrUserIDRequired    = errors.New("user_id is required")
	ErrNameRequired      = errors.New("name is required")
	ErrEmailRequired     = errors.New("email is required")
	ErrInvalidEmail      = errors.New("invalid email format")
)

// ===== Recipe Rating Errors =====
var (
	ErrAlreadyRated = errors.New("recipe already rated by this user")
	ErrInvalidStars = errors.New("stars must be between 1 and 5")
)

// ===== Reminder Errors =====
var (
	ErrUnauthenticated = errors.New("login required")
	ErrEventIDRequired = errors.New("event id is required")
)
