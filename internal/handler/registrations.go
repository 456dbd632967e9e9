package handler

import (
	"net/http"

	"github.com/nutrilife/campus/api/internal/model"
	"github.com/nutrilife/campus/api/internal/service"
)

// RegistrationHandler handles event registration endpoints
type RegistrationHandler struct {
	registrationService *service.RegistrationService
}

// NewRegistrationHandler creates a new registration handler
func NewRegistrationHandler(registrationService *service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{
		registrationService: registrationService,
	}
}

// Register handles POST /v1/events/{eventId}/registrations - register for an event
//
// The registration is created as pending and decided asynchronously; the
// 202 response reflects that the confirmed/waitlist outcome arrives by
// email, not in this response.
func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventId")
	if eventID == "" {
		WriteError(w, model.NewBadRequestError("event ID required"))
		return
	}

	var req model.CreateRegistrationRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, model.NewBadRequestError("invalid request body"))
		return
	}

	reg, err := h.registrationService.Register(r.Context(), eventID, req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusAccepted, reg, map[string]string{
		"event": "/v1/events",
	})
}

// Deregister handles DELETE /v1/events/{eventId}/registrations/{userId} -
// cancel a registration
func (h *RegistrationHandler) Deregister(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventId")
	userID := r.PathValue("userId")
	if eventID == "" || userID == "" {
		WriteError(w, model.NewBadRequestError("event ID and user ID required"))
		return
	}

	if err := h.registrationService.Deregister(r.Context(), eventID, userID); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteNoContent(w)
}
