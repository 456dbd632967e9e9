package handler

import (
	"net/http"

	"github.com/nutrilife/campus/api/internal/middleware"
	"github.com/nutrilife/campus/api/internal/model"
	"github.com/nutrilife/campus/api/internal/service"
)

// ReminderHandler handles the administrative bulk reminder endpoint
type ReminderHandler struct {
	reminderService *service.ReminderService
}

// NewReminderHandler creates a new reminder handler
func NewReminderHandler(reminderService *service.ReminderService) *ReminderHandler {
	return &ReminderHandler{
		reminderService: reminderService,
	}
}

// Send handles POST /v1/admin/events/{eventId}/reminders - dispatch a bulk
// reminder to an event's registrants
func (h *ReminderHandler) Send(w http.ResponseWriter, r *http.Request) {
	callerID := middleware.GetUserID(r.Context())
	if callerID == "" {
		WriteError(w, model.NewUnauthorizedError("authentication required"))
		return
	}

	eventID := r.PathValue("eventId")
	if eventID == "" {
		WriteError(w, model.NewBadRequestError("event ID required"))
		return
	}

	// Reminders go to confirmed registrants unless explicitly widened.
	onlyConfirmed := r.URL.Query().Get("only_confirmed") != "false"

	result, err := h.reminderService.SendEventReminder(r.Context(), callerID, eventID, onlyConfirmed)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteData(w, http.StatusOK, result, nil)
}
