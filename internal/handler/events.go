package handler

import (
	"net/http"
	"strconv"

	"github.com/nutrilife/campus/api/internal/model"
	"github.com/nutrilife/campus/api/internal/service"
)

// EventHandler handles the public event listing endpoints
type EventHandler struct {
	eventService *service.EventService
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService *service.EventService) *EventHandler {
	return &EventHandler{
		eventService: eventService,
	}
}

// List handles GET /v1/events - list open events
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	filters := model.EventSearchFilters{
		Query: r.URL.Query().Get("q"),
		Limit: queryInt(r, "limit"),
		Page:  queryInt(r, "page"),
	}

	page, err := h.eventService.ListOpen(r.Context(), filters)
	if err != nil {
		WriteError(w, MapServiceErrorWithContext(err, "list events"))
		return
	}

	WriteCollection(w, http.StatusOK, page.Events, &PaginationInfo{
		Page:  page.Page,
		Limit: page.Limit,
		Total: page.Total,
	}, map[string]string{
		"self": "/v1/events",
	})
}

// queryInt parses an integer query parameter, 0 when absent or invalid.
func queryInt(r *http.Request, key string) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
