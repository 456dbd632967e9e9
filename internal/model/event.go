package model

import "time"

// Event represents a campus event with a fixed seat capacity.
// Events are owned by the admin workflow; this API reads capacity and
// mutates seats_left through the allocation engine only.
type Event struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Tags        []string `json:"tags,omitempty"`

	StartAt  time.Time     `json:"start_at"`
	EndAt    time.Time     `json:"end_at"`
	Location EventLocation `json:"location"`

	// Capacity is immutable after creation. SeatsLeft is normalized at the
	// repository boundary: legacy documents with a missing or non-numeric
	// seats_left read as Capacity.
	Capacity  int `json:"capacity"`
	SeatsLeft int `json:"seats_left"`

	Status string `json:"status"`

	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// EventLocation is where an event takes place.
type EventLocation struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

// Event status constants
const (
	EventStatusOpen   = "open"
	EventStatusClosed = "closed"
)

// EventSummary is the public listing projection of an event.
type EventSummary struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Category  string        `json:"category,omitempty"`
	StartAt   time.Time     `json:"start_at"`
	EndAt     time.Time     `json:"end_at"`
	Location  EventLocation `json:"location"`
	SeatsLeft int           `json:"seats_left"`
	Tags      []string      `json:"tags"`
}

// Summary projects an event into its public listing form.
func (e *Event) Summary() EventSummary {
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	return EventSummary{
		ID:        e.ID,
		Title:     e.Title,
		Category:  e.Category,
		StartAt:   e.StartAt,
		EndAt:     e.EndAt,
		Location:  e.Location,
		SeatsLeft: e.SeatsLeft,
		Tags:      tags,
	}
}

// EventSearchFilters holds query parameters for the public event listing.
type EventSearchFilters struct {
	Query string
	Limit int
	Page  int
}
