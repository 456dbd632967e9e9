package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/nutrilife/campus/api/internal/database"
	"github.com/nutrilife/campus/api/internal/model"
)

// EventRepository handles event data access.
//
// The only event field this API ever writes is seats_left, and every
// seats_left write goes through a guarded transaction script so that
// concurrent registrations and deregistrations cannot lose updates.
type EventRepository struct {
	db database.Database
}

// NewEventRepository creates a new event repository
func NewEventRepository(db database.Database) *EventRepository {
	return &EventRepository{db: db}
}

// GetByID retrieves an event by ID. Returns (nil, nil) when the event
// does not exist.
func (r *EventRepository) GetByID(ctx context.Context, eventID string) (*model.Event, error) {
	query := `SELECT * FROM type::record($event_id)`
	vars := map[string]interface{}{"event_id": eventRecordID(eventID)}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return parseEventResult(result)
}

// ListOpen returns all events with status "open". Filtering, sorting and
// pagination happen in the service layer over this snapshot.
func (r *EventRepository) ListOpen(ctx context.Context) ([]*model.Event, error) {
	query := `SELECT * FROM event WHERE status = $status`
	vars := map[string]interface{}{"status": model.EventStatusOpen}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	rows, ok := extractQueryResults(result)
	if !ok {
		return nil, nil
	}

	events := make([]*model.Event, 0, len(rows))
	for _, row := range rows {
		event, err := parseEventResult(row)
		if err != nil {
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

// ApplySeatDecision commits one allocation decision atomically: the
// registration's status transition together with the event's seats_left
// decrement (when the decision confirmed a seat). Both writes are
// guarded: the event on the seats_left value the deciding read
// observed, the registration on still being pending. A fired guard
// aborts the whole transaction; (false, nil) tells the allocation
// engine to re-read and retry.
func (r *EventRepository) ApplySeatDecision(ctx context.Context, registrationID string, d model.SeatDecision) (bool, error) {
	var sb strings.Builder
	vars := map[string]interface{}{
		"registration_id": registrationID,
		"status":          d.Status,
		"pending":         model.RegistrationStatusPending,
	}

	sb.WriteString("BEGIN TRANSACTION;\n")
	if d.UpdateEvent {
		sb.WriteString(`LET $ev = UPDATE type::record($event_id)
	SET seats_left = $seats_left, updated_on = time::now()
	WHERE (IF type::is::int(seats_left) { seats_left } ELSE { capacity }) = $expected_seats_left
	RETURN AFTER;
IF array::len($ev) = 0 { THROW "seat allocation conflict" };
`)
		vars["event_id"] = eventRecordID(d.EventID)
		vars["seats_left"] = d.SeatsLeft
		vars["expected_seats_left"] = d.ExpectedSeatsLeft
	}
	sb.WriteString(`LET $reg = UPDATE type::record($registration_id)
	SET status = $status
	WHERE status = $pending
	RETURN AFTER;
IF array::len($reg) = 0 { THROW "registration status conflict" };
COMMIT TRANSACTION;`)

	if err := r.db.Execute(ctx, sb.String(), vars); err != nil {
		if errors.Is(err, database.ErrConflict) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ReleaseSeat returns one seat to an event after a confirmed
// registration was deleted. The increment happens inside the store in a
// single statement, defaulting a missing or malformed seats_left to 0
// first. A missing event is a no-op: there is nothing to reconcile.
// (false, nil) signals store-level write contention worth retrying.
func (r *EventRepository) ReleaseSeat(ctx context.Context, eventID string) (bool, error) {
	query := `UPDATE type::record($event_id)
	SET seats_left = (IF type::is::int(seats_left) { seats_left } ELSE { 0 }) + 1,
	    updated_on = time::now()`
	vars := map[string]interface{}{"event_id": eventRecordID(eventID)}

	if err := r.db.Execute(ctx, query, vars); err != nil {
		if errors.Is(err, database.ErrConflict) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// eventRecordID qualifies a bare event ID with its table name.
func eventRecordID(id string) string {
	if strings.Contains(id, ":") {
		return id
	}
	return "event:" + id
}

// parseEventResult maps a SurrealDB row to a model.Event. seats_left
// normalization happens here, once: a missing or non-numeric value reads
// as the event's capacity (legacy documents predate the counter).
func parseEventResult(result interface{}) (*model.Event, error) {
	m, ok := result.(map[string]interface{})
	if !ok {
		return nil, database.ErrQuery
	}

	event := &model.Event{
		ID:          extractRecordID(m["id"]),
		Title:       getString(m, "title"),
		Description: getString(m, "description"),
		Category:    getString(m, "category"),
		Tags:        getStringSlice(m, "tags"),
		StartAt:     parseTime(m["start_at"]),
		EndAt:       parseTime(m["end_at"]),
		Capacity:    getInt(m, "capacity"),
		Status:      getString(m, "status"),
		CreatedOn:   parseTime(m["created_on"]),
		UpdatedOn:   parseTime(m["updated_on"]),
	}

	if loc, ok := m["location"].(map[string]interface{}); ok {
		event.Location = model.EventLocation{
			Name:    getString(loc, "name"),
			Address: getString(loc, "address"),
		}
	}

	seats, known := parseCount(m["seats_left"])
	if !known {
		seats = event.Capacity
	}
	event.SeatsLeft = seats

	return event, nil
}
