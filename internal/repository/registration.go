package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nutrilife/campus/api/internal/database"
	"github.com/nutrilife/campus/api/internal/model"
)

// Registration creation guard markers thrown by the transaction script.
const (
	throwEventMissing      = "registration event missing"
	throwAlreadyRegistered = "already registered"
)

// Creation guard errors surfaced to the service layer.
var (
	// ErrEventMissing indicates the target event vanished before the
	// registration could be created.
	ErrEventMissing = errors.New("event does not exist")

	// ErrAlreadyRegistered indicates the user already holds a registration
	// for this event.
	ErrAlreadyRegistered = errors.New("user already registered for event")
)

// RegistrationRepository handles registration data access
type RegistrationRepository struct {
	db database.Database
}

// NewRegistrationRepository creates a new registration repository
func NewRegistrationRepository(db database.Database) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// Create creates a pending registration for an event. Event existence
// and per-user uniqueness are checked inside one transaction so a
// concurrent duplicate request cannot slip between check and create.
func (r *RegistrationRepository) Create(ctx context.Context, eventID string, req model.CreateRegistrationRequest) (*model.Registration, error) {
	query := `BEGIN TRANSACTION;
LET $ev = SELECT * FROM type::record($event_id);
IF array::len($ev) = 0 { THROW "` + throwEventMissing + `" };
LET $existing = SELECT * FROM registration WHERE event = type::record($event_id) AND user_id = $user_id;
IF array::len($existing) > 0 { THROW "` + throwAlreadyRegistered + `" };
CREATE registration CONTENT {
	event: type::record($event_id),
	user_id: $user_id,
	name: $name,
	email: $email,
	status: $pending,
	mailed_at: NONE,
	created_on: time::now()
} RETURN AFTER;
COMMIT TRANSACTION;`

	vars := map[string]interface{}{
		"event_id": eventRecordID(eventID),
		"user_id":  req.UserID,
		"name":     req.Name,
		"email":    req.Email,
		"pending":  model.RegistrationStatusPending,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		switch {
		case throwMessageContains(err, throwEventMissing):
			return nil, ErrEventMissing
		case throwMessageContains(err, throwAlreadyRegistered):
			return nil, ErrAlreadyRegistered
		}
		return nil, err
	}

	// The CREATE is the last record-yielding statement in the script.
	rows, ok := extractLastRecords(result)
	if !ok {
		return nil, database.ErrQuery
	}
	return parseRegistrationResult(rows[0])
}

// GetByEventAndUser retrieves a registration by event and user. Returns
// (nil, nil) when no registration exists.
func (r *RegistrationRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*model.Registration, error) {
	query := `SELECT * FROM registration
	WHERE event = type::record($event_id) AND user_id = $user_id
	LIMIT 1`
	vars := map[string]interface{}{
		"event_id": eventRecordID(eventID),
		"user_id":  userID,
	}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return parseRegistrationResult(result)
}

// ListByEvent returns an event's registrations, optionally restricted to
// confirmed ones.
func (r *RegistrationRepository) ListByEvent(ctx context.Context, eventID string, onlyConfirmed bool) ([]*model.Registration, error) {
	query := `SELECT * FROM registration WHERE event = type::record($event_id)`
	vars := map[string]interface{}{"event_id": eventRecordID(eventID)}
	if onlyConfirmed {
		query += ` AND status = $status`
		vars["status"] = model.RegistrationStatusConfirmed
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	rows, ok := extractQueryResults(result)
	if !ok {
		return nil, nil
	}

	registrations := make([]*model.Registration, 0, len(rows))
	for _, row := range rows {
		reg, err := parseRegistrationResult(row)
		if err != nil {
			continue
		}
		registrations = append(registrations, reg)
	}
	return registrations, nil
}

// SetMailedAt stamps the notification timestamp, at most once. A
// registration whose mailed_at is already set is left untouched.
func (r *RegistrationRepository) SetMailedAt(ctx context.Context, registrationID string, mailedAt time.Time) error {
	query := `UPDATE type::record($registration_id)
	SET mailed_at = $mailed_at
	WHERE mailed_at = NONE`
	vars := map[string]interface{}{
		"registration_id": registrationID,
		"mailed_at":       mailedAt.UTC().Format(time.RFC3339Nano),
	}

	return r.db.Execute(ctx, query, vars)
}

// Delete removes a registration and returns its last-known state, which
// the deletion trigger needs to decide whether a seat must be released.
// Returns (nil, nil) when no registration existed.
func (r *RegistrationRepository) Delete(ctx context.Context, eventID, userID string) (*model.Registration, error) {
	query := `DELETE registration
	WHERE event = type::record($event_id) AND user_id = $user_id
	RETURN BEFORE`
	vars := map[string]interface{}{
		"event_id": eventRecordID(eventID),
		"user_id":  userID,
	}

	result, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}

	rows, ok := extractQueryResults(result)
	if !ok || len(rows) == 0 {
		return nil, nil
	}
	return parseRegistrationResult(rows[0])
}

// parseRegistrationResult maps a SurrealDB row to a model.Registration.
func parseRegistrationResult(result interface{}) (*model.Registration, error) {
	m, ok := result.(map[string]interface{})
	if !ok {
		return nil, database.ErrQuery
	}

	reg := &model.Registration{
		ID:        extractRecordID(m["id"]),
		EventID:   trimTablePrefix(extractRecordID(m["event"]), "event"),
		UserID:    getString(m, "user_id"),
		Name:      getString(m, "name"),
		Email:     getString(m, "email"),
		Status:    getString(m, "status"),
		MailedAt:  parseTimePtr(m["mailed_at"]),
		CreatedOn: parseTime(m["created_on"]),
	}
	return reg, nil
}

// trimTablePrefix strips a "table:" prefix from a record ID.
func trimTablePrefix(id, table string) string {
	return strings.TrimPrefix(id, table+":")
}
