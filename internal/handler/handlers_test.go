package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nutrilife/campus/api/internal/mail"
	"github.com/nutrilife/campus/api/internal/middleware"
	"github.com/nutrilife/campus/api/internal/model"
	"github.com/nutrilife/campus/api/internal/repository"
	"github.com/nutrilife/campus/api/internal/service"
)

// ============================================================================
// Mocks
// ============================================================================

type mockRegistrationWriter struct {
	createFunc func(ctx context.Context, eventID string, req model.CreateRegistrationRequest) (*model.Registration, error)
	deleteFunc func(ctx context.Context, eventID, userID string) (*model.Registration, error)
}

func (m *mockRegistrationWriter) Create(ctx context.Context, eventID string, req model.CreateRegistrationRequest) (*model.Registration, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, eventID, req)
	}
	return nil, nil
}

func (m *mockRegistrationWriter) Delete(ctx context.Context, eventID, userID string) (*model.Registration, error) {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, eventID, userID)
	}
	return nil, nil
}

type mockTriggerPublisher struct {
	created int
	deleted int
}

func (m *mockTriggerPublisher) RegistrationCreated(eventID, userID string) { m.created++ }

func (m *mockTriggerPublisher) RegistrationDeleted(eventID string, lk *model.Registration) {
	m.deleted++
}

type mockEventLister struct {
	events []*model.Event
}

func (m *mockEventLister) ListOpen(ctx context.Context) ([]*model.Event, error) {
	return m.events, nil
}

type mockRecipeStore struct {
	addRatingFunc func(ctx context.Context, recipeID, userID string, stars int) error
}

func (m *mockRecipeStore) List(ctx context.Context) ([]*model.Recipe, error) {
	return nil, nil
}

func (m *mockRecipeStore) AddRating(ctx context.Context, recipeID, userID string, stars int) error {
	if m.addRatingFunc != nil {
		return m.addRatingFunc(ctx, recipeID, userID, stars)
	}
	return nil
}

type mockEventReader struct {
	event *model.Event
}

func (m *mockEventReader) GetByID(ctx context.Context, eventID string) (*model.Event, error) {
	return m.event, nil
}

type mockRegistrationLister struct {
	regs             []*model.Registration
	gotOnlyConfirmed bool
}

func (m *mockRegistrationLister) ListByEvent(ctx context.Context, eventID string, onlyConfirmed bool) ([]*model.Registration, error) {
	m.gotOnlyConfirmed = onlyConfirmed
	return m.regs, nil
}

type stubMailer struct {
	enabled bool
	batches int
}

func (m *stubMailer) Enabled() bool                                    { return m.enabled }
func (m *stubMailer) Send(ctx context.Context, msg mail.Message) error { return nil }
func (m *stubMailer) SendBatch(ctx context.Context, b mail.Batch) error {
	m.batches++
	return nil
}

func withUser(req *http.Request, userID string) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, userID)
	return req.WithContext(ctx)
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) *model.ProblemDetails {
	t.Helper()
	var pd model.ProblemDetails
	if err := json.NewDecoder(rec.Body).Decode(&pd); err != nil {
		t.Fatalf("failed to decode problem details: %v", err)
	}
	return &pd
}

// ============================================================================
// Registration endpoints
// ============================================================================

func registrationMux(writer *mockRegistrationWriter, triggers *mockTriggerPublisher) *http.ServeMux {
	svc := service.NewRegistrationService(service.RegistrationServiceConfig{
		Registrations: writer,
		Triggers:      triggers,
	})
	h := NewRegistrationHandler(svc)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/events/{eventId}/registrations", h.Register)
	mux.HandleFunc("DELETE /v1/events/{eventId}/registrations/{userId}", h.Deregister)
	return mux
}

func TestRegisterAccepted(t *testing.T) {
	writer := &mockRegistrationWriter{
		createFunc: func(ctx context.Context, eventID string, req model.CreateRegistrationRequest) (*model.Registration, error) {
			return &model.Registration{
				ID:      "registrations:abc",
				EventID: eventID,
				UserID:  req.UserID,
				Status:  model.RegistrationStatusPending,
			}, nil
		},
	}
	triggers := &mockTriggerPublisher{}
	mux := registrationMux(writer, triggers)

	body := bytes.NewBufferString(`{"user_id":"user-1","name":"Jamie","email":"jamie@example.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/events/cooking101/registrations", body)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	if triggers.created != 1 {
		t.Errorf("expected one creation trigger, got %d", triggers.created)
	}

	var resp DataResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func TestRegisterValidationError(t *testing.T) {
	mux := registrationMux(&mockRegistrationWriter{}, &mockTriggerPublisher{})

	body := bytes.NewBufferString(`{"user_id":"user-1","name":"Jamie","email":"bogus"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/events/cooking101/registrations", body)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	pd := decodeProblem(t, rec)
	if len(pd.Errors) == 0 || pd.Errors[0].Field != "email" {
		t.Errorf("expected email field error, got %+v", pd.Errors)
	}
}

func TestRegisterDuplicateConflict(t *testing.T) {
	writer := &mockRegistrationWriter{
		createFunc: func(ctx context.Context, eventID string, req model.CreateRegistrationRequest) (*model.Registration, error) {
			return nil, repository.ErrAlreadyRegistered
		},
	}
	mux := registrationMux(writer, &mockTriggerPublisher{})

	body := bytes.NewBufferString(`{"user_id":"user-1","name":"Jamie","email":"jamie@example.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/events/cooking101/registrations", body)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestRegisterUnknownEvent(t *testing.T) {
	writer := &mockRegistrationWriter{
		createFunc: func(ctx context.Context, eventID string, req model.CreateRegistrationRequest) (*model.Registration, error) {
			return nil, repository.ErrEventMissing
		},
	}
	mux := registrationMux(writer, &mockTriggerPublisher{})

	body := bytes.NewBufferString(`{"user_id":"user-1","name":"Jamie","email":"jamie@example.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/events/ghost/registrations", body)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestDeregisterNoContent(t *testing.T) {
	writer := &mockRegistrationWriter{
		deleteFunc: func(ctx context.Context, eventID, userID string) (*model.Registration, error) {
			return &model.Registration{Status: model.RegistrationStatusConfirmed}, nil
		},
	}
	triggers := &mockTriggerPublisher{}
	mux := registrationMux(writer, triggers)

	req := httptest.NewRequest(http.MethodDelete, "/v1/events/cooking101/registrations/user-1", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if triggers.deleted != 1 {
		t.Errorf("expected one deletion trigger, got %d", triggers.deleted)
	}
}

func TestDeregisterNotFound(t *testing.T) {
	mux := registrationMux(&mockRegistrationWriter{}, &mockTriggerPublisher{})

	req := httptest.NewRequest(http.MethodDelete, "/v1/events/cooking101/registrations/user-1", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

// ============================================================================
// Event listing endpoint
// ============================================================================

func TestEventListOK(t *testing.T) {
	lister := &mockEventLister{events: []*model.Event{
		{ID: "events:1", Title: "Cooking 101", StartAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
		{ID: "events:2", Title: "Nutrition Talk", StartAt: time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)},
	}}
	h := NewEventHandler(service.NewEventService(lister))
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/events", h.List)

	req := httptest.NewRequest(http.MethodGet, "/v1/events?limit=1&page=2", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Data       []model.EventSummary `json:"data"`
		Pagination *PaginationInfo      `json:"pagination"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].ID != "events:1" {
		t.Errorf("expected second page to hold the later event, got %+v", resp.Data)
	}
	if resp.Pagination == nil || resp.Pagination.Total != 2 {
		t.Errorf("expected total 2, got %+v", resp.Pagination)
	}
}

// ============================================================================
// Recipe rating endpoint
// ============================================================================

func recipeMux(store *mockRecipeStore) *http.ServeMux {
	h := NewRecipeHandler(service.NewRecipeService(store))
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/recipes/{recipeId}/ratings", h.Rate)
	return mux
}

func TestRateRequiresAuth(t *testing.T) {
	mux := recipeMux(&mockRecipeStore{})

	body := bytes.NewBufferString(`{"stars":5}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/recipes/r1/ratings", body)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRateCreated(t *testing.T) {
	var gotStars int
	store := &mockRecipeStore{
		addRatingFunc: func(ctx context.Context, recipeID, userID string, stars int) error {
			gotStars = stars
			return nil
		},
	}
	mux := recipeMux(store)

	body := bytes.NewBufferString(`{"stars":4}`)
	req := withUser(httptest.NewRequest(http.MethodPost, "/v1/recipes/r1/ratings", body), "user-1")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotStars != 4 {
		t.Errorf("expected 4 stars recorded, got %d", gotStars)
	}
}

func TestRateDuplicateConflict(t *testing.T) {
	store := &mockRecipeStore{
		addRatingFunc: func(ctx context.Context, recipeID, userID string, stars int) error {
			return repository.ErrAlreadyRated
		},
	}
	mux := recipeMux(store)

	body := bytes.NewBufferString(`{"stars":4}`)
	req := withUser(httptest.NewRequest(http.MethodPost, "/v1/recipes/r1/ratings", body), "user-1")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

// ============================================================================
// Reminder endpoint
// ============================================================================

func reminderMux(mailer *stubMailer, regs []*model.Registration) (*http.ServeMux, *mockRegistrationLister) {
	lister := &mockRegistrationLister{regs: regs}
	svc := service.NewReminderService(service.ReminderServiceConfig{
		Events: &mockEventReader{event: &model.Event{
			ID:      "cooking101",
			Title:   "Cooking 101",
			StartAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
			EndAt:   time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		}},
		Registrations: lister,
		Mailer:        mailer,
	})
	h := NewReminderHandler(svc)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/admin/events/{eventId}/reminders", h.Send)
	return mux, lister
}

func TestReminderRequiresAuth(t *testing.T) {
	mailer := &stubMailer{enabled: true}
	mux, _ := reminderMux(mailer, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/events/cooking101/reminders", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if mailer.batches != 0 {
		t.Error("expected no dispatch for unauthenticated caller")
	}
}

func TestReminderSendsBatch(t *testing.T) {
	mailer := &stubMailer{enabled: true}
	regs := []*model.Registration{
		{Name: "Jamie", Email: "jamie@example.com"},
		{Name: "Sam", Email: "sam@example.com"},
	}
	mux, _ := reminderMux(mailer, regs)

	req := withUser(httptest.NewRequest(http.MethodPost, "/v1/admin/events/cooking101/reminders", nil), "admin-1")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if mailer.batches != 1 {
		t.Errorf("expected one batch dispatch, got %d", mailer.batches)
	}

	var resp struct {
		Data service.ReminderResult `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.Sent != 2 {
		t.Errorf("expected 2 sent, got %d", resp.Data.Sent)
	}
}

func TestReminderDefaultsToConfirmedOnly(t *testing.T) {
	mailer := &stubMailer{enabled: true}
	regs := []*model.Registration{{Name: "Jamie", Email: "jamie@example.com"}}
	mux, lister := reminderMux(mailer, regs)

	req := withUser(httptest.NewRequest(http.MethodPost, "/v1/admin/events/cooking101/reminders", nil), "admin-1")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !lister.gotOnlyConfirmed {
		t.Error("expected reminder without only_confirmed to target confirmed registrants only")
	}
}

func TestReminderOnlyConfirmedFalseWidensAudience(t *testing.T) {
	mailer := &stubMailer{enabled: true}
	regs := []*model.Registration{{Name: "Jamie", Email: "jamie@example.com"}}
	mux, lister := reminderMux(mailer, regs)

	req := withUser(httptest.NewRequest(http.MethodPost, "/v1/admin/events/cooking101/reminders?only_confirmed=false", nil), "admin-1")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if lister.gotOnlyConfirmed {
		t.Error("expected only_confirmed=false to include every registrant")
	}
}

func TestReminderUnconfiguredMailerZeroCount(t *testing.T) {
	mailer := &stubMailer{enabled: false}
	regs := []*model.Registration{{Name: "Jamie", Email: "jamie@example.com"}}
	mux, _ := reminderMux(mailer, regs)

	req := withUser(httptest.NewRequest(http.MethodPost, "/v1/admin/events/cooking101/reminders", nil), "admin-1")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Data service.ReminderResult `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.Sent != 0 || resp.Data.Message == "" {
		t.Errorf("expected zero-count result with message, got %+v", resp.Data)
	}
}
