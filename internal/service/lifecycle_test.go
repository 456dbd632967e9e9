package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrilife/campus/api/internal/mail"
	"github.com/nutrilife/campus/api/internal/model"
)

type mockMailer struct {
	enabled       bool
	sendFunc      func(ctx context.Context, msg mail.Message) error
	sendBatchFunc func(ctx context.Context, batch mail.Batch) error

	sent    []mail.Message
	batches []mail.Batch
}

func (m *mockMailer) Enabled() bool { return m.enabled }

func (m *mockMailer) Send(ctx context.Context, msg mail.Message) error {
	m.sent = append(m.sent, msg)
	if m.sendFunc != nil {
		return m.sendFunc(ctx, msg)
	}
	return nil
}

func (m *mockMailer) SendBatch(ctx context.Context, batch mail.Batch) error {
	m.batches = append(m.batches, batch)
	if m.sendBatchFunc != nil {
		return m.sendBatchFunc(ctx, batch)
	}
	return nil
}

// lifecycleStoreFake extends the allocation fake with mailed_at stamping.
type lifecycleStoreFake struct {
	*seatStoreFake
	mailedAtCalls []string
}

func (f *lifecycleStoreFake) SetMailedAt(ctx context.Context, registrationID string, mailedAt time.Time) error {
	f.mailedAtCalls = append(f.mailedAtCalls, registrationID)
	for _, reg := range f.registrations {
		if reg.ID == registrationID && reg.MailedAt == nil {
			t := mailedAt
			reg.MailedAt = &t
		}
	}
	return nil
}

func newLifecycleUnderTest(store *lifecycleStoreFake, mailer *mockMailer) *LifecycleService {
	return NewLifecycleService(LifecycleServiceConfig{
		Allocation:    newAllocationUnderTest(store.seatStoreFake),
		Events:        store,
		Registrations: store,
		Mailer:        mailer,
	})
}

func newLifecycleStoreFake(capacity, seatsLeft int) *lifecycleStoreFake {
	store := &lifecycleStoreFake{seatStoreFake: newSeatStoreFake(capacity, seatsLeft)}
	store.event.StartAt = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store.event.EndAt = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store.event.Location = model.EventLocation{Name: "Campus Kitchen"}
	return store
}

func TestHandleRegistrationCreatedSendsAndStamps(t *testing.T) {
	store := newLifecycleStoreFake(2, 2)
	reg := store.addPending("user-1")
	reg.Name = "Jamie"
	reg.Email = "jamie@example.com"
	mailer := &mockMailer{enabled: true}
	svc := newLifecycleUnderTest(store, mailer)

	err := svc.HandleRegistrationCreated(context.Background(), store.event.ID, "user-1")

	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)
	msg := mailer.sent[0]
	assert.Equal(t, "jamie@example.com", msg.ToEmail)
	assert.Equal(t, "Registration Confirmed: Cooking 101", msg.Subject)
	assert.Contains(t, msg.HTML, "CONFIRMED")
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "text/calendar", msg.Attachments[0].MIMEType)
	assert.Contains(t, string(msg.Attachments[0].Content), "BEGIN:VCALENDAR")
	require.NotNil(t, store.registrations["user-1"].MailedAt)
}

func TestHandleRegistrationCreatedWaitlistSubject(t *testing.T) {
	store := newLifecycleStoreFake(1, 0)
	reg := store.addPending("user-2")
	reg.Email = "sam@example.com"
	mailer := &mockMailer{enabled: true}
	svc := newLifecycleUnderTest(store, mailer)

	err := svc.HandleRegistrationCreated(context.Background(), store.event.ID, "user-2")

	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "Waitlist Confirmation: Cooking 101", mailer.sent[0].Subject)
	assert.Contains(t, mailer.sent[0].HTML, "WAITLIST")
}

func TestHandleRegistrationCreatedSkipsWhenAlreadyMailed(t *testing.T) {
	store := newLifecycleStoreFake(2, 2)
	reg := store.addPending("user-1")
	reg.Status = model.RegistrationStatusConfirmed
	mailed := time.Now()
	reg.MailedAt = &mailed
	mailer := &mockMailer{enabled: true}
	svc := newLifecycleUnderTest(store, mailer)

	err := svc.HandleRegistrationCreated(context.Background(), store.event.ID, "user-1")

	require.NoError(t, err)
	assert.Empty(t, mailer.sent)
	assert.Empty(t, store.mailedAtCalls)
}

func TestHandleRegistrationCreatedDispatchFailureLeavesUnstamped(t *testing.T) {
	store := newLifecycleStoreFake(2, 2)
	reg := store.addPending("user-1")
	reg.Email = "jamie@example.com"
	mailer := &mockMailer{
		enabled: true,
		sendFunc: func(ctx context.Context, msg mail.Message) error {
			return errors.New("provider unavailable")
		},
	}
	svc := newLifecycleUnderTest(store, mailer)

	err := svc.HandleRegistrationCreated(context.Background(), store.event.ID, "user-1")

	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "dispatch registration notification"))
	assert.Nil(t, store.registrations["user-1"].MailedAt)
	assert.Empty(t, store.mailedAtCalls)
}

func TestHandleRegistrationCreatedUnconfiguredMailerStillStamps(t *testing.T) {
	store := newLifecycleStoreFake(2, 2)
	reg := store.addPending("user-1")
	reg.Email = "jamie@example.com"
	mailer := &mockMailer{enabled: false}
	svc := newLifecycleUnderTest(store, mailer)

	err := svc.HandleRegistrationCreated(context.Background(), store.event.ID, "user-1")

	require.NoError(t, err)
	assert.Empty(t, mailer.sent)
	require.NotNil(t, store.registrations["user-1"].MailedAt)
}

func TestHandleRegistrationCreatedAllocationFailureSendsNothing(t *testing.T) {
	store := newLifecycleStoreFake(2, 2)
	mailer := &mockMailer{enabled: true}
	svc := newLifecycleUnderTest(store, mailer)

	err := svc.HandleRegistrationCreated(context.Background(), store.event.ID, "user-missing")

	assert.ErrorIs(t, err, ErrRegistrationNotFound)
	assert.Empty(t, mailer.sent)
	assert.Empty(t, store.mailedAtCalls)
}

func TestHandleRegistrationDeletedReleasesConfirmedSeat(t *testing.T) {
	store := newLifecycleStoreFake(1, 0)
	mailer := &mockMailer{enabled: true}
	svc := newLifecycleUnderTest(store, mailer)

	err := svc.HandleRegistrationDeleted(context.Background(), store.event.ID, &model.Registration{
		Status: model.RegistrationStatusConfirmed,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, store.event.SeatsLeft)
	assert.Equal(t, 1, store.releaseCalls)
}

func TestHandleRegistrationDeletedIgnoresWaitlist(t *testing.T) {
	store := newLifecycleStoreFake(1, 0)
	mailer := &mockMailer{enabled: true}
	svc := newLifecycleUnderTest(store, mailer)

	err := svc.HandleRegistrationDeleted(context.Background(), store.event.ID, &model.Registration{
		Status: model.RegistrationStatusWaitlist,
	})

	require.NoError(t, err)
	assert.Equal(t, 0, store.event.SeatsLeft)
	assert.Zero(t, store.releaseCalls)
}

func TestHandleRegistrationDeletedNilLastKnown(t *testing.T) {
	store := newLifecycleStoreFake(1, 0)
	svc := newLifecycleUnderTest(store, &mockMailer{})

	err := svc.HandleRegistrationDeleted(context.Background(), store.event.ID, nil)

	require.NoError(t, err)
	assert.Zero(t, store.releaseCalls)
}
