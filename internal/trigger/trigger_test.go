package trigger

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nutrilife/campus/api/internal/model"
	"github.com/nutrilife/campus/api/internal/service"
)

type mockHandler struct {
	createdFunc func(ctx context.Context, eventID, userID string) error
	deletedFunc func(ctx context.Context, eventID string, lastKnown *model.Registration) error
}

func (m *mockHandler) HandleRegistrationCreated(ctx context.Context, eventID, userID string) error {
	return m.createdFunc(ctx, eventID, userID)
}

func (m *mockHandler) HandleRegistrationDeleted(ctx context.Context, eventID string, lastKnown *model.Registration) error {
	return m.deletedFunc(ctx, eventID, lastKnown)
}

func waitFor(t *testing.T, done <-chan struct{}, msg string) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal(msg)
	}
}

func TestBusDeliversCreated(t *testing.T) {
	done := make(chan struct{})
	var gotEvent, gotUser string
	handler := &mockHandler{
		createdFunc: func(ctx context.Context, eventID, userID string) error {
			gotEvent, gotUser = eventID, userID
			close(done)
			return nil
		},
	}

	bus := NewBus(Config{Handler: handler, Workers: 1})
	bus.Start()
	defer bus.Stop()

	bus.RegistrationCreated("events:cooking101", "user-1")
	waitFor(t, done, "created trigger was not delivered")

	if gotEvent != "events:cooking101" {
		t.Errorf("expected event events:cooking101, got %s", gotEvent)
	}
	if gotUser != "user-1" {
		t.Errorf("expected user user-1, got %s", gotUser)
	}
}

func TestBusDeliversDeletedWithLastKnown(t *testing.T) {
	done := make(chan struct{})
	var got *model.Registration
	handler := &mockHandler{
		deletedFunc: func(ctx context.Context, eventID string, lastKnown *model.Registration) error {
			got = lastKnown
			close(done)
			return nil
		},
	}

	bus := NewBus(Config{Handler: handler, Workers: 1})
	bus.Start()
	defer bus.Stop()

	bus.RegistrationDeleted("events:cooking101", &model.Registration{
		ID:     "registrations:abc",
		Status: model.RegistrationStatusConfirmed,
	})
	waitFor(t, done, "deleted trigger was not delivered")

	if got == nil {
		t.Fatal("expected last-known registration, got nil")
	}
	if got.Status != model.RegistrationStatusConfirmed {
		t.Errorf("expected confirmed status, got %s", got.Status)
	}
}

func TestBusRedeliversTransientFailure(t *testing.T) {
	done := make(chan struct{})
	var attempts atomic.Int32
	handler := &mockHandler{
		createdFunc: func(ctx context.Context, eventID, userID string) error {
			if attempts.Add(1) < 3 {
				return errors.New("store unavailable")
			}
			close(done)
			return nil
		},
	}

	bus := NewBus(Config{Handler: handler, Workers: 1, MaxAttempts: 3})
	bus.Start()
	defer bus.Stop()

	bus.RegistrationCreated("events:cooking101", "user-1")
	waitFor(t, done, "trigger was not redelivered to success")

	if got := attempts.Load(); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestBusRetriesInPlaceWhenQueueFull(t *testing.T) {
	firstDone := make(chan struct{})
	secondDone := make(chan struct{})
	var firstAttempts atomic.Int32
	handler := &mockHandler{
		createdFunc: func(ctx context.Context, eventID, userID string) error {
			if userID == "user-1" {
				if firstAttempts.Add(1) < 3 {
					return errors.New("store unavailable")
				}
				close(firstDone)
				return nil
			}
			close(secondDone)
			return nil
		},
	}

	// One worker and a one-slot queue: the second message occupies the
	// whole queue while the first is retrying, so its redelivery cannot
	// requeue and must complete within the worker.
	bus := NewBus(Config{Handler: handler, Workers: 1, QueueSize: 1, MaxAttempts: 3})
	bus.Start()
	defer bus.Stop()

	bus.RegistrationCreated("events:cooking101", "user-1")
	bus.RegistrationCreated("events:cooking101", "user-2")

	waitFor(t, firstDone, "retrying trigger deadlocked against a full queue")
	waitFor(t, secondDone, "queued trigger was never drained")

	if got := firstAttempts.Load(); got != 3 {
		t.Errorf("expected 3 attempts for the retried trigger, got %d", got)
	}
}

func TestBusStopsRetryAtAttemptBudget(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	settled := make(chan struct{})
	handler := &mockHandler{
		createdFunc: func(ctx context.Context, eventID, userID string) error {
			mu.Lock()
			attempts++
			n := attempts
			mu.Unlock()
			if n == 2 {
				close(settled)
			}
			return errors.New("store unavailable")
		},
	}

	bus := NewBus(Config{Handler: handler, Workers: 1, MaxAttempts: 2})
	bus.Start()
	defer bus.Stop()

	bus.RegistrationCreated("events:cooking101", "user-1")
	waitFor(t, settled, "trigger did not reach its attempt budget")

	// Give any extra redelivery a chance to surface.
	time.Sleep(3 * redeliveryDelay)
	mu.Lock()
	defer mu.Unlock()
	if attempts != 2 {
		t.Errorf("expected exactly 2 attempts, got %d", attempts)
	}
}

func TestBusDropsPermanentFailure(t *testing.T) {
	var attempts atomic.Int32
	first := make(chan struct{})
	handler := &mockHandler{
		createdFunc: func(ctx context.Context, eventID, userID string) error {
			if attempts.Add(1) == 1 {
				close(first)
			}
			return service.ErrEventNotFound
		},
	}

	bus := NewBus(Config{Handler: handler, Workers: 1, MaxAttempts: 5})
	bus.Start()
	defer bus.Stop()

	bus.RegistrationCreated("events:gone", "user-1")
	waitFor(t, first, "trigger was not delivered")

	time.Sleep(3 * redeliveryDelay)
	if got := attempts.Load(); got != 1 {
		t.Errorf("expected a single attempt for permanent failure, got %d", got)
	}
}

func TestBusStopWaitsForInFlightDelivery(t *testing.T) {
	started := make(chan struct{})
	finished := make(chan struct{})
	handler := &mockHandler{
		createdFunc: func(ctx context.Context, eventID, userID string) error {
			close(started)
			time.Sleep(100 * time.Millisecond)
			close(finished)
			return nil
		},
	}

	bus := NewBus(Config{Handler: handler, Workers: 1})
	bus.Start()

	bus.RegistrationCreated("events:cooking101", "user-1")
	<-started
	bus.Stop()

	select {
	case <-finished:
	default:
		t.Error("Stop returned before in-flight delivery finished")
	}
}
