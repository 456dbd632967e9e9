// Package trigger delivers registration lifecycle triggers to the
// workflow handlers.
//
// The bus replaces a document store's create/delete hooks with an
// explicit in-process queue. Delivery is at-least-once: a message whose
// handler fails transiently is redelivered up to an attempt budget, and
// the same message may therefore be handled more than once. Handlers
// are required to be idempotent.
package trigger

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/nutrilife/campus/api/internal/model"
	"github.com/nutrilife/campus/api/internal/service"
)

// Kind identifies a trigger message type.
type Kind string

// Trigger kinds.
const (
	KindRegistrationCreated Kind = "registration.created"
	KindRegistrationDeleted Kind = "registration.deleted"
)

// Message is one trigger delivery.
type Message struct {
	Kind    Kind
	EventID string
	UserID  string

	// LastKnown carries the deleted document's final state for deletion
	// triggers, the way a store's delete hook receives the prior data.
	LastKnown *model.Registration

	// Attempt counts deliveries of this message, starting at 1.
	Attempt int
}

// Handler consumes trigger messages. LifecycleService implements it.
type Handler interface {
	HandleRegistrationCreated(ctx context.Context, eventID, userID string) error
	HandleRegistrationDeleted(ctx context.Context, eventID string, lastKnown *model.Registration) error
}

// Defaults for unset Config fields.
const (
	defaultWorkers     = 4
	defaultQueueSize   = 256
	defaultMaxAttempts = 3
	defaultTimeout     = 30 * time.Second
	redeliveryDelay    = 250 * time.Millisecond
)

// Config holds bus settings.
type Config struct {
	Handler     Handler
	Workers     int
	QueueSize   int
	MaxAttempts int

	// Timeout bounds one delivery; an expired delivery counts as a
	// transient failure and is redelivered.
	Timeout time.Duration
}

// Bus is the in-process trigger queue plus its worker pool.
type Bus struct {
	handler     Handler
	queue       chan Message
	workers     int
	maxAttempts int
	timeout     time.Duration

	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewBus creates a trigger bus.
func NewBus(cfg Config) *Bus {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Bus{
		handler:     cfg.Handler,
		queue:       make(chan Message, cfg.QueueSize),
		workers:     cfg.Workers,
		maxAttempts: cfg.MaxAttempts,
		timeout:     cfg.Timeout,
		stopCh:      make(chan struct{}),
	}
}

// Start launches the worker pool.
func (b *Bus) Start() {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return
	}
	b.running = true
	b.mu.Unlock()

	for i := 0; i < b.workers; i++ {
		b.wg.Add(1)
		go b.run()
	}
	slog.Info("trigger bus started", slog.Int("workers", b.workers))
}

// Stop shuts the workers down and waits for in-flight deliveries.
// Queued but undelivered messages are discarded.
func (b *Bus) Stop() {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return
	}
	b.running = false
	b.mu.Unlock()

	close(b.stopCh)
	b.wg.Wait()
	slog.Info("trigger bus stopped")
}

// RegistrationCreated publishes a creation trigger.
func (b *Bus) RegistrationCreated(eventID, userID string) {
	b.publish(Message{
		Kind:    KindRegistrationCreated,
		EventID: eventID,
		UserID:  userID,
		Attempt: 1,
	})
}

// RegistrationDeleted publishes a deletion trigger with the document's
// last-known state.
func (b *Bus) RegistrationDeleted(eventID string, lastKnown *model.Registration) {
	b.publish(Message{
		Kind:      KindRegistrationDeleted,
		EventID:   eventID,
		LastKnown: lastKnown,
		Attempt:   1,
	})
}

func (b *Bus) publish(msg Message) {
	select {
	case b.queue <- msg:
	case <-b.stopCh:
		slog.Warn("trigger dropped, bus stopped",
			slog.String("kind", string(msg.Kind)),
			slog.String("event_id", msg.EventID),
		)
	}
}

func (b *Bus) run() {
	defer b.wg.Done()
	for {
		select {
		case msg := <-b.queue:
			b.deliver(msg)
		case <-b.stopCh:
			return
		}
	}
}

func (b *Bus) deliver(msg Message) {
	for {
		err := b.invoke(msg)
		if err == nil {
			return
		}

		if permanent(err) {
			// No compensating action exists; log and abandon.
			slog.Error("trigger abandoned",
				slog.String("kind", string(msg.Kind)),
				slog.String("event_id", msg.EventID),
				slog.String("user_id", msg.UserID),
				slog.String("error", err.Error()),
			)
			return
		}

		if msg.Attempt >= b.maxAttempts {
			slog.Error("trigger gave up after max attempts",
				slog.String("kind", string(msg.Kind)),
				slog.String("event_id", msg.EventID),
				slog.String("user_id", msg.UserID),
				slog.Int("attempts", msg.Attempt),
				slog.String("error", err.Error()),
			)
			return
		}

		slog.Warn("trigger redelivery scheduled",
			slog.String("kind", string(msg.Kind)),
			slog.String("event_id", msg.EventID),
			slog.Int("attempt", msg.Attempt),
			slog.String("error", err.Error()),
		)

		msg.Attempt++
		select {
		case <-time.After(redeliveryDelay):
		case <-b.stopCh:
			return
		}

		// Requeue so fresh messages are not starved behind a retry.
		// Workers must never block on their own queue: when it is full,
		// retry in place instead.
		select {
		case b.queue <- msg:
			return
		default:
		}
	}
}

func (b *Bus) invoke(msg Message) error {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	switch msg.Kind {
	case KindRegistrationCreated:
		return b.handler.HandleRegistrationCreated(ctx, msg.EventID, msg.UserID)
	case KindRegistrationDeleted:
		return b.handler.HandleRegistrationDeleted(ctx, msg.EventID, msg.LastKnown)
	default:
		slog.Error("unknown trigger kind", slog.String("kind", string(msg.Kind)))
		return nil
	}
}

// permanent reports whether an error should not be redelivered. The
// allocation engine already retries conflicts internally, so an
// exhausted conflict budget is final here.
func permanent(err error) bool {
	return errors.Is(err, service.ErrEventNotFound) ||
		errors.Is(err, service.ErrRegistrationNotFound) ||
		errors.Is(err, service.ErrAllocationConflict)
}
