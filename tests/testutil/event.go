package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/npl/backend/internal/domain/shared"
)

// CapturingHandler subscribes to the bus and records every event it
// receives. Safe for use from the processor's relay goroutine.
type CapturingHandler struct {
	mu         sync.Mutex
	eventTypes []string
	captured   []shared.DomainEvent
	err        error
}

// NewCapturingHandler subscribes to the given event types; none means
// all types
func NewCapturingHandler(eventTypes ...string) *CapturingHandler {
	return &CapturingHandler{eventTypes: eventTypes}
}

func (h *CapturingHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *CapturingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.captured = append(h.captured, event)
	return h.err
}

// Captured returns a copy of the events seen so far
func (h *CapturingHandler) Captured() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]shared.DomainEvent, len(h.captured))
	copy(out, h.captured)
	return out
}

func (h *CapturingHandler) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.captured)
}

// FailWith makes every subsequent Handle call return err
func (h *CapturingHandler) FailWith(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
}

func (h *CapturingHandler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.captured = nil
	h.err = nil
}

// FixtureEvent is a minimal domain event for bus and outbox tests
type FixtureEvent struct {
	shared.BaseDomainEvent
	HubID int64 `json:"hub_id"`
}

// NewFixtureEvent builds an event of the given type against a fresh
// asset aggregate
func NewFixtureEvent(eventType string) *FixtureEvent {
	return NewFixtureEventWithID(uuid.New(), eventType)
}

// NewFixtureEventWithID pins the event ID, for idempotency scenarios
// where the same event must be presented twice
func NewFixtureEventWithID(eventID uuid.UUID, eventType string) *FixtureEvent {
	return &FixtureEvent{
		BaseDomainEvent: shared.BaseDomainEvent{
			ID:        eventID,
			Type:      eventType,
			Timestamp: time.Now(),
			AggID:     uuid.New(),
			AggType:   "Asset",
		},
		HubID: 1001,
	}
}

// WaitForCondition polls condition until it returns true or timeout
// elapses
func WaitForCondition(t *testing.T, condition func() bool, timeout, interval time.Duration) bool {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(interval)
	}
	return false
}

// WaitForEventCount waits until the handler has captured at least
// count events
func WaitForEventCount(t *testing.T, handler *CapturingHandler, count int, timeout time.Duration) bool {
	t.Helper()

	return WaitForCondition(t, func() bool {
		return handler.Count() >= count
	}, timeout, 10*time.Millisecond)
}
