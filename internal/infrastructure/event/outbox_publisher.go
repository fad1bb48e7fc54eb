package event

import (
	"context"
	"fmt"

	"github.com/npl/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// OutboxPublisher serializes domain events and lands them in the
// outbox table inside the caller's transaction, so an event is
// persisted if and only if the aggregate change commits.
type OutboxPublisher struct {
	serializer *EventSerializer
}

func NewOutboxPublisher(serializer *EventSerializer) *OutboxPublisher {
	return &OutboxPublisher{
		serializer: serializer,
	}
}

// PublishWithTx writes the events as outbox entries on tx
func (p *OutboxPublisher) PublishWithTx(ctx context.Context, tx *gorm.DB, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	entries := make([]*shared.OutboxEntry, 0, len(events))
	for _, event := range events {
		payload, err := p.serializer.Serialize(event)
		if err != nil {
			return err
		}

		entry := shared.NewOutboxEntry(event, payload)
		entries = append(entries, entry)
	}

	repo := NewGormOutboxRepository(tx)
	return repo.Save(ctx, entries...)
}

// SaveEvents implements shared.OutboxEventSaver for callers that only
// carry the transaction as an opaque handle
func (p *OutboxPublisher) SaveEvents(ctx context.Context, txProvider any, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, ok := txProvider.(*gorm.DB)
	if !ok {
		return fmt.Errorf("txProvider must be a *gorm.DB, got %T", txProvider)
	}

	return p.PublishWithTx(ctx, tx, events...)
}

var _ shared.OutboxEventSaver = (*OutboxPublisher)(nil)

// PersistentEventPublisher is a shared.EventPublisher that lands events in
// the outbox table. Services publish through it after their aggregate save;
// the outbox processor picks entries up and dispatches them to the bus.
type PersistentEventPublisher struct {
	db        *gorm.DB
	publisher *OutboxPublisher
}

// NewPersistentEventPublisher creates a publisher bound to a database handle
func NewPersistentEventPublisher(db *gorm.DB, publisher *OutboxPublisher) *PersistentEventPublisher {
	return &PersistentEventPublisher{
		db:        db,
		publisher: publisher,
	}
}

// Publish writes the events to the outbox
func (p *PersistentEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return p.publisher.PublishWithTx(ctx, p.db, events...)
}

var _ shared.EventPublisher = (*PersistentEventPublisher)(nil)
