package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers processed event IDs so redelivered outbox
// entries do not run their handlers twice.
type IdempotencyStore interface {
	// MarkProcessed claims an event ID for ttl. The bool is true when
	// this call was the first to claim it.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	IsProcessed(ctx context.Context, eventID string) (bool, error)

	Close() error
}

// IdempotencyConfig tunes duplicate suppression. The TTL bounds how
// long a redelivery of the same event stays suppressed; it must
// comfortably exceed the outbox retry horizon.
type IdempotencyConfig struct {
	TTL     time.Duration
	Enabled bool
}

func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
