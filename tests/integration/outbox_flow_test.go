package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/npl/backend/internal/domain/shared"
	"github.com/npl/backend/internal/infrastructure/event"
	"github.com/npl/backend/tests/testutil"
)

// outboxFlowSetup wires the full relay path against a real database:
// publisher writing outbox rows in a transaction, processor polling
// them out, bus dispatching to subscribed handlers.
type outboxFlowSetup struct {
	db         *TestDB
	serializer *event.EventSerializer
	publisher  *event.OutboxPublisher
	repo       *event.GormOutboxRepository
	bus        *event.InMemoryEventBus
	processor  *event.OutboxProcessor
}

func newOutboxFlowSetup(t *testing.T) *outboxFlowSetup {
	t.Helper()

	testDB := NewTestDB(t)

	serializer := event.NewEventSerializer()
	serializer.Register("asset.boarded", &testutil.FixtureEvent{})
	serializer.Register("trade.settled", &testutil.FixtureEvent{})

	bus := event.NewInMemoryEventBus(zap.NewNop())
	require.NoError(t, bus.Start(context.Background()))
	t.Cleanup(func() { _ = bus.Stop(context.Background()) })

	config := event.DefaultOutboxProcessorConfig()
	config.PollInterval = 50 * time.Millisecond
	config.CleanupEnabled = false

	repo := event.NewGormOutboxRepository(testDB.DB)
	processor := event.NewOutboxProcessor(repo, bus, serializer, config, zap.NewNop())

	return &outboxFlowSetup{
		db:         testDB,
		serializer: serializer,
		publisher:  event.NewOutboxPublisher(serializer),
		repo:       repo,
		bus:        bus,
		processor:  processor,
	}
}

func (s *outboxFlowSetup) startProcessor(t *testing.T) {
	t.Helper()

	require.NoError(t, s.processor.Start(context.Background()))
	t.Cleanup(func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.processor.Stop(stopCtx)
	})
}

func TestOutboxFlow_CommittedEventReachesHandler(t *testing.T) {
	setup := newOutboxFlowSetup(t)
	ctx := context.Background()

	handler := testutil.NewCapturingHandler("asset.boarded")
	setup.bus.Subscribe(handler)

	boarded := testutil.NewFixtureEvent("asset.boarded")
	err := setup.db.DB.Transaction(func(tx *gorm.DB) error {
		return setup.publisher.PublishWithTx(ctx, tx, boarded)
	})
	require.NoError(t, err)

	setup.startProcessor(t)

	require.True(t, testutil.WaitForEventCount(t, handler, 1, 5*time.Second),
		"committed event never reached the handler")
	assert.Equal(t, boarded.EventID(), handler.Captured()[0].EventID())

	counts, err := setup.repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[shared.OutboxStatusSent])
}

func TestOutboxFlow_RolledBackEventIsNeverDelivered(t *testing.T) {
	setup := newOutboxFlowSetup(t)
	ctx := context.Background()

	handler := testutil.NewCapturingHandler("trade.settled")
	setup.bus.Subscribe(handler)

	tx := setup.db.DB.Begin()
	require.NoError(t, tx.Error)
	require.NoError(t, setup.publisher.PublishWithTx(ctx, tx, testutil.NewFixtureEvent("trade.settled")))
	require.NoError(t, tx.Rollback().Error)

	setup.startProcessor(t)

	// Give the processor a few poll cycles to prove the negative
	delivered := testutil.WaitForEventCount(t, handler, 1, 300*time.Millisecond)
	assert.False(t, delivered, "rolled back event must not leave the outbox")

	counts, err := setup.repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestOutboxFlow_HandlerFailureSchedulesRetry(t *testing.T) {
	setup := newOutboxFlowSetup(t)
	ctx := context.Background()

	handler := testutil.NewCapturingHandler("asset.boarded")
	handler.FailWith(assert.AnError)
	setup.bus.Subscribe(handler)

	err := setup.db.DB.Transaction(func(tx *gorm.DB) error {
		return setup.publisher.PublishWithTx(ctx, tx, testutil.NewFixtureEvent("asset.boarded"))
	})
	require.NoError(t, err)

	setup.startProcessor(t)

	require.True(t, testutil.WaitForEventCount(t, handler, 1, 5*time.Second))

	// The entry stays out of the sent set until a retry succeeds
	sent := testutil.WaitForCondition(t, func() bool {
		counts, countErr := setup.repo.CountByStatus(ctx)
		return countErr == nil && counts[shared.OutboxStatusSent] > 0
	}, 300*time.Millisecond, 50*time.Millisecond)
	assert.False(t, sent, "failed delivery must not be marked sent")

	handler.Reset()

	require.True(t, testutil.WaitForCondition(t, func() bool {
		counts, countErr := setup.repo.CountByStatus(ctx)
		return countErr == nil && counts[shared.OutboxStatusSent] == 1
	}, 10*time.Second, 100*time.Millisecond), "retry never landed after the handler recovered")
}
