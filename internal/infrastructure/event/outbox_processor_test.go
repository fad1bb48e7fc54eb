package event

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/npl/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeOutboxRepo keeps entries in a map; good enough to drive the
// processor loops without a database
type fakeOutboxRepo struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*shared.OutboxEntry
}

func newFakeOutboxRepo() *fakeOutboxRepo {
	return &fakeOutboxRepo{entries: make(map[uuid.UUID]*shared.OutboxEntry)}
}

func (r *fakeOutboxRepo) Save(_ context.Context, entries ...*shared.OutboxEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range entries {
		r.entries[e.ID] = e
	}
	return nil
}

func (r *fakeOutboxRepo) FindPending(_ context.Context, limit int) ([]*shared.OutboxEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*shared.OutboxEntry
	for _, e := range r.entries {
		if e.Status == shared.OutboxStatusPending {
			result = append(result, e)
			if len(result) >= limit {
				break
			}
		}
	}
	return result, nil
}

func (r *fakeOutboxRepo) FindRetryable(_ context.Context, _ time.Time, _ int) ([]*shared.OutboxEntry, error) {
	return nil, nil
}

func (r *fakeOutboxRepo) MarkProcessing(_ context.Context, ids []uuid.UUID) ([]*shared.OutboxEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var claimed []*shared.OutboxEntry
	for _, id := range ids {
		if e, ok := r.entries[id]; ok {
			e.Status = shared.OutboxStatusProcessing
			claimed = append(claimed, e)
		}
	}
	return claimed, nil
}

func (r *fakeOutboxRepo) Update(_ context.Context, entry *shared.OutboxEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.ID] = entry
	return nil
}

func (r *fakeOutboxRepo) DeleteOlderThan(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func (r *fakeOutboxRepo) FindDead(_ context.Context, _, _ int) ([]*shared.OutboxEntry, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var dead []*shared.OutboxEntry
	for _, e := range r.entries {
		if e.Status == shared.OutboxStatusDead {
			dead = append(dead, e)
		}
	}
	return dead, int64(len(dead)), nil
}

func (r *fakeOutboxRepo) FindByID(_ context.Context, id uuid.UUID) (*shared.OutboxEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[id], nil
}

func (r *fakeOutboxRepo) CountByStatus(_ context.Context) (map[shared.OutboxStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[shared.OutboxStatus]int64)
	for _, e := range r.entries {
		counts[e.Status]++
	}
	return counts, nil
}

func (r *fakeOutboxRepo) status(id uuid.UUID) shared.OutboxStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[id].Status
}

func (r *fakeOutboxRepo) lastError(id uuid.UUID) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[id].LastError
}

func runProcessor(t *testing.T, processor *OutboxProcessor) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, processor.Start(ctx))

	time.Sleep(200 * time.Millisecond)

	cancel()
	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	require.NoError(t, processor.Stop(stopCtx))
}

func TestOutboxProcessor_RelaysPendingEntries(t *testing.T) {
	logger := zap.NewNop()
	serializer := NewEventSerializer()
	serializer.Register("asset.boarded", &stubEvent{})

	repo := newFakeOutboxRepo()
	bus := NewInMemoryEventBus(logger)
	handler := newRecordingHandler("asset.boarded")
	bus.Subscribe(handler)

	evt := newStubEvent("asset.boarded")
	payload, err := serializer.Serialize(evt)
	require.NoError(t, err)
	entry := shared.NewOutboxEntry(evt, payload)
	require.NoError(t, repo.Save(context.Background(), entry))

	processor := NewOutboxProcessor(repo, bus, serializer, OutboxProcessorConfig{
		BatchSize:    100,
		PollInterval: 50 * time.Millisecond,
	}, logger)

	runProcessor(t, processor)

	assert.Equal(t, 1, handler.count())
	assert.Equal(t, shared.OutboxStatusSent, repo.status(entry.ID))
}

func TestOutboxProcessor_UnknownEventType_MarksFailed(t *testing.T) {
	logger := zap.NewNop()
	serializer := NewEventSerializer() // "valuation.ordered" deliberately not registered

	repo := newFakeOutboxRepo()
	bus := NewInMemoryEventBus(logger)

	evt := newStubEvent("valuation.ordered")
	entry := shared.NewOutboxEntry(evt, []byte(`{"type":"valuation.ordered"}`))
	require.NoError(t, repo.Save(context.Background(), entry))

	processor := NewOutboxProcessor(repo, bus, serializer, OutboxProcessorConfig{
		BatchSize:    100,
		PollInterval: 50 * time.Millisecond,
	}, logger)

	runProcessor(t, processor)

	assert.Equal(t, shared.OutboxStatusFailed, repo.status(entry.ID))
	assert.Contains(t, repo.lastError(entry.ID), "unknown event type")
}

func TestOutboxProcessor_HandlerError_MarksFailed(t *testing.T) {
	logger := zap.NewNop()
	serializer := NewEventSerializer()
	serializer.Register("trade.settled", &stubEvent{})

	repo := newFakeOutboxRepo()
	bus := NewInMemoryEventBus(logger)
	handler := newRecordingHandler("trade.settled")
	handler.err = assert.AnError
	bus.Subscribe(handler)

	evt := newStubEvent("trade.settled")
	payload, err := serializer.Serialize(evt)
	require.NoError(t, err)
	entry := shared.NewOutboxEntry(evt, payload)
	require.NoError(t, repo.Save(context.Background(), entry))

	processor := NewOutboxProcessor(repo, bus, serializer, OutboxProcessorConfig{
		BatchSize:    100,
		PollInterval: 50 * time.Millisecond,
	}, logger)

	runProcessor(t, processor)

	// The bus surfaces the handler failure, so the entry stays in the
	// retry cycle instead of being marked sent
	status := repo.status(entry.ID)
	assert.NotEqual(t, shared.OutboxStatusSent, status)
	assert.NotEmpty(t, repo.lastError(entry.ID))
}

func TestOutboxProcessor_StopBeforeFirstPoll(t *testing.T) {
	logger := zap.NewNop()
	processor := NewOutboxProcessor(
		newFakeOutboxRepo(),
		NewInMemoryEventBus(logger),
		NewEventSerializer(),
		DefaultOutboxProcessorConfig(),
		logger,
	)

	require.NoError(t, processor.Start(context.Background()))

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, processor.Stop(stopCtx))
}

func TestDefaultOutboxProcessorConfig(t *testing.T) {
	config := DefaultOutboxProcessorConfig()

	assert.Equal(t, 100, config.BatchSize)
	assert.Equal(t, 5*time.Second, config.PollInterval)
	assert.True(t, config.CleanupEnabled)
	assert.Equal(t, 7*24*time.Hour, config.CleanupRetention)
	assert.Equal(t, 1*time.Hour, config.CleanupInterval)
}
