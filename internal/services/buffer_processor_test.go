package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/eventhub/domain"
	"github.com/fastygo/eventhub/internal/infrastructure/buffer"
	"github.com/fastygo/eventhub/repository"
)

type flakyActivities struct {
	mu     sync.Mutex
	fail   bool
	stored []domain.Activity
}

func (f *flakyActivities) Append(ctx context.Context, activity domain.Activity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("storage unavailable")
	}
	f.stored = append(f.stored, activity)
	return nil
}

func (f *flakyActivities) List(ctx context.Context, filter repository.ActivityFilter) ([]domain.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Activity(nil), f.stored...), nil
}

func (f *flakyActivities) setFail(fail bool) {
	f.mu.Lock()
	f.fail = fail
	f.mu.Unlock()
}

type staticHealth bool

func (s staticHealth) IsOnline() bool { return bool(s) }

func newSpool(t *testing.T) *buffer.Store {
	t.Helper()
	store, err := buffer.Open(filepath.Join(t.TempDir(), "buffer.db"), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func activity(id string) domain.Activity {
	return domain.Activity{
		ID:        id,
		EventID:   "event-1",
		UserID:    "user-1",
		ActorID:   "user-1",
		Action:    domain.ActionRegistrationAdded,
		CreatedAt: time.Now().UTC(),
	}
}

func TestActivityBridgeWritesThroughWhenStorageIsUp(t *testing.T) {
	repo := &flakyActivities{}
	processor := NewBufferProcessor(newSpool(t), nil, repo, nil, ProcessorConfig{})
	bridge := NewActivityBridge(processor)

	require.NoError(t, bridge.Record(context.Background(), activity("a1")))

	assert.Len(t, repo.stored, 1)
	assert.Equal(t, 0, processor.Pending())
}

func TestActivityBridgeSpoolsAndDrains(t *testing.T) {
	repo := &flakyActivities{fail: true}
	processor := NewBufferProcessor(newSpool(t), nil, repo, nil, ProcessorConfig{MaxRetries: 5})
	bridge := NewActivityBridge(processor)
	ctx := context.Background()

	require.NoError(t, bridge.Record(ctx, activity("a1")))
	require.NoError(t, bridge.Record(ctx, activity("a2")))
	assert.Equal(t, 2, processor.Pending())

	// still failing: items stay queued with a bumped retry count
	replayed, err := processor.Drain(ctx)
	require.NoError(t, err)
	assert.Zero(t, replayed)
	assert.Equal(t, 2, processor.Pending())

	repo.setFail(false)
	replayed, err = processor.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, replayed)
	assert.Equal(t, 0, processor.Pending())

	stored, err := repo.List(ctx, repository.ActivityFilter{})
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.ElementsMatch(t, []string{"a1", "a2"}, []string{stored[0].ID, stored[1].ID})
}

func TestDrainDropsItemsAfterMaxRetries(t *testing.T) {
	repo := &flakyActivities{fail: true}
	processor := NewBufferProcessor(newSpool(t), nil, repo, nil, ProcessorConfig{MaxRetries: 2})
	ctx := context.Background()

	require.NoError(t, NewActivityBridge(processor).Record(ctx, activity("a1")))

	_, err := processor.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, processor.Pending())
	_, err = processor.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, processor.Pending())
}

func TestOfflineSkipsImmediateWriteAndDrain(t *testing.T) {
	repo := &flakyActivities{}
	processor := NewBufferProcessor(newSpool(t), staticHealth(false), repo, nil, ProcessorConfig{})
	ctx := context.Background()

	require.NoError(t, NewActivityBridge(processor).Record(ctx, activity("a1")))
	assert.Empty(t, repo.stored)
	assert.Equal(t, 1, processor.Pending())

	replayed, err := processor.Drain(ctx)
	require.NoError(t, err)
	assert.Zero(t, replayed)
	assert.Equal(t, 1, processor.Pending())
}
