package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/gptgame/internal/domain"
)

func TestStoreCountsConcurrentEvents(t *testing.T) {
	t.Parallel()

	store := NewStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Record(ctx, domain.GameEvent{Kind: domain.GameEventAsked}))
		}()
	}
	wg.Wait()
	require.NoError(t, store.Record(ctx, domain.GameEvent{Kind: domain.GameEventEnded}))

	snapshot, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[domain.GameEventKind]int64{
		domain.GameEventAsked: 50,
		domain.GameEventEnded: 1,
	}, snapshot)
}

func TestStoreSnapshotIsDetached(t *testing.T) {
	t.Parallel()

	store := NewStore()
	ctx := context.Background()
	require.NoError(t, store.Record(ctx, domain.GameEvent{Kind: domain.GameEventCreated}))

	snapshot, err := store.Snapshot(ctx)
	require.NoError(t, err)
	snapshot[domain.GameEventCreated] = 100

	again, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), again[domain.GameEventCreated])
}

func TestStoreRejectsCanceledContext(t *testing.T) {
	t.Parallel()

	store := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, store.Record(ctx, domain.GameEvent{Kind: domain.GameEventAsked}), context.Canceled)
	_, err := store.Snapshot(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
