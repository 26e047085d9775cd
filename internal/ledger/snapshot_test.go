package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/store"
	"stockledger/pkg/models"
)

func TestCachedServesWithinTTL(t *testing.T) {
	memStore := store.NewMemoryStore()
	loader := NewLoader(memStore, time.Minute)
	ctx := context.Background()

	require.NoError(t, memStore.Append(ctx, store.InventoryTable, []string{"alice", "사다리", "2.1m", "10"}))

	first, err := loader.Cached(ctx)
	require.NoError(t, err)

	// a write the cache has not seen yet
	require.NoError(t, memStore.Append(ctx, store.InventoryTable, []string{"alice", "사다리", "2.1m", "5"}))

	second, err := loader.Cached(ctx)
	require.NoError(t, err)
	assert.Same(t, first, second)

	key := models.BalanceKey{Owner: "alice", Item: "사다리", Spec: "2.1m"}
	assert.Equal(t, 10, second.Balance(key).Quantity)
}

func TestFreshBypassesCache(t *testing.T) {
	memStore := store.NewMemoryStore()
	loader := NewLoader(memStore, time.Minute)
	ctx := context.Background()

	require.NoError(t, memStore.Append(ctx, store.InventoryTable, []string{"alice", "사다리", "2.1m", "10"}))
	_, err := loader.Cached(ctx)
	require.NoError(t, err)

	require.NoError(t, memStore.Append(ctx, store.InventoryTable, []string{"alice", "사다리", "2.1m", "5"}))

	snapshot, err := loader.Fresh(ctx)
	require.NoError(t, err)

	key := models.BalanceKey{Owner: "alice", Item: "사다리", Spec: "2.1m"}
	assert.Equal(t, 15, snapshot.Balance(key).Quantity)
}

// unreliableStore fails the first N reads with an IOError, then
// delegates.
type unreliableStore struct {
	*store.MemoryStore
	failures int
	calls    int
}

func (u *unreliableStore) ReadAll(ctx context.Context, table store.Schema) ([]store.Row, error) {
	u.calls++
	if u.calls <= u.failures {
		return nil, &store.IOError{Op: "read", Table: table.Name, Err: context.DeadlineExceeded}
	}
	return u.MemoryStore.ReadAll(ctx, table)
}

func TestFreshAbsorbsTransientReadFailure(t *testing.T) {
	unreliable := &unreliableStore{MemoryStore: store.NewMemoryStore(), failures: 1}
	loader := NewLoader(unreliable, time.Minute)
	ctx := context.Background()

	require.NoError(t, unreliable.MemoryStore.Append(ctx, store.InventoryTable, []string{"alice", "사다리", "2.1m", "10"}))

	snapshot, err := loader.Fresh(ctx)
	require.NoError(t, err)

	key := models.BalanceKey{Owner: "alice", Item: "사다리", Spec: "2.1m"}
	assert.Equal(t, 10, snapshot.Balance(key).Quantity)
	assert.Equal(t, 2, unreliable.calls)
}

func TestInvalidateDropsCache(t *testing.T) {
	memStore := store.NewMemoryStore()
	loader := NewLoader(memStore, time.Minute)
	ctx := context.Background()

	require.NoError(t, memStore.Append(ctx, store.InventoryTable, []string{"alice", "사다리", "2.1m", "10"}))
	_, err := loader.Cached(ctx)
	require.NoError(t, err)

	require.NoError(t, memStore.Append(ctx, store.InventoryTable, []string{"alice", "사다리", "2.1m", "5"}))
	loader.Invalidate()

	snapshot, err := loader.Cached(ctx)
	require.NoError(t, err)

	key := models.BalanceKey{Owner: "alice", Item: "사다리", Spec: "2.1m"}
	assert.Equal(t, 15, snapshot.Balance(key).Quantity)
}
