package ledger

import (
	"context"
	"sync"
	"time"

	"stockledger/internal/store"
	"stockledger/pkg/models"
)

// Snapshot is one reconciled view of the inventory table. It is
// request-scoped state handed to callers explicitly; nothing in the
// service keeps a mutable global view.
type Snapshot struct {
	Entries  []models.StockEntry
	Balances map[models.BalanceKey]*models.Balance
	LoadedAt time.Time
}

func (s *Snapshot) Balance(key models.BalanceKey) *models.Balance {
	return s.Balances[key]
}

// Loader produces snapshots from the store. Display paths may accept a
// cached snapshot up to TTL old; mutating paths must call Fresh, because
// a stale read feeding a mutation is a correctness bug, not a
// performance tradeoff.
type Loader struct {
	store store.RowStore
	ttl   time.Duration

	mu     sync.Mutex
	cached *Snapshot
}

func NewLoader(s store.RowStore, ttl time.Duration) *Loader {
	return &Loader{store: s, ttl: ttl}
}

// Cached returns a snapshot no older than the TTL, loading one if needed.
func (l *Loader) Cached(ctx context.Context) (*Snapshot, error) {
	l.mu.Lock()
	if l.cached != nil && time.Since(l.cached.LoadedAt) < l.ttl {
		snapshot := l.cached
		l.mu.Unlock()
		return snapshot, nil
	}
	l.mu.Unlock()

	return l.Fresh(ctx)
}

// Fresh bypasses the cache, reads the store and reconciles. Transient
// read failures are retried inside ReadAllRetry; a read costs the
// caller nothing to repeat.
func (l *Loader) Fresh(ctx context.Context) (*Snapshot, error) {
	rows, err := store.ReadAllRetry(ctx, l.store, store.InventoryTable)
	if err != nil {
		return nil, err
	}

	entries, err := EntriesFromRows(rows)
	if err != nil {
		return nil, err
	}

	balances, err := Reconcile(entries)
	if err != nil {
		return nil, err
	}

	snapshot := &Snapshot{Entries: entries, Balances: balances, LoadedAt: time.Now()}

	l.mu.Lock()
	l.cached = snapshot
	l.mu.Unlock()

	return snapshot, nil
}

// Invalidate drops the cached snapshot after a mutation.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	l.cached = nil
	l.mu.Unlock()
}
