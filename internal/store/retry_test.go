package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyStore fails the first N reads, then delegates.
type flakyStore struct {
	*MemoryStore
	failures int
	calls    int
	err      error
}

func (f *flakyStore) ReadAll(ctx context.Context, table Schema) ([]Row, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, f.err
	}
	return f.MemoryStore.ReadAll(ctx, table)
}

func TestReadAllRetryAbsorbsTransientFailures(t *testing.T) {
	flaky := &flakyStore{
		MemoryStore: NewMemoryStore(),
		failures:    2,
		err:         &IOError{Op: "read", Table: InventoryTable.Name, Err: errors.New("connection reset")},
	}
	ctx := context.Background()
	require.NoError(t, flaky.MemoryStore.Append(ctx, InventoryTable, []string{"alice", "사다리", "2.1m", "10"}))

	rows, err := ReadAllRetry(ctx, flaky, InventoryTable)

	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, 3, flaky.calls)
}

func TestReadAllRetryGivesUpAfterBoundedAttempts(t *testing.T) {
	flaky := &flakyStore{
		MemoryStore: NewMemoryStore(),
		failures:    10,
		err:         &IOError{Op: "read", Table: InventoryTable.Name, Err: errors.New("connection reset")},
	}

	_, err := ReadAllRetry(context.Background(), flaky, InventoryTable)

	var ioErr *IOError
	assert.ErrorAs(t, err, &ioErr)
	assert.Equal(t, readAttempts, flaky.calls)
}

func TestReadAllRetryDoesNotRetryOtherErrors(t *testing.T) {
	flaky := &flakyStore{
		MemoryStore: NewMemoryStore(),
		failures:    10,
		err:         errors.New("not a store failure"),
	}

	_, err := ReadAllRetry(context.Background(), flaky, InventoryTable)

	assert.Error(t, err)
	assert.Equal(t, 1, flaky.calls)
}
