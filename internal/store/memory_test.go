package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreAppendAndReadAll(t *testing.T) {
	memStore := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, memStore.Append(ctx, InventoryTable, []string{"alice", "사다리", "2.1m", "10"}))
	require.NoError(t, memStore.Append(ctx, InventoryTable, []string{"bob", "선반", "1.2m", "3"}))

	rows, err := memStore.ReadAll(ctx, InventoryTable)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 0, rows[0].Index)
	assert.Equal(t, "alice", rows[0].Values["owner"])
	assert.Equal(t, "10", rows[0].Values["quantity"])
}

func TestMemoryStoreAppendRejectsShortRow(t *testing.T) {
	memStore := NewMemoryStore()

	err := memStore.Append(context.Background(), InventoryTable, []string{"alice", "사다리"})

	var ioErr *IOError
	assert.ErrorAs(t, err, &ioErr)
}

func TestMemoryStoreConditionalUpdate(t *testing.T) {
	memStore := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, memStore.Append(ctx, InventoryTable, []string{"alice", "사다리", "2.1m", "10"}))

	ok, err := memStore.UpdateCellIfUnchanged(ctx, InventoryTable, 0, "quantity", "10", "6")
	require.NoError(t, err)
	assert.True(t, ok)

	// stale expectation loses
	ok, err = memStore.UpdateCellIfUnchanged(ctx, InventoryTable, 0, "quantity", "10", "0")
	require.NoError(t, err)
	assert.False(t, ok)

	rows, err := memStore.ReadAll(ctx, InventoryTable)
	require.NoError(t, err)
	assert.Equal(t, "6", rows[0].Values["quantity"])
}

func TestMemoryStoreConditionalUpdateIsAtomic(t *testing.T) {
	memStore := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, memStore.Append(ctx, InventoryTable, []string{"alice", "사다리", "2.1m", "10"}))

	var wg sync.WaitGroup
	wins := make([]bool, 20)
	for i := range wins {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, err := memStore.UpdateCellIfUnchanged(ctx, InventoryTable, 0, "quantity", "10", "0")
			assert.NoError(t, err)
			wins[i] = ok
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, ok := range wins {
		if ok {
			winners++
		}
	}
	assert.Equal(t, 1, winners)
}

func TestMemoryStoreUpdateCellOutOfRange(t *testing.T) {
	memStore := NewMemoryStore()

	err := memStore.UpdateCell(context.Background(), InventoryTable, 5, "quantity", "1")

	var ioErr *IOError
	assert.ErrorAs(t, err, &ioErr)
}

func TestValidateSchemas(t *testing.T) {
	memStore := NewMemoryStore()
	assert.NoError(t, ValidateSchemas(context.Background(), memStore))
}
