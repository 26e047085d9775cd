package auditlog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/store"
	"stockledger/pkg/models"
)

func TestAppendAndRecent(t *testing.T) {
	memStore := store.NewMemoryStore()
	log := NewAuditLog(memStore)
	ctx := context.Background()

	entries := []models.AuditEntry{
		{Timestamp: time.Now(), Actor: "alice", Action: models.ActionRegister, Item: "사다리", Spec: "2.1m", Delta: 10, Ref: "ref-1"},
		{Timestamp: time.Now(), Actor: "alice", Action: models.ActionTransferOut, Item: "사다리", Spec: "2.1m", Delta: -4, Counterparty: "bob", Ref: "ref-2"},
		{Timestamp: time.Now(), Actor: "bob", Action: models.ActionTransferIn, Item: "사다리", Spec: "2.1m", Delta: 4, Counterparty: "alice", Ref: "ref-2"},
	}
	for _, entry := range entries {
		require.NoError(t, log.Append(ctx, entry))
	}

	recent, err := log.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)

	// most recent first
	assert.Equal(t, models.ActionTransferIn, recent[0].Action)
	assert.Equal(t, "bob", recent[0].Actor)
	assert.Equal(t, 4, recent[0].Delta)
	assert.Equal(t, models.ActionTransferOut, recent[1].Action)
	assert.Equal(t, -4, recent[1].Delta)
	assert.Equal(t, "bob", recent[1].Counterparty)
	assert.Equal(t, recent[0].Ref, recent[1].Ref)
}

func TestRecentBounds(t *testing.T) {
	memStore := store.NewMemoryStore()
	log := NewAuditLog(memStore)
	ctx := context.Background()

	require.NoError(t, log.Append(ctx, models.AuditEntry{
		Timestamp: time.Now(), Actor: "alice", Action: models.ActionRegister, Item: "사다리", Delta: 1, Ref: "ref-1",
	}))

	recent, err := log.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 1)

	recent, err = log.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, recent)

	recent, err = log.Recent(ctx, -3)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestRecentIsRestartable(t *testing.T) {
	memStore := store.NewMemoryStore()
	log := NewAuditLog(memStore)
	ctx := context.Background()

	require.NoError(t, log.Append(ctx, models.AuditEntry{
		Timestamp: time.Now(), Actor: "alice", Action: models.ActionRegister, Item: "사다리", Delta: 1, Ref: "ref-1",
	}))

	first, err := log.Recent(ctx, 5)
	require.NoError(t, err)

	require.NoError(t, log.Append(ctx, models.AuditEntry{
		Timestamp: time.Now(), Actor: "bob", Action: models.ActionRegister, Item: "선반", Delta: 2, Ref: "ref-2",
	}))

	second, err := log.Recent(ctx, 5)
	require.NoError(t, err)

	// each call re-derives the ordering from the store
	assert.Len(t, first, 1)
	assert.Len(t, second, 2)
	assert.Equal(t, "bob", second[0].Actor)
}
