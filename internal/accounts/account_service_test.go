package accounts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/ledger"
	"stockledger/internal/store"
	"stockledger/pkg/models"
)

func newTestService(t *testing.T) (*AccountService, *store.MemoryStore) {
	t.Helper()
	memStore := store.NewMemoryStore()
	return NewService(NewRepository(memStore), memStore), memStore
}

func seedAdmin(t *testing.T, s *AccountService) models.Account {
	t.Helper()
	err := s.repo.PersistAccount(context.Background(), models.Account{ID: "admin", CredentialHash: "hash", Role: "admin"})
	require.NoError(t, err)
	return models.Account{ID: "admin", Role: "admin"}
}

func TestCreateAppendsAccountAndSentinelRow(t *testing.T) {
	service, memStore := newTestService(t)
	admin := seedAdmin(t, service)
	ctx := context.Background()

	account, err := service.Create(ctx, admin, models.CreateAccountRequest{
		ID: "alice", Credential: "secret", Role: "user",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", account.ID)
	assert.NotEqual(t, "secret", account.CredentialHash)

	rows, err := memStore.ReadAll(ctx, store.InventoryTable)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "alice", rows[0].Values["owner"])
	assert.Equal(t, models.SentinelItem, rows[0].Values["item"])
}

func TestCreateRequiresAdmin(t *testing.T) {
	service, _ := newTestService(t)
	seedAdmin(t, service)

	_, err := service.Create(context.Background(), models.Account{ID: "bob", Role: "user"}, models.CreateAccountRequest{
		ID: "carol", Credential: "secret", Role: "user",
	})

	assert.ErrorIs(t, err, ledger.ErrUnauthorized)
}

func TestCreateRejectsDuplicateID(t *testing.T) {
	service, _ := newTestService(t)
	admin := seedAdmin(t, service)
	ctx := context.Background()

	_, err := service.Create(ctx, admin, models.CreateAccountRequest{ID: "alice", Credential: "secret", Role: "user"})
	require.NoError(t, err)

	_, err = service.Create(ctx, admin, models.CreateAccountRequest{ID: "alice", Credential: "other", Role: "user"})
	assert.ErrorIs(t, err, ErrAccountExists)
}

func TestCreateRejectsInvalidRole(t *testing.T) {
	service, _ := newTestService(t)
	admin := seedAdmin(t, service)

	_, err := service.Create(context.Background(), admin, models.CreateAccountRequest{
		ID: "alice", Credential: "secret", Role: "superuser",
	})

	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestUpdateRoleAndDisable(t *testing.T) {
	service, _ := newTestService(t)
	admin := seedAdmin(t, service)
	ctx := context.Background()

	_, err := service.Create(ctx, admin, models.CreateAccountRequest{ID: "alice", Credential: "secret", Role: "user"})
	require.NoError(t, err)

	newRole := "admin"
	account, err := service.Update(ctx, admin, "alice", models.UpdateAccountRequest{Role: &newRole})
	require.NoError(t, err)
	assert.Equal(t, "admin", account.Role)

	disabled := true
	account, err = service.Update(ctx, admin, "alice", models.UpdateAccountRequest{Disabled: &disabled})
	require.NoError(t, err)
	assert.True(t, account.Disabled)

	// disabled accounts resolve as unknown for ledger operations
	_, err = service.Lookup(ctx, "alice")
	assert.ErrorIs(t, err, ledger.ErrUnknownAccount)
}

func TestUpdateRoleUnknownIDLeavesOtherRowsUntouched(t *testing.T) {
	memStore := store.NewMemoryStore()
	repo := NewRepository(memStore)
	ctx := context.Background()

	require.NoError(t, repo.PersistAccount(ctx, models.Account{ID: "alice", CredentialHash: "hash", Role: "user"}))

	err := repo.UpdateRole(ctx, "ghost", "admin")
	assert.ErrorIs(t, err, ledger.ErrUnknownAccount)

	// the first row must not have been used as a fallback target
	account, err := repo.GetAccount(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "user", account.Role)
}

func TestUpdateUnknownAccount(t *testing.T) {
	service, _ := newTestService(t)
	admin := seedAdmin(t, service)

	role := "user"
	_, err := service.Update(context.Background(), admin, "ghost", models.UpdateAccountRequest{Role: &role})

	assert.ErrorIs(t, err, ledger.ErrUnknownAccount)
}
