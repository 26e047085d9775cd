package accounts

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"stockledger/internal/ledger"
	"stockledger/internal/store"
	"stockledger/pkg/models"
)

// AccountRepository reads and mutates the accounts table. Accounts are
// never deleted, only disabled, so row indices stay stable.
type AccountRepository struct {
	store store.RowStore
}

func NewRepository(s store.RowStore) *AccountRepository {
	return &AccountRepository{store: s}
}

func (r *AccountRepository) GetAccounts(ctx context.Context) ([]models.Account, error) {
	rows, err := store.ReadAllRetry(ctx, r.store, store.AccountsTable)
	if err != nil {
		return nil, err
	}

	accounts := make([]models.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, parseAccount(row))
	}

	return accounts, nil
}

// GetAccount returns nil when no row matches; callers decide whether
// that is an error.
func (r *AccountRepository) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	account, _, err := r.findRow(ctx, id)
	if errors.Is(err, ledger.ErrUnknownAccount) {
		return nil, nil
	}
	return account, err
}

func (r *AccountRepository) PersistAccount(ctx context.Context, account models.Account) error {
	return r.store.Append(ctx, store.AccountsTable, []string{
		account.ID,
		account.CredentialHash,
		account.Role,
		strconv.FormatBool(account.Disabled),
	})
}

func (r *AccountRepository) UpdateRole(ctx context.Context, id, role string) error {
	_, rowIndex, err := r.findRow(ctx, id)
	if err != nil {
		return err
	}
	return r.store.UpdateCell(ctx, store.AccountsTable, rowIndex, "role", role)
}

func (r *AccountRepository) SetDisabled(ctx context.Context, id string, disabled bool) error {
	_, rowIndex, err := r.findRow(ctx, id)
	if err != nil {
		return err
	}
	return r.store.UpdateCell(ctx, store.AccountsTable, rowIndex, "disabled", strconv.FormatBool(disabled))
}

// findRow never reports index 0 for a missing id; a bare zero here
// would point cell updates at whichever account happens to sit in the
// first row.
func (r *AccountRepository) findRow(ctx context.Context, id string) (*models.Account, int, error) {
	rows, err := store.ReadAllRetry(ctx, r.store, store.AccountsTable)
	if err != nil {
		return nil, 0, err
	}

	for _, row := range rows {
		if row.Values["id"] == id {
			account := parseAccount(row)
			return &account, row.Index, nil
		}
	}

	return nil, 0, fmt.Errorf("%w: %s", ledger.ErrUnknownAccount, id)
}

func parseAccount(row store.Row) models.Account {
	disabled, _ := strconv.ParseBool(row.Values["disabled"])
	return models.Account{
		ID:             row.Values["id"],
		CredentialHash: row.Values["credential"],
		Role:           row.Values["role"],
		Disabled:       disabled,
	}
}
