package accounts

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"stockledger/internal/ledger"
	"stockledger/internal/store"
	"stockledger/pkg/models"
	"stockledger/pkg/roles"
)

var (
	ErrAccountExists = errors.New("account already exists")
	ErrInvalidRole   = errors.New("invalid role")
)

// AccountService owns account lifecycle: create, role change, disable.
// The admin check lives here, not only at the route layer, so the rules
// hold when the service is invoked programmatically.
type AccountService struct {
	repo  *AccountRepository
	store store.RowStore
}

func NewService(repo *AccountRepository, s store.RowStore) *AccountService {
	return &AccountService{repo: repo, store: s}
}

// Create registers a new account and appends its sentinel placeholder
// row to the inventory table so the owner has a presence there before
// any stock is registered.
func (s *AccountService) Create(ctx context.Context, actor models.Account, req models.CreateAccountRequest) (*models.Account, error) {
	if roles.Role(actor.Role) != roles.Admin {
		return nil, fmt.Errorf("%w: only admins may create accounts", ledger.ErrUnauthorized)
	}
	if !roles.Role(req.Role).IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, req.Role)
	}

	existing, err := s.repo.GetAccount(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountExists, req.ID)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Credential), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash credential: %w", err)
	}

	account := models.Account{
		ID:             req.ID,
		CredentialHash: string(hashed),
		Role:           req.Role,
	}

	if err := s.repo.PersistAccount(ctx, account); err != nil {
		return nil, err
	}

	// placeholder row: non-stock marker, excluded from balances
	if err := s.store.Append(ctx, store.InventoryTable, []string{account.ID, models.SentinelItem, "", "0"}); err != nil {
		return nil, err
	}

	return &account, nil
}

func (s *AccountService) Update(ctx context.Context, actor models.Account, id string, req models.UpdateAccountRequest) (*models.Account, error) {
	if roles.Role(actor.Role) != roles.Admin {
		return nil, fmt.Errorf("%w: only admins may update accounts", ledger.ErrUnauthorized)
	}

	account, err := s.repo.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("%w: %s", ledger.ErrUnknownAccount, id)
	}

	if req.Role != nil && *req.Role != account.Role {
		if !roles.Role(*req.Role).IsValid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRole, *req.Role)
		}
		if err := s.repo.UpdateRole(ctx, id, *req.Role); err != nil {
			return nil, err
		}
	}

	if req.Disabled != nil && *req.Disabled != account.Disabled {
		if err := s.repo.SetDisabled(ctx, id, *req.Disabled); err != nil {
			return nil, err
		}
	}

	return s.repo.GetAccount(ctx, id)
}

// Lookup resolves an account id to an active account; disabled and
// unknown accounts both map to ErrUnknownAccount for the caller.
func (s *AccountService) Lookup(ctx context.Context, id string) (*models.Account, error) {
	account, err := s.repo.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	if account == nil || account.Disabled {
		return nil, fmt.Errorf("%w: %s", ledger.ErrUnknownAccount, id)
	}
	return account, nil
}
