// Package transfers executes the balance mutations: register, transfer
// and reclaim. The backing store has no transactions and no locks, so
// every cell write is conditioned on the value read beforehand and the
// whole operation restarts on a mismatch. That discipline, not any
// in-process lock, is what makes concurrent sessions safe.
package transfers

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stockledger/internal/accounts"
	"stockledger/internal/auditlog"
	"stockledger/internal/ledger"
	"stockledger/internal/store"
	"stockledger/pkg/models"
	"stockledger/pkg/roles"
)

const (
	maxAttempts = 3
	backoffBase = 50 * time.Millisecond
)

type TransferResult struct {
	Ref    string `json:"ref"`
	From   string `json:"from,omitempty"`
	To     string `json:"to"`
	Item   string `json:"item"`
	Spec   string `json:"spec"`
	Amount int    `json:"amount"`
}

type TransferService struct {
	store    store.RowStore
	loader   *ledger.Loader
	audit    *auditlog.AuditLog
	accounts *accounts.AccountService
	logger   *zap.Logger
}

func NewService(s store.RowStore, loader *ledger.Loader, audit *auditlog.AuditLog, accountService *accounts.AccountService, logger *zap.Logger) *TransferService {
	return &TransferService{
		store:    s,
		loader:   loader,
		audit:    audit,
		accounts: accountService,
		logger:   logger,
	}
}

// Transfer moves amount units of (item, spec) from one owner to another.
// The actor must be the source owner, or an admin (the reclaim case).
// On success both parties' audit entries share one ref.
func (s *TransferService) Transfer(ctx context.Context, actor models.Account, req models.TransferRequest) (*TransferResult, error) {
	return s.transfer(ctx, actor, req, models.ActionTransferOut, models.ActionTransferIn)
}

// Reclaim is a transfer initiated by an admin on behalf of the source
// owner. An empty destination defaults to the admin's own account. The
// only difference from Transfer is the precondition and the audit action.
func (s *TransferService) Reclaim(ctx context.Context, actor models.Account, req models.ReclaimRequest) (*TransferResult, error) {
	if roles.Role(actor.Role) != roles.Admin {
		return nil, fmt.Errorf("%w: reclaim requires admin role", ledger.ErrUnauthorized)
	}

	to := req.To
	if to == "" {
		to = actor.ID
	}

	return s.transfer(ctx, actor, models.TransferRequest{
		From:   req.From,
		To:     to,
		Item:   req.Item,
		Spec:   req.Spec,
		Amount: req.Amount,
	}, models.ActionReclaim, models.ActionReclaim)
}

// Register records initial_qty units appearing in an owner's balance,
// with no source: a degenerate transfer that only performs the credit
// and audit steps.
func (s *TransferService) Register(ctx context.Context, actor models.Account, req models.RegisterRequest) (*TransferResult, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ledger.ErrInvalidAmount)
	}
	if req.Item == models.SentinelItem {
		return nil, fmt.Errorf("%w: reserved item name", ledger.ErrInvalidAmount)
	}
	if actor.ID != req.Owner && roles.Role(actor.Role) != roles.Admin {
		return nil, fmt.Errorf("%w: cannot register stock for another owner", ledger.ErrUnauthorized)
	}
	if _, err := s.accounts.Lookup(ctx, req.Owner); err != nil {
		return nil, err
	}

	snapshot, err := s.loader.Fresh(ctx)
	if err != nil {
		return nil, err
	}

	key := models.BalanceKey{Owner: req.Owner, Item: req.Item, Spec: req.Spec}
	if err := s.credit(ctx, snapshot, key, req.Quantity); err != nil {
		return nil, err
	}
	s.loader.Invalidate()

	ref := uuid.NewString()
	s.appendAudit(ctx, models.AuditEntry{
		Timestamp: time.Now(),
		Actor:     actor.ID,
		Action:    models.ActionRegister,
		Item:      req.Item,
		Spec:      req.Spec,
		Delta:     req.Quantity,
		Ref:       ref,
	})

	return &TransferResult{Ref: ref, To: req.Owner, Item: req.Item, Spec: req.Spec, Amount: req.Quantity}, nil
}

func (s *TransferService) transfer(ctx context.Context, actor models.Account, req models.TransferRequest, outAction, inAction string) (*TransferResult, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ledger.ErrInvalidAmount)
	}
	if req.From == req.To {
		return nil, fmt.Errorf("%w: source and destination are the same owner", ledger.ErrInvalidAmount)
	}
	if req.Item == models.SentinelItem {
		return nil, fmt.Errorf("%w: reserved item name", ledger.ErrInvalidAmount)
	}
	if actor.ID != req.From && roles.Role(actor.Role) != roles.Admin {
		return nil, fmt.Errorf("%w: only the owner or an admin may move this stock", ledger.ErrUnauthorized)
	}
	if _, err := s.accounts.Lookup(ctx, req.From); err != nil {
		return nil, err
	}
	if _, err := s.accounts.Lookup(ctx, req.To); err != nil {
		return nil, err
	}

	key := models.BalanceKey{Owner: req.From, Item: req.Item, Spec: req.Spec}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			sleep(ctx, jitteredBackoff(attempt))
		}

		// Step 1: fresh read, never the display cache.
		snapshot, err := s.loader.Fresh(ctx)
		if err != nil {
			return nil, err
		}

		balance := snapshot.Balance(key)
		if balance == nil || balance.Quantity < req.Amount {
			return nil, fmt.Errorf("%w: %s has %d of (%s, %s), requested %d",
				ledger.ErrInsufficientBalance, req.From, balanceQuantity(balance), req.Item, req.Spec, req.Amount)
		}

		ok, err := s.debit(ctx, snapshot, balance, req.Amount)
		if err != nil {
			return nil, err
		}
		if !ok {
			// another session touched the source rows; restart from step 1
			continue
		}

		if err := s.credit(ctx, snapshot, models.BalanceKey{Owner: req.To, Item: req.Item, Spec: req.Spec}, req.Amount); err != nil {
			return nil, err
		}
		s.loader.Invalidate()

		ref := uuid.NewString()
		now := time.Now()
		s.appendAudit(ctx, models.AuditEntry{
			Timestamp: now, Actor: req.From, Action: outAction,
			Item: req.Item, Spec: req.Spec, Delta: -req.Amount,
			Counterparty: req.To, Ref: ref,
		})
		s.appendAudit(ctx, models.AuditEntry{
			Timestamp: now, Actor: req.To, Action: inAction,
			Item: req.Item, Spec: req.Spec, Delta: req.Amount,
			Counterparty: req.From, Ref: ref,
		})

		return &TransferResult{
			Ref: ref, From: req.From, To: req.To,
			Item: req.Item, Spec: req.Spec, Amount: req.Amount,
		}, nil
	}

	return nil, ledger.ErrTransferConflict
}

// debit removes amount from the rows backing the balance, first-fit in
// store order, each cell write conditioned on the snapshot value. The
// false return means a condition failed; any rows already debited have
// been restored by a compensating append, so the caller can restart
// cleanly from a fresh read.
func (s *TransferService) debit(ctx context.Context, snapshot *ledger.Snapshot, balance *models.Balance, amount int) (bool, error) {
	byRow := entriesByRow(snapshot)
	remaining := amount
	debited := 0

	for _, rowIndex := range balance.Rows {
		if remaining == 0 {
			break
		}

		entry := byRow[rowIndex]
		if entry.Quantity == 0 {
			continue
		}

		take := entry.Quantity
		if take > remaining {
			take = remaining
		}

		ok, err := s.store.UpdateCellIfUnchanged(ctx, store.InventoryTable, rowIndex, "quantity",
			strconv.Itoa(entry.Quantity), strconv.Itoa(entry.Quantity-take))
		if err != nil {
			if debited > 0 {
				return false, s.indeterminate(ctx, balance.BalanceKey, debited, err)
			}
			return false, err
		}
		if !ok {
			if err := s.restore(ctx, balance.BalanceKey, debited); err != nil {
				return false, err
			}
			return false, nil
		}

		debited += take
		remaining -= take
	}

	if remaining > 0 {
		// the snapshot promised enough quantity; reaching here means the
		// backing rows and the reconciled sum disagree
		if err := s.restore(ctx, balance.BalanceKey, debited); err != nil {
			return false, err
		}
		return false, &ledger.CorruptLedgerError{Key: balance.BalanceKey, Reason: "backing rows hold less than reconciled balance"}
	}

	return true, nil
}

// credit adds amount to the destination's balance: conditionally
// increment an existing backing row, or append a new one. A failed
// condition on the increment falls back to an append, which cannot
// conflict; the duplicate row is a normal storage artifact that
// reconciliation absorbs.
func (s *TransferService) credit(ctx context.Context, snapshot *ledger.Snapshot, key models.BalanceKey, amount int) error {
	balance := snapshot.Balance(key)
	if balance != nil && len(balance.Rows) > 0 {
		rowIndex := balance.Rows[0]
		entry := entriesByRow(snapshot)[rowIndex]

		ok, err := s.store.UpdateCellIfUnchanged(ctx, store.InventoryTable, rowIndex, "quantity",
			strconv.Itoa(entry.Quantity), strconv.Itoa(entry.Quantity+amount))
		if err != nil {
			// outcome unknown; retrying could double-credit
			return fmt.Errorf("%w: credit of %d to (%s, %s, %s) failed: %v",
				ledger.ErrIndeterminateTransfer, amount, key.Owner, key.Item, key.Spec, err)
		}
		if ok {
			return nil
		}
	}

	if err := s.store.Append(ctx, store.InventoryTable, []string{key.Owner, key.Item, key.Spec, strconv.Itoa(amount)}); err != nil {
		return fmt.Errorf("%w: credit of %d to (%s, %s, %s) failed: %v",
			ledger.ErrIndeterminateTransfer, amount, key.Owner, key.Item, key.Spec, err)
	}

	return nil
}

// restore re-credits a partially debited source via append, which is the
// only write here that cannot lose a race.
func (s *TransferService) restore(ctx context.Context, key models.BalanceKey, debited int) error {
	if debited == 0 {
		return nil
	}
	if err := s.store.Append(ctx, store.InventoryTable, []string{key.Owner, key.Item, key.Spec, strconv.Itoa(debited)}); err != nil {
		return s.indeterminate(ctx, key, debited, err)
	}
	return nil
}

func (s *TransferService) indeterminate(ctx context.Context, key models.BalanceKey, debited int, cause error) error {
	s.logger.Error("transfer left the source partially debited",
		zap.String("owner", key.Owner),
		zap.String("item", key.Item),
		zap.String("spec", key.Spec),
		zap.Int("debited", debited),
		zap.Error(cause))
	return fmt.Errorf("%w: %d units debited from (%s, %s, %s), store error: %v",
		ledger.ErrIndeterminateTransfer, debited, key.Owner, key.Item, key.Spec, cause)
}

// appendAudit records the entry. The balance mutation has already
// committed; a failed audit write is logged and does not fail the
// operation.
func (s *TransferService) appendAudit(ctx context.Context, entry models.AuditEntry) {
	if err := s.audit.Append(ctx, entry); err != nil {
		s.logger.Error("failed to append audit entry",
			zap.String("actor", entry.Actor),
			zap.String("action", entry.Action),
			zap.String("ref", entry.Ref),
			zap.Error(err))
	}
}

func entriesByRow(snapshot *ledger.Snapshot) map[int]models.StockEntry {
	byRow := make(map[int]models.StockEntry, len(snapshot.Entries))
	for _, entry := range snapshot.Entries {
		byRow[entry.RowIndex] = entry
	}
	return byRow
}

func balanceQuantity(balance *models.Balance) int {
	if balance == nil {
		return 0
	}
	return balance.Quantity
}
