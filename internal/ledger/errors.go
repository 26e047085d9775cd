package ledger

import (
	"errors"
	"fmt"

	"stockledger/pkg/models"
)

// Every failure mode of a balance mutation is a distinguishable error.
// Validation errors are rejected locally with no partial effect;
// ErrTransferConflict means internal retries were exhausted and the caller
// should re-issue; ErrIndeterminateTransfer means a write's outcome is
// unknown and the audit log must be consulted before re-attempting.
var (
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrUnknownAccount        = errors.New("unknown account")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrTransferConflict      = errors.New("transfer conflict, please retry")
	ErrIndeterminateTransfer = errors.New("transfer outcome indeterminate, reconcile against audit log")
)

// CorruptLedgerError reports a key whose reconciled state violates an
// invariant that writes are supposed to preserve. It is fatal for the
// affected key; clamping would hide the bug that produced it.
type CorruptLedgerError struct {
	Key    models.BalanceKey
	Reason string
}

func (e *CorruptLedgerError) Error() string {
	return fmt.Sprintf("corrupt ledger state for (%s, %s, %s): %s", e.Key.Owner, e.Key.Item, e.Key.Spec, e.Reason)
}
