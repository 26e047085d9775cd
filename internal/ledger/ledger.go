// Package ledger derives canonical balances from the raw inventory rows.
// The store is append-oriented, so several rows may back one
// (owner, item, spec) key; all business logic reasons about the
// reconciled Balance, never about individual rows.
package ledger

import (
	"fmt"
	"strconv"

	"stockledger/internal/store"
	"stockledger/pkg/models"
)

// EntriesFromRows parses raw store rows into stock entries. A quantity
// cell that does not parse as a non-negative integer marks the key as
// corrupt: someone edited the sheet by hand or a write was torn.
func EntriesFromRows(rows []store.Row) ([]models.StockEntry, error) {
	entries := make([]models.StockEntry, 0, len(rows))
	for _, row := range rows {
		entry := models.StockEntry{
			RowIndex: row.Index,
			Owner:    row.Values["owner"],
			Item:     row.Values["item"],
			Spec:     row.Values["spec"],
		}

		raw := row.Values["quantity"]
		if raw == "" && entry.Item == models.SentinelItem {
			entries = append(entries, entry)
			continue
		}

		qty, err := strconv.Atoi(raw)
		if err != nil {
			return nil, &CorruptLedgerError{
				Key:    models.BalanceKey{Owner: entry.Owner, Item: entry.Item, Spec: entry.Spec},
				Reason: fmt.Sprintf("quantity %q is not an integer", raw),
			}
		}
		if qty < 0 {
			return nil, &CorruptLedgerError{
				Key:    models.BalanceKey{Owner: entry.Owner, Item: entry.Item, Spec: entry.Spec},
				Reason: fmt.Sprintf("row %d holds negative quantity %d", row.Index, qty),
			}
		}

		entry.Quantity = qty
		entries = append(entries, entry)
	}

	return entries, nil
}

// Reconcile collapses the raw entries into one Balance per key, recording
// which rows back each balance so mutations can target a concrete row.
// Sentinel rows register an owner's presence and carry no stock; they are
// excluded from the result. Pure and idempotent.
func Reconcile(entries []models.StockEntry) (map[models.BalanceKey]*models.Balance, error) {
	balances := make(map[models.BalanceKey]*models.Balance)

	for _, entry := range entries {
		if entry.Item == models.SentinelItem {
			continue
		}

		key := models.BalanceKey{Owner: entry.Owner, Item: entry.Item, Spec: entry.Spec}
		balance, ok := balances[key]
		if !ok {
			balance = &models.Balance{BalanceKey: key}
			balances[key] = balance
		}

		balance.Quantity += entry.Quantity
		balance.Rows = append(balance.Rows, entry.RowIndex)
	}

	for key, balance := range balances {
		if balance.Quantity < 0 {
			return nil, &CorruptLedgerError{Key: key, Reason: fmt.Sprintf("reconciled sum is %d", balance.Quantity)}
		}
	}

	return balances, nil
}

// Owners returns the set of owner ids that have a presence in the
// inventory table, sentinel rows included.
func Owners(entries []models.StockEntry) map[string]bool {
	owners := make(map[string]bool)
	for _, entry := range entries {
		owners[entry.Owner] = true
	}
	return owners
}
