// Package auditlog keeps the append-only record of balance mutations.
// Entries are never updated or deleted; Recent re-derives its ordering
// from the store on every call instead of holding cursor state.
package auditlog

import (
	"context"
	"strconv"
	"time"

	"stockledger/internal/store"
	"stockledger/pkg/models"
)

type AuditLog struct {
	store store.RowStore
}

func NewAuditLog(s store.RowStore) *AuditLog {
	return &AuditLog{store: s}
}

// Append writes one entry. Callers decide what a failed append means for
// the surrounding operation; the log itself never retries.
func (a *AuditLog) Append(ctx context.Context, entry models.AuditEntry) error {
	return a.store.Append(ctx, store.AuditTable, []string{
		entry.Timestamp.UTC().Format(time.RFC3339Nano),
		entry.Actor,
		entry.Action,
		entry.Item,
		entry.Spec,
		strconv.Itoa(entry.Delta),
		entry.Counterparty,
		entry.Ref,
	})
}

// Recent returns up to n entries, most recent first. Insertion order is
// the only ordering guarantee: timestamps come from uncoordinated
// writers' clocks and may collide or run slightly out of order.
func (a *AuditLog) Recent(ctx context.Context, n int) ([]models.AuditEntry, error) {
	rows, err := store.ReadAllRetry(ctx, a.store, store.AuditTable)
	if err != nil {
		return nil, err
	}

	if n < 0 {
		n = 0
	}
	if n > len(rows) {
		n = len(rows)
	}

	entries := make([]models.AuditEntry, 0, n)
	for i := len(rows) - 1; i >= len(rows)-n; i-- {
		entries = append(entries, parseEntry(rows[i]))
	}

	return entries, nil
}

func parseEntry(row store.Row) models.AuditEntry {
	timestamp, _ := time.Parse(time.RFC3339Nano, row.Values["timestamp"])
	delta, _ := strconv.Atoi(row.Values["delta"])

	return models.AuditEntry{
		Timestamp:    timestamp,
		Actor:        row.Values["actor"],
		Action:       row.Values["action"],
		Item:         row.Values["item"],
		Spec:         row.Values["spec"],
		Delta:        delta,
		Counterparty: row.Values["counterparty"],
		Ref:          row.Values["ref"],
	}
}
