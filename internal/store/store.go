// Package store defines the row contract the ledger runs on: an ordered
// table of string cells with append and per-cell update, no transactions
// and no locking. Implementations cover Google Sheets (the ledger of
// record), Postgres and an in-memory store for tests.
package store

import (
	"context"
	"fmt"
)

type Schema struct {
	Name   string
	Header []string
}

var (
	InventoryTable = Schema{
		Name:   "inventory",
		Header: []string{"owner", "item", "spec", "quantity"},
	}
	AccountsTable = Schema{
		Name:   "accounts",
		Header: []string{"id", "credential", "role", "disabled"},
	}
	AuditTable = Schema{
		Name:   "audit",
		Header: []string{"timestamp", "actor", "action", "item", "spec", "delta", "counterparty", "ref"},
	}
)

// Row is one data row. Index is an opaque handle valid for UpdateCell
// calls against the same store; it is only meaningful relative to the
// ReadAll that produced it.
type Row struct {
	Index  int
	Values map[string]string
}

// RowStore is the full contract the ledger core needs from the backing
// store. UpdateCellIfUnchanged is the optimistic-concurrency primitive:
// the write applies only if the cell still holds expected, and the bool
// result reports whether it did.
type RowStore interface {
	ReadAll(ctx context.Context, table Schema) ([]Row, error)
	Append(ctx context.Context, table Schema, values []string) error
	UpdateCell(ctx context.Context, table Schema, rowIndex int, column string, value string) error
	UpdateCellIfUnchanged(ctx context.Context, table Schema, rowIndex int, column, expected, value string) (bool, error)
	CheckSchema(ctx context.Context, table Schema) error
}

// IOError wraps a failed store call. The transfer engine uses it to tell
// transport failures apart from condition mismatches and validation
// errors: only IOErrors on reads are safe to retry blindly.
type IOError struct {
	Op    string
	Table string
	Err   error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("store %s on %s: %v", e.Op, e.Table, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// SchemaError reports a header mismatch detected at startup.
type SchemaError struct {
	Table    string
	Expected []string
	Got      []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("table %s header mismatch: expected %v, got %v", e.Table, e.Expected, e.Got)
}

func (s Schema) column(name string) (int, bool) {
	for i, c := range s.Header {
		if c == name {
			return i, true
		}
	}
	return 0, false
}

// ValidateSchemas checks every table this service consumes, once at
// startup. A mismatched header is a deployment error, not something to
// detect column-by-column at runtime.
func ValidateSchemas(ctx context.Context, s RowStore) error {
	for _, table := range []Schema{InventoryTable, AccountsTable, AuditTable} {
		if err := s.CheckSchema(ctx, table); err != nil {
			return err
		}
	}
	return nil
}
