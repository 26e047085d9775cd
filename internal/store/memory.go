package store

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is an in-process RowStore with the same semantics as the
// remote backends, including real conditional updates. Used by tests and
// local development.
type MemoryStore struct {
	mu     sync.Mutex
	tables map[string][][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tables: map[string][][]string{
			InventoryTable.Name: {},
			AccountsTable.Name:  {},
			AuditTable.Name:     {},
		},
	}
}

func (m *MemoryStore) ReadAll(_ context.Context, table Schema) ([]Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, ok := m.tables[table.Name]
	if !ok {
		return nil, &IOError{Op: "read", Table: table.Name, Err: fmt.Errorf("unknown table")}
	}

	rows := make([]Row, 0, len(raw))
	for i, values := range raw {
		row := Row{Index: i, Values: make(map[string]string, len(table.Header))}
		for c, col := range table.Header {
			if c < len(values) {
				row.Values[col] = values[c]
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func (m *MemoryStore) Append(_ context.Context, table Schema, values []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tables[table.Name]; !ok {
		return &IOError{Op: "append", Table: table.Name, Err: fmt.Errorf("unknown table")}
	}
	if len(values) != len(table.Header) {
		return &IOError{Op: "append", Table: table.Name, Err: fmt.Errorf("expected %d values, got %d", len(table.Header), len(values))}
	}

	m.tables[table.Name] = append(m.tables[table.Name], append([]string(nil), values...))
	return nil
}

func (m *MemoryStore) UpdateCell(_ context.Context, table Schema, rowIndex int, column string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cell, err := m.locate(table, rowIndex, column)
	if err != nil {
		return err
	}
	m.tables[table.Name][rowIndex][cell] = value
	return nil
}

func (m *MemoryStore) UpdateCellIfUnchanged(_ context.Context, table Schema, rowIndex int, column, expected, value string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cell, err := m.locate(table, rowIndex, column)
	if err != nil {
		return false, err
	}
	if m.tables[table.Name][rowIndex][cell] != expected {
		return false, nil
	}
	m.tables[table.Name][rowIndex][cell] = value
	return true, nil
}

func (m *MemoryStore) CheckSchema(_ context.Context, table Schema) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tables[table.Name]; !ok {
		return &SchemaError{Table: table.Name, Expected: table.Header, Got: nil}
	}
	return nil
}

func (m *MemoryStore) locate(table Schema, rowIndex int, column string) (int, error) {
	raw, ok := m.tables[table.Name]
	if !ok {
		return 0, &IOError{Op: "update", Table: table.Name, Err: fmt.Errorf("unknown table")}
	}
	if rowIndex < 0 || rowIndex >= len(raw) {
		return 0, &IOError{Op: "update", Table: table.Name, Err: fmt.Errorf("row %d out of range", rowIndex)}
	}
	cell, ok := table.column(column)
	if !ok {
		return 0, &IOError{Op: "update", Table: table.Name, Err: fmt.Errorf("unknown column %s", column)}
	}
	return cell, nil
}
