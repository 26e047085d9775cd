package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/lib/pq"
)

// PostgresStore implements the row contract on Postgres for deployments
// that have outgrown the spreadsheet. Every cell is TEXT to keep parity
// with the sheet backend; each table carries an idx primary key that
// serves as the row handle. Unlike Sheets, the conditional update here
// is genuinely atomic (UPDATE ... WHERE value = expected).
type PostgresStore struct {
	db      *sql.DB
	wrapper *goqu.Database
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db:      db,
		wrapper: goqu.New("postgres", db),
	}
}

func (p *PostgresStore) ReadAll(ctx context.Context, table Schema) ([]Row, error) {
	cols := make([]interface{}, 0, len(table.Header)+1)
	cols = append(cols, "idx")
	for _, c := range table.Header {
		cols = append(cols, c)
	}

	sqlText, args, err := p.wrapper.From(table.Name).Select(cols...).Order(goqu.C("idx").Asc()).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, &IOError{Op: "read", Table: table.Name, Err: err}
	}
	defer rows.Close()

	var result []Row
	for rows.Next() {
		var idx int
		cells := make([]sql.NullString, len(table.Header))
		dest := make([]interface{}, 0, len(cells)+1)
		dest = append(dest, &idx)
		for i := range cells {
			dest = append(dest, &cells[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, &IOError{Op: "read", Table: table.Name, Err: err}
		}

		row := Row{Index: idx, Values: make(map[string]string, len(table.Header))}
		for i, col := range table.Header {
			row.Values[col] = cells[i].String
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &IOError{Op: "read", Table: table.Name, Err: err}
	}

	return result, nil
}

func (p *PostgresStore) Append(ctx context.Context, table Schema, values []string) error {
	if len(values) != len(table.Header) {
		return &IOError{Op: "append", Table: table.Name, Err: fmt.Errorf("expected %d values, got %d", len(table.Header), len(values))}
	}

	record := goqu.Record{}
	for i, col := range table.Header {
		record[col] = values[i]
	}

	sqlText, args, err := p.wrapper.Insert(table.Name).Rows(record).ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := p.db.ExecContext(ctx, sqlText, args...); err != nil {
		return &IOError{Op: "append", Table: table.Name, Err: err}
	}

	return nil
}

func (p *PostgresStore) UpdateCell(ctx context.Context, table Schema, rowIndex int, column string, value string) error {
	if _, ok := table.column(column); !ok {
		return &IOError{Op: "update", Table: table.Name, Err: fmt.Errorf("unknown column %s", column)}
	}

	sqlText, args, err := p.wrapper.Update(table.Name).
		Set(goqu.Record{column: value}).
		Where(goqu.Ex{"idx": rowIndex}).
		ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := p.db.ExecContext(ctx, sqlText, args...); err != nil {
		return &IOError{Op: "update", Table: table.Name, Err: err}
	}

	return nil
}

func (p *PostgresStore) UpdateCellIfUnchanged(ctx context.Context, table Schema, rowIndex int, column, expected, value string) (bool, error) {
	if _, ok := table.column(column); !ok {
		return false, &IOError{Op: "update", Table: table.Name, Err: fmt.Errorf("unknown column %s", column)}
	}

	sqlText, args, err := p.wrapper.Update(table.Name).
		Set(goqu.Record{column: value}).
		Where(goqu.Ex{"idx": rowIndex}).
		Where(goqu.C(column).Eq(expected)).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("failed to build query: %w", err)
	}

	result, err := p.db.ExecContext(ctx, sqlText, args...)
	if err != nil {
		return false, &IOError{Op: "update", Table: table.Name, Err: err}
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, &IOError{Op: "update", Table: table.Name, Err: err}
	}

	return affected > 0, nil
}

func (p *PostgresStore) CheckSchema(ctx context.Context, table Schema) error {
	sqlText, args, err := p.wrapper.From("information_schema.columns").
		Select("column_name").
		Where(goqu.Ex{"table_name": table.Name}).
		Order(goqu.C("ordinal_position").Asc()).
		ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return &IOError{Op: "read", Table: table.Name, Err: err}
	}
	defer rows.Close()

	var got []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return &IOError{Op: "read", Table: table.Name, Err: err}
		}
		if name == "idx" {
			continue
		}
		got = append(got, name)
	}
	if err := rows.Err(); err != nil {
		return &IOError{Op: "read", Table: table.Name, Err: err}
	}

	if len(got) != len(table.Header) {
		return &SchemaError{Table: table.Name, Expected: table.Header, Got: got}
	}
	for i, col := range table.Header {
		if got[i] != col {
			return &SchemaError{Table: table.Name, Expected: table.Header, Got: got}
		}
	}

	return nil
}
