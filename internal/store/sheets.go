package store

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"
)

const sheetsCallTimeout = 10 * time.Second

// SheetsStore is the Google Sheets RowStore. Each table is a tab named
// after the schema; row 1 is the header, data rows start at row 2.
//
// Sheets has no conditional write, so UpdateCellIfUnchanged is emulated
// with read-compare-write. A concurrent writer can slip between the read
// and the write; the window is small but real, and the transfer engine's
// retry loop is built around the condition check, not around this gap.
// Known limitation of the backend.
type SheetsStore struct {
	service       *sheets.Service
	spreadsheetID string
}

func NewSheetsStore(ctx context.Context, spreadsheetID string) (*SheetsStore, error) {
	credentialsJSON := os.Getenv("GOOGLE_SHEETS_CREDENTIALS_JSON")
	var credentials *google.Credentials
	var err error

	if credentialsJSON != "" {
		credentials, err = google.CredentialsFromJSON(ctx, []byte(credentialsJSON), sheets.SpreadsheetsScope)
	} else {
		credentialsFile := os.Getenv("GOOGLE_SHEETS_CREDENTIALS_FILE")
		if credentialsFile == "" {
			credentialsFile = "configs/google-credentials.json"
		}
		var b []byte
		b, err = os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("unable to read credentials file: %w", err)
		}
		credentials, err = google.CredentialsFromJSON(ctx, b, sheets.SpreadsheetsScope)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to load Google credentials: %w", err)
	}

	client := oauth2.NewClient(ctx, credentials.TokenSource)
	service, err := sheets.New(client)
	if err != nil {
		return nil, fmt.Errorf("unable to create Google Sheets client: %w", err)
	}

	return &SheetsStore{service: service, spreadsheetID: spreadsheetID}, nil
}

func (s *SheetsStore) ReadAll(ctx context.Context, table Schema) ([]Row, error) {
	ctx, cancel := context.WithTimeout(ctx, sheetsCallTimeout)
	defer cancel()

	area := fmt.Sprintf("%s!A2:%s", table.Name, columnLetter(len(table.Header)-1))
	response, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, area).Context(ctx).Do()
	if err != nil {
		return nil, &IOError{Op: "read", Table: table.Name, Err: err}
	}

	rows := make([]Row, 0, len(response.Values))
	for i, record := range response.Values {
		row := Row{Index: i, Values: make(map[string]string, len(table.Header))}
		for c, col := range table.Header {
			if c < len(record) {
				row.Values[col] = toString(record[c])
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func (s *SheetsStore) Append(ctx context.Context, table Schema, values []string) error {
	ctx, cancel := context.WithTimeout(ctx, sheetsCallTimeout)
	defer cancel()

	record := make([]interface{}, len(values))
	for i, v := range values {
		record[i] = v
	}

	rows := sheets.ValueRange{Values: [][]interface{}{record}}
	_, err := s.service.Spreadsheets.Values.Append(s.spreadsheetID, table.Name+"!A2", &rows).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return &IOError{Op: "append", Table: table.Name, Err: err}
	}

	return nil
}

func (s *SheetsStore) UpdateCell(ctx context.Context, table Schema, rowIndex int, column string, value string) error {
	ctx, cancel := context.WithTimeout(ctx, sheetsCallTimeout)
	defer cancel()

	cell, err := s.cellRange(table, rowIndex, column)
	if err != nil {
		return err
	}

	rq := sheets.ValueRange{Values: [][]interface{}{{value}}}
	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, cell, &rq).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return &IOError{Op: "update", Table: table.Name, Err: err}
	}

	return nil
}

// UpdateCellIfUnchanged emulates a conditional write: re-read the single
// cell, compare against expected, then write. See the type comment for
// the residual race window.
func (s *SheetsStore) UpdateCellIfUnchanged(ctx context.Context, table Schema, rowIndex int, column, expected, value string) (bool, error) {
	cell, err := s.cellRange(table, rowIndex, column)
	if err != nil {
		return false, err
	}

	readCtx, cancel := context.WithTimeout(ctx, sheetsCallTimeout)
	defer cancel()

	response, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, cell).Context(readCtx).Do()
	if err != nil {
		return false, &IOError{Op: "read", Table: table.Name, Err: err}
	}

	current := ""
	if len(response.Values) > 0 && len(response.Values[0]) > 0 {
		current = toString(response.Values[0][0])
	}
	if current != expected {
		return false, nil
	}

	if err := s.UpdateCell(ctx, table, rowIndex, column, value); err != nil {
		return false, err
	}

	return true, nil
}

func (s *SheetsStore) CheckSchema(ctx context.Context, table Schema) error {
	ctx, cancel := context.WithTimeout(ctx, sheetsCallTimeout)
	defer cancel()

	area := fmt.Sprintf("%s!A1:%s1", table.Name, columnLetter(len(table.Header)-1))
	response, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, area).Context(ctx).Do()
	if err != nil {
		return &IOError{Op: "read", Table: table.Name, Err: err}
	}

	var got []string
	if len(response.Values) > 0 {
		for _, v := range response.Values[0] {
			got = append(got, toString(v))
		}
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

func (s *SheetsStore) cellRange(table Schema, rowIndex int, column string) (string, error) {
	c, ok := table.column(column)
	if !ok {
		return "", &IOError{Op: "update", Table: table.Name, Err: fmt.Errorf("unknown column %s", column)}
	}
	// data rows start at sheet row 2
	return fmt.Sprintf("%s!%s%d", table.Name, columnLetter(c), rowIndex+2), nil
}

func columnLetter(index int) string {
	return string(rune('A' + index))
}

func toString(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprintf("%v", v)
}
