package container

import (
	"context"
	"fmt"
	"os"

	"stockledger/internal/database"
	"stockledger/internal/store"
)

// NewStoreFromEnv builds the configured RowStore backend. Sheets is the
// default; Postgres is opt-in via STORE_BACKEND.
func NewStoreFromEnv(ctx context.Context) (store.RowStore, error) {
	switch backend := os.Getenv("STORE_BACKEND"); backend {
	case "", "sheets":
		spreadsheetID := os.Getenv("SPREADSHEET_ID")
		if spreadsheetID == "" {
			return nil, fmt.Errorf("SPREADSHEET_ID environment variable is not set")
		}
		return store.NewSheetsStore(ctx, spreadsheetID)

	case "postgres":
		dbURL := os.Getenv("DATABASE_URL")
		if dbURL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
		}
		db, err := database.NewPostgresConnection(dbURL)
		if err != nil {
			return nil, err
		}
		return store.NewPostgresStore(db), nil

	case "memory":
		return store.NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", backend)
	}
}
