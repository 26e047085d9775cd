package database

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"stockledger/internal/database/migration"
)

// RunMigrations applies the ledger table migrations. Only relevant for
// the Postgres store backend; the Sheets backend is provisioned by hand.
func RunMigrations(dbURL string, migrationsDir string, logger *zap.Logger) error {
	absPath, err := filepath.Abs(migrationsDir)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	return migration.Migrate(dbURL, "file://"+absPath, true, logger)
}
