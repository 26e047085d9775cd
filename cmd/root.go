package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"stockledger/internal/core/container"
	"stockledger/internal/core/logger"
	"stockledger/internal/database"
	"stockledger/internal/store"
)

var MigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run Postgres migrations manually.",
	Long:  `Applies the ledger table migrations. Only used with the postgres store backend.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dbURL := os.Getenv("DATABASE_URL")
		migrationDir, _ := cmd.Flags().GetString("dir")

		err := database.RunMigrations(dbURL, migrationDir, logger.NewLogger())
		if err != nil {
			log.Println(err.Error())
			return fmt.Errorf("migrate database: %w", err)
		}

		return nil
	},
}

var CheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the backing tables against the expected schemas.",
	Long:  `Reads each table header and fails if it does not match the fixed schema the service expects.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		rowStore, err := container.NewStoreFromEnv(cmd.Context())
		if err != nil {
			return err
		}

		if err := store.ValidateSchemas(cmd.Context(), rowStore); err != nil {
			return fmt.Errorf("schema check failed: %w", err)
		}

		log.Println("All table schemas match.")
		return nil
	},
}

func Execute(ctx context.Context) {
	rootCmd := &cobra.Command{
		Use:   "stockledger",
		Short: "Multi-owner inventory ledger service",
	}
	MigrateCmd.Flags().String("dir", "./migrations", "Directory containing the migration files")
	rootCmd.AddCommand(MigrateCmd)
	rootCmd.AddCommand(CheckCmd)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
