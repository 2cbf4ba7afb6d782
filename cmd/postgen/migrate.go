package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/abdulachik/postgen/internal/config"
	"github.com/abdulachik/postgen/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long:  `Apply pending migrations to the run ledger database.`,
	RunE:  runMigrate,
}

var migrateStatus bool

func init() {
	migrateCmd.Flags().BoolVar(&migrateStatus, "status", false, "list pending migrations without applying them")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(func(c *config.Config) error {
		if c.DatabasePath == "" {
			return fmt.Errorf("%w: DATABASE_PATH", config.ErrMissingRequired)
		}
		return nil
	})
	if err != nil {
		return err
	}

	store, err := db.NewStore(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer store.Close()

	if migrateStatus {
		pending, err := store.PendingMigrations(ctx)
		if err != nil {
			return fmt.Errorf("list migrations: %w", err)
		}
		if len(pending) == 0 {
			fmt.Println("Database is up to date.")
			return nil
		}
		fmt.Println("Pending migrations:")
		for _, name := range pending {
			fmt.Printf("  %s\n", name)
		}
		return nil
	}

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("migrations completed successfully", "path", cfg.DatabasePath)
	return nil
}
