package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/the-books-must-balance/internal/config"
	"github.com/Veraticus/the-books-must-balance/internal/storage"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Initialize or repair the database schema",
		Long: `Bring the database from any prior state to the fully tenant-partitioned
schema: create missing tables and indexes, attach legacy single-tenant rows
to the default household, and seed initial accounts.

Safe to run repeatedly; completed steps are skipped.`,
		RunE: runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	}
	dbPath = config.ExpandPath(dbPath)

	slog.Info("🗄️  Running schema initialization...", "database", dbPath)

	store, err := storage.NewSQLiteStorage(dbPath, storage.Options{
		MaxConns:          viper.GetInt("database.max_conns"),
		DefaultTenantName: viper.GetString("tenant.default_name"),
		DefaultTenantSlug: viper.GetString("tenant.default_slug"),
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	lifecycle := storage.NewLifecycle(store, seedFromConfig())
	defaultID, err := lifecycle.Initialize(cmd.Context())
	if err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}

	slog.Info("✅ Schema ready", "default_household", defaultID)
	return nil
}
