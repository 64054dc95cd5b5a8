package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/config"
	"github.com/Veraticus/the-books-must-balance/internal/service"
	"github.com/Veraticus/the-books-must-balance/internal/storage"
)

// initStorage opens the configured database and runs the schema bring-up.
// It returns the storage handle and the default tenant's household id.
func initStorage(ctx context.Context) (service.Storage, string, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath, storage.Options{
		MaxConns:          viper.GetInt("database.max_conns"),
		DefaultTenantName: viper.GetString("tenant.default_name"),
		DefaultTenantSlug: viper.GetString("tenant.default_slug"),
	})
	if err != nil {
		return nil, "", err
	}

	lifecycle := storage.NewLifecycle(store, seedFromConfig())
	defaultID, err := lifecycle.Initialize(ctx)
	if err != nil {
		_ = store.Close()
		common.LogError(err, "schema initialization failed", common.Fields{"database": dbPath})
		return nil, "", fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, defaultID, nil
}

// seedFromConfig builds the operator seed account from configuration.
// Nil when no seed username is configured.
func seedFromConfig() *storage.SeedUser {
	username := viper.GetString("seed.username")
	if username == "" {
		return nil
	}
	return &storage.SeedUser{
		Username:     username,
		Password:     viper.GetString("seed.password"),
		PasswordHash: viper.GetString("seed.password_hash"),
		IsAdmin:      true,
	}
}

// activeHousehold resolves the household id ledger commands operate on:
// the --household slug when given, otherwise the default tenant.
func activeHousehold(ctx context.Context, store service.Storage, defaultID string) (string, error) {
	slug := viper.GetString("tenant.active")
	if slug == "" {
		return defaultID, nil
	}

	hh, err := store.GetHouseholdBySlug(ctx, slug)
	if err != nil {
		return "", fmt.Errorf("failed to resolve household %q: %w", slug, err)
	}
	return hh.ID, nil
}
