package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/the-books-must-balance/internal/auth"
	"github.com/Veraticus/the-books-must-balance/internal/model"
)

func TestInitializeIdempotent(t *testing.T) {
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "books.db"), Options{})
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := context.Background()

	first, err := NewLifecycle(store, nil).Initialize(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	// A fresh lifecycle re-runs the whole sequence against the already
	// upgraded schema; every step must tolerate its own prior work.
	second, err := NewLifecycle(store, nil).Initialize(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestInitializeRunsOnce(t *testing.T) {
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "books.db"), Options{})
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	lifecycle := NewLifecycle(store, nil)
	ctx := context.Background()

	results := make([]string, 10)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := lifecycle.Initialize(ctx)
			assert.NoError(t, err)
			results[i] = id
		}(i)
	}
	wg.Wait()

	for _, id := range results {
		assert.Equal(t, results[0], id)
	}
}

func TestInitializeProvisionsDefaults(t *testing.T) {
	store, defaultID := newTestStorage(t)
	ctx := context.Background()

	hh, err := store.GetHousehold(ctx, defaultID)
	require.NoError(t, err)
	assert.Equal(t, DefaultTenantName, hh.Name)
	assert.Equal(t, DefaultTenantSlug, hh.Slug)

	sections, err := store.ListSections(ctx, defaultID)
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, model.SummarySectionID, sections[0].ID)
	assert.Equal(t, model.RoleIncome, sections[0].Role)
}

func TestInitializeSeedsFallbackUsers(t *testing.T) {
	store, _ := newTestStorage(t)
	ctx := context.Background()

	for _, seed := range fallbackSeedUsers {
		user, err := store.FindUserByUsername(ctx, seed.Username)
		require.NoError(t, err, "fallback user %q should exist", seed.Username)
		assert.True(t, auth.CheckPassword(user.PasswordHash, seed.Password))
		assert.Equal(t, seed.IsAdmin, user.IsAdmin)
	}
}

func TestInitializeSeedsOperatorUser(t *testing.T) {
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "books.db"), Options{})
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	seed := &SeedUser{Username: "operator", Password: "s3cret", IsAdmin: true}
	_, err = NewLifecycle(store, seed).Initialize(ctx)
	require.NoError(t, err)

	user, err := store.FindUserByUsername(ctx, "operator")
	require.NoError(t, err)
	assert.True(t, user.IsAdmin)
	assert.True(t, auth.CheckPassword(user.PasswordHash, "s3cret"))

	// Case-insensitive: the operator name shadows a fallback that only
	// differs in case.
	_, err = store.FindUserByUsername(ctx, "OPERATOR")
	require.NoError(t, err)
}

func TestInitializeUpgradesLegacySchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "legacy.db")

	// Build the pre-tenant schema by hand: no households table, no
	// household_id or role columns, and a couple of live rows.
	raw, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	for _, stmt := range []string{
		`CREATE TABLE users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE sections (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE categories (
			id TEXT PRIMARY KEY,
			section_id TEXT NOT NULL,
			name TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE entries (
			id TEXT PRIMARY KEY,
			category_id TEXT NOT NULL,
			period TEXT,
			actual REAL NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`INSERT INTO users (id, username, password_hash) VALUES ('u1', 'legacy', 'hash')`,
		`INSERT INTO sections (id, name) VALUES ('s1', 'Moradia')`,
		`INSERT INTO categories (id, section_id, name) VALUES ('c1', 's1', 'Aluguel')`,
		`INSERT INTO entries (id, category_id, period, actual) VALUES ('e1', 'c1', '2024-01', 1500)`,
	} {
		_, err := raw.Exec(stmt)
		require.NoError(t, err)
	}
	require.NoError(t, raw.Close())

	store, err := NewSQLiteStorage(dbPath, Options{})
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	defaultID, err := NewLifecycle(store, nil).Initialize(ctx)
	require.NoError(t, err)

	// Legacy rows now belong to the default household.
	sections, err := store.ListSections(ctx, defaultID)
	require.NoError(t, err)
	names := make([]string, 0, len(sections))
	for _, sec := range sections {
		names = append(names, sec.Name)
	}
	assert.Contains(t, names, "Moradia")

	entries, err := store.ListEntries(ctx, defaultID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, defaultID, entries[0].HouseholdID)
	assert.InDelta(t, 1500, entries[0].Actual, 0.001)

	user, err := store.FindUserByUsername(ctx, "legacy")
	require.NoError(t, err)
	assert.Equal(t, defaultID, user.HouseholdID)
	assert.False(t, user.IsAdmin)

	// The rebuild tightened household_id to NOT NULL everywhere.
	err = store.withConn(ctx, func(conn *sql.Conn) error {
		for _, spec := range schemaTables[1:] {
			nullable, exists, err := householdColumnNullable(ctx, conn, spec.name)
			require.NoError(t, err)
			require.True(t, exists, "%s should have household_id", spec.name)
			assert.False(t, nullable, "%s.household_id should be NOT NULL", spec.name)
		}
		return nil
	})
	require.NoError(t, err)

	// Running the whole sequence again on the upgraded schema is a no-op.
	again, err := NewLifecycle(store, nil).Initialize(ctx)
	require.NoError(t, err)
	assert.Equal(t, defaultID, again)
}
