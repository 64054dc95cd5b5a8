// Package testutil provides test fixtures for storage-backed tests: an
// isolated database per test, fully initialized, cleaned up automatically.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Veraticus/the-books-must-balance/internal/storage"
)

// TestDB is an initialized test database plus the identifiers tests need
// most often.
type TestDB struct {
	Storage   *storage.SQLiteStorage
	Lifecycle *storage.Lifecycle
	DefaultID string
	t         *testing.T
}

// SetupTestDB creates a file-backed SQLite database in the test's temp
// directory and runs the full schema bring-up. Each test gets its own
// lifecycle object, so initialization state never leaks between tests.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	return SetupTestDBWithSeed(t, nil)
}

// SetupTestDBWithSeed is SetupTestDB with an operator seed account.
func SetupTestDBWithSeed(t *testing.T, seed *storage.SeedUser) *TestDB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "books.db")
	store, err := storage.NewSQLiteStorage(dbPath, storage.Options{})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	lifecycle := storage.NewLifecycle(store, seed)
	defaultID, err := lifecycle.Initialize(context.Background())
	if err != nil {
		t.Fatalf("failed to initialize schema: %v", err)
	}

	return &TestDB{
		Storage:   store,
		Lifecycle: lifecycle,
		DefaultID: defaultID,
		t:         t,
	}
}

// MustCreateHousehold creates a household or fails the test.
func (db *TestDB) MustCreateHousehold(ctx context.Context, name string) string {
	db.t.Helper()
	hh, err := db.Storage.CreateHousehold(ctx, name, "")
	if err != nil {
		db.t.Fatalf("failed to create household %q: %v", name, err)
	}
	return hh.ID
}

// MustCreateSection creates a section or fails the test.
func (db *TestDB) MustCreateSection(ctx context.Context, householdID, name string) string {
	db.t.Helper()
	id, err := db.Storage.CreateSection(ctx, householdID, name)
	if err != nil {
		db.t.Fatalf("failed to create section %q: %v", name, err)
	}
	return id
}

// MustCreateCategory creates a category or fails the test.
func (db *TestDB) MustCreateCategory(ctx context.Context, householdID, sectionID, name string) string {
	db.t.Helper()
	id, err := db.Storage.CreateCategory(ctx, householdID, sectionID, name)
	if err != nil {
		db.t.Fatalf("failed to create category %q: %v", name, err)
	}
	return id
}

// MustCreateEntry creates an entry or fails the test.
func (db *TestDB) MustCreateEntry(ctx context.Context, householdID, categoryID string, actual float64, period string) string {
	db.t.Helper()
	id, err := db.Storage.CreateEntry(ctx, householdID, categoryID, actual, period)
	if err != nil {
		db.t.Fatalf("failed to create entry: %v", err)
	}
	return id
}
