package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/the-books-must-balance/internal/auth"
	"github.com/Veraticus/the-books-must-balance/internal/model"
)

// SeedUser describes an administrator account seeded into the default tenant
// during initialization. Password is hashed before storage; PasswordHash, if
// set, is stored as-is and wins over Password.
type SeedUser struct {
	Username     string
	Password     string
	PasswordHash string
	IsAdmin      bool
}

// fallbackSeedUsers are created when no matching username exists yet. The
// plaintext passwords are placeholders; initialization logs a warning when
// any of them is actually seeded.
var fallbackSeedUsers = []SeedUser{
	{Username: "admin", Password: "books-admin", IsAdmin: true},
	{Username: "familia", Password: "books-familia"},
}

// Lifecycle brings the schema from any prior state to the fully
// tenant-partitioned state, exactly once per process. The entry point
// constructs one Lifecycle and shares it by reference; every caller of
// Initialize observes the result of a single execution, concurrent
// first-callers included.
type Lifecycle struct {
	store     *SQLiteStorage
	seed      *SeedUser
	err       error
	defaultID string
	once      sync.Once
}

// NewLifecycle creates a lifecycle for the given store. seed is the optional
// operator-supplied administrator account; nil means only the fixed fallback
// accounts are considered.
func NewLifecycle(store *SQLiteStorage, seed *SeedUser) *Lifecycle {
	return &Lifecycle{store: store, seed: seed}
}

// Initialize runs the schema bring-up sequence and returns the default
// tenant's household id. Safe to call concurrently: the first caller runs
// the sequence while everyone else blocks on the same in-flight execution
// and shares its outcome. A failure is fatal to startup and is returned to
// every caller unchanged; the sequence is never retried.
func (l *Lifecycle) Initialize(ctx context.Context) (string, error) {
	l.once.Do(func() {
		l.defaultID, l.err = l.run(ctx)
	})
	return l.defaultID, l.err
}

func (l *Lifecycle) run(ctx context.Context) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}

	var defaultID string
	err := l.store.withConn(ctx, func(conn *sql.Conn) error {
		if err := createTables(ctx, conn); err != nil {
			return err
		}
		if err := addMissingColumns(ctx, conn); err != nil {
			return err
		}
		if err := ensureIndexes(ctx, conn); err != nil {
			return err
		}

		id, err := ensureDefaultHousehold(ctx, conn, l.store.defaultName, l.store.defaultSlug)
		if err != nil {
			return err
		}
		defaultID = id

		if err := ensureSummarySection(ctx, conn, id); err != nil {
			return err
		}
		if err := backfillTenantData(ctx, conn, id); err != nil {
			return err
		}
		if err := enforceNotNullHousehold(ctx, conn); err != nil {
			return err
		}
		return seedInitialUsers(ctx, conn, id, l.seed)
	})
	if err != nil {
		return "", fmt.Errorf("schema initialization failed: %w", err)
	}

	slog.Info("schema initialized", "default_household", defaultID)
	return defaultID, nil
}

// tableSpec carries the canonical definition of one table: the DDL template
// (table name substituted in, so the same text serves both initial creation
// and the not-null rebuild) and the full column list for rebuild copies.
type tableSpec struct {
	name    string
	ddl     string
	columns []string
}

var schemaTables = []tableSpec{
	{
		name: "households",
		ddl: `CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		columns: []string{"id", "name", "slug", "created_at", "updated_at"},
	},
	{
		name: "users",
		ddl: `CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			household_id TEXT NOT NULL REFERENCES households(id) ON DELETE RESTRICT ON UPDATE CASCADE,
			username TEXT NOT NULL COLLATE NOCASE UNIQUE,
			password_hash TEXT NOT NULL,
			is_admin INTEGER NOT NULL DEFAULT 0,
			last_login_at DATETIME,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		columns: []string{"id", "household_id", "username", "password_hash", "is_admin", "last_login_at", "created_at", "updated_at"},
	},
	{
		name: "sections",
		ddl: `CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			household_id TEXT NOT NULL REFERENCES households(id) ON DELETE CASCADE ON UPDATE CASCADE,
			name TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		columns: []string{"id", "household_id", "name", "role", "created_at", "updated_at"},
	},
	{
		name: "categories",
		ddl: `CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			household_id TEXT NOT NULL REFERENCES households(id) ON DELETE CASCADE ON UPDATE CASCADE,
			section_id TEXT NOT NULL REFERENCES sections(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		columns: []string{"id", "household_id", "section_id", "name", "role", "created_at", "updated_at"},
	},
	{
		name: "entries",
		ddl: `CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			household_id TEXT NOT NULL REFERENCES households(id) ON DELETE CASCADE ON UPDATE CASCADE,
			category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
			period TEXT,
			actual REAL NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		columns: []string{"id", "household_id", "category_id", "period", "actual", "created_at", "updated_at"},
	},
}

func createTables(ctx context.Context, conn *sql.Conn) error {
	for _, spec := range schemaTables {
		if _, err := conn.ExecContext(ctx, fmt.Sprintf(spec.ddl, spec.name)); err != nil {
			if isDuplicateObjectErr(err) {
				continue
			}
			return fmt.Errorf("failed to create table %s: %w", spec.name, err)
		}
	}
	return nil
}

// addMissingColumns upgrades legacy single-tenant tables in place. Purely
// additive: a column that already exists is success.
func addMissingColumns(ctx context.Context, conn *sql.Conn) error {
	statements := []string{
		`ALTER TABLE users ADD COLUMN household_id TEXT`,
		`ALTER TABLE users ADD COLUMN is_admin INTEGER NOT NULL DEFAULT 0`,
		`ALTER TABLE users ADD COLUMN last_login_at DATETIME`,
		`ALTER TABLE sections ADD COLUMN household_id TEXT`,
		`ALTER TABLE sections ADD COLUMN role TEXT NOT NULL DEFAULT ''`,
		`ALTER TABLE categories ADD COLUMN household_id TEXT`,
		`ALTER TABLE categories ADD COLUMN role TEXT NOT NULL DEFAULT ''`,
		`ALTER TABLE entries ADD COLUMN household_id TEXT`,
	}

	for _, stmt := range statements {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			if isDuplicateObjectErr(err) {
				continue
			}
			return fmt.Errorf("failed to add column: %w", err)
		}
	}
	return nil
}

var indexStatements = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_households_slug ON households(slug)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username ON users(username COLLATE NOCASE)`,
	`CREATE INDEX IF NOT EXISTS idx_users_household ON users(household_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sections_household ON sections(household_id)`,
	`CREATE INDEX IF NOT EXISTS idx_categories_household ON categories(household_id)`,
	`CREATE INDEX IF NOT EXISTS idx_categories_section ON categories(section_id)`,
	`CREATE INDEX IF NOT EXISTS idx_entries_household ON entries(household_id)`,
	`CREATE INDEX IF NOT EXISTS idx_entries_category ON entries(category_id)`,
}

// ensureIndexes adds supporting indexes and uniqueness constraints. SQLite
// cannot attach foreign keys to an existing table, so for legacy tables the
// household foreign keys arrive with the not-null rebuild instead.
func ensureIndexes(ctx context.Context, conn *sql.Conn) error {
	for _, stmt := range indexStatements {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			if isDuplicateObjectErr(err) {
				continue
			}
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

func ensureDefaultHousehold(ctx context.Context, conn *sql.Conn, name, slug string) (string, error) {
	var id string
	err := conn.QueryRowContext(ctx,
		`SELECT id FROM households WHERE slug = ? LIMIT 1`, slug,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("failed to look up default household: %w", err)
	}

	id = uuid.New().String()
	now := time.Now().UTC()
	_, err = conn.ExecContext(ctx,
		`INSERT INTO households (id, name, slug, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, name, slug, now, now,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create default household: %w", err)
	}

	slog.Info("provisioned default household", "slug", slug, "id", id)
	return id, nil
}

// ensureSummarySection provisions the reserved summary section in the
// default household. It carries a fixed id so reports can recognize it
// without a name lookup.
func ensureSummarySection(ctx context.Context, conn *sql.Conn, defaultID string) error {
	now := time.Now().UTC()
	_, err := conn.ExecContext(ctx,
		`INSERT INTO sections (id, household_id, name, role, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		model.SummarySectionID, defaultID, "Resumo", string(model.RoleIncome), now, now,
	)
	if err != nil {
		if isDuplicateObjectErr(err) {
			return nil
		}
		return fmt.Errorf("failed to create summary section: %w", err)
	}

	slog.Info("provisioned summary section", "id", model.SummarySectionID)
	return nil
}

func backfillTenantData(ctx context.Context, conn *sql.Conn, defaultID string) error {
	statements := []string{
		`UPDATE users SET household_id = ? WHERE household_id IS NULL OR household_id = ''`,
		`UPDATE sections SET household_id = ? WHERE household_id IS NULL OR household_id = ''`,
		`UPDATE categories SET household_id = ? WHERE household_id IS NULL OR household_id = ''`,
		`UPDATE entries SET household_id = ? WHERE household_id IS NULL OR household_id = ''`,
	}

	for _, stmt := range statements {
		res, err := conn.ExecContext(ctx, stmt, defaultID)
		if err != nil {
			return fmt.Errorf("failed to backfill household id: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			slog.Info("backfilled rows to default household", "rows", n)
		}
	}

	if _, err := conn.ExecContext(ctx, `UPDATE users SET is_admin = 0 WHERE is_admin IS NULL`); err != nil {
		return fmt.Errorf("failed to backfill is_admin: %w", err)
	}
	return nil
}

// enforceNotNullHousehold tightens household_id to NOT NULL. SQLite cannot
// alter a column in place, so a table whose household_id is still nullable
// is rebuilt with the canonical definition: create new, copy, drop, rename,
// reindex. A missing table or column skips the step without error.
func enforceNotNullHousehold(ctx context.Context, conn *sql.Conn) error {
	for _, spec := range schemaTables[1:] { // households has no household_id
		nullable, exists, err := householdColumnNullable(ctx, conn, spec.name)
		if err != nil {
			return err
		}
		if !exists || !nullable {
			continue
		}
		if err := rebuildTable(ctx, conn, spec); err != nil {
			return err
		}
	}

	// Rebuilds drop secondary indexes along with the old table.
	return ensureIndexes(ctx, conn)
}

func householdColumnNullable(ctx context.Context, conn *sql.Conn, table string) (nullable, exists bool, err error) {
	rows, err := conn.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s)`, table))
	if err != nil {
		if isMissingTableErr(err) {
			return false, false, nil
		}
		return false, false, fmt.Errorf("failed to inspect table %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			cid     int
			name    string
			colType string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return false, false, fmt.Errorf("failed to scan table info: %w", err)
		}
		if name == "household_id" {
			return notNull == 0, true, nil
		}
	}
	if err := rows.Err(); err != nil {
		return false, false, fmt.Errorf("error iterating table info: %w", err)
	}

	// Table absent or column absent: partial legacy schema, skip silently.
	return false, false, nil
}

func rebuildTable(ctx context.Context, conn *sql.Conn, spec tableSpec) error {
	// The copy shuffles parent tables out from under child rows; enforcement
	// resumes once the rename is done.
	if _, err := conn.ExecContext(ctx, `PRAGMA foreign_keys = OFF`); err != nil {
		return fmt.Errorf("failed to suspend foreign keys: %w", err)
	}
	defer func() {
		_, _ = conn.ExecContext(ctx, `PRAGMA foreign_keys = ON`)
	}()

	tmp := spec.name + "_new"
	cols := strings.Join(spec.columns, ", ")

	steps := []string{
		fmt.Sprintf(`DROP TABLE IF EXISTS %s`, tmp),
		fmt.Sprintf(spec.ddl, tmp),
		fmt.Sprintf(`INSERT INTO %s (%s) SELECT %s FROM %s`, tmp, cols, cols, spec.name),
		fmt.Sprintf(`DROP TABLE %s`, spec.name),
		fmt.Sprintf(`ALTER TABLE %s RENAME TO %s`, tmp, spec.name),
	}

	for _, stmt := range steps {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to rebuild table %s: %w", spec.name, err)
		}
	}

	slog.Info("tightened household_id to NOT NULL", "table", spec.name)
	return nil
}

func seedInitialUsers(ctx context.Context, conn *sql.Conn, defaultID string, operator *SeedUser) error {
	var candidates []SeedUser
	if operator != nil && strings.TrimSpace(operator.Username) != "" &&
		(operator.Password != "" || operator.PasswordHash != "") {
		candidates = append(candidates, *operator)
	}
	for _, fallback := range fallbackSeedUsers {
		duplicate := false
		for _, existing := range candidates {
			if strings.EqualFold(existing.Username, fallback.Username) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			candidates = append(candidates, fallback)
		}
	}

	created := 0
	for _, candidate := range candidates {
		username := strings.TrimSpace(candidate.Username)
		if username == "" {
			continue
		}

		var existingID string
		err := conn.QueryRowContext(ctx,
			`SELECT id FROM users WHERE LOWER(username) = LOWER(?) LIMIT 1`, username,
		).Scan(&existingID)
		if err == nil {
			continue // existing users are never modified
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("failed to check for existing user %q: %w", username, err)
		}

		hash := candidate.PasswordHash
		if hash == "" {
			hash, err = auth.HashPassword(candidate.Password)
			if err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		_, err = conn.ExecContext(ctx,
			`INSERT INTO users (id, household_id, username, password_hash, is_admin, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), defaultID, username, hash, candidate.IsAdmin, now, now,
		)
		if err != nil {
			if isDuplicateObjectErr(err) {
				continue
			}
			return fmt.Errorf("failed to seed user %q: %w", username, err)
		}
		created++
	}

	if created > 0 {
		slog.Warn("seeded initial accounts into the default tenant; rotate their passwords",
			"created", created)
	}
	return nil
}

// Storage-error classification for the idempotent bring-up steps. Everywhere
// else these conditions propagate.

func isDuplicateObjectErr(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already exists") ||
		strings.Contains(msg, "duplicate column name") ||
		strings.Contains(msg, "unique constraint failed")
}

func isMissingTableErr(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "no such table")
}

func isMissingColumnErr(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "no such column")
}
