// Package storage provides the data persistence layer for the books application.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Default tenant identity. The default tenant always exists after
// initialization and can never be deleted.
const (
	DefaultTenantName = "Familia Principal"
	DefaultTenantSlug = "familia-principal"
)

const defaultMaxConns = 10

// Options configures a SQLiteStorage instance.
type Options struct {
	// MaxConns bounds the connection pool. Zero means the default of 10.
	MaxConns int
	// DefaultTenantName overrides the name given to the default tenant
	// when it is first provisioned.
	DefaultTenantName string
	// DefaultTenantSlug overrides the reserved slug of the default tenant.
	DefaultTenantSlug string
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db          *sql.DB
	dbPath      string
	defaultName string
	defaultSlug string
}

// NewSQLiteStorage creates a new SQLite storage instance with a bounded
// connection pool. The schema is not touched until a Lifecycle runs.
func NewSQLiteStorage(dbPath string, opts Options) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	if opts.MaxConns <= 0 {
		opts.MaxConns = defaultMaxConns
	}
	if opts.DefaultTenantName == "" {
		opts.DefaultTenantName = DefaultTenantName
	}
	if opts.DefaultTenantSlug == "" {
		opts.DefaultTenantSlug = DefaultTenantSlug
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(opts.MaxConns)
	db.SetMaxIdleConns(opts.MaxConns)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:          db,
		dbPath:      dbPath,
		defaultName: opts.DefaultTenantName,
		defaultSlug: opts.DefaultTenantSlug,
	}, nil
}

// Close closes the database connection pool.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// DefaultSlug returns the reserved slug of the default tenant.
func (s *SQLiteStorage) DefaultSlug() string {
	return s.defaultSlug
}

// withConn checks out a single pooled connection, runs fn on it, and releases
// the connection on every exit path. Multi-statement sequences that must see
// a consistent view (slug probe then insert, usage count then delete) run
// through here so every statement hits the same connection.
func (s *SQLiteStorage) withConn(ctx context.Context, fn func(*sql.Conn) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	return fn(conn)
}
