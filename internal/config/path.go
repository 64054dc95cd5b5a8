// Package config provides configuration utilities for the application.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands ~ and environment variables in a file path.
// It handles both ~ for home directory and $VAR style environment variables.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}

// DefaultDatabasePath returns the database location used when none is
// configured: ~/.local/share/books/books.db, falling back to the working
// directory when the home directory cannot be resolved.
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "books.db"
	}
	return filepath.Join(home, ".local", "share", "books", "books.db")
}
