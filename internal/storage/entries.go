package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/model"
)

// ListEntries returns all of a household's entries. No ordering is imposed;
// callers that need presentation order sort the results themselves.
func (s *SQLiteStorage) ListEntries(ctx context.Context, householdID string) ([]model.Entry, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, household_id, category_id, period, actual, created_at, updated_at
		 FROM entries
		 WHERE household_id = ?`, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []model.Entry
	for rows.Next() {
		var entry model.Entry
		var period sql.NullString
		if err := rows.Scan(&entry.ID, &entry.HouseholdID, &entry.CategoryID, &period,
			&entry.Actual, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entry.Period = period.String
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}

	slog.Debug("retrieved entries", "household", householdID, "count", len(entries))
	return entries, nil
}

// CreateEntry records an amount against a category. The category must exist
// in the same household; an empty period is stored as NULL.
func (s *SQLiteStorage) CreateEntry(ctx context.Context, householdID, categoryID string, actual float64, period string) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}

	if categoryID == "" {
		return "", common.NewValidationError("ENTRY_CATEGORY_REQUIRED", "entry category is required")
	}
	if err := s.categoryExists(ctx, householdID, categoryID); err != nil {
		return "", err
	}

	id := uuid.New().String()
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO entries (id, household_id, category_id, period, actual, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, householdID, categoryID, nullablePeriod(period), model.Amount(actual), now, now,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert entry: %w", err)
	}

	slog.Info("created entry", "id", id, "category", categoryID, "actual", model.Amount(actual))
	return id, nil
}

// UpdateEntry rewrites an entry's amount and period. Wrong tenant matches
// nothing, silently.
func (s *SQLiteStorage) UpdateEntry(ctx context.Context, householdID, entryID string, actual float64, period string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if entryID == "" {
		return common.NewValidationError("ENTRY_ID_REQUIRED", "entry id is required")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE entries SET actual = ?, period = ?, updated_at = ?
		 WHERE id = ? AND household_id = ?`,
		model.Amount(actual), nullablePeriod(period), time.Now().UTC(), entryID, householdID,
	)
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		slog.Debug("entry update matched no rows", "id", entryID, "household", householdID)
	}
	return nil
}

// DeleteEntry removes an entry. Wrong tenant matches nothing, silently.
func (s *SQLiteStorage) DeleteEntry(ctx context.Context, householdID, entryID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM entries WHERE id = ? AND household_id = ?`,
		entryID, householdID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n > 0 {
		slog.Info("deleted entry", "id", entryID, "household", householdID)
	}
	return nil
}

func (s *SQLiteStorage) categoryExists(ctx context.Context, householdID, categoryID string) error {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM categories WHERE id = ? AND household_id = ? LIMIT 1`,
		categoryID, householdID,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return common.NewValidationError("ENTRY_CATEGORY_NOT_FOUND",
			fmt.Sprintf("category %s does not exist in this household", categoryID))
	}
	if err != nil {
		return fmt.Errorf("failed to check category: %w", err)
	}
	return nil
}

func nullablePeriod(period string) any {
	period = strings.TrimSpace(period)
	if period == "" {
		return nil
	}
	return period
}
