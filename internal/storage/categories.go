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

// ListCategories returns all of a household's categories ordered by name.
func (s *SQLiteStorage) ListCategories(ctx context.Context, householdID string) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, household_id, section_id, name, role, created_at, updated_at
		 FROM categories
		 WHERE household_id = ?
		 ORDER BY name`, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		var cat model.Category
		if err := rows.Scan(&cat.ID, &cat.HouseholdID, &cat.SectionID, &cat.Name, &cat.Role, &cat.CreatedAt, &cat.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "household", householdID, "count", len(categories))
	return categories, nil
}

// CreateCategory creates a category with a role derived from its name.
// A name matching no keyword defaults to expense.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, householdID, sectionID, name string) (string, error) {
	role := model.RoleForName(name)
	if role == model.RoleNeutral {
		role = model.RoleExpense
	}
	return s.CreateCategoryWithRole(ctx, householdID, sectionID, name, role)
}

// CreateCategoryWithRole creates a category with an explicit role. The
// section must exist in the same household.
func (s *SQLiteStorage) CreateCategoryWithRole(ctx context.Context, householdID, sectionID, name string, role model.Role) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return "", common.NewValidationError("CATEGORY_NAME_REQUIRED", "category name is required")
	}
	if sectionID == "" {
		return "", common.NewValidationError("CATEGORY_SECTION_REQUIRED", "category section is required")
	}
	if !model.ValidRole(role) {
		return "", common.NewValidationError("CATEGORY_ROLE_INVALID", fmt.Sprintf("unknown role %q", role))
	}

	if err := s.sectionExists(ctx, householdID, sectionID); err != nil {
		return "", err
	}

	id := uuid.New().String()
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, household_id, section_id, name, role, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, householdID, sectionID, name, string(role), now, now,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert category: %w", err)
	}

	slog.Info("created category", "id", id, "section", sectionID, "role", role)
	return id, nil
}

// UpdateCategory renames a category and/or moves it to another section of
// the same household. Wrong tenant matches nothing, silently.
func (s *SQLiteStorage) UpdateCategory(ctx context.Context, householdID, categoryID, sectionID, name string) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return "", common.NewValidationError("CATEGORY_NAME_REQUIRED", "category name is required")
	}
	if sectionID == "" {
		return "", common.NewValidationError("CATEGORY_SECTION_REQUIRED", "category section is required")
	}

	if err := s.sectionExists(ctx, householdID, sectionID); err != nil {
		return "", err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, section_id = ?, updated_at = ? WHERE id = ? AND household_id = ?`,
		name, sectionID, time.Now().UTC(), categoryID, householdID,
	)
	if err != nil {
		return "", fmt.Errorf("failed to update category: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		slog.Debug("category update matched no rows", "id", categoryID, "household", householdID)
	}
	return categoryID, nil
}

// UpdateCategoryRole sets an explicit role on a category, same tenant
// scoping as UpdateCategory.
func (s *SQLiteStorage) UpdateCategoryRole(ctx context.Context, householdID, categoryID string, role model.Role) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if !model.ValidRole(role) {
		return common.NewValidationError("CATEGORY_ROLE_INVALID", fmt.Sprintf("unknown role %q", role))
	}

	_, err := s.db.ExecContext(ctx,
		`UPDATE categories SET role = ?, updated_at = ? WHERE id = ? AND household_id = ?`,
		string(role), time.Now().UTC(), categoryID, householdID,
	)
	if err != nil {
		return fmt.Errorf("failed to update category role: %w", err)
	}
	return nil
}

// DeleteCategory removes a category and, through the schema's cascades, its
// entries. Wrong tenant matches nothing, silently.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, householdID, categoryID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ? AND household_id = ?`,
		categoryID, householdID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n > 0 {
		slog.Info("deleted category", "id", categoryID, "household", householdID)
	}
	return nil
}

// sectionExists rejects references to sections outside the household.
func (s *SQLiteStorage) sectionExists(ctx context.Context, householdID, sectionID string) error {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM sections WHERE id = ? AND household_id = ? LIMIT 1`,
		sectionID, householdID,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return common.NewValidationError("CATEGORY_SECTION_NOT_FOUND",
			fmt.Sprintf("section %s does not exist in this household", sectionID))
	}
	if err != nil {
		return fmt.Errorf("failed to check section: %w", err)
	}
	return nil
}
