package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/model"
)

// ListSections returns all of a household's sections ordered by name.
func (s *SQLiteStorage) ListSections(ctx context.Context, householdID string) ([]model.Section, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, household_id, name, role, created_at, updated_at
		 FROM sections
		 WHERE household_id = ?
		 ORDER BY name`, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sections []model.Section
	for rows.Next() {
		var sec model.Section
		if err := rows.Scan(&sec.ID, &sec.HouseholdID, &sec.Name, &sec.Role, &sec.CreatedAt, &sec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan section: %w", err)
		}
		sections = append(sections, sec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sections: %w", err)
	}

	slog.Debug("retrieved sections", "household", householdID, "count", len(sections))
	return sections, nil
}

// CreateSection creates a section with a role derived from its name.
func (s *SQLiteStorage) CreateSection(ctx context.Context, householdID, name string) (string, error) {
	return s.CreateSectionWithRole(ctx, householdID, name, model.RoleForName(name))
}

// CreateSectionWithRole creates a section with an explicit role.
func (s *SQLiteStorage) CreateSectionWithRole(ctx context.Context, householdID, name string, role model.Role) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return "", common.NewValidationError("SECTION_NAME_REQUIRED", "section name is required")
	}
	if !model.ValidRole(role) {
		return "", common.NewValidationError("SECTION_ROLE_INVALID", fmt.Sprintf("unknown role %q", role))
	}

	id := uuid.New().String()
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sections (id, household_id, name, role, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, householdID, name, string(role), now, now,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert section: %w", err)
	}

	slog.Info("created section", "id", id, "household", householdID, "role", role)
	return id, nil
}

// UpdateSection renames a section. The row is matched by id and household id
// together; a wrong tenant matches nothing and the call is a silent no-op.
func (s *SQLiteStorage) UpdateSection(ctx context.Context, householdID, sectionID, name string) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return "", common.NewValidationError("SECTION_NAME_REQUIRED", "section name is required")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE sections SET name = ?, updated_at = ? WHERE id = ? AND household_id = ?`,
		name, time.Now().UTC(), sectionID, householdID,
	)
	if err != nil {
		return "", fmt.Errorf("failed to update section: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		slog.Debug("section update matched no rows", "id", sectionID, "household", householdID)
	}
	return sectionID, nil
}

// UpdateSectionRole sets an explicit role on a section, same tenant scoping
// as UpdateSection.
func (s *SQLiteStorage) UpdateSectionRole(ctx context.Context, householdID, sectionID string, role model.Role) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if !model.ValidRole(role) {
		return common.NewValidationError("SECTION_ROLE_INVALID", fmt.Sprintf("unknown role %q", role))
	}

	_, err := s.db.ExecContext(ctx,
		`UPDATE sections SET role = ?, updated_at = ? WHERE id = ? AND household_id = ?`,
		string(role), time.Now().UTC(), sectionID, householdID,
	)
	if err != nil {
		return fmt.Errorf("failed to update section role: %w", err)
	}
	return nil
}

// DeleteSection removes a section and, through the schema's cascades, its
// categories and their entries. Wrong tenant matches nothing, silently.
func (s *SQLiteStorage) DeleteSection(ctx context.Context, householdID, sectionID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM sections WHERE id = ? AND household_id = ?`,
		sectionID, householdID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete section: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n > 0 {
		slog.Info("deleted section", "id", sectionID, "household", householdID)
	}
	return nil
}
