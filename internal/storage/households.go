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
	"github.com/Veraticus/the-books-must-balance/internal/slug"
)

// maxSlugAttempts bounds the uniqueness probe before giving up.
const maxSlugAttempts = 500

// CreateHousehold registers a new tenant. The slug is derived from slugHint
// when given, otherwise from the name, and made unique by probing numeric
// suffixes. The probe and the insert share one pooled connection.
func (s *SQLiteStorage) CreateHousehold(ctx context.Context, name, slugHint string) (*model.Household, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.NewValidationError("HOUSEHOLD_NAME_REQUIRED", "household name is required")
	}

	base := slugHint
	if strings.TrimSpace(base) == "" {
		base = name
	}

	var household *model.Household
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		unique, err := ensureUniqueSlug(ctx, conn, slug.Make(base), "")
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		h := &model.Household{
			ID:        uuid.New().String(),
			Name:      name,
			Slug:      unique,
			CreatedAt: now,
			UpdatedAt: now,
		}

		_, err = conn.ExecContext(ctx,
			`INSERT INTO households (id, name, slug, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			h.ID, h.Name, h.Slug, h.CreatedAt, h.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert household: %w", err)
		}

		household = h
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("created household", "id", household.ID, "slug", household.Slug)
	return household, nil
}

// UpdateHousehold applies a partial update. Nil fields stay untouched; a
// non-empty slug is re-resolved for uniqueness, excluding the household's
// own id from the collision check.
func (s *SQLiteStorage) UpdateHousehold(ctx context.Context, id string, update model.HouseholdUpdate) (*model.Household, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var household *model.Household
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		existing, err := getHouseholdConn(ctx, conn, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return common.NewNotFoundError("HOUSEHOLD_NOT_FOUND", fmt.Sprintf("household %s does not exist", id))
		}

		var (
			sets []string
			args []any
		)

		if update.Name != nil {
			if name := strings.TrimSpace(*update.Name); name != "" {
				sets = append(sets, "name = ?")
				args = append(args, name)
			}
		}

		if update.Slug != nil && strings.TrimSpace(*update.Slug) != "" {
			unique, err := ensureUniqueSlug(ctx, conn, slug.Make(*update.Slug), id)
			if err != nil {
				return err
			}
			sets = append(sets, "slug = ?")
			args = append(args, unique)
		}

		if len(sets) == 0 {
			household = existing
			return nil
		}

		sets = append(sets, "updated_at = ?")
		args = append(args, time.Now().UTC(), id)

		_, err = conn.ExecContext(ctx,
			fmt.Sprintf(`UPDATE households SET %s WHERE id = ?`, strings.Join(sets, ", ")),
			args...,
		)
		if err != nil {
			return fmt.Errorf("failed to update household: %w", err)
		}

		household, err = getHouseholdConn(ctx, conn, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return household, nil
}

// DeleteHousehold removes a tenant. The default tenant can never be deleted,
// and a household that still owns users, sections, categories, or entries is
// refused with the per-table counts attached for diagnostics. The usage count
// and the delete share one pooled connection.
func (s *SQLiteStorage) DeleteHousehold(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	return s.withConn(ctx, func(conn *sql.Conn) error {
		var householdSlug string
		err := conn.QueryRowContext(ctx,
			`SELECT slug FROM households WHERE id = ? LIMIT 1`, id,
		).Scan(&householdSlug)
		if err == sql.ErrNoRows {
			return common.NewNotFoundError("HOUSEHOLD_NOT_FOUND", fmt.Sprintf("household %s does not exist", id))
		}
		if err != nil {
			return fmt.Errorf("failed to look up household: %w", err)
		}

		if householdSlug == s.defaultSlug {
			return common.NewConflictError("HOUSEHOLD_DELETE_FORBIDDEN", "the default tenant cannot be deleted")
		}

		usage, err := householdUsage(ctx, conn, id)
		if err != nil {
			return err
		}
		if !usage.Empty() {
			return &common.ConflictError{
				Code:    "HOUSEHOLD_NOT_EMPTY",
				Message: "household still owns data",
				Usage:   &usage,
			}
		}

		if _, err := conn.ExecContext(ctx, `DELETE FROM households WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete household: %w", err)
		}

		slog.Info("deleted household", "id", id, "slug", householdSlug)
		return nil
	})
}

// GetHousehold looks up a household by id.
func (s *SQLiteStorage) GetHousehold(ctx context.Context, id string) (*model.Household, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var household *model.Household
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		var err error
		household, err = getHouseholdConn(ctx, conn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if household == nil {
		return nil, common.NewNotFoundError("HOUSEHOLD_NOT_FOUND", fmt.Sprintf("household %s does not exist", id))
	}
	return household, nil
}

// GetHouseholdBySlug looks up a household by its slug.
func (s *SQLiteStorage) GetHouseholdBySlug(ctx context.Context, householdSlug string) (*model.Household, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var h model.Household
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, slug, created_at, updated_at FROM households WHERE slug = ? LIMIT 1`,
		householdSlug,
	).Scan(&h.ID, &h.Name, &h.Slug, &h.CreatedAt, &h.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, common.NewNotFoundError("HOUSEHOLD_NOT_FOUND", fmt.Sprintf("no household with slug %q", householdSlug))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query household: %w", err)
	}
	return &h, nil
}

// ListHouseholds returns every tenant ordered by name.
func (s *SQLiteStorage) ListHouseholds(ctx context.Context) ([]model.Household, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, slug, created_at, updated_at FROM households ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query households: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var households []model.Household
	for rows.Next() {
		var h model.Household
		if err := rows.Scan(&h.ID, &h.Name, &h.Slug, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan household: %w", err)
		}
		households = append(households, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating households: %w", err)
	}

	slog.Debug("retrieved households", "count", len(households))
	return households, nil
}

func getHouseholdConn(ctx context.Context, conn *sql.Conn, id string) (*model.Household, error) {
	var h model.Household
	err := conn.QueryRowContext(ctx,
		`SELECT id, name, slug, created_at, updated_at FROM households WHERE id = ? LIMIT 1`, id,
	).Scan(&h.ID, &h.Name, &h.Slug, &h.CreatedAt, &h.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query household: %w", err)
	}
	return &h, nil
}

// ensureUniqueSlug probes candidate slugs (base, base-1, base-2, ...) until
// one is free, keeping every candidate within the slug length limit.
// excludeID drops the household's own row from the collision check on
// updates. The probe runs on the caller's connection so the following insert
// sees the same view.
func ensureUniqueSlug(ctx context.Context, conn *sql.Conn, base, excludeID string) (string, error) {
	safeBase := slug.Clamp(base)

	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		suffix := ""
		if attempt > 0 {
			suffix = fmt.Sprintf("-%d", attempt)
		}

		truncated := safeBase
		if limit := slug.MaxLength - len(suffix); len(truncated) > limit {
			truncated = truncated[:limit]
		}
		candidate := slug.Clamp(truncated + suffix)

		query := `SELECT id FROM households WHERE slug = ?`
		args := []any{candidate}
		if excludeID != "" {
			query += ` AND id <> ?`
			args = append(args, excludeID)
		}

		var id string
		err := conn.QueryRowContext(ctx, query+` LIMIT 1`, args...).Scan(&id)
		if err == sql.ErrNoRows {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to probe slug %q: %w", candidate, err)
		}
	}

	return "", common.NewConflictError("HOUSEHOLD_SLUG_COLLISION",
		fmt.Sprintf("could not find a free slug for %q after %d attempts", safeBase, maxSlugAttempts))
}

// HouseholdUsage counts the rows a household owns in each table.
func (s *SQLiteStorage) HouseholdUsage(ctx context.Context, id string) (model.HouseholdUsage, error) {
	if err := validateContext(ctx); err != nil {
		return model.HouseholdUsage{}, err
	}

	var usage model.HouseholdUsage
	err := s.withConn(ctx, func(conn *sql.Conn) error {
		var err error
		usage, err = householdUsage(ctx, conn, id)
		return err
	})
	return usage, err
}

func householdUsage(ctx context.Context, conn *sql.Conn, id string) (model.HouseholdUsage, error) {
	var usage model.HouseholdUsage
	counts := []struct {
		dest  *int
		table string
	}{
		{&usage.Users, "users"},
		{&usage.Sections, "sections"},
		{&usage.Categories, "categories"},
		{&usage.Entries, "entries"},
	}

	for _, c := range counts {
		query := fmt.Sprintf(`SELECT COUNT(1) FROM %s WHERE household_id = ?`, c.table)
		if err := conn.QueryRowContext(ctx, query, id).Scan(c.dest); err != nil {
			return usage, fmt.Errorf("failed to count %s: %w", c.table, err)
		}
	}
	return usage, nil
}
