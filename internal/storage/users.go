package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/the-books-must-balance/internal/auth"
	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/model"
)

// FindUserByUsername looks a user up by username, case-insensitively.
func (s *SQLiteStorage) FindUserByUsername(ctx context.Context, username string) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(username, "username"); err != nil {
		return nil, err
	}

	user, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, household_id, username, password_hash, is_admin, last_login_at, created_at, updated_at
		 FROM users
		 WHERE LOWER(username) = LOWER(?)`, username))
	if err == sql.ErrNoRows {
		return nil, common.NewNotFoundError("USER_NOT_FOUND", fmt.Sprintf("user %q not found", username))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

// FindUserByID looks a user up by id.
func (s *SQLiteStorage) FindUserByID(ctx context.Context, id string) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	user, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, household_id, username, password_hash, is_admin, last_login_at, created_at, updated_at
		 FROM users
		 WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, common.NewNotFoundError("USER_NOT_FOUND", fmt.Sprintf("user %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

// RecordUserLogin stamps last_login_at for a successful authentication.
func (s *SQLiteStorage) RecordUserLogin(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET last_login_at = ? WHERE id = ?`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to record login: %w", err)
	}
	return nil
}

// ListUsersSummary returns every account joined with its household, ordered
// by username. The household columns go empty if the join finds nothing,
// which only happens on rows predating the tenant backfill.
func (s *SQLiteStorage) ListUsersSummary(ctx context.Context) ([]model.UserSummary, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT u.id, u.username, u.household_id, COALESCE(h.name, ''), COALESCE(h.slug, ''),
		        u.is_admin, u.last_login_at, u.created_at
		 FROM users u
		 LEFT JOIN households h ON h.id = u.household_id
		 ORDER BY u.username`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var summaries []model.UserSummary
	for rows.Next() {
		var sum model.UserSummary
		var lastLogin sql.NullTime
		if err := rows.Scan(&sum.ID, &sum.Username, &sum.HouseholdID, &sum.HouseholdName, &sum.HouseholdSlug,
			&sum.IsAdmin, &lastLogin, &sum.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		if lastLogin.Valid {
			t := lastLogin.Time
			sum.LastLoginAt = &t
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return summaries, nil
}

// CreateUserAccount creates a user in a household with a bcrypt-hashed
// password. Username collisions surface as conflicts, not raw SQL errors.
func (s *SQLiteStorage) CreateUserAccount(ctx context.Context, householdID, username, password string, isAdmin bool) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}

	username = strings.TrimSpace(username)
	if username == "" {
		return "", common.NewValidationError("USER_USERNAME_REQUIRED", "username is required")
	}
	if password == "" {
		return "", common.NewValidationError("USER_PASSWORD_REQUIRED", "password is required")
	}
	if householdID == "" {
		return "", common.NewValidationError("USER_HOUSEHOLD_REQUIRED", "household is required")
	}

	if _, err := s.GetHousehold(ctx, householdID); err != nil {
		return "", err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	id := uuid.New().String()
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, household_id, username, password_hash, is_admin, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, householdID, username, hash, isAdmin, now, now,
	)
	if err != nil {
		if isDuplicateObjectErr(err) {
			return "", common.NewConflictError("USER_USERNAME_TAKEN",
				fmt.Sprintf("username %q is already taken", username))
		}
		return "", fmt.Errorf("failed to insert user: %w", err)
	}

	slog.Info("created user", "id", id, "username", username, "household", householdID, "admin", isAdmin)
	return id, nil
}

// UpdateUserPassword replaces a user's password hash.
func (s *SQLiteStorage) UpdateUserPassword(ctx context.Context, id, password string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if password == "" {
		return common.NewValidationError("USER_PASSWORD_REQUIRED", "password is required")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		hash, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.NewNotFoundError("USER_NOT_FOUND", fmt.Sprintf("user %s not found", id))
	}

	slog.Info("updated user password", "id", id)
	return nil
}

// ReassignUserHousehold moves a user to another household.
func (s *SQLiteStorage) ReassignUserHousehold(ctx context.Context, id, householdID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if householdID == "" {
		return common.NewValidationError("USER_HOUSEHOLD_REQUIRED", "household is required")
	}

	if _, err := s.GetHousehold(ctx, householdID); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET household_id = ?, updated_at = ? WHERE id = ?`,
		householdID, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to reassign user: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.NewNotFoundError("USER_NOT_FOUND", fmt.Sprintf("user %s not found", id))
	}

	slog.Info("reassigned user", "id", id, "household", householdID)
	return nil
}

func scanUser(row *sql.Row) (*model.User, error) {
	var user model.User
	var lastLogin sql.NullTime
	err := row.Scan(&user.ID, &user.HouseholdID, &user.Username, &user.PasswordHash,
		&user.IsAdmin, &lastLogin, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		user.LastLoginAt = &t
	}
	return &user, nil
}
