// Package auth provides password hashing and credential verification.
// Session handling and request authentication live outside this module;
// callers only need a verified user's household id.
package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/model"
)

// ErrInvalidCredentials is returned when the username or password is wrong.
// The same error covers both cases so callers cannot probe for usernames.
var ErrInvalidCredentials = errors.New("invalid username or password")

// UserStore is the slice of storage the authenticator needs.
type UserStore interface {
	FindUserByUsername(ctx context.Context, username string) (*model.User, error)
	RecordUserLogin(ctx context.Context, userID string) error
}

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword reports whether a plaintext password matches a bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Authenticate verifies a username/password pair against the store and
// records the login timestamp on success.
func Authenticate(ctx context.Context, store UserStore, username, password string) (*model.User, error) {
	user, err := store.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || !CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	if err := store.RecordUserLogin(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}

	return user, nil
}
