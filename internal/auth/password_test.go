package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/model"
)

type stubStore struct {
	user       *model.User
	loginCount int
}

func (s *stubStore) FindUserByUsername(_ context.Context, username string) (*model.User, error) {
	if s.user == nil || s.user.Username != username {
		return nil, common.NewNotFoundError("USER_NOT_FOUND", "no such user")
	}
	return s.user, nil
}

func (s *stubStore) RecordUserLogin(_ context.Context, _ string) error {
	s.loginCount++
	return nil
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("segredo")
	require.NoError(t, err)
	assert.NotEqual(t, "segredo", hash)

	assert.True(t, CheckPassword(hash, "segredo"))
	assert.False(t, CheckPassword(hash, "errado"))
	assert.False(t, CheckPassword("not-a-hash", "segredo"))
}

func TestAuthenticate(t *testing.T) {
	hash, err := HashPassword("segredo")
	require.NoError(t, err)

	store := &stubStore{user: &model.User{ID: "u1", Username: "maria", PasswordHash: hash, HouseholdID: "h1"}}

	user, err := Authenticate(context.Background(), store, "maria", "segredo")
	require.NoError(t, err)
	assert.Equal(t, "h1", user.HouseholdID)
	assert.Equal(t, 1, store.loginCount)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	hash, err := HashPassword("segredo")
	require.NoError(t, err)

	store := &stubStore{user: &model.User{ID: "u1", Username: "maria", PasswordHash: hash}}

	_, err = Authenticate(context.Background(), store, "maria", "errado")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Zero(t, store.loginCount)
}

func TestAuthenticateUnknownUser(t *testing.T) {
	store := &stubStore{}

	// Unknown usernames surface the same error as wrong passwords.
	_, err := Authenticate(context.Background(), store, "ghost", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
