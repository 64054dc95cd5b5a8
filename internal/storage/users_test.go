package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/the-books-must-balance/internal/auth"
	"github.com/Veraticus/the-books-must-balance/internal/common"
)

func TestCreateUserAccount(t *testing.T) {
	store, defaultID := newTestStorage(t)
	ctx := context.Background()

	id, err := store.CreateUserAccount(ctx, defaultID, "maria", "segredo", false)
	require.NoError(t, err)

	user, err := store.FindUserByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "maria", user.Username)
	assert.Equal(t, defaultID, user.HouseholdID)
	assert.False(t, user.IsAdmin)
	assert.True(t, auth.CheckPassword(user.PasswordHash, "segredo"))
	assert.Nil(t, user.LastLoginAt)
}

func TestCreateUserAccountValidation(t *testing.T) {
	store, defaultID := newTestStorage(t)
	ctx := context.Background()

	_, err := store.CreateUserAccount(ctx, defaultID, "  ", "pw", false)
	assert.Equal(t, "USER_USERNAME_REQUIRED", common.ErrorCode(err))

	_, err = store.CreateUserAccount(ctx, defaultID, "maria", "", false)
	assert.Equal(t, "USER_PASSWORD_REQUIRED", common.ErrorCode(err))

	_, err = store.CreateUserAccount(ctx, "", "maria", "pw", false)
	assert.Equal(t, "USER_HOUSEHOLD_REQUIRED", common.ErrorCode(err))

	_, err = store.CreateUserAccount(ctx, "no-such-household", "maria", "pw", false)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestUsernameUniqueCaseInsensitive(t *testing.T) {
	store, defaultID := newTestStorage(t)
	ctx := context.Background()

	_, err := store.CreateUserAccount(ctx, defaultID, "Maria", "pw", false)
	require.NoError(t, err)

	_, err = store.CreateUserAccount(ctx, defaultID, "maria", "pw", false)
	require.Error(t, err)
	assert.Equal(t, "USER_USERNAME_TAKEN", common.ErrorCode(err))

	user, err := store.FindUserByUsername(ctx, "MARIA")
	require.NoError(t, err)
	assert.Equal(t, "Maria", user.Username)
}

func TestRecordUserLogin(t *testing.T) {
	store, defaultID := newTestStorage(t)
	ctx := context.Background()

	id, err := store.CreateUserAccount(ctx, defaultID, "maria", "pw", false)
	require.NoError(t, err)

	require.NoError(t, store.RecordUserLogin(ctx, id))

	user, err := store.FindUserByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, user.LastLoginAt)
}

func TestUpdateUserPassword(t *testing.T) {
	store, defaultID := newTestStorage(t)
	ctx := context.Background()

	id, err := store.CreateUserAccount(ctx, defaultID, "maria", "velha", false)
	require.NoError(t, err)

	require.NoError(t, store.UpdateUserPassword(ctx, id, "nova"))

	user, err := store.FindUserByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(user.PasswordHash, "nova"))
	assert.False(t, auth.CheckPassword(user.PasswordHash, "velha"))

	err = store.UpdateUserPassword(ctx, "no-such-user", "pw")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestReassignUserHousehold(t *testing.T) {
	store, defaultID := newTestStorage(t)
	ctx := context.Background()

	other, err := store.CreateHousehold(ctx, "Outra", "")
	require.NoError(t, err)

	id, err := store.CreateUserAccount(ctx, defaultID, "maria", "pw", false)
	require.NoError(t, err)

	require.NoError(t, store.ReassignUserHousehold(ctx, id, other.ID))

	user, err := store.FindUserByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, other.ID, user.HouseholdID)

	err = store.ReassignUserHousehold(ctx, id, "no-such-household")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestListUsersSummary(t *testing.T) {
	store, defaultID := newTestStorage(t)
	ctx := context.Background()

	_, err := store.CreateUserAccount(ctx, defaultID, "ze", "pw", true)
	require.NoError(t, err)
	_, err = store.CreateUserAccount(ctx, defaultID, "ana", "pw", false)
	require.NoError(t, err)

	users, err := store.ListUsersSummary(ctx)
	require.NoError(t, err)

	// Ordered by username; fallback accounts from initialization are
	// present too.
	var names []string
	for _, u := range users {
		names = append(names, u.Username)
		assert.Equal(t, DefaultTenantName, u.HouseholdName)
		assert.Equal(t, DefaultTenantSlug, u.HouseholdSlug)
	}
	assert.Equal(t, []string{"admin", "ana", "familia", "ze"}, names)
}
