package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/model"
)

func TestCreateHouseholdSlugSequence(t *testing.T) {
	store, _ := newTestStorage(t)
	ctx := context.Background()

	var slugs []string
	for i := 0; i < 3; i++ {
		hh, err := store.CreateHousehold(ctx, "Casa", "")
		require.NoError(t, err)
		slugs = append(slugs, hh.Slug)
	}

	assert.Equal(t, []string{"casa", "casa-1", "casa-2"}, slugs)
}

func TestCreateHouseholdValidation(t *testing.T) {
	store, _ := newTestStorage(t)
	ctx := context.Background()

	_, err := store.CreateHousehold(ctx, "   ", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrValidation))
	assert.Equal(t, "HOUSEHOLD_NAME_REQUIRED", common.ErrorCode(err))
}

func TestCreateHouseholdSlugHint(t *testing.T) {
	store, _ := newTestStorage(t)
	ctx := context.Background()

	hh, err := store.CreateHousehold(ctx, "Casa de Praia", "praia")
	require.NoError(t, err)
	assert.Equal(t, "praia", hh.Slug)

	// Same hint again gets a suffix.
	hh2, err := store.CreateHousehold(ctx, "Outra Casa", "praia")
	require.NoError(t, err)
	assert.Equal(t, "praia-1", hh2.Slug)
}

func TestUpdateHouseholdPartial(t *testing.T) {
	store, _ := newTestStorage(t)
	ctx := context.Background()

	hh, err := store.CreateHousehold(ctx, "Casa", "")
	require.NoError(t, err)

	name := "Casa Nova"
	updated, err := store.UpdateHousehold(ctx, hh.ID, model.HouseholdUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Casa Nova", updated.Name)
	assert.Equal(t, "casa", updated.Slug, "slug untouched on name-only update")

	slug := "casa-nova"
	updated, err = store.UpdateHousehold(ctx, hh.ID, model.HouseholdUpdate{Slug: &slug})
	require.NoError(t, err)
	assert.Equal(t, "casa-nova", updated.Slug)
	assert.Equal(t, "Casa Nova", updated.Name)
}

func TestUpdateHouseholdKeepsOwnSlug(t *testing.T) {
	store, _ := newTestStorage(t)
	ctx := context.Background()

	hh, err := store.CreateHousehold(ctx, "Casa", "")
	require.NoError(t, err)

	// Re-submitting its own slug must not suffix it.
	slug := "casa"
	updated, err := store.UpdateHousehold(ctx, hh.ID, model.HouseholdUpdate{Slug: &slug})
	require.NoError(t, err)
	assert.Equal(t, "casa", updated.Slug)
}

func TestUpdateHouseholdNotFound(t *testing.T) {
	store, _ := newTestStorage(t)
	ctx := context.Background()

	name := "Whatever"
	_, err := store.UpdateHousehold(ctx, "no-such-id", model.HouseholdUpdate{Name: &name})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestDeleteHouseholdDefaultForbidden(t *testing.T) {
	store, defaultID := newTestStorage(t)
	ctx := context.Background()

	err := store.DeleteHousehold(ctx, defaultID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrConflict))
	assert.Equal(t, "HOUSEHOLD_DELETE_FORBIDDEN", common.ErrorCode(err))
}

func TestDeleteHouseholdNotEmpty(t *testing.T) {
	store, _ := newTestStorage(t)
	ctx := context.Background()

	hh, err := store.CreateHousehold(ctx, "Casa", "")
	require.NoError(t, err)

	secID, err := store.CreateSection(ctx, hh.ID, "Moradia")
	require.NoError(t, err)
	catID, err := store.CreateCategory(ctx, hh.ID, secID, "Aluguel")
	require.NoError(t, err)
	_, err = store.CreateEntry(ctx, hh.ID, catID, 1500, "2024-01")
	require.NoError(t, err)
	_, err = store.CreateUserAccount(ctx, hh.ID, "morador", "pw", false)
	require.NoError(t, err)

	err = store.DeleteHousehold(ctx, hh.ID)
	require.Error(t, err)

	var conflict *common.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "HOUSEHOLD_NOT_EMPTY", conflict.Code)
	require.NotNil(t, conflict.Usage)
	assert.Equal(t, 1, conflict.Usage.Users)
	assert.Equal(t, 1, conflict.Usage.Sections)
	assert.Equal(t, 1, conflict.Usage.Categories)
	assert.Equal(t, 1, conflict.Usage.Entries)
}

func TestDeleteHouseholdEmpty(t *testing.T) {
	store, _ := newTestStorage(t)
	ctx := context.Background()

	hh, err := store.CreateHousehold(ctx, "Casa", "")
	require.NoError(t, err)

	require.NoError(t, store.DeleteHousehold(ctx, hh.ID))

	_, err = store.GetHousehold(ctx, hh.ID)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestGetHouseholdBySlug(t *testing.T) {
	store, _ := newTestStorage(t)
	ctx := context.Background()

	created, err := store.CreateHousehold(ctx, "Casa", "")
	require.NoError(t, err)

	hh, err := store.GetHouseholdBySlug(ctx, "casa")
	require.NoError(t, err)
	assert.Equal(t, created.ID, hh.ID)

	_, err = store.GetHouseholdBySlug(ctx, "nope")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestListHouseholdsOrderedByName(t *testing.T) {
	store, _ := newTestStorage(t)
	ctx := context.Background()

	for _, name := range []string{"Zeta", "Alpha", "Mid"} {
		_, err := store.CreateHousehold(ctx, name, "")
		require.NoError(t, err)
	}

	households, err := store.ListHouseholds(ctx)
	require.NoError(t, err)

	names := make([]string, 0, len(households))
	for _, hh := range households {
		names = append(names, hh.Name)
	}
	assert.Equal(t, []string{"Alpha", DefaultTenantName, "Mid", "Zeta"}, names)
}
