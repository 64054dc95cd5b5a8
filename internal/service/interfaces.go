// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/Veraticus/the-books-must-balance/internal/model"
)

// Storage defines the contract for our persistence layer. Every ledger
// operation is scoped to the active household id it is given.
type Storage interface {
	// Household operations
	CreateHousehold(ctx context.Context, name, slugHint string) (*model.Household, error)
	UpdateHousehold(ctx context.Context, id string, update model.HouseholdUpdate) (*model.Household, error)
	DeleteHousehold(ctx context.Context, id string) error
	GetHousehold(ctx context.Context, id string) (*model.Household, error)
	GetHouseholdBySlug(ctx context.Context, slug string) (*model.Household, error)
	ListHouseholds(ctx context.Context) ([]model.Household, error)
	HouseholdUsage(ctx context.Context, id string) (model.HouseholdUsage, error)

	// Section operations
	ListSections(ctx context.Context, householdID string) ([]model.Section, error)
	CreateSection(ctx context.Context, householdID, name string) (string, error)
	CreateSectionWithRole(ctx context.Context, householdID, name string, role model.Role) (string, error)
	UpdateSection(ctx context.Context, householdID, sectionID, name string) (string, error)
	UpdateSectionRole(ctx context.Context, householdID, sectionID string, role model.Role) error
	DeleteSection(ctx context.Context, householdID, sectionID string) error

	// Category operations
	ListCategories(ctx context.Context, householdID string) ([]model.Category, error)
	CreateCategory(ctx context.Context, householdID, sectionID, name string) (string, error)
	CreateCategoryWithRole(ctx context.Context, householdID, sectionID, name string, role model.Role) (string, error)
	UpdateCategory(ctx context.Context, householdID, categoryID, sectionID, name string) (string, error)
	UpdateCategoryRole(ctx context.Context, householdID, categoryID string, role model.Role) error
	DeleteCategory(ctx context.Context, householdID, categoryID string) error

	// Entry operations
	ListEntries(ctx context.Context, householdID string) ([]model.Entry, error)
	CreateEntry(ctx context.Context, householdID, categoryID string, actual float64, period string) (string, error)
	UpdateEntry(ctx context.Context, householdID, entryID string, actual float64, period string) error
	DeleteEntry(ctx context.Context, householdID, entryID string) error

	// User operations
	FindUserByUsername(ctx context.Context, username string) (*model.User, error)
	FindUserByID(ctx context.Context, id string) (*model.User, error)
	RecordUserLogin(ctx context.Context, id string) error
	ListUsersSummary(ctx context.Context) ([]model.UserSummary, error)
	CreateUserAccount(ctx context.Context, householdID, username, password string, isAdmin bool) (string, error)
	UpdateUserPassword(ctx context.Context, id, password string) error
	ReassignUserHousehold(ctx context.Context, id, householdID string) error

	// Database management
	Close() error
}
