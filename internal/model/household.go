// Package model defines the core domain types shared across the application.
package model

import "time"

// Household is the tenant boundary. Every financial row belongs to exactly
// one household, and all storage operations are scoped to a household id.
type Household struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
}

// HouseholdUpdate describes a partial update to a household. Nil fields are
// left untouched; a non-empty slug triggers uniqueness re-resolution.
type HouseholdUpdate struct {
	Name *string
	Slug *string
}

// HouseholdUsage holds per-table row counts for a household. It is attached
// to the conflict error returned when deleting a non-empty household.
type HouseholdUsage struct {
	Users      int `json:"users"`
	Sections   int `json:"sections"`
	Categories int `json:"categories"`
	Entries    int `json:"entries"`
}

// Empty reports whether the household owns no rows at all.
func (u HouseholdUsage) Empty() bool {
	return u.Users == 0 && u.Sections == 0 && u.Categories == 0 && u.Entries == 0
}
