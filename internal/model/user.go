package model

import "time"

// User is an account that belongs to exactly one household. Usernames are
// globally unique, compared case-insensitively.
type User struct {
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	LastLoginAt  *time.Time `json:"lastLoginAt"`
	ID           string     `json:"id"`
	HouseholdID  string     `json:"householdId"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	IsAdmin      bool       `json:"isAdmin"`
}

// UserSummary is the admin-facing listing row: a user joined with the name
// and slug of its owning household.
type UserSummary struct {
	CreatedAt     time.Time  `json:"createdAt"`
	LastLoginAt   *time.Time `json:"lastLoginAt"`
	ID            string     `json:"id"`
	Username      string     `json:"username"`
	HouseholdID   string     `json:"householdId"`
	HouseholdName string     `json:"householdName"`
	HouseholdSlug string     `json:"householdSlug"`
	IsAdmin       bool       `json:"isAdmin"`
}
