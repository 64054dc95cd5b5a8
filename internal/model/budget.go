package model

import (
	"math"
	"strings"
	"time"
)

// SummarySectionID is the reserved id of the default tenant's summary
// section. Entries under it always count as income.
const SummarySectionID = "sec-resumo"

// Role classifies how a section or category participates in a report.
type Role string

const (
	// RoleIncome marks groups whose entries count toward total income.
	RoleIncome Role = "income"
	// RoleExpense marks groups whose entries count toward total expenses.
	RoleExpense Role = "expense"
	// RoleSavings marks groups whose entries count toward total savings.
	// Savings is tracked independently of the income/expense split.
	RoleSavings Role = "savings"
	// RoleNeutral means the group does not force a classification on its own.
	RoleNeutral Role = "neutral"
)

// incomeKeywords and savingsKeywords drive the default role assigned when a
// section or category is created without an explicit role. Matching is a
// case-insensitive substring test against the group name.
var (
	incomeKeywords = []string{
		"resumo", "renda", "salário", "salario", "entrada", "entradas",
		"receita", "receitas", "ganho", "bonus", "bônus",
	}
	savingsKeywords = []string{
		"poupança", "poupanca", "reserva", "investimento", "investimentos", "fundo",
	}
)

// RoleForName derives a default role from a group name. Income keywords win
// over savings keywords; a name matching neither is neutral.
func RoleForName(name string) Role {
	switch {
	case NameMatchesIncome(name):
		return RoleIncome
	case NameMatchesSavings(name):
		return RoleSavings
	default:
		return RoleNeutral
	}
}

// NameMatchesIncome reports whether name contains an income keyword.
func NameMatchesIncome(name string) bool {
	return containsAny(name, incomeKeywords)
}

// NameMatchesSavings reports whether name contains a savings keyword.
func NameMatchesSavings(name string) bool {
	return containsAny(name, savingsKeywords)
}

func containsAny(name string, keywords []string) bool {
	lowered := strings.ToLower(name)
	for _, kw := range keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// ValidRole reports whether r is one of the defined role values.
func ValidRole(r Role) bool {
	switch r {
	case RoleIncome, RoleExpense, RoleSavings, RoleNeutral:
		return true
	}
	return false
}

// Section is a top-level budget grouping owned by a household.
type Section struct {
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	ID          string    `json:"id"`
	HouseholdID string    `json:"householdId"`
	Name        string    `json:"name"`
	Role        Role      `json:"role"`
}

// Category is a named budget line nested under a section. It always belongs
// to the same household as its section.
type Category struct {
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	ID          string    `json:"id"`
	HouseholdID string    `json:"householdId"`
	SectionID   string    `json:"sectionId"`
	Name        string    `json:"name"`
	Role        Role      `json:"role"`
}

// Entry is a monetary amount recorded against a category, optionally bucketed
// into a month-granularity period token ("YYYY-MM"). An empty Period means
// the entry is not bucketed.
type Entry struct {
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	ID          string    `json:"id"`
	HouseholdID string    `json:"householdId"`
	CategoryID  string    `json:"categoryId"`
	Period      string    `json:"period,omitempty"`
	Actual      float64   `json:"actual"`
}

// Amount coerces a value to a finite number rounded to two decimal places.
// Non-finite input becomes zero.
func Amount(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}
