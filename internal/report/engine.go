// Package report builds period-scoped aggregate views of a household's
// ledger: per-section and per-category totals plus an income/expense/savings
// summary.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/Veraticus/the-books-must-balance/internal/model"
)

// Categories whose section row no longer exists are reported under a
// synthetic bucket rather than dropped.
const (
	orphanSectionID   = "sem-secao"
	orphanSectionName = "Sem Seção"
)

// Ledger is the slice of storage the engine reads. Every call is scoped to
// one household; the engine never sees another tenant's rows.
type Ledger interface {
	ListSections(ctx context.Context, householdID string) ([]model.Section, error)
	ListCategories(ctx context.Context, householdID string) ([]model.Category, error)
	ListEntries(ctx context.Context, householdID string) ([]model.Entry, error)
}

// Engine aggregates a household's entries into a Report.
type Engine struct {
	ledger Ledger
}

// NewEngine creates an aggregation engine over the given ledger.
func NewEngine(ledger Ledger) *Engine {
	return &Engine{ledger: ledger}
}

// Aggregate builds the report for one household, optionally filtered to a
// single period. An empty household id yields the fixed zero-valued report
// without touching storage. The period list always reflects the full entry
// set, ignoring the filter.
func (e *Engine) Aggregate(ctx context.Context, period, householdID string) (*model.Report, error) {
	if householdID == "" {
		return model.EmptyReport(), nil
	}

	sections, err := e.ledger.ListSections(ctx, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sections: %w", err)
	}
	categories, err := e.ledger.ListCategories(ctx, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	entries, err := e.ledger.ListEntries(ctx, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}

	sectionsByID := make(map[string]model.Section, len(sections))
	for _, sec := range sections {
		sectionsByID[sec.ID] = sec
	}
	categoriesByID := make(map[string]model.Category, len(categories))
	for _, cat := range categories {
		categoriesByID[cat.ID] = cat
	}

	period = strings.TrimSpace(period)

	var totalIncome, totalExpenses, totalSavings float64
	secTotals := newAccumulator()
	catTotals := newAccumulator()

	for _, entry := range entries {
		if period != "" && strings.TrimSpace(entry.Period) != period {
			continue
		}
		cat, ok := categoriesByID[entry.CategoryID]
		if !ok {
			slog.Debug("skipping entry with missing category", "entry", entry.ID)
			continue
		}
		if entry.Actual == 0 {
			continue
		}

		sec, haveSection := sectionsByID[cat.SectionID]
		secID, secName := orphanSectionID, orphanSectionName
		if haveSection {
			secID, secName = sec.ID, sec.Name
		}

		income, savings := classify(sec, cat)
		if income {
			totalIncome += entry.Actual
		} else {
			totalExpenses += entry.Actual
		}
		if savings {
			totalSavings += entry.Actual
		}

		secTotals.add(secID, secName, "", entry.Actual, income)
		catTotals.add(cat.ID, cat.Name, secName, entry.Actual, false)
	}

	summary := deriveSummary(totalIncome, totalExpenses, totalSavings)

	rep := &model.Report{
		Sections:   secTotals.sectionTotals(totalIncome, totalExpenses),
		Categories: catTotals.categoryTotals(),
		Summary:    summary,
		Periods:    distinctPeriods(entries),
	}
	return rep, nil
}

// classify decides whether an entry under the given section/category pair
// counts as income and whether it counts as savings. Savings is independent
// of the income/expense split. Explicit roles win; rows predating roles fall
// back to keyword-matching the combined section and category names.
func classify(sec model.Section, cat model.Category) (income, savings bool) {
	if sec.ID == model.SummarySectionID {
		income = true
	}

	combined := sec.Name + " " + cat.Name
	switch {
	case sec.Role == model.RoleIncome || cat.Role == model.RoleIncome:
		income = true
	case sec.Role == "" && cat.Role == "" && model.NameMatchesIncome(combined):
		income = true
	}

	switch {
	case sec.Role == model.RoleSavings || cat.Role == model.RoleSavings:
		savings = true
	case sec.Role == "" && cat.Role == "" && model.NameMatchesSavings(combined):
		savings = true
	}
	return income, savings
}

func deriveSummary(income, expenses, savings float64) model.Summary {
	result := income - expenses

	var savingsPercent, percentSpent float64
	if income != 0 {
		savingsPercent = result / income * 100
		percentSpent = expenses / income * 100
	}

	return model.Summary{
		TotalIncome:     Round2(income),
		TotalExpenses:   Round2(expenses),
		Result:          Round2(result),
		SavingsPercent:  Round2(savingsPercent),
		PercentSpent:    Round2(percentSpent),
		TotalSavings:    Round2(savings),
		Overspending:    expenses > income,
		BalancePositive: result > 0,
		BalanceNegative: result < 0,
		HasSavings:      savings > 0,
	}
}

// accumulator keeps per-group running totals in first-touch order so the
// final descending sort breaks ties deterministically.
type accumulator struct {
	byID  map[string]*groupTotal
	order []string
}

type groupTotal struct {
	name    string
	section string
	total   float64
	income  bool
}

func newAccumulator() *accumulator {
	return &accumulator{byID: make(map[string]*groupTotal)}
}

func (a *accumulator) add(id, name, section string, amount float64, income bool) {
	g, ok := a.byID[id]
	if !ok {
		g = &groupTotal{name: name, section: section}
		a.byID[id] = g
		a.order = append(a.order, id)
	}
	g.total += amount
	if income {
		g.income = true
	}
}

func (a *accumulator) sectionTotals(totalIncome, totalExpenses float64) []model.SectionTotal {
	totals := make([]model.SectionTotal, 0, len(a.order))
	for _, id := range a.order {
		g := a.byID[id]

		denominator := totalExpenses
		if g.income {
			denominator = totalIncome
		}
		var participation float64
		if denominator != 0 {
			participation = g.total / denominator * 100
		}

		totals = append(totals, model.SectionTotal{
			Name:          g.name,
			Total:         Round2(g.total),
			Participation: Round2(participation),
		})
	}
	sort.SliceStable(totals, func(i, j int) bool { return totals[i].Total > totals[j].Total })
	return totals
}

func (a *accumulator) categoryTotals() []model.CategoryTotal {
	totals := make([]model.CategoryTotal, 0, len(a.order))
	for _, id := range a.order {
		g := a.byID[id]
		totals = append(totals, model.CategoryTotal{
			Name:        g.name,
			SectionName: g.section,
			Total:       Round2(g.total),
		})
	}
	sort.SliceStable(totals, func(i, j int) bool { return totals[i].Total > totals[j].Total })
	return totals
}

// distinctPeriods collects the distinct period tokens across all entries,
// newest first. Unbucketed entries contribute nothing.
func distinctPeriods(entries []model.Entry) []string {
	seen := make(map[string]struct{})
	periods := []string{}
	for _, entry := range entries {
		p := strings.TrimSpace(entry.Period)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		periods = append(periods, p)
	}
	sort.SliceStable(periods, func(i, j int) bool { return PeriodLess(periods[i], periods[j]) })
	return periods
}
