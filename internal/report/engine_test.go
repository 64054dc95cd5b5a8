package report

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/the-books-must-balance/internal/model"
)

// fakeLedger serves fixed snapshots and counts calls so tests can assert
// the no-tenant path never touches storage.
type fakeLedger struct {
	sections   []model.Section
	categories []model.Category
	entries    []model.Entry
	calls      int
}

func (f *fakeLedger) ListSections(_ context.Context, _ string) ([]model.Section, error) {
	f.calls++
	return f.sections, nil
}

func (f *fakeLedger) ListCategories(_ context.Context, _ string) ([]model.Category, error) {
	f.calls++
	return f.categories, nil
}

func (f *fakeLedger) ListEntries(_ context.Context, _ string) ([]model.Entry, error) {
	f.calls++
	return f.entries, nil
}

func budgetFixture() *fakeLedger {
	return &fakeLedger{
		sections: []model.Section{
			{ID: "sec-resumo", HouseholdID: "h1", Name: "Resumo", Role: model.RoleIncome},
			{ID: "sec-moradia", HouseholdID: "h1", Name: "Moradia", Role: model.RoleNeutral},
		},
		categories: []model.Category{
			{ID: "cat-salario", HouseholdID: "h1", SectionID: "sec-resumo", Name: "Salário", Role: model.RoleIncome},
			{ID: "cat-aluguel", HouseholdID: "h1", SectionID: "sec-moradia", Name: "Aluguel", Role: model.RoleExpense},
		},
		entries: []model.Entry{
			{ID: "e1", HouseholdID: "h1", CategoryID: "cat-salario", Period: "2024-01", Actual: 5000},
			{ID: "e2", HouseholdID: "h1", CategoryID: "cat-aluguel", Period: "2024-01", Actual: 1500},
			{ID: "e3", HouseholdID: "h1", CategoryID: "cat-aluguel", Period: "2024-02", Actual: 1000},
		},
	}
}

func TestAggregateFiltersByPeriod(t *testing.T) {
	engine := NewEngine(budgetFixture())

	rep, err := engine.Aggregate(context.Background(), "2024-01", "h1")
	require.NoError(t, err)

	sum := rep.Summary
	assert.InDelta(t, 5000, sum.TotalIncome, 0.001)
	assert.InDelta(t, 1500, sum.TotalExpenses, 0.001)
	assert.InDelta(t, 3500, sum.Result, 0.001)
	assert.InDelta(t, 70, sum.SavingsPercent, 0.001)
	assert.InDelta(t, 30, sum.PercentSpent, 0.001)
	assert.False(t, sum.Overspending)
	assert.True(t, sum.BalancePositive)
	assert.False(t, sum.BalanceNegative)
	assert.False(t, sum.HasSavings)

	// Entry e3 sits outside the filtered period but still shows up in the
	// period list.
	assert.Equal(t, []string{"2024-02", "2024-01"}, rep.Periods)
}

func TestAggregateSectionTotals(t *testing.T) {
	engine := NewEngine(budgetFixture())

	rep, err := engine.Aggregate(context.Background(), "2024-01", "h1")
	require.NoError(t, err)

	require.Len(t, rep.Sections, 2)
	assert.Equal(t, "Resumo", rep.Sections[0].Name)
	assert.InDelta(t, 5000, rep.Sections[0].Total, 0.001)
	assert.InDelta(t, 100, rep.Sections[0].Participation, 0.001)

	assert.Equal(t, "Moradia", rep.Sections[1].Name)
	assert.InDelta(t, 1500, rep.Sections[1].Total, 0.001)
	assert.InDelta(t, 100, rep.Sections[1].Participation, 0.001)

	require.Len(t, rep.Categories, 2)
	assert.Equal(t, "Salário", rep.Categories[0].Name)
	assert.Equal(t, "Resumo", rep.Categories[0].SectionName)
	assert.Equal(t, "Aluguel", rep.Categories[1].Name)
	assert.Equal(t, "Moradia", rep.Categories[1].SectionName)
}

func TestAggregateWithoutFilter(t *testing.T) {
	engine := NewEngine(budgetFixture())

	rep, err := engine.Aggregate(context.Background(), "  ", "h1")
	require.NoError(t, err)

	assert.InDelta(t, 5000, rep.Summary.TotalIncome, 0.001)
	assert.InDelta(t, 2500, rep.Summary.TotalExpenses, 0.001)
}

func TestAggregateNoTenantSkipsStorage(t *testing.T) {
	ledger := budgetFixture()
	engine := NewEngine(ledger)

	rep, err := engine.Aggregate(context.Background(), "2024-01", "")
	require.NoError(t, err)

	assert.Equal(t, model.EmptyReport(), rep)
	assert.Zero(t, ledger.calls)
}

func TestAggregateSavingsIndependentOfIncome(t *testing.T) {
	ledger := &fakeLedger{
		sections: []model.Section{
			{ID: "sec-renda", Name: "Renda", Role: model.RoleIncome},
		},
		categories: []model.Category{
			{ID: "cat-poupanca", SectionID: "sec-renda", Name: "Poupança", Role: model.RoleSavings},
		},
		entries: []model.Entry{
			{ID: "e1", CategoryID: "cat-poupanca", Period: "2024-01", Actual: 800},
		},
	}

	rep, err := NewEngine(ledger).Aggregate(context.Background(), "2024-01", "h1")
	require.NoError(t, err)

	// The section role makes it income; the category role additionally
	// makes it savings.
	assert.InDelta(t, 800, rep.Summary.TotalIncome, 0.001)
	assert.InDelta(t, 800, rep.Summary.TotalSavings, 0.001)
	assert.True(t, rep.Summary.HasSavings)
}

func TestAggregateLegacyRowsFallBackToKeywords(t *testing.T) {
	// Rows migrated from the pre-role schema carry empty roles; the
	// combined section and category name decides.
	ledger := &fakeLedger{
		sections: []model.Section{
			{ID: "s1", Name: "Renda Familiar"},
			{ID: "s2", Name: "Moradia"},
		},
		categories: []model.Category{
			{ID: "c1", SectionID: "s1", Name: "Mensal"},
			{ID: "c2", SectionID: "s2", Name: "Aluguel"},
			{ID: "c3", SectionID: "s2", Name: "Reserva de emergência"},
		},
		entries: []model.Entry{
			{ID: "e1", CategoryID: "c1", Actual: 4000},
			{ID: "e2", CategoryID: "c2", Actual: 1200},
			{ID: "e3", CategoryID: "c3", Actual: 300},
		},
	}

	rep, err := NewEngine(ledger).Aggregate(context.Background(), "", "h1")
	require.NoError(t, err)

	assert.InDelta(t, 4000, rep.Summary.TotalIncome, 0.001)
	assert.InDelta(t, 1500, rep.Summary.TotalExpenses, 0.001)
	assert.InDelta(t, 300, rep.Summary.TotalSavings, 0.001)
}

func TestAggregateSkipsDanglingCategories(t *testing.T) {
	ledger := &fakeLedger{
		entries: []model.Entry{
			{ID: "e1", CategoryID: "gone", Period: "2024-01", Actual: 999},
		},
	}

	rep, err := NewEngine(ledger).Aggregate(context.Background(), "2024-01", "h1")
	require.NoError(t, err)

	assert.Zero(t, rep.Summary.TotalIncome)
	assert.Zero(t, rep.Summary.TotalExpenses)
	assert.Empty(t, rep.Sections)
	assert.Empty(t, rep.Categories)
	assert.Equal(t, []string{"2024-01"}, rep.Periods)
}

func TestAggregateOrphanSectionBucket(t *testing.T) {
	ledger := &fakeLedger{
		categories: []model.Category{
			{ID: "c1", SectionID: "missing", Name: "Avulso", Role: model.RoleExpense},
		},
		entries: []model.Entry{
			{ID: "e1", CategoryID: "c1", Actual: 250},
		},
	}

	rep, err := NewEngine(ledger).Aggregate(context.Background(), "", "h1")
	require.NoError(t, err)

	require.Len(t, rep.Sections, 1)
	assert.Equal(t, "Sem Seção", rep.Sections[0].Name)
	assert.InDelta(t, 250, rep.Sections[0].Total, 0.001)

	require.Len(t, rep.Categories, 1)
	assert.Equal(t, "Sem Seção", rep.Categories[0].SectionName)
}

func TestAggregateOverspending(t *testing.T) {
	ledger := &fakeLedger{
		sections: []model.Section{
			{ID: "s1", Name: "Renda", Role: model.RoleIncome},
			{ID: "s2", Name: "Gastos", Role: model.RoleExpense},
		},
		categories: []model.Category{
			{ID: "c1", SectionID: "s1", Name: "Salário", Role: model.RoleIncome},
			{ID: "c2", SectionID: "s2", Name: "Compras", Role: model.RoleExpense},
		},
		entries: []model.Entry{
			{ID: "e1", CategoryID: "c1", Actual: 1000},
			{ID: "e2", CategoryID: "c2", Actual: 1600},
		},
	}

	rep, err := NewEngine(ledger).Aggregate(context.Background(), "", "h1")
	require.NoError(t, err)

	sum := rep.Summary
	assert.True(t, sum.Overspending)
	assert.True(t, sum.BalanceNegative)
	assert.InDelta(t, -600, sum.Result, 0.001)
	assert.InDelta(t, -60, sum.SavingsPercent, 0.001)
	assert.InDelta(t, 160, sum.PercentSpent, 0.001)
}

func TestAggregateZeroIncomeRatios(t *testing.T) {
	ledger := &fakeLedger{
		sections: []model.Section{
			{ID: "s1", Name: "Gastos", Role: model.RoleExpense},
		},
		categories: []model.Category{
			{ID: "c1", SectionID: "s1", Name: "Compras", Role: model.RoleExpense},
		},
		entries: []model.Entry{
			{ID: "e1", CategoryID: "c1", Actual: 100},
		},
	}

	rep, err := NewEngine(ledger).Aggregate(context.Background(), "", "h1")
	require.NoError(t, err)

	assert.Zero(t, rep.Summary.SavingsPercent)
	assert.Zero(t, rep.Summary.PercentSpent)
	assert.True(t, rep.Summary.Overspending)
}
