package model

// SectionTotal is a per-section aggregate line of a report.
type SectionTotal struct {
	Name          string  `json:"secao"`
	Total         float64 `json:"totalAtual"`
	Participation float64 `json:"participacao"`
}

// CategoryTotal is a per-category aggregate line, tagged with the name of the
// owning section.
type CategoryTotal struct {
	Name        string  `json:"categoria"`
	SectionName string  `json:"secao"`
	Total       float64 `json:"totalAtual"`
}

// Summary carries the derived totals and ratios of a report.
type Summary struct {
	TotalIncome     float64 `json:"rendaTotal"`
	TotalExpenses   float64 `json:"despesasTotal"`
	Result          float64 `json:"resultado"`
	SavingsPercent  float64 `json:"economiaPercent"`
	PercentSpent    float64 `json:"percentSpent"`
	TotalSavings    float64 `json:"poupancaTotal"`
	Overspending    bool    `json:"overspending"`
	BalancePositive bool    `json:"saldoPositivo"`
	BalanceNegative bool    `json:"saldoNegativo"`
	HasSavings      bool    `json:"hasSavings"`
}

// Report is the period-scoped aggregate view of a household's ledger.
// Periods always reflects the full entry set, independent of any filter.
type Report struct {
	Sections   []SectionTotal  `json:"sections"`
	Categories []CategoryTotal `json:"categorias"`
	Summary    Summary         `json:"resumo"`
	Periods    []string        `json:"meses"`
}

// EmptyReport returns the fixed zero-valued report produced when no household
// id is supplied. Slices are non-nil so the JSON shape stays stable.
func EmptyReport() *Report {
	return &Report{
		Sections:   []SectionTotal{},
		Categories: []CategoryTotal{},
		Periods:    []string{},
	}
}
