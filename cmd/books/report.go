package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Veraticus/the-books-must-balance/internal/cli"
	"github.com/Veraticus/the-books-must-balance/internal/model"
	"github.com/Veraticus/the-books-must-balance/internal/report"
)

func reportCmd() *cobra.Command {
	var (
		period  string
		asJSON  bool
		allTime bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the household's income/expense/savings report",
		Long: `Aggregate the active household's entries into per-section and
per-category totals plus an income/expense/savings summary. Defaults to the
current month; use --period for another month or --all for every entry.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, defaultID, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			householdID, err := activeHousehold(ctx, store, defaultID)
			if err != nil {
				return err
			}

			if allTime {
				period = ""
			} else if period == "" {
				period = report.CurrentPeriod()
			}

			engine := report.NewEngine(store)
			rep, err := engine.Aggregate(ctx, period, householdID)
			if err != nil {
				return fmt.Errorf("failed to build report: %w", err)
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			}

			printReport(rep, period)
			return nil
		},
	}

	cmd.Flags().StringVar(&period, "period", "", "period to report on (YYYY-MM)")
	cmd.Flags().BoolVar(&allTime, "all", false, "ignore periods and report on every entry")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the report as JSON")
	return cmd
}

func printReport(rep *model.Report, period string) {
	title := "Report"
	if period != "" {
		title = "Report for " + period
	}
	fmt.Println(cli.TitleStyle.Render(title))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))

	fmt.Fprintf(w, "%s\t%s\t%s\n",
		headerStyle.Render("Section"),
		headerStyle.Render("Total"),
		headerStyle.Render("Share"))
	for _, sec := range rep.Sections {
		fmt.Fprintf(w, "%s\t%s\t%.1f%%\n",
			sec.Name,
			cli.Amount(fmt.Sprintf("%.2f", sec.Total), sec.Total < 0),
			sec.Participation)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s\t%s\t%s\n",
		headerStyle.Render("Category"),
		headerStyle.Render("Section"),
		headerStyle.Render("Total"))
	for _, cat := range rep.Categories {
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			cat.Name, cat.SectionName,
			cli.Amount(fmt.Sprintf("%.2f", cat.Total), cat.Total < 0))
	}
	_ = w.Flush()

	fmt.Println()
	sum := rep.Summary
	fmt.Printf("Income:   %s\n", cli.Amount(fmt.Sprintf("%.2f", sum.TotalIncome), false))
	fmt.Printf("Expenses: %s\n", cli.Amount(fmt.Sprintf("%.2f", sum.TotalExpenses), sum.Overspending))
	fmt.Printf("Result:   %s (%.1f%% saved, %.1f%% spent)\n",
		cli.Amount(fmt.Sprintf("%.2f", sum.Result), sum.Result < 0),
		sum.SavingsPercent, sum.PercentSpent)
	if sum.HasSavings {
		fmt.Printf("Savings:  %s\n", cli.Amount(fmt.Sprintf("%.2f", sum.TotalSavings), false))
	}
	if sum.Overspending {
		fmt.Println(cli.Warning("Expenses exceed income for this period"))
	}

	if len(rep.Periods) > 0 {
		fmt.Println(cli.SubtleStyle.Render("Periods: " + strings.Join(rep.Periods, ", ")))
	}
}
