package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Veraticus/the-books-must-balance/internal/cli"
	"github.com/Veraticus/the-books-must-balance/internal/report"
)

func entriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entries",
		Short: "Manage ledger entries",
		Long:  `List, add, update, and delete the monetary entries of the active household.`,
	}

	cmd.AddCommand(listEntriesCmd())
	cmd.AddCommand(addEntryCmd())
	cmd.AddCommand(updateEntryCmd())
	cmd.AddCommand(deleteEntryCmd())

	return cmd
}

func listEntriesCmd() *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the active household's entries",
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

			entries, err := store.ListEntries(ctx, householdID)
			if err != nil {
				return fmt.Errorf("failed to list entries: %w", err)
			}
			categories, err := store.ListCategories(ctx, householdID)
			if err != nil {
				return fmt.Errorf("failed to list categories: %w", err)
			}

			categoryNames := make(map[string]string, len(categories))
			for _, cat := range categories {
				categoryNames[cat.ID] = cat.Name
			}

			period = strings.TrimSpace(period)
			sort.SliceStable(entries, func(i, j int) bool {
				return report.PeriodLess(entries[i].Period, entries[j].Period)
			})

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				headerStyle.Render("ID"),
				headerStyle.Render("Category"),
				headerStyle.Render("Period"),
				headerStyle.Render("Amount"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 36),
				strings.Repeat("-", 20),
				strings.Repeat("-", 7),
				strings.Repeat("-", 10))

			shown := 0
			for _, entry := range entries {
				if period != "" && strings.TrimSpace(entry.Period) != period {
					continue
				}
				name := categoryNames[entry.CategoryID]
				if name == "" {
					name = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("(missing)")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					entry.ID, name, entry.Period,
					cli.Amount(fmt.Sprintf("%.2f", entry.Actual), entry.Actual < 0))
				shown++
			}

			if shown == 0 {
				fmt.Println(cli.SubtleStyle.Render("No entries found."))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&period, "period", "", "only entries for this period (YYYY-MM)")
	return cmd
}

func addEntryCmd() *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "add <category-id> <amount>",
		Short: "Record an amount against a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			actual, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[1], err)
			}

			store, defaultID, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			householdID, err := activeHousehold(ctx, store, defaultID)
			if err != nil {
				return err
			}

			id, err := store.CreateEntry(ctx, householdID, args[0], actual, period)
			if err != nil {
				return fmt.Errorf("failed to create entry: %w", err)
			}

			fmt.Println(cli.Success(fmt.Sprintf("Recorded %.2f (%s)", actual, id)))
			return nil
		},
	}

	cmd.Flags().StringVar(&period, "period", report.CurrentPeriod(), "period to record against (YYYY-MM, empty for unbucketed)")
	return cmd
}

func updateEntryCmd() *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "update <id> <amount>",
		Short: "Rewrite an entry's amount and period",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			actual, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[1], err)
			}

			store, defaultID, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			householdID, err := activeHousehold(ctx, store, defaultID)
			if err != nil {
				return err
			}

			if err := store.UpdateEntry(ctx, householdID, args[0], actual, period); err != nil {
				return fmt.Errorf("failed to update entry: %w", err)
			}

			fmt.Println(cli.Success(fmt.Sprintf("Updated entry %s", args[0])))
			return nil
		},
	}

	cmd.Flags().StringVar(&period, "period", "", "new period (YYYY-MM, empty for unbucketed)")
	return cmd
}

func deleteEntryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			if err := store.DeleteEntry(ctx, householdID, args[0]); err != nil {
				return fmt.Errorf("failed to delete entry: %w", err)
			}

			fmt.Println(cli.Success(fmt.Sprintf("Deleted entry %s", args[0])))
			return nil
		},
	}
}
