package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Veraticus/the-books-must-balance/internal/cli"
	"github.com/Veraticus/the-books-must-balance/internal/model"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage budget categories",
		Long:  `List, add, update, and delete the budget categories of the active household.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(updateCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the active household's categories",
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

			categories, err := store.ListCategories(ctx, householdID)
			if err != nil {
				return fmt.Errorf("failed to list categories: %w", err)
			}
			sections, err := store.ListSections(ctx, householdID)
			if err != nil {
				return fmt.Errorf("failed to list sections: %w", err)
			}

			if len(categories) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No categories found. Use 'books categories add' to create one."))
				return nil
			}

			sectionNames := make(map[string]string, len(sections))
			for _, sec := range sections {
				sectionNames[sec.ID] = sec.Name
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				headerStyle.Render("ID"),
				headerStyle.Render("Name"),
				headerStyle.Render("Section"),
				headerStyle.Render("Role"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 36),
				strings.Repeat("-", 20),
				strings.Repeat("-", 20),
				strings.Repeat("-", 8))

			for _, cat := range categories {
				secName := sectionNames[cat.SectionID]
				if secName == "" {
					secName = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("(missing)")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", cat.ID, cat.Name, secName, cat.Role)
			}

			return nil
		},
	}
}

func addCategoryCmd() *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "add <section-id> <name>",
		Short: "Add a category to a section",
		Long:  `Create a category under a section of the active household. Without --role, the role is derived from the name's keywords, defaulting to expense.`,
		Args:  cobra.ExactArgs(2),
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

			var id string
			if role != "" {
				id, err = store.CreateCategoryWithRole(ctx, householdID, args[0], args[1], model.Role(role))
			} else {
				id, err = store.CreateCategory(ctx, householdID, args[0], args[1])
			}
			if err != nil {
				return fmt.Errorf("failed to create category: %w", err)
			}

			fmt.Println(cli.Success(fmt.Sprintf("Created category %q (%s)", args[1], id)))
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "role (income, expense, savings, neutral)")
	return cmd
}

func updateCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update <id> <section-id> <name>",
		Short: "Rename a category or move it to another section",
		Args:  cobra.ExactArgs(3),
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

			if _, err := store.UpdateCategory(ctx, householdID, args[0], args[1], args[2]); err != nil {
				return fmt.Errorf("failed to update category: %w", err)
			}

			fmt.Println(cli.Success(fmt.Sprintf("Updated category %s", args[0])))
			return nil
		},
	}
}

func deleteCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category and its entries",
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

			if err := store.DeleteCategory(ctx, householdID, args[0]); err != nil {
				return fmt.Errorf("failed to delete category: %w", err)
			}

			fmt.Println(cli.Success(fmt.Sprintf("Deleted category %s", args[0])))
			return nil
		},
	}
}
