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

func sectionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sections",
		Short: "Manage budget sections",
		Long:  `List, add, rename, and delete the top-level budget sections of the active household.`,
	}

	cmd.AddCommand(listSectionsCmd())
	cmd.AddCommand(addSectionCmd())
	cmd.AddCommand(renameSectionCmd())
	cmd.AddCommand(deleteSectionCmd())

	return cmd
}

func listSectionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the active household's sections",
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

			sections, err := store.ListSections(ctx, householdID)
			if err != nil {
				return fmt.Errorf("failed to list sections: %w", err)
			}

			if len(sections) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No sections found. Use 'books sections add' to create one."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
			fmt.Fprintf(w, "%s\t%s\t%s\n",
				headerStyle.Render("ID"),
				headerStyle.Render("Name"),
				headerStyle.Render("Role"))
			fmt.Fprintf(w, "%s\t%s\t%s\n",
				strings.Repeat("-", 36),
				strings.Repeat("-", 20),
				strings.Repeat("-", 8))

			for _, sec := range sections {
				fmt.Fprintf(w, "%s\t%s\t%s\n", sec.ID, sec.Name, sec.Role)
			}

			return nil
		},
	}
}

func addSectionCmd() *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a section",
		Long:  `Create a budget section. Without --role, the role is derived from the name's keywords.`,
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

			var id string
			if role != "" {
				id, err = store.CreateSectionWithRole(ctx, householdID, args[0], model.Role(role))
			} else {
				id, err = store.CreateSection(ctx, householdID, args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to create section: %w", err)
			}

			fmt.Println(cli.Success(fmt.Sprintf("Created section %q (%s)", args[0], id)))
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "role (income, expense, savings, neutral)")
	return cmd
}

func renameSectionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a section",
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

			if _, err := store.UpdateSection(ctx, householdID, args[0], args[1]); err != nil {
				return fmt.Errorf("failed to rename section: %w", err)
			}

			fmt.Println(cli.Success(fmt.Sprintf("Renamed section %s to %q", args[0], args[1])))
			return nil
		},
	}
}

func deleteSectionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a section and everything under it",
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

			if err := store.DeleteSection(ctx, householdID, args[0]); err != nil {
				return fmt.Errorf("failed to delete section: %w", err)
			}

			fmt.Println(cli.Success(fmt.Sprintf("Deleted section %s", args[0])))
			return nil
		},
	}
}
