package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Veraticus/the-books-must-balance/internal/cli"
	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/model"
)

func householdsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "households",
		Short: "Manage households",
		Long:  `List, create, rename, and delete the tenant households that own ledger data.`,
	}

	cmd.AddCommand(listHouseholdsCmd())
	cmd.AddCommand(createHouseholdCmd())
	cmd.AddCommand(renameHouseholdCmd())
	cmd.AddCommand(deleteHouseholdCmd())

	return cmd
}

func listHouseholdsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all households",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, _, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			households, err := store.ListHouseholds(ctx)
			if err != nil {
				return fmt.Errorf("failed to list households: %w", err)
			}

			if len(households) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No households found."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
			fmt.Fprintf(w, "%s\t%s\t%s\n",
				headerStyle.Render("Name"),
				headerStyle.Render("Slug"),
				headerStyle.Render("Created"))
			fmt.Fprintf(w, "%s\t%s\t%s\n",
				strings.Repeat("-", 20),
				strings.Repeat("-", 20),
				strings.Repeat("-", 10))

			for _, hh := range households {
				fmt.Fprintf(w, "%s\t%s\t%s\n", hh.Name, hh.Slug, hh.CreatedAt.Format("2006-01-02"))
			}

			return nil
		},
	}
}

func createHouseholdCmd() *cobra.Command {
	var slugHint string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new household",
		Long:  `Create a household. A URL-safe slug is derived from the name unless --slug is given; collisions get a numeric suffix.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, _, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			hh, err := store.CreateHousehold(ctx, args[0], slugHint)
			if err != nil {
				return fmt.Errorf("failed to create household: %w", err)
			}

			fmt.Println(cli.Success(fmt.Sprintf("Created household %q (slug %s)", hh.Name, hh.Slug)))
			return nil
		},
	}

	cmd.Flags().StringVar(&slugHint, "slug", "", "preferred slug (uniqueness still enforced)")
	return cmd
}

func renameHouseholdCmd() *cobra.Command {
	var newName, newSlug string

	cmd := &cobra.Command{
		Use:   "rename <slug>",
		Short: "Rename a household or change its slug",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if newName == "" && newSlug == "" {
				return errors.New("nothing to change: pass --name and/or --new-slug")
			}

			store, _, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			hh, err := store.GetHouseholdBySlug(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to resolve household: %w", err)
			}

			update := householdUpdate(newName, newSlug)
			updated, err := store.UpdateHousehold(ctx, hh.ID, update)
			if err != nil {
				return fmt.Errorf("failed to update household: %w", err)
			}

			fmt.Println(cli.Success(fmt.Sprintf("Household is now %q (slug %s)", updated.Name, updated.Slug)))
			return nil
		},
	}

	cmd.Flags().StringVar(&newName, "name", "", "new display name")
	cmd.Flags().StringVar(&newSlug, "new-slug", "", "new slug (uniqueness still enforced)")
	return cmd
}

func deleteHouseholdCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <slug>",
		Short: "Delete an empty household",
		Long:  `Delete a household. Refused for the default tenant and for any household that still owns users, sections, categories, or entries.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, _, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			hh, err := store.GetHouseholdBySlug(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to resolve household: %w", err)
			}

			if err := store.DeleteHousehold(ctx, hh.ID); err != nil {
				var conflict *common.ConflictError
				if errors.As(err, &conflict) && conflict.Usage != nil {
					fmt.Println(cli.Error(fmt.Sprintf(
						"Household %q is not empty: %d users, %d sections, %d categories, %d entries",
						hh.Name, conflict.Usage.Users, conflict.Usage.Sections,
						conflict.Usage.Categories, conflict.Usage.Entries)))
					return err
				}
				return fmt.Errorf("failed to delete household: %w", err)
			}

			fmt.Println(cli.Success(fmt.Sprintf("Deleted household %q", hh.Name)))
			return nil
		},
	}
}

func householdUpdate(name, slug string) model.HouseholdUpdate {
	var update model.HouseholdUpdate
	if name != "" {
		update.Name = &name
	}
	if slug != "" {
		update.Slug = &slug
	}
	return update
}
