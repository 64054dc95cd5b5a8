package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Veraticus/the-books-must-balance/internal/auth"
	"github.com/Veraticus/the-books-must-balance/internal/cli"
)

func usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts",
		Long:  `List accounts across households, create accounts, change passwords, and move users between households.`,
	}

	cmd.AddCommand(listUsersCmd())
	cmd.AddCommand(addUserCmd())
	cmd.AddCommand(passwdCmd())
	cmd.AddCommand(moveUserCmd())
	cmd.AddCommand(checkLoginCmd())

	return cmd
}

func listUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all accounts with their households",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, _, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			users, err := store.ListUsersSummary(ctx)
			if err != nil {
				return fmt.Errorf("failed to list users: %w", err)
			}

			if len(users) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No users found."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				headerStyle.Render("Username"),
				headerStyle.Render("Household"),
				headerStyle.Render("Admin"),
				headerStyle.Render("Last login"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 16),
				strings.Repeat("-", 20),
				strings.Repeat("-", 5),
				strings.Repeat("-", 16))

			for _, u := range users {
				admin := ""
				if u.IsAdmin {
					admin = "yes"
				}
				lastLogin := lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("(never)")
				if u.LastLoginAt != nil {
					lastLogin = u.LastLoginAt.Format("2006-01-02 15:04")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.Username, u.HouseholdName, admin, lastLogin)
			}

			return nil
		},
	}
}

func addUserCmd() *cobra.Command {
	var isAdmin bool

	cmd := &cobra.Command{
		Use:   "add <username> <password>",
		Short: "Create an account in the active household",
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

			id, err := store.CreateUserAccount(ctx, householdID, args[0], args[1], isAdmin)
			if err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}

			fmt.Println(cli.Success(fmt.Sprintf("Created user %q (%s)", args[0], id)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&isAdmin, "admin", false, "grant administrator rights")
	return cmd
}

func passwdCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "passwd <username> <new-password>",
		Short: "Change an account's password",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, _, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			user, err := store.FindUserByUsername(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to resolve user: %w", err)
			}

			if err := store.UpdateUserPassword(ctx, user.ID, args[1]); err != nil {
				return fmt.Errorf("failed to change password: %w", err)
			}

			fmt.Println(cli.Success(fmt.Sprintf("Changed password for %q", args[0])))
			return nil
		},
	}
}

func moveUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <username> <household-slug>",
		Short: "Move an account to another household",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, _, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			user, err := store.FindUserByUsername(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to resolve user: %w", err)
			}
			hh, err := store.GetHouseholdBySlug(ctx, args[1])
			if err != nil {
				return fmt.Errorf("failed to resolve household: %w", err)
			}

			if err := store.ReassignUserHousehold(ctx, user.ID, hh.ID); err != nil {
				return fmt.Errorf("failed to move user: %w", err)
			}

			fmt.Println(cli.Success(fmt.Sprintf("Moved %q to household %q", args[0], hh.Name)))
			return nil
		},
	}
}

func checkLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-login <username> <password>",
		Short: "Verify a username/password pair",
		Long:  `Verify credentials the way a session layer would, recording the login timestamp on success.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, _, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			user, err := auth.Authenticate(ctx, store, args[0], args[1])
			if err != nil {
				if errors.Is(err, auth.ErrInvalidCredentials) {
					fmt.Println(cli.Error("Invalid username or password"))
					return err
				}
				return fmt.Errorf("failed to verify credentials: %w", err)
			}

			fmt.Println(cli.Success(fmt.Sprintf("Credentials valid; household %s", user.HouseholdID)))
			return nil
		},
	}
}
