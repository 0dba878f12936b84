package main

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Veraticus/receipt-tracker/internal/auth"
	"github.com/Veraticus/receipt-tracker/internal/cli"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage your account and session",
	}

	cmd.AddCommand(signUpCmd())
	cmd.AddCommand(signInCmd())
	cmd.AddCommand(signOutCmd())
	cmd.AddCommand(whoamiCmd())
	cmd.AddCommand(changeEmailCmd())
	cmd.AddCommand(changePasswordCmd())

	return cmd
}

func signUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signup <email>",
		Short: "Create an account and sign in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			password, err := readPassword("Password: ")
			if err != nil {
				return err
			}
			confirmation, err := readPassword("Confirm password: ")
			if err != nil {
				return err
			}

			session, err := auth.NewService(store).SignUp(ctx, args[0], password, confirmation)
			if err != nil {
				return err
			}
			if err := saveSessionToken(session.Token); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess("Account created, you are signed in."))
			return nil
		},
	}
}

func signInCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signin <email>",
		Short: "Sign in to your account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			password, err := readPassword("Password: ")
			if err != nil {
				return err
			}

			session, err := auth.NewService(store).SignIn(ctx, args[0], password)
			if err != nil {
				return err
			}
			if err := saveSessionToken(session.Token); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess("Signed in."))
			return nil
		},
	}
}

func signOutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Sign out and forget the local session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			token, err := loadSessionToken()
			if err != nil {
				return err
			}
			if err := auth.NewService(store).SignOut(ctx, token); err != nil {
				return err
			}
			if err := clearSessionToken(); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess("Signed out."))
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			user, err := requireUser(ctx, store)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatInfo("Signed in as " + user.Email))
			return nil
		},
	}
}

func changeEmailCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "change-email <new-email>",
		Short: "Change your account email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			user, err := requireUser(ctx, store)
			if err != nil {
				return err
			}

			password, err := readPassword("Current password: ")
			if err != nil {
				return err
			}
			if err := auth.NewService(store).ChangeEmail(ctx, user.ID, password, args[0]); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess("Email updated."))
			return nil
		},
	}
}

func changePasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "change-password",
		Short: "Change your account password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			user, err := requireUser(ctx, store)
			if err != nil {
				return err
			}

			current, err := readPassword("Current password: ")
			if err != nil {
				return err
			}
			next, err := readPassword("New password: ")
			if err != nil {
				return err
			}
			confirmation, err := readPassword("Confirm new password: ")
			if err != nil {
				return err
			}

			if err := auth.NewService(store).ChangePassword(ctx, user.ID, current, next, confirmation); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess("Password updated."))
			return nil
		},
	}
}

// readPassword reads a password without echoing when stdin is a
// terminal.
func readPassword(prompt string) (string, error) {
	fmt.Print(cli.FormatPrompt(prompt))
	defer fmt.Println()

	if term.IsTerminal(int(syscall.Stdin)) {
		data, err := term.ReadPassword(int(syscall.Stdin))
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(data), nil
	}

	// Piped input (tests, scripts) falls back to a plain line read.
	var line string
	if _, err := fmt.Fscanln(os.Stdin, &line); err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return line, nil
}
