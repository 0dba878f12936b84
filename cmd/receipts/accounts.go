package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/receipt-tracker/internal/cli"
)

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage accounts and cards",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List accounts",
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
			profile, err := store.GetProfile(ctx, user.ID)
			if err != nil {
				return err
			}

			if profile.Accounts.Len() == 0 {
				fmt.Println(cli.FormatInfo("No accounts yet."))
				return nil
			}
			for _, name := range profile.Accounts.Names() {
				fmt.Println(name)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Add an account or card",
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
			if err := store.AddAccount(ctx, user.ID, args[0]); err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess("Added account " + args[0] + "."))
			return nil
		},
	})

	return cmd
}
