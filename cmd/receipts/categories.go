package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/receipt-tracker/internal/cli"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage receipt categories",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List categories and their subcategories",
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

			if profile.Categories.Len() == 0 {
				fmt.Println(cli.FormatInfo("No categories yet."))
				return nil
			}
			for _, name := range profile.Categories.Names() {
				fmt.Println(cli.BoldStyle.Render(name))
				subs, _ := profile.Categories.Children(name)
				for _, sub := range subs {
					fmt.Println("  " + sub)
				}
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
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
			if err := store.AddCategory(ctx, user.ID, args[0]); err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess("Added category " + args[0] + "."))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add-sub <category> <name>",
		Short: "Add a subcategory under a category",
		Args:  cobra.ExactArgs(2),
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
			if err := store.AddSubcategory(ctx, user.ID, args[0], args[1]); err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess("Added " + args[1] + " under " + args[0] + "."))
			return nil
		},
	})

	return cmd
}
