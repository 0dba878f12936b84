package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/receipt-tracker/internal/cli"
	"github.com/Veraticus/receipt-tracker/internal/model"
)

func settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "View and change your preferences",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current settings",
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

			theme := profile.Theme
			if theme == "" {
				theme = "default"
			}
			notifications := "off"
			if profile.Settings.UpcomingNotifications {
				notifications = "on"
			}
			fmt.Println("Theme:                 " + theme)
			fmt.Println("Upcoming notifications: " + notifications)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "theme <light|dark>",
		Short: "Set the UI theme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := model.ValidateTheme(args[0]); err != nil {
				return err
			}
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
			if err := store.SetTheme(ctx, user.ID, args[0]); err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess("Theme set to " + args[0] + "."))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "notifications <on|off>",
		Short: "Toggle upcoming subscription notifications",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var enabled bool
			switch args[0] {
			case "on":
				enabled = true
			case "off":
				enabled = false
			default:
				return fmt.Errorf("invalid value %q, want on or off", args[0])
			}

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
			if err := store.SetSettings(ctx, user.ID, model.Settings{UpcomingNotifications: enabled}); err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess("Notifications " + args[0] + "."))
			return nil
		},
	})

	return cmd
}
