package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Veraticus/receipt-tracker/internal/cli"
	"github.com/Veraticus/receipt-tracker/internal/schedule"
)

func subscriptionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subscriptions",
		Short: "List repeating receipts",
		RunE:  runSubscriptions,
	}

	cmd.Flags().Bool("all", false, "include inactive subscriptions")

	return cmd
}

func runSubscriptions(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	all, _ := cmd.Flags().GetBool("all")

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	user, err := requireUser(ctx, store)
	if err != nil {
		return err
	}

	subs, err := store.ListSubscriptions(ctx, user.ID, !all)
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		fmt.Println(cli.FormatInfo("No subscriptions."))
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RECEIPT\tEVERY\tNEXT RUN\tENDS\tACTIVE")
	for _, sub := range subs {
		unit, count := sub.Interval()

		every := fmt.Sprintf("%d %s(s)", count, unit)
		ends := sub.EndDate.Format(dateLayout)
		if !sub.EndDate.Before(schedule.ForeverCeiling) {
			ends = "forever"
		}
		active := "no"
		if sub.Active {
			active = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			sub.ReceiptID, every, sub.NextRun.Format(dateLayout), ends, active)
	}
	return w.Flush()
}
