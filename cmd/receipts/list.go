package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Veraticus/receipt-tracker/internal/cli"
	"github.com/Veraticus/receipt-tracker/internal/service"
	"github.com/Veraticus/receipt-tracker/internal/tui"
)

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List completed receipts",
		Long: `Show completed receipts newest first, grouped by day. Pages are
appended as you go; --page picks one page, --interactive browses them
in place.`,
		RunE: runList,
	}

	cmd.Flags().String("sort", string(service.SortByDate), "sort key: date or date_added")
	cmd.Flags().Int("page", 1, "page to show (1-based)")
	cmd.Flags().Int("limit", service.DefaultPageSize, "rows per page")
	cmd.Flags().BoolP("interactive", "i", false, "browse receipts interactively")

	return cmd
}

func runList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	sortFlag, _ := cmd.Flags().GetString("sort")
	page, _ := cmd.Flags().GetInt("page")
	limit, _ := cmd.Flags().GetInt("limit")
	interactive, _ := cmd.Flags().GetBool("interactive")

	sortBy := service.SortKey(sortFlag)
	if sortBy != service.SortByDate && sortBy != service.SortByAdded {
		return fmt.Errorf("invalid --sort %q, want %q or %q", sortFlag, service.SortByDate, service.SortByAdded)
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	user, err := requireUser(ctx, store)
	if err != nil {
		return err
	}

	if interactive {
		return tui.Run(ctx, store, user.ID)
	}

	if page < 1 {
		page = 1
	}
	filter := service.ReceiptFilter{
		SortBy: sortBy,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}.Normalize()

	receipts, err := store.ListReceipts(ctx, user.ID, filter)
	if err != nil {
		return err
	}
	if len(receipts) == 0 {
		fmt.Println(cli.FormatInfo("No receipts on this page."))
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	lastHeader := ""
	for _, receipt := range receipts {
		when := receipt.Date
		if sortBy == service.SortByAdded {
			when = receipt.AddedAt
		}
		header := when.Format("Monday, January 2 2006")
		if header != lastHeader {
			_ = w.Flush()
			fmt.Println(cli.HeaderStyle.Render(header))
			lastHeader = header
		}

		repeat := ""
		if receipt.Repeating {
			repeat = cli.RepeatIcon
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\t%.2f\t%s\n",
			receipt.ID, receipt.Title, receipt.Category, receipt.TotalCost, repeat)
	}
	_ = w.Flush()

	if len(receipts) == filter.Limit {
		fmt.Println(cli.SubtleStyle.Render(fmt.Sprintf("More available: --page %d", page+1)))
	}
	return nil
}
