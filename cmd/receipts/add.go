package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/receipt-tracker/internal/cli"
	"github.com/Veraticus/receipt-tracker/internal/persist"
	"github.com/Veraticus/receipt-tracker/internal/schedule"
)

const dateLayout = "2006-01-02"

func addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a receipt",
		Long: `Record a receipt. With --repeat-unit the receipt repeats on a
schedule: the next occurrence is computed from the receipt date, and
--until (MM/DD/YYYY, default forever) bounds the schedule.`,
		RunE: runAdd,
	}

	cmd.Flags().String("title", "", "receipt title (required)")
	cmd.Flags().String("total", "", "total cost (required; $ signs and commas are fine)")
	cmd.Flags().String("date", "", "receipt date YYYY-MM-DD (default today)")
	cmd.Flags().String("note", "", "free-form note")
	cmd.Flags().String("category", "", "category name")
	cmd.Flags().String("subcategory", "", "subcategory name")
	cmd.Flags().String("account", "", "account or card name")
	cmd.Flags().String("repeat-unit", "", "repeat unit: day, week, month, or year")
	cmd.Flags().Int("repeat-count", 1, "repeat every N units")
	cmd.Flags().String("until", schedule.Forever, "repeat until MM/DD/YYYY, or Forever")
	cmd.Flags().Bool("yes", false, "skip confirmation prompts")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("total")

	return cmd
}

func runAdd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	title, _ := cmd.Flags().GetString("title")
	total, _ := cmd.Flags().GetString("total")
	dateStr, _ := cmd.Flags().GetString("date")
	note, _ := cmd.Flags().GetString("note")
	category, _ := cmd.Flags().GetString("category")
	subcategory, _ := cmd.Flags().GetString("subcategory")
	account, _ := cmd.Flags().GetString("account")
	repeatUnit, _ := cmd.Flags().GetString("repeat-unit")
	repeatCount, _ := cmd.Flags().GetInt("repeat-count")
	until, _ := cmd.Flags().GetString("until")
	yes, _ := cmd.Flags().GetBool("yes")

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	user, err := requireUser(ctx, store)
	if err != nil {
		return err
	}

	now := time.Now()
	date := now
	if dateStr != "" {
		day, parseErr := time.Parse(dateLayout, dateStr)
		if parseErr != nil {
			return fmt.Errorf("invalid --date %q, want YYYY-MM-DD: %w", dateStr, parseErr)
		}
		// The receipt keeps the wall-clock time it was entered at.
		date = schedule.CombineClock(day, now)
	}

	draft := persist.ReceiptDraft{
		Date:        date,
		Title:       title,
		Note:        note,
		RawTotal:    total,
		Category:    category,
		Subcategory: subcategory,
		Account:     account,
		Repeating:   repeatUnit != "",
	}

	var plan *schedule.Plan
	if repeatUnit != "" {
		unit, err := schedule.ParseUnit(repeatUnit)
		if err != nil {
			return err
		}
		plan, err = schedule.Compute(date, unit, repeatCount, until)
		if err != nil {
			return err
		}

		if plan.NeedsConfirmation && !yes {
			fmt.Println(cli.FormatWarning(fmt.Sprintf(
				"The end date (%s) is before the first repeat (%s); this schedule will never fire.",
				plan.EndDate.Format(dateLayout), plan.NextRun.Format(dateLayout))))
			ok, err := cli.NewPrompter(os.Stdin, os.Stdout).Confirm(ctx, "Save it anyway?", false)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println(cli.FormatInfo("Nothing saved."))
				return nil
			}
		}
	}

	result, err := persist.NewSaver(store).Save(ctx, user.ID, draft, plan)
	if err != nil {
		return err
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Saved receipt %s (%.2f).", result.Receipt.ID, result.Receipt.TotalCost)))
	if result.Subscription != nil {
		fmt.Println(cli.FormatInfo(fmt.Sprintf("Repeats next on %s.", result.Subscription.NextRun.Format(dateLayout))))
	}
	return nil
}
