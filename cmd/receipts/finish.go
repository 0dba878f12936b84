package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/receipt-tracker/internal/cli"
	"github.com/Veraticus/receipt-tracker/internal/model"
	"github.com/Veraticus/receipt-tracker/internal/schedule"
)

func finishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "finish <receipt-id>",
		Short: "Complete a scanned draft receipt",
		Long: `Fill in or correct a draft receipt's fields and mark it
complete so it shows up in listings.`,
		Args: cobra.ExactArgs(1),
		RunE: runFinish,
	}

	cmd.Flags().String("title", "", "receipt title")
	cmd.Flags().String("total", "", "total cost")
	cmd.Flags().String("date", "", "receipt date YYYY-MM-DD")
	cmd.Flags().String("note", "", "free-form note")

	return cmd
}

func runFinish(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	receiptID := args[0]

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	user, err := requireUser(ctx, store)
	if err != nil {
		return err
	}

	receipt, err := store.GetReceiptByID(ctx, receiptID)
	if err != nil {
		return err
	}
	if receipt.UserID != user.ID {
		return fmt.Errorf("receipt %s does not belong to you", receiptID)
	}

	completed := true
	patch := model.ReceiptPatch{Completed: &completed}

	if v, _ := cmd.Flags().GetString("title"); v != "" {
		patch.Title = &v
	}
	if v, _ := cmd.Flags().GetString("note"); v != "" {
		patch.Note = &v
	}
	if v, _ := cmd.Flags().GetString("total"); v != "" {
		total, parseErr := model.ParseTotal(v)
		if parseErr != nil {
			return fmt.Errorf("invalid --total %q: %w", v, parseErr)
		}
		patch.TotalCost = &total
	}
	if v, _ := cmd.Flags().GetString("date"); v != "" {
		day, parseErr := time.Parse(dateLayout, v)
		if parseErr != nil {
			return fmt.Errorf("invalid --date %q, want YYYY-MM-DD: %w", v, parseErr)
		}
		date := schedule.CombineClock(day, time.Now())
		patch.Date = &date
	}

	if err := store.UpdateReceipt(ctx, receiptID, patch); err != nil {
		return err
	}

	fmt.Println(cli.FormatSuccess("Receipt " + receiptID + " completed."))
	return nil
}
