package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Veraticus/receipt-tracker/internal/blob"
	"github.com/Veraticus/receipt-tracker/internal/cli"
	"github.com/Veraticus/receipt-tracker/internal/config"
	"github.com/Veraticus/receipt-tracker/internal/extract"
	"github.com/Veraticus/receipt-tracker/internal/model"
)

func scanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan <image>",
		Short: "Scan a receipt image",
		Long: `Upload a receipt image, create a draft receipt, and fill in
whatever the extraction service can read from the image. The draft
stays incomplete until you confirm it with 'receipts finish'.`,
		Args: cobra.ExactArgs(1),
		RunE: runScan,
	}
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	imagePath := args[0]

	data, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
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

	uploader, err := blob.NewStore(config.LoadStorageConfig())
	if err != nil {
		return err
	}
	extractor, err := extract.NewClient(config.LoadExtractConfig())
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("Uploading image..."),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWriter(os.Stderr),
	)
	defer func() { _ = bar.Finish() }()

	url, err := uploader.Upload(ctx, blob.ObjectPath(user.ID, time.Now()), data, contentTypeFor(imagePath))
	if err != nil {
		return err
	}

	// The draft exists before extraction runs, so a dead extraction
	// service still leaves a receipt to finish by hand.
	receipt := &model.Receipt{
		UserID:      user.ID,
		Title:       "New Receipt",
		Note:        "Added via app",
		Date:        time.Now(),
		Category:    "Misc",
		Subcategory: "General",
		PathToImage: url,
		Completed:   false,
	}
	if err := store.CreateReceipt(ctx, receipt); err != nil {
		return fmt.Errorf("failed to create draft receipt: %w", err)
	}

	bar.Describe("Reading receipt...")
	payload, err := extractor.Extract(ctx, url)
	if err != nil {
		slog.Warn("extraction failed, draft keeps its defaults", "receipt", receipt.ID, "error", err)
		fmt.Println()
		fmt.Println(cli.FormatWarning("Couldn't read the image; saved a blank draft instead."))
		fmt.Println(cli.FormatInfo("Finish it with: receipts finish " + receipt.ID))
		return nil
	}

	extracted := extract.Parse(payload)
	if !extracted.IsEmpty() {
		if err := store.UpdateReceipt(ctx, receipt.ID, extracted.Patch()); err != nil {
			return fmt.Errorf("failed to apply extracted fields: %w", err)
		}
	}

	fmt.Println()
	fmt.Println(cli.FormatSuccess("Scanned. Draft receipt " + receipt.ID + " created."))
	if extracted.Title != nil {
		fmt.Println(cli.FormatInfo("Looks like: " + *extracted.Title))
	}
	fmt.Println(cli.FormatInfo("Review and complete it with: receipts finish " + receipt.ID))
	return nil
}

func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".heic":
		return "image/heic"
	default:
		return "image/jpeg"
	}
}
