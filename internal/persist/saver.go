// Package persist implements the receipt/subscription save flow: a
// transaction script that inserts the receipt, inserts the linked
// subscription when the receipt repeats, and finalizes the two-way link.
package persist

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/receipt-tracker/internal/model"
	"github.com/Veraticus/receipt-tracker/internal/schedule"
)

// Store is the slice of the storage layer the saver needs.
type Store interface {
	CreateReceipt(ctx context.Context, receipt *model.Receipt) error
	CreateSubscription(ctx context.Context, sub *model.Subscription) error
	LinkReceiptSubscription(ctx context.Context, receiptID, subscriptionID string) error
}

// ReceiptDraft carries the validated-but-unsanitized form fields for a new
// receipt. RawTotal is the user's monetary input before sanitization.
type ReceiptDraft struct {
	Date        time.Time
	Title       string
	Note        string
	RawTotal    string
	Category    string
	Subcategory string
	Account     string
	PathToImage string
	Repeating   bool
}

// SaveResult reports the rows written by a successful save.
type SaveResult struct {
	Receipt      *model.Receipt
	Subscription *model.Subscription
}

// Saver orchestrates the save flow against a Store.
type Saver struct {
	store Store
	now   func() time.Time
}

// NewSaver creates a Saver. The clock can be overridden in tests via
// WithClock.
func NewSaver(store Store) *Saver {
	return &Saver{store: store, now: time.Now}
}

// WithClock overrides the saver's clock.
func (s *Saver) WithClock(now func() time.Time) *Saver {
	s.now = now
	return s
}

// Save validates the draft and writes the receipt, the subscription (for a
// repeating receipt), and the back-link, in that order. Each step's failure
// aborts the remaining steps; rows already written stay in place, and the
// returned StageError names the step that failed so the partial state is
// attributable.
//
// plan must be non-nil exactly when draft.Repeating is set. A plan that
// still needs user confirmation is the caller's problem; by the time Save
// runs, the decision has been made.
func (s *Saver) Save(ctx context.Context, userID string, draft ReceiptDraft, plan *schedule.Plan) (*SaveResult, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, &ValidationError{Field: "user", Reason: "no user signed in"}
	}
	if strings.TrimSpace(draft.Title) == "" {
		return nil, &ValidationError{Field: "title", Reason: "title is required"}
	}
	if draft.Date.IsZero() {
		return nil, &ValidationError{Field: "date", Reason: "date is required"}
	}
	if strings.TrimSpace(draft.RawTotal) == "" {
		return nil, &ValidationError{Field: "total_cost", Reason: "total cost is required"}
	}
	total, err := model.ParseTotal(draft.RawTotal)
	if err != nil {
		return nil, &ValidationError{Field: "total_cost", Reason: "total cost must be a valid number"}
	}
	if draft.Repeating && plan == nil {
		return nil, &ValidationError{Field: "repeating", Reason: "repeating receipt needs a schedule"}
	}
	if !draft.Repeating && plan != nil {
		return nil, &ValidationError{Field: "repeating", Reason: "schedule given for a non-repeating receipt"}
	}

	receipt := &model.Receipt{
		UserID:      userID,
		Title:       draft.Title,
		Note:        draft.Note,
		Date:        draft.Date,
		TotalCost:   total,
		Category:    draft.Category,
		Subcategory: draft.Subcategory,
		Account:     draft.Account,
		PathToImage: draft.PathToImage,
		Repeating:   draft.Repeating,
		Completed:   true,
		AddedAt:     s.now(),
	}

	if err := s.store.CreateReceipt(ctx, receipt); err != nil {
		return nil, &StageError{Stage: StageReceipt, Err: err}
	}

	if !draft.Repeating {
		slog.Debug("saved receipt", "id", receipt.ID)
		return &SaveResult{Receipt: receipt}, nil
	}

	sub := &model.Subscription{
		UserID:    userID,
		ReceiptID: receipt.ID,
		EndDate:   plan.EndDate,
		LastRun:   plan.LastRun,
		NextRun:   plan.NextRun,
		Active:    true,
	}
	switch plan.Unit {
	case schedule.UnitDay:
		sub.RepeatingDay = plan.Count
	case schedule.UnitWeek:
		sub.RepeatingWeek = plan.Count
	case schedule.UnitMonth:
		sub.RepeatingMonth = plan.Count
	case schedule.UnitYear:
		sub.RepeatingYear = plan.Count
	}

	if err := s.store.CreateSubscription(ctx, sub); err != nil {
		// The receipt row is already in place and stays there.
		slog.Warn("subscription insert failed after receipt insert",
			"receipt", receipt.ID, "error", err)
		return nil, &StageError{Stage: StageSubscription, Err: fmt.Errorf("receipt %s saved without subscription: %w", receipt.ID, err)}
	}

	if err := s.store.LinkReceiptSubscription(ctx, receipt.ID, sub.ID); err != nil {
		slog.Warn("subscription link failed after both inserts",
			"receipt", receipt.ID, "subscription", sub.ID, "error", err)
		return nil, &StageError{Stage: StageLink, Err: err}
	}
	receipt.SubscriptionID = &sub.ID

	slog.Debug("saved repeating receipt",
		"id", receipt.ID, "subscription", sub.ID, "next_run", sub.NextRun)
	return &SaveResult{Receipt: receipt, Subscription: sub}, nil
}
