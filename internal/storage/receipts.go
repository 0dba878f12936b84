package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/receipt-tracker/internal/common"
	"github.com/Veraticus/receipt-tracker/internal/model"
	"github.com/Veraticus/receipt-tracker/internal/service"
)

// CreateReceipt inserts a new receipt. An empty ID is assigned by the
// storage layer; AddedAt defaults to now.
func (s *SQLiteStorage) CreateReceipt(ctx context.Context, receipt *model.Receipt) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateReceipt(receipt); err != nil {
		return err
	}

	if receipt.ID == "" {
		receipt.ID = uuid.NewString()
	}
	if receipt.AddedAt.IsZero() {
		receipt.AddedAt = time.Now()
	}

	var subscriptionID any
	if receipt.SubscriptionID != nil {
		subscriptionID = *receipt.SubscriptionID
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO receipts (
			id, user_id, title, note, date, total_cost,
			category, subcategory, account, repeating, completed,
			path_to_img, subscription_id, date_added_to_db
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		receipt.ID, receipt.UserID, receipt.Title, receipt.Note,
		receipt.Date, receipt.TotalCost, receipt.Category,
		receipt.Subcategory, receipt.Account, receipt.Repeating,
		receipt.Completed, receipt.PathToImage, subscriptionID,
		receipt.AddedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert receipt: %w", err)
	}

	slog.Debug("created receipt", "id", receipt.ID, "user", receipt.UserID, "repeating", receipt.Repeating)
	return nil
}

// GetReceiptByID returns a single receipt by its identifier.
func (s *SQLiteStorage) GetReceiptByID(ctx context.Context, id string) (*model.Receipt, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, note, date, total_cost,
		       category, subcategory, account, repeating, completed,
		       path_to_img, subscription_id, date_added_to_db
		FROM receipts
		WHERE id = ?`, id)

	receipt, err := scanReceipt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("receipt %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	return receipt, nil
}

// UpdateReceipt applies a partial update to an existing receipt. The
// AI-assisted flow revisits and patches the same row by identifier.
func (s *SQLiteStorage) UpdateReceipt(ctx context.Context, id string, patch model.ReceiptPatch) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	if patch.IsEmpty() {
		return ErrEmptyPatch
	}

	var (
		sets []string
		args []any
	)
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Note != nil {
		sets = append(sets, "note = ?")
		args = append(args, *patch.Note)
	}
	if patch.Date != nil {
		sets = append(sets, "date = ?")
		args = append(args, *patch.Date)
	}
	if patch.TotalCost != nil {
		sets = append(sets, "total_cost = ?")
		args = append(args, *patch.TotalCost)
	}
	if patch.Completed != nil {
		sets = append(sets, "completed = ?")
		args = append(args, *patch.Completed)
	}
	args = append(args, id)

	result, err := s.db.ExecContext(ctx,
		"UPDATE receipts SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("failed to update receipt: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("receipt %s: %w", id, common.ErrNotFound)
	}

	slog.Debug("updated receipt", "id", id)
	return nil
}

// LinkReceiptSubscription sets the receipt's subscription reference,
// finalizing the two-way link after both rows exist.
func (s *SQLiteStorage) LinkReceiptSubscription(ctx context.Context, receiptID, subscriptionID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(receiptID, "receiptID"); err != nil {
		return err
	}
	if err := validateString(subscriptionID, "subscriptionID"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		"UPDATE receipts SET subscription_id = ? WHERE id = ?",
		subscriptionID, receiptID)
	if err != nil {
		return fmt.Errorf("failed to link receipt to subscription: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check link result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("receipt %s: %w", receiptID, common.ErrNotFound)
	}

	return nil
}

// ListReceipts returns one page of completed receipts for a user, newest
// first by the requested sort key.
func (s *SQLiteStorage) ListReceipts(ctx context.Context, userID string, filter service.ReceiptFilter) ([]model.Receipt, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	filter = filter.Normalize()

	var orderBy string
	switch filter.SortBy {
	case service.SortByDate:
		orderBy = "date"
	case service.SortByAdded:
		orderBy = "date_added_to_db"
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidSortKey, filter.SortBy)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, note, date, total_cost,
		       category, subcategory, account, repeating, completed,
		       path_to_img, subscription_id, date_added_to_db
		FROM receipts
		WHERE user_id = ? AND completed = 1
		ORDER BY `+orderBy+` DESC
		LIMIT ? OFFSET ?`,
		userID, filter.Limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query receipts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var receipts []model.Receipt
	for rows.Next() {
		receipt, err := scanReceipt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan receipt: %w", err)
		}
		receipts = append(receipts, *receipt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating receipts: %w", err)
	}

	slog.Debug("listed receipts",
		"user", userID, "sort", filter.SortBy,
		"offset", filter.Offset, "count", len(receipts))
	return receipts, nil
}

// scanner abstracts sql.Row and sql.Rows for scanReceipt.
type scanner interface {
	Scan(dest ...any) error
}

func scanReceipt(row scanner) (*model.Receipt, error) {
	var (
		receipt        model.Receipt
		subscriptionID sql.NullString
	)
	err := row.Scan(
		&receipt.ID, &receipt.UserID, &receipt.Title, &receipt.Note,
		&receipt.Date, &receipt.TotalCost, &receipt.Category,
		&receipt.Subcategory, &receipt.Account, &receipt.Repeating,
		&receipt.Completed, &receipt.PathToImage, &subscriptionID,
		&receipt.AddedAt,
	)
	if err != nil {
		return nil, err
	}
	if subscriptionID.Valid {
		receipt.SubscriptionID = &subscriptionID.String
	}
	return &receipt, nil
}
