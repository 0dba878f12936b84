package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Veraticus/receipt-tracker/internal/common"
	"github.com/Veraticus/receipt-tracker/internal/model"
)

// CreateSubscription inserts a new subscription row. An empty ID is
// assigned by the storage layer.
func (s *SQLiteStorage) CreateSubscription(ctx context.Context, sub *model.Subscription) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateSubscription(sub); err != nil {
		return err
	}

	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO subscriptions (
			id, user_id, receipt_id,
			repeating_day, repeating_week, repeating_month, repeating_year,
			end_date, last_run, next_run, active
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.UserID, sub.ReceiptID,
		sub.RepeatingDay, sub.RepeatingWeek, sub.RepeatingMonth, sub.RepeatingYear,
		sub.EndDate, sub.LastRun, sub.NextRun, sub.Active,
	)
	if err != nil {
		return fmt.Errorf("failed to insert subscription: %w", err)
	}

	slog.Debug("created subscription", "id", sub.ID, "receipt", sub.ReceiptID)
	return nil
}

// GetSubscriptionByID returns a single subscription by its identifier.
func (s *SQLiteStorage) GetSubscriptionByID(ctx context.Context, id string) (*model.Subscription, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, receipt_id,
		       repeating_day, repeating_week, repeating_month, repeating_year,
		       end_date, last_run, next_run, active
		FROM subscriptions
		WHERE id = ?`, id)

	sub, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("subscription %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return sub, nil
}

// ListSubscriptions returns a user's subscriptions, soonest next run
// first. With activeOnly set, inactive subscriptions are skipped.
func (s *SQLiteStorage) ListSubscriptions(ctx context.Context, userID string, activeOnly bool) ([]model.Subscription, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	query := `
		SELECT id, user_id, receipt_id,
		       repeating_day, repeating_week, repeating_month, repeating_year,
		       end_date, last_run, next_run, active
		FROM subscriptions
		WHERE user_id = ?`
	if activeOnly {
		query += " AND active = 1"
	}
	query += " ORDER BY next_run ASC"

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriptions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var subs []model.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, *sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscriptions: %w", err)
	}

	return subs, nil
}

func scanSubscription(row scanner) (*model.Subscription, error) {
	var sub model.Subscription
	err := row.Scan(
		&sub.ID, &sub.UserID, &sub.ReceiptID,
		&sub.RepeatingDay, &sub.RepeatingWeek, &sub.RepeatingMonth, &sub.RepeatingYear,
		&sub.EndDate, &sub.LastRun, &sub.NextRun, &sub.Active,
	)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}
