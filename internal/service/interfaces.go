// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/receipt-tracker/internal/model"
)

// SortKey selects the ordering column for receipt listings.
type SortKey string

// Receipt listing sort keys. Both sort newest first.
const (
	// SortByDate orders by the receipt's own date.
	SortByDate SortKey = "date"
	// SortByAdded orders by when the receipt was saved.
	SortByAdded SortKey = "date_added"
)

// DefaultPageSize is the listing page size when none is given.
const DefaultPageSize = 20

// ReceiptFilter defines pagination and ordering for receipt queries. Only
// completed receipts are listed.
type ReceiptFilter struct {
	SortBy SortKey
	Limit  int
	Offset int
}

// Normalize fills in defaults for zero-valued filter fields.
func (f ReceiptFilter) Normalize() ReceiptFilter {
	if f.SortBy == "" {
		f.SortBy = SortByDate
	}
	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// Storage defines the contract for the persistence layer.
type Storage interface {
	// Receipt operations
	CreateReceipt(ctx context.Context, receipt *model.Receipt) error
	GetReceiptByID(ctx context.Context, id string) (*model.Receipt, error)
	UpdateReceipt(ctx context.Context, id string, patch model.ReceiptPatch) error
	LinkReceiptSubscription(ctx context.Context, receiptID, subscriptionID string) error
	ListReceipts(ctx context.Context, userID string, filter ReceiptFilter) ([]model.Receipt, error)

	// Subscription operations
	CreateSubscription(ctx context.Context, sub *model.Subscription) error
	GetSubscriptionByID(ctx context.Context, id string) (*model.Subscription, error)
	ListSubscriptions(ctx context.Context, userID string, activeOnly bool) ([]model.Subscription, error)

	// Profile operations
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)
	AddCategory(ctx context.Context, userID, name string) error
	AddSubcategory(ctx context.Context, userID, category, name string) error
	AddAccount(ctx context.Context, userID, name string) error
	SetTheme(ctx context.Context, userID, theme string) error
	SetSettings(ctx context.Context, userID string, settings model.Settings) error

	// User and session operations
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUserEmail(ctx context.Context, userID, email string) error
	UpdateUserPassword(ctx context.Context, userID, passwordHash string) error
	CreateSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, token string) (*model.Session, error)
	DeleteSession(ctx context.Context, token string) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for remote operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
