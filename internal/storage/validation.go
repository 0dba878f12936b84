// Package storage provides the SQLite persistence layer for the receipt tracker.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/receipt-tracker/internal/model"
)

// Validation errors.
var (
	ErrNilContext          = errors.New("context cannot be nil")
	ErrEmptyString         = errors.New("string parameter cannot be empty")
	ErrNilParameter        = errors.New("parameter cannot be nil")
	ErrInvalidReceipt      = errors.New("invalid receipt")
	ErrInvalidUser         = errors.New("invalid user")
	ErrInvalidSession      = errors.New("invalid session")
	ErrInvalidSortKey      = errors.New("invalid sort key")
	ErrEmptyPatch          = errors.New("receipt patch changes nothing")
	ErrInvalidSubscription = errors.New("invalid subscription")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateReceipt validates a receipt before it is written.
func validateReceipt(r *model.Receipt) error {
	if r == nil {
		return fmt.Errorf("%w: receipt", ErrNilParameter)
	}
	if strings.TrimSpace(r.UserID) == "" {
		return fmt.Errorf("%w: missing user ID", ErrInvalidReceipt)
	}
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("%w: missing title", ErrInvalidReceipt)
	}
	if r.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidReceipt)
	}
	if r.TotalCost < 0 {
		return fmt.Errorf("%w: negative total cost", ErrInvalidReceipt)
	}
	return nil
}

// validateSubscription validates a subscription before it is written.
func validateSubscription(sub *model.Subscription) error {
	if sub == nil {
		return fmt.Errorf("%w: subscription", ErrNilParameter)
	}
	if strings.TrimSpace(sub.UserID) == "" {
		return fmt.Errorf("%w: missing user ID", ErrInvalidSubscription)
	}
	if strings.TrimSpace(sub.ReceiptID) == "" {
		return fmt.Errorf("%w: missing receipt ID", ErrInvalidSubscription)
	}
	if sub.EndDate.IsZero() || sub.LastRun.IsZero() || sub.NextRun.IsZero() {
		return fmt.Errorf("%w: missing schedule dates", ErrInvalidSubscription)
	}
	return sub.Validate()
}

// validateUser validates a user before it is written.
func validateUser(u *model.User) error {
	if u == nil {
		return fmt.Errorf("%w: user", ErrNilParameter)
	}
	if strings.TrimSpace(u.Email) == "" {
		return fmt.Errorf("%w: missing email", ErrInvalidUser)
	}
	if u.PasswordHash == "" {
		return fmt.Errorf("%w: missing password hash", ErrInvalidUser)
	}
	return nil
}

// validateSession validates a session before it is written.
func validateSession(sess *model.Session) error {
	if sess == nil {
		return fmt.Errorf("%w: session", ErrNilParameter)
	}
	if sess.Token == "" {
		return fmt.Errorf("%w: missing token", ErrInvalidSession)
	}
	if sess.UserID == "" {
		return fmt.Errorf("%w: missing user ID", ErrInvalidSession)
	}
	if sess.ExpiresAt.IsZero() {
		return fmt.Errorf("%w: missing expiry", ErrInvalidSession)
	}
	return nil
}
