// Package model defines the core domain types shared across the application.
package model

import "time"

// Receipt represents a single tracked receipt. A receipt created from a
// scanned image starts out incomplete and is patched in place once the
// extraction results arrive or the user finishes it manually.
type Receipt struct {
	Date           time.Time
	AddedAt        time.Time
	SubscriptionID *string
	ID             string
	UserID         string
	Title          string
	Note           string
	Category       string
	Subcategory    string
	Account        string
	PathToImage    string
	TotalCost      float64
	Repeating      bool
	Completed      bool
}

// ReceiptPatch describes a partial update to an existing receipt. Nil fields
// are left untouched.
type ReceiptPatch struct {
	Title     *string
	Note      *string
	Date      *time.Time
	TotalCost *float64
	Completed *bool
}

// IsEmpty reports whether the patch would change nothing.
func (p ReceiptPatch) IsEmpty() bool {
	return p.Title == nil && p.Note == nil && p.Date == nil &&
		p.TotalCost == nil && p.Completed == nil
}
