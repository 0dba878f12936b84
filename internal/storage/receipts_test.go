package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/receipt-tracker/internal/common"
	"github.com/Veraticus/receipt-tracker/internal/model"
	"github.com/Veraticus/receipt-tracker/internal/service"
)

func TestCreateAndGetReceipt(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	user := createTestUser(t, store, "alice@example.com")

	receipt := createTestReceipt(user.ID, 1)
	require.NoError(t, store.CreateReceipt(ctx, receipt))
	assert.NotEmpty(t, receipt.ID, "storage assigns the identifier")
	assert.False(t, receipt.AddedAt.IsZero())

	got, err := store.GetReceiptByID(ctx, receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, receipt.Title, got.Title)
	assert.Equal(t, receipt.TotalCost, got.TotalCost)
	assert.Equal(t, "Food", got.Category)
	assert.True(t, got.Completed)
	assert.Nil(t, got.SubscriptionID)
}

func TestCreateReceiptValidation(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	tests := []struct {
		receipt *model.Receipt
		name    string
	}{
		{name: "nil receipt", receipt: nil},
		{name: "missing user", receipt: &model.Receipt{Title: "x", Date: time.Now()}},
		{name: "missing title", receipt: &model.Receipt{UserID: "u", Date: time.Now()}},
		{name: "missing date", receipt: &model.Receipt{UserID: "u", Title: "x"}},
		{name: "negative total", receipt: &model.Receipt{UserID: "u", Title: "x", Date: time.Now(), TotalCost: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, store.CreateReceipt(ctx, tt.receipt))
		})
	}
}

func TestGetReceiptByIDNotFound(t *testing.T) {
	store := createTestStorage(t)

	_, err := store.GetReceiptByID(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestUpdateReceipt(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	user := createTestUser(t, store, "alice@example.com")

	receipt := createTestReceipt(user.ID, 1)
	receipt.Completed = false
	require.NoError(t, store.CreateReceipt(ctx, receipt))

	title := "Grocery Run"
	total := 54.20
	completed := true
	err := store.UpdateReceipt(ctx, receipt.ID, model.ReceiptPatch{
		Title:     &title,
		TotalCost: &total,
		Completed: &completed,
	})
	require.NoError(t, err)

	got, err := store.GetReceiptByID(ctx, receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, "Grocery Run", got.Title)
	assert.Equal(t, 54.20, got.TotalCost)
	assert.True(t, got.Completed)
	// Untouched fields survive the patch.
	assert.Equal(t, "test note", got.Note)
}

func TestUpdateReceiptEmptyPatch(t *testing.T) {
	store := createTestStorage(t)

	err := store.UpdateReceipt(context.Background(), "some-id", model.ReceiptPatch{})
	assert.ErrorIs(t, err, ErrEmptyPatch)
}

func TestUpdateReceiptNotFound(t *testing.T) {
	store := createTestStorage(t)

	title := "x"
	err := store.UpdateReceipt(context.Background(), "missing", model.ReceiptPatch{Title: &title})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestLinkReceiptSubscription(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	user := createTestUser(t, store, "alice@example.com")

	receipt := createTestReceipt(user.ID, 1)
	receipt.Repeating = true
	require.NoError(t, store.CreateReceipt(ctx, receipt))

	sub := &model.Subscription{
		UserID:         user.ID,
		ReceiptID:      receipt.ID,
		RepeatingMonth: 1,
		EndDate:        time.Date(2300, 1, 1, 0, 0, 0, 0, time.UTC),
		LastRun:        receipt.Date,
		NextRun:        receipt.Date.AddDate(0, 1, 0),
		Active:         true,
	}
	require.NoError(t, store.CreateSubscription(ctx, sub))
	require.NoError(t, store.LinkReceiptSubscription(ctx, receipt.ID, sub.ID))

	got, err := store.GetReceiptByID(ctx, receipt.ID)
	require.NoError(t, err)
	require.NotNil(t, got.SubscriptionID)
	assert.Equal(t, sub.ID, *got.SubscriptionID)
}

func TestListReceiptsPagination(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	user := createTestUser(t, store, "alice@example.com")

	for i := 1; i <= 5; i++ {
		require.NoError(t, store.CreateReceipt(ctx, createTestReceipt(user.ID, i)))
	}
	// Incomplete drafts never appear in the listing.
	draft := createTestReceipt(user.ID, 6)
	draft.Completed = false
	require.NoError(t, store.CreateReceipt(ctx, draft))

	page1, err := store.ListReceipts(ctx, user.ID, service.ReceiptFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page1, 2)
	// Newest receipt date first.
	assert.Equal(t, "Receipt #5", page1[0].Title)
	assert.Equal(t, "Receipt #4", page1[1].Title)

	page2, err := store.ListReceipts(ctx, user.ID, service.ReceiptFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.Equal(t, "Receipt #3", page2[0].Title)

	// Short final page signals the end of the data.
	page3, err := store.ListReceipts(ctx, user.ID, service.ReceiptFilter{Limit: 2, Offset: 4})
	require.NoError(t, err)
	assert.Len(t, page3, 1)
}

func TestListReceiptsSortKeySwitch(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	user := createTestUser(t, store, "alice@example.com")

	// Older receipt date, added most recently.
	late := createTestReceipt(user.ID, 1)
	late.Date = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	late.AddedAt = time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.CreateReceipt(ctx, late))

	early := createTestReceipt(user.ID, 2)
	early.Date = time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	early.AddedAt = time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.CreateReceipt(ctx, early))

	byDate, err := store.ListReceipts(ctx, user.ID, service.ReceiptFilter{SortBy: service.SortByDate})
	require.NoError(t, err)
	require.Len(t, byDate, 2)
	assert.Equal(t, early.ID, byDate[0].ID)

	byAdded, err := store.ListReceipts(ctx, user.ID, service.ReceiptFilter{SortBy: service.SortByAdded})
	require.NoError(t, err)
	require.Len(t, byAdded, 2)
	assert.Equal(t, late.ID, byAdded[0].ID)
}

func TestListReceiptsScopedToUser(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	alice := createTestUser(t, store, "alice@example.com")
	bob := createTestUser(t, store, "bob@example.com")

	require.NoError(t, store.CreateReceipt(ctx, createTestReceipt(alice.ID, 1)))

	got, err := store.ListReceipts(ctx, bob.ID, service.ReceiptFilter{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListReceiptsInvalidSortKey(t *testing.T) {
	store := createTestStorage(t)

	_, err := store.ListReceipts(context.Background(), "u", service.ReceiptFilter{SortBy: "amount"})
	assert.ErrorIs(t, err, ErrInvalidSortKey)
}
