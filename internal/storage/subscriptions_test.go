package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/receipt-tracker/internal/common"
	"github.com/Veraticus/receipt-tracker/internal/model"
)

// createTestSubscription inserts a monthly subscription for a fresh
// receipt and returns it.
func createTestSubscription(t *testing.T, store *SQLiteStorage, userID string, nextRun time.Time, active bool) *model.Subscription {
	t.Helper()
	ctx := context.Background()

	receipt := createTestReceipt(userID, 1)
	receipt.Repeating = true
	require.NoError(t, store.CreateReceipt(ctx, receipt))

	sub := &model.Subscription{
		UserID:         userID,
		ReceiptID:      receipt.ID,
		RepeatingMonth: 1,
		EndDate:        time.Date(2300, time.January, 1, 0, 0, 0, 0, time.UTC),
		LastRun:        nextRun.AddDate(0, -1, 0),
		NextRun:        nextRun,
		Active:         active,
	}
	require.NoError(t, store.CreateSubscription(ctx, sub))
	return sub
}

func TestCreateAndGetSubscription(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	user := createTestUser(t, store, "subs@example.com")

	nextRun := time.Date(2024, time.April, 1, 9, 30, 0, 0, time.UTC)
	created := createTestSubscription(t, store, user.ID, nextRun, true)
	require.NotEmpty(t, created.ID, "storage assigns an ID")

	got, err := store.GetSubscriptionByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ReceiptID, got.ReceiptID)
	assert.Equal(t, 1, got.RepeatingMonth)
	assert.True(t, got.NextRun.Equal(nextRun))
	assert.True(t, got.Active)

	_, err = store.GetSubscriptionByID(ctx, "no-such-id")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestListSubscriptionsOrderAndActiveFilter(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	user := createTestUser(t, store, "subs@example.com")
	other := createTestUser(t, store, "other@example.com")

	base := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)

	// Inserted out of next-run order on purpose.
	late := createTestSubscription(t, store, user.ID, base.AddDate(0, 2, 0), true)
	canceled := createTestSubscription(t, store, user.ID, base.AddDate(0, 1, 0), false)
	soon := createTestSubscription(t, store, user.ID, base, true)
	createTestSubscription(t, store, other.ID, base, true)

	active, err := store.ListSubscriptions(ctx, user.ID, true)
	require.NoError(t, err)
	require.Len(t, active, 2, "inactive subscriptions are skipped")
	assert.Equal(t, soon.ID, active[0].ID, "soonest next run comes first")
	assert.Equal(t, late.ID, active[1].ID)

	all, err := store.ListSubscriptions(ctx, user.ID, false)
	require.NoError(t, err)
	require.Len(t, all, 3, "only the other user's subscription is excluded")
	assert.Equal(t, soon.ID, all[0].ID)
	assert.Equal(t, canceled.ID, all[1].ID)
	assert.Equal(t, late.ID, all[2].ID)
	assert.False(t, all[1].Active)
}
