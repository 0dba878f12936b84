package persist

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/receipt-tracker/internal/model"
	"github.com/Veraticus/receipt-tracker/internal/schedule"
)

type mockStore struct {
	receipts      []*model.Receipt
	subscriptions []*model.Subscription
	links         map[string]string

	receiptErr      error
	subscriptionErr error
	linkErr         error
}

func newMockStore() *mockStore {
	return &mockStore{links: make(map[string]string)}
}

func (m *mockStore) CreateReceipt(_ context.Context, receipt *model.Receipt) error {
	if m.receiptErr != nil {
		return m.receiptErr
	}
	if receipt.ID == "" {
		receipt.ID = "receipt-1"
	}
	m.receipts = append(m.receipts, receipt)
	return nil
}

func (m *mockStore) CreateSubscription(_ context.Context, sub *model.Subscription) error {
	if m.subscriptionErr != nil {
		return m.subscriptionErr
	}
	if sub.ID == "" {
		sub.ID = "sub-1"
	}
	m.subscriptions = append(m.subscriptions, sub)
	return nil
}

func (m *mockStore) LinkReceiptSubscription(_ context.Context, receiptID, subscriptionID string) error {
	if m.linkErr != nil {
		return m.linkErr
	}
	m.links[receiptID] = subscriptionID
	return nil
}

func validDraft() ReceiptDraft {
	return ReceiptDraft{
		Date:     time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC),
		Title:    "Groceries",
		RawTotal: "$42.509",
		Category: "Food",
		Account:  "Checking",
	}
}

func TestSaveNonRepeating(t *testing.T) {
	store := newMockStore()
	saver := NewSaver(store).WithClock(func() time.Time {
		return time.Date(2024, 3, 15, 12, 31, 0, 0, time.UTC)
	})

	result, err := saver.Save(context.Background(), "user-1", validDraft(), nil)
	require.NoError(t, err)

	require.NotNil(t, result.Receipt)
	assert.Nil(t, result.Subscription, "non-repeating save must not create a subscription")
	assert.Empty(t, store.subscriptions)
	assert.Empty(t, store.links)

	assert.Equal(t, "user-1", result.Receipt.UserID)
	assert.Equal(t, "Groceries", result.Receipt.Title)
	assert.InDelta(t, 42.51, result.Receipt.TotalCost, 0.0001, "raw total should be sanitized and rounded")
	assert.True(t, result.Receipt.Completed)
	assert.Nil(t, result.Receipt.SubscriptionID)
}

func TestSaveRepeating(t *testing.T) {
	store := newMockStore()
	saver := NewSaver(store)

	draft := validDraft()
	draft.Repeating = true
	plan, err := schedule.Compute(draft.Date, schedule.UnitMonth, 1, schedule.Forever)
	require.NoError(t, err)

	result, err := saver.Save(context.Background(), "user-1", draft, plan)
	require.NoError(t, err)

	require.NotNil(t, result.Subscription)
	assert.Equal(t, "receipt-1", result.Subscription.ReceiptID)
	assert.Equal(t, 1, result.Subscription.RepeatingMonth)
	assert.Zero(t, result.Subscription.RepeatingDay)
	assert.True(t, result.Subscription.Active)
	assert.Equal(t, plan.NextRun, result.Subscription.NextRun)

	require.NotNil(t, result.Receipt.SubscriptionID)
	assert.Equal(t, "sub-1", *result.Receipt.SubscriptionID)
	assert.Equal(t, "sub-1", store.links["receipt-1"])
}

func TestSaveValidation(t *testing.T) {
	plan := &schedule.Plan{Unit: schedule.UnitDay, Count: 1}

	tests := []struct {
		name   string
		userID string
		mutate func(*ReceiptDraft)
		plan   *schedule.Plan
		field  string
	}{
		{
			name:   "no user",
			userID: "  ",
			mutate: func(*ReceiptDraft) {},
			field:  "user",
		},
		{
			name:   "missing title",
			userID: "user-1",
			mutate: func(d *ReceiptDraft) { d.Title = "" },
			field:  "title",
		},
		{
			name:   "missing date",
			userID: "user-1",
			mutate: func(d *ReceiptDraft) { d.Date = time.Time{} },
			field:  "date",
		},
		{
			name:   "missing total",
			userID: "user-1",
			mutate: func(d *ReceiptDraft) { d.RawTotal = "" },
			field:  "total_cost",
		},
		{
			name:   "garbage total",
			userID: "user-1",
			mutate: func(d *ReceiptDraft) { d.RawTotal = "abc" },
			field:  "total_cost",
		},
		{
			name:   "repeating without schedule",
			userID: "user-1",
			mutate: func(d *ReceiptDraft) { d.Repeating = true },
			field:  "repeating",
		},
		{
			name:   "schedule without repeating",
			userID: "user-1",
			mutate: func(*ReceiptDraft) {},
			plan:   plan,
			field:  "repeating",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockStore()
			draft := validDraft()
			tt.mutate(&draft)

			_, err := NewSaver(store).Save(context.Background(), tt.userID, draft, tt.plan)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Empty(t, store.receipts, "validation failure must not write anything")
		})
	}
}

func TestSaveReceiptStageFailure(t *testing.T) {
	store := newMockStore()
	store.receiptErr = errors.New("disk full")

	_, err := NewSaver(store).Save(context.Background(), "user-1", validDraft(), nil)

	var serr *StageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, StageReceipt, serr.Stage)
	assert.Empty(t, store.receipts)
}

func TestSaveSubscriptionStageFailureLeavesReceipt(t *testing.T) {
	store := newMockStore()
	store.subscriptionErr = errors.New("constraint violation")

	draft := validDraft()
	draft.Repeating = true
	plan, err := schedule.Compute(draft.Date, schedule.UnitWeek, 2, schedule.Forever)
	require.NoError(t, err)

	_, err = NewSaver(store).Save(context.Background(), "user-1", draft, plan)

	var serr *StageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, StageSubscription, serr.Stage)

	// The receipt row survives the subscription failure.
	require.Len(t, store.receipts, 1)
	assert.Empty(t, store.subscriptions)
	assert.Nil(t, store.receipts[0].SubscriptionID)
}

func TestSaveLinkStageFailureLeavesBothRows(t *testing.T) {
	store := newMockStore()
	store.linkErr = errors.New("database locked")

	draft := validDraft()
	draft.Repeating = true
	plan, err := schedule.Compute(draft.Date, schedule.UnitDay, 3, schedule.Forever)
	require.NoError(t, err)

	_, err = NewSaver(store).Save(context.Background(), "user-1", draft, plan)

	var serr *StageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, StageLink, serr.Stage)

	require.Len(t, store.receipts, 1)
	require.Len(t, store.subscriptions, 1)
	assert.Nil(t, store.receipts[0].SubscriptionID, "link failure must leave the receipt unlinked")
}
