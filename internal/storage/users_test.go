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

func TestCreateUserAndLookup(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	user := createTestUser(t, store, "Alice@Example.com")
	assert.NotEmpty(t, user.ID)

	// Email lookups are case-insensitive because addresses are stored
	// lowercased.
	byEmail, err := store.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byID, err := store.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", byID.Email)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	createTestUser(t, store, "alice@example.com")
	err := store.CreateUser(ctx, &model.User{Email: "alice@example.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)
}

func TestGetUserNotFound(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	_, err := store.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = store.GetUserByID(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestUpdateUserEmailAndPassword(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	user := createTestUser(t, store, "alice@example.com")

	require.NoError(t, store.UpdateUserEmail(ctx, user.ID, "new@example.com"))
	require.NoError(t, store.UpdateUserPassword(ctx, user.ID, "new-hash"))

	got, err := store.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", got.Email)
	assert.Equal(t, "new-hash", got.PasswordHash)
}

func TestSessionLifecycle(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	user := createTestUser(t, store, "alice@example.com")

	session := &model.Session{
		Token:     "token-1",
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(30 * 24 * time.Hour),
	}
	require.NoError(t, store.CreateSession(ctx, session))

	got, err := store.GetSession(ctx, "token-1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.UserID)
	assert.False(t, got.Expired(time.Now()))

	require.NoError(t, store.DeleteSession(ctx, "token-1"))
	_, err = store.GetSession(ctx, "token-1")
	assert.ErrorIs(t, err, common.ErrNotFound)

	// Deleting again is a no-op.
	assert.NoError(t, store.DeleteSession(ctx, "token-1"))
}
