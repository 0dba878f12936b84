package auth

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/receipt-tracker/internal/common"
	"github.com/Veraticus/receipt-tracker/internal/service"
	"github.com/Veraticus/receipt-tracker/internal/storage"
)

func createTestService(t *testing.T) (*Service, service.Storage) {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))

	return NewService(store), store
}

func TestSignUpAndSignIn(t *testing.T) {
	svc, _ := createTestService(t)
	ctx := context.Background()

	session, err := svc.SignUp(ctx, "Alice@Example.com", "correct horse", "correct horse")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.NotEmpty(t, session.UserID)
	assert.Equal(t, SessionTTL, session.ExpiresAt.Sub(session.CreatedAt))

	// Email matching is case-insensitive.
	again, err := svc.SignIn(ctx, "alice@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, session.UserID, again.UserID)
	assert.NotEqual(t, session.Token, again.Token, "each sign-in issues a fresh token")

	user, err := svc.CurrentUser(ctx, again.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "correct horse", user.PasswordHash, "password must not be stored in the clear")
}

func TestSignUpValidation(t *testing.T) {
	svc, _ := createTestService(t)
	ctx := context.Background()

	tests := []struct {
		name         string
		email        string
		password     string
		confirmation string
	}{
		{name: "empty email", email: "", password: "long enough", confirmation: "long enough"},
		{name: "malformed email", email: "not-an-email", password: "long enough", confirmation: "long enough"},
		{name: "short password", email: "a@example.com", password: "short", confirmation: "short"},
		{name: "mismatched confirmation", email: "a@example.com", password: "long enough", confirmation: "different"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SignUp(ctx, tt.email, tt.password, tt.confirmation)

			var uerr *common.UserError
			require.ErrorAs(t, err, &uerr)
			assert.NotEmpty(t, uerr.UserMessage)
		})
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	svc, _ := createTestService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "bob@example.com", "long enough", "long enough")
	require.NoError(t, err)

	_, err = svc.SignUp(ctx, "BOB@example.com", "long enough", "long enough")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	svc, _ := createTestService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "carol@example.com", "long enough", "long enough")
	require.NoError(t, err)

	_, err = svc.SignIn(ctx, "carol@example.com", "wrong password")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	_, err = svc.SignIn(ctx, "nobody@example.com", "long enough")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials, "unknown email must look like a bad password")
}

func TestSignOut(t *testing.T) {
	svc, _ := createTestService(t)
	ctx := context.Background()

	session, err := svc.SignUp(ctx, "dave@example.com", "long enough", "long enough")
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(ctx, session.Token))

	_, err = svc.CurrentUser(ctx, session.Token)
	assert.ErrorIs(t, err, common.ErrNotSignedIn)

	// Signing out twice, or with no token, is a no-op.
	assert.NoError(t, svc.SignOut(ctx, session.Token))
	assert.NoError(t, svc.SignOut(ctx, ""))
}

func TestCurrentUserExpiredSession(t *testing.T) {
	svc, store := createTestService(t)
	ctx := context.Background()

	session, err := svc.SignUp(ctx, "erin@example.com", "long enough", "long enough")
	require.NoError(t, err)

	svc.WithClock(func() time.Time { return session.ExpiresAt.Add(time.Minute) })

	_, err = svc.CurrentUser(ctx, session.Token)
	assert.ErrorIs(t, err, common.ErrSessionExpired)

	// The expired session is purged.
	_, err = store.GetSession(ctx, session.Token)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestChangeEmail(t *testing.T) {
	svc, _ := createTestService(t)
	ctx := context.Background()

	session, err := svc.SignUp(ctx, "frank@example.com", "long enough", "long enough")
	require.NoError(t, err)

	err = svc.ChangeEmail(ctx, session.UserID, "wrong password", "new@example.com")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	require.NoError(t, svc.ChangeEmail(ctx, session.UserID, "long enough", "New@Example.com"))

	_, err = svc.SignIn(ctx, "new@example.com", "long enough")
	assert.NoError(t, err)
}

func TestChangePassword(t *testing.T) {
	svc, _ := createTestService(t)
	ctx := context.Background()

	session, err := svc.SignUp(ctx, "grace@example.com", "old password", "old password")
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, session.UserID, "wrong", "new password", "new password")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	err = svc.ChangePassword(ctx, session.UserID, "old password", "new password", "something else")
	var uerr *common.UserError
	assert.ErrorAs(t, err, &uerr)

	require.NoError(t, svc.ChangePassword(ctx, session.UserID, "old password", "new password", "new password"))

	_, err = svc.SignIn(ctx, "grace@example.com", "old password")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	_, err = svc.SignIn(ctx, "grace@example.com", "new password")
	assert.NoError(t, err)
}
