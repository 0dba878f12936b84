// Package auth manages accounts and login sessions: bcrypt password
// hashing, 30-day session tokens, and the email/password change flows.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Veraticus/receipt-tracker/internal/common"
	"github.com/Veraticus/receipt-tracker/internal/model"
	"github.com/Veraticus/receipt-tracker/internal/service"
)

// SessionTTL is how long a login session stays valid.
const SessionTTL = 30 * 24 * time.Hour

// MinPasswordLength applies to sign-up and password changes.
const MinPasswordLength = 8

// Service handles sign-up, sign-in, and account changes.
type Service struct {
	store service.Storage
	now   func() time.Time
}

// NewService creates an auth service backed by the given storage.
func NewService(store service.Storage) *Service {
	return &Service{store: store, now: time.Now}
}

// WithClock overrides the service's clock.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// SignUp creates an account and signs it in, returning the new session.
// password and confirmation must match.
func (s *Service) SignUp(ctx context.Context, email, password, confirmation string) (*model.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if len(password) < MinPasswordLength {
		return nil, common.NewUserError(
			fmt.Sprintf("Password must be at least %d characters.", MinPasswordLength),
			fmt.Errorf("password too short"))
	}
	if password != confirmation {
		return nil, common.NewUserError(
			"Passwords do not match.",
			fmt.Errorf("password confirmation mismatch"))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{Email: email, PasswordHash: string(hash)}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	slog.Info("user signed up", "user", user.ID)

	return s.createSession(ctx, user.ID)
}

// SignIn checks the credentials and returns a fresh session. Wrong email
// and wrong password are indistinguishable to the caller.
func (s *Service) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		slog.Debug("sign-in lookup failed", "error", err)
		return nil, common.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, common.ErrInvalidCredentials
	}

	return s.createSession(ctx, user.ID)
}

// SignOut deletes the session. An unknown token is not an error.
func (s *Service) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.store.DeleteSession(ctx, token)
}

// CurrentUser resolves a session token to its user. Expired sessions are
// deleted on sight.
func (s *Service) CurrentUser(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, common.ErrNotSignedIn
	}

	session, err := s.store.GetSession(ctx, token)
	if err != nil {
		return nil, common.ErrNotSignedIn
	}
	if session.Expired(s.now()) {
		_ = s.store.DeleteSession(ctx, token)
		return nil, common.ErrSessionExpired
	}

	user, err := s.store.GetUserByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session user: %w", err)
	}
	return user, nil
}

// ChangeEmail updates the account's email after re-checking the password.
func (s *Service) ChangeEmail(ctx context.Context, userID, password, newEmail string) error {
	newEmail = strings.ToLower(strings.TrimSpace(newEmail))
	if err := validateEmail(newEmail); err != nil {
		return err
	}
	if err := s.checkPassword(ctx, userID, password); err != nil {
		return err
	}
	if err := s.store.UpdateUserEmail(ctx, userID, newEmail); err != nil {
		return fmt.Errorf("failed to update email: %w", err)
	}
	slog.Info("email changed", "user", userID)
	return nil
}

// ChangePassword updates the account's password after re-checking the
// current one.
func (s *Service) ChangePassword(ctx context.Context, userID, current, next, confirmation string) error {
	if len(next) < MinPasswordLength {
		return common.NewUserError(
			fmt.Sprintf("Password must be at least %d characters.", MinPasswordLength),
			fmt.Errorf("password too short"))
	}
	if next != confirmation {
		return common.NewUserError(
			"Passwords do not match.",
			fmt.Errorf("password confirmation mismatch"))
	}
	if err := s.checkPassword(ctx, userID, current); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.store.UpdateUserPassword(ctx, userID, string(hash)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	slog.Info("password changed", "user", userID)
	return nil
}

func (s *Service) checkPassword(ctx context.Context, userID, password string) error {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return common.ErrInvalidCredentials
	}
	return nil
}

func (s *Service) createSession(ctx context.Context, userID string) (*model.Session, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}

	now := s.now()
	session := &model.Session{
		Token:     token,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(SessionTTL),
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func validateEmail(email string) error {
	if email == "" {
		return common.NewUserError("Email is required.", fmt.Errorf("email is empty"))
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return common.NewUserError(
			"That doesn't look like a valid email address.",
			fmt.Errorf("invalid email %q: %w", email, err))
	}
	return nil
}
