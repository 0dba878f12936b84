package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/Veraticus/receipt-tracker/internal/auth"
	"github.com/Veraticus/receipt-tracker/internal/common"
	"github.com/Veraticus/receipt-tracker/internal/config"
	"github.com/Veraticus/receipt-tracker/internal/model"
	"github.com/Veraticus/receipt-tracker/internal/service"
	"github.com/Veraticus/receipt-tracker/internal/storage"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/receipts/receipts.db"
	}

	// Expand tilde and environment variables
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// sessionPath is where the active session token lives between runs.
func sessionPath() (string, error) {
	if p := viper.GetString("session.path"); p != "" {
		return config.ExpandPath(p), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "receipts", "session"), nil
}

func saveSessionToken(token string) error {
	path, err := sessionPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func loadSessionToken() (string, error) {
	path, err := sessionPath()
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read session: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func clearSessionToken() error {
	path, err := sessionPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// requireUser resolves the stored session to a user, or explains how to
// sign in.
func requireUser(ctx context.Context, store service.Storage) (*model.User, error) {
	token, err := loadSessionToken()
	if err != nil {
		return nil, err
	}

	user, err := auth.NewService(store).CurrentUser(ctx, token)
	switch {
	case errors.Is(err, common.ErrSessionExpired):
		_ = clearSessionToken()
		return nil, fmt.Errorf("your session has expired, sign in again with 'receipts auth signin'")
	case errors.Is(err, common.ErrNotSignedIn):
		return nil, fmt.Errorf("not signed in, run 'receipts auth signin' first")
	case err != nil:
		return nil, err
	}
	return user, nil
}
