package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/receipt-tracker/internal/common"
	"github.com/Veraticus/receipt-tracker/internal/model"
)

// GetProfile returns the user's profile. A user without a profile row gets
// an empty profile, matching the remote table's absent-row behavior.
func (s *SQLiteStorage) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	var (
		theme      string
		settings   string
		categories string
		accounts   string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT theme, settings, categories, accounts_and_cards
		FROM profiles
		WHERE user_id = ?`, userID).
		Scan(&theme, &settings, &categories, &accounts)
	if errors.Is(err, sql.ErrNoRows) {
		return model.NewProfile(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}

	profile := model.NewProfile(userID)
	profile.Theme = theme

	if err := json.Unmarshal([]byte(settings), &profile.Settings); err != nil {
		return nil, fmt.Errorf("corrupt settings for user %s: %w", userID, err)
	}
	if err := json.Unmarshal([]byte(categories), profile.Categories); err != nil {
		return nil, fmt.Errorf("corrupt categories for user %s: %w", userID, err)
	}
	if err := json.Unmarshal([]byte(accounts), profile.Accounts); err != nil {
		return nil, fmt.Errorf("corrupt accounts for user %s: %w", userID, err)
	}

	return profile, nil
}

// AddCategory appends a new main category to the user's category tree.
func (s *SQLiteStorage) AddCategory(ctx context.Context, userID, name string) error {
	return s.mutateProfile(ctx, userID, func(p *model.Profile) error {
		if err := p.Categories.Add(name); err != nil {
			return fmt.Errorf("category %q: %w", name, common.ErrDuplicateEntry)
		}
		return nil
	})
}

// AddSubcategory appends a subcategory under an existing main category.
func (s *SQLiteStorage) AddSubcategory(ctx context.Context, userID, category, name string) error {
	return s.mutateProfile(ctx, userID, func(p *model.Profile) error {
		err := p.Categories.AddChild(category, name)
		if errors.Is(err, model.ErrDuplicateName) {
			return fmt.Errorf("subcategory %q: %w", name, common.ErrDuplicateEntry)
		}
		if errors.Is(err, model.ErrUnknownParent) {
			return fmt.Errorf("category %q: %w", category, common.ErrNotFound)
		}
		return err
	})
}

// AddAccount appends a new account to the user's account list.
func (s *SQLiteStorage) AddAccount(ctx context.Context, userID, name string) error {
	return s.mutateProfile(ctx, userID, func(p *model.Profile) error {
		if err := p.Accounts.Add(name); err != nil {
			return fmt.Errorf("account %q: %w", name, common.ErrDuplicateEntry)
		}
		return nil
	})
}

// SetTheme records the user's theme preference. Only themes the UI can
// render are accepted.
func (s *SQLiteStorage) SetTheme(ctx context.Context, userID, theme string) error {
	if err := model.ValidateTheme(theme); err != nil {
		return err
	}
	return s.mutateProfile(ctx, userID, func(p *model.Profile) error {
		p.Theme = theme
		return nil
	})
}

// SetSettings replaces the user's settings object.
func (s *SQLiteStorage) SetSettings(ctx context.Context, userID string, settings model.Settings) error {
	return s.mutateProfile(ctx, userID, func(p *model.Profile) error {
		p.Settings = settings
		return nil
	})
}

// mutateProfile runs a read-modify-write cycle on the user's profile inside
// a transaction, inserting the row if it does not exist yet.
func (s *SQLiteStorage) mutateProfile(ctx context.Context, userID string, mutate func(*model.Profile) error) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin profile update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	profile := model.NewProfile(userID)

	var (
		theme      string
		settings   string
		categories string
		accounts   string
	)
	err = tx.QueryRowContext(ctx, `
		SELECT theme, settings, categories, accounts_and_cards
		FROM profiles
		WHERE user_id = ?`, userID).
		Scan(&theme, &settings, &categories, &accounts)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// First write creates the profile row.
	case err != nil:
		return fmt.Errorf("failed to read profile: %w", err)
	default:
		profile.Theme = theme
		if err := json.Unmarshal([]byte(settings), &profile.Settings); err != nil {
			return fmt.Errorf("corrupt settings for user %s: %w", userID, err)
		}
		if err := json.Unmarshal([]byte(categories), profile.Categories); err != nil {
			return fmt.Errorf("corrupt categories for user %s: %w", userID, err)
		}
		if err := json.Unmarshal([]byte(accounts), profile.Accounts); err != nil {
			return fmt.Errorf("corrupt accounts for user %s: %w", userID, err)
		}
	}

	if err := mutate(profile); err != nil {
		return err
	}

	settingsJSON, err := json.Marshal(profile.Settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	categoriesJSON, err := json.Marshal(profile.Categories)
	if err != nil {
		return fmt.Errorf("failed to encode categories: %w", err)
	}
	accountsJSON, err := json.Marshal(profile.Accounts)
	if err != nil {
		return fmt.Errorf("failed to encode accounts: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO profiles (user_id, theme, settings, categories, accounts_and_cards)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			theme = excluded.theme,
			settings = excluded.settings,
			categories = excluded.categories,
			accounts_and_cards = excluded.accounts_and_cards`,
		userID, profile.Theme, string(settingsJSON), string(categoriesJSON), string(accountsJSON))
	if err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit profile update: %w", err)
	}

	slog.Debug("updated profile", "user", userID)
	return nil
}
