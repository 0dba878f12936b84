package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive receipt list and blocks until the user
// quits.
func Run(ctx context.Context, store Lister, userID string) error {
	program := tea.NewProgram(NewModel(ctx, store, userID), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("receipt list failed: %w", err)
	}
	return nil
}
