// Package tui implements the interactive receipt list: an append-only
// paginated view over completed receipts with a sort toggle.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/receipt-tracker/internal/model"
	"github.com/Veraticus/receipt-tracker/internal/service"
)

// Lister is the slice of storage the list model needs.
type Lister interface {
	ListReceipts(ctx context.Context, userID string, filter service.ReceiptFilter) ([]model.Receipt, error)
}

// Model is the bubbletea model for the receipt list.
type Model struct {
	ctx    context.Context
	store  Lister
	userID string

	keys    KeyMap
	spinner spinner.Model

	receipts []model.Receipt
	sortBy   service.SortKey
	pageSize int
	cursor   int
	gen      int
	loading  bool
	ended    bool
	err      error
	quitting bool
}

// NewModel creates the list model. Loading starts on Init.
func NewModel(ctx context.Context, store Lister, userID string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		ctx:      ctx,
		store:    store,
		userID:   userID,
		keys:     DefaultKeyMap(),
		spinner:  sp,
		sortBy:   service.SortByDate,
		pageSize: service.DefaultPageSize,
	}
}

// Init starts the spinner and loads the first page.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadPage(0))
}

// loadPage fetches the page starting at offset with the current sort.
// The page carries the generation it was requested under.
func (m Model) loadPage(offset int) tea.Cmd {
	ctx, store, userID, gen := m.ctx, m.store, m.userID, m.gen
	filter := service.ReceiptFilter{SortBy: m.sortBy, Limit: m.pageSize, Offset: offset}
	return func() tea.Msg {
		receipts, err := store.ListReceipts(ctx, userID, filter)
		if err != nil {
			return loadFailedMsg{err: err}
		}
		return pageLoadedMsg{receipts: receipts, offset: offset, gen: gen}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case pageLoadedMsg:
		// Pages requested before a sort switch belong to a list that no
		// longer exists, even when their offset happens to line up.
		if msg.gen != m.gen {
			return m, nil
		}
		m.loading = false
		m.err = nil
		if msg.offset != len(m.receipts) {
			return m, nil
		}
		m.receipts = append(m.receipts, msg.receipts...)
		if len(msg.receipts) < m.pageSize {
			m.ended = true
		}
		return m, nil

	case loadFailedMsg:
		m.loading = false
		m.err = msg.err
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.ForceQuit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.receipts)-1 {
			m.cursor++
			return m, nil
		}
		// Walking past the end pulls in the next page.
		return m.loadMore()

	case key.Matches(msg, m.keys.LoadMore):
		return m.loadMore()

	case key.Matches(msg, m.keys.ToggleSort):
		if m.sortBy == service.SortByDate {
			m.sortBy = service.SortByAdded
		} else {
			m.sortBy = service.SortByDate
		}
		// A sort switch throws away everything accumulated so far,
		// including any page still in flight.
		m.gen++
		m.receipts = nil
		m.cursor = 0
		m.ended = false
		m.loading = true
		return m, m.loadPage(0)
	}

	return m, nil
}

func (m Model) loadMore() (tea.Model, tea.Cmd) {
	if m.loading || m.ended {
		return m, nil
	}
	m.loading = true
	return m, m.loadPage(len(m.receipts))
}

// Receipts exposes the accumulated rows.
func (m Model) Receipts() []model.Receipt {
	return m.receipts
}

// SortBy exposes the active sort key.
func (m Model) SortBy() service.SortKey {
	return m.sortBy
}
