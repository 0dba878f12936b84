package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/receipt-tracker/internal/service"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C9A5E"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C9A5E")).
			MarginTop(1)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#7C9A5E"))

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
)

// View renders the receipt list grouped by date, newest first.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	sortLabel := "receipt date"
	if m.sortBy == service.SortByAdded {
		sortLabel = "date added"
	}
	b.WriteString(titleStyle.Render("🧾 Receipts"))
	b.WriteString(subtleStyle.Render(fmt.Sprintf("  sorted by %s", sortLabel)))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	}

	lastHeader := ""
	for i, receipt := range m.receipts {
		when := receipt.Date
		if m.sortBy == service.SortByAdded {
			when = receipt.AddedAt
		}
		header := when.Format("Monday, January 2 2006")
		if header != lastHeader {
			b.WriteString(headerStyle.Render(header))
			b.WriteString("\n")
			lastHeader = header
		}

		line := fmt.Sprintf("%-30s %-16s %10.2f", clip(receipt.Title, 30), clip(receipt.Category, 16), receipt.TotalCost)
		if receipt.Repeating {
			line += " 🔁"
		}
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	switch {
	case m.loading:
		b.WriteString(m.spinner.View() + " loading...\n")
	case len(m.receipts) == 0:
		b.WriteString(subtleStyle.Render("No receipts yet.") + "\n")
	case m.ended:
		b.WriteString(subtleStyle.Render("End of receipts.") + "\n")
	default:
		b.WriteString(subtleStyle.Render("Press m for more.") + "\n")
	}

	b.WriteString(subtleStyle.Render("\n↑/k up · ↓/j down · m more · s sort · q quit\n"))
	return b.String()
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
