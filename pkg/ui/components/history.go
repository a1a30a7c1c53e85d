// Package components provides reusable TUI components.
package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// SwapRow represents an executed swap in the history list.
type SwapRow struct {
	Sequence  int
	Timestamp string
	Direction string
	AmountIn  decimal.Decimal
	AmountOut decimal.Decimal
	Price     decimal.Decimal
	Drift     decimal.Decimal
}

// HistoryComponent renders the swap history list, newest first.
type HistoryComponent struct {
	rows    []SwapRow
	maxRows int
	offset  int
	visible int
}

// NewHistoryComponent creates a new history component.
func NewHistoryComponent(maxRows int) *HistoryComponent {
	return &HistoryComponent{
		rows:    make([]SwapRow, 0),
		maxRows: maxRows,
		visible: 10,
	}
}

// Add prepends a new swap to the list.
func (h *HistoryComponent) Add(row SwapRow) {
	h.rows = append([]SwapRow{row}, h.rows...)
	if len(h.rows) > h.maxRows {
		h.rows = h.rows[:h.maxRows]
	}
	h.offset = 0
}

// Clear clears the history.
func (h *HistoryComponent) Clear() {
	h.rows = make([]SwapRow, 0)
	h.offset = 0
}

// ScrollUp scrolls toward older entries.
func (h *HistoryComponent) ScrollUp() {
	if h.offset+h.visible < len(h.rows) {
		h.offset++
	}
}

// ScrollDown scrolls toward newer entries.
func (h *HistoryComponent) ScrollDown() {
	if h.offset > 0 {
		h.offset--
	}
}

// View renders the history component.
func (h *HistoryComponent) View() string {
	if len(h.rows) == 0 {
		return "No swaps executed yet..."
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	xtoYStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	ytoXStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))

	result := headerStyle.Render(fmt.Sprintf("SWAPS (last %d)\n", h.maxRows))
	result += "┌─────┬──────────┬───────────┬────────────┬────────────┬──────────────┐\n"
	result += "│  #  │   Time   │ Direction │     In     │    Out     │    Price     │\n"
	result += "├─────┼──────────┼───────────┼────────────┼────────────┼──────────────┤\n"

	end := h.offset + h.visible
	if end > len(h.rows) {
		end = len(h.rows)
	}
	for _, row := range h.rows[h.offset:end] {
		dirStyle := xtoYStyle
		if row.Direction == "Y → X" {
			dirStyle = ytoXStyle
		}
		result += fmt.Sprintf("│%4d │ %8s │ %s │%11s │%11s │%13s │\n",
			row.Sequence,
			row.Timestamp,
			dirStyle.Render(fmt.Sprintf("%9s", row.Direction)),
			row.AmountIn.StringFixed(4),
			row.AmountOut.StringFixed(4),
			row.Price.StringFixed(8),
		)
	}

	result += "└─────┴──────────┴───────────┴────────────┴────────────┴──────────────┘"

	return result
}
