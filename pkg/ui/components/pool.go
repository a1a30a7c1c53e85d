// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// PoolRow holds the pool snapshot for display.
type PoolRow struct {
	TokenX        string
	TokenY        string
	X             decimal.Decimal
	Y             decimal.Decimal
	Amplification decimal.Decimal
	Invariant     decimal.Decimal
	SpotPrice     decimal.Decimal
	SwapCount     int
}

// TWAPRow holds the latest TWAP observation for display.
type TWAPRow struct {
	Arithmetic decimal.Decimal
	Geometric  decimal.Decimal
	Samples    int
}

// PoolComponent renders the pool state panel.
type PoolComponent struct {
	row  *PoolRow
	twap *TWAPRow
}

// NewPoolComponent creates a new pool component.
func NewPoolComponent() *PoolComponent {
	return &PoolComponent{}
}

// Update replaces the displayed snapshot.
func (p *PoolComponent) Update(row PoolRow) {
	p.row = &row
}

// SetTWAP sets the latest TWAP observation.
func (p *PoolComponent) SetTWAP(row TWAPRow) {
	p.twap = &row
}

// View renders the pool component.
func (p *PoolComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	warnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))

	if p.row == nil {
		return "Waiting for pool state..."
	}
	r := p.row

	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("POOL (%s/%s)", r.TokenX, r.TokenY)))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  %-14s %s\n", r.TokenX+" balance", valueStyle.Render(r.X.StringFixed(6))))
	sb.WriteString(fmt.Sprintf("  %-14s %s\n", r.TokenY+" balance", valueStyle.Render(r.Y.StringFixed(6))))
	sb.WriteString(fmt.Sprintf("  %-14s %s\n", "Invariant D", warnStyle.Render(r.Invariant.StringFixed(6))))
	sb.WriteString(fmt.Sprintf("  %-14s %s\n", "Amplification", dimStyle.Render(r.Amplification.String())))
	sb.WriteString(fmt.Sprintf("  %-14s %s\n", "Spot price", valueStyle.Render(r.SpotPrice.StringFixed(10))))
	sb.WriteString(fmt.Sprintf("  %-14s %s\n", "Swaps", dimStyle.Render(fmt.Sprintf("%d", r.SwapCount))))

	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render("  " + strings.Repeat("─", 40)))
	sb.WriteString("\n")

	if p.twap != nil {
		sb.WriteString(headerStyle.Render("  TWAP"))
		sb.WriteString("\n\n")
		sb.WriteString(fmt.Sprintf("  %-14s %s\n", "Arithmetic", valueStyle.Render(p.twap.Arithmetic.StringFixed(10))))
		sb.WriteString(fmt.Sprintf("  %-14s %s\n", "Geometric", valueStyle.Render(p.twap.Geometric.StringFixed(10))))
		sb.WriteString(fmt.Sprintf("  %-14s %s\n", "Window", dimStyle.Render(fmt.Sprintf("%d samples", p.twap.Samples))))
	} else {
		sb.WriteString(dimStyle.Render("  TWAP: filling window..."))
		sb.WriteString("\n")
	}

	return sb.String()
}
