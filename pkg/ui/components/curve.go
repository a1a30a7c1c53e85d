// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// CurveRow is one sampled point on the invariant curve.
type CurveRow struct {
	X decimal.Decimal
	Y decimal.Decimal
}

// CurveComponent renders a sampled slice of the invariant curve as an
// aligned table with a bar per row so the shape reads at a glance.
type CurveComponent struct {
	rows []CurveRow
}

// NewCurveComponent creates a new curve component.
func NewCurveComponent() *CurveComponent {
	return &CurveComponent{}
}

// Update replaces the sampled points.
func (c *CurveComponent) Update(rows []CurveRow) {
	c.rows = rows
}

// View renders the curve component.
func (c *CurveComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	barStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#60A5FA"))

	var sb strings.Builder
	sb.WriteString(headerStyle.Render("INVARIANT CURVE"))
	sb.WriteString("\n\n")

	if len(c.rows) == 0 {
		sb.WriteString(dimStyle.Render("  Press v to sample the curve..."))
		return sb.String()
	}

	maxY := decimal.Zero
	for _, row := range c.rows {
		if row.Y.GreaterThan(maxY) {
			maxY = row.Y
		}
	}

	sb.WriteString(fmt.Sprintf("  %12s  %12s\n", "x", "y"))
	sb.WriteString(dimStyle.Render("  " + strings.Repeat("─", 46)))
	sb.WriteString("\n")

	const barWidth = 18
	for _, row := range c.rows {
		bar := ""
		if maxY.IsPositive() {
			n := int(row.Y.Div(maxY).Mul(decimal.NewFromInt(barWidth)).IntPart())
			if n < 1 {
				n = 1
			}
			bar = strings.Repeat("█", n)
		}
		sb.WriteString(fmt.Sprintf("  %12s  %12s  %s\n",
			row.X.StringFixed(2),
			row.Y.StringFixed(2),
			barStyle.Render(bar),
		))
	}

	return sb.String()
}
