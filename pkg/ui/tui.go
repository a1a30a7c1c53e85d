// Package ui provides the Bubble Tea TUI for the StableSwap simulator.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/fd1az/stableswap-sim/business/pool/domain"
	"github.com/fd1az/stableswap-sim/pkg/ui/components"
)

// Phase represents the current UI phase.
type Phase string

const (
	PhaseWelcome   Phase = "welcome"   // Initial welcome screen
	PhaseDashboard Phase = "dashboard" // Main dashboard
)

// WelcomeDuration is how long the welcome screen shows before auto-advancing.
const WelcomeDuration = 2 * time.Second

// ErrorEntry represents an error with timestamp.
type ErrorEntry struct {
	Message   string
	Timestamp time.Time
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	// Components
	pool    *components.PoolComponent
	history *components.HistoryComponent
	curve   *components.CurveComponent
	input   textinput.Model
	keys    KeyMap

	// Phase state
	phase        Phase
	welcomeStart time.Time

	// State
	ready      bool
	quitting   bool
	width      int
	height     int
	direction  domain.Direction
	showCurve  bool
	tokenX     string
	tokenY     string
	lastUpdate time.Time
	errors     []ErrorEntry // Persistent error panel (last 3)
	logs       []string     // Recent log messages
}

// New creates a new TUI model.
func New() Model {
	input := textinput.New()
	input.Placeholder = "amount in"
	input.CharLimit = 32
	input.Width = 20
	input.Focus()

	return Model{
		pool:         components.NewPoolComponent(),
		history:      components.NewHistoryComponent(200),
		curve:        components.NewCurveComponent(),
		input:        input,
		keys:         DefaultKeyMap(),
		phase:        PhaseWelcome,
		welcomeStart: time.Now(),
		direction:    domain.DirectionXToY,
		tokenX:       "X",
		tokenY:       "Y",
		logs:         make([]string, 0, 10),
		errors:       make([]ErrorEntry, 0, 3),
	}
}

// Init initializes the TUI model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// tickCmd returns a command that sends a tick every 100ms for smooth animations.
func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Always allow quit via ctrl+c
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		// During welcome phase, any other key skips to the dashboard
		if m.phase == PhaseWelcome {
			m.phase = PhaseDashboard
			// Trigger callback directly (don't use Send() from within Update)
			if OnStartModules != nil {
				go OnStartModules()
			}
			return m, tickCmd()
		}
		return m.handleDashboardKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case TickMsg:
		// Check if welcome timeout has elapsed
		if m.phase == PhaseWelcome && time.Since(m.welcomeStart) >= WelcomeDuration {
			m.phase = PhaseDashboard
			// Trigger callback directly (don't use Send() from within Update)
			if OnStartModules != nil {
				go OnStartModules()
			}
		}
		return m, tickCmd()

	case StateMsg:
		s := msg.State
		m.tokenX = s.TokenX
		m.tokenY = s.TokenY
		m.pool.Update(components.PoolRow{
			TokenX:        s.TokenX,
			TokenY:        s.TokenY,
			X:             s.X,
			Y:             s.Y,
			Amplification: s.Amplification,
			Invariant:     s.Invariant,
			SpotPrice:     s.SpotPrice,
			SwapCount:     s.SwapCount,
		})
		m.lastUpdate = time.Now()

	case SwapResultMsg:
		if msg.Record != nil {
			rec := msg.Record
			m.history.Add(components.SwapRow{
				Sequence:  rec.Sequence,
				Timestamp: rec.Timestamp.Format("15:04:05"),
				Direction: rec.Direction.String(),
				AmountIn:  rec.AmountIn,
				AmountOut: rec.AmountOut,
				Price:     rec.AmountOut.DivRound(rec.AmountIn, 12),
				Drift:     rec.Drift,
			})
			m.logs = addLog(m.logs, "info", fmt.Sprintf("swap #%d: %s %s in, %s out",
				rec.Sequence, rec.AmountIn.StringFixed(4), rec.Direction, rec.AmountOut.StringFixed(4)))
			m.lastUpdate = time.Now()
		}

	case TWAPMsg:
		m.pool.SetTWAP(components.TWAPRow{
			Arithmetic: msg.Point.Arithmetic,
			Geometric:  msg.Point.Geometric,
			Samples:    msg.Point.Samples,
		})
		m.lastUpdate = time.Now()

	case CurveMsg:
		rows := make([]components.CurveRow, 0, len(msg.Points))
		for _, pt := range msg.Points {
			rows = append(rows, components.CurveRow{X: pt.X, Y: pt.Y})
		}
		m.curve.Update(rows)
		m.showCurve = true
		m.lastUpdate = time.Now()

	case ErrorMsg:
		m.logs = addLog(m.logs, "error", msg.Error.Error())
		// Keep last 3 in the persistent panel
		m.errors = append(m.errors, ErrorEntry{
			Message:   msg.Error.Error(),
			Timestamp: time.Now(),
		})
		if len(m.errors) > 3 {
			m.errors = m.errors[len(m.errors)-3:]
		}

	case LogMsg:
		m.logs = addLog(m.logs, msg.Level, msg.Message)
	}

	return m, nil
}

// handleDashboardKey routes keys between the amount input and the global
// bindings. While the input is focused only enter, tab and esc are global.
func (m Model) handleDashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.input.Focused() {
		switch {
		case key.Matches(msg, m.keys.Blur):
			m.input.Blur()
			return m, nil
		case key.Matches(msg, m.keys.Direction):
			m.direction = m.direction.Opposite()
			return m, nil
		case key.Matches(msg, m.keys.Swap):
			return m.submitSwap()
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Focus):
		m.input.Focus()
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Direction):
		m.direction = m.direction.Opposite()
		return m, nil
	case key.Matches(msg, m.keys.Curve):
		if m.showCurve {
			m.showCurve = false
			return m, nil
		}
		if OnSampleCurve != nil {
			go OnSampleCurve()
		}
		return m, nil
	case key.Matches(msg, m.keys.Clear):
		m.history.Clear()
		return m, nil
	case key.Matches(msg, m.keys.Errors):
		m.errors = make([]ErrorEntry, 0, 3)
		return m, nil
	}

	switch msg.String() {
	case "up", "k":
		m.history.ScrollUp()
	case "down", "j":
		m.history.ScrollDown()
	}
	return m, nil
}

// submitSwap parses the amount input and hands the swap to the runtime.
func (m Model) submitSwap() (tea.Model, tea.Cmd) {
	raw := strings.TrimSpace(m.input.Value())
	if raw == "" {
		return m, nil
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil || !amount.IsPositive() {
		m.errors = append(m.errors, ErrorEntry{
			Message:   fmt.Sprintf("invalid amount %q", raw),
			Timestamp: time.Now(),
		})
		if len(m.errors) > 3 {
			m.errors = m.errors[len(m.errors)-3:]
		}
		return m, nil
	}
	m.input.SetValue("")
	if OnSwap != nil {
		direction := m.direction
		go OnSwap(direction, amount)
	}
	return m, nil
}

// addLog adds a log message and returns the updated slice (keeps last 5).
func addLog(logs []string, level, message string) []string {
	timestamp := time.Now().Format("15:04:05")
	logLine := fmt.Sprintf("[%s] %s: %s", timestamp, level, message)
	logs = append(logs, logLine)
	if len(logs) > 5 {
		logs = logs[len(logs)-5:]
	}
	return logs
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "\n  Goodbye!\n\n"
	}

	if m.phase == PhaseWelcome {
		return m.renderWelcomeScreen()
	}

	var b strings.Builder

	// Title
	title := TitleStyle.Render(" ⚖ StableSwap Simulator ")
	b.WriteString(title)
	b.WriteString("\n\n")

	// Status bar
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n\n")

	// Swap entry line
	b.WriteString(m.renderSwapEntry())
	b.WriteString("\n\n")

	// Main content: pool state on left, history on right
	leftCol := m.pool.View()
	if m.showCurve {
		leftCol += "\n\n" + m.curve.View()
	}

	var rightContent strings.Builder
	rightContent.WriteString(m.history.View())
	rightContent.WriteString("\n\n")
	rightContent.WriteString(m.renderLogs())
	rightCol := rightContent.String()

	// Side by side if enough width
	if m.width > 100 {
		left := BoxStyle.Width(m.width/2 - 2).Render(leftCol)
		right := BoxStyle.Width(m.width/2 - 2).Render(rightCol)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	} else {
		b.WriteString(BoxStyle.Width(m.width - 4).Render(leftCol))
		b.WriteString("\n")
		b.WriteString(BoxStyle.Width(m.width - 4).Render(rightCol))
	}

	b.WriteString("\n\n")

	// Persistent error panel (show last 3 errors)
	if len(m.errors) > 0 {
		errorStyle := lipgloss.NewStyle().Foreground(ColorDanger)
		errorHeader := lipgloss.NewStyle().Bold(true).Foreground(ColorDanger)
		mutedError := lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))

		b.WriteString(errorHeader.Render("ERRORS"))
		b.WriteString(mutedError.Render(" (e: clear)"))
		b.WriteString("\n")
		for _, err := range m.errors {
			ago := time.Since(err.Timestamp).Round(time.Second)
			b.WriteString(errorStyle.Render(fmt.Sprintf("  • %s ", err.Message)))
			b.WriteString(mutedError.Render(fmt.Sprintf("(%s ago)", ago)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	// Help
	b.WriteString(HelpStyle.Render(m.renderHelp()))

	return b.String()
}

func (m Model) renderHelp() string {
	parts := make([]string, 0, 6)
	for _, binding := range m.keys.ShortHelp() {
		help := binding.Help()
		parts = append(parts, help.Key+": "+help.Desc)
	}
	if m.input.Focused() {
		parts = append(parts, "esc: done")
	} else {
		parts = append(parts, "i: amount", "↑↓: scroll")
	}
	return strings.Join(parts, " • ")
}

// renderSwapEntry renders the amount input with the current direction.
func (m Model) renderSwapEntry() string {
	dirStyle := DirectionXToY
	label := m.tokenX + " → " + m.tokenY
	if m.direction == domain.DirectionYToX {
		dirStyle = DirectionYToX
		label = m.tokenY + " → " + m.tokenX
	}

	var sb strings.Builder
	sb.WriteString(HeaderStyle.Render("SWAP"))
	sb.WriteString("  ")
	sb.WriteString(dirStyle.Render(label))
	sb.WriteString("  ")
	sb.WriteString(m.input.View())
	return sb.String()
}

// renderLogs renders the recent log feed.
func (m Model) renderLogs() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	var sb strings.Builder
	sb.WriteString(headerStyle.Render("ACTIVITY"))
	sb.WriteString("\n\n")

	if len(m.logs) == 0 {
		sb.WriteString(mutedStyle.Render("  Waiting for swaps..."))
	} else {
		for _, line := range m.logs {
			sb.WriteString(mutedStyle.Render("  " + line))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// renderWelcomeScreen renders the animated welcome screen.
func (m Model) renderWelcomeScreen() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7C3AED"))

	mutedStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280"))

	greenStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981"))

	// Animated dots based on time
	elapsed := time.Since(m.welcomeStart)
	dotCount := int(elapsed.Milliseconds()/300) % 4
	dots := strings.Repeat(".", dotCount)

	var sb strings.Builder

	sb.WriteString("\n\n\n\n")

	logo := `
   ███████╗████████╗ █████╗ ██████╗ ██╗     ███████╗
   ██╔════╝╚══██╔══╝██╔══██╗██╔══██╗██║     ██╔════╝
   ███████╗   ██║   ███████║██████╔╝██║     █████╗
   ╚════██║   ██║   ██╔══██║██╔══██╗██║     ██╔══╝
   ███████║   ██║   ██║  ██║██████╔╝███████╗███████╗
   ╚══════╝   ╚═╝   ╚═╝  ╚═╝╚═════╝ ╚══════╝╚══════╝
`
	sb.WriteString(titleStyle.Render(logo))
	sb.WriteString("\n")

	subtitle := "           S W A P   S I M U L A T O R"
	sb.WriteString(mutedStyle.Render(subtitle))
	sb.WriteString("\n\n\n")

	loading := fmt.Sprintf("                  Initializing%s", dots)
	sb.WriteString(greenStyle.Render(loading))
	sb.WriteString("\n\n")

	hint := "            Press any key to skip, or wait..."
	sb.WriteString(mutedStyle.Render(hint))
	sb.WriteString("\n")

	return sb.String()
}

func (m Model) renderStatusBar() string {
	var parts []string

	dirStyle := DirectionXToY
	if m.direction == domain.DirectionYToX {
		dirStyle = DirectionYToX
	}
	parts = append(parts, dirStyle.Render("⇄ "+m.direction.String()))

	if m.showCurve {
		parts = append(parts, MutedValue.Render("curve on"))
	}

	// Last update with activity indicator
	if !m.lastUpdate.IsZero() {
		ago := time.Since(m.lastUpdate).Round(time.Second)
		indicator := ""
		if ago < 2*time.Second {
			indicator = "▪" // Recent activity indicator
		}
		parts = append(parts, MutedValue.Render(fmt.Sprintf("Updated: %s ago %s", ago, indicator)))
	}

	return strings.Join(parts, "  │  ")
}

// Program holds the Bubble Tea program instance for external access.
var Program *tea.Program

// OnStartModules is called when the welcome screen completes and modules
// should start. Set by main.go.
var OnStartModules func()

// OnSwap is called when the user submits a swap. Set by main.go; runs
// outside the Update loop.
var OnSwap func(direction domain.Direction, amountIn decimal.Decimal)

// OnSampleCurve is called when the user asks for a fresh curve sample.
var OnSampleCurve func()

// Run starts the Bubble Tea program.
func Run() error {
	Program = tea.NewProgram(New(), tea.WithAltScreen())
	_, err := Program.Run()
	return err
}

// Send sends a message to the running program.
func Send(msg tea.Msg) {
	if Program != nil {
		Program.Send(msg)
	}
	if _, ok := msg.(StartModulesMsg); ok && OnStartModules != nil {
		OnStartModules()
	}
}
