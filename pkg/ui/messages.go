// Package ui provides the Bubble Tea TUI for the StableSwap simulator.
package ui

import (
	poolApp "github.com/fd1az/stableswap-sim/business/pool/app"
	"github.com/fd1az/stableswap-sim/business/pool/domain"
	twapApp "github.com/fd1az/stableswap-sim/business/twap/app"
)

// Message types for TUI updates

// StateMsg is sent with a fresh pool snapshot.
type StateMsg struct {
	State poolApp.State
}

// SwapResultMsg is sent after a swap commits.
type SwapResultMsg struct {
	Record *domain.SwapRecord
}

// TWAPMsg is sent when a full TWAP window is observed.
type TWAPMsg struct {
	Point twapApp.Point
}

// CurveMsg is sent with freshly sampled invariant curve points.
type CurveMsg struct {
	Points []poolApp.CurvePoint
}

// ErrorMsg is sent when an error occurs.
type ErrorMsg struct {
	Error error
}

// TickMsg is sent periodically for UI updates.
type TickMsg struct{}

// StartModulesMsg signals that modules should start loading.
type StartModulesMsg struct{}

// LogMsg is sent to display a log message in the UI.
type LogMsg struct {
	Level   string // "info", "warn", "error"
	Message string
}
