// Package app contains application services and port definitions for the pool context.
package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fd1az/stableswap-sim/business/pool/domain"
)

// Observer receives engine events. Implementations must be cheap and must
// not call back into the engine.
type Observer interface {
	// SwapExecuted is called once per committed swap.
	SwapExecuted(ctx context.Context, record *domain.SwapRecord)

	// PriceSampled is called when a spot price observation is recorded.
	PriceSampled(ctx context.Context, point domain.PricePoint)

	// SolveCompleted reports root-finder diagnostics for a named operation.
	SolveCompleted(ctx context.Context, operation string, diag domain.Diagnostics)
}

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) SwapExecuted(context.Context, *domain.SwapRecord)          {}
func (NopObserver) PriceSampled(context.Context, domain.PricePoint)           {}
func (NopObserver) SolveCompleted(context.Context, string, domain.Diagnostics) {}

var _ Observer = NopObserver{}

// ReserveSource supplies initial pool balances from an external system,
// for example on-chain token reserves.
type ReserveSource interface {
	// FetchReserves returns the current (x, y) balances.
	FetchReserves(ctx context.Context) (decimal.Decimal, decimal.Decimal, error)
}
