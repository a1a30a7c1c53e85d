// Package telemetry records engine events as OTEL metrics.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/fd1az/stableswap-sim/business/pool/app"
	"github.com/fd1az/stableswap-sim/business/pool/domain"
)

const meterName = "stableswap"

// Ensure Observer implements the engine port.
var _ app.Observer = (*Observer)(nil)

// Observer exports swap, price and solver activity as metrics.
type Observer struct {
	swapsTotal       metric.Int64Counter
	invariantDrift   metric.Float64Histogram
	solverIterations metric.Int64Histogram
	spotPrice        metric.Float64Gauge
}

// NewObserver creates the metric instruments on the global meter provider.
func NewObserver() (*Observer, error) {
	meter := otel.Meter(meterName)
	o := &Observer{}
	var err error

	o.swapsTotal, err = meter.Int64Counter(
		"stableswap_swaps_total",
		metric.WithDescription("Total executed swaps"),
	)
	if err != nil {
		return nil, err
	}

	o.invariantDrift, err = meter.Float64Histogram(
		"stableswap_invariant_drift",
		metric.WithDescription("Absolute invariant drift per swap"),
	)
	if err != nil {
		return nil, err
	}

	o.solverIterations, err = meter.Int64Histogram(
		"stableswap_solver_iterations",
		metric.WithDescription("Root-finder iterations per solve"),
	)
	if err != nil {
		return nil, err
	}

	o.spotPrice, err = meter.Float64Gauge(
		"stableswap_spot_price",
		metric.WithDescription("Spot price of Y in units of X"),
	)
	if err != nil {
		return nil, err
	}

	return o, nil
}

// SwapExecuted records the swap count and its invariant drift.
func (o *Observer) SwapExecuted(ctx context.Context, record *domain.SwapRecord) {
	o.swapsTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("direction", string(record.Direction))))
	drift, _ := record.Drift.Float64()
	o.invariantDrift.Record(ctx, drift)
}

// PriceSampled updates the spot price gauge.
func (o *Observer) PriceSampled(ctx context.Context, point domain.PricePoint) {
	price, _ := point.Price.Float64()
	o.spotPrice.Record(ctx, price)
}

// SolveCompleted records solver effort per operation.
func (o *Observer) SolveCompleted(ctx context.Context, operation string, diag domain.Diagnostics) {
	o.solverIterations.Record(ctx, int64(diag.Iterations),
		metric.WithAttributes(attribute.String("operation", operation)))
}
