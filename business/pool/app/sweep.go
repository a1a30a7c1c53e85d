package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fd1az/stableswap-sim/business/pool/domain"
)

// SweepPoint is the spot price at one hypothetical (ratio, amplification)
// combination.
type SweepPoint struct {
	Ratio         decimal.Decimal
	Amplification decimal.Decimal
	Price         decimal.Decimal
}

// SweepAmplification evaluates how amplification shapes the price curve.
// For each ratio r the current balances are skewed to (x*r, y/r), the
// invariant is re-solved per amplification value and the spot price
// recorded. The pool itself is never modified. Combinations where the
// solver fails are skipped.
func (e *Engine) SweepAmplification(ctx context.Context, ratios, amps []decimal.Decimal) ([]SweepPoint, error) {
	e.mu.Lock()
	x := e.pool.X()
	y := e.pool.Y()
	cfg := e.pool.Solver()
	e.mu.Unlock()

	points := make([]SweepPoint, 0, len(ratios)*len(amps))
	for _, amp := range amps {
		for _, ratio := range ratios {
			if ratio.Sign() <= 0 {
				continue
			}
			xh := x.Mul(ratio)
			yh := y.DivRound(ratio, domain.DivPrecision)

			d, diag, err := domain.ComputeInvariant(xh, yh, amp, cfg)
			if err != nil {
				e.log.Debug(ctx, "sweep point skipped",
					"ratio", ratio.String(),
					"amplification", amp.String(),
					"error", err,
				)
				continue
			}
			e.obs.SolveCompleted(ctx, "sweep", diag)

			price, err := domain.SpotPrice(xh, yh, d, amp)
			if err != nil {
				continue
			}
			points = append(points, SweepPoint{
				Ratio:         ratio,
				Amplification: amp,
				Price:         price,
			})
		}
	}
	return points, nil
}
