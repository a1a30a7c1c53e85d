package app

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
)

func TestEngine_SweepAmplification(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	ratios := []decimal.Decimal{
		decimal.NewFromInt(1),
		decimal.RequireFromString("1.5"),
	}
	amps := []decimal.Decimal{
		decimal.NewFromInt(10),
		decimal.NewFromInt(1000000),
	}

	points, err := engine.SweepAmplification(ctx, ratios, amps)
	if err != nil {
		t.Fatalf("SweepAmplification() error = %v", err)
	}
	if len(points) != 4 {
		t.Fatalf("points = %d, want 4", len(points))
	}

	for _, pt := range points {
		switch {
		case pt.Ratio.Equal(decimal.NewFromInt(1)):
			// Balanced pool prices at exactly 1 for every amplification.
			assertWithin(t, "price at ratio 1", pt.Price, "1", "0.000001")
		case pt.Amplification.Equal(decimal.NewFromInt(1000000)):
			// Heavy amplification pins even a skewed pool near 1.
			assertWithin(t, "price at high amp", pt.Price, "1", "0.001")
		default:
			// Skewed pool at modest amplification prices below 1:
			// X is abundant, so a unit of Y buys less X.
			if pt.Price.GreaterThanOrEqual(decimal.NewFromInt(1)) {
				t.Errorf("price at ratio %s amp %s = %s, want < 1",
					pt.Ratio, pt.Amplification, pt.Price)
			}
		}
	}

	// The sweep is a pure query.
	state, err := engine.State(ctx)
	if err != nil {
		t.Fatalf("State() error = %v", err)
	}
	if !state.X.Equal(decimal.NewFromInt(1000)) || !state.Y.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("sweep mutated pool: X=%s Y=%s", state.X, state.Y)
	}
}

func TestEngine_SweepAmplification_SkipsBadRatios(t *testing.T) {
	engine, _ := newTestEngine(t)

	points, err := engine.SweepAmplification(context.Background(),
		[]decimal.Decimal{decimal.Zero, decimal.NewFromInt(1)},
		[]decimal.Decimal{decimal.NewFromInt(100)},
	)
	if err != nil {
		t.Fatalf("SweepAmplification() error = %v", err)
	}
	if len(points) != 1 {
		t.Errorf("points = %d, want 1 (zero ratio skipped)", len(points))
	}
}
