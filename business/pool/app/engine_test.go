package app

import (
	"context"
	"io"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fd1az/stableswap-sim/business/pool/domain"
	"github.com/fd1az/stableswap-sim/internal/apperror"
	"github.com/fd1az/stableswap-sim/internal/logger"
)

type recordingObserver struct {
	swaps  []*domain.SwapRecord
	prices []domain.PricePoint
	solves []string
}

func (r *recordingObserver) SwapExecuted(_ context.Context, rec *domain.SwapRecord) {
	r.swaps = append(r.swaps, rec)
}

func (r *recordingObserver) PriceSampled(_ context.Context, pt domain.PricePoint) {
	r.prices = append(r.prices, pt)
}

func (r *recordingObserver) SolveCompleted(_ context.Context, op string, _ domain.Diagnostics) {
	r.solves = append(r.solves, op)
}

func assertWithin(t *testing.T, field string, got decimal.Decimal, want, tol string) {
	t.Helper()
	wantD := decimal.RequireFromString(want)
	tolD := decimal.RequireFromString(tol)
	if got.Sub(wantD).Abs().GreaterThan(tolD) {
		t.Errorf("%s = %s, want %s (tolerance %s)", field, got, want, tol)
	}
}

func newTestEngine(t *testing.T) (*Engine, *recordingObserver) {
	t.Helper()
	pool, err := domain.NewPool(
		"USDC", "USDT",
		decimal.NewFromInt(1000),
		decimal.NewFromInt(1000),
		decimal.NewFromInt(100),
		decimal.RequireFromString("0.000001"),
		domain.DefaultSolverConfig(),
	)
	if err != nil {
		t.Fatalf("NewPool() error = %v", err)
	}
	obs := &recordingObserver{}
	log := logger.New(io.Discard, logger.LevelError, "test", nil)
	return NewEngine(pool, log, obs), obs
}

func TestEngine_QuoteDY(t *testing.T) {
	engine, obs := newTestEngine(t)
	ctx := context.Background()

	quote, err := engine.QuoteDY(ctx, decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("QuoteDY() error = %v", err)
	}

	assertWithin(t, "AmountOut", quote.AmountOut, "99.9497767700754459669328745", "0.000000001")
	if len(obs.solves) != 1 || obs.solves[0] != "quote_output" {
		t.Errorf("solves = %v, want one quote_output", obs.solves)
	}

	state, err := engine.State(ctx)
	if err != nil {
		t.Fatalf("State() error = %v", err)
	}
	if !state.X.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("quote mutated pool: X = %s", state.X)
	}
}

func TestEngine_QuoteDX(t *testing.T) {
	// Directions mirror each other on a balanced pool.
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	dy, err := engine.QuoteDY(ctx, decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("QuoteDY() error = %v", err)
	}
	dx, err := engine.QuoteDX(ctx, decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("QuoteDX() error = %v", err)
	}

	diff := dy.AmountOut.Sub(dx.AmountOut).Abs()
	assertWithin(t, "direction asymmetry", diff, "0", "0.000000001")
}

func TestEngine_ExecuteSwap(t *testing.T) {
	engine, obs := newTestEngine(t)
	ctx := context.Background()

	record, err := engine.ExecuteSwap(ctx, domain.DirectionXToY, decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("ExecuteSwap() error = %v", err)
	}
	assertWithin(t, "AmountOut", record.AmountOut, "99.9497767700754459669328745", "0.000000001")

	history := engine.History()
	if len(history) != 3 {
		t.Fatalf("history length = %d, want 3", len(history))
	}
	if history[0].Price == nil {
		t.Error("history must open with the initial price point")
	}
	if history[1].Swap == nil || history[2].Price == nil {
		t.Error("history must hold the swap record followed by the price point")
	}
	if history[1].Swap.Sequence != 1 {
		t.Errorf("Sequence = %d, want 1", history[1].Swap.Sequence)
	}
	if !history[2].Price.X.Equal(history[1].Swap.XAfter) {
		t.Error("price point must snapshot the post-swap balances")
	}

	if len(obs.swaps) != 1 {
		t.Errorf("observer swaps = %d, want 1", len(obs.swaps))
	}
	if len(obs.prices) != 1 {
		t.Errorf("observer prices = %d, want 1", len(obs.prices))
	}

	state, err := engine.State(ctx)
	if err != nil {
		t.Fatalf("State() error = %v", err)
	}
	if state.SwapCount != 1 {
		t.Errorf("SwapCount = %d, want 1", state.SwapCount)
	}
	assertWithin(t, "X", state.X, "1100", "0")
}

func TestEngine_ExecuteSwap_RejectedLeavesNoTrace(t *testing.T) {
	engine, obs := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.ExecuteSwap(ctx, domain.DirectionXToY, decimal.NewFromInt(-5))
	if !apperror.IsCode(err, apperror.CodeDomainError) {
		t.Fatalf("ExecuteSwap() error = %v, want DOMAIN_ERROR", err)
	}

	if len(engine.History()) != 1 {
		t.Error("rejected swap must not be recorded")
	}
	if len(obs.swaps) != 0 {
		t.Error("rejected swap must not reach the observer")
	}
}

func TestEngine_SampleCurve(t *testing.T) {
	engine, _ := newTestEngine(t)

	xs := []decimal.Decimal{
		decimal.NewFromInt(800),
		decimal.NewFromInt(1000),
		decimal.NewFromInt(1200),
	}

	seq := engine.SampleCurve(xs)

	collect := func() []CurvePoint {
		var points []CurvePoint
		for pt, err := range seq {
			if err != nil {
				t.Fatalf("SampleCurve yielded error at x=%s: %v", pt.X, err)
			}
			points = append(points, pt)
		}
		return points
	}

	first := collect()
	if len(first) != 3 {
		t.Fatalf("points = %d, want 3", len(first))
	}

	// Every sampled point sits on the invariant curve.
	d := decimal.NewFromInt(2000)
	amp := decimal.NewFromInt(100)
	for _, pt := range first {
		res, err := domain.Residual(pt.X, pt.Y, d, amp)
		if err != nil {
			t.Fatalf("Residual() error = %v", err)
		}
		assertWithin(t, "residual at x="+pt.X.String(), res, "0", "0.0000000001")
	}

	// The balanced point must come back exactly.
	assertWithin(t, "y at x=1000", first[1].Y, "1000", "0.000000001")

	// Ranging again replays the same points.
	second := collect()
	for i := range first {
		if !first[i].Y.Equal(second[i].Y) {
			t.Errorf("restart diverged at %d: %s vs %s", i, first[i].Y, second[i].Y)
		}
	}
}

func TestEngine_SampleCurve_InfeasiblePoint(t *testing.T) {
	engine, _ := newTestEngine(t)

	seq := engine.SampleCurve([]decimal.Decimal{
		decimal.Zero,
		decimal.NewFromInt(1000),
	})

	var errs, oks int
	for _, err := range seq {
		if err != nil {
			errs++
		} else {
			oks++
		}
	}
	if errs != 1 || oks != 1 {
		t.Errorf("errs = %d, oks = %d, want 1 and 1", errs, oks)
	}
}
