package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/stableswap-sim/internal/apperror"
)

func newTestPool(t *testing.T, x, y, amp string) *Pool {
	t.Helper()
	pool, err := NewPool(
		"USDC", "USDT",
		decimal.RequireFromString(x),
		decimal.RequireFromString(y),
		decimal.RequireFromString(amp),
		decimal.RequireFromString("0.000001"),
		DefaultSolverConfig(),
	)
	if err != nil {
		t.Fatalf("NewPool() error = %v", err)
	}
	return pool
}

func TestNewPool(t *testing.T) {
	pool := newTestPool(t, "1000", "1000", "100")

	assertWithin(t, "D", pool.Invariant(), "2000", "0.000000001")
	if !pool.X().Equal(decimal.NewFromInt(1000)) {
		t.Errorf("X = %s, want 1000", pool.X())
	}
	if !pool.Y().Equal(decimal.NewFromInt(1000)) {
		t.Errorf("Y = %s, want 1000", pool.Y())
	}
}

func TestNewPool_Validation(t *testing.T) {
	tests := []struct {
		name     string
		tokenX   string
		tokenY   string
		x        string
		y        string
		amp      string
		driftTol string
		wantCode apperror.Code
	}{
		{"missing_token_symbol", "", "USDT", "1000", "1000", "100", "0.000001", apperror.CodeRequiredField},
		{"zero_x_balance", "USDC", "USDT", "0", "1000", "100", "0.000001", apperror.CodeDomainError},
		{"negative_y_balance", "USDC", "USDT", "1000", "-5", "100", "0.000001", apperror.CodeDomainError},
		{"zero_amplification", "USDC", "USDT", "1000", "1000", "0", "0.000001", apperror.CodeDomainError},
		{"zero_drift_tolerance", "USDC", "USDT", "1000", "1000", "100", "0", apperror.CodeDomainError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPool(
				tt.tokenX, tt.tokenY,
				decimal.RequireFromString(tt.x),
				decimal.RequireFromString(tt.y),
				decimal.RequireFromString(tt.amp),
				decimal.RequireFromString(tt.driftTol),
				DefaultSolverConfig(),
			)
			if !apperror.IsCode(err, tt.wantCode) {
				t.Errorf("NewPool() error = %v, want %s", err, tt.wantCode)
			}
		})
	}
}

func TestQuoteOutput(t *testing.T) {
	pool := newTestPool(t, "1000", "1000", "100")

	quote, err := pool.QuoteOutput(DirectionXToY, decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("QuoteOutput() error = %v", err)
	}

	assertWithin(t, "AmountOut", quote.AmountOut, "99.9497767700754459669328745", "0.000000001")
	assertWithin(t, "NewX", quote.NewX, "1100", "0")
	assertWithin(t, "NewY", quote.NewY, "900.0502232299245540330671254", "0.000000001")
	assertWithin(t, "SpotPriceAfter", quote.SpotPriceAfter, "0.9989753617704496", "0.00000001")

	// Output must be less than input: the marginal price of Y moved
	// against the trader during the swap.
	if quote.AmountOut.GreaterThanOrEqual(quote.AmountIn) {
		t.Errorf("AmountOut %s >= AmountIn %s", quote.AmountOut, quote.AmountIn)
	}

	// Quoting must not touch pool state.
	if !pool.X().Equal(decimal.NewFromInt(1000)) || !pool.Y().Equal(decimal.NewFromInt(1000)) {
		t.Errorf("pool mutated by quote: X=%s Y=%s", pool.X(), pool.Y())
	}
}

func TestQuoteOutput_SymmetricDirections(t *testing.T) {
	// On a balanced pool the two directions are mirror images.
	pool := newTestPool(t, "1000", "1000", "100")
	in := decimal.NewFromInt(100)

	xToY, err := pool.QuoteOutput(DirectionXToY, in)
	if err != nil {
		t.Fatalf("QuoteOutput(XToY) error = %v", err)
	}
	yToX, err := pool.QuoteOutput(DirectionYToX, in)
	if err != nil {
		t.Fatalf("QuoteOutput(YToX) error = %v", err)
	}

	diff := xToY.AmountOut.Sub(yToX.AmountOut).Abs()
	assertWithin(t, "output difference", diff, "0", "0.000000001")
}

func TestQuoteOutput_Invalid(t *testing.T) {
	pool := newTestPool(t, "1000", "1000", "100")

	t.Run("unknown_direction", func(t *testing.T) {
		_, err := pool.QuoteOutput(Direction("SIDEWAYS"), decimal.NewFromInt(10))
		if !apperror.IsCode(err, apperror.CodeInvalidInput) {
			t.Errorf("error = %v, want INVALID_INPUT", err)
		}
	})

	t.Run("non_positive_input", func(t *testing.T) {
		_, err := pool.QuoteOutput(DirectionXToY, decimal.Zero)
		if !apperror.IsCode(err, apperror.CodeDomainError) {
			t.Errorf("error = %v, want DOMAIN_ERROR", err)
		}
	})
}

func TestQuoteInput_RoundTrip(t *testing.T) {
	// Asking for the output of a 100 X deposit, then asking what deposit
	// produces that output, must land back on 100.
	pool := newTestPool(t, "1000", "1000", "100")

	forward, err := pool.QuoteOutput(DirectionXToY, decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("QuoteOutput() error = %v", err)
	}

	inverse, err := pool.QuoteInput(DirectionXToY, forward.AmountOut)
	if err != nil {
		t.Fatalf("QuoteInput() error = %v", err)
	}

	assertWithin(t, "AmountIn", inverse.AmountIn, "100", "0.000001")
}

func TestQuoteInput_InsufficientLiquidity(t *testing.T) {
	pool := newTestPool(t, "1000", "1000", "100")

	_, err := pool.QuoteInput(DirectionXToY, decimal.NewFromInt(1000))
	if !apperror.IsCode(err, apperror.CodeInsufficientLiquidity) {
		t.Errorf("QuoteInput() error = %v, want INSUFFICIENT_LIQUIDITY", err)
	}
}

func TestSwap(t *testing.T) {
	pool := newTestPool(t, "1000", "1000", "100")
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	record, err := pool.Swap(DirectionXToY, decimal.NewFromInt(100), now)
	if err != nil {
		t.Fatalf("Swap() error = %v", err)
	}

	if record.Sequence != 1 {
		t.Errorf("Sequence = %d, want 1", record.Sequence)
	}
	if !record.Timestamp.Equal(now) {
		t.Errorf("Timestamp = %v, want %v", record.Timestamp, now)
	}
	assertWithin(t, "AmountOut", record.AmountOut, "99.9497767700754459669328745", "0.000000001")
	assertWithin(t, "XAfter", record.XAfter, "1100", "0")
	assertWithin(t, "YAfter", record.YAfter, "900.0502232299245540330671254", "0.000000001")
	assertWithin(t, "InvariantAfter", record.InvariantAfter, "2000", "0.000001")

	if record.Drift.GreaterThan(decimal.RequireFromString("0.000001")) {
		t.Errorf("Drift = %s, want <= 1e-6", record.Drift)
	}

	// Pool state committed.
	if !pool.X().Equal(record.XAfter) || !pool.Y().Equal(record.YAfter) {
		t.Errorf("pool state X=%s Y=%s does not match record", pool.X(), pool.Y())
	}

	// A second swap continues the sequence.
	record2, err := pool.Swap(DirectionYToX, decimal.NewFromInt(50), now.Add(time.Second))
	if err != nil {
		t.Fatalf("second Swap() error = %v", err)
	}
	if record2.Sequence != 2 {
		t.Errorf("Sequence = %d, want 2", record2.Sequence)
	}
}

func TestSwap_RoundTripLosesToCurvature(t *testing.T) {
	// Swapping X for Y and the proceeds back again must not mint tokens.
	pool := newTestPool(t, "1000", "1000", "100")
	now := time.Now()

	out, err := pool.Swap(DirectionXToY, decimal.NewFromInt(100), now)
	if err != nil {
		t.Fatalf("Swap() error = %v", err)
	}
	back, err := pool.Swap(DirectionYToX, out.AmountOut, now.Add(time.Second))
	if err != nil {
		t.Fatalf("return Swap() error = %v", err)
	}

	if back.AmountOut.GreaterThan(decimal.NewFromInt(100)) {
		t.Errorf("round trip returned %s X for 100 X in", back.AmountOut)
	}
}

func TestSwap_FailureLeavesPoolUntouched(t *testing.T) {
	pool := newTestPool(t, "1000", "1000", "100")

	_, err := pool.Swap(Direction("SIDEWAYS"), decimal.NewFromInt(10), time.Now())
	if err == nil {
		t.Fatal("Swap() with bad direction succeeded")
	}

	if !pool.X().Equal(decimal.NewFromInt(1000)) || !pool.Y().Equal(decimal.NewFromInt(1000)) {
		t.Errorf("pool mutated by failed swap: X=%s Y=%s", pool.X(), pool.Y())
	}
	assertWithin(t, "D", pool.Invariant(), "2000", "0.000000001")
}

func TestSwap_DriftViolation(t *testing.T) {
	// An impossibly tight drift tolerance must reject the swap and leave
	// the pool untouched.
	pool, err := NewPool(
		"USDC", "USDT",
		decimal.NewFromInt(1000),
		decimal.NewFromInt(1000),
		decimal.NewFromInt(100),
		decimal.New(1, -30),
		DefaultSolverConfig(),
	)
	if err != nil {
		t.Fatalf("NewPool() error = %v", err)
	}

	_, err = pool.Swap(DirectionXToY, decimal.NewFromInt(100), time.Now())
	if !apperror.IsCode(err, apperror.CodeInvariantViolation) {
		t.Errorf("Swap() error = %v, want INVARIANT_VIOLATION", err)
	}
	if !pool.X().Equal(decimal.NewFromInt(1000)) || !pool.Y().Equal(decimal.NewFromInt(1000)) {
		t.Errorf("pool mutated by rejected swap: X=%s Y=%s", pool.X(), pool.Y())
	}
}

func TestDirection(t *testing.T) {
	if !DirectionXToY.Valid() || !DirectionYToX.Valid() {
		t.Error("canonical directions reported invalid")
	}
	if Direction("SIDEWAYS").Valid() {
		t.Error("unknown direction reported valid")
	}
	if DirectionXToY.String() != "X → Y" {
		t.Errorf("String() = %q", DirectionXToY.String())
	}
	if DirectionXToY.Opposite() != DirectionYToX || DirectionYToX.Opposite() != DirectionXToY {
		t.Error("Opposite() did not flip direction")
	}
}
