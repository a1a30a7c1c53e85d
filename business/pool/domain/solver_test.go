package domain

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fd1az/stableswap-sim/internal/apperror"
)

func TestComputeInvariant(t *testing.T) {
	tests := []struct {
		name  string
		x     string
		y     string
		amp   string
		wantD string
		tol   string
	}{
		{
			name: "balanced_pool_d_equals_sum",
			x:    "1000", y: "1000", amp: "100",
			wantD: "2000", tol: "0.000000001",
		},
		{
			name: "imbalanced_pool",
			x:    "500", y: "2000", amp: "100",
			wantD: "2496.5164322823617396558991290", tol: "0.000000001",
		},
		{
			name: "high_amplification_approaches_sum",
			x:    "800", y: "1200", amp: "100000",
			wantD: "2000", tol: "0.01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := decimal.RequireFromString(tt.x)
			y := decimal.RequireFromString(tt.y)
			amp := decimal.RequireFromString(tt.amp)

			d, diag, err := ComputeInvariant(x, y, amp, DefaultSolverConfig())
			if err != nil {
				t.Fatalf("ComputeInvariant() error = %v", err)
			}

			if !diag.Converged {
				t.Error("Diagnostics.Converged = false, want true")
			}
			if diag.Iterations > 100 {
				t.Errorf("Iterations = %d, want <= 100", diag.Iterations)
			}
			assertWithin(t, "D", d, tt.wantD, tt.tol)

			// The converged D must actually sit on the curve.
			res, err := Residual(x, y, d, amp)
			if err != nil {
				t.Fatalf("Residual() error = %v", err)
			}
			assertWithin(t, "residual at D", res, "0", "0.0000000001")
		})
	}
}

func TestComputeInvariant_EmptyPool(t *testing.T) {
	d, diag, err := ComputeInvariant(decimal.Zero, decimal.Zero, decimal.NewFromInt(100), DefaultSolverConfig())
	if err != nil {
		t.Fatalf("ComputeInvariant() error = %v", err)
	}
	if !d.IsZero() {
		t.Errorf("D = %s, want 0", d)
	}
	if !diag.Converged {
		t.Error("Diagnostics.Converged = false, want true")
	}
	if diag.Iterations != 0 {
		t.Errorf("Iterations = %d, want 0", diag.Iterations)
	}
}

func TestComputeInvariant_IterationBudgetExhausted(t *testing.T) {
	cfg := SolverConfig{
		Tolerance:     decimal.New(1, -10),
		MaxIterations: 1,
	}

	_, _, err := ComputeInvariant(
		decimal.RequireFromString("500"),
		decimal.RequireFromString("2000"),
		decimal.NewFromInt(100),
		cfg,
	)
	if !apperror.IsCode(err, apperror.CodeConvergenceError) {
		t.Errorf("ComputeInvariant() error = %v, want CONVERGENCE_ERROR", err)
	}
}

func TestSolveOtherBalance(t *testing.T) {
	cfg := DefaultSolverConfig()
	d := decimal.NewFromInt(2000)
	amp := decimal.NewFromInt(100)

	tests := []struct {
		name       string
		known      string
		knownIndex int
		guess      string
		want       string
		tol        string
	}{
		{
			// After depositing 100 X into the balanced 1000/1000 pool.
			name:  "solve_y_after_x_deposit",
			known: "1100", knownIndex: 0, guess: "1000",
			want: "900.0502232299245540330671254", tol: "0.000000001",
		},
		{
			// Mirror case: the curve is symmetric in its balances.
			name:  "solve_x_after_y_deposit",
			known: "1100", knownIndex: 1, guess: "1000",
			want: "900.0502232299245540330671254", tol: "0.000000001",
		},
		{
			name:  "identity_known_balance_on_curve",
			known: "1000", knownIndex: 0, guess: "1000",
			want: "1000", tol: "0.000000001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			known := decimal.RequireFromString(tt.known)
			guess := decimal.RequireFromString(tt.guess)

			got, diag, err := SolveOtherBalance(known, tt.knownIndex, d, amp, guess, cfg)
			if err != nil {
				t.Fatalf("SolveOtherBalance() error = %v", err)
			}
			if !diag.Converged {
				t.Error("Diagnostics.Converged = false, want true")
			}
			assertWithin(t, "balance", got, tt.want, tt.tol)
		})
	}
}

func TestSolveOtherBalance_Invalid(t *testing.T) {
	cfg := DefaultSolverConfig()
	d := decimal.NewFromInt(2000)
	amp := decimal.NewFromInt(100)
	guess := decimal.NewFromInt(1000)

	t.Run("bad_index", func(t *testing.T) {
		_, _, err := SolveOtherBalance(decimal.NewFromInt(1100), 2, d, amp, guess, cfg)
		if !apperror.IsCode(err, apperror.CodeInvalidInput) {
			t.Errorf("error = %v, want INVALID_INPUT", err)
		}
	})

	t.Run("non_positive_known_balance", func(t *testing.T) {
		_, _, err := SolveOtherBalance(decimal.Zero, 0, d, amp, guess, cfg)
		if !apperror.IsCode(err, apperror.CodeDomainError) {
			t.Errorf("error = %v, want DOMAIN_ERROR", err)
		}
	})
}

func BenchmarkComputeInvariant(b *testing.B) {
	x := decimal.RequireFromString("500")
	y := decimal.RequireFromString("2000")
	amp := decimal.RequireFromString("100")
	cfg := DefaultSolverConfig()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := ComputeInvariant(x, y, amp, cfg); err != nil {
			b.Fatal(err)
		}
	}
}
