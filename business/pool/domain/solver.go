package domain

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fd1az/stableswap-sim/internal/apperror"
)

// SolverConfig tunes the secant root-finder.
type SolverConfig struct {
	Tolerance     decimal.Decimal // convergence threshold on |residual|
	MaxIterations int
}

// DefaultSolverConfig returns the standard tolerance (1e-10) and budget (100).
func DefaultSolverConfig() SolverConfig {
	return SolverConfig{
		Tolerance:     decimal.New(1, -10),
		MaxIterations: 100,
	}
}

// Diagnostics reports how a solve went. It replaces ad-hoc progress output:
// callers that care surface it through an observer, the solver never prints.
type Diagnostics struct {
	Iterations int
	Residual   decimal.Decimal
	Converged  bool
}

// infeasiblePenalty steers the secant iteration away from non-positive trial
// balances. It must never survive as a converged result.
var infeasiblePenalty = decimal.New(1, 10) // 1e10

// secant perturbation for the second starting point: p1 = p0*1.0001 + 1e-4.
var (
	secantScale  = decimal.RequireFromString("1.0001")
	secantOffset = decimal.New(1, -4)
)

// secant finds a root of f starting from guess, estimating the local slope
// from the two most recent evaluations. No analytic derivative is used.
func secant(f func(decimal.Decimal) (decimal.Decimal, error), guess decimal.Decimal, cfg SolverConfig) (decimal.Decimal, Diagnostics, error) {
	p0 := guess
	p1 := guess.Mul(secantScale).Add(secantOffset)

	f0, err := f(p0)
	if err != nil {
		return decimal.Zero, Diagnostics{}, err
	}
	f1, err := f(p1)
	if err != nil {
		return decimal.Zero, Diagnostics{Iterations: 1}, err
	}

	diag := Diagnostics{Residual: f1}
	for i := 0; i < cfg.MaxIterations; i++ {
		diag.Iterations = i + 1

		if f1.Abs().LessThanOrEqual(cfg.Tolerance) {
			diag.Residual = f1
			diag.Converged = true
			return p1, diag, nil
		}

		denom := f1.Sub(f0)
		if denom.IsZero() {
			return decimal.Zero, diag, apperror.New(apperror.CodeConvergenceError,
				apperror.WithContext(fmt.Sprintf("secant stalled after %d iterations (flat residual)", diag.Iterations)))
		}

		step := f1.Mul(p1.Sub(p0)).DivRound(denom, DivPrecision)
		p2 := p1.Sub(step)

		p0, f0 = p1, f1
		p1 = p2
		f1, err = f(p1)
		if err != nil {
			return decimal.Zero, diag, err
		}
		diag.Residual = f1
	}

	return decimal.Zero, diag, apperror.New(apperror.CodeConvergenceError,
		apperror.WithContext(fmt.Sprintf("no convergence within %d iterations, residual %s", cfg.MaxIterations, f1)))
}

// ComputeInvariant finds D such that Residual(x, y, D, amp) = 0, starting
// from the constant-sum guess x+y. The degenerate all-zero pool yields D = 0
// without iterating; construction rejects it upstream.
func ComputeInvariant(x, y, amp decimal.Decimal, cfg SolverConfig) (decimal.Decimal, Diagnostics, error) {
	if x.IsZero() && y.IsZero() {
		return decimal.Zero, Diagnostics{Converged: true}, nil
	}

	d, diag, err := secant(func(d decimal.Decimal) (decimal.Decimal, error) {
		return Residual(x, y, d, amp)
	}, x.Add(y), cfg)
	if err != nil {
		return decimal.Zero, diag, err
	}

	if d.Sign() < 0 {
		return decimal.Zero, diag, apperror.New(apperror.CodeDomainError,
			apperror.WithContext(fmt.Sprintf("invariant converged to negative value %s", d)))
	}
	return d, diag, nil
}

// SolveOtherBalance finds the balance that, placed opposite the known one,
// holds the curve at targetD. knownIndex 0 means the known balance is x and
// the solved one is y; 1 is the mirror. guess warm-starts the iteration,
// typically with the pool's current opposite balance.
//
// Non-positive trial balances are repelled with a penalty residual instead of
// evaluating the curve at an invalid point; a non-positive converged result
// is a DomainError, never a valid answer.
func SolveOtherBalance(known decimal.Decimal, knownIndex int, targetD, amp, guess decimal.Decimal, cfg SolverConfig) (decimal.Decimal, Diagnostics, error) {
	if knownIndex != 0 && knownIndex != 1 {
		return decimal.Zero, Diagnostics{}, apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext(fmt.Sprintf("balance index must be 0 or 1, got %d", knownIndex)))
	}
	if known.Sign() <= 0 {
		return decimal.Zero, Diagnostics{}, apperror.New(apperror.CodeDomainError,
			apperror.WithContext(fmt.Sprintf("known balance must be positive, got %s", known)))
	}

	objective := func(candidate decimal.Decimal) (decimal.Decimal, error) {
		if candidate.Sign() <= 0 {
			return infeasiblePenalty, nil
		}
		if knownIndex == 0 {
			return Residual(known, candidate, targetD, amp)
		}
		return Residual(candidate, known, targetD, amp)
	}

	balance, diag, err := secant(objective, guess, cfg)
	if err != nil {
		return decimal.Zero, diag, err
	}

	if balance.Sign() <= 0 {
		return decimal.Zero, diag, apperror.New(apperror.CodeDomainError,
			apperror.WithContext(fmt.Sprintf("balance solution %s is not positive", balance)))
	}
	return balance, diag, nil
}
