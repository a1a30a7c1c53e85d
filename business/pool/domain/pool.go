package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/stableswap-sim/internal/apperror"
)

// Direction identifies which token enters the pool in a swap.
type Direction string

const (
	// DirectionXToY deposits token X and withdraws token Y.
	DirectionXToY Direction = "X_TO_Y"

	// DirectionYToX deposits token Y and withdraws token X.
	DirectionYToX Direction = "Y_TO_X"
)

// String returns a human-readable description of the direction.
func (d Direction) String() string {
	switch d {
	case DirectionXToY:
		return "X → Y"
	case DirectionYToX:
		return "Y → X"
	default:
		return "Unknown"
	}
}

// Valid reports whether d is one of the two swap directions.
func (d Direction) Valid() bool {
	return d == DirectionXToY || d == DirectionYToX
}

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	if d == DirectionXToY {
		return DirectionYToX
	}
	return DirectionXToY
}

// SwapQuote is the projected outcome of a swap, computed without touching
// pool state.
type SwapQuote struct {
	Direction      Direction
	AmountIn       decimal.Decimal
	AmountOut      decimal.Decimal
	NewX           decimal.Decimal
	NewY           decimal.Decimal
	SpotPriceAfter decimal.Decimal
	Diagnostics    Diagnostics
}

// SwapRecord captures an executed swap after commit.
type SwapRecord struct {
	Sequence       int
	Timestamp      time.Time
	Direction      Direction
	AmountIn       decimal.Decimal
	AmountOut      decimal.Decimal
	XAfter         decimal.Decimal
	YAfter         decimal.Decimal
	InvariantAfter decimal.Decimal
	Drift          decimal.Decimal
}

// PricePoint is a timestamped snapshot of the balances and the spot price
// they imply.
type PricePoint struct {
	Sequence  int
	Timestamp time.Time
	X         decimal.Decimal
	Y         decimal.Decimal
	Price     decimal.Decimal
}

// Pool is the two-asset StableSwap pool. Balances and the invariant are
// private: they change together or not at all, only through Swap.
type Pool struct {
	TokenX string
	TokenY string

	x   decimal.Decimal
	y   decimal.Decimal
	amp decimal.Decimal
	d   decimal.Decimal

	solver   SolverConfig
	driftTol decimal.Decimal
	sequence int
}

// NewPool validates the initial balances and amplification, solves the
// invariant once and returns a ready pool. driftTol bounds the absolute
// invariant drift tolerated per swap.
func NewPool(tokenX, tokenY string, x, y, amp, driftTol decimal.Decimal, solver SolverConfig) (*Pool, error) {
	if tokenX == "" || tokenY == "" {
		return nil, apperror.New(apperror.CodeRequiredField,
			apperror.WithContext("both token symbols are required"))
	}
	if err := checkBalances(x, y); err != nil {
		return nil, err
	}
	if amp.Sign() <= 0 {
		return nil, apperror.New(apperror.CodeDomainError,
			apperror.WithContext(fmt.Sprintf("amplification must be positive, got %s", amp)))
	}
	if driftTol.Sign() <= 0 {
		return nil, apperror.New(apperror.CodeDomainError,
			apperror.WithContext(fmt.Sprintf("drift tolerance must be positive, got %s", driftTol)))
	}

	d, _, err := ComputeInvariant(x, y, amp, solver)
	if err != nil {
		return nil, err
	}

	return &Pool{
		TokenX:   tokenX,
		TokenY:   tokenY,
		x:        x,
		y:        y,
		amp:      amp,
		d:        d,
		solver:   solver,
		driftTol: driftTol,
	}, nil
}

// X returns the current balance of token X.
func (p *Pool) X() decimal.Decimal { return p.x }

// Y returns the current balance of token Y.
func (p *Pool) Y() decimal.Decimal { return p.y }

// Amplification returns the pool's amplification coefficient.
func (p *Pool) Amplification() decimal.Decimal { return p.amp }

// Invariant returns the current value of D.
func (p *Pool) Invariant() decimal.Decimal { return p.d }

// Solver returns the root-finder configuration the pool was built with.
func (p *Pool) Solver() SolverConfig { return p.solver }

// SpotPrice returns the instantaneous price of Y in units of X at the
// current balances.
func (p *Pool) SpotPrice() (decimal.Decimal, error) {
	return SpotPrice(p.x, p.y, p.d, p.amp)
}

// PricePoint samples the current spot price as a timestamped observation.
func (p *Pool) PricePoint(now time.Time) (PricePoint, error) {
	price, err := p.SpotPrice()
	if err != nil {
		return PricePoint{}, err
	}
	return PricePoint{Sequence: p.sequence, Timestamp: now, X: p.x, Y: p.y, Price: price}, nil
}

// QuoteOutput answers "if I deposit amountIn, how much comes out". Pool
// state is untouched; the returned quote carries the post-swap balances and
// the spot price they would imply.
func (p *Pool) QuoteOutput(direction Direction, amountIn decimal.Decimal) (SwapQuote, error) {
	if !direction.Valid() {
		return SwapQuote{}, apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext(fmt.Sprintf("unknown swap direction %q", direction)))
	}
	if amountIn.Sign() <= 0 {
		return SwapQuote{}, apperror.New(apperror.CodeDomainError,
			apperror.WithContext(fmt.Sprintf("swap input must be positive, got %s", amountIn)))
	}

	var newX, newY decimal.Decimal
	var diag Diagnostics
	var err error

	switch direction {
	case DirectionXToY:
		newX = p.x.Add(amountIn)
		newY, diag, err = SolveOtherBalance(newX, 0, p.d, p.amp, p.y, p.solver)
	case DirectionYToX:
		newY = p.y.Add(amountIn)
		newX, diag, err = SolveOtherBalance(newY, 1, p.d, p.amp, p.x, p.solver)
	}
	if err != nil {
		return SwapQuote{}, err
	}

	var amountOut decimal.Decimal
	if direction == DirectionXToY {
		amountOut = p.y.Sub(newY)
	} else {
		amountOut = p.x.Sub(newX)
	}
	// A valid deposit always buys something; a non-positive output means the
	// solver landed on the wrong branch.
	if amountOut.Sign() <= 0 {
		return SwapQuote{}, apperror.New(apperror.CodeInvariantViolation,
			apperror.WithContext(fmt.Sprintf("deposit of %s solved to a non-positive output %s", amountIn, amountOut)))
	}

	price, err := SpotPrice(newX, newY, p.d, p.amp)
	if err != nil {
		return SwapQuote{}, err
	}

	return SwapQuote{
		Direction:      direction,
		AmountIn:       amountIn,
		AmountOut:      amountOut,
		NewX:           newX,
		NewY:           newY,
		SpotPriceAfter: price,
		Diagnostics:    diag,
	}, nil
}

// QuoteInput answers the inverse question: how much must be deposited to
// withdraw amountOut. The withdrawal must leave the output side strictly
// positive.
func (p *Pool) QuoteInput(direction Direction, amountOut decimal.Decimal) (SwapQuote, error) {
	if !direction.Valid() {
		return SwapQuote{}, apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext(fmt.Sprintf("unknown swap direction %q", direction)))
	}
	if amountOut.Sign() <= 0 {
		return SwapQuote{}, apperror.New(apperror.CodeDomainError,
			apperror.WithContext(fmt.Sprintf("requested output must be positive, got %s", amountOut)))
	}

	var newX, newY decimal.Decimal
	var diag Diagnostics
	var err error

	switch direction {
	case DirectionXToY:
		newY = p.y.Sub(amountOut)
		if newY.Sign() <= 0 {
			return SwapQuote{}, apperror.New(apperror.CodeInsufficientLiquidity,
				apperror.WithContext(fmt.Sprintf("cannot withdraw %s of %s, balance is %s", amountOut, p.TokenY, p.y)))
		}
		newX, diag, err = SolveOtherBalance(newY, 1, p.d, p.amp, p.x, p.solver)
	case DirectionYToX:
		newX = p.x.Sub(amountOut)
		if newX.Sign() <= 0 {
			return SwapQuote{}, apperror.New(apperror.CodeInsufficientLiquidity,
				apperror.WithContext(fmt.Sprintf("cannot withdraw %s of %s, balance is %s", amountOut, p.TokenX, p.x)))
		}
		newY, diag, err = SolveOtherBalance(newX, 0, p.d, p.amp, p.y, p.solver)
	}
	if err != nil {
		return SwapQuote{}, err
	}

	var amountIn decimal.Decimal
	if direction == DirectionXToY {
		amountIn = newX.Sub(p.x)
	} else {
		amountIn = newY.Sub(p.y)
	}
	if amountIn.Sign() <= 0 {
		return SwapQuote{}, apperror.New(apperror.CodeDomainError,
			apperror.WithContext(fmt.Sprintf("solved input %s is not positive", amountIn)))
	}

	price, err := SpotPrice(newX, newY, p.d, p.amp)
	if err != nil {
		return SwapQuote{}, err
	}

	return SwapQuote{
		Direction:      direction,
		AmountIn:       amountIn,
		AmountOut:      amountOut,
		NewX:           newX,
		NewY:           newY,
		SpotPriceAfter: price,
		Diagnostics:    diag,
	}, nil
}

// Swap executes a deposit of amountIn and commits the new balances. Before
// committing, the invariant is re-solved at the new balances; if it drifted
// beyond the tolerance the pool is left untouched and an invariant violation
// is returned. A failed swap never partially mutates the pool.
func (p *Pool) Swap(direction Direction, amountIn decimal.Decimal, now time.Time) (*SwapRecord, error) {
	quote, err := p.QuoteOutput(direction, amountIn)
	if err != nil {
		return nil, err
	}

	available := p.y
	if direction == DirectionYToX {
		available = p.x
	}
	if quote.AmountOut.GreaterThanOrEqual(available) {
		return nil, apperror.New(apperror.CodeInsufficientLiquidity,
			apperror.WithContext(fmt.Sprintf("output %s would drain the available balance %s", quote.AmountOut, available)))
	}

	dAfter, _, err := ComputeInvariant(quote.NewX, quote.NewY, p.amp, p.solver)
	if err != nil {
		return nil, err
	}
	drift := dAfter.Sub(p.d).Abs()
	if drift.GreaterThan(p.driftTol) {
		return nil, apperror.New(apperror.CodeInvariantViolation,
			apperror.WithContext(fmt.Sprintf("invariant drifted by %s, tolerance is %s", drift, p.driftTol)))
	}

	p.x = quote.NewX
	p.y = quote.NewY
	p.d = dAfter
	p.sequence++

	return &SwapRecord{
		Sequence:       p.sequence,
		Timestamp:      now,
		Direction:      direction,
		AmountIn:       amountIn,
		AmountOut:      quote.AmountOut,
		XAfter:         p.x,
		YAfter:         p.y,
		InvariantAfter: p.d,
		Drift:          drift,
	}, nil
}
