package app

import (
	"context"
	"iter"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/stableswap-sim/business/pool/domain"
	"github.com/fd1az/stableswap-sim/internal/logger"
)

// State is a consistent snapshot of the pool.
type State struct {
	TokenX        string
	TokenY        string
	X             decimal.Decimal
	Y             decimal.Decimal
	Amplification decimal.Decimal
	Invariant     decimal.Decimal
	SpotPrice     decimal.Decimal
	SwapCount     int
}

// HistoryEntry is one event in the engine's ordered log. Exactly one of the
// two fields is set.
type HistoryEntry struct {
	Swap  *domain.SwapRecord
	Price *domain.PricePoint
}

// CurvePoint is a solved (x, y) point on the invariant curve.
type CurvePoint struct {
	X decimal.Decimal
	Y decimal.Decimal
}

// Engine is the app-facing swap service. It serializes access to the pool,
// keeps the ordered swap and price history, and fans events out to the
// observer.
type Engine struct {
	mu      sync.Mutex
	pool    *domain.Pool
	history []HistoryEntry

	log logger.LoggerInterface
	obs Observer
	now func() time.Time
}

// NewEngine wraps a pool. A nil observer is replaced with a no-op. The
// initial balances and spot price are recorded as the first history entry.
func NewEngine(pool *domain.Pool, log logger.LoggerInterface, obs Observer) *Engine {
	if obs == nil {
		obs = NopObserver{}
	}
	e := &Engine{
		pool: pool,
		log:  log,
		obs:  obs,
		now:  time.Now,
	}
	if point, err := pool.PricePoint(e.now()); err == nil {
		e.history = append(e.history, HistoryEntry{Price: &point})
	}
	return e
}

// QuoteDY answers how much Y a deposit of dx X would return. Pool state is
// not modified.
func (e *Engine) QuoteDY(ctx context.Context, dx decimal.Decimal) (domain.SwapQuote, error) {
	return e.quote(ctx, domain.DirectionXToY, dx)
}

// QuoteDX answers how much X a deposit of dy Y would return. Pool state is
// not modified.
func (e *Engine) QuoteDX(ctx context.Context, dy decimal.Decimal) (domain.SwapQuote, error) {
	return e.quote(ctx, domain.DirectionYToX, dy)
}

// QuoteInput answers how much must be deposited to withdraw amountOut.
func (e *Engine) QuoteInput(ctx context.Context, direction domain.Direction, amountOut decimal.Decimal) (domain.SwapQuote, error) {
	e.mu.Lock()
	quote, err := e.pool.QuoteInput(direction, amountOut)
	e.mu.Unlock()
	if err != nil {
		return domain.SwapQuote{}, err
	}
	e.obs.SolveCompleted(ctx, "quote_input", quote.Diagnostics)
	return quote, nil
}

func (e *Engine) quote(ctx context.Context, direction domain.Direction, amountIn decimal.Decimal) (domain.SwapQuote, error) {
	e.mu.Lock()
	quote, err := e.pool.QuoteOutput(direction, amountIn)
	e.mu.Unlock()
	if err != nil {
		return domain.SwapQuote{}, err
	}
	e.obs.SolveCompleted(ctx, "quote_output", quote.Diagnostics)
	return quote, nil
}

// ExecuteSwap performs a swap, appends the record and the post-swap price
// observation to the history, and notifies the observer. On any error the
// pool and the history are unchanged.
func (e *Engine) ExecuteSwap(ctx context.Context, direction domain.Direction, amountIn decimal.Decimal) (*domain.SwapRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	record, err := e.pool.Swap(direction, amountIn, e.now())
	if err != nil {
		e.log.Warn(ctx, "swap rejected",
			"direction", direction.String(),
			"amount_in", amountIn.String(),
			"error", err,
		)
		return nil, err
	}

	point, err := e.pool.PricePoint(record.Timestamp)
	if err != nil {
		return nil, err
	}

	e.history = append(e.history,
		HistoryEntry{Swap: record},
		HistoryEntry{Price: &point},
	)

	e.log.Info(ctx, "swap executed",
		"direction", direction.String(),
		"amount_in", amountIn.String(),
		"amount_out", record.AmountOut.String(),
		"invariant", record.InvariantAfter.String(),
		"drift", record.Drift.String(),
	)

	e.obs.SwapExecuted(ctx, record)
	e.obs.PriceSampled(ctx, point)

	return record, nil
}

// State returns a consistent snapshot of the pool.
func (e *Engine) State(context.Context) (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	price, err := e.pool.SpotPrice()
	if err != nil {
		return State{}, err
	}
	return State{
		TokenX:        e.pool.TokenX,
		TokenY:        e.pool.TokenY,
		X:             e.pool.X(),
		Y:             e.pool.Y(),
		Amplification: e.pool.Amplification(),
		Invariant:     e.pool.Invariant(),
		SpotPrice:     price,
		SwapCount:     e.swapCountLocked(),
	}, nil
}

func (e *Engine) swapCountLocked() int {
	n := 0
	for _, entry := range e.history {
		if entry.Swap != nil {
			n++
		}
	}
	return n
}

// History returns the ordered event log. The returned slice is a copy.
func (e *Engine) History() []HistoryEntry {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]HistoryEntry, len(e.history))
	copy(out, e.history)
	return out
}

// SampleCurve yields the (x, y) curve points for the given x balances,
// solved against the pool state captured at call time. The sequence can be
// ranged more than once and yields the same points each time; x values for
// which no feasible y exists report an error and continue.
func (e *Engine) SampleCurve(xs []decimal.Decimal) iter.Seq2[CurvePoint, error] {
	e.mu.Lock()
	d := e.pool.Invariant()
	amp := e.pool.Amplification()
	guess := e.pool.Y()
	cfg := e.pool.Solver()
	e.mu.Unlock()

	return func(yield func(CurvePoint, error) bool) {
		warm := guess
		for _, x := range xs {
			y, _, err := domain.SolveOtherBalance(x, 0, d, amp, warm, cfg)
			if err != nil {
				if !yield(CurvePoint{X: x}, err) {
					return
				}
				continue
			}
			warm = y
			if !yield(CurvePoint{X: x, Y: y}, nil) {
				return
			}
		}
	}
}
