// Package domain contains the sliding-window mean math for TWAP tracking.
package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/stableswap-sim/internal/apperror"
)

// meanPrecision is the number of decimal places kept by window divisions
// and by the log/exp steps of the geometric mean.
const meanPrecision = 28

// Sample is one timestamped price observation.
type Sample struct {
	Timestamp time.Time
	Price     decimal.Decimal
}

// Window is a fixed-size sliding window over price samples. Once full, each
// push evicts the oldest sample.
type Window struct {
	size    int
	samples []Sample
}

// NewWindow creates a sliding window holding up to size samples.
func NewWindow(size int) (*Window, error) {
	if size <= 0 {
		return nil, apperror.New(apperror.CodeInvalidInput,
			apperror.WithContext(fmt.Sprintf("window size must be positive, got %d", size)))
	}
	return &Window{
		size:    size,
		samples: make([]Sample, 0, size),
	}, nil
}

// Push appends a sample, evicting the oldest when the window is full.
// Prices must be positive: the geometric mean is undefined otherwise.
func (w *Window) Push(s Sample) error {
	if s.Price.Sign() <= 0 {
		return apperror.New(apperror.CodeDomainError,
			apperror.WithContext(fmt.Sprintf("price must be positive, got %s", s.Price)))
	}
	if len(w.samples) == w.size {
		copy(w.samples, w.samples[1:])
		w.samples = w.samples[:w.size-1]
	}
	w.samples = append(w.samples, s)
	return nil
}

// Len returns the number of samples currently held.
func (w *Window) Len() int { return len(w.samples) }

// Size returns the window capacity.
func (w *Window) Size() int { return w.size }

// Full reports whether the window holds Size samples.
func (w *Window) Full() bool { return len(w.samples) == w.size }

// Samples returns a copy of the current window contents, oldest first.
func (w *Window) Samples() []Sample {
	out := make([]Sample, len(w.samples))
	copy(out, w.samples)
	return out
}

// Arithmetic returns the arithmetic mean of the window prices.
func (w *Window) Arithmetic() (decimal.Decimal, error) {
	if len(w.samples) == 0 {
		return decimal.Zero, apperror.New(apperror.CodeDomainError,
			apperror.WithContext("cannot average an empty window"))
	}

	sum := decimal.Zero
	for _, s := range w.samples {
		sum = sum.Add(s.Price)
	}
	return sum.DivRound(decimal.NewFromInt(int64(len(w.samples))), meanPrecision), nil
}

// Geometric returns the geometric mean of the window prices, computed as
// exp(mean(ln p)) to keep the running product bounded.
func (w *Window) Geometric() (decimal.Decimal, error) {
	if len(w.samples) == 0 {
		return decimal.Zero, apperror.New(apperror.CodeDomainError,
			apperror.WithContext("cannot average an empty window"))
	}

	logSum := decimal.Zero
	for _, s := range w.samples {
		lnP, err := s.Price.Ln(meanPrecision)
		if err != nil {
			return decimal.Zero, apperror.New(apperror.CodeDomainError,
				apperror.WithCause(err),
				apperror.WithContext(fmt.Sprintf("ln failed for price %s", s.Price)))
		}
		logSum = logSum.Add(lnP)
	}

	logMean := logSum.DivRound(decimal.NewFromInt(int64(len(w.samples))), meanPrecision)
	mean, err := logMean.ExpTaylor(meanPrecision)
	if err != nil {
		return decimal.Zero, apperror.New(apperror.CodeDomainError,
			apperror.WithCause(err),
			apperror.WithContext("exp failed for log-mean"))
	}
	return mean, nil
}
