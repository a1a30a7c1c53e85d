package domain

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fd1az/stableswap-sim/internal/apperror"
)

// SpotPrice is the instantaneous price of token Y in units of token X,
// obtained by implicit differentiation of the curve: -dx/dy = Fy/Fx.
// For equal balances it is exactly 1 regardless of amplification; as
// amplification grows the price pins to 1 across a widening balance range.
func SpotPrice(x, y, d, amp decimal.Decimal) (decimal.Decimal, error) {
	fx, err := PartialX(x, y, d, amp)
	if err != nil {
		return decimal.Zero, err
	}
	fy, err := PartialY(x, y, d, amp)
	if err != nil {
		return decimal.Zero, err
	}

	if fx.IsZero() {
		return decimal.Zero, apperror.New(apperror.CodeDomainError,
			apperror.WithContext(fmt.Sprintf("curve gradient vanishes in x at (%s, %s)", x, y)))
	}
	return fy.DivRound(fx, DivPrecision), nil
}
