// Package domain contains the core curve math and pool entity for the
// two-asset StableSwap simulation.
package domain

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fd1az/stableswap-sim/internal/apperror"
)

// DivPrecision is the number of decimal places kept by curve divisions.
// All other decimal operations are exact; division is the only rounding point.
const DivPrecision = 28

var four = decimal.NewFromInt(4)

// Residual evaluates the implicit two-asset StableSwap curve
//
//	F(x, y, D, A) = 4A(x+y) + D - 4AD - D³/(4xy)
//
// which is zero exactly when D is the pool invariant for balances (x, y)
// and amplification A.
func Residual(x, y, d, amp decimal.Decimal) (decimal.Decimal, error) {
	if err := checkBalances(x, y); err != nil {
		return decimal.Zero, err
	}

	fourA := four.Mul(amp)
	d3 := d.Mul(d).Mul(d)
	den := four.Mul(x).Mul(y)

	res := fourA.Mul(x.Add(y)).
		Add(d).
		Sub(fourA.Mul(d)).
		Sub(d3.DivRound(den, DivPrecision))
	return res, nil
}

// PartialX evaluates ∂F/∂x = 4A - D³/(4x²y).
func PartialX(x, y, d, amp decimal.Decimal) (decimal.Decimal, error) {
	if err := checkBalances(x, y); err != nil {
		return decimal.Zero, err
	}
	d3 := d.Mul(d).Mul(d)
	den := four.Mul(x).Mul(x).Mul(y)
	return four.Mul(amp).Sub(d3.DivRound(den, DivPrecision)), nil
}

// PartialY evaluates ∂F/∂y = 4A - D³/(4xy²).
func PartialY(x, y, d, amp decimal.Decimal) (decimal.Decimal, error) {
	if err := checkBalances(x, y); err != nil {
		return decimal.Zero, err
	}
	d3 := d.Mul(d).Mul(d)
	den := four.Mul(x).Mul(y).Mul(y)
	return four.Mul(amp).Sub(d3.DivRound(den, DivPrecision)), nil
}

func checkBalances(x, y decimal.Decimal) error {
	if x.Sign() <= 0 || y.Sign() <= 0 {
		return apperror.New(apperror.CodeDomainError,
			apperror.WithContext(fmt.Sprintf("curve undefined at balances (%s, %s)", x, y)))
	}
	return nil
}
