package domain

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/fd1az/stableswap-sim/internal/apperror"
)

// assertWithin fails unless |got - want| <= tol. Shared by the package tests.
func assertWithin(t *testing.T, field string, got decimal.Decimal, want, tol string) {
	t.Helper()
	wantD := decimal.RequireFromString(want)
	tolD := decimal.RequireFromString(tol)
	if got.Sub(wantD).Abs().GreaterThan(tolD) {
		t.Errorf("%s = %s, want %s (tolerance %s)", field, got, want, tol)
	}
}

func TestResidual(t *testing.T) {
	tests := []struct {
		name string
		x    string
		y    string
		d    string
		amp  string
		want string // sign of the residual: "zero", "positive", "negative"
	}{
		{
			// 4*100*2000 + 2000 - 4*100*2000 - 2000^3/(4*10^6) = 0
			name: "balanced_pool_exact_root",
			x:    "1000", y: "1000", d: "2000", amp: "100",
			want: "zero",
		},
		{
			name: "d_below_root",
			x:    "1000", y: "1000", d: "1000", amp: "100",
			want: "positive",
		},
		{
			name: "d_above_root",
			x:    "1000", y: "1000", d: "3000", amp: "100",
			want: "negative",
		},
		{
			name: "imbalanced_pool_sum_overshoots",
			x:    "500", y: "2000", d: "2500", amp: "100",
			want: "negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := decimal.RequireFromString(tt.x)
			y := decimal.RequireFromString(tt.y)
			d := decimal.RequireFromString(tt.d)
			amp := decimal.RequireFromString(tt.amp)

			got, err := Residual(x, y, d, amp)
			if err != nil {
				t.Fatalf("Residual() error = %v", err)
			}

			switch tt.want {
			case "zero":
				if !got.IsZero() {
					t.Errorf("Residual = %s, want 0", got)
				}
			case "positive":
				if got.Sign() <= 0 {
					t.Errorf("Residual = %s, want > 0", got)
				}
			case "negative":
				if got.Sign() >= 0 {
					t.Errorf("Residual = %s, want < 0", got)
				}
			}
		})
	}
}

func TestResidual_RejectsNonPositiveBalances(t *testing.T) {
	tests := []struct {
		name string
		x    string
		y    string
	}{
		{"zero_x", "0", "1000"},
		{"zero_y", "1000", "0"},
		{"negative_x", "-1", "1000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := decimal.RequireFromString(tt.x)
			y := decimal.RequireFromString(tt.y)
			d := decimal.NewFromInt(2000)
			amp := decimal.NewFromInt(100)

			if _, err := Residual(x, y, d, amp); !apperror.IsCode(err, apperror.CodeDomainError) {
				t.Errorf("Residual() error = %v, want DOMAIN_ERROR", err)
			}
			if _, err := PartialX(x, y, d, amp); !apperror.IsCode(err, apperror.CodeDomainError) {
				t.Errorf("PartialX() error = %v, want DOMAIN_ERROR", err)
			}
			if _, err := PartialY(x, y, d, amp); !apperror.IsCode(err, apperror.CodeDomainError) {
				t.Errorf("PartialY() error = %v, want DOMAIN_ERROR", err)
			}
		})
	}
}

func TestPartialDerivatives_BalancedPool(t *testing.T) {
	// At x = y = 1000, D = 2000, A = 100:
	// 4A - D^3/(4*x^2*y) = 400 - 8e9/4e9 = 398, identically for both axes.
	x := decimal.NewFromInt(1000)
	y := decimal.NewFromInt(1000)
	d := decimal.NewFromInt(2000)
	amp := decimal.NewFromInt(100)

	fx, err := PartialX(x, y, d, amp)
	if err != nil {
		t.Fatalf("PartialX() error = %v", err)
	}
	fy, err := PartialY(x, y, d, amp)
	if err != nil {
		t.Fatalf("PartialY() error = %v", err)
	}

	want := decimal.NewFromInt(398)
	if !fx.Equal(want) {
		t.Errorf("PartialX = %s, want %s", fx, want)
	}
	if !fy.Equal(want) {
		t.Errorf("PartialY = %s, want %s", fy, want)
	}
}

func TestPartialDerivatives_Symmetry(t *testing.T) {
	// PartialX(x, y) must equal PartialY(y, x): the curve is symmetric in
	// its two balances.
	x := decimal.RequireFromString("512.5")
	y := decimal.RequireFromString("1873.25")
	d := decimal.RequireFromString("2300")
	amp := decimal.NewFromInt(85)

	fx, err := PartialX(x, y, d, amp)
	if err != nil {
		t.Fatalf("PartialX() error = %v", err)
	}
	fyMirror, err := PartialY(y, x, d, amp)
	if err != nil {
		t.Fatalf("PartialY() error = %v", err)
	}

	if !fx.Equal(fyMirror) {
		t.Errorf("PartialX(x,y) = %s, PartialY(y,x) = %s, want equal", fx, fyMirror)
	}
}

func BenchmarkResidual(b *testing.B) {
	x := decimal.RequireFromString("1000")
	y := decimal.RequireFromString("1000")
	d := decimal.RequireFromString("2000")
	amp := decimal.RequireFromString("100")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Residual(x, y, d, amp); err != nil {
			b.Fatal(err)
		}
	}
}
