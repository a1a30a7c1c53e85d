package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/stableswap-sim/internal/apperror"
)

func pushAll(t *testing.T, w *Window, prices ...string) {
	t.Helper()
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	for i, p := range prices {
		err := w.Push(Sample{
			Timestamp: base.Add(time.Duration(i) * time.Second),
			Price:     decimal.RequireFromString(p),
		})
		if err != nil {
			t.Fatalf("Push(%s) error = %v", p, err)
		}
	}
}

func assertWithin(t *testing.T, field string, got decimal.Decimal, want, tol string) {
	t.Helper()
	wantD := decimal.RequireFromString(want)
	tolD := decimal.RequireFromString(tol)
	if got.Sub(wantD).Abs().GreaterThan(tolD) {
		t.Errorf("%s = %s, want %s (tolerance %s)", field, got, want, tol)
	}
}

func TestNewWindow_RejectsNonPositiveSize(t *testing.T) {
	if _, err := NewWindow(0); !apperror.IsCode(err, apperror.CodeInvalidInput) {
		t.Errorf("NewWindow(0) error = %v, want INVALID_INPUT", err)
	}
}

func TestWindow_Eviction(t *testing.T) {
	w, err := NewWindow(3)
	if err != nil {
		t.Fatalf("NewWindow() error = %v", err)
	}

	pushAll(t, w, "1", "2", "3")
	if !w.Full() {
		t.Error("window should be full after size pushes")
	}

	pushAll(t, w, "4")
	if w.Len() != 3 {
		t.Fatalf("Len = %d, want 3", w.Len())
	}

	samples := w.Samples()
	if !samples[0].Price.Equal(decimal.NewFromInt(2)) {
		t.Errorf("oldest price = %s, want 2 (1 evicted)", samples[0].Price)
	}
	if !samples[2].Price.Equal(decimal.NewFromInt(4)) {
		t.Errorf("newest price = %s, want 4", samples[2].Price)
	}
}

func TestWindow_RejectsNonPositivePrice(t *testing.T) {
	w, _ := NewWindow(3)
	err := w.Push(Sample{Timestamp: time.Now(), Price: decimal.Zero})
	if !apperror.IsCode(err, apperror.CodeDomainError) {
		t.Errorf("Push(0) error = %v, want DOMAIN_ERROR", err)
	}
}

func TestWindow_Arithmetic(t *testing.T) {
	tests := []struct {
		name   string
		prices []string
		want   string
		tol    string
	}{
		{"constant_series", []string{"20", "20", "20"}, "20", "0"},
		{"simple_mean", []string{"1", "2", "3"}, "2", "0"},
		{"fractional", []string{"1.5", "2.5"}, "2", "0"},
		{"spike_pulls_mean_up", []string{"20", "20", "20", "80"}, "35", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := NewWindow(len(tt.prices))
			if err != nil {
				t.Fatalf("NewWindow() error = %v", err)
			}
			pushAll(t, w, tt.prices...)

			got, err := w.Arithmetic()
			if err != nil {
				t.Fatalf("Arithmetic() error = %v", err)
			}
			assertWithin(t, "mean", got, tt.want, tt.tol)
		})
	}
}

func TestWindow_Geometric(t *testing.T) {
	tests := []struct {
		name   string
		prices []string
		want   string
		tol    string
	}{
		{"constant_series", []string{"20", "20", "20"}, "20", "0.0000000001"},
		{"powers_of_two", []string{"2", "8"}, "4", "0.0000000001"},
		{"three_terms", []string{"1", "3", "9"}, "3", "0.0000000001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := NewWindow(len(tt.prices))
			if err != nil {
				t.Fatalf("NewWindow() error = %v", err)
			}
			pushAll(t, w, tt.prices...)

			got, err := w.Geometric()
			if err != nil {
				t.Fatalf("Geometric() error = %v", err)
			}
			assertWithin(t, "mean", got, tt.want, tt.tol)
		})
	}
}

func TestWindow_GeometricDampensSpikes(t *testing.T) {
	// AM-GM: the geometric mean never exceeds the arithmetic mean, so a
	// manipulation spike moves it less.
	w, _ := NewWindow(5)
	pushAll(t, w, "20", "20", "20", "20", "80")

	arith, err := w.Arithmetic()
	if err != nil {
		t.Fatalf("Arithmetic() error = %v", err)
	}
	geom, err := w.Geometric()
	if err != nil {
		t.Fatalf("Geometric() error = %v", err)
	}

	if geom.GreaterThan(arith) {
		t.Errorf("geometric %s > arithmetic %s", geom, arith)
	}
}

func TestWindow_EmptyMeans(t *testing.T) {
	w, _ := NewWindow(3)
	if _, err := w.Arithmetic(); !apperror.IsCode(err, apperror.CodeDomainError) {
		t.Errorf("Arithmetic() on empty window error = %v, want DOMAIN_ERROR", err)
	}
	if _, err := w.Geometric(); !apperror.IsCode(err, apperror.CodeDomainError) {
		t.Errorf("Geometric() on empty window error = %v, want DOMAIN_ERROR", err)
	}
}
