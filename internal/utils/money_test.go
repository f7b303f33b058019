package utils

import (
	"testing"

	"github.com/shopspring/decimal"

	"travelo/internal/models"
)

func TestPercentOf(t *testing.T) {
	tests := []struct {
		name  string
		total models.Cents
		pct   string
		want  models.Cents
	}{
		{name: "ten percent", total: 50000, pct: "10", want: 5000},
		{name: "fractional percent", total: 10000, pct: "12.5", want: 1250},
		{name: "rounds half up", total: 101, pct: "50", want: 51}, // 0.505 -> 0.51
		{name: "zero total", total: 0, pct: "25", want: 0},
		{name: "hundred percent", total: 33333, pct: "100", want: 33333},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pct := decimal.RequireFromString(tt.pct)
			if got := PercentOf(tt.total, pct); got != tt.want {
				t.Errorf("PercentOf(%d, %s) = %d, want %d", tt.total, tt.pct, got, tt.want)
			}
		})
	}
}

func TestClampDiscount(t *testing.T) {
	tests := []struct {
		name       string
		discount   models.Cents
		orderTotal models.Cents
		cap        models.Cents
		want       models.Cents
	}{
		{name: "within bounds", discount: 1000, orderTotal: 50000, cap: 2000, want: 1000},
		{name: "capped", discount: 3000, orderTotal: 50000, cap: 2000, want: 2000},
		{name: "uncapped when cap is zero", discount: 3000, orderTotal: 50000, cap: 0, want: 3000},
		{name: "never exceeds order total", discount: 60000, orderTotal: 50000, cap: 0, want: 50000},
		{name: "negative clamps to zero", discount: -500, orderTotal: 50000, cap: 0, want: 0},
		{name: "cap above total still bounded by total", discount: 9000, orderTotal: 5000, cap: 8000, want: 5000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampDiscount(tt.discount, tt.orderTotal, tt.cap); got != tt.want {
				t.Errorf("ClampDiscount(%d, %d, %d) = %d, want %d", tt.discount, tt.orderTotal, tt.cap, got, tt.want)
			}
		})
	}
}

func TestClampPoints(t *testing.T) {
	if got := ClampPoints(-5); got != 0 {
		t.Errorf("ClampPoints(-5) = %d, want 0", got)
	}
	if got := ClampPoints(42); got != 42 {
		t.Errorf("ClampPoints(42) = %d, want 42", got)
	}
}
