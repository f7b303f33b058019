package services

import (
	"testing"
	"time"

	"travelo/internal/models"
)

func TestVoucherValidate(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	tests := []struct {
		name       string
		voucher    models.Voucher
		orderTotal models.Cents
		wantReason string
	}{
		{
			name:       "valid",
			voucher:    models.Voucher{Code: "OK", Active: true},
			orderTotal: 10000,
		},
		{
			name:       "inactive",
			voucher:    models.Voucher{Code: "OFF", Active: false},
			orderTotal: 10000,
			wantReason: "inactive",
		},
		{
			name:       "not yet valid",
			voucher:    models.Voucher{Code: "SOON", Active: true, ValidFrom: &future},
			orderTotal: 10000,
			wantReason: "not yet valid",
		},
		{
			name:       "expired",
			voucher:    models.Voucher{Code: "OLD", Active: true, ValidUntil: &past},
			orderTotal: 10000,
			wantReason: "expired",
		},
		{
			name:       "usage limit reached",
			voucher:    models.Voucher{Code: "CAPPED", Active: true, MaxUsage: 5, UsedCount: 5},
			orderTotal: 10000,
			wantReason: "usage limit reached",
		},
		{
			name:       "below minimum order",
			voucher:    models.Voucher{Code: "BIG", Active: true, MinOrderValue: 20000},
			orderTotal: 10000,
			wantReason: "order below minimum value",
		},
		{
			name:       "unlimited usage ignores count",
			voucher:    models.Voucher{Code: "FREE", Active: true, MaxUsage: 0, UsedCount: 999},
			orderTotal: 10000,
		},
	}

	svc := NewVoucherService(newMemVoucherRepo())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Validate(&tt.voucher, tt.orderTotal, now)
			if tt.wantReason == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var verr models.VoucherError
			if !asVoucherError(err, &verr) {
				t.Fatalf("expected VoucherError, got %v", err)
			}
			if verr.Reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", verr.Reason, tt.wantReason)
			}
		})
	}
}

func asVoucherError(err error, target *models.VoucherError) bool {
	v, ok := err.(models.VoucherError)
	if ok {
		*target = v
	}
	return ok
}

func TestVoucherDiscount(t *testing.T) {
	svc := NewVoucherService(newMemVoucherRepo())

	tests := []struct {
		name       string
		voucher    models.Voucher
		orderTotal models.Cents
		want       models.Cents
	}{
		{
			name:       "ten percent",
			voucher:    models.Voucher{Type: models.VoucherTypePercentage, Value: 1000}, // 10.00%
			orderTotal: 50000,
			want:       5000,
		},
		{
			name:       "percentage hits cap",
			voucher:    models.Voucher{Type: models.VoucherTypePercentage, Value: 5000, MaxDiscount: 10000}, // 50% capped at 100.00
			orderTotal: 50000,
			want:       10000,
		},
		{
			name:       "fixed discount",
			voucher:    models.Voucher{Type: models.VoucherTypeFixed, Value: 2500},
			orderTotal: 50000,
			want:       2500,
		},
		{
			name:       "fixed never exceeds total",
			voucher:    models.Voucher{Type: models.VoucherTypeFixed, Value: 80000},
			orderTotal: 50000,
			want:       50000,
		},
		{
			name:       "hundred percent uncapped",
			voucher:    models.Voucher{Type: models.VoucherTypePercentage, Value: 10000},
			orderTotal: 50000,
			want:       50000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := svc.Discount(&tt.voucher, tt.orderTotal); got != tt.want {
				t.Errorf("Discount = %s, want %s", got, tt.want)
			}
		})
	}
}
