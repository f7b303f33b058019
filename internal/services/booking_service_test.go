package services

import (
	"context"
	"strings"
	"testing"

	"travelo/internal/models"
	"travelo/internal/utils"
)

func newBookingService(t *testing.T, f *reconcileFixture) BookingService {
	t.Helper()
	return NewBookingService(f.bookings, f.partners, f.voucherS, f.points, f.engine, newTestLogger(t))
}

func TestCreateBookingDebitsPoints(t *testing.T) {
	f := newReconcileFixture(t, false)
	svc := newBookingService(t, f)
	ctx := context.Background()

	booking, err := svc.Create(ctx, &CreateBookingRequest{
		Type:             models.BookingTypeHotel,
		UserID:           f.user.ID,
		PartnerID:        f.partner.ID.Hex(),
		ProductID:        f.partner.ID.Hex(),
		Subtotal:         "500.00",
		TravelPointsUsed: 50,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if booking.Total != 50000 {
		t.Errorf("total = %s, want 500.00", booking.Total)
	}
	if booking.Status != models.BookingStatusPending {
		t.Errorf("status = %s, want pending", booking.Status)
	}
	// booking codes live in their own space, apart from payment orders
	if !strings.HasPrefix(booking.Code, utils.BookingCodePrefix+"-") {
		t.Errorf("code = %q, want %s- prefix", booking.Code, utils.BookingCodePrefix)
	}
	if got := f.balance(t); got != 50 {
		t.Errorf("balance after create = %d, want 50", got)
	}
}

func TestCreateBookingRejectsOverdraftedPoints(t *testing.T) {
	f := newReconcileFixture(t, false)
	svc := newBookingService(t, f)

	_, err := svc.Create(context.Background(), &CreateBookingRequest{
		Type:             models.BookingTypeHotel,
		UserID:           f.user.ID,
		PartnerID:        f.partner.ID.Hex(),
		ProductID:        f.partner.ID.Hex(),
		Subtotal:         "500.00",
		TravelPointsUsed: 150,
	})
	if !models.IsInsufficientPoints(err) {
		t.Fatalf("expected InsufficientPointsError, got %v", err)
	}
	if got := f.balance(t); got != 100 {
		t.Errorf("balance after rejected create = %d, want 100", got)
	}
}

func TestCreateBookingAppliesVoucher(t *testing.T) {
	f := newReconcileFixture(t, false)
	svc := newBookingService(t, f)
	ctx := context.Background()

	voucher := &models.Voucher{Code: "SUMMER10", Type: models.VoucherTypePercentage, Value: 1000, Active: true}
	if err := f.vouchers.Create(ctx, voucher); err != nil {
		t.Fatal(err)
	}

	booking, err := svc.Create(ctx, &CreateBookingRequest{
		Type:        models.BookingTypeTrain,
		UserID:      f.user.ID,
		PartnerID:   f.partner.ID.Hex(),
		ProductID:   f.partner.ID.Hex(),
		Subtotal:    "200.00",
		VoucherCode: "SUMMER10",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if booking.Discount != 2000 {
		t.Errorf("discount = %s, want 20.00", booking.Discount)
	}
	if booking.Total != 18000 {
		t.Errorf("total = %s, want 180.00", booking.Total)
	}
	if booking.VoucherID == nil || *booking.VoucherID != voucher.ID {
		t.Error("voucher should be attached to the booking")
	}

	// validation only at create time; redemption happens at recognition
	stored, err := f.vouchers.GetByID(ctx, voucher.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.UsedCount != 0 {
		t.Errorf("used count after create = %d, want 0", stored.UsedCount)
	}
}

func TestCreateBookingRejectsExhaustedVoucher(t *testing.T) {
	f := newReconcileFixture(t, false)
	svc := newBookingService(t, f)
	ctx := context.Background()

	voucher := &models.Voucher{Code: "ONCE", Type: models.VoucherTypeFixed, Value: 500, Active: true, MaxUsage: 1, UsedCount: 1}
	if err := f.vouchers.Create(ctx, voucher); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Create(ctx, &CreateBookingRequest{
		Type:        models.BookingTypeBus,
		UserID:      f.user.ID,
		PartnerID:   f.partner.ID.Hex(),
		ProductID:   f.partner.ID.Hex(),
		Subtotal:    "50.00",
		VoucherCode: "ONCE",
	})
	if !models.IsVoucherError(err) {
		t.Fatalf("expected VoucherError, got %v", err)
	}
}

func TestRemoveForcesCancellation(t *testing.T) {
	f := newReconcileFixture(t, false)
	svc := newBookingService(t, f)
	ctx := context.Background()

	booking, err := svc.Create(ctx, &CreateBookingRequest{
		Type:             models.BookingTypeHotel,
		UserID:           f.user.ID,
		PartnerID:        f.partner.ID.Hex(),
		ProductID:        f.partner.ID.Hex(),
		Subtotal:         "500.00",
		TravelPointsUsed: 50,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UpdateStatus(ctx, booking.ID, models.BookingStatusPaid, ""); err != nil {
		t.Fatal(err)
	}

	if err := svc.Remove(ctx, booking.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}

	if _, err := f.bookings.GetByID(ctx, booking.ID); !models.IsNotFound(err) {
		t.Fatalf("booking should be deleted, got %v", err)
	}
	if got := f.balance(t); got != 100 {
		t.Errorf("balance after removal = %d, want 100", got)
	}
	if count, revenue := f.partnerState(t); count != 0 || revenue != 0 {
		t.Errorf("partner after removal = (%d, %s), want (0, 0.00)", count, revenue)
	}
}
