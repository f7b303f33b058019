package services

import (
	"context"
	"time"

	"travelo/internal/models"
	"travelo/internal/repositories/interfaces"
	"travelo/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VoucherService interface {
	Create(ctx context.Context, voucher *models.Voucher) error
	GetByCode(ctx context.Context, code string) (*models.Voucher, error)

	// Validate checks applicability only; it never mutates the voucher.
	Validate(voucher *models.Voucher, orderTotal models.Cents, now time.Time) error
	// Discount computes the applicable discount, bounded by the order total.
	Discount(voucher *models.Voucher, orderTotal models.Cents) models.Cents

	Redeem(ctx context.Context, id primitive.ObjectID) error
	Unredeem(ctx context.Context, id primitive.ObjectID) error
}

type voucherService struct {
	voucherRepo interfaces.VoucherRepository
}

func NewVoucherService(voucherRepo interfaces.VoucherRepository) VoucherService {
	return &voucherService{
		voucherRepo: voucherRepo,
	}
}

func (s *voucherService) Create(ctx context.Context, voucher *models.Voucher) error {
	return s.voucherRepo.Create(ctx, voucher)
}

func (s *voucherService) GetByCode(ctx context.Context, code string) (*models.Voucher, error) {
	return s.voucherRepo.GetByCode(ctx, code)
}

func (s *voucherService) Validate(voucher *models.Voucher, orderTotal models.Cents, now time.Time) error {
	if !voucher.Active {
		return models.VoucherError{Code: voucher.Code, Reason: "inactive"}
	}
	if voucher.ValidFrom != nil && now.Before(*voucher.ValidFrom) {
		return models.VoucherError{Code: voucher.Code, Reason: "not yet valid"}
	}
	if voucher.ValidUntil != nil && now.After(*voucher.ValidUntil) {
		return models.VoucherError{Code: voucher.Code, Reason: "expired"}
	}
	if voucher.MaxUsage > 0 && voucher.UsedCount >= voucher.MaxUsage {
		return models.VoucherError{Code: voucher.Code, Reason: "usage limit reached"}
	}
	if orderTotal < voucher.MinOrderValue {
		return models.VoucherError{Code: voucher.Code, Reason: "order below minimum value"}
	}

	return nil
}

func (s *voucherService) Discount(voucher *models.Voucher, orderTotal models.Cents) models.Cents {
	var discount models.Cents

	switch voucher.Type {
	case models.VoucherTypePercentage:
		// Value holds the percentage at the same 2-digit scale as money.
		discount = utils.PercentOf(orderTotal, voucher.Value.Decimal())
		discount = utils.ClampDiscount(discount, orderTotal, voucher.MaxDiscount)
	case models.VoucherTypeFixed:
		discount = utils.ClampDiscount(voucher.Value, orderTotal, 0)
	}

	return discount
}

func (s *voucherService) Redeem(ctx context.Context, id primitive.ObjectID) error {
	return s.voucherRepo.Redeem(ctx, id)
}

func (s *voucherService) Unredeem(ctx context.Context, id primitive.ObjectID) error {
	return s.voucherRepo.Unredeem(ctx, id)
}
