package interfaces

import (
	"context"

	"travelo/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VoucherRepository interface {
	Create(ctx context.Context, voucher *models.Voucher) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Voucher, error)
	// GetByCode looks a voucher up case-insensitively (codes are stored uppercased).
	GetByCode(ctx context.Context, code string) (*models.Voucher, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error

	// Redeem increments used_count atomically and deactivates the voucher once
	// the usage cap is reached. A max_usage of 0 means unlimited.
	Redeem(ctx context.Context, id primitive.ObjectID) error

	// Unredeem decrements used_count and reactivates a capped-out voucher.
	// Only called when voucher reversal is enabled by configuration.
	Unredeem(ctx context.Context, id primitive.ObjectID) error
}
