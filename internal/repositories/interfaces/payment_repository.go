package interfaces

import (
	"context"

	"travelo/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Payment, error)
	GetByOrderID(ctx context.Context, orderID string) (*models.Payment, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error

	// MarkSuccess records a successful gateway callback. The write is
	// conditional on the payment still being pending, so a replayed IPN
	// matches nothing and reports already-processed to the caller.
	MarkSuccess(ctx context.Context, id primitive.ObjectID, externalID string) (bool, error)
	MarkFailed(ctx context.Context, id primitive.ObjectID, reason string) error
	MarkRefunded(ctx context.Context, id primitive.ObjectID, amount models.Cents) error
}
