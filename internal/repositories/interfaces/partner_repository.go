package interfaces

import (
	"context"

	"travelo/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PartnerRepository interface {
	Create(ctx context.Context, partner *models.Partner) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Partner, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error

	// AdjustMetrics applies signed deltas to booking_times and revenue in a
	// single atomic increment. Both fields are hot under concurrent bookings;
	// read-then-write is never allowed here.
	AdjustMetrics(ctx context.Context, id primitive.ObjectID, countDelta int64, revenueDelta models.Cents) error
}
