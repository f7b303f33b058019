package interfaces

import (
	"context"

	"travelo/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error

	// AdjustPoints applies a signed delta to the travel-point balance as one
	// atomic increment. Negative deltas are guarded: the write only matches
	// when the balance can cover it, otherwise InsufficientPointsError.
	AdjustPoints(ctx context.Context, id primitive.ObjectID, delta int64) error
}
