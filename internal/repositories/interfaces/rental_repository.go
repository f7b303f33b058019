package interfaces

import (
	"context"

	"travelo/internal/models"
	"travelo/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RentalRepository interface {
	Create(ctx context.Context, rental *models.Rental) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Rental, error)
	GetByCode(ctx context.Context, code string) (*models.Rental, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error

	// CompareAndSwapStatus advances the rental only when it is still in the
	// expected status, applying extra field updates in the same write so
	// handoff proofs land together with the transition.
	CompareAndSwapStatus(ctx context.Context, id primitive.ObjectID, expected, next models.RentalStatus, set map[string]interface{}) error

	GetByRenterID(ctx context.Context, renterID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Rental, int64, error)
	GetByOwnerID(ctx context.Context, ownerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Rental, int64, error)
}
