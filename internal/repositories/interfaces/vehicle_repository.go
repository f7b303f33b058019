package interfaces

import (
	"context"

	"travelo/internal/models"
	"travelo/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VehicleRepository interface {
	Create(ctx context.Context, vehicle *models.Vehicle) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Vehicle, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	SetStatus(ctx context.Context, id primitive.ObjectID, status models.VehicleStatus) error
	GetByOwnerID(ctx context.Context, ownerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Vehicle, int64, error)
}
