package mongodb

import (
	"context"
	"fmt"
	"time"

	"travelo/internal/models"
	"travelo/internal/repositories/interfaces"
	"travelo/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type rentalRepository struct {
	collection *mongo.Collection
}

func NewRentalRepository(db *mongo.Database) interfaces.RentalRepository {
	return &rentalRepository{
		collection: db.Collection("rentals"),
	}
}

func (r *rentalRepository) Create(ctx context.Context, rental *models.Rental) error {
	rental.ID = primitive.NewObjectID()
	rental.CreatedAt = time.Now()
	rental.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, rental)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ConflictError{Resource: "rental", Msg: "code already exists"}
		}
		return fmt.Errorf("failed to create rental: %w", err)
	}

	return nil
}

func (r *rentalRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Rental, error) {
	var rental models.Rental
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&rental)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.NotFoundError{Resource: "rental"}
		}
		return nil, fmt.Errorf("failed to get rental: %w", err)
	}

	return &rental, nil
}

func (r *rentalRepository) GetByCode(ctx context.Context, code string) (*models.Rental, error) {
	var rental models.Rental
	err := r.collection.FindOne(ctx, bson.M{"code": code}).Decode(&rental)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.NotFoundError{Resource: "rental"}
		}
		return nil, fmt.Errorf("failed to get rental by code: %w", err)
	}

	return &rental, nil
}

func (r *rentalRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update rental: %w", err)
	}

	return nil
}

func (r *rentalRepository) CompareAndSwapStatus(ctx context.Context, id primitive.ObjectID, expected, next models.RentalStatus, set map[string]interface{}) error {
	if set == nil {
		set = map[string]interface{}{}
	}
	set["status"] = next
	set["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "status": expected},
		bson.M{"$set": set},
	)
	if err != nil {
		return fmt.Errorf("failed to swap rental status: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.StaleStatusError{ID: id.Hex(), Expected: string(expected)}
	}

	return nil
}

func (r *rentalRepository) GetByRenterID(ctx context.Context, renterID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Rental, int64, error) {
	return r.list(ctx, bson.M{"renter_id": renterID}, params)
}

func (r *rentalRepository) GetByOwnerID(ctx context.Context, ownerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Rental, int64, error) {
	return r.list(ctx, bson.M{"owner_id": ownerID}, params)
}

func (r *rentalRepository) list(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.Rental, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count rentals: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.FindOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list rentals: %w", err)
	}
	defer cursor.Close(ctx)

	var rentals []*models.Rental
	if err := cursor.All(ctx, &rentals); err != nil {
		return nil, 0, fmt.Errorf("failed to decode rentals: %w", err)
	}

	return rentals, total, nil
}
