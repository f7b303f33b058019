package mongodb

import (
	"context"
	"fmt"
	"time"

	"travelo/internal/models"
	"travelo/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type partnerRepository struct {
	collection *mongo.Collection
}

func NewPartnerRepository(db *mongo.Database) interfaces.PartnerRepository {
	return &partnerRepository{
		collection: db.Collection("partners"),
	}
}

func (r *partnerRepository) Create(ctx context.Context, partner *models.Partner) error {
	partner.ID = primitive.NewObjectID()
	partner.CreatedAt = time.Now()
	partner.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, partner)
	if err != nil {
		return fmt.Errorf("failed to create partner: %w", err)
	}

	return nil
}

func (r *partnerRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Partner, error) {
	var partner models.Partner
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&partner)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.NotFoundError{Resource: "partner"}
		}
		return nil, fmt.Errorf("failed to get partner: %w", err)
	}

	return &partner, nil
}

func (r *partnerRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update partner: %w", err)
	}

	return nil
}

// AdjustMetrics never reads the current counters; both deltas land in one $inc
// so concurrent bookings against the same partner cannot lose updates.
func (r *partnerRepository) AdjustMetrics(ctx context.Context, id primitive.ObjectID, countDelta int64, revenueDelta models.Cents) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{
				"booking_times": countDelta,
				"revenue":       int64(revenueDelta),
			},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to adjust partner metrics: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.NotFoundError{Resource: "partner"}
	}

	return nil
}
