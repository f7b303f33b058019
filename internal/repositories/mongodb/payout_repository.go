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

type payoutRepository struct {
	collection *mongo.Collection
}

func NewPayoutRepository(db *mongo.Database) interfaces.PayoutRepository {
	return &payoutRepository{
		collection: db.Collection("payouts"),
	}
}

func (r *payoutRepository) Create(ctx context.Context, payout *models.Payout) error {
	payout.ID = primitive.NewObjectID()
	payout.CreatedAt = time.Now()
	payout.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, payout)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ConflictError{Resource: "payout", Msg: "rental already has a payout"}
		}
		return fmt.Errorf("failed to create payout: %w", err)
	}

	return nil
}

func (r *payoutRepository) GetByRentalID(ctx context.Context, rentalID primitive.ObjectID) (*models.Payout, error) {
	var payout models.Payout
	err := r.collection.FindOne(ctx, bson.M{"rental_id": rentalID}).Decode(&payout)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.NotFoundError{Resource: "payout"}
		}
		return nil, fmt.Errorf("failed to get payout: %w", err)
	}

	return &payout, nil
}

func (r *payoutRepository) MarkCaptured(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"status":     models.PayoutStatusCaptured,
			"updated_at": time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark payout captured: %w", err)
	}

	return nil
}

// GetEscrowed feeds the payout reconciliation sweep: payouts created at
// COMPLETED whose capture never finished.
func (r *payoutRepository) GetEscrowed(ctx context.Context) ([]*models.Payout, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"status": models.PayoutStatusEscrowed})
	if err != nil {
		return nil, fmt.Errorf("failed to list escrowed payouts: %w", err)
	}
	defer cursor.Close(ctx)

	var payouts []*models.Payout
	if err := cursor.All(ctx, &payouts); err != nil {
		return nil, fmt.Errorf("failed to decode payouts: %w", err)
	}

	return payouts, nil
}
