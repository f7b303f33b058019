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

type paymentRepository struct {
	collection *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) interfaces.PaymentRepository {
	return &paymentRepository{
		collection: db.Collection("payments"),
	}
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	payment.ID = primitive.NewObjectID()
	payment.CreatedAt = time.Now()
	payment.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, payment)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ConflictError{Resource: "payment", Msg: "order id already exists"}
		}
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Payment, error) {
	var payment models.Payment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&payment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.NotFoundError{Resource: "payment"}
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return &payment, nil
}

func (r *paymentRepository) GetByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.collection.FindOne(ctx, bson.M{"order_id": orderID}).Decode(&payment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.NotFoundError{Resource: "payment"}
		}
		return nil, fmt.Errorf("failed to get payment by order id: %w", err)
	}

	return &payment, nil
}

func (r *paymentRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}

	return nil
}

// MarkSuccess only matches a pending payment. The bool result tells the IPN
// handler whether this delivery was the first one.
func (r *paymentRepository) MarkSuccess(ctx context.Context, id primitive.ObjectID, externalID string) (bool, error) {
	now := time.Now()
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "status": models.PaymentStatusPending},
		bson.M{"$set": bson.M{
			"status":      models.PaymentStatusSuccess,
			"external_id": externalID,
			"paid_at":     now,
			"updated_at":  now,
		}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark payment success: %w", err)
	}

	return result.MatchedCount > 0, nil
}

func (r *paymentRepository) MarkFailed(ctx context.Context, id primitive.ObjectID, reason string) error {
	return r.Update(ctx, id, map[string]interface{}{
		"status":         models.PaymentStatusFailed,
		"failure_reason": reason,
	})
}

func (r *paymentRepository) MarkRefunded(ctx context.Context, id primitive.ObjectID, amount models.Cents) error {
	now := time.Now()
	return r.Update(ctx, id, map[string]interface{}{
		"status":        models.PaymentStatusRefunded,
		"refund_amount": int64(amount),
		"refunded_at":   now,
	})
}
