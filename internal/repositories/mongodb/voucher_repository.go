package mongodb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"travelo/internal/models"
	"travelo/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type voucherRepository struct {
	collection *mongo.Collection
}

func NewVoucherRepository(db *mongo.Database) interfaces.VoucherRepository {
	return &voucherRepository{
		collection: db.Collection("vouchers"),
	}
}

func (r *voucherRepository) Create(ctx context.Context, voucher *models.Voucher) error {
	voucher.ID = primitive.NewObjectID()
	voucher.Code = strings.ToUpper(strings.TrimSpace(voucher.Code))
	voucher.CreatedAt = time.Now()
	voucher.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, voucher)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ConflictError{Resource: "voucher", Msg: "code already exists"}
		}
		return fmt.Errorf("failed to create voucher: %w", err)
	}

	return nil
}

func (r *voucherRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Voucher, error) {
	var voucher models.Voucher
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&voucher)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.NotFoundError{Resource: "voucher"}
		}
		return nil, fmt.Errorf("failed to get voucher: %w", err)
	}

	return &voucher, nil
}

func (r *voucherRepository) GetByCode(ctx context.Context, code string) (*models.Voucher, error) {
	var voucher models.Voucher
	err := r.collection.FindOne(ctx, bson.M{"code": strings.ToUpper(strings.TrimSpace(code))}).Decode(&voucher)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.NotFoundError{Resource: "voucher"}
		}
		return nil, fmt.Errorf("failed to get voucher by code: %w", err)
	}

	return &voucher, nil
}

func (r *voucherRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update voucher: %w", err)
	}

	return nil
}

// Redeem bumps used_count atomically; a follow-up conditional write flips
// active off once a capped voucher is spent.
func (r *voucherRepository) Redeem(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{"used_count": 1},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to redeem voucher: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.NotFoundError{Resource: "voucher"}
	}

	_, err = r.collection.UpdateOne(
		ctx,
		bson.M{
			"_id":       id,
			"max_usage": bson.M{"$gt": 0},
			"$expr":     bson.M{"$gte": bson.A{"$used_count", "$max_usage"}},
		},
		bson.M{"$set": bson.M{"active": false, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate capped voucher: %w", err)
	}

	return nil
}

func (r *voucherRepository) Unredeem(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "used_count": bson.M{"$gt": 0}},
		bson.M{
			"$inc": bson.M{"used_count": -1},
			"$set": bson.M{"active": true, "updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to unredeem voucher: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.NotFoundError{Resource: "voucher"}
	}

	return nil
}
