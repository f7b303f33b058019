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

type bookingRepository struct {
	collection *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) interfaces.BookingRepository {
	return &bookingRepository{
		collection: db.Collection("bookings"),
	}
}

// Basic CRUD operations
func (r *bookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	booking.ID = primitive.NewObjectID()
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ConflictError{Resource: "booking", Msg: "code already exists"}
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	var booking models.Booking
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&booking)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.NotFoundError{Resource: "booking"}
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	return &booking, nil
}

func (r *bookingRepository) GetByCode(ctx context.Context, code string) (*models.Booking, error) {
	var booking models.Booking
	err := r.collection.FindOne(ctx, bson.M{"code": code}).Decode(&booking)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.NotFoundError{Resource: "booking"}
		}
		return nil, fmt.Errorf("failed to get booking by code: %w", err)
	}

	return &booking, nil
}

func (r *bookingRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}

	return nil
}

func (r *bookingRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	return nil
}

// CompareAndSwapStatus is the exactly-once gate for reconciliation. The filter
// carries the expected status, so of two racing transitions only one matches.
func (r *bookingRepository) CompareAndSwapStatus(ctx context.Context, id primitive.ObjectID, expected, next models.BookingStatus) error {
	set := bson.M{
		"status":     next,
		"updated_at": time.Now(),
	}
	switch next {
	case models.BookingStatusCancelled:
		set["cancelled_at"] = time.Now()
	case models.BookingStatusCompleted:
		set["completed_at"] = time.Now()
	}

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "status": expected},
		bson.M{"$set": set},
	)
	if err != nil {
		return fmt.Errorf("failed to swap booking status: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.StaleStatusError{ID: id.Hex(), Expected: string(expected)}
	}

	return nil
}

func (r *bookingRepository) SetPointsRefunded(ctx context.Context, id primitive.ObjectID, refunded bool) error {
	return r.Update(ctx, id, map[string]interface{}{"travel_points_refunded": refunded})
}

// Listing
func (r *bookingRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	return r.list(ctx, bson.M{"user_id": userID}, params)
}

func (r *bookingRepository) GetByPartnerID(ctx context.Context, partnerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	return r.list(ctx, bson.M{"partner_id": partnerID}, params)
}

func (r *bookingRepository) GetByStatus(ctx context.Context, bookingType models.BookingType, status models.BookingStatus, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	return r.list(ctx, bson.M{"type": bookingType, "status": status}, params)
}

func (r *bookingRepository) list(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.FindOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, 0, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, total, nil
}
