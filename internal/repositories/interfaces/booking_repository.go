package interfaces

import (
	"context"

	"travelo/internal/models"
	"travelo/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error)
	GetByCode(ctx context.Context, code string) (*models.Booking, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// CompareAndSwapStatus moves the booking from expected to next in one
	// atomic write. Returns StaleStatusError when the booking is no longer in
	// the expected status, which is what makes reconciliation exactly-once.
	CompareAndSwapStatus(ctx context.Context, id primitive.ObjectID, expected, next models.BookingStatus) error

	// SetPointsRefunded flips the idempotency guard for the point escrow.
	SetPointsRefunded(ctx context.Context, id primitive.ObjectID, refunded bool) error

	// Listing
	GetByUserID(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error)
	GetByPartnerID(ctx context.Context, partnerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error)
	GetByStatus(ctx context.Context, bookingType models.BookingType, status models.BookingStatus, params *utils.PaginationParams) ([]*models.Booking, int64, error)
}
