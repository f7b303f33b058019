package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingType string
type BookingStatus string

const (
	BookingTypeHotel    BookingType = "hotel"
	BookingTypeBus      BookingType = "bus"
	BookingTypeDelivery BookingType = "delivery"
	BookingTypeTrain    BookingType = "train"
	BookingTypeFlight   BookingType = "flight"

	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusPaid      BookingStatus = "paid"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type Booking struct {
	ID                   primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Code                 string              `json:"code" bson:"code" validate:"required"`
	Type                 BookingType         `json:"type" bson:"type" validate:"required"`
	UserID               primitive.ObjectID  `json:"user_id" bson:"user_id" validate:"required"`
	PartnerID            primitive.ObjectID  `json:"partner_id" bson:"partner_id" validate:"required"`
	ProductID            primitive.ObjectID  `json:"product_id" bson:"product_id" validate:"required"`
	VoucherID            *primitive.ObjectID `json:"voucher_id" bson:"voucher_id"`
	Status               BookingStatus       `json:"status" bson:"status" default:"pending"`
	Units                int64               `json:"units" bson:"units" default:"1"`
	Subtotal             Cents               `json:"subtotal" bson:"subtotal"`
	Discount             Cents               `json:"discount" bson:"discount" default:"0"`
	Total                Cents               `json:"total" bson:"total"`
	TravelPointsUsed     int64               `json:"travel_points_used" bson:"travel_points_used" default:"0"`
	TravelPointsRefunded bool                `json:"travel_points_refunded" bson:"travel_points_refunded" default:"false"`
	CancellationReason   string              `json:"cancellation_reason" bson:"cancellation_reason"`
	CancelledAt          *time.Time          `json:"cancelled_at" bson:"cancelled_at"`
	CompletedAt          *time.Time          `json:"completed_at" bson:"completed_at"`
	CreatedAt            time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at" bson:"updated_at"`
}
