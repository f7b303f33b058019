package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Partner is the cooperation aggregate. BookingTimes and Revenue only ever
// move by signed deltas; they are never recomputed from bookings in the hot path.
type Partner struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name" validate:"required"`
	Email        string             `json:"email" bson:"email"`
	Phone        string             `json:"phone" bson:"phone"`
	BookingTimes int64              `json:"booking_times" bson:"booking_times" default:"0"`
	Revenue      Cents              `json:"revenue" bson:"revenue" default:"0"`
	IsActive     bool               `json:"is_active" bson:"is_active" default:"true"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}
