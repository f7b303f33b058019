package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentStatus string
type PaymentMethod string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusSuccess  PaymentStatus = "success"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"

	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodWallet PaymentMethod = "wallet"
	PaymentMethodUPI    PaymentMethod = "upi"
)

type Payment struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OrderID       string             `json:"order_id" bson:"order_id" validate:"required"` // unique
	RentalID      primitive.ObjectID `json:"rental_id" bson:"rental_id" validate:"required"`
	UserID        primitive.ObjectID `json:"user_id" bson:"user_id" validate:"required"`
	Gateway       string             `json:"gateway" bson:"gateway"`
	ExternalID    string             `json:"external_id" bson:"external_id"`
	Method        PaymentMethod      `json:"method" bson:"method"`
	Status        PaymentStatus      `json:"status" bson:"status" default:"pending"`
	Amount        Cents              `json:"amount" bson:"amount" validate:"required"`
	RefundAmount  Cents              `json:"refund_amount" bson:"refund_amount" default:"0"`
	FailureReason string             `json:"failure_reason" bson:"failure_reason"`
	PaidAt        *time.Time         `json:"paid_at" bson:"paid_at"`
	RefundedAt    *time.Time         `json:"refunded_at" bson:"refunded_at"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}
