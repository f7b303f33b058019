package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VoucherType string

const (
	VoucherTypePercentage VoucherType = "percentage"
	VoucherTypeFixed      VoucherType = "fixed"
)

type Voucher struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Code          string             `json:"code" bson:"code" validate:"required"` // stored uppercased, unique
	Type          VoucherType        `json:"type" bson:"type" validate:"required"`
	Value         Cents              `json:"value" bson:"value" validate:"required"`       // pct*100 for percentage type
	MaxDiscount   Cents              `json:"max_discount" bson:"max_discount" default:"0"` // 0 = uncapped
	MinOrderValue Cents              `json:"min_order_value" bson:"min_order_value" default:"0"`
	UsedCount     int64              `json:"used_count" bson:"used_count" default:"0"`
	MaxUsage      int64              `json:"max_usage" bson:"max_usage" default:"0"` // 0 = unlimited
	Active        bool               `json:"active" bson:"active" default:"true"`
	ValidFrom     *time.Time         `json:"valid_from" bson:"valid_from"`
	ValidUntil    *time.Time         `json:"valid_until" bson:"valid_until"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}
