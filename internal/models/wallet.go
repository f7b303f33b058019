package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WalletTxType string
type PayoutStatus string

const (
	WalletTxTypeDeposit WalletTxType = "deposit"
	WalletTxTypeLock    WalletTxType = "lock"
	WalletTxTypeRelease WalletTxType = "release"
	WalletTxTypeCapture WalletTxType = "capture"
	WalletTxTypeRefund  WalletTxType = "refund"

	PayoutStatusEscrowed PayoutStatus = "escrowed"
	PayoutStatusCaptured PayoutStatus = "captured"
)

type Wallet struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"user_id" bson:"user_id" validate:"required"`
	Balance   Cents              `json:"balance" bson:"balance" default:"0"`
	Locked    Cents              `json:"locked" bson:"locked" default:"0"`
	Currency  string             `json:"currency" bson:"currency" default:"USD"`
	IsActive  bool               `json:"is_active" bson:"is_active" default:"true"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// WalletTransaction is the ledger entry behind every balance movement.
// Reference is unique, so a replayed external delivery cannot write twice.
type WalletTransaction struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID       primitive.ObjectID `json:"user_id" bson:"user_id" validate:"required"`
	Type         WalletTxType       `json:"type" bson:"type" validate:"required"`
	Amount       Cents              `json:"amount" bson:"amount" validate:"required"`
	Reference    string             `json:"reference" bson:"reference" validate:"required"`
	Description  string             `json:"description" bson:"description"`
	BalanceAfter Cents              `json:"balance_after" bson:"balance_after"`
	LockedAfter  Cents              `json:"locked_after" bson:"locked_after"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
}

// Payout tracks the escrow-to-owner capture saga for a completed rental.
// PayerID identifies the renter whose locked funds back the payout, so a
// recovery sweep can resume the capture leg without the rental record.
type Payout struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	RentalID  primitive.ObjectID `json:"rental_id" bson:"rental_id" validate:"required"`
	PayerID   primitive.ObjectID `json:"payer_id" bson:"payer_id" validate:"required"`
	OwnerID   primitive.ObjectID `json:"owner_id" bson:"owner_id" validate:"required"`
	Amount    Cents              `json:"amount" bson:"amount" validate:"required"`
	Status    PayoutStatus       `json:"status" bson:"status" default:"escrowed"`
	Reference string             `json:"reference" bson:"reference" validate:"required"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}
