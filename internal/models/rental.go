package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RentalStatus string

const (
	RentalStatusPending         RentalStatus = "pending"
	RentalStatusConfirmed       RentalStatus = "confirmed"
	RentalStatusPaid            RentalStatus = "paid"
	RentalStatusDelivering      RentalStatus = "delivering"
	RentalStatusDelivered       RentalStatus = "delivered"
	RentalStatusPickedUp        RentalStatus = "picked_up"
	RentalStatusReturnRequested RentalStatus = "return_requested"
	RentalStatusReturned        RentalStatus = "returned"
	RentalStatusCompleted       RentalStatus = "completed"
	RentalStatusCancelled       RentalStatus = "cancelled"
	RentalStatusOwnerCancelled  RentalStatus = "owner_cancelled"
)

type GeoPoint struct {
	Latitude  float64 `json:"latitude" bson:"latitude" validate:"required"`
	Longitude float64 `json:"longitude" bson:"longitude" validate:"required"`
}

// HandoffProof records the physical-world evidence attached at each rental
// checkpoint. Verification today is presence-of-photo only.
type HandoffProof struct {
	PhotoURLs   []string   `json:"photo_urls" bson:"photo_urls"`
	SelfieURL   string     `json:"selfie_url" bson:"selfie_url"`
	Location    *GeoPoint  `json:"location" bson:"location"`
	SubmittedBy string     `json:"submitted_by" bson:"submitted_by"`
	SubmittedAt *time.Time `json:"submitted_at" bson:"submitted_at"`
}

type Rental struct {
	ID                  primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Code                string              `json:"code" bson:"code" validate:"required"`
	RenterID            primitive.ObjectID  `json:"renter_id" bson:"renter_id" validate:"required"`
	OwnerID             primitive.ObjectID  `json:"owner_id" bson:"owner_id" validate:"required"`
	VehicleID           primitive.ObjectID  `json:"vehicle_id" bson:"vehicle_id" validate:"required"`
	Status              RentalStatus        `json:"status" bson:"status" default:"pending"`
	StartDate           time.Time           `json:"start_date" bson:"start_date" validate:"required"`
	EndDate             time.Time           `json:"end_date" bson:"end_date" validate:"required"`
	Total               Cents               `json:"total" bson:"total"`
	OvertimeFee         Cents               `json:"overtime_fee" bson:"overtime_fee" default:"0"`
	OvertimeFeeAccepted bool                `json:"overtime_fee_accepted" bson:"overtime_fee_accepted" default:"false"`
	PaymentMethod       PaymentMethod       `json:"payment_method" bson:"payment_method"`
	PaymentID           *primitive.ObjectID `json:"payment_id" bson:"payment_id"`
	EscrowReference     string              `json:"escrow_reference" bson:"escrow_reference"`
	DeliveryProof       *HandoffProof       `json:"delivery_proof" bson:"delivery_proof"`
	PickupProof         *HandoffProof       `json:"pickup_proof" bson:"pickup_proof"`
	ReturnRequest       *HandoffProof       `json:"return_request" bson:"return_request"`
	ReturnConfirmation  *HandoffProof       `json:"return_confirmation" bson:"return_confirmation"`
	CancellationReason  string              `json:"cancellation_reason" bson:"cancellation_reason"`
	CancelledAt         *time.Time          `json:"cancelled_at" bson:"cancelled_at"`
	CompletedAt         *time.Time          `json:"completed_at" bson:"completed_at"`
	CreatedAt           time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at" bson:"updated_at"`
}

// rentalTransitions is the strict handoff chain. Cancellation branches are
// authorized separately in the rental service (renter vs owner).
var rentalTransitions = map[RentalStatus][]RentalStatus{
	RentalStatusPending:         {RentalStatusConfirmed, RentalStatusCancelled},
	RentalStatusConfirmed:       {RentalStatusPaid, RentalStatusCancelled},
	RentalStatusPaid:            {RentalStatusDelivering, RentalStatusOwnerCancelled},
	RentalStatusDelivering:      {RentalStatusDelivered},
	RentalStatusDelivered:       {RentalStatusPickedUp},
	RentalStatusPickedUp:        {RentalStatusReturnRequested},
	RentalStatusReturnRequested: {RentalStatusReturned},
	RentalStatusReturned:        {RentalStatusCompleted},
	RentalStatusCompleted:       {},
	RentalStatusCancelled:       {},
	RentalStatusOwnerCancelled:  {},
}

func (s RentalStatus) CanTransitionTo(target RentalStatus) bool {
	for _, t := range rentalTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

func (s RentalStatus) IsTerminal() bool {
	return len(rentalTransitions[s]) == 0
}
