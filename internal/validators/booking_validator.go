package validators

import (
	"fmt"

	"travelo/internal/models"
	"travelo/internal/utils"
)

// CreateBookingInput mirrors the booking creation payload for validation
// before it reaches the service layer.
type CreateBookingInput struct {
	Type             string `validate:"required"`
	PartnerID        string `validate:"required,object_id"`
	ProductID        string `validate:"required,object_id"`
	Units            int64  `validate:"min=0"`
	Subtotal         string `validate:"required,money_string"`
	VoucherCode      string `validate:"omitempty,voucher_code"`
	TravelPointsUsed int64  `validate:"min=0"`
}

func ValidateCreateBooking(input *CreateBookingInput) error {
	if errs := ValidateStruct(input); len(errs) > 0 {
		return errs
	}

	if models.ProfileFor(models.BookingType(input.Type)) == nil {
		return fmt.Errorf("unknown booking type %q", input.Type)
	}
	if input.Units > utils.MaxBookingUnits {
		return fmt.Errorf("units cannot exceed %d", utils.MaxBookingUnits)
	}

	return nil
}

// ValidateBookingStatus checks that a requested status is one the state
// machine knows about at all; whether the move is legal is decided later.
func ValidateBookingStatus(status string) (models.BookingStatus, error) {
	switch s := models.BookingStatus(status); s {
	case models.BookingStatusPending,
		models.BookingStatusConfirmed,
		models.BookingStatusPaid,
		models.BookingStatusCompleted,
		models.BookingStatusCancelled:
		return s, nil
	}
	return "", fmt.Errorf("unknown booking status %q", status)
}
