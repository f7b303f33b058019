package validators

import (
	"fmt"
	"strings"
	"time"

	"travelo/internal/utils"
)

type CreateRentalInput struct {
	VehicleID string    `validate:"required,object_id"`
	StartDate time.Time `validate:"required"`
	EndDate   time.Time `validate:"required"`
}

func ValidateCreateRental(input *CreateRentalInput) error {
	if errs := ValidateStruct(input); len(errs) > 0 {
		return errs
	}
	if !input.EndDate.After(input.StartDate) {
		return fmt.Errorf("end date must be after start date")
	}
	return nil
}

type GeoPointInput struct {
	Latitude  float64 `validate:"latitude"`
	Longitude float64 `validate:"longitude"`
}

func ValidateGeoPoint(input *GeoPointInput) error {
	if errs := ValidateStruct(input); len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateHandoffPhotos requires at least one non-empty photo URL.
func ValidateHandoffPhotos(photos []string) error {
	count := 0
	for _, url := range photos {
		if strings.TrimSpace(url) != "" {
			count++
		}
	}
	if count < utils.MinRentalPhotos {
		return fmt.Errorf("at least %d photo is required", utils.MinRentalPhotos)
	}
	return nil
}

func ValidateCancelReason(reason string) error {
	if len(strings.TrimSpace(reason)) < utils.MinCancelReasonLength {
		return fmt.Errorf("cancellation reason must be at least %d characters", utils.MinCancelReasonLength)
	}
	return nil
}
