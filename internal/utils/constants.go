package utils

import "time"

// Application Constants
const (
	AppName    = "Travelo"
	AppVersion = "1.0.0"

	// Default values
	DefaultCurrency = "USD"
	DefaultTimeZone = "UTC"

	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1

	// Booking Constants
	BookingCodePrefix  = "BKG"
	BookingCodeLength  = 10
	MaxBookingUnits    = 20
	ReconcileLockTTL   = 15 * time.Second
	ReconcileLockRetry = 50 * time.Millisecond

	// Rental Constants
	RentalCodePrefix          = "RNT"
	DefaultGeofenceToleranceM = 50.0 // meters
	MinCancelReasonLength     = 10
	MinRentalPhotos           = 1

	// Payment Constants
	PaymentOrderPrefix = "TRV"

	// Response status
	StatusSuccess = "success"
	StatusError   = "error"

	// Common error messages
	ErrValidationFailed = "validation failed"
	ErrInternalServer   = "internal server error"
	ErrUnauthorized     = "unauthorized"
	ErrForbidden        = "forbidden"
)
