package models

import "testing"

func TestProfileForKnowsEveryBookingType(t *testing.T) {
	types := []BookingType{
		BookingTypeHotel,
		BookingTypeBus,
		BookingTypeDelivery,
		BookingTypeTrain,
		BookingTypeFlight,
	}
	for _, bt := range types {
		if ProfileFor(bt) == nil {
			t.Errorf("no profile for booking type %s", bt)
		}
	}
	if ProfileFor(BookingType("cruise")) != nil {
		t.Error("expected nil profile for unknown booking type")
	}
}

func TestHotelRecognizesRevenueAtPaid(t *testing.T) {
	hotel := ProfileFor(BookingTypeHotel)
	flight := ProfileFor(BookingTypeFlight)

	if !hotel.IsRevenueStatus(BookingStatusPaid) {
		t.Error("hotel PAID should be a revenue status")
	}
	if !hotel.IsRevenueStatus(BookingStatusCompleted) {
		t.Error("hotel COMPLETED should be a revenue status")
	}
	if flight.IsRevenueStatus(BookingStatusPaid) {
		t.Error("flight PAID should not be a revenue status")
	}
	if !flight.IsRevenueStatus(BookingStatusCompleted) {
		t.Error("flight COMPLETED should be a revenue status")
	}
}

func TestBookingTransitions(t *testing.T) {
	tests := []struct {
		name string
		typ  BookingType
		from BookingStatus
		to   BookingStatus
		want bool
	}{
		{"hotel pending to paid", BookingTypeHotel, BookingStatusPending, BookingStatusPaid, true},
		{"hotel confirmed to paid", BookingTypeHotel, BookingStatusConfirmed, BookingStatusPaid, true},
		{"hotel paid to completed", BookingTypeHotel, BookingStatusPaid, BookingStatusCompleted, true},
		{"hotel completed to pending", BookingTypeHotel, BookingStatusCompleted, BookingStatusPending, false},
		{"hotel cancelled reinstated", BookingTypeHotel, BookingStatusCancelled, BookingStatusPending, true},
		{"bus pending to paid", BookingTypeBus, BookingStatusPending, BookingStatusPaid, false},
		{"bus confirmed to completed", BookingTypeBus, BookingStatusConfirmed, BookingStatusCompleted, true},
		{"flight completed to cancelled", BookingTypeFlight, BookingStatusCompleted, BookingStatusCancelled, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProfileFor(tt.typ).CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestUnitCountDefaultsToOne(t *testing.T) {
	p := ProfileFor(BookingTypeTrain)
	if got := p.UnitCount(&Booking{Units: 0}); got != 1 {
		t.Errorf("UnitCount with zero units = %d, want 1", got)
	}
	if got := p.UnitCount(&Booking{Units: 4}); got != 4 {
		t.Errorf("UnitCount = %d, want 4", got)
	}
}

func TestRentalHandoffChainIsStrict(t *testing.T) {
	tests := []struct {
		from RentalStatus
		to   RentalStatus
		want bool
	}{
		{RentalStatusPending, RentalStatusConfirmed, true},
		{RentalStatusConfirmed, RentalStatusPaid, true},
		{RentalStatusPaid, RentalStatusDelivering, true},
		{RentalStatusDelivering, RentalStatusDelivered, true},
		{RentalStatusDelivered, RentalStatusPickedUp, true},
		{RentalStatusPickedUp, RentalStatusReturnRequested, true},
		{RentalStatusReturnRequested, RentalStatusReturned, true},
		{RentalStatusReturned, RentalStatusCompleted, true},

		// no skipping steps
		{RentalStatusPaid, RentalStatusDelivered, false},
		{RentalStatusDelivered, RentalStatusReturned, false},
		{RentalStatusPickedUp, RentalStatusCompleted, false},

		// cancellation branches
		{RentalStatusPending, RentalStatusCancelled, true},
		{RentalStatusConfirmed, RentalStatusCancelled, true},
		{RentalStatusPaid, RentalStatusOwnerCancelled, true},
		{RentalStatusPaid, RentalStatusCancelled, false},
		{RentalStatusPickedUp, RentalStatusCancelled, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}

	for _, s := range []RentalStatus{RentalStatusCompleted, RentalStatusCancelled, RentalStatusOwnerCancelled} {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
}
