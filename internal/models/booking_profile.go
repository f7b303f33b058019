package models

// BookingProfile is the per-booking-type capability the reconciliation engine
// is parameterized by. Every booking type shares one engine; only the revenue
// predicate, the unit count, and the transition graph differ.
type BookingProfile interface {
	Type() BookingType
	IsRevenueStatus(status BookingStatus) bool
	UnitCount(b *Booking) int64
	CanTransition(from, to BookingStatus) bool
}

// hotel bills recognize revenue at PAID already; everything else at COMPLETED.
var hotelTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusPaid, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusPaid, BookingStatusCancelled},
	BookingStatusPaid:      {BookingStatusCompleted, BookingStatusCancelled},
	BookingStatusCompleted: {BookingStatusCancelled},
	BookingStatusCancelled: {BookingStatusPending},
}

var defaultTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCompleted, BookingStatusCancelled},
	BookingStatusCompleted: {BookingStatusCancelled},
	BookingStatusCancelled: {BookingStatusPending},
}

type bookingProfile struct {
	bookingType BookingType
	revenue     map[BookingStatus]bool
	transitions map[BookingStatus][]BookingStatus
}

func (p bookingProfile) Type() BookingType { return p.bookingType }

func (p bookingProfile) IsRevenueStatus(status BookingStatus) bool {
	return p.revenue[status]
}

func (p bookingProfile) UnitCount(b *Booking) int64 {
	if b.Units <= 0 {
		return 1
	}
	return b.Units
}

func (p bookingProfile) CanTransition(from, to BookingStatus) bool {
	for _, t := range p.transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

var bookingProfiles = map[BookingType]BookingProfile{
	BookingTypeHotel: bookingProfile{
		bookingType: BookingTypeHotel,
		revenue:     map[BookingStatus]bool{BookingStatusPaid: true, BookingStatusCompleted: true},
		transitions: hotelTransitions,
	},
	BookingTypeBus:      completedOnlyProfile(BookingTypeBus),
	BookingTypeDelivery: completedOnlyProfile(BookingTypeDelivery),
	BookingTypeTrain:    completedOnlyProfile(BookingTypeTrain),
	BookingTypeFlight:   completedOnlyProfile(BookingTypeFlight),
}

func completedOnlyProfile(t BookingType) BookingProfile {
	return bookingProfile{
		bookingType: t,
		revenue:     map[BookingStatus]bool{BookingStatusCompleted: true},
		transitions: defaultTransitions,
	}
}

// ProfileFor returns the capability profile for a booking type, or nil for an
// unknown type.
func ProfileFor(t BookingType) BookingProfile {
	return bookingProfiles[t]
}
