package services

import (
	"context"
	"fmt"
	"time"

	"travelo/internal/models"
	"travelo/internal/repositories/interfaces"
	"travelo/internal/utils"
	"travelo/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TransitionOptions tunes a single ApplyTransition call. Force runs the
// cancellation reconciliation even when the transition graph would reject the
// move (used by booking removal).
type TransitionOptions struct {
	Force  bool
	Reason string
}

// TxRunner runs fn atomically. Production wires it to a MongoDB
// multi-document transaction; a nil runner executes fn directly.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// ReconcileService is the status-transition reconciliation engine shared by
// every booking type. On each transition it applies the partner revenue
// deltas, voucher redemption, and loyalty-point escrow moves that the edge
// calls for, exactly once per genuine transition.
type ReconcileService interface {
	ApplyTransition(ctx context.Context, bookingID primitive.ObjectID, next models.BookingStatus, opts TransitionOptions) (*models.Booking, error)
}

type reconcileService struct {
	bookingRepo     interfaces.BookingRepository
	partnerRepo     interfaces.PartnerRepository
	vouchers        VoucherService
	points          PointsService
	cache           CacheService
	tx              TxRunner
	logger          *logger.Logger
	voucherReversal bool
}

func NewReconcileService(
	bookingRepo interfaces.BookingRepository,
	partnerRepo interfaces.PartnerRepository,
	vouchers VoucherService,
	points PointsService,
	cache CacheService,
	tx TxRunner,
	log *logger.Logger,
	voucherReversal bool,
) ReconcileService {
	if tx == nil {
		tx = func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(ctx)
		}
	}
	return &reconcileService{
		bookingRepo:     bookingRepo,
		partnerRepo:     partnerRepo,
		vouchers:        vouchers,
		points:          points,
		cache:           cache,
		tx:              tx,
		logger:          log,
		voucherReversal: voucherReversal,
	}
}

func (s *reconcileService) ApplyTransition(ctx context.Context, bookingID primitive.ObjectID, next models.BookingStatus, opts TransitionOptions) (*models.Booking, error) {
	unlock, err := s.lockBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	profile := models.ProfileFor(booking.Type)
	if profile == nil {
		return nil, fmt.Errorf("no profile registered for booking type %s", booking.Type)
	}

	prev := booking.Status
	if prev == next {
		return booking, nil
	}

	cancelling := next == models.BookingStatusCancelled
	if !profile.CanTransition(prev, next) && !(opts.Force && cancelling) {
		return nil, models.InvalidTransitionError{Subject: string(booking.Type) + " booking", From: string(prev), To: string(next)}
	}

	prevRevenue := profile.IsRevenueStatus(prev)
	nextRevenue := profile.IsRevenueStatus(next)
	log := s.logger.WithBookingID(bookingID).WithFields(map[string]interface{}{
		"booking_type": booking.Type,
		"from":         prev,
		"to":           next,
	})

	err = s.tx(ctx, func(ctx context.Context) error {
		// The CAS is the exactly-once gate: when a concurrent caller already
		// moved the booking away from prev, this write matches nothing and no
		// deltas of ours are ever applied.
		if err := s.bookingRepo.CompareAndSwapStatus(ctx, bookingID, prev, next); err != nil {
			return err
		}

		if opts.Reason != "" && cancelling {
			if err := s.bookingRepo.Update(ctx, bookingID, map[string]interface{}{"cancellation_reason": opts.Reason}); err != nil {
				return err
			}
		}

		// Recognition edge: the sale starts counting toward the partner.
		if !prevRevenue && nextRevenue {
			if err := s.recognize(ctx, booking, profile); err != nil {
				log.WithError(err).Error("revenue recognition incomplete, booking needs manual reconciliation")
				return err
			}
		}

		// Reversal edge: the exact negative of recognition.
		if prevRevenue && !nextRevenue {
			if err := s.reverse(ctx, booking, profile); err != nil {
				log.WithError(err).Error("revenue reversal incomplete, booking needs manual reconciliation")
				return err
			}
		}

		// Refund edge: give escrowed points back, at most once per cycle.
		if (cancelling || opts.Force) && booking.TravelPointsUsed > 0 && !booking.TravelPointsRefunded {
			if err := s.points.Credit(ctx, booking.UserID, booking.TravelPointsUsed); err != nil {
				log.WithError(err).Error("point refund incomplete, booking needs manual reconciliation")
				return err
			}
			if err := s.bookingRepo.SetPointsRefunded(ctx, bookingID, true); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.LogBookingEvent(bookingID, "reconciled", map[string]interface{}{
		"booking_type": booking.Type,
		"from":         prev,
		"to":           next,
	})

	return s.bookingRepo.GetByID(ctx, bookingID)
}

func (s *reconcileService) recognize(ctx context.Context, booking *models.Booking, profile models.BookingProfile) error {
	units := profile.UnitCount(booking)
	if err := s.partnerRepo.AdjustMetrics(ctx, booking.PartnerID, units, booking.Total); err != nil {
		return err
	}

	if booking.VoucherID != nil {
		if err := s.vouchers.Redeem(ctx, *booking.VoucherID); err != nil {
			return err
		}
	}

	// A booking whose points were refunded during a cancellation must not keep
	// the refund when it is reinstated: re-debit and clear the guard.
	if booking.TravelPointsUsed > 0 && booking.TravelPointsRefunded {
		if err := s.points.Debit(ctx, booking.UserID, booking.TravelPointsUsed); err != nil {
			return err
		}
		if err := s.bookingRepo.SetPointsRefunded(ctx, booking.ID, false); err != nil {
			return err
		}
		booking.TravelPointsRefunded = false
	}

	return nil
}

func (s *reconcileService) reverse(ctx context.Context, booking *models.Booking, profile models.BookingProfile) error {
	units := profile.UnitCount(booking)
	if err := s.partnerRepo.AdjustMetrics(ctx, booking.PartnerID, -units, booking.Total.Neg()); err != nil {
		return err
	}

	// Voucher redemption is only reversed when the deployment opts in;
	// by default a spent voucher stays spent even if the sale falls through.
	if booking.VoucherID != nil && s.voucherReversal {
		if err := s.vouchers.Unredeem(ctx, *booking.VoucherID); err != nil {
			return err
		}
	}

	return nil
}

// lockBooking serializes reconciliation per booking id so two simultaneous
// status updates cannot both read the same previous status.
func (s *reconcileService) lockBooking(ctx context.Context, bookingID primitive.ObjectID) (func(), error) {
	key := fmt.Sprintf("reconcile_booking_%s", bookingID.Hex())
	deadline := time.Now().Add(utils.ReconcileLockTTL)

	for {
		ok, err := s.cache.SetNX(ctx, key, time.Now().UnixNano(), utils.ReconcileLockTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire reconcile lock: %w", err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, models.ConflictError{Resource: "booking", Msg: "reconciliation already in progress"}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(utils.ReconcileLockRetry):
		}
	}

	return func() {
		if err := s.cache.Delete(context.Background(), key); err != nil {
			s.logger.WithError(err).Warn("failed to release reconcile lock")
		}
	}, nil
}
