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

type CreateBookingRequest struct {
	Type             models.BookingType `json:"type" binding:"required"`
	UserID           primitive.ObjectID `json:"-"`
	PartnerID        string             `json:"partner_id" binding:"required"`
	ProductID        string             `json:"product_id" binding:"required"`
	Units            int64              `json:"units"`
	Subtotal         string             `json:"subtotal" binding:"required"`
	VoucherCode      string             `json:"voucher_code"`
	TravelPointsUsed int64              `json:"travel_points_used"`
}

type BookingService interface {
	// Create returns a PENDING booking with points already debited and the
	// voucher validated but not yet redeemed.
	Create(ctx context.Context, req *CreateBookingRequest) (*models.Booking, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Booking, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error)

	// UpdateStatus runs the reconciliation engine for the requested move.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, next models.BookingStatus, reason string) (*models.Booking, error)

	// Remove forces a CANCELLED reconciliation pass before deleting the record.
	Remove(ctx context.Context, id primitive.ObjectID) error
}

type bookingService struct {
	bookingRepo interfaces.BookingRepository
	partnerRepo interfaces.PartnerRepository
	vouchers    VoucherService
	points      PointsService
	reconciler  ReconcileService
	logger      *logger.Logger
}

func NewBookingService(
	bookingRepo interfaces.BookingRepository,
	partnerRepo interfaces.PartnerRepository,
	vouchers VoucherService,
	points PointsService,
	reconciler ReconcileService,
	log *logger.Logger,
) BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		partnerRepo: partnerRepo,
		vouchers:    vouchers,
		points:      points,
		reconciler:  reconciler,
		logger:      log,
	}
}

func (s *bookingService) Create(ctx context.Context, req *CreateBookingRequest) (*models.Booking, error) {
	profile := models.ProfileFor(req.Type)
	if profile == nil {
		return nil, fmt.Errorf("unknown booking type %s", req.Type)
	}

	partnerID, err := primitive.ObjectIDFromHex(req.PartnerID)
	if err != nil {
		return nil, fmt.Errorf("invalid partner id: %w", err)
	}
	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("invalid product id: %w", err)
	}
	if _, err := s.partnerRepo.GetByID(ctx, partnerID); err != nil {
		return nil, err
	}

	subtotal, err := models.ParseCents(req.Subtotal)
	if err != nil {
		return nil, err
	}
	if subtotal < 0 {
		return nil, fmt.Errorf("subtotal must be non-negative")
	}
	if req.TravelPointsUsed < 0 {
		return nil, fmt.Errorf("travel points must be non-negative")
	}

	units := req.Units
	if units <= 0 {
		units = 1
	}
	if units > utils.MaxBookingUnits {
		return nil, fmt.Errorf("at most %d units per booking", utils.MaxBookingUnits)
	}

	var voucherID *primitive.ObjectID
	var discount models.Cents
	if req.VoucherCode != "" {
		voucher, err := s.vouchers.GetByCode(ctx, req.VoucherCode)
		if err != nil {
			return nil, err
		}
		if err := s.vouchers.Validate(voucher, subtotal, time.Now()); err != nil {
			return nil, err
		}
		discount = s.vouchers.Discount(voucher, subtotal)
		voucherID = &voucher.ID
	}

	// Points leave the user's balance at creation; the booking record is the
	// escrow receipt from here on.
	if err := s.points.Debit(ctx, req.UserID, req.TravelPointsUsed); err != nil {
		return nil, err
	}

	booking := &models.Booking{
		Code:             utils.GenerateBookingCode(utils.BookingCodePrefix),
		Type:             req.Type,
		UserID:           req.UserID,
		PartnerID:        partnerID,
		ProductID:        productID,
		VoucherID:        voucherID,
		Status:           models.BookingStatusPending,
		Units:            units,
		Subtotal:         subtotal,
		Discount:         discount,
		Total:            subtotal - discount,
		TravelPointsUsed: req.TravelPointsUsed,
	}

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		// hand the escrowed points back, the booking never existed
		if creditErr := s.points.Credit(ctx, req.UserID, req.TravelPointsUsed); creditErr != nil {
			s.logger.WithUserID(req.UserID).WithError(creditErr).Error("failed to return points after booking create failure")
		}
		return nil, err
	}

	s.logger.LogBookingEvent(booking.ID, "created", map[string]interface{}{"code": booking.Code})

	return booking, nil
}

func (s *bookingService) Get(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	return s.bookingRepo.GetByID(ctx, id)
}

func (s *bookingService) ListByUser(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Booking, int64, error) {
	return s.bookingRepo.GetByUserID(ctx, userID, params)
}

func (s *bookingService) UpdateStatus(ctx context.Context, id primitive.ObjectID, next models.BookingStatus, reason string) (*models.Booking, error) {
	return s.reconciler.ApplyTransition(ctx, id, next, TransitionOptions{Reason: reason})
}

func (s *bookingService) Remove(ctx context.Context, id primitive.ObjectID) error {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	// Never drop a booking without unwinding what it already reconciled.
	if booking.Status != models.BookingStatusCancelled {
		if _, err := s.reconciler.ApplyTransition(ctx, id, models.BookingStatusCancelled, TransitionOptions{Force: true, Reason: "booking removed"}); err != nil {
			return err
		}
	}

	return s.bookingRepo.Delete(ctx, id)
}
