package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"travelo/internal/models"
	"travelo/internal/repositories/interfaces"
	"travelo/internal/utils"
	"travelo/pkg/logger"
)

// ProofOfPresence decides whether the evidence attached to a handoff
// checkpoint is acceptable. The shipped implementation only requires that
// photos exist; a stricter one could inspect EXIF or run face matching.
type ProofOfPresence interface {
	VerifyHandoff(proof *models.HandoffProof) error
	VerifyPickup(proof *models.HandoffProof) error
}

type photoPresence struct{}

func NewPhotoPresenceVerifier() ProofOfPresence {
	return photoPresence{}
}

func (photoPresence) VerifyHandoff(proof *models.HandoffProof) error {
	if proof == nil || len(proof.PhotoURLs) < utils.MinRentalPhotos {
		return fmt.Errorf("at least %d photo is required", utils.MinRentalPhotos)
	}
	return nil
}

func (photoPresence) VerifyPickup(proof *models.HandoffProof) error {
	if proof == nil || proof.SelfieURL == "" {
		return fmt.Errorf("a selfie is required to pick up the vehicle")
	}
	return nil
}

type CreateRentalRequest struct {
	VehicleID string    `json:"vehicle_id" binding:"required"`
	StartDate time.Time `json:"start_date" binding:"required"`
	EndDate   time.Time `json:"end_date" binding:"required"`
}

type RentalService interface {
	Create(ctx context.Context, renterID primitive.ObjectID, req *CreateRentalRequest) (*models.Rental, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Rental, error)
	GetByCode(ctx context.Context, code string) (*models.Rental, error)
	ListByRenter(ctx context.Context, renterID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Rental, int64, error)
	ListByOwner(ctx context.Context, ownerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Rental, int64, error)

	Confirm(ctx context.Context, rentalID, ownerID primitive.ObjectID, method models.PaymentMethod) (*models.Rental, error)
	StartDelivery(ctx context.Context, rentalID, ownerID primitive.ObjectID) (*models.Rental, error)
	MarkDelivered(ctx context.Context, rentalID, ownerID primitive.ObjectID, photos []string, location *models.GeoPoint) (*models.Rental, error)
	ConfirmPickup(ctx context.Context, rentalID, renterID primitive.ObjectID, selfieURL string, location *models.GeoPoint) (*models.Rental, error)
	RequestReturn(ctx context.Context, rentalID, renterID primitive.ObjectID, photos []string, location models.GeoPoint) (*models.Rental, error)
	ConfirmReturn(ctx context.Context, rentalID, ownerID primitive.ObjectID, photos []string, location models.GeoPoint) (*models.Rental, error)
	Complete(ctx context.Context, rentalID, ownerID primitive.ObjectID) (*models.Rental, error)

	ProposeOvertimeFee(ctx context.Context, rentalID, ownerID primitive.ObjectID, fee models.Cents) (*models.Rental, error)
	AcceptOvertimeFee(ctx context.Context, rentalID, renterID primitive.ObjectID) (*models.Rental, error)

	Cancel(ctx context.Context, rentalID, renterID primitive.ObjectID, reason string) (*models.Rental, error)
	OwnerCancel(ctx context.Context, rentalID, ownerID primitive.ObjectID, reason string) (*models.Rental, error)
}

type rentalService struct {
	rentalRepo  interfaces.RentalRepository
	vehicleRepo interfaces.VehicleRepository
	wallet      WalletService
	proof       ProofOfPresence
	toleranceM  float64
	logger      *logger.Logger
}

func NewRentalService(
	rentalRepo interfaces.RentalRepository,
	vehicleRepo interfaces.VehicleRepository,
	wallet WalletService,
	proof ProofOfPresence,
	geofenceToleranceM float64,
	log *logger.Logger,
) RentalService {
	if geofenceToleranceM <= 0 {
		geofenceToleranceM = utils.DefaultGeofenceToleranceM
	}
	return &rentalService{
		rentalRepo:  rentalRepo,
		vehicleRepo: vehicleRepo,
		wallet:      wallet,
		proof:       proof,
		toleranceM:  geofenceToleranceM,
		logger:      log,
	}
}

func (s *rentalService) Create(ctx context.Context, renterID primitive.ObjectID, req *CreateRentalRequest) (*models.Rental, error) {
	vehicleID, err := primitive.ObjectIDFromHex(req.VehicleID)
	if err != nil {
		return nil, fmt.Errorf("invalid vehicle id: %w", err)
	}
	if !req.EndDate.After(req.StartDate) {
		return nil, fmt.Errorf("end date must be after start date")
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle.Status != models.VehicleStatusAvailable {
		return nil, models.ConflictError{Resource: "vehicle", Msg: "not available for rent"}
	}
	if vehicle.OwnerID == renterID {
		return nil, fmt.Errorf("cannot rent your own vehicle")
	}

	days := int64(req.EndDate.Sub(req.StartDate).Hours() / 24)
	if req.EndDate.Sub(req.StartDate)%(24*time.Hour) != 0 {
		days++
	}
	if days < 1 {
		days = 1
	}

	rental := &models.Rental{
		Code:      utils.GenerateBookingCode(utils.RentalCodePrefix),
		RenterID:  renterID,
		OwnerID:   vehicle.OwnerID,
		VehicleID: vehicle.ID,
		Status:    models.RentalStatusPending,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Total:     vehicle.DailyRate * models.Cents(days),
	}
	if err := s.rentalRepo.Create(ctx, rental); err != nil {
		return nil, err
	}

	s.logger.WithRentalCode(rental.Code).WithFields(map[string]interface{}{
		"vehicle_id": vehicle.ID.Hex(),
		"total":      rental.Total.String(),
	}).Info("rental requested")

	return rental, nil
}

func (s *rentalService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Rental, error) {
	return s.rentalRepo.GetByID(ctx, id)
}

func (s *rentalService) GetByCode(ctx context.Context, code string) (*models.Rental, error) {
	return s.rentalRepo.GetByCode(ctx, code)
}

func (s *rentalService) ListByRenter(ctx context.Context, renterID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Rental, int64, error) {
	return s.rentalRepo.GetByRenterID(ctx, renterID, params)
}

func (s *rentalService) ListByOwner(ctx context.Context, ownerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Rental, int64, error) {
	return s.rentalRepo.GetByOwnerID(ctx, ownerID, params)
}

func (s *rentalService) Confirm(ctx context.Context, rentalID, ownerID primitive.ObjectID, method models.PaymentMethod) (*models.Rental, error) {
	rental, err := s.ownedRental(ctx, rentalID, ownerID)
	if err != nil {
		return nil, err
	}

	set := map[string]interface{}{"payment_method": method}
	if err := s.advance(ctx, rental, models.RentalStatusConfirmed, set); err != nil {
		return nil, err
	}
	if err := s.vehicleRepo.SetStatus(ctx, rental.VehicleID, models.VehicleStatusRented); err != nil {
		s.logger.WithError(err).Warn("failed to mark vehicle rented")
	}

	return s.rentalRepo.GetByID(ctx, rentalID)
}

func (s *rentalService) StartDelivery(ctx context.Context, rentalID, ownerID primitive.ObjectID) (*models.Rental, error) {
	rental, err := s.ownedRental(ctx, rentalID, ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.advance(ctx, rental, models.RentalStatusDelivering, nil); err != nil {
		return nil, err
	}
	return s.rentalRepo.GetByID(ctx, rentalID)
}

func (s *rentalService) MarkDelivered(ctx context.Context, rentalID, ownerID primitive.ObjectID, photos []string, location *models.GeoPoint) (*models.Rental, error) {
	rental, err := s.ownedRental(ctx, rentalID, ownerID)
	if err != nil {
		return nil, err
	}

	proof := newProof(photos, "", location, "owner")
	if err := s.proof.VerifyHandoff(proof); err != nil {
		return nil, err
	}

	set := map[string]interface{}{"delivery_proof": proof}
	if err := s.advance(ctx, rental, models.RentalStatusDelivered, set); err != nil {
		return nil, err
	}
	return s.rentalRepo.GetByID(ctx, rentalID)
}

func (s *rentalService) ConfirmPickup(ctx context.Context, rentalID, renterID primitive.ObjectID, selfieURL string, location *models.GeoPoint) (*models.Rental, error) {
	rental, err := s.rentedRental(ctx, rentalID, renterID)
	if err != nil {
		return nil, err
	}

	proof := newProof(nil, selfieURL, location, "renter")
	if err := s.proof.VerifyPickup(proof); err != nil {
		return nil, err
	}

	set := map[string]interface{}{"pickup_proof": proof}
	if err := s.advance(ctx, rental, models.RentalStatusPickedUp, set); err != nil {
		return nil, err
	}
	return s.rentalRepo.GetByID(ctx, rentalID)
}

func (s *rentalService) RequestReturn(ctx context.Context, rentalID, renterID primitive.ObjectID, photos []string, location models.GeoPoint) (*models.Rental, error) {
	rental, err := s.rentedRental(ctx, rentalID, renterID)
	if err != nil {
		return nil, err
	}

	proof := newProof(photos, "", &location, "renter")
	if err := s.proof.VerifyHandoff(proof); err != nil {
		return nil, err
	}

	set := map[string]interface{}{"return_request": proof}
	if err := s.advance(ctx, rental, models.RentalStatusReturnRequested, set); err != nil {
		return nil, err
	}
	return s.rentalRepo.GetByID(ctx, rentalID)
}

// ConfirmReturn accepts the return only when the owner stands where the
// renter reported leaving the vehicle, within the geofence tolerance.
// The boundary itself is accepted.
func (s *rentalService) ConfirmReturn(ctx context.Context, rentalID, ownerID primitive.ObjectID, photos []string, location models.GeoPoint) (*models.Rental, error) {
	rental, err := s.ownedRental(ctx, rentalID, ownerID)
	if err != nil {
		return nil, err
	}
	if rental.ReturnRequest == nil || rental.ReturnRequest.Location == nil {
		return nil, fmt.Errorf("rental %s has no return location on record", rental.Code)
	}

	reported := rental.ReturnRequest.Location
	if !utils.WithinTolerance(reported.Latitude, reported.Longitude, location.Latitude, location.Longitude, s.toleranceM) {
		distance := utils.HaversineMeters(reported.Latitude, reported.Longitude, location.Latitude, location.Longitude)
		return nil, models.GeofenceError{DistanceMeters: distance, ToleranceMeters: s.toleranceM}
	}

	proof := newProof(photos, "", &location, "owner")
	set := map[string]interface{}{"return_confirmation": proof}
	if err := s.advance(ctx, rental, models.RentalStatusReturned, set); err != nil {
		return nil, err
	}
	if err := s.vehicleRepo.SetStatus(ctx, rental.VehicleID, models.VehicleStatusAvailable); err != nil {
		s.logger.WithError(err).Warn("failed to mark vehicle available")
	}

	return s.rentalRepo.GetByID(ctx, rentalID)
}

// Complete settles the escrow: the renter's locked funds are captured and
// deposited to the owner. The capture is driven by the payout saga, so a
// crash after the status write is finished by RecoverEscrowedPayouts.
func (s *rentalService) Complete(ctx context.Context, rentalID, ownerID primitive.ObjectID) (*models.Rental, error) {
	rental, err := s.ownedRental(ctx, rentalID, ownerID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	set := map[string]interface{}{"completed_at": now}
	if err := s.advance(ctx, rental, models.RentalStatusCompleted, set); err != nil {
		return nil, err
	}

	amount := rental.Total
	if rental.OvertimeFeeAccepted {
		amount += rental.OvertimeFee
	}
	if err := s.wallet.Capture(ctx, rental.RenterID, rental.OwnerID, rental.ID, amount, rental.Code); err != nil {
		s.logger.WithRentalCode(rental.Code).WithError(err).Error("rental completed but payout needs manual reconciliation")
		return nil, err
	}

	s.logger.WithRentalCode(rental.Code).WithField("amount", amount.String()).Info("rental completed, escrow captured")

	return s.rentalRepo.GetByID(ctx, rentalID)
}

func (s *rentalService) ProposeOvertimeFee(ctx context.Context, rentalID, ownerID primitive.ObjectID, fee models.Cents) (*models.Rental, error) {
	rental, err := s.ownedRental(ctx, rentalID, ownerID)
	if err != nil {
		return nil, err
	}
	if fee <= 0 {
		return nil, fmt.Errorf("overtime fee must be positive")
	}
	if rental.Status != models.RentalStatusPickedUp && rental.Status != models.RentalStatusReturnRequested {
		return nil, models.ConflictError{Resource: "rental", Msg: "overtime fee only applies while the vehicle is out"}
	}

	updates := map[string]interface{}{
		"overtime_fee":          fee,
		"overtime_fee_accepted": false,
	}
	if err := s.rentalRepo.Update(ctx, rentalID, updates); err != nil {
		return nil, err
	}
	return s.rentalRepo.GetByID(ctx, rentalID)
}

// AcceptOvertimeFee locks the surcharge on top of the original escrow so
// Complete can capture principal and fee together.
func (s *rentalService) AcceptOvertimeFee(ctx context.Context, rentalID, renterID primitive.ObjectID) (*models.Rental, error) {
	rental, err := s.rentedRental(ctx, rentalID, renterID)
	if err != nil {
		return nil, err
	}
	if rental.OvertimeFee <= 0 {
		return nil, models.ConflictError{Resource: "rental", Msg: "no overtime fee proposed"}
	}
	if rental.OvertimeFeeAccepted {
		return rental, nil
	}

	if err := s.wallet.LockFunds(ctx, renterID, rental.OvertimeFee, rental.Code+"_overtime"); err != nil && !models.IsDuplicateReference(err) {
		return nil, err
	}
	if err := s.rentalRepo.Update(ctx, rentalID, map[string]interface{}{"overtime_fee_accepted": true}); err != nil {
		return nil, err
	}
	return s.rentalRepo.GetByID(ctx, rentalID)
}

func (s *rentalService) Cancel(ctx context.Context, rentalID, renterID primitive.ObjectID, reason string) (*models.Rental, error) {
	rental, err := s.rentedRental(ctx, rentalID, renterID)
	if err != nil {
		return nil, err
	}
	if rental.Status != models.RentalStatusPending && rental.Status != models.RentalStatusConfirmed {
		return nil, models.InvalidTransitionError{Subject: "rental", From: string(rental.Status), To: string(models.RentalStatusCancelled)}
	}

	now := time.Now()
	set := map[string]interface{}{
		"cancellation_reason": reason,
		"cancelled_at":        now,
	}
	if err := s.rentalRepo.CompareAndSwapStatus(ctx, rentalID, rental.Status, models.RentalStatusCancelled, set); err != nil {
		return nil, err
	}
	if rental.Status == models.RentalStatusConfirmed {
		if err := s.vehicleRepo.SetStatus(ctx, rental.VehicleID, models.VehicleStatusAvailable); err != nil {
			s.logger.WithError(err).Warn("failed to mark vehicle available")
		}
	}

	return s.rentalRepo.GetByID(ctx, rentalID)
}

// OwnerCancel backs out of a paid rental. The escrowed funds return to the
// renter's spendable wallet balance.
func (s *rentalService) OwnerCancel(ctx context.Context, rentalID, ownerID primitive.ObjectID, reason string) (*models.Rental, error) {
	rental, err := s.ownedRental(ctx, rentalID, ownerID)
	if err != nil {
		return nil, err
	}
	if len(reason) < utils.MinCancelReasonLength {
		return nil, fmt.Errorf("cancellation reason must be at least %d characters", utils.MinCancelReasonLength)
	}
	if rental.Status != models.RentalStatusPaid {
		return nil, models.InvalidTransitionError{Subject: "rental", From: string(rental.Status), To: string(models.RentalStatusOwnerCancelled)}
	}

	now := time.Now()
	set := map[string]interface{}{
		"cancellation_reason": reason,
		"cancelled_at":        now,
	}
	if err := s.rentalRepo.CompareAndSwapStatus(ctx, rentalID, models.RentalStatusPaid, models.RentalStatusOwnerCancelled, set); err != nil {
		return nil, err
	}

	if err := s.wallet.ReleaseLock(ctx, rental.RenterID, rental.Total, rental.Code+"_refund"); err != nil && !models.IsDuplicateReference(err) {
		s.logger.WithRentalCode(rental.Code).WithError(err).Error("owner cancelled but refund needs manual reconciliation")
		return nil, err
	}
	if err := s.vehicleRepo.SetStatus(ctx, rental.VehicleID, models.VehicleStatusAvailable); err != nil {
		s.logger.WithError(err).Warn("failed to mark vehicle available")
	}

	return s.rentalRepo.GetByID(ctx, rentalID)
}

func (s *rentalService) ownedRental(ctx context.Context, rentalID, ownerID primitive.ObjectID) (*models.Rental, error) {
	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rental.OwnerID != ownerID {
		return nil, fmt.Errorf("rental %s is not managed by this owner", rental.Code)
	}
	return rental, nil
}

func (s *rentalService) rentedRental(ctx context.Context, rentalID, renterID primitive.ObjectID) (*models.Rental, error) {
	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rental.RenterID != renterID {
		return nil, fmt.Errorf("rental %s does not belong to this renter", rental.Code)
	}
	return rental, nil
}

// advance moves the rental one step along the handoff chain. The repository
// write is conditional on the current status, so the strict ordering holds
// even with concurrent submissions.
func (s *rentalService) advance(ctx context.Context, rental *models.Rental, next models.RentalStatus, set map[string]interface{}) error {
	if !rental.Status.CanTransitionTo(next) {
		return models.InvalidTransitionError{Subject: "rental", From: string(rental.Status), To: string(next)}
	}
	return s.rentalRepo.CompareAndSwapStatus(ctx, rental.ID, rental.Status, next, set)
}

func newProof(photos []string, selfieURL string, location *models.GeoPoint, submittedBy string) *models.HandoffProof {
	now := time.Now()
	return &models.HandoffProof{
		PhotoURLs:   photos,
		SelfieURL:   selfieURL,
		Location:    location,
		SubmittedBy: submittedBy,
		SubmittedAt: &now,
	}
}
