package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"travelo/internal/models"
	"travelo/internal/repositories/interfaces"
	"travelo/internal/utils"
	"travelo/pkg/logger"
	"travelo/pkg/payment"
)

type PaymentService interface {
	// CreatePayment opens a gateway order for a confirmed rental and records
	// a pending payment keyed by a unique order id.
	CreatePayment(ctx context.Context, rentalID, userID primitive.ObjectID, method models.PaymentMethod, gateway string) (*models.Payment, *payment.OrderResponse, error)

	// HandleCallback processes a gateway IPN. Delivery is at-least-once:
	// the signature is verified first, then a replayed notification for an
	// already-settled payment is acknowledged without side effects.
	HandleCallback(ctx context.Context, gateway string, payload []byte, signature string) (*models.Payment, error)

	Refund(ctx context.Context, orderID string, amount models.Cents, reason string) (*models.Payment, error)
	GetByOrderID(ctx context.Context, orderID string) (*models.Payment, error)
}

// CallbackNotice is the gateway-agnostic shape both adapters deliver after
// signature verification.
type CallbackNotice struct {
	OrderID    string `json:"order_id"`
	ExternalID string `json:"external_id"`
	Event      string `json:"event"`
	Reason     string `json:"reason"`
}

type paymentService struct {
	paymentRepo interfaces.PaymentRepository
	rentalRepo  interfaces.RentalRepository
	wallet      WalletService
	providers   map[string]payment.Provider
	logger      *logger.Logger
}

func NewPaymentService(
	paymentRepo interfaces.PaymentRepository,
	rentalRepo interfaces.RentalRepository,
	wallet WalletService,
	providers map[string]payment.Provider,
	log *logger.Logger,
) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		rentalRepo:  rentalRepo,
		wallet:      wallet,
		providers:   providers,
		logger:      log,
	}
}

func (s *paymentService) CreatePayment(ctx context.Context, rentalID, userID primitive.ObjectID, method models.PaymentMethod, gateway string) (*models.Payment, *payment.OrderResponse, error) {
	provider, ok := s.providers[gateway]
	if !ok {
		return nil, nil, fmt.Errorf("unsupported payment gateway: %s", gateway)
	}

	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, nil, err
	}
	if rental.RenterID != userID {
		return nil, nil, fmt.Errorf("rental %s does not belong to user", rental.Code)
	}
	if rental.Status != models.RentalStatusConfirmed {
		return nil, nil, models.InvalidTransitionError{
			Subject: "rental", From: string(rental.Status), To: string(models.RentalStatusPaid),
		}
	}

	amount := rental.Total
	if rental.OvertimeFeeAccepted {
		amount += rental.OvertimeFee
	}

	pay := &models.Payment{
		OrderID:  utils.GenerateBookingCode(utils.PaymentOrderPrefix),
		RentalID: rental.ID,
		UserID:   userID,
		Gateway:  gateway,
		Method:   method,
		Status:   models.PaymentStatusPending,
		Amount:   amount,
	}
	if err := s.paymentRepo.Create(ctx, pay); err != nil {
		return nil, nil, fmt.Errorf("failed to create payment: %w", err)
	}

	order, err := provider.CreateOrder(ctx, &payment.OrderRequest{
		OrderID:     pay.OrderID,
		Amount:      amount,
		Currency:    utils.DefaultCurrency,
		Description: fmt.Sprintf("rental %s", rental.Code),
		CustomerID:  userID.Hex(),
		Metadata:    map[string]interface{}{"rental_code": rental.Code},
	})
	if err != nil {
		if markErr := s.paymentRepo.MarkFailed(ctx, pay.ID, err.Error()); markErr != nil {
			s.logger.WithError(markErr).Error("failed to mark payment failed")
		}
		return nil, nil, fmt.Errorf("failed to create gateway order: %w", err)
	}

	if order.GatewayOrderID != "" {
		updates := map[string]interface{}{"external_id": order.GatewayOrderID}
		if err := s.paymentRepo.Update(ctx, pay.ID, updates); err != nil {
			s.logger.WithError(err).Warn("failed to record gateway order id")
		}
		pay.ExternalID = order.GatewayOrderID
	}

	return pay, order, nil
}

func (s *paymentService) HandleCallback(ctx context.Context, gateway string, payload []byte, signature string) (*models.Payment, error) {
	provider, ok := s.providers[gateway]
	if !ok {
		return nil, fmt.Errorf("unsupported payment gateway: %s", gateway)
	}
	if err := provider.VerifyCallback(payload, signature); err != nil {
		return nil, err
	}

	var notice CallbackNotice
	if err := json.Unmarshal(payload, &notice); err != nil {
		return nil, fmt.Errorf("failed to decode callback payload: %w", err)
	}
	if notice.OrderID == "" {
		return nil, fmt.Errorf("callback payload missing order_id")
	}

	pay, err := s.paymentRepo.GetByOrderID(ctx, notice.OrderID)
	if err != nil {
		return nil, err
	}

	log := s.logger.WithFields(map[string]interface{}{
		"order_id": pay.OrderID,
		"gateway":  gateway,
		"event":    notice.Event,
	})

	switch notice.Event {
	case "payment.failed":
		if pay.Status != models.PaymentStatusPending {
			return pay, nil
		}
		if err := s.paymentRepo.MarkFailed(ctx, pay.ID, notice.Reason); err != nil {
			return nil, err
		}
		pay.Status = models.PaymentStatusFailed
		log.Info("payment failed")
		return pay, nil

	case "payment.captured", "payment.success":
		first, err := s.paymentRepo.MarkSuccess(ctx, pay.ID, notice.ExternalID)
		if err != nil {
			return nil, err
		}
		if !first {
			log.Info("duplicate payment notification ignored")
			return pay, nil
		}
		pay.Status = models.PaymentStatusSuccess
		now := time.Now()
		pay.PaidAt = &now
		if err := s.settleRental(ctx, pay); err != nil {
			// the payment is recorded; the rental advance is retried by
			// operators, never by replaying the IPN
			log.WithError(err).Error("payment settled but rental needs manual reconciliation")
			return pay, err
		}
		s.logger.LogPaymentEvent(pay.OrderID, "captured", pay.Amount.String(), utils.DefaultCurrency)
		return pay, nil

	default:
		log.Info("unhandled payment event ignored")
		return pay, nil
	}
}

// settleRental funds the renter's wallet, locks the rental total in escrow
// and advances the rental to PAID. Each wallet movement carries a unique
// reference derived from the order, so a partial retry cannot double-pay.
func (s *paymentService) settleRental(ctx context.Context, pay *models.Payment) error {
	rental, err := s.rentalRepo.GetByID(ctx, pay.RentalID)
	if err != nil {
		return err
	}

	depositRef := pay.OrderID + "_deposit"
	if err := s.wallet.Deposit(ctx, rental.RenterID, pay.Amount, depositRef, "rental payment "+rental.Code); err != nil && !models.IsDuplicateReference(err) {
		return fmt.Errorf("failed to fund wallet: %w", err)
	}

	escrowRef := rental.Code + "_escrow"
	if err := s.wallet.LockFunds(ctx, rental.RenterID, pay.Amount, escrowRef); err != nil && !models.IsDuplicateReference(err) {
		return fmt.Errorf("failed to escrow funds: %w", err)
	}

	set := map[string]interface{}{
		"payment_id":       pay.ID,
		"escrow_reference": escrowRef,
	}
	err = s.rentalRepo.CompareAndSwapStatus(ctx, rental.ID, models.RentalStatusConfirmed, models.RentalStatusPaid, set)
	if err == nil {
		return nil
	}
	if !models.IsStaleStatus(err) {
		return err
	}

	// the rental moved while the notification was in flight
	current, getErr := s.rentalRepo.GetByID(ctx, rental.ID)
	if getErr != nil {
		return getErr
	}
	if current.Status == models.RentalStatusPaid {
		// a concurrent delivery already advanced it
		return nil
	}

	// cancelled (or otherwise dead) rental: the money just escrowed has no
	// settlement ahead of it, hand it back to the renter's spendable balance
	releaseRef := pay.OrderID + "_release"
	if relErr := s.wallet.ReleaseLock(ctx, rental.RenterID, pay.Amount, releaseRef); relErr != nil && !models.IsDuplicateReference(relErr) {
		return fmt.Errorf("failed to release escrow for unpayable rental: %w", relErr)
	}
	s.logger.WithRentalCode(rental.Code).WithFields(map[string]interface{}{
		"order_id": pay.OrderID,
		"status":   current.Status,
	}).Warn("rental no longer payable, escrow released back to renter")
	return nil
}

func (s *paymentService) Refund(ctx context.Context, orderID string, amount models.Cents, reason string) (*models.Payment, error) {
	pay, err := s.paymentRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if pay.Status != models.PaymentStatusSuccess {
		return nil, fmt.Errorf("payment %s is not refundable in status %s", orderID, pay.Status)
	}
	if amount <= 0 || amount > pay.Amount {
		return nil, fmt.Errorf("refund amount out of range")
	}

	provider, ok := s.providers[pay.Gateway]
	if !ok {
		return nil, fmt.Errorf("unsupported payment gateway: %s", pay.Gateway)
	}

	if _, err := provider.Refund(ctx, &payment.RefundRequest{
		GatewayOrderID: pay.ExternalID,
		Amount:         amount,
		Reason:         reason,
	}); err != nil {
		return nil, fmt.Errorf("failed to refund payment: %w", err)
	}

	if err := s.paymentRepo.MarkRefunded(ctx, pay.ID, amount); err != nil {
		return nil, err
	}
	pay.Status = models.PaymentStatusRefunded
	pay.RefundAmount = amount

	s.logger.LogPaymentEvent(pay.OrderID, "refunded", amount.String(), utils.DefaultCurrency)
	return pay, nil
}

func (s *paymentService) GetByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	return s.paymentRepo.GetByOrderID(ctx, orderID)
}
