package services

import (
	"context"
	"fmt"

	"travelo/internal/models"
	"travelo/internal/repositories/interfaces"
	"travelo/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WalletService wraps the wallet ledger. References derived from booking and
// payment ids keep every movement idempotent; a replay hits the unique index
// on the ledger and comes back as a conflict.
type WalletService interface {
	GetWallet(ctx context.Context, userID primitive.ObjectID) (*models.Wallet, error)
	Deposit(ctx context.Context, userID primitive.ObjectID, amount models.Cents, reference, description string) error

	// GetTransaction looks a ledger entry up by its unique reference, the
	// handle support staff get from gateway or payout records.
	GetTransaction(ctx context.Context, reference string) (*models.WalletTransaction, error)
	LockFunds(ctx context.Context, userID primitive.ObjectID, amount models.Cents, reference string) error
	ReleaseLock(ctx context.Context, userID primitive.ObjectID, amount models.Cents, reference string) error

	// Capture settles an escrow to the payee: the payer's locked funds are
	// burned and the payee is credited, with the payout record tracking the
	// two-step saga.
	Capture(ctx context.Context, payerID, payeeID, rentalID primitive.ObjectID, amount models.Cents, reference string) error

	// RecoverEscrowedPayouts finishes captures that crashed between payout
	// creation and settlement.
	RecoverEscrowedPayouts(ctx context.Context) error
}

type walletService struct {
	walletRepo interfaces.WalletRepository
	payoutRepo interfaces.PayoutRepository
	logger     *logger.Logger
}

func NewWalletService(walletRepo interfaces.WalletRepository, payoutRepo interfaces.PayoutRepository, log *logger.Logger) WalletService {
	return &walletService{
		walletRepo: walletRepo,
		payoutRepo: payoutRepo,
		logger:     log,
	}
}

func (s *walletService) GetWallet(ctx context.Context, userID primitive.ObjectID) (*models.Wallet, error) {
	return s.walletRepo.EnsureWallet(ctx, userID)
}

func (s *walletService) GetTransaction(ctx context.Context, reference string) (*models.WalletTransaction, error) {
	return s.walletRepo.GetTransactionByReference(ctx, reference)
}

func (s *walletService) Deposit(ctx context.Context, userID primitive.ObjectID, amount models.Cents, reference, description string) error {
	if amount <= 0 {
		return fmt.Errorf("deposit amount must be positive")
	}
	if _, err := s.walletRepo.EnsureWallet(ctx, userID); err != nil {
		return err
	}

	return s.walletRepo.Deposit(ctx, userID, amount, reference, description)
}

func (s *walletService) LockFunds(ctx context.Context, userID primitive.ObjectID, amount models.Cents, reference string) error {
	if amount <= 0 {
		return fmt.Errorf("lock amount must be positive")
	}
	if _, err := s.walletRepo.EnsureWallet(ctx, userID); err != nil {
		return err
	}

	return s.walletRepo.LockFunds(ctx, userID, amount, reference)
}

func (s *walletService) ReleaseLock(ctx context.Context, userID primitive.ObjectID, amount models.Cents, reference string) error {
	if amount <= 0 {
		return fmt.Errorf("release amount must be positive")
	}

	return s.walletRepo.ReleaseLock(ctx, userID, amount, reference)
}

func (s *walletService) Capture(ctx context.Context, payerID, payeeID, rentalID primitive.ObjectID, amount models.Cents, reference string) error {
	payout := &models.Payout{
		RentalID:  rentalID,
		PayerID:   payerID,
		OwnerID:   payeeID,
		Amount:    amount,
		Status:    models.PayoutStatusEscrowed,
		Reference: reference,
	}
	if err := s.payoutRepo.Create(ctx, payout); err != nil {
		if !models.IsConflict(err) {
			return err
		}
		// payout already exists: resume the saga from where it stopped
		existing, getErr := s.payoutRepo.GetByRentalID(ctx, rentalID)
		if getErr != nil {
			return getErr
		}
		if existing.Status == models.PayoutStatusCaptured {
			return nil
		}
		payout = existing
	}

	return s.settle(ctx, payerID, payout)
}

func (s *walletService) RecoverEscrowedPayouts(ctx context.Context) error {
	payouts, err := s.payoutRepo.GetEscrowed(ctx)
	if err != nil {
		return err
	}

	for _, payout := range payouts {
		s.logger.WithField("rental_id", payout.RentalID.Hex()).Warn("resuming stuck payout capture")
		// resume the full saga: the crash may have landed before the capture
		// leg, and crediting the owner without burning the renter's locked
		// funds would create money. Both ledger references guard replay.
		if err := s.settle(ctx, payout.PayerID, payout); err != nil {
			return err
		}
	}

	return nil
}

func (s *walletService) settle(ctx context.Context, payerID primitive.ObjectID, payout *models.Payout) error {
	if err := s.walletRepo.CaptureLocked(ctx, payerID, payout.Amount, payout.Reference+"_capture"); err != nil && !models.IsDuplicateReference(err) {
		return err
	}
	if err := s.depositLeg(ctx, payout); err != nil {
		return err
	}

	return s.payoutRepo.MarkCaptured(ctx, payout.ID)
}

func (s *walletService) depositLeg(ctx context.Context, payout *models.Payout) error {
	if _, err := s.walletRepo.EnsureWallet(ctx, payout.OwnerID); err != nil {
		return err
	}
	err := s.walletRepo.Deposit(ctx, payout.OwnerID, payout.Amount, payout.Reference+"_payout", "rental payout")
	if err != nil && !models.IsDuplicateReference(err) {
		return err
	}

	return nil
}
