package interfaces

import (
	"context"

	"travelo/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WalletRepository interface {
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Wallet, error)
	EnsureWallet(ctx context.Context, userID primitive.ObjectID) (*models.Wallet, error)

	// All balance movements are guarded atomic increments paired with a ledger
	// entry whose reference is unique, so replays are rejected by the index.
	Deposit(ctx context.Context, userID primitive.ObjectID, amount models.Cents, reference, description string) error
	LockFunds(ctx context.Context, userID primitive.ObjectID, amount models.Cents, reference string) error
	ReleaseLock(ctx context.Context, userID primitive.ObjectID, amount models.Cents, reference string) error
	CaptureLocked(ctx context.Context, userID primitive.ObjectID, amount models.Cents, reference string) error

	GetTransactionByReference(ctx context.Context, reference string) (*models.WalletTransaction, error)
}

type PayoutRepository interface {
	Create(ctx context.Context, payout *models.Payout) error
	GetByRentalID(ctx context.Context, rentalID primitive.ObjectID) (*models.Payout, error)
	MarkCaptured(ctx context.Context, id primitive.ObjectID) error
	GetEscrowed(ctx context.Context) ([]*models.Payout, error)
}
