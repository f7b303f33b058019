package mongodb

import (
	"context"
	"fmt"
	"time"

	"travelo/internal/models"
	"travelo/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type walletRepository struct {
	collection   *mongo.Collection
	transactions *mongo.Collection
}

func NewWalletRepository(db *mongo.Database) interfaces.WalletRepository {
	return &walletRepository{
		collection:   db.Collection("wallets"),
		transactions: db.Collection("wallet_transactions"),
	}
}

func (r *walletRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&wallet)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.NotFoundError{Resource: "wallet"}
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	return &wallet, nil
}

func (r *walletRepository) EnsureWallet(ctx context.Context, userID primitive.ObjectID) (*models.Wallet, error) {
	now := time.Now()
	var wallet models.Wallet
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"user_id": userID},
		bson.M{
			"$setOnInsert": bson.M{
				"balance":    int64(0),
				"locked":     int64(0),
				"currency":   "USD",
				"is_active":  true,
				"created_at": now,
			},
			"$set": bson.M{"updated_at": now},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&wallet)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure wallet: %w", err)
	}

	return &wallet, nil
}

// Deposit credits the balance and writes the ledger entry. The unique index
// on transaction references makes a replayed deposit a no-op conflict.
func (r *walletRepository) Deposit(ctx context.Context, userID primitive.ObjectID, amount models.Cents, reference, description string) error {
	if err := r.recordTransaction(ctx, userID, models.WalletTxTypeDeposit, amount, reference, description); err != nil {
		return err
	}

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"user_id": userID},
		bson.M{
			"$inc": bson.M{"balance": int64(amount)},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to deposit: %w", err)
	}

	return nil
}

// LockFunds moves balance into escrow. The filter guards against overdraft.
func (r *walletRepository) LockFunds(ctx context.Context, userID primitive.ObjectID, amount models.Cents, reference string) error {
	if err := r.recordTransaction(ctx, userID, models.WalletTxTypeLock, amount, reference, "escrow lock"); err != nil {
		return err
	}

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"user_id": userID, "balance": bson.M{"$gte": int64(amount)}},
		bson.M{
			"$inc": bson.M{"balance": -int64(amount), "locked": int64(amount)},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to lock funds: %w", err)
	}
	if result.MatchedCount == 0 {
		// roll the ledger entry back so a retry with the same reference works
		_, _ = r.transactions.DeleteOne(ctx, bson.M{"reference": reference})
		return models.InsufficientFundsError{UserID: userID.Hex(), Amount: amount}
	}

	return nil
}

func (r *walletRepository) ReleaseLock(ctx context.Context, userID primitive.ObjectID, amount models.Cents, reference string) error {
	if err := r.recordTransaction(ctx, userID, models.WalletTxTypeRelease, amount, reference, "escrow release"); err != nil {
		return err
	}

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"user_id": userID, "locked": bson.M{"$gte": int64(amount)}},
		bson.M{
			"$inc": bson.M{"balance": int64(amount), "locked": -int64(amount)},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	if result.MatchedCount == 0 {
		_, _ = r.transactions.DeleteOne(ctx, bson.M{"reference": reference})
		return models.ConflictError{Resource: "wallet", Msg: "locked balance too low"}
	}

	return nil
}

// CaptureLocked burns escrowed funds after a payout; the paired deposit to the
// payee carries its own reference.
func (r *walletRepository) CaptureLocked(ctx context.Context, userID primitive.ObjectID, amount models.Cents, reference string) error {
	if err := r.recordTransaction(ctx, userID, models.WalletTxTypeCapture, amount, reference, "escrow capture"); err != nil {
		return err
	}

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"user_id": userID, "locked": bson.M{"$gte": int64(amount)}},
		bson.M{
			"$inc": bson.M{"locked": -int64(amount)},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to capture locked funds: %w", err)
	}
	if result.MatchedCount == 0 {
		_, _ = r.transactions.DeleteOne(ctx, bson.M{"reference": reference})
		return models.ConflictError{Resource: "wallet", Msg: "locked balance too low"}
	}

	return nil
}

func (r *walletRepository) GetTransactionByReference(ctx context.Context, reference string) (*models.WalletTransaction, error) {
	var tx models.WalletTransaction
	err := r.transactions.FindOne(ctx, bson.M{"reference": reference}).Decode(&tx)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.NotFoundError{Resource: "wallet transaction"}
		}
		return nil, fmt.Errorf("failed to get wallet transaction: %w", err)
	}

	return &tx, nil
}

func (r *walletRepository) recordTransaction(ctx context.Context, userID primitive.ObjectID, txType models.WalletTxType, amount models.Cents, reference, description string) error {
	tx := &models.WalletTransaction{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		Type:        txType,
		Amount:      amount,
		Reference:   reference,
		Description: description,
		CreatedAt:   time.Now(),
	}

	_, err := r.transactions.InsertOne(ctx, tx)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.ConflictError{Resource: "wallet transaction", Msg: "reference already processed"}
		}
		return fmt.Errorf("failed to record wallet transaction: %w", err)
	}

	return nil
}
