package services

import (
	"context"
	"fmt"

	"travelo/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PointsService is the loyalty-point escrow. Debits are rejected when the
// balance cannot cover them; the owning booking's travel_points_used and
// travel_points_refunded fields decide when these calls fire.
type PointsService interface {
	Debit(ctx context.Context, userID primitive.ObjectID, amount int64) error
	Credit(ctx context.Context, userID primitive.ObjectID, amount int64) error
	Balance(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

type pointsService struct {
	userRepo interfaces.UserRepository
}

func NewPointsService(userRepo interfaces.UserRepository) PointsService {
	return &pointsService{
		userRepo: userRepo,
	}
}

func (s *pointsService) Debit(ctx context.Context, userID primitive.ObjectID, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("debit amount must be non-negative")
	}
	if amount == 0 {
		return nil
	}

	return s.userRepo.AdjustPoints(ctx, userID, -amount)
}

func (s *pointsService) Credit(ctx context.Context, userID primitive.ObjectID, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("credit amount must be non-negative")
	}
	if amount == 0 {
		return nil
	}

	return s.userRepo.AdjustPoints(ctx, userID, amount)
}

func (s *pointsService) Balance(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}

	return user.TravelPoints, nil
}
