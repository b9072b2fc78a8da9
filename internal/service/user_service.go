package service

import (
	"context"
	"fmt"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type userService struct {
	userRepo repository.UserRepository
	logger   zerolog.Logger
}

// NewUserService creates a new user service.
func NewUserService(userRepo repository.UserRepository, logger zerolog.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		logger:   logger.With().Str("service", "user").Logger(),
	}
}

// CheckActive confirms the account exists and has not been deactivated.
func (s *userService) CheckActive(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to check user: %w", err)
	}
	if user == nil {
		return model.ErrUserNotFound
	}
	if !user.IsActive {
		return model.ErrUserInactive
	}
	return nil
}

// DeleteUser removes the account with its cart and wishlist. Orders must
// outlive their customer, so a user with orders is deactivated instead.
func (s *userService) DeleteUser(ctx context.Context, userID uuid.UUID) (outcome model.DeleteOutcome, err error) {
	tx, err := s.userRepo.BeginTx(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to delete user: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	user, err := s.userRepo.GetForUpdate(ctx, tx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to delete user: %w", err)
	}
	if user == nil {
		return "", model.ErrUserNotFound
	}

	hasOrders, err := s.userRepo.HasOrders(ctx, tx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to delete user: %w", err)
	}

	outcome = model.DeleteOutcomeDeleted
	if hasOrders {
		outcome = model.DeleteOutcomeDeactivated
		err = s.userRepo.Deactivate(ctx, tx, userID)
	} else {
		err = s.userRepo.Delete(ctx, tx, userID)
	}
	if err != nil {
		return "", err
	}

	if err = tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID.String()).
		Str("outcome", string(outcome)).
		Msg("account removed")

	return outcome, nil
}
