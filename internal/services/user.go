package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/readleap/readleap-backend/internal/apierr"
	"github.com/readleap/readleap-backend/internal/logger"
	"github.com/readleap/readleap-backend/internal/repos"
)

// UserStats exposes the counters the engine caches on the user row.
type UserStats struct {
	TotalReadings int `json:"total_readings"`
	StreakDays    int `json:"streak_days"`
	MaxStreakDays int `json:"max_streak_days"`
}

type UserService interface {
	GetStats(ctx context.Context, userID uuid.UUID) (*UserStats, error)
}

type userService struct {
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserService(log *logger.Logger, userRepo repos.UserRepo) UserService {
	return &userService{
		log:      log.With("service", "UserService"),
		userRepo: userRepo,
	}
}

func (us *userService) GetStats(ctx context.Context, userID uuid.UUID) (*UserStats, error) {
	user, err := us.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch user: %w", err)
	}
	if user == nil {
		return nil, apierr.NotFound("user not found")
	}
	return &UserStats{
		TotalReadings: user.TotalReadings,
		StreakDays:    user.StreakDays,
		MaxStreakDays: user.MaxStreakDays,
	}, nil
}
