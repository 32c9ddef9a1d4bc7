package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/readleap/readleap-backend/internal/logger"
	"github.com/readleap/readleap-backend/internal/repos"
	"github.com/readleap/readleap-backend/internal/types"
)

// StreakService maintains the daily check-in ledger and the streak counters
// cached on the user row. The calendar reference is UTC midnight: every
// check-in day, and the "yesterday" comparison, use the same clock.
type StreakService interface {
	// HandleCheckIn records a check-in for today unless one already exists.
	// It mutates user's streak counters in place; the caller persists the
	// user row inside the same transaction. Returns whether a new check-in
	// happened and the current streak.
	HandleCheckIn(ctx context.Context, tx *gorm.DB, user *types.User, session *types.ReadingSession, today time.Time) (bool, int, error)
}

type streakService struct {
	log         *logger.Logger
	checkInRepo repos.CheckInRepo
}

func NewStreakService(log *logger.Logger, checkInRepo repos.CheckInRepo) StreakService {
	return &streakService{
		log:         log.With("service", "StreakService"),
		checkInRepo: checkInRepo,
	}
}

// UTCDay truncates t to UTC midnight.
func UTCDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (ss *streakService) HandleCheckIn(ctx context.Context, tx *gorm.DB, user *types.User, session *types.ReadingSession, today time.Time) (bool, int, error) {
	today = UTCDay(today)

	existing, err := ss.checkInRepo.GetByUserAndDate(ctx, tx, user.ID, today)
	if err != nil {
		return false, 0, fmt.Errorf("fetch check-in: %w", err)
	}
	if existing != nil {
		// Completing several sessions in one day checks in once.
		return false, user.StreakDays, nil
	}

	sessionID := session.ID
	checkIn := &types.CheckIn{
		UserID:    user.ID,
		CheckDate: today,
		SessionID: &sessionID,
	}
	if err := ss.checkInRepo.Create(ctx, tx, checkIn); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// A concurrent completion won the day.
			return false, user.StreakDays, nil
		}
		return false, 0, fmt.Errorf("create check-in: %w", err)
	}

	yesterday := today.AddDate(0, 0, -1)
	prior, err := ss.checkInRepo.GetByUserAndDate(ctx, tx, user.ID, yesterday)
	if err != nil {
		return false, 0, fmt.Errorf("fetch prior check-in: %w", err)
	}
	if prior != nil {
		user.StreakDays++
	} else {
		user.StreakDays = 1
	}
	if user.StreakDays > user.MaxStreakDays {
		user.MaxStreakDays = user.StreakDays
	}

	return true, user.StreakDays, nil
}
