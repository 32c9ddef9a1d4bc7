package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/readleap/readleap-backend/internal/logger"
	"github.com/readleap/readleap-backend/internal/types"
)

type CheckInRepo interface {
	Create(ctx context.Context, tx *gorm.DB, checkIn *types.CheckIn) error
	// GetByUserAndDate expects day to be UTC midnight.
	GetByUserAndDate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, day time.Time) (*types.CheckIn, error)
}

type checkInRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCheckInRepo(db *gorm.DB, baseLog *logger.Logger) CheckInRepo {
	repoLog := baseLog.With("repo", "CheckInRepo")
	return &checkInRepo{db: db, log: repoLog}
}

func (r *checkInRepo) Create(ctx context.Context, tx *gorm.DB, checkIn *types.CheckIn) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(checkIn).Error
}

func (r *checkInRepo) GetByUserAndDate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, day time.Time) (*types.CheckIn, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.CheckIn
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND check_date = ?", userID, day).
		First(&result).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}
