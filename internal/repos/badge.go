package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/readleap/readleap-backend/internal/logger"
	"github.com/readleap/readleap-backend/internal/types"
)

type BadgeRepo interface {
	ListDefinitions(ctx context.Context, tx *gorm.DB) ([]*types.BadgeDefinition, error)
	ListAwardedBadgeIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error)
	// CreateAward inserts the unlock row; the unique (user_id, badge_id)
	// index makes a concurrent double-award surface as a duplicated-key error.
	CreateAward(ctx context.Context, tx *gorm.DB, award *types.BadgeAward) error
}

type badgeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBadgeRepo(db *gorm.DB, baseLog *logger.Logger) BadgeRepo {
	repoLog := baseLog.With("repo", "BadgeRepo")
	return &badgeRepo{db: db, log: repoLog}
}

func (r *badgeRepo) ListDefinitions(ctx context.Context, tx *gorm.DB) ([]*types.BadgeDefinition, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.BadgeDefinition
	if err := transaction.WithContext(ctx).
		Order("display_order ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *badgeRepo) ListAwardedBadgeIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var ids []uuid.UUID
	if err := transaction.WithContext(ctx).
		Model(&types.BadgeAward{}).
		Where("user_id = ?", userID).
		Pluck("badge_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *badgeRepo) CreateAward(ctx context.Context, tx *gorm.DB, award *types.BadgeAward) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(award).Error
}
