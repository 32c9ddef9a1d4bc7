package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/readleap/readleap-backend/internal/logger"
	"github.com/readleap/readleap-backend/internal/types"
)

type SkillMasteryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, mastery *types.SkillMastery) error
	Save(ctx context.Context, tx *gorm.DB, mastery *types.SkillMastery) error
	// GetByUserAndSkillForUpdate locks the mastery row for the cumulative
	// counter update.
	GetByUserAndSkillForUpdate(ctx context.Context, tx *gorm.DB, userID, skillID uuid.UUID) (*types.SkillMastery, error)
	// GetByUserAndSkillCode resolves the skill by code first; nil when the
	// code is unknown or the user has no row yet.
	GetByUserAndSkillCode(ctx context.Context, tx *gorm.DB, userID uuid.UUID, skillCode string) (*types.SkillMastery, error)
}

type skillMasteryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSkillMasteryRepo(db *gorm.DB, baseLog *logger.Logger) SkillMasteryRepo {
	repoLog := baseLog.With("repo", "SkillMasteryRepo")
	return &skillMasteryRepo{db: db, log: repoLog}
}

func (r *skillMasteryRepo) Create(ctx context.Context, tx *gorm.DB, mastery *types.SkillMastery) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(mastery).Error
}

func (r *skillMasteryRepo) Save(ctx context.Context, tx *gorm.DB, mastery *types.SkillMastery) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(mastery).Error
}

func (r *skillMasteryRepo) GetByUserAndSkillForUpdate(ctx context.Context, tx *gorm.DB, userID, skillID uuid.UUID) (*types.SkillMastery, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.SkillMastery
	if err := forUpdate(transaction.WithContext(ctx)).
		Where("user_id = ? AND skill_id = ?", userID, skillID).
		First(&result).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *skillMasteryRepo) GetByUserAndSkillCode(ctx context.Context, tx *gorm.DB, userID uuid.UUID, skillCode string) (*types.SkillMastery, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var skill types.SkillDimension
	if err := transaction.WithContext(ctx).
		Where("code = ?", skillCode).
		First(&skill).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	var result types.SkillMastery
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND skill_id = ?", userID, skill.ID).
		First(&result).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}
