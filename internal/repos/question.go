package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/readleap/readleap-backend/internal/logger"
	"github.com/readleap/readleap-backend/internal/types"
)

type QuestionRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, questionID uuid.UUID) (*types.Question, error)
	// GetByIDWithSkills preloads the question's skill tags and their dimensions.
	GetByIDWithSkills(ctx context.Context, tx *gorm.DB, questionID uuid.UUID) (*types.Question, error)
	CountByArticleID(ctx context.Context, tx *gorm.DB, articleID uuid.UUID) (int64, error)
}

type questionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionRepo {
	repoLog := baseLog.With("repo", "QuestionRepo")
	return &questionRepo{db: db, log: repoLog}
}

func (r *questionRepo) GetByID(ctx context.Context, tx *gorm.DB, questionID uuid.UUID) (*types.Question, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Question
	if err := transaction.WithContext(ctx).
		Where("id = ?", questionID).
		First(&result).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *questionRepo) GetByIDWithSkills(ctx context.Context, tx *gorm.DB, questionID uuid.UUID) (*types.Question, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Question
	if err := transaction.WithContext(ctx).
		Preload("Skills.Skill").
		Where("id = ?", questionID).
		First(&result).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *questionRepo) CountByArticleID(ctx context.Context, tx *gorm.DB, articleID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Question{}).
		Where("article_id = ?", articleID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
