package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/readleap/readleap-backend/internal/logger"
	"github.com/readleap/readleap-backend/internal/types"
)

type ArticleRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, articleID uuid.UUID) (*types.Article, error)
}

type articleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewArticleRepo(db *gorm.DB, baseLog *logger.Logger) ArticleRepo {
	repoLog := baseLog.With("repo", "ArticleRepo")
	return &articleRepo{db: db, log: repoLog}
}

func (r *articleRepo) GetByID(ctx context.Context, tx *gorm.DB, articleID uuid.UUID) (*types.Article, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.Article
	if err := transaction.WithContext(ctx).
		Where("id = ?", articleID).
		First(&result).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}
