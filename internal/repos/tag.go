package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/readleap/readleap-backend/internal/logger"
	"github.com/readleap/readleap-backend/internal/types"
)

type TagRepo interface {
	// GenreNames lists the names of every tag in the genre category.
	GenreNames(ctx context.Context, tx *gorm.DB) ([]string, error)
}

type tagRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTagRepo(db *gorm.DB, baseLog *logger.Logger) TagRepo {
	repoLog := baseLog.With("repo", "TagRepo")
	return &tagRepo{db: db, log: repoLog}
}

func (r *tagRepo) GenreNames(ctx context.Context, tx *gorm.DB) ([]string, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var names []string
	if err := transaction.WithContext(ctx).
		Model(&types.Tag{}).
		Where("category = ?", types.TagCategoryGenre).
		Order("display_order ASC").
		Pluck("name", &names).Error; err != nil {
		return nil, err
	}
	return names, nil
}
