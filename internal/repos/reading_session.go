package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/readleap/readleap-backend/internal/logger"
	"github.com/readleap/readleap-backend/internal/types"
)

type ReadingSessionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, session *types.ReadingSession) error
	GetByID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (*types.ReadingSession, error)
	// GetByIDForUpdate locks the session row so concurrent submits and
	// completes for the same session serialize.
	GetByIDForUpdate(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (*types.ReadingSession, error)
	Save(ctx context.Context, tx *gorm.DB, session *types.ReadingSession) error

	ListCompletedByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, offset, limit int) ([]*types.ReadingSession, error)
	CountCompletedByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)

	// CountCompletedWithGenre counts the user's completed sessions whose
	// article carries the named genre tag.
	CountCompletedWithGenre(ctx context.Context, tx *gorm.DB, userID uuid.UUID, genre string) (int64, error)
	// DistinctCompletedGenres lists the genre tag names the user has at least
	// one completed session in.
	DistinctCompletedGenres(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]string, error)
}

type readingSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReadingSessionRepo(db *gorm.DB, baseLog *logger.Logger) ReadingSessionRepo {
	repoLog := baseLog.With("repo", "ReadingSessionRepo")
	return &readingSessionRepo{db: db, log: repoLog}
}

func (r *readingSessionRepo) Create(ctx context.Context, tx *gorm.DB, session *types.ReadingSession) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(session).Error
}

func (r *readingSessionRepo) GetByID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (*types.ReadingSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.ReadingSession
	if err := transaction.WithContext(ctx).
		Where("id = ?", sessionID).
		First(&result).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *readingSessionRepo) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) (*types.ReadingSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.ReadingSession
	if err := forUpdate(transaction.WithContext(ctx)).
		Where("id = ?", sessionID).
		First(&result).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *readingSessionRepo) Save(ctx context.Context, tx *gorm.DB, session *types.ReadingSession) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(session).Error
}

func (r *readingSessionRepo) ListCompletedByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, offset, limit int) ([]*types.ReadingSession, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ReadingSession
	if err := transaction.WithContext(ctx).
		Preload("Article").
		Where("user_id = ? AND completed_at IS NOT NULL", userID).
		Order("completed_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *readingSessionRepo) CountCompletedByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.ReadingSession{}).
		Where("user_id = ? AND completed_at IS NOT NULL", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *readingSessionRepo) CountCompletedWithGenre(ctx context.Context, tx *gorm.DB, userID uuid.UUID, genre string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.ReadingSession{}).
		Joins("JOIN article_tag ON article_tag.article_id = reading_session.article_id").
		Joins("JOIN tag ON tag.id = article_tag.tag_id").
		Where("reading_session.user_id = ? AND reading_session.completed_at IS NOT NULL", userID).
		Where("tag.category = ? AND tag.name = ?", types.TagCategoryGenre, genre).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *readingSessionRepo) DistinctCompletedGenres(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]string, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var names []string
	if err := transaction.WithContext(ctx).
		Model(&types.ReadingSession{}).
		Distinct("tag.name").
		Joins("JOIN article_tag ON article_tag.article_id = reading_session.article_id").
		Joins("JOIN tag ON tag.id = article_tag.tag_id").
		Where("reading_session.user_id = ? AND reading_session.completed_at IS NOT NULL", userID).
		Where("tag.category = ?", types.TagCategoryGenre).
		Pluck("tag.name", &names).Error; err != nil {
		return nil, err
	}
	return names, nil
}
