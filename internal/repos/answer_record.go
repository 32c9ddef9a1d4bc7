package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/readleap/readleap-backend/internal/logger"
	"github.com/readleap/readleap-backend/internal/types"
)

type AnswerRecordRepo interface {
	Create(ctx context.Context, tx *gorm.DB, record *types.AnswerRecord) error
	// GetBySessionAndQuestionForUpdate locks the existing record (if any) so
	// the duplicate check and the insert are one atomic step.
	GetBySessionAndQuestionForUpdate(ctx context.Context, tx *gorm.DB, sessionID, questionID uuid.UUID) (*types.AnswerRecord, error)
	ListBySession(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.AnswerRecord, error)
	// ListBySessionWithSkills preloads each record's question and its skill tags.
	ListBySessionWithSkills(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.AnswerRecord, error)
}

type answerRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnswerRecordRepo(db *gorm.DB, baseLog *logger.Logger) AnswerRecordRepo {
	repoLog := baseLog.With("repo", "AnswerRecordRepo")
	return &answerRecordRepo{db: db, log: repoLog}
}

func (r *answerRecordRepo) Create(ctx context.Context, tx *gorm.DB, record *types.AnswerRecord) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Create(record).Error
}

func (r *answerRecordRepo) GetBySessionAndQuestionForUpdate(ctx context.Context, tx *gorm.DB, sessionID, questionID uuid.UUID) (*types.AnswerRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var result types.AnswerRecord
	if err := forUpdate(transaction.WithContext(ctx)).
		Where("session_id = ? AND question_id = ?", sessionID, questionID).
		First(&result).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *answerRecordRepo) ListBySession(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.AnswerRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.AnswerRecord
	if err := transaction.WithContext(ctx).
		Preload("Question").
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *answerRecordRepo) ListBySessionWithSkills(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.AnswerRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.AnswerRecord
	if err := transaction.WithContext(ctx).
		Preload("Question.Skills.Skill").
		Where("session_id = ?", sessionID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
