package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/readleap/readleap-backend/internal/logger"
	"github.com/readleap/readleap-backend/internal/repos"
	"github.com/readleap/readleap-backend/internal/types"
)

// ContentService is the engine's view of the content collaborator: article
// identity and publication state, question counts, and per-question skill
// tags. Content management itself lives elsewhere.
type ContentService interface {
	// PublishedArticle returns the article when it exists and is published,
	// nil otherwise.
	PublishedArticle(ctx context.Context, tx *gorm.DB, articleID uuid.UUID) (*types.Article, error)
	QuestionCount(ctx context.Context, tx *gorm.DB, articleID uuid.UUID) (int, error)
	QuestionWithSkills(ctx context.Context, tx *gorm.DB, questionID uuid.UUID) (*types.Question, error)
}

type contentService struct {
	log          *logger.Logger
	articleRepo  repos.ArticleRepo
	questionRepo repos.QuestionRepo
}

func NewContentService(log *logger.Logger, articleRepo repos.ArticleRepo, questionRepo repos.QuestionRepo) ContentService {
	return &contentService{
		log:          log.With("service", "ContentService"),
		articleRepo:  articleRepo,
		questionRepo: questionRepo,
	}
}

func (cs *contentService) PublishedArticle(ctx context.Context, tx *gorm.DB, articleID uuid.UUID) (*types.Article, error) {
	article, err := cs.articleRepo.GetByID(ctx, tx, articleID)
	if err != nil {
		return nil, fmt.Errorf("fetch article: %w", err)
	}
	if article == nil || article.Status != types.ArticleStatusPublished {
		return nil, nil
	}
	return article, nil
}

func (cs *contentService) QuestionCount(ctx context.Context, tx *gorm.DB, articleID uuid.UUID) (int, error) {
	count, err := cs.questionRepo.CountByArticleID(ctx, tx, articleID)
	if err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return int(count), nil
}

func (cs *contentService) QuestionWithSkills(ctx context.Context, tx *gorm.DB, questionID uuid.UUID) (*types.Question, error) {
	return cs.questionRepo.GetByIDWithSkills(ctx, tx, questionID)
}
