package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/readleap/readleap-backend/internal/apierr"
	"github.com/readleap/readleap-backend/internal/logger"
	"github.com/readleap/readleap-backend/internal/repos"
	"github.com/readleap/readleap-backend/internal/types"
)

type StartReadingResult struct {
	ProgressID    uuid.UUID `json:"progress_id"`
	ArticleID     uuid.UUID `json:"article_id"`
	ArticleTitle  string    `json:"article_title"`
	QuestionCount int       `json:"question_count"`
}

type SubmitAnswerResult struct {
	QuestionID    uuid.UUID `json:"question_id"`
	IsCorrect     bool      `json:"is_correct"`
	CorrectAnswer string    `json:"correct_answer"`
	Explanation   string    `json:"explanation"`
	AbilityNames  []string  `json:"ability_names"`
}

type CompleteReadingResult struct {
	ProgressID    uuid.UUID        `json:"progress_id"`
	Score         int              `json:"score"`
	CorrectCount  int              `json:"correct_count"`
	TotalCount    int              `json:"total_count"`
	TimeSpent     int              `json:"time_spent"`
	AbilityScores []SkillScoreItem `json:"ability_scores"`
	IsCheckedIn   bool             `json:"is_checked_in"`
	StreakDays    int              `json:"streak_days"`
	NewBadges     []BadgeUnlock    `json:"new_badges"`
}

type AnswerDetail struct {
	QuestionID      uuid.UUID          `json:"question_id"`
	QuestionContent string             `json:"question_content"`
	QuestionKind    types.QuestionKind `json:"question_kind"`
	UserAnswer      string             `json:"user_answer"`
	CorrectAnswer   string             `json:"correct_answer"`
	IsCorrect       bool               `json:"is_correct"`
	Explanation     string             `json:"explanation"`
}

type ProgressDetail struct {
	ID           uuid.UUID      `json:"id"`
	ArticleID    uuid.UUID      `json:"article_id"`
	ArticleTitle string         `json:"article_title"`
	Score        *int           `json:"score"`
	CorrectCount int            `json:"correct_count"`
	TotalCount   int            `json:"total_count"`
	TimeSpent    *int           `json:"time_spent"`
	CompletedAt  *time.Time     `json:"completed_at"`
	CreatedAt    time.Time      `json:"created_at"`
	Answers      []AnswerDetail `json:"answers"`
}

type HistoryItem struct {
	ID           uuid.UUID  `json:"id"`
	ArticleID    uuid.UUID  `json:"article_id"`
	ArticleTitle string     `json:"article_title"`
	Score        *int       `json:"score"`
	CompletedAt  *time.Time `json:"completed_at"`
}

type HistoryPage struct {
	Items      []HistoryItem `json:"items"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int64         `json:"total_pages"`
}

// ProgressService owns the reading-session state machine:
// start -> submit* -> complete. Complete applies score, user counters,
// mastery, streak, and badges as one transaction; a failure in any step
// rolls back all of them.
type ProgressService interface {
	Start(ctx context.Context, userID, articleID uuid.UUID) (*StartReadingResult, error)
	SubmitAnswer(ctx context.Context, userID, sessionID, questionID uuid.UUID, userAnswer string) (*SubmitAnswerResult, error)
	Complete(ctx context.Context, userID, sessionID uuid.UUID, timeSpent int) (*CompleteReadingResult, error)
	Detail(ctx context.Context, userID, sessionID uuid.UUID) (*ProgressDetail, error)
	History(ctx context.Context, userID uuid.UUID, page, pageSize int) (*HistoryPage, error)
}

type progressService struct {
	db          *gorm.DB
	log         *logger.Logger
	content     ContentService
	mastery     MasteryService
	streak      StreakService
	badges      BadgeService
	userRepo    repos.UserRepo
	sessionRepo repos.ReadingSessionRepo
	answerRepo  repos.AnswerRecordRepo
	articleRepo repos.ArticleRepo

	now func() time.Time
}

func NewProgressService(
	db *gorm.DB,
	log *logger.Logger,
	content ContentService,
	mastery MasteryService,
	streak StreakService,
	badges BadgeService,
	userRepo repos.UserRepo,
	sessionRepo repos.ReadingSessionRepo,
	answerRepo repos.AnswerRecordRepo,
	articleRepo repos.ArticleRepo,
) ProgressService {
	return &progressService{
		db:          db,
		log:         log.With("service", "ProgressService"),
		content:     content,
		mastery:     mastery,
		streak:      streak,
		badges:      badges,
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		answerRepo:  answerRepo,
		articleRepo: articleRepo,
		now:         time.Now,
	}
}

func (ps *progressService) Start(ctx context.Context, userID, articleID uuid.UUID) (*StartReadingResult, error) {
	var result *StartReadingResult
	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		article, err := ps.content.PublishedArticle(ctx, tx, articleID)
		if err != nil {
			return err
		}
		if article == nil {
			return apierr.NotFound("article not found")
		}

		questionCount, err := ps.content.QuestionCount(ctx, tx, articleID)
		if err != nil {
			return err
		}

		session := &types.ReadingSession{
			UserID:     userID,
			ArticleID:  articleID,
			TotalCount: questionCount,
		}
		if err := ps.sessionRepo.Create(ctx, tx, session); err != nil {
			return fmt.Errorf("create session: %w", err)
		}

		result = &StartReadingResult{
			ProgressID:    session.ID,
			ArticleID:     articleID,
			ArticleTitle:  article.Title,
			QuestionCount: questionCount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (ps *progressService) SubmitAnswer(ctx context.Context, userID, sessionID, questionID uuid.UUID, userAnswer string) (*SubmitAnswerResult, error) {
	var result *SubmitAnswerResult
	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := ps.sessionRepo.GetByIDForUpdate(ctx, tx, sessionID)
		if err != nil {
			return fmt.Errorf("fetch session: %w", err)
		}
		if session == nil || session.UserID != userID {
			return apierr.NotFound("reading session not found")
		}
		if session.CompletedAt != nil {
			return apierr.Validation("reading session already completed")
		}

		question, err := ps.content.QuestionWithSkills(ctx, tx, questionID)
		if err != nil {
			return fmt.Errorf("fetch question: %w", err)
		}
		if question == nil || question.ArticleID != session.ArticleID {
			return apierr.Validation("question does not belong to this article")
		}

		// Duplicate probe and insert happen under the session row lock; the
		// unique (session, question) index catches whatever still races past.
		existing, err := ps.answerRepo.GetBySessionAndQuestionForUpdate(ctx, tx, sessionID, questionID)
		if err != nil {
			return fmt.Errorf("fetch existing answer: %w", err)
		}
		if existing != nil {
			return apierr.Validation("question already answered")
		}

		isCorrect := Grade(question.Kind, userAnswer, question.Answer)

		record := &types.AnswerRecord{
			SessionID:  sessionID,
			QuestionID: questionID,
			UserAnswer: userAnswer,
			IsCorrect:  isCorrect,
		}
		if err := ps.answerRepo.Create(ctx, tx, record); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apierr.Validation("question already answered")
			}
			return fmt.Errorf("create answer record: %w", err)
		}

		if isCorrect {
			session.CorrectCount++
			if err := ps.sessionRepo.Save(ctx, tx, session); err != nil {
				return fmt.Errorf("save session: %w", err)
			}
		}

		abilityNames := make([]string, 0, len(question.Skills))
		for _, qs := range question.Skills {
			if qs.Skill != nil {
				abilityNames = append(abilityNames, qs.Skill.Name)
			}
		}

		result = &SubmitAnswerResult{
			QuestionID:    questionID,
			IsCorrect:     isCorrect,
			CorrectAnswer: question.Answer,
			Explanation:   question.Explanation,
			AbilityNames:  abilityNames,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (ps *progressService) Complete(ctx context.Context, userID, sessionID uuid.UUID, timeSpent int) (*CompleteReadingResult, error) {
	if timeSpent < 0 {
		return nil, apierr.Validation("time_spent must not be negative")
	}

	var result *CompleteReadingResult
	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := ps.sessionRepo.GetByIDForUpdate(ctx, tx, sessionID)
		if err != nil {
			return fmt.Errorf("fetch session: %w", err)
		}
		if session == nil || session.UserID != userID {
			return apierr.NotFound("reading session not found")
		}
		if session.CompletedAt != nil {
			return apierr.Validation("reading session already completed")
		}

		score := 0
		if session.TotalCount > 0 {
			score = int(math.Round(float64(session.CorrectCount) / float64(session.TotalCount) * 100))
		}
		completedAt := ps.now().UTC()
		session.Score = &score
		session.TimeSpent = &timeSpent
		session.CompletedAt = &completedAt
		if err := ps.sessionRepo.Save(ctx, tx, session); err != nil {
			return fmt.Errorf("save session: %w", err)
		}

		user, err := ps.userRepo.GetByIDForUpdate(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("fetch user: %w", err)
		}
		if user == nil {
			return apierr.NotFound("user not found")
		}
		user.TotalReadings++

		abilityScores, err := ps.mastery.ApplySession(ctx, tx, session)
		if err != nil {
			return err
		}

		isCheckedIn, streakDays, err := ps.streak.HandleCheckIn(ctx, tx, user, session, completedAt)
		if err != nil {
			return err
		}

		// Counters must hit the row before badge predicates read through it.
		if err := ps.userRepo.Save(ctx, tx, user); err != nil {
			return fmt.Errorf("save user: %w", err)
		}

		newBadges, err := ps.badges.Evaluate(ctx, tx, user)
		if err != nil {
			return err
		}

		result = &CompleteReadingResult{
			ProgressID:    session.ID,
			Score:         score,
			CorrectCount:  session.CorrectCount,
			TotalCount:    session.TotalCount,
			TimeSpent:     timeSpent,
			AbilityScores: abilityScores,
			IsCheckedIn:   isCheckedIn,
			StreakDays:    streakDays,
			NewBadges:     newBadges,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (ps *progressService) Detail(ctx context.Context, userID, sessionID uuid.UUID) (*ProgressDetail, error) {
	session, err := ps.sessionRepo.GetByID(ctx, nil, sessionID)
	if err != nil {
		return nil, fmt.Errorf("fetch session: %w", err)
	}
	if session == nil || session.UserID != userID {
		return nil, apierr.NotFound("reading session not found")
	}

	article, err := ps.articleRepo.GetByID(ctx, nil, session.ArticleID)
	if err != nil {
		return nil, fmt.Errorf("fetch article: %w", err)
	}
	articleTitle := ""
	if article != nil {
		articleTitle = article.Title
	}

	answers, err := ps.answerRepo.ListBySession(ctx, nil, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}

	details := make([]AnswerDetail, 0, len(answers))
	for _, answer := range answers {
		detail := AnswerDetail{
			QuestionID: answer.QuestionID,
			UserAnswer: answer.UserAnswer,
			IsCorrect:  answer.IsCorrect,
		}
		if answer.Question != nil {
			detail.QuestionContent = answer.Question.Content
			detail.QuestionKind = answer.Question.Kind
			detail.CorrectAnswer = answer.Question.Answer
			detail.Explanation = answer.Question.Explanation
		}
		details = append(details, detail)
	}

	return &ProgressDetail{
		ID:           session.ID,
		ArticleID:    session.ArticleID,
		ArticleTitle: articleTitle,
		Score:        session.Score,
		CorrectCount: session.CorrectCount,
		TotalCount:   session.TotalCount,
		TimeSpent:    session.TimeSpent,
		CompletedAt:  session.CompletedAt,
		CreatedAt:    session.CreatedAt,
		Answers:      details,
	}, nil
}

func (ps *progressService) History(ctx context.Context, userID uuid.UUID, page, pageSize int) (*HistoryPage, error) {
	if page < 1 {
		return nil, apierr.Validation("page must be >= 1")
	}
	if pageSize < 1 || pageSize > 100 {
		return nil, apierr.Validation("page_size must be between 1 and 100")
	}

	var (
		sessions []*types.ReadingSession
		total    int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := ps.sessionRepo.ListCompletedByUser(gctx, nil, userID, (page-1)*pageSize, pageSize)
		if err != nil {
			return fmt.Errorf("list history: %w", err)
		}
		sessions = rows
		return nil
	})
	g.Go(func() error {
		count, err := ps.sessionRepo.CountCompletedByUser(gctx, nil, userID)
		if err != nil {
			return fmt.Errorf("count history: %w", err)
		}
		total = count
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := make([]HistoryItem, 0, len(sessions))
	for _, session := range sessions {
		item := HistoryItem{
			ID:          session.ID,
			ArticleID:   session.ArticleID,
			Score:       session.Score,
			CompletedAt: session.CompletedAt,
		}
		if session.Article != nil {
			item.ArticleTitle = session.Article.Title
		}
		items = append(items, item)
	}

	return &HistoryPage{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + int64(pageSize) - 1) / int64(pageSize),
	}, nil
}
