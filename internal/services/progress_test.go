package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/readleap/readleap-backend/internal/apierr"
	"github.com/readleap/readleap-backend/internal/types"
)

func pinClock(t *testing.T, env *testEnv, at time.Time) {
	t.Helper()
	ps, ok := env.progress.(*progressService)
	if !ok {
		t.Fatal("progress service is not the concrete type")
	}
	ps.now = func() time.Time { return at }
}

func TestStartReading(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := seedUser(t, env.db)
	article := seedArticle(t, env.db, "The Fox", types.ArticleStatusPublished)
	seedQuestion(t, env.db, article.ID, types.QuestionKindChoice, "A")
	seedQuestion(t, env.db, article.ID, types.QuestionKindFill, "Paris")

	result, err := env.progress.Start(ctx, user.ID, article.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if result.ArticleTitle != "The Fox" {
		t.Fatalf("title = %q", result.ArticleTitle)
	}
	if result.QuestionCount != 2 {
		t.Fatalf("question count = %d, want 2", result.QuestionCount)
	}

	session, err := env.sessionRepo.GetByID(ctx, nil, result.ProgressID)
	if err != nil {
		t.Fatalf("fetch session: %v", err)
	}
	if session == nil {
		t.Fatal("session row missing")
	}
	if session.TotalCount != 2 || session.CorrectCount != 0 || session.CompletedAt != nil {
		t.Fatalf("unexpected new session state: %+v", session)
	}
}

func TestStartReadingRejectsMissingOrUnpublished(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := seedUser(t, env.db)
	draft := seedArticle(t, env.db, "Draft", types.ArticleStatusDraft)

	if _, err := env.progress.Start(ctx, user.ID, uuid.New()); !apierr.IsNotFound(err) {
		t.Fatalf("missing article: got %v, want not-found", err)
	}
	if _, err := env.progress.Start(ctx, user.ID, draft.ID); !apierr.IsNotFound(err) {
		t.Fatalf("draft article: got %v, want not-found", err)
	}
}

func TestSubmitAnswerGrading(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := seedUser(t, env.db)
	skill := seedSkill(t, env.db, "Detail Comprehension", "detail_comprehension")
	article := seedArticle(t, env.db, "The Fox", types.ArticleStatusPublished)
	choice := seedQuestion(t, env.db, article.ID, types.QuestionKindChoice, "A", skill)
	fill := seedQuestion(t, env.db, article.ID, types.QuestionKindFill, "Paris")

	started, err := env.progress.Start(ctx, user.ID, article.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Lowercase submission against an uppercase reference grades correct.
	res, err := env.progress.SubmitAnswer(ctx, user.ID, started.ProgressID, choice.ID, "a")
	if err != nil {
		t.Fatalf("submit choice: %v", err)
	}
	if !res.IsCorrect {
		t.Fatal("choice answer should grade correct")
	}
	if res.CorrectAnswer != "A" {
		t.Fatalf("correct answer = %q", res.CorrectAnswer)
	}
	if len(res.AbilityNames) != 1 || res.AbilityNames[0] != skill.Name {
		t.Fatalf("ability names = %v", res.AbilityNames)
	}

	res, err = env.progress.SubmitAnswer(ctx, user.ID, started.ProgressID, fill.ID, "london")
	if err != nil {
		t.Fatalf("submit fill: %v", err)
	}
	if res.IsCorrect {
		t.Fatal("wrong fill answer should grade incorrect")
	}

	session, err := env.sessionRepo.GetByID(ctx, nil, started.ProgressID)
	if err != nil {
		t.Fatalf("fetch session: %v", err)
	}
	if session.CorrectCount != 1 {
		t.Fatalf("correct count = %d, want 1", session.CorrectCount)
	}
}

func TestSubmitAnswerRejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := seedUser(t, env.db)
	other := seedUser(t, env.db)
	article := seedArticle(t, env.db, "The Fox", types.ArticleStatusPublished)
	otherArticle := seedArticle(t, env.db, "The Crow", types.ArticleStatusPublished)
	question := seedQuestion(t, env.db, article.ID, types.QuestionKindChoice, "A")
	foreign := seedQuestion(t, env.db, otherArticle.ID, types.QuestionKindChoice, "B")

	started, err := env.progress.Start(ctx, user.ID, article.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if _, err := env.progress.SubmitAnswer(ctx, user.ID, uuid.New(), question.ID, "A"); !apierr.IsNotFound(err) {
		t.Fatalf("missing session: got %v, want not-found", err)
	}
	// Another user's session reads as absent, not forbidden.
	if _, err := env.progress.SubmitAnswer(ctx, other.ID, started.ProgressID, question.ID, "A"); !apierr.IsNotFound(err) {
		t.Fatalf("foreign session: got %v, want not-found", err)
	}
	if _, err := env.progress.SubmitAnswer(ctx, user.ID, started.ProgressID, foreign.ID, "B"); !apierr.IsValidation(err) {
		t.Fatalf("foreign question: got %v, want validation", err)
	}
	if _, err := env.progress.SubmitAnswer(ctx, user.ID, started.ProgressID, uuid.New(), "A"); !apierr.IsValidation(err) {
		t.Fatalf("missing question: got %v, want validation", err)
	}

	if _, err := env.progress.SubmitAnswer(ctx, user.ID, started.ProgressID, question.ID, "A"); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if _, err := env.progress.SubmitAnswer(ctx, user.ID, started.ProgressID, question.ID, "B"); !apierr.IsValidation(err) {
		t.Fatalf("resubmit: got %v, want validation", err)
	}

	// The failed resubmit must not have touched the stored answer.
	record, err := env.answerRepo.GetBySessionAndQuestionForUpdate(ctx, nil, started.ProgressID, question.ID)
	if err != nil {
		t.Fatalf("fetch answer: %v", err)
	}
	if record.UserAnswer != "A" || !record.IsCorrect {
		t.Fatalf("stored answer mutated: %+v", record)
	}
}

func TestCompleteReading(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	completedAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	pinClock(t, env, completedAt)

	user := seedUser(t, env.db)
	skill := seedSkill(t, env.db, "Detail Comprehension", "detail_comprehension")
	seedBadge(t, env.db, "First Steps", types.BadgeCondFirstReading, 1, "")
	article := seedArticle(t, env.db, "The Fox", types.ArticleStatusPublished)
	choice := seedQuestion(t, env.db, article.ID, types.QuestionKindChoice, "A", skill)
	fill := seedQuestion(t, env.db, article.ID, types.QuestionKindFill, "Paris", skill)

	started, err := env.progress.Start(ctx, user.ID, article.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := env.progress.SubmitAnswer(ctx, user.ID, started.ProgressID, choice.ID, "a"); err != nil {
		t.Fatalf("submit choice: %v", err)
	}
	if _, err := env.progress.SubmitAnswer(ctx, user.ID, started.ProgressID, fill.ID, "london"); err != nil {
		t.Fatalf("submit fill: %v", err)
	}

	result, err := env.progress.Complete(ctx, user.ID, started.ProgressID, 120)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if result.Score != 50 || result.CorrectCount != 1 || result.TotalCount != 2 {
		t.Fatalf("score = %d (%d/%d), want 50 (1/2)", result.Score, result.CorrectCount, result.TotalCount)
	}
	if result.TimeSpent != 120 {
		t.Fatalf("time spent = %d, want 120", result.TimeSpent)
	}
	if !result.IsCheckedIn || result.StreakDays != 1 {
		t.Fatalf("check-in = %v/%d, want true/1", result.IsCheckedIn, result.StreakDays)
	}
	if len(result.AbilityScores) != 1 || result.AbilityScores[0].Score != 50 {
		t.Fatalf("ability scores = %+v, want one at 50", result.AbilityScores)
	}
	if len(result.NewBadges) != 1 || result.NewBadges[0].Name != "First Steps" {
		t.Fatalf("new badges = %+v, want First Steps", result.NewBadges)
	}

	stats, err := env.users.GetStats(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.TotalReadings != 1 || stats.StreakDays != 1 || stats.MaxStreakDays != 1 {
		t.Fatalf("stats = %+v, want 1/1/1", stats)
	}

	session, err := env.sessionRepo.GetByID(ctx, nil, started.ProgressID)
	if err != nil {
		t.Fatalf("fetch session: %v", err)
	}
	if session.CompletedAt == nil || !session.CompletedAt.Equal(completedAt) {
		t.Fatalf("completed at = %v, want %v", session.CompletedAt, completedAt)
	}
	if session.Score == nil || *session.Score != 50 {
		t.Fatalf("stored score = %v, want 50", session.Score)
	}
}

func TestCompleteReadingRejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := seedUser(t, env.db)
	article := seedArticle(t, env.db, "The Fox", types.ArticleStatusPublished)
	seedQuestion(t, env.db, article.ID, types.QuestionKindChoice, "A")

	started, err := env.progress.Start(ctx, user.ID, article.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if _, err := env.progress.Complete(ctx, user.ID, started.ProgressID, -1); !apierr.IsValidation(err) {
		t.Fatalf("negative time: got %v, want validation", err)
	}
	if _, err := env.progress.Complete(ctx, user.ID, uuid.New(), 10); !apierr.IsNotFound(err) {
		t.Fatalf("missing session: got %v, want not-found", err)
	}

	if _, err := env.progress.Complete(ctx, user.ID, started.ProgressID, 10); err != nil {
		t.Fatalf("first complete: %v", err)
	}
	if _, err := env.progress.Complete(ctx, user.ID, started.ProgressID, 99); !apierr.IsValidation(err) {
		t.Fatalf("second complete: got %v, want validation", err)
	}

	// The rejected second completion must not drift any counters.
	stats, err := env.users.GetStats(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.TotalReadings != 1 {
		t.Fatalf("total readings = %d, want 1", stats.TotalReadings)
	}
	session, err := env.sessionRepo.GetByID(ctx, nil, started.ProgressID)
	if err != nil {
		t.Fatalf("fetch session: %v", err)
	}
	if session.TimeSpent == nil || *session.TimeSpent != 10 {
		t.Fatalf("time spent = %v, want the original 10", session.TimeSpent)
	}
}

func TestCompleteReadingNoQuestions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := seedUser(t, env.db)
	article := seedArticle(t, env.db, "Picture Book", types.ArticleStatusPublished)

	started, err := env.progress.Start(ctx, user.ID, article.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	result, err := env.progress.Complete(ctx, user.ID, started.ProgressID, 30)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if result.Score != 0 || result.TotalCount != 0 {
		t.Fatalf("score = %d, total = %d, want 0/0", result.Score, result.TotalCount)
	}
}

func TestCompleteSameDayDoesNotCheckInTwice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pinClock(t, env, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))

	user := seedUser(t, env.db)
	article := seedArticle(t, env.db, "The Fox", types.ArticleStatusPublished)

	for i, wantCheckedIn := range []bool{true, false} {
		started, err := env.progress.Start(ctx, user.ID, article.ID)
		if err != nil {
			t.Fatalf("Start %d: %v", i, err)
		}
		result, err := env.progress.Complete(ctx, user.ID, started.ProgressID, 10)
		if err != nil {
			t.Fatalf("Complete %d: %v", i, err)
		}
		if result.IsCheckedIn != wantCheckedIn {
			t.Fatalf("completion %d: checked in = %v, want %v", i, result.IsCheckedIn, wantCheckedIn)
		}
		if result.StreakDays != 1 {
			t.Fatalf("completion %d: streak = %d, want 1", i, result.StreakDays)
		}
	}
}

func TestProgressDetail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := seedUser(t, env.db)
	other := seedUser(t, env.db)
	article := seedArticle(t, env.db, "The Fox", types.ArticleStatusPublished)
	question := seedQuestion(t, env.db, article.ID, types.QuestionKindChoice, "A")

	started, err := env.progress.Start(ctx, user.ID, article.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := env.progress.SubmitAnswer(ctx, user.ID, started.ProgressID, question.ID, "b"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	detail, err := env.progress.Detail(ctx, user.ID, started.ProgressID)
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}
	if detail.ArticleTitle != "The Fox" {
		t.Fatalf("title = %q", detail.ArticleTitle)
	}
	if detail.Score != nil || detail.CompletedAt != nil {
		t.Fatal("incomplete session must not carry a score")
	}
	if len(detail.Answers) != 1 {
		t.Fatalf("answers = %d, want 1", len(detail.Answers))
	}
	answer := detail.Answers[0]
	if answer.UserAnswer != "b" || answer.IsCorrect || answer.CorrectAnswer != "A" {
		t.Fatalf("unexpected answer detail: %+v", answer)
	}

	if _, err := env.progress.Detail(ctx, other.ID, started.ProgressID); !apierr.IsNotFound(err) {
		t.Fatalf("foreign detail: got %v, want not-found", err)
	}
	if _, err := env.progress.Detail(ctx, user.ID, uuid.New()); !apierr.IsNotFound(err) {
		t.Fatalf("missing detail: got %v, want not-found", err)
	}
}

func TestHistoryPagination(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := seedUser(t, env.db)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		article := seedArticle(t, env.db, "Article", types.ArticleStatusPublished)
		completedAt := base.AddDate(0, 0, i)
		score := i * 10
		mustCreate(t, env.db, &types.ReadingSession{
			UserID:      user.ID,
			ArticleID:   article.ID,
			Score:       &score,
			CompletedAt: &completedAt,
		})
	}
	// An open session stays out of history.
	openArticle := seedArticle(t, env.db, "Open", types.ArticleStatusPublished)
	mustCreate(t, env.db, &types.ReadingSession{UserID: user.ID, ArticleID: openArticle.ID})

	page, err := env.progress.History(ctx, user.ID, 1, 2)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if page.Total != 5 || page.TotalPages != 3 {
		t.Fatalf("total = %d, pages = %d, want 5 and 3", page.Total, page.TotalPages)
	}
	if len(page.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(page.Items))
	}
	// Newest first.
	if *page.Items[0].Score != 40 || *page.Items[1].Score != 30 {
		t.Fatalf("page 1 scores = %d, %d, want 40, 30", *page.Items[0].Score, *page.Items[1].Score)
	}

	last, err := env.progress.History(ctx, user.ID, 3, 2)
	if err != nil {
		t.Fatalf("History page 3: %v", err)
	}
	if len(last.Items) != 1 || *last.Items[0].Score != 0 {
		t.Fatalf("page 3 = %+v, want the single oldest item", last.Items)
	}

	if _, err := env.progress.History(ctx, user.ID, 0, 2); !apierr.IsValidation(err) {
		t.Fatalf("page 0: got %v, want validation", err)
	}
	if _, err := env.progress.History(ctx, user.ID, 1, 101); !apierr.IsValidation(err) {
		t.Fatalf("page_size 101: got %v, want validation", err)
	}
}
