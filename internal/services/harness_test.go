package services

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/readleap/readleap-backend/internal/db"
	"github.com/readleap/readleap-backend/internal/logger"
	"github.com/readleap/readleap-backend/internal/repos"
	"github.com/readleap/readleap-backend/internal/types"
)

// testEnv wires the full service stack over an in-memory sqlite database.
// The single connection keeps every transaction on the same handle.
type testEnv struct {
	db *gorm.DB

	progress ProgressService
	mastery  MasteryService
	streak   StreakService
	badges   BadgeService
	users    UserService

	userRepo    repos.UserRepo
	sessionRepo repos.ReadingSessionRepo
	answerRepo  repos.AnswerRecordRepo
	masteryRepo repos.SkillMasteryRepo
	checkInRepo repos.CheckInRepo
	badgeRepo   repos.BadgeRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := gdb.AutoMigrate(db.Models()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	log := logger.NewNop()
	userRepo := repos.NewUserRepo(gdb, log)
	articleRepo := repos.NewArticleRepo(gdb, log)
	tagRepo := repos.NewTagRepo(gdb, log)
	questionRepo := repos.NewQuestionRepo(gdb, log)
	sessionRepo := repos.NewReadingSessionRepo(gdb, log)
	answerRepo := repos.NewAnswerRecordRepo(gdb, log)
	masteryRepo := repos.NewSkillMasteryRepo(gdb, log)
	checkInRepo := repos.NewCheckInRepo(gdb, log)
	badgeRepo := repos.NewBadgeRepo(gdb, log)

	contentSvc := NewContentService(log, articleRepo, questionRepo)
	masterySvc := NewMasteryService(log, answerRepo, masteryRepo)
	streakSvc := NewStreakService(log, checkInRepo)
	badgeSvc := NewBadgeService(log, badgeRepo, masteryRepo, sessionRepo, tagRepo, nil)
	progressSvc := NewProgressService(
		gdb, log,
		contentSvc, masterySvc, streakSvc, badgeSvc,
		userRepo, sessionRepo, answerRepo, articleRepo,
	)

	return &testEnv{
		db:          gdb,
		progress:    progressSvc,
		mastery:     masterySvc,
		streak:      streakSvc,
		badges:      badgeSvc,
		users:       NewUserService(log, userRepo),
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		answerRepo:  answerRepo,
		masteryRepo: masteryRepo,
		checkInRepo: checkInRepo,
		badgeRepo:   badgeRepo,
	}
}

func mustCreate(t *testing.T, gdb *gorm.DB, value interface{}) {
	t.Helper()
	if err := gdb.Create(value).Error; err != nil {
		t.Fatalf("create %T: %v", value, err)
	}
}

func seedUser(t *testing.T, gdb *gorm.DB) *types.User {
	t.Helper()
	user := &types.User{
		OpenID:   uuid.NewString(),
		Nickname: "reader",
	}
	mustCreate(t, gdb, user)
	return user
}

func seedArticle(t *testing.T, gdb *gorm.DB, title, status string) *types.Article {
	t.Helper()
	article := &types.Article{
		Title:     title,
		Content:   "Once upon a time.",
		WordCount: 4,
		Status:    status,
	}
	mustCreate(t, gdb, article)
	return article
}

func seedSkill(t *testing.T, gdb *gorm.DB, name, code string) *types.SkillDimension {
	t.Helper()
	skill := &types.SkillDimension{
		Name:     name,
		Code:     code,
		Category: types.SkillCategoryComprehension,
	}
	mustCreate(t, gdb, skill)
	return skill
}

func seedQuestion(t *testing.T, gdb *gorm.DB, articleID uuid.UUID, kind types.QuestionKind, answer string, skills ...*types.SkillDimension) *types.Question {
	t.Helper()
	question := &types.Question{
		ArticleID: articleID,
		Kind:      kind,
		Content:   "What happened?",
		Answer:    answer,
	}
	mustCreate(t, gdb, question)
	for _, skill := range skills {
		mustCreate(t, gdb, &types.QuestionSkill{QuestionID: question.ID, SkillID: skill.ID})
	}
	return question
}

func seedGenre(t *testing.T, gdb *gorm.DB, name string) *types.Tag {
	t.Helper()
	tag := &types.Tag{Name: name, Category: types.TagCategoryGenre}
	mustCreate(t, gdb, tag)
	return tag
}

func tagArticle(t *testing.T, gdb *gorm.DB, articleID, tagID uuid.UUID) {
	t.Helper()
	mustCreate(t, gdb, &types.ArticleTag{ArticleID: articleID, TagID: tagID})
}

func seedBadge(t *testing.T, gdb *gorm.DB, name string, kind types.BadgeCondition, value int, extra string) *types.BadgeDefinition {
	t.Helper()
	def := &types.BadgeDefinition{
		Name:           name,
		Category:       types.BadgeCategoryReading,
		ConditionKind:  kind,
		ConditionValue: value,
		ConditionExtra: extra,
	}
	mustCreate(t, gdb, def)
	return def
}
