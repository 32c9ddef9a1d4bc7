package main

import (
	"context"
	"strings"
	"time"

	"github.com/joho/godotenv"

	redisclient "github.com/readleap/readleap-backend/internal/clients/redis"
	"github.com/readleap/readleap-backend/internal/db"
	"github.com/readleap/readleap-backend/internal/handlers"
	"github.com/readleap/readleap-backend/internal/logger"
	"github.com/readleap/readleap-backend/internal/middleware"
	"github.com/readleap/readleap-backend/internal/observability"
	"github.com/readleap/readleap-backend/internal/repos"
	"github.com/readleap/readleap-backend/internal/server"
	"github.com/readleap/readleap-backend/internal/services"
	"github.com/readleap/readleap-backend/internal/utils"
)

func main() {
	_ = godotenv.Load()

	mode := "development"
	log, err := logger.New(mode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	mode = utils.GetEnv("APP_ENV", mode, log)

	ctx := context.Background()
	shutdownOTel := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: utils.GetEnv("OTEL_SERVICE_NAME", "readleap", log),
		Environment: mode,
		Version:     utils.GetEnv("APP_VERSION", "dev", log),
	})
	if shutdownOTel != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownOTel(shutdownCtx); err != nil {
				log.Warn("otel shutdown failed", "error", err)
			}
		}()
	}

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Failed to initialize postgres", "error", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Fatal("Failed to migrate postgres tables", "error", err)
	}
	gormDB := pg.DB()

	badgeCatalogPath := utils.GetEnv("BADGE_CATALOG_PATH", "configs/badges.yaml", log)
	if err := db.SeedBadgeCatalog(gormDB, log, badgeCatalogPath); err != nil {
		log.Fatal("Failed to seed badge catalog", "error", err)
	}

	// Redis is best-effort. Without it the badge catalog reads go to postgres.
	cache, err := redisclient.NewCache(log)
	if err != nil {
		log.Warn("Redis cache unavailable, running without it", "error", err)
		cache = nil
	} else {
		defer cache.Close()
	}

	userRepo := repos.NewUserRepo(gormDB, log)
	articleRepo := repos.NewArticleRepo(gormDB, log)
	tagRepo := repos.NewTagRepo(gormDB, log)
	questionRepo := repos.NewQuestionRepo(gormDB, log)
	sessionRepo := repos.NewReadingSessionRepo(gormDB, log)
	answerRepo := repos.NewAnswerRecordRepo(gormDB, log)
	masteryRepo := repos.NewSkillMasteryRepo(gormDB, log)
	checkInRepo := repos.NewCheckInRepo(gormDB, log)
	badgeRepo := repos.NewBadgeRepo(gormDB, log)

	contentSvc := services.NewContentService(log, articleRepo, questionRepo)
	masterySvc := services.NewMasteryService(log, answerRepo, masteryRepo)
	streakSvc := services.NewStreakService(log, checkInRepo)
	badgeSvc := services.NewBadgeService(log, badgeRepo, masteryRepo, sessionRepo, tagRepo, cache)
	progressSvc := services.NewProgressService(
		gormDB, log,
		contentSvc, masterySvc, streakSvc, badgeSvc,
		userRepo, sessionRepo, answerRepo, articleRepo,
	)
	userSvc := services.NewUserService(log, userRepo)

	jwtSecret := utils.GetEnv("JWT_SECRET_KEY", "", log)
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET_KEY is required")
	}
	auth := middleware.NewAuthMiddleware(log, jwtSecret)

	router := server.NewRouter(server.RouterConfig{
		Auth:            auth,
		ProgressHandler: handlers.NewProgressHandler(log, progressSvc),
		UserHandler:     handlers.NewUserHandler(log, userSvc),
		AllowedOrigins:  splitOrigins(utils.GetEnv("CORS_ALLOWED_ORIGINS", "", log)),
		ServiceName:     utils.GetEnv("OTEL_SERVICE_NAME", "readleap", log),
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Starting server", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}

func splitOrigins(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
