package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/readleap/readleap-backend/internal/handlers"
	"github.com/readleap/readleap-backend/internal/middleware"
)

type RouterConfig struct {
	Auth            *middleware.AuthMiddleware
	ProgressHandler *handlers.ProgressHandler
	UserHandler     *handlers.UserHandler
	AllowedOrigins  []string
	ServiceName     string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(cfg.ServiceName))

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api/v1")
	api.Use(cfg.Auth.RequireAuth())
	{
		progress := api.Group("/progress")
		{
			progress.POST("/start", cfg.ProgressHandler.Start)
			// history is registered before the :id routes so gin never
			// tries to parse "history" as a session id.
			progress.GET("/history", cfg.ProgressHandler.History)
			progress.POST("/:id/submit", cfg.ProgressHandler.Submit)
			progress.POST("/:id/complete", cfg.ProgressHandler.Complete)
			progress.GET("/:id", cfg.ProgressHandler.Detail)
		}

		user := api.Group("/user")
		{
			user.GET("/stats", cfg.UserHandler.GetStats)
		}
	}

	return router
}
