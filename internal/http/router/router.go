package router

import (
	"github.com/gin-gonic/gin"

	"gitgrok.app/api/internal/http/handler"
	"gitgrok.app/api/internal/http/middleware"
	"gitgrok.app/api/internal/service"
)

type RouterConfig struct {
	Environment  string
	IsProduction bool
	// Limiter is optional; without it requests are not rate limited.
	Limiter middleware.Limiter
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	responder := handler.ErrorResponder{IsProduction: cfg.IsProduction}
	auth := services.Auth()
	requireAuth := middleware.RequireAuth(auth)

	healthHandler := handler.NewHealthHandler(cfg.Environment)
	router.GET("/api/health", healthHandler.Check)

	api := router.Group("/")
	if cfg.Limiter != nil {
		api.Use(middleware.RateLimit(cfg.Limiter))
	}

	AuthRouter(api.Group("/auth"), handler.NewAuthHandler(auth, responder))

	UserRouter(api.Group("/user"), requireAuth,
		handler.NewUserHandler(services.Users(), responder),
		handler.NewRepoHandler(services.Repos(), responder),
		handler.NewChatHandler(services.Chat(), responder),
	)

	AnalysisRouter(api.Group("/analysis"), requireAuth, handler.NewAnalysisHandler(services.Analysis(), responder))
}
