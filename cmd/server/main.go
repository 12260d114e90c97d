package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"gitgrok.app/api/common/id"
	"gitgrok.app/api/common/llm"
	"gitgrok.app/api/common/logger"
	"gitgrok.app/api/common/otel"
	"gitgrok.app/api/core/config"
	"gitgrok.app/api/core/db"
	"gitgrok.app/api/internal/analysis"
	"gitgrok.app/api/internal/chat"
	"gitgrok.app/api/internal/github"
	"gitgrok.app/api/internal/http/middleware"
	httprouter "gitgrok.app/api/internal/http/router"
	"gitgrok.app/api/internal/sandbox"
	"gitgrok.app/api/internal/service"
	"gitgrok.app/api/internal/store"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(logger.Options{
		Production:  cfg.IsProduction(),
		Development: cfg.IsDevelopment(),
		OTelEnabled: telemetry != nil,
		ServiceName: cfg.OTel.ServiceName,
	})

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "gitgrok api starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	if err := database.Migrate(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to apply migrations", "error", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "database connected")

	limiter, redisClient := setupRateLimiter(ctx, cfg)
	if redisClient != nil {
		defer redisClient.Close()
	}

	llmClient, err := llm.New(ctx, llm.Config{
		Provider:  cfg.LLM.Provider,
		APIKey:    cfg.LLM.APIKey,
		BaseURL:   cfg.LLM.BaseURL,
		Model:     cfg.LLM.Model,
		MaxTokens: cfg.LLM.MaxTokens,
		Timeout:   cfg.LLM.Timeout,
		Attempts:  cfg.LLM.Attempts,
		Backoff:   cfg.LLM.Backoff,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create llm client", "error", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "llm client ready", "provider", cfg.LLM.Provider, "model", llmClient.Model())

	githubClient, err := github.New(github.Options{
		Token:   cfg.GitHub.Token,
		BaseURL: cfg.GitHub.BaseURL,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create github client", "error", err)
		os.Exit(1)
	}
	if cfg.GitHub.Token == "" {
		slog.WarnContext(ctx, "GITHUB_TOKEN not set, github calls are unauthenticated and heavily rate limited")
	}

	sandboxManager := sandbox.NewManager(sandbox.Options{
		Root:         cfg.Analysis.WorkDir,
		StaleAfter:   cfg.Analysis.StaleAfter,
		CloneTimeout: cfg.Analysis.CloneTimeout,
	}, sandbox.GitCloner{Token: cfg.GitHub.Token})

	engine := analysis.NewEngine(sandboxManager, llmClient, analysis.Options{
		Discovery: analysis.DiscoveryLimits{
			MaxFiles:      cfg.Analysis.MaxFiles,
			MaxFileBytes:  cfg.Analysis.MaxFileBytes,
			MaxTotalBytes: cfg.Analysis.MaxTotalBytes,
		},
		Sampling: analysis.SamplingLimits{
			PerFileChars: cfg.Analysis.CharsPerFile,
			TotalChars:   cfg.Analysis.TotalChars,
		},
		MaxTokens: cfg.LLM.MaxTokens,
	})

	stores := store.NewStores(database.Queries())

	orchestrator := chat.NewOrchestrator(githubClient, llmClient, stores.Chats(), chat.Options{
		BotID:        cfg.Chat.BotID,
		HistoryLimit: cfg.Chat.HistoryLimit,
		MaxTokens:    cfg.LLM.MaxTokens,
	})

	services := service.NewServices(stores, githubClient, engine, orchestrator, cfg.JWT)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services, limiter)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Analysis requests clone and call the LLM synchronously.
		WriteTimeout: cfg.Analysis.CloneTimeout + 2*cfg.LLM.Timeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if removed, err := sandboxManager.SweepStale(shutdownCtx); err != nil {
		slog.WarnContext(shutdownCtx, "stale workspace sweep failed", "error", err, "removed", removed)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

// setupRateLimiter returns nil when rate limiting is disabled or REDIS_URL is unset.
func setupRateLimiter(ctx context.Context, cfg config.Config) (middleware.Limiter, *redis.Client) {
	if !cfg.RateLimit.Enabled() {
		slog.InfoContext(ctx, "rate limiting disabled")
		return nil, nil
	}
	if cfg.RedisURL == "" {
		slog.WarnContext(ctx, "REDIS_URL not set, rate limiting disabled")
		return nil, nil
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		// The limiter fails open, so keep serving and let redis come back.
		slog.WarnContext(ctx, "redis unreachable at startup", "error", err)
	} else {
		slog.InfoContext(ctx, "redis connected")
	}

	return middleware.NewRedisLimiter(redisClient, cfg.RateLimit.Window, cfg.RateLimit.Max), redisClient
}

func setupRouter(cfg config.Config, services *service.Services, limiter middleware.Limiter) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services, httprouter.RouterConfig{
		Environment:  cfg.Env,
		IsProduction: cfg.IsProduction(),
		Limiter:      limiter,
	})

	return router
}

const banner = `
  __ _(_) |_ __ _ _ __ ___ | | __
 / _` + "`" + ` | | __/ _` + "`" + ` | '__/ _ \| |/ /
| (_| | | || (_| | | | (_) |   <
 \__, |_|\__\__, |_|  \___/|_|\_\
 |___/      |___/
`
