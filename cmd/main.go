package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"aura-bridge/internal/agent"
	"aura-bridge/internal/ai"
	"aura-bridge/internal/cache"
	"aura-bridge/internal/config"
	"aura-bridge/internal/handlers"
	"aura-bridge/internal/history"
	"aura-bridge/internal/logging"
	"aura-bridge/internal/metrics"
	"aura-bridge/internal/middleware"
)

func main() {
	// A missing .env is fine in deployed setups.
	if err := godotenv.Load(); err != nil {
		_ = godotenv.Load("../.env")
	}

	cfg := config.Load()
	logging.Init(cfg.Environment)
	defer logging.Sync()

	log := logging.L()
	log.Info("starting aura-bridge",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
		zap.Bool("gemini_configured", cfg.GeminiAPIKey != ""),
		zap.Bool("openai_configured", cfg.OpenAIAPIKey != ""))

	cacheLayer := cache.New(cfg.RedisURL)
	defer cacheLayer.Close()

	store, err := history.Open(cfg.DatabaseURL)
	if err != nil {
		log.Warn("history store unavailable, continuing without audit trail", zap.Error(err))
		store = nil
	}

	orchestrator := ai.NewOrchestrator(cfg, cacheLayer, store)
	agentClient := agent.NewClient(cfg.AgentURL)
	screenshots := agent.NewScreenshots(cfg.ScreenshotDir)

	router := setupRouter(cfg, orchestrator, agentClient, screenshots, store)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()
	log.Info("server ready", zap.String("addr", server.Addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		log.Fatal("server failed", zap.Error(err))
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	// Agent-driven sessions can run for minutes; give them time to drain.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown incomplete", zap.Error(err))
	}
	log.Info("shutdown complete")
}

func setupRouter(cfg *config.Config, orchestrator *ai.Orchestrator, agentClient *agent.Client, screenshots *agent.Screenshots, store *history.Store) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, cfg.RateLimitBurst))
	router.Use(metrics.Middleware())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173", "http://localhost:8080"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/metrics", metrics.Handler())

	h := handlers.New(orchestrator, agentClient, screenshots, store, cfg)
	h.Register(router)

	return router
}
