package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storybook-server/internal/ai"
	"storybook-server/internal/config"
	"storybook-server/internal/database"
	"storybook-server/internal/generation"
	"storybook-server/internal/handler"
	"storybook-server/internal/logger"
	"storybook-server/internal/repository"
	"storybook-server/internal/service"
	"storybook-server/migrations"
)

func main() {
	// .env опционален: в production конфигурация приходит из окружения и секретов
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		zap.NewExample().Fatal("Failed to load configuration", zap.Error(err))
	}

	log, err := logger.New(logger.Config{
		Level:    cfg.LogLevel,
		Encoding: cfg.LogEncoding,
	})
	if err != nil {
		zap.NewExample().Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting storybook server",
		zap.String("port", cfg.HTTPPort),
		zap.String("db_dsn", cfg.GetMaskedDSN()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, database.Config{
		DSN:      cfg.GetDSN(),
		MaxConns: cfg.DBMaxConns,
	}, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()
	log.Info("Database connection established")

	if err := database.MigrateUp(pool, migrations.FS, ".", log); err != nil {
		log.Fatal("Failed to apply migrations", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() { _ = redisClient.Close() }()
	log.Info("Redis connection established")

	textGen, err := ai.NewTextClient(ai.TextClientConfig{
		APIKey:      cfg.AIAPIKey,
		BaseURL:     cfg.AIBaseURL,
		Model:       cfg.AIModel,
		Temperature: cfg.AITemperature,
		MaxTokens:   cfg.AIMaxTokens,
		Timeout:     cfg.AITimeout,
	}, log)
	if err != nil {
		log.Fatal("Failed to create text generation client", zap.Error(err))
	}
	imageGen, err := ai.NewImageClient(ai.ImageClientConfig{
		BaseURL:           cfg.ImageAPIBaseURL,
		Timeout:           cfg.ImageAPITimeout,
		PromptStyleSuffix: cfg.PromptStyleSuffix,
	}, log)
	if err != nil {
		log.Fatal("Failed to create image generation client", zap.Error(err))
	}

	storyRepo := repository.NewPgStoryRepository(pool, log)
	progressRepo := repository.NewRedisProgressRepository(redisClient, log)

	storyService := service.NewStoryService(storyRepo, progressRepo, textGen, imageGen, service.Config{
		Retry: generation.RetryConfig{
			MaxRetries:    cfg.RetryMaxRetries,
			BaseDelay:     cfg.RetryBaseDelay,
			MaxDelay:      cfg.RetryMaxDelay,
			BackoffFactor: cfg.RetryBackoffFactor,
		},
		MaxConcurrentCategories: cfg.MaxConcurrentCategories,
		ImageCandidates:         cfg.ImageCandidates,
	}, log)

	storyHandler := handler.NewStoryHandler(storyService, log)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: storyHandler.Router(cfg.CORSAllowOrigins),
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
		os.Exit(1)
	}
	log.Info("Server stopped gracefully")
}
