package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/lexidrill/lexidrill/internal/ai"
	"github.com/lexidrill/lexidrill/internal/api"
	"github.com/lexidrill/lexidrill/internal/config"
	"github.com/lexidrill/lexidrill/internal/core"
	"github.com/lexidrill/lexidrill/internal/db"
	"github.com/lexidrill/lexidrill/internal/logger"
	"github.com/lexidrill/lexidrill/internal/quiz"
	"github.com/lexidrill/lexidrill/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()

	// Initialize database
	database, err := db.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer database.Close()

	seeded, err := database.SeedSharedWords(ctx)
	if err != nil {
		log.Fatal("Failed to seed shared words", zap.Error(err))
	}
	users, err := database.CountUsers(ctx)
	if err != nil {
		log.Fatal("Failed to count users", zap.Error(err))
	}
	log.Info("Database ready",
		zap.String("path", cfg.Database.Path),
		zap.Int("seeded_words", seeded),
		zap.Int("users", users),
	)

	sessions, closeSessions, err := newSessionStore(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer closeSessions()

	var extractor ai.PairExtractor
	if cfg.ImportEnabled() {
		client, err := ai.NewClaudeClient(cfg.AnthropicAPIKey)
		if err != nil {
			log.Fatal("Failed to initialize AI client", zap.Error(err))
		}
		extractor = client
	} else {
		log.Warn("ANTHROPIC_API_KEY not set, document import disabled")
	}

	engine := quiz.NewEngine(database, sessions, quiz.Config{
		CorrectDelay: cfg.Quiz.CorrectDelay,
		WrongDelay:   cfg.Quiz.WrongDelay,
		OptionCount:  cfg.Quiz.OptionCount,
	}, log)
	processor := core.NewProcessor(database, extractor, cfg.NativeLanguage, log)
	handler := api.NewHandler(engine, processor, log)

	router := api.NewRouter(handler, api.RouterConfig{
		AllowedOrigins:    cfg.CORS.AllowedOrigins,
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
	})

	srv := newServer(cfg.Server.Port, router)

	go func() {
		log.Info("Starting server", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// newServer builds the HTTP server. Document import waits on the AI call
// before it writes, so the write deadline leaves room for a full extraction.
func newServer(port int, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: ai.RequestTimeout + time.Minute,
		IdleTimeout:  60 * time.Second,
	}
}

// newSessionStore returns a Redis-backed store when an address is
// configured and an in-memory one otherwise.
func newSessionStore(ctx context.Context, cfg config.RedisConfig, log *zap.Logger) (session.Store, func(), error) {
	if cfg.Addr == "" {
		log.Info("Keeping lesson sessions in memory")
		return session.NewMemoryStore(), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, nil, err
	}

	log.Info("Keeping lesson sessions in Redis", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	return session.NewRedisStore(rdb), func() { rdb.Close() }, nil
}
