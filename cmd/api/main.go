package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nikhilbhutani/legalrag/internal/api"
	"github.com/nikhilbhutani/legalrag/internal/api/handlers"
	"github.com/nikhilbhutani/legalrag/internal/cache"
	"github.com/nikhilbhutani/legalrag/internal/chat"
	"github.com/nikhilbhutani/legalrag/internal/config"
	"github.com/nikhilbhutani/legalrag/internal/database"
	"github.com/nikhilbhutani/legalrag/internal/document"
	"github.com/nikhilbhutani/legalrag/internal/embedding"
	"github.com/nikhilbhutani/legalrag/internal/llm"
	"github.com/nikhilbhutani/legalrag/internal/queue"
	"github.com/nikhilbhutani/legalrag/internal/rag"
	"github.com/nikhilbhutani/legalrag/internal/storage"
	"github.com/nikhilbhutani/legalrag/internal/users"
	"github.com/nikhilbhutani/legalrag/internal/vectorstore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db, database.Source(cfg.Database.MigrationsPath)); err != nil {
		slog.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	// Redis is optional for serving: cache misses fall through to Postgres.
	rdb := cache.NewClient(cfg.Redis)
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable, running without cache", "error", err)
	}
	defer rdb.Close()
	redisCache := cache.NewCache(rdb, cfg.Redis.CacheTTL)

	index, err := vectorstore.Open(cfg.Vector, db)
	if err != nil {
		slog.Error("vector index unavailable", "error", err)
		os.Exit(1)
	}

	gw := llm.NewGateway(cfg.LLM)
	embedder := embedding.NewService(gw, cfg.Vector.EmbeddingProvider, cfg.Vector.EmbeddingModel)

	queueClient := queue.NewClient(cfg.Redis)
	defer queueClient.Close()

	userSvc := users.NewService(db, redisCache)
	chatSvc := chat.NewService(db)
	docSvc := document.NewService(db,
		storage.NewSupabaseStorage(cfg.Storage.SupabaseURL, cfg.Storage.SupabaseKey),
		redisCache, queueClient, cfg.Storage.Bucket)

	engine := rag.NewEngine(embedder, index, userSvc)
	pipeline := rag.NewPipeline(
		rag.NewRouter(gw, cfg.LLM.DefaultModel),
		engine,
		rag.NewGenerator(gw, cfg.LLM.DefaultModel),
		docSvc,
	)

	router := api.NewRouter(cfg.Server, api.Deps{
		Asker:    pipeline,
		Searcher: engine,
		Files:    docSvc,
		Users:    userSvc,
		Chat:     chatSvc,
		Checks: map[string]handlers.Pinger{
			"database": db,
			"redis":    redisCache,
		},
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting API server", "addr", cfg.Addr(), "vector_backend", cfg.Vector.Backend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}
