package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/legalrag/internal/cache"
	"github.com/nikhilbhutani/legalrag/internal/config"
	"github.com/nikhilbhutani/legalrag/internal/database"
	"github.com/nikhilbhutani/legalrag/internal/document"
	"github.com/nikhilbhutani/legalrag/internal/embedding"
	"github.com/nikhilbhutani/legalrag/internal/llm"
	"github.com/nikhilbhutani/legalrag/internal/queue"
	"github.com/nikhilbhutani/legalrag/internal/queue/workers"
	"github.com/nikhilbhutani/legalrag/internal/rag"
	"github.com/nikhilbhutani/legalrag/internal/storage"
	"github.com/nikhilbhutani/legalrag/internal/vectorstore"
	"github.com/nikhilbhutani/legalrag/pkg/chunker"
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

	rdb := cache.NewClient(cfg.Redis)
	defer rdb.Close()

	index, err := vectorstore.Open(cfg.Vector, db)
	if err != nil {
		slog.Error("vector index unavailable", "error", err)
		os.Exit(1)
	}

	gw := llm.NewGateway(cfg.LLM)
	embedder := embedding.NewService(gw, cfg.Vector.EmbeddingProvider, cfg.Vector.EmbeddingModel)

	queueClient := queue.NewClient(cfg.Redis)
	defer queueClient.Close()

	docSvc := document.NewService(db,
		storage.NewSupabaseStorage(cfg.Storage.SupabaseURL, cfg.Storage.SupabaseKey),
		cache.NewCache(rdb, cfg.Redis.CacheTTL), queueClient, cfg.Storage.Bucket)
	extractor := document.NewTextExtractor()

	opts := chunker.DefaultOptions()
	opts.ChunkSize = cfg.Vector.ChunkSize
	opts.ChunkOverlap = cfg.Vector.ChunkOverlap
	ingester := rag.NewIngester(embedder, index, opts)

	srv := asynq.NewServer(queue.RedisOpt(cfg.Redis), queue.ServerConfig(cfg.Worker.Concurrency))

	registry := queue.NewHandlersRegistry()

	ingestWorker := workers.NewIngestWorker(docSvc, extractor, ingester, queueClient)
	summaryWorker := workers.NewSummaryWorker(docSvc, extractor, rag.NewSummarizer(gw, cfg.LLM.DefaultModel))

	registry.Register(queue.TypeDocumentProcess, asynq.HandlerFunc(ingestWorker.ProcessTask))
	registry.Register(queue.TypeFileSummarize, asynq.HandlerFunc(summaryWorker.ProcessTask))

	slog.Info("starting worker", "concurrency", cfg.Worker.Concurrency, "vector_backend", cfg.Vector.Backend)
	if err := srv.Run(registry.Mux()); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
