package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nikhilbhutani/legalrag/internal/vectorstore"
	"github.com/nikhilbhutani/legalrag/pkg/chunker"
)

var ErrNoContent = errors.New("no chunks generated from content")

type BatchEmbedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

type IngestRequest struct {
	FileID   int64
	CaseType string
	Date     string
	Content  string
}

// Ingester indexes a file's text. Re-ingesting a file replaces its whole id
// range.
type Ingester struct {
	embedder BatchEmbedder
	index    vectorstore.VectorIndex
	chunker  chunker.Chunker
	opts     chunker.ChunkOptions
}

func NewIngester(embedder BatchEmbedder, index vectorstore.VectorIndex, opts chunker.ChunkOptions) *Ingester {
	if opts.ChunkSize <= 0 {
		opts = chunker.DefaultOptions()
	}
	return &Ingester{embedder: embedder, index: index, chunker: chunker.New(), opts: opts}
}

// Ingest returns the number of points written.
func (i *Ingester) Ingest(ctx context.Context, req IngestRequest) (int, error) {
	chunks := i.chunker.Chunk(req.Content, i.opts)
	if len(chunks) == 0 {
		return 0, ErrNoContent
	}
	if len(chunks) > vectorstore.MaxChunksPerFile {
		return 0, fmt.Errorf("file %d has %d chunks: %w", req.FileID, len(chunks), vectorstore.ErrTooManyChunks)
	}

	texts := make([]string, len(chunks))
	for j, c := range chunks {
		texts[j] = c.Content
	}

	vectors, err := i.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("generate embeddings: %w", err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("generate embeddings: got %d vectors for %d chunks", len(vectors), len(chunks))
	}

	points := make([]vectorstore.Point, len(chunks))
	for j, c := range chunks {
		id, err := vectorstore.PointID(req.FileID, c.Index)
		if err != nil {
			return 0, err
		}
		points[j] = vectorstore.Point{
			ID:     id,
			Vector: vectors[j],
			Payload: vectorstore.Payload{
				Text:     c.Content,
				FileID:   req.FileID,
				CaseType: req.CaseType,
				Date:     req.Date,
			},
		}
	}

	if err := i.index.EnsureCollection(ctx, len(vectors[0])); err != nil {
		return 0, fmt.Errorf("ensure collection: %w", err)
	}
	if err := i.index.DeleteFile(ctx, req.FileID); err != nil {
		return 0, fmt.Errorf("clear previous chunks: %w", err)
	}
	if err := i.index.Upsert(ctx, points); err != nil {
		return 0, fmt.Errorf("store chunks: %w", err)
	}

	slog.Info("file indexed", "file_id", req.FileID, "chunks", len(points))
	return len(points), nil
}
