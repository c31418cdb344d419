package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/legalrag/internal/document"
	"github.com/nikhilbhutani/legalrag/internal/models"
	"github.com/nikhilbhutani/legalrag/internal/queue"
	"github.com/nikhilbhutani/legalrag/internal/rag"
	"github.com/nikhilbhutani/legalrag/internal/vectorstore"
	"github.com/nikhilbhutani/legalrag/pkg/textextract"
)

type FileStore interface {
	Get(ctx context.Context, fileID int64) (*models.FileMetadata, error)
	Download(ctx context.Context, meta *models.FileMetadata) ([]byte, error)
	UpdateStatus(ctx context.Context, fileID int64, status, errMsg string) error
	SetSummary(ctx context.Context, fileID int64, summary string) error
}

type Indexer interface {
	Ingest(ctx context.Context, req rag.IngestRequest) (int, error)
}

type SummaryEnqueuer interface {
	EnqueueFileSummarize(ctx context.Context, fileID int64) error
}

// IngestWorker handles document:process. It extracts a file's text, indexes
// it and schedules the summary.
type IngestWorker struct {
	files     FileStore
	extractor document.TextExtractor
	indexer   Indexer
	summaries SummaryEnqueuer
}

func NewIngestWorker(files FileStore, extractor document.TextExtractor, indexer Indexer, summaries SummaryEnqueuer) *IngestWorker {
	return &IngestWorker{files: files, extractor: extractor, indexer: indexer, summaries: summaries}
}

func (w *IngestWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.DocumentProcessPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}
	fileID := payload.FileID

	slog.Info("processing file", "file_id", fileID)

	if err := w.files.UpdateStatus(ctx, fileID, models.DocStatusProcessing, ""); err != nil {
		return fmt.Errorf("update status to processing: %w", err)
	}

	n, err := w.process(ctx, fileID)
	if err != nil {
		if uerr := w.files.UpdateStatus(ctx, fileID, models.DocStatusFailed, err.Error()); uerr != nil {
			slog.Error("failed to mark file failed", "file_id", fileID, "error", uerr)
		}
		slog.Error("file processing failed", "file_id", fileID, "error", err)
		return err
	}

	if err := w.files.UpdateStatus(ctx, fileID, models.DocStatusReady, ""); err != nil {
		return fmt.Errorf("update status to ready: %w", err)
	}
	if err := w.summaries.EnqueueFileSummarize(ctx, fileID); err != nil {
		slog.Error("failed to enqueue summary", "file_id", fileID, "error", err)
	}

	slog.Info("file processed", "file_id", fileID, "chunks", n)
	return nil
}

func (w *IngestWorker) process(ctx context.Context, fileID int64) (int, error) {
	meta, text, err := loadText(ctx, w.files, w.extractor, fileID)
	if err != nil {
		return 0, err
	}

	n, err := w.indexer.Ingest(ctx, rag.IngestRequest{
		FileID:   fileID,
		CaseType: meta.CaseType,
		Date:     meta.FileDate,
		Content:  text,
	})
	if errors.Is(err, rag.ErrNoContent) || errors.Is(err, vectorstore.ErrTooManyChunks) {
		return 0, fmt.Errorf("index file: %w: %w", err, asynq.SkipRetry)
	}
	if err != nil {
		return 0, fmt.Errorf("index file: %w", err)
	}
	return n, nil
}

// loadText downloads and extracts a file. Files that can never be read are
// marked with asynq.SkipRetry.
func loadText(ctx context.Context, files FileStore, extractor document.TextExtractor, fileID int64) (*models.FileMetadata, string, error) {
	meta, err := files.Get(ctx, fileID)
	if errors.Is(err, document.ErrNotFound) {
		return nil, "", fmt.Errorf("get file: %w: %w", err, asynq.SkipRetry)
	}
	if err != nil {
		return nil, "", fmt.Errorf("get file: %w", err)
	}

	data, err := files.Download(ctx, meta)
	if err != nil {
		return nil, "", fmt.Errorf("download file: %w", err)
	}

	ext, err := textextract.TypeFromName(meta.FileName)
	if err != nil {
		return nil, "", fmt.Errorf("file type: %w: %w", err, asynq.SkipRetry)
	}
	text, err := extractor.Extract(data, ext)
	if err != nil {
		return nil, "", fmt.Errorf("extract text: %w: %w", err, asynq.SkipRetry)
	}
	return meta, text, nil
}
