package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/legalrag/internal/document"
	"github.com/nikhilbhutani/legalrag/internal/queue"
)

type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// SummaryWorker handles file:summarize. A failed summary leaves the file
// searchable with an empty summary.
type SummaryWorker struct {
	files      FileStore
	extractor  document.TextExtractor
	summarizer Summarizer
}

func NewSummaryWorker(files FileStore, extractor document.TextExtractor, summarizer Summarizer) *SummaryWorker {
	return &SummaryWorker{files: files, extractor: extractor, summarizer: summarizer}
}

func (w *SummaryWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.FileSummarizePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	_, text, err := loadText(ctx, w.files, w.extractor, payload.FileID)
	if err != nil {
		return err
	}

	summary, err := w.summarizer.Summarize(ctx, text)
	if err != nil {
		return fmt.Errorf("summarize file %d: %w", payload.FileID, err)
	}
	if err := w.files.SetSummary(ctx, payload.FileID, summary); err != nil {
		return fmt.Errorf("store summary: %w", err)
	}

	slog.Info("file summarized", "file_id", payload.FileID, "summary_len", len(summary))
	return nil
}
