package queue

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

const (
	QueueDefault = "default"
	QueueLow     = "low"
)

type HandlersRegistry struct {
	mux *asynq.ServeMux
}

func NewHandlersRegistry() *HandlersRegistry {
	mux := asynq.NewServeMux()
	mux.Use(logTask)
	return &HandlersRegistry{mux: mux}
}

func (r *HandlersRegistry) Register(taskType string, handler asynq.Handler) {
	r.mux.Handle(taskType, handler)
}

func (r *HandlersRegistry) Mux() *asynq.ServeMux {
	return r.mux
}

// Queues weights the worker's queues. Ingestion outranks summaries, which
// run on QueueLow.
func Queues() map[string]int {
	return map[string]int{QueueDefault: 6, QueueLow: 1}
}

// ServerConfig is the asynq configuration shared by worker binaries.
func ServerConfig(concurrency int) asynq.Config {
	return asynq.Config{
		Concurrency:  concurrency,
		Queues:       Queues(),
		ErrorHandler: asynq.ErrorHandlerFunc(reportFailure),
	}
}

func logTask(next asynq.Handler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
		start := time.Now()
		err := next.ProcessTask(ctx, t)

		attrs := []any{"type", t.Type(), "duration_ms", time.Since(start).Milliseconds()}
		if id, ok := asynq.GetTaskID(ctx); ok {
			attrs = append(attrs, "task_id", id)
		}
		if err != nil {
			slog.Warn("task failed", append(attrs, "error", err)...)
			return err
		}
		slog.Debug("task done", attrs...)
		return nil
	})
}

// reportFailure logs tasks that will not be retried again.
func reportFailure(ctx context.Context, t *asynq.Task, err error) {
	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)
	if retried < maxRetry && !isSkipRetry(err) {
		return
	}
	slog.Error("task dropped", "type", t.Type(), "retried", retried, "error", err)
}

func isSkipRetry(err error) bool {
	return errors.Is(err, asynq.SkipRetry)
}
