package queue

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
)

func TestRegistryRoutesByType(t *testing.T) {
	var got []string
	r := NewHandlersRegistry()
	r.Register(TypeDocumentProcess, asynq.HandlerFunc(func(_ context.Context, t *asynq.Task) error {
		got = append(got, t.Type())
		return nil
	}))
	r.Register(TypeFileSummarize, asynq.HandlerFunc(func(context.Context, *asynq.Task) error {
		return errors.New("llm down")
	}))

	ctx := context.Background()
	assert.NoError(t, r.Mux().ProcessTask(ctx, asynq.NewTask(TypeDocumentProcess, nil)))
	assert.EqualError(t, r.Mux().ProcessTask(ctx, asynq.NewTask(TypeFileSummarize, nil)), "llm down")
	assert.Error(t, r.Mux().ProcessTask(ctx, asynq.NewTask("unknown:type", nil)))
	assert.Equal(t, []string{TypeDocumentProcess}, got)
}

func TestServerConfig(t *testing.T) {
	cfg := ServerConfig(4)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Greater(t, cfg.Queues[QueueDefault], cfg.Queues[QueueLow])
	assert.NotNil(t, cfg.ErrorHandler)
}

func TestIsSkipRetry(t *testing.T) {
	assert.True(t, isSkipRetry(fmt.Errorf("bad payload: %w", asynq.SkipRetry)))
	assert.False(t, isSkipRetry(errors.New("timeout")))
}
