package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/legalrag/internal/config"
)

type Client struct {
	client *asynq.Client
}

func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

func NewClient(cfg config.RedisConfig) *Client {
	return &Client{client: asynq.NewClient(RedisOpt(cfg))}
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) EnqueueDocumentProcess(ctx context.Context, fileID int64) error {
	return c.enqueue(ctx, TypeDocumentProcess, DocumentProcessPayload{FileID: fileID},
		asynq.MaxRetry(3), asynq.Timeout(10*time.Minute), asynq.Queue(QueueDefault))
}

func (c *Client) EnqueueFileSummarize(ctx context.Context, fileID int64) error {
	return c.enqueue(ctx, TypeFileSummarize, FileSummarizePayload{FileID: fileID},
		asynq.MaxRetry(3), asynq.Timeout(15*time.Minute), asynq.Queue(QueueLow))
}

func (c *Client) enqueue(ctx context.Context, taskType string, payload any, opts ...asynq.Option) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	if _, err := c.client.EnqueueContext(ctx, asynq.NewTask(taskType, data), opts...); err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	return nil
}
