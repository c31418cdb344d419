package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nikhilbhutani/legalrag/internal/config"
)

type gateway struct {
	providers        map[string]Provider
	defaultProvider  string
	defaultModel     string
	fallbackProvider string
	maxRetries       int
	backoff          time.Duration
}

func NewGateway(cfg config.LLMConfig) Gateway {
	g := newGateway(cfg.DefaultProvider, cfg.DefaultModel, cfg.FallbackProvider, cfg.MaxRetries)

	if cfg.OpenAIKey != "" {
		g.providers["openai"] = NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIBaseURL)
	}
	if cfg.AnthropicKey != "" {
		g.providers["anthropic"] = NewAnthropicProvider(cfg.AnthropicKey)
	}
	if cfg.OllamaURL != "" {
		g.providers["ollama"] = NewOllamaProvider(cfg.OllamaURL)
	}

	return g
}

func newGateway(defaultProvider, defaultModel, fallbackProvider string, maxRetries int, providers ...Provider) *gateway {
	g := &gateway{
		providers:        make(map[string]Provider),
		defaultProvider:  defaultProvider,
		defaultModel:     defaultModel,
		fallbackProvider: fallbackProvider,
		maxRetries:       maxRetries,
		backoff:          500 * time.Millisecond,
	}
	for _, p := range providers {
		g.providers[p.Name()] = p
	}
	return g
}

func (g *gateway) provider(name string) (Provider, error) {
	if name == "" {
		name = g.defaultProvider
	}
	p, ok := g.providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %q not configured", name)
	}
	return p, nil
}

func (g *gateway) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if req.Model == "" {
		req.Model = g.defaultModel
	}
	primary := req.Provider
	if primary == "" {
		primary = g.defaultProvider
	}

	resp, err := g.chatWithRetry(ctx, primary, req)
	if err != nil && g.fallbackProvider != "" && g.fallbackProvider != primary && ctx.Err() == nil {
		slog.Warn("primary provider failed, trying fallback",
			"primary", primary,
			"fallback", g.fallbackProvider,
			"error", err,
		)
		resp, err = g.chatWithRetry(ctx, g.fallbackProvider, req)
	}
	if err != nil {
		return nil, err
	}

	slog.Debug("chat completed",
		"provider", resp.Provider,
		"model", resp.Model,
		"input_tokens", resp.InputTokens,
		"output_tokens", resp.OutputTokens,
		"cost_usd", resp.CostUSD,
		"latency_ms", resp.LatencyMs,
	)
	return resp, nil
}

func (g *gateway) chatWithRetry(ctx context.Context, name string, req ChatRequest) (*ChatResponse, error) {
	p, err := g.provider(name)
	if err != nil {
		return nil, err
	}
	return retry(ctx, g.maxRetries, g.backoff, name, func() (*ChatResponse, error) {
		return p.ChatCompletion(ctx, req)
	})
}

// Embed is not retried across providers: vectors from different models are
// not comparable.
func (g *gateway) Embed(ctx context.Context, req EmbeddingRequest) (*EmbeddingResponse, error) {
	p, err := g.provider(req.Provider)
	if err != nil {
		return nil, err
	}
	return retry(ctx, g.maxRetries, g.backoff, p.Name(), func() (*EmbeddingResponse, error) {
		return p.GenerateEmbedding(ctx, req)
	})
}

func retry[T any](ctx context.Context, maxRetries int, backoff time.Duration, name string, call func() (T, error)) (T, error) {
	var zero T
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(attempt*attempt) * backoff
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(wait):
			}
			slog.Debug("retrying LLM call", "provider", name, "attempt", attempt)
		}

		resp, err := call()
		if err == nil {
			return resp, nil
		}
		if !retryable(err) {
			return zero, err
		}
		lastErr = err
	}
	return zero, fmt.Errorf("all retries exhausted for %s: %w", name, lastErr)
}
