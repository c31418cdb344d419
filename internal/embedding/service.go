package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/nikhilbhutani/legalrag/internal/llm"
)

// batchSize keeps requests under provider input limits.
const batchSize = 100

var ErrNoEmbedding = errors.New("no embedding returned")

type Service struct {
	gateway  llm.Gateway
	provider string
	model    string
}

func NewService(gw llm.Gateway, provider, model string) *Service {
	if model == "" {
		model = "text-embedding-3-small"
	}
	return &Service{gateway: gw, provider: provider, model: model}
}

// Embed returns one vector per input text, in input order.
func (s *Service) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += batchSize {
		batch := texts[i:min(i+batchSize, len(texts))]

		resp, err := s.gateway.Embed(ctx, llm.EmbeddingRequest{
			Provider: s.provider,
			Model:    s.model,
			Input:    batch,
		})
		if err != nil {
			return nil, fmt.Errorf("embed batch %d: %w", i/batchSize, err)
		}
		if len(resp.Embeddings) != len(batch) {
			return nil, fmt.Errorf("embed batch %d: got %d vectors for %d texts", i/batchSize, len(resp.Embeddings), len(batch))
		}
		for _, v := range resp.Embeddings {
			if len(v) == 0 {
				return nil, fmt.Errorf("embed batch %d: %w", i/batchSize, ErrNoEmbedding)
			}
			if len(out) > 0 && len(v) != len(out[0]) {
				return nil, fmt.Errorf("embed batch %d: dimension %d differs from %d", i/batchSize, len(v), len(out[0]))
			}
			out = append(out, v)
		}
	}

	return out, nil
}

func (s *Service) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := s.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, ErrNoEmbedding
	}
	return embeddings[0], nil
}

// Dimension probes the model once; used to size the vector collection.
func (s *Service) Dimension(ctx context.Context) (int, error) {
	v, err := s.EmbedSingle(ctx, "dimension probe")
	if err != nil {
		return 0, err
	}
	return len(v), nil
}
