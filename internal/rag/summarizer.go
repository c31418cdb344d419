package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/nikhilbhutani/legalrag/internal/llm"
	"github.com/nikhilbhutani/legalrag/pkg/chunker"
)

const summaryPrompt = "Write a concise summary of the following:\n\n\"%s\"\n\nCONCISE SUMMARY:"

// Summarizer produces a file summary with a map-reduce pass: each window is
// summarized on its own, then the partial summaries are summarized together.
type Summarizer struct {
	gateway llm.Gateway
	model   string
	chunker chunker.Chunker
	opts    chunker.ChunkOptions
}

func NewSummarizer(gw llm.Gateway, model string) *Summarizer {
	return &Summarizer{
		gateway: gw,
		model:   model,
		chunker: chunker.New(),
		opts:    chunker.ChunkOptions{ChunkSize: 10000, ChunkOverlap: 20, Strategy: "recursive"},
	}
}

func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	chunks := s.chunker.Chunk(text, s.opts)
	if len(chunks) == 0 {
		return "", nil
	}

	partials := make([]string, 0, len(chunks))
	for _, c := range chunks {
		out, err := s.summarize(ctx, c.Content)
		if err != nil {
			return "", fmt.Errorf("summarize chunk %d: %w", c.Index, err)
		}
		partials = append(partials, out)
	}
	if len(partials) == 1 {
		return partials[0], nil
	}

	out, err := s.summarize(ctx, strings.Join(partials, "\n\n"))
	if err != nil {
		return "", fmt.Errorf("combine summaries: %w", err)
	}
	return out, nil
}

func (s *Summarizer) summarize(ctx context.Context, text string) (string, error) {
	resp, err := s.gateway.Chat(ctx, llm.ChatRequest{
		Model:    s.model,
		Messages: []llm.Message{{Role: "user", Content: fmt.Sprintf(summaryPrompt, text)}},
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Content), nil
}
