package rag

import (
	"context"
	"errors"
	"sync"

	"github.com/nikhilbhutani/legalrag/internal/llm"
	"github.com/nikhilbhutani/legalrag/internal/vectorstore"
)

type fakeEmbedder struct {
	err   error
	calls int
}

func (f *fakeEmbedder) EmbedSingle(_ context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []float32{float32(len(text)), 1}, nil
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i), 1, 0}
	}
	return out, nil
}

// fakeIndex answers each Search call with the next configured response.
type fakeIndex struct {
	mu        sync.Mutex
	responses [][]vectorstore.SearchResult
	errs      []error
	requests  []vectorstore.SearchRequest

	ensuredDim int
	deleted    []int64
	upserted   []vectorstore.Point
	calls      []string
}

func (f *fakeIndex) Search(_ context.Context, req vectorstore.SearchRequest) ([]vectorstore.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.requests)
	f.requests = append(f.requests, req)
	if n < len(f.errs) && f.errs[n] != nil {
		return nil, f.errs[n]
	}
	if n < len(f.responses) {
		return f.responses[n], nil
	}
	return []vectorstore.SearchResult{}, nil
}

func (f *fakeIndex) EnsureCollection(_ context.Context, dim int) error {
	f.calls = append(f.calls, "ensure")
	f.ensuredDim = dim
	return nil
}

func (f *fakeIndex) Upsert(_ context.Context, points []vectorstore.Point) error {
	f.calls = append(f.calls, "upsert")
	f.upserted = append(f.upserted, points...)
	return nil
}

func (f *fakeIndex) DeleteFile(_ context.Context, fileID int64) error {
	f.calls = append(f.calls, "delete")
	f.deleted = append(f.deleted, fileID)
	return nil
}

type fakeContexts struct {
	ids   map[string][]int64
	err   error
	calls int
}

func (f *fakeContexts) GetContext(_ context.Context, userID string) ([]int64, bool, error) {
	f.calls++
	if f.err != nil {
		return nil, false, f.err
	}
	ids, ok := f.ids[userID]
	return ids, ok, nil
}

type fakeGateway struct {
	replies  []string
	err      error
	requests []llm.ChatRequest
}

func (f *fakeGateway) Chat(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	reply := "ok"
	if n := len(f.requests) - 1; n < len(f.replies) {
		reply = f.replies[n]
	}
	return &llm.ChatResponse{Content: reply}, nil
}

func (f *fakeGateway) Embed(context.Context, llm.EmbeddingRequest) (*llm.EmbeddingResponse, error) {
	return nil, errors.New("not used")
}

func result(id int64, score float64, fileID int64, text string) vectorstore.SearchResult {
	return vectorstore.SearchResult{
		ID:    id,
		Score: score,
		Payload: vectorstore.Payload{
			Text:     text,
			FileID:   fileID,
			CaseType: "penal",
		},
	}
}
