package rag

import (
	"context"
	"log/slog"
	"strings"

	"github.com/nikhilbhutani/legalrag/internal/vectorstore"
)

// DefaultLimit applies when a caller passes no positive limit.
const DefaultLimit = 6

type Embedder interface {
	EmbedSingle(ctx context.Context, text string) ([]float32, error)
}

type Index interface {
	Search(ctx context.Context, req vectorstore.SearchRequest) ([]vectorstore.SearchResult, error)
}

// ContextStore returns the chunk ids a user has interacted with, oldest
// first. found is false when the user has no record.
type ContextStore interface {
	GetContext(ctx context.Context, userID string) (ids []int64, found bool, err error)
}

type SearchRequest struct {
	Query     string
	UserID    string
	CaseTypes []string
	Limit     int
}

// Engine runs the two-stage search: a personalized pass restricted to the
// user's context chunks, then a fallback pass over the whole index when the
// personalized pass is not confident enough.
type Engine struct {
	embedder Embedder
	index    Index
	contexts ContextStore
}

func NewEngine(embedder Embedder, index Index, contexts ContextStore) *Engine {
	return &Engine{embedder: embedder, index: index, contexts: contexts}
}

func (e *Engine) Search(ctx context.Context, req SearchRequest) ([]vectorstore.SearchResult, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, ErrEmptyQuery
	}
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	vec, err := e.embedder.EmbedSingle(ctx, req.Query)
	if err != nil {
		return nil, &SearchError{Stage: StageEmbed, Kind: ErrEmbedding, Err: err}
	}

	caseType := vectorstore.MatchCaseTypes(req.CaseTypes)

	if req.UserID != "" {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results, confident, err := e.personalized(ctx, vec, req.UserID, caseType)
		if err != nil {
			return nil, err
		}
		if confident {
			return results, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.fallback(ctx, vec, caseType, limit)
}

func (e *Engine) personalized(ctx context.Context, vec []float32, userID string, caseType *vectorstore.Condition) ([]vectorstore.SearchResult, bool, error) {
	ids, found, err := e.contexts.GetContext(ctx, userID)
	if err != nil {
		return nil, false, &SearchError{Stage: StagePersonalized, Kind: ErrContextStore, Err: err}
	}
	if !found || len(ids) == 0 {
		slog.Debug("no user context, skipping personalized search", "user_id", userID, "found", found)
		return nil, false, nil
	}

	must := []vectorstore.Condition{vectorstore.HasID(ids)}
	if caseType != nil {
		must = append(must, *caseType)
	}

	results, err := e.index.Search(ctx, vectorstore.SearchRequest{
		Vector:      vec,
		Filter:      &vectorstore.Filter{Must: must},
		Limit:       personalizedLimit,
		WithPayload: true,
	})
	if err != nil {
		return nil, false, &SearchError{Stage: StagePersonalized, Kind: ErrIndexQuery, Err: err}
	}

	good, confident := confidenceGate(results)
	slog.Debug("personalized search",
		"user_id", userID,
		"results", len(results),
		"confident_results", len(good),
		"confident", confident,
	)
	return good, confident, nil
}

func (e *Engine) fallback(ctx context.Context, vec []float32, caseType *vectorstore.Condition, limit int) ([]vectorstore.SearchResult, error) {
	var filter *vectorstore.Filter
	if caseType != nil {
		filter = &vectorstore.Filter{Must: []vectorstore.Condition{*caseType}}
	}

	results, err := e.index.Search(ctx, vectorstore.SearchRequest{
		Vector:      vec,
		Filter:      filter,
		Limit:       limit,
		WithPayload: true,
	})
	if err != nil {
		return nil, &SearchError{Stage: StageFallback, Kind: ErrIndexQuery, Err: err}
	}
	return results, nil
}
