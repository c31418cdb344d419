package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nikhilbhutani/legalrag/internal/vectorstore"
)

// NoResultsAnswer is returned when a legal query matches nothing in the index.
const NoResultsAnswer = "Lo siento, no pude encontrar información relevante para tu consulta."

type QueryRouter interface {
	Route(ctx context.Context, question string) (Route, error)
}

type Searcher interface {
	Search(ctx context.Context, req SearchRequest) ([]vectorstore.SearchResult, error)
}

type AnswerGenerator interface {
	CaseBased(ctx context.Context, question, contextText string) (string, error)
	General(ctx context.Context, question string) (string, error)
}

type AskRequest struct {
	Question  string
	CaseTypes []string
	UserID    string
}

type Answer struct {
	Answer   string         `json:"answer"`
	Metadata []MetadataItem `json:"metadata"`
}

// Pipeline answers a question: route, search, assemble, generate.
type Pipeline struct {
	router    QueryRouter
	searcher  Searcher
	generator AnswerGenerator
	lookup    MetadataLookup
}

func NewPipeline(router QueryRouter, searcher Searcher, generator AnswerGenerator, lookup MetadataLookup) *Pipeline {
	return &Pipeline{router: router, searcher: searcher, generator: generator, lookup: lookup}
}

func (p *Pipeline) Ask(ctx context.Context, req AskRequest) (*Answer, error) {
	if strings.TrimSpace(req.Question) == "" {
		return nil, ErrEmptyQuery
	}

	route, err := p.router.Route(ctx, req.Question)
	if err != nil {
		return nil, err
	}
	slog.Info("query routed", "route", route, "user_id", req.UserID)

	if route == RouteGeneral {
		answer, err := p.generator.General(ctx, req.Question)
		if err != nil {
			return nil, err
		}
		return &Answer{Answer: answer, Metadata: []MetadataItem{}}, nil
	}

	results, err := p.searcher.Search(ctx, SearchRequest{
		Query:     req.Question,
		UserID:    req.UserID,
		CaseTypes: req.CaseTypes,
		Limit:     DefaultLimit,
	})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return &Answer{Answer: NoResultsAnswer, Metadata: []MetadataItem{}}, nil
	}

	contextText, metadata := Assemble(ctx, results, p.lookup)
	answer, err := p.generator.CaseBased(ctx, req.Question, contextText)
	if err != nil {
		return nil, fmt.Errorf("case-based answer: %w", err)
	}
	return &Answer{Answer: answer, Metadata: metadata}, nil
}
