package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nikhilbhutani/legalrag/internal/rag"
	"github.com/nikhilbhutani/legalrag/internal/vectorstore"
)

type Asker interface {
	Ask(ctx context.Context, req rag.AskRequest) (*rag.Answer, error)
}

type Searcher interface {
	Search(ctx context.Context, req rag.SearchRequest) ([]vectorstore.SearchResult, error)
}

type RetrievalHandler struct {
	asker    Asker
	searcher Searcher
}

func NewRetrievalHandler(asker Asker, searcher Searcher) *RetrievalHandler {
	return &RetrievalHandler{asker: asker, searcher: searcher}
}

type retrieveRequest struct {
	Question   string   `json:"question" validate:"required"`
	Categories []string `json:"categories"`
	AuthID     string   `json:"auth_id"`
}

type searchRequest struct {
	Query      string   `json:"query" validate:"required"`
	Categories []string `json:"categories"`
	AuthID     string   `json:"auth_id"`
	Limit      int      `json:"limit" validate:"omitempty,min=1,max=50"`
}

// Retrieve answers a question with the search context and its source files.
func (h *RetrievalHandler) Retrieve(w http.ResponseWriter, r *http.Request) {
	var req retrieveRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	answer, err := h.asker.Ask(r.Context(), rag.AskRequest{
		Question:  req.Question,
		CaseTypes: req.Categories,
		UserID:    req.AuthID,
	})
	if err != nil {
		writeSearchError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, "", answer)
}

// Search returns the ranked chunks without generating an answer.
func (h *RetrievalHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	results, err := h.searcher.Search(r.Context(), rag.SearchRequest{
		Query:     req.Query,
		UserID:    req.AuthID,
		CaseTypes: req.Categories,
		Limit:     req.Limit,
	})
	if err != nil {
		writeSearchError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, "", map[string]any{"results": results, "count": len(results)})
}

func writeSearchError(w http.ResponseWriter, r *http.Request, err error) {
	var se *rag.SearchError
	switch {
	case errors.Is(err, rag.ErrEmptyQuery):
		respondError(w, http.StatusBadRequest, "empty_query", err.Error())
	case errors.Is(err, context.Canceled):
		respondError(w, 499, "canceled", "request canceled")
	case errors.As(err, &se):
		slog.Error("search failed", "stage", se.Stage, "error", err, "path", r.URL.Path)
		respondError(w, http.StatusBadGateway, "search_failed", "failed to process query")
	default:
		slog.Error("query failed", "error", err, "path", r.URL.Path)
		respondError(w, http.StatusBadGateway, "upstream_failed", "failed to process query")
	}
}
