package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nikhilbhutani/legalrag/internal/models"
	"github.com/nikhilbhutani/legalrag/internal/users"
)

type UserService interface {
	CreateDefault(ctx context.Context, authID string) (bool, error)
	Get(ctx context.Context, authID string) (*models.User, error)
	Update(ctx context.Context, authID string, p users.UpdateParams) error
	AppendContext(ctx context.Context, authID string, ids []int64) ([]int64, error)
}

type UserHandler struct {
	svc UserService
}

func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

type createUserRequest struct {
	AuthID string `json:"auth_id" validate:"required"`
}

type updateUserRequest struct {
	ChatHistory *bool `json:"chat_history"`
	IsPremium   *bool `json:"is_premium"`
}

type appendContextRequest struct {
	Context users.ChunkIDs `json:"context" validate:"required,min=1"`
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	created, err := h.svc.CreateDefault(r.Context(), req.AuthID)
	if err != nil {
		h.internal(w, "create user", req.AuthID, err)
		return
	}
	if !created {
		respondOK(w, http.StatusOK, "user already exists", nil)
		return
	}
	respondOK(w, http.StatusCreated, "user added successfully", nil)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	authID := chi.URLParam(r, "authID")
	u, err := h.svc.Get(r.Context(), authID)
	if errors.Is(err, users.ErrNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "user not found")
		return
	}
	if err != nil {
		h.internal(w, "get user", authID, err)
		return
	}
	respondOK(w, http.StatusOK, "", u)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	authID := chi.URLParam(r, "authID")
	var req updateUserRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if req.ChatHistory == nil && req.IsPremium == nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "chat_history or is_premium required")
		return
	}

	err := h.svc.Update(r.Context(), authID, users.UpdateParams{ChatHistory: req.ChatHistory, IsPremium: req.IsPremium})
	if errors.Is(err, users.ErrNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "user not found")
		return
	}
	if err != nil {
		h.internal(w, "update user", authID, err)
		return
	}
	respondOK(w, http.StatusOK, "user fields updated successfully", nil)
}

func (h *UserHandler) AppendContext(w http.ResponseWriter, r *http.Request) {
	authID := chi.URLParam(r, "authID")
	var req appendContextRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	ids, err := h.svc.AppendContext(r.Context(), authID, req.Context)
	if errors.Is(err, users.ErrNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "user not found")
		return
	}
	if err != nil {
		h.internal(w, "append context", authID, err)
		return
	}
	respondOK(w, http.StatusOK, "context appended successfully", map[string]any{"context_history": ids})
}

func (h *UserHandler) internal(w http.ResponseWriter, op, authID string, err error) {
	slog.Error(op+" failed", "auth_id", authID, "error", err)
	respondError(w, http.StatusInternalServerError, "internal", "failed to "+op)
}
