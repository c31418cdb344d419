package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nikhilbhutani/legalrag/internal/chat"
	"github.com/nikhilbhutani/legalrag/internal/models"
)

type ChatService interface {
	AddMessage(ctx context.Context, p chat.AddMessageParams) (*models.ChatMessage, error)
	History(ctx context.Context, authID, sessionID string) ([]models.ChatMessage, error)
	Sessions(ctx context.Context, authID string) ([]string, error)
}

type ChatHandler struct {
	svc ChatService
}

func NewChatHandler(svc ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type chatMessageRequest struct {
	AuthID    string `json:"auth_id" validate:"required"`
	SessionID string `json:"session_id"`
	Sender    string `json:"sender" validate:"required,oneof=user assistant"`
	Message   string `json:"message" validate:"required"`
}

func (h *ChatHandler) AddMessage(w http.ResponseWriter, r *http.Request) {
	var req chatMessageRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	msg, err := h.svc.AddMessage(r.Context(), chat.AddMessageParams{
		AuthID:    req.AuthID,
		SessionID: req.SessionID,
		Sender:    req.Sender,
		Message:   req.Message,
	})
	if err != nil {
		slog.Error("add chat message failed", "auth_id", req.AuthID, "error", err)
		respondError(w, http.StatusInternalServerError, "internal", "failed to add chat message")
		return
	}
	respondOK(w, http.StatusCreated, "chat message added successfully", msg)
}

func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	authID := chi.URLParam(r, "authID")
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "session_id required")
		return
	}

	msgs, err := h.svc.History(r.Context(), authID, sessionID)
	if err != nil {
		slog.Error("chat history failed", "auth_id", authID, "error", err)
		respondError(w, http.StatusInternalServerError, "internal", "failed to retrieve chat history")
		return
	}
	if msgs == nil {
		msgs = []models.ChatMessage{}
	}
	respondOK(w, http.StatusOK, "", msgs)
}

func (h *ChatHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	authID := chi.URLParam(r, "authID")
	ids, err := h.svc.Sessions(r.Context(), authID)
	if err != nil {
		slog.Error("list sessions failed", "auth_id", authID, "error", err)
		respondError(w, http.StatusInternalServerError, "internal", "failed to retrieve sessions")
		return
	}
	if ids == nil {
		ids = []string{}
	}
	respondOK(w, http.StatusOK, "", ids)
}
