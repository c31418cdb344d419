package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	AuthID         string    `json:"auth_id" db:"auth_id"`
	ChatHistory    bool      `json:"chat_history" db:"chat_history"`
	IsPremium      bool      `json:"is_premium" db:"is_premium"`
	ContextHistory []int64   `json:"context_history" db:"context_history"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

type ChatMessage struct {
	ID        uuid.UUID `json:"id" db:"id"`
	AuthID    string    `json:"auth_id" db:"auth_id"`
	SessionID string    `json:"session_id" db:"session_id"`
	Sender    string    `json:"sender" db:"sender"`
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)
