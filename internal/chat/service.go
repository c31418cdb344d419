package chat

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nikhilbhutani/legalrag/internal/models"
)

type Service struct {
	db *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

type AddMessageParams struct {
	AuthID    string
	SessionID string
	Sender    string
	Message   string
}

// AddMessage stores a message. An empty SessionID starts a new session.
func (s *Service) AddMessage(ctx context.Context, p AddMessageParams) (*models.ChatMessage, error) {
	if p.SessionID == "" {
		p.SessionID = uuid.NewString()
	}

	msg := &models.ChatMessage{
		ID:        uuid.New(),
		AuthID:    p.AuthID,
		SessionID: p.SessionID,
		Sender:    p.Sender,
		Message:   p.Message,
	}
	err := s.db.QueryRow(ctx, `
		INSERT INTO chat_messages (id, auth_id, session_id, sender, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		msg.ID, msg.AuthID, msg.SessionID, msg.Sender, msg.Message,
	).Scan(&msg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert chat message: %w", err)
	}
	return msg, nil
}

// History returns a session's messages oldest first.
func (s *Service) History(ctx context.Context, authID, sessionID string) ([]models.ChatMessage, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, auth_id, session_id, sender, message, created_at
		FROM chat_messages
		WHERE auth_id = $1 AND session_id = $2
		ORDER BY created_at, id`, authID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query chat history: %w", err)
	}
	msgs, err := pgx.CollectRows(rows, pgx.RowToStructByName[models.ChatMessage])
	if err != nil {
		return nil, fmt.Errorf("scan chat history: %w", err)
	}
	return msgs, nil
}

// Sessions returns the user's session ids, most recently active first.
func (s *Service) Sessions(ctx context.Context, authID string) ([]string, error) {
	rows, err := s.db.Query(ctx, `
		SELECT session_id
		FROM chat_messages
		WHERE auth_id = $1
		GROUP BY session_id
		ORDER BY max(created_at) DESC`, authID)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan sessions: %w", err)
	}
	return ids, nil
}
