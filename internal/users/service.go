package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nikhilbhutani/legalrag/internal/cache"
	"github.com/nikhilbhutani/legalrag/internal/database"
	"github.com/nikhilbhutani/legalrag/internal/models"
)

var ErrNotFound = errors.New("user not found")

// Cache is the subset of cache.Cache used for context reads.
type Cache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, keys ...string) error
}

type Service struct {
	db    *pgxpool.Pool
	cache Cache
}

// NewService accepts a nil cache; context reads then go to Postgres only.
func NewService(db *pgxpool.Pool, c Cache) *Service {
	return &Service{db: db, cache: c}
}

type UpdateParams struct {
	ChatHistory *bool
	IsPremium   *bool
}

func contextKey(authID string) string { return "user_ctx:" + authID }

// CreateDefault inserts the user if missing and reports whether it was new.
func (s *Service) CreateDefault(ctx context.Context, authID string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		INSERT INTO users (auth_id) VALUES ($1)
		ON CONFLICT (auth_id) DO NOTHING`, authID)
	if err != nil {
		return false, fmt.Errorf("create user: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Service) Get(ctx context.Context, authID string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRow(ctx, `
		SELECT auth_id, chat_history, is_premium, context_history, created_at
		FROM users WHERE auth_id = $1`, authID,
	).Scan(&u.AuthID, &u.ChatHistory, &u.IsPremium, &u.ContextHistory, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (s *Service) Update(ctx context.Context, authID string, p UpdateParams) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE users SET
			chat_history = COALESCE($2, chat_history),
			is_premium = COALESCE($3, is_premium)
		WHERE auth_id = $1`, authID, p.ChatHistory, p.IsPremium)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendContext adds chunk ids to the user's context, evicting the oldest
// beyond MaxContext, and returns the stored list.
func (s *Service) AppendContext(ctx context.Context, authID string, ids []int64) ([]int64, error) {
	var updated []int64
	err := database.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		var existing []int64
		err := tx.QueryRow(ctx, `SELECT context_history FROM users WHERE auth_id = $1 FOR UPDATE`, authID).Scan(&existing)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("load context: %w", err)
		}

		updated = AppendBounded(existing, ids, MaxContext)
		if _, err := tx.Exec(ctx, `UPDATE users SET context_history = $2 WHERE auth_id = $1`, authID, updated); err != nil {
			return fmt.Errorf("store context: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, contextKey(authID)); err != nil {
			slog.Warn("failed to invalidate context cache", "auth_id", authID, "error", err)
		}
	}
	return updated, nil
}

type cachedContext struct {
	IDs []int64 `json:"ids"`
}

// GetContext returns the user's chunk ids, oldest first. found is false when
// the user does not exist.
func (s *Service) GetContext(ctx context.Context, authID string) ([]int64, bool, error) {
	if s.cache != nil {
		var cached cachedContext
		err := s.cache.Get(ctx, contextKey(authID), &cached)
		switch {
		case err == nil:
			return cached.IDs, true, nil
		case !errors.Is(err, cache.ErrMiss):
			slog.Warn("context cache read failed", "auth_id", authID, "error", err)
		}
	}

	var ids []int64
	err := s.db.QueryRow(ctx, `SELECT context_history FROM users WHERE auth_id = $1`, authID).Scan(&ids)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get context: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, contextKey(authID), cachedContext{IDs: ids}); err != nil {
			slog.Warn("context cache write failed", "auth_id", authID, "error", err)
		}
	}
	return ids, true, nil
}
