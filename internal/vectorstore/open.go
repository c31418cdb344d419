package vectorstore

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nikhilbhutani/legalrag/internal/config"
)

// Open returns the index selected by cfg.Backend. db is only used by the
// pgvector backend.
func Open(cfg config.VectorConfig, db *pgxpool.Pool) (VectorIndex, error) {
	switch cfg.Backend {
	case "pgvector":
		return NewPgVectorStore(db, cfg.Collection), nil
	case "qdrant":
		return NewQdrantStore(cfg.QdrantURL, cfg.QdrantAPIKey, cfg.Collection), nil
	default:
		return nil, fmt.Errorf("unknown vector backend %q", cfg.Backend)
	}
}
