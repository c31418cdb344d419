package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/legalrag/internal/config"
)

func TestOpen(t *testing.T) {
	idx, err := Open(config.VectorConfig{Backend: "qdrant", QdrantURL: "http://qdrant:6333", Collection: "legal"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &QdrantStore{}, idx)

	idx, err = Open(config.VectorConfig{Backend: "pgvector", Collection: "legal"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &PgVectorStore{}, idx)

	_, err = Open(config.VectorConfig{Backend: "faiss"}, nil)
	assert.Error(t, err)
}
