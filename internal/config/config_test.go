package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/legal")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "pgvector", cfg.Vector.Backend)
	assert.Equal(t, 2050, cfg.Vector.ChunkSize)
	assert.Equal(t, 150, cfg.Vector.ChunkOverlap)
	assert.Equal(t, 10*time.Minute, cfg.Redis.CacheTTL)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("VECTOR_BACKEND", "QDRANT")
	t.Setenv("QDRANT_URL", "http://qdrant:6333")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "qdrant", cfg.Vector.Backend)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoadInvalidValues(t *testing.T) {
	t.Setenv("SERVER_PORT", "eighty")
	t.Setenv("CACHE_TTL", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERVER_PORT")
	assert.Contains(t, err.Error(), "CACHE_TTL")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing database url",
			mutate:  func(c *Config) { c.Database.URL = "" },
			wantErr: "DATABASE_URL",
		},
		{
			name: "qdrant without url",
			mutate: func(c *Config) {
				c.Vector.Backend = "qdrant"
				c.Vector.QdrantURL = ""
			},
			wantErr: "QDRANT_URL",
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Vector.Backend = "faiss" },
			wantErr: "VECTOR_BACKEND",
		},
		{
			name:    "overlap too large",
			mutate:  func(c *Config) { c.Vector.ChunkOverlap = c.Vector.ChunkSize },
			wantErr: "CHUNK_OVERLAP",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Database: DatabaseConfig{URL: "postgres://localhost/legal"},
				Vector:   VectorConfig{Backend: "pgvector", ChunkSize: 2050, ChunkOverlap: 150},
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
