package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	LLM      LLMConfig
	Vector   VectorConfig
	Storage  StorageConfig
	Worker   WorkerConfig
	LogLevel slog.Level
}

type ServerConfig struct {
	Host           string
	Port           int
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
}

type DatabaseConfig struct {
	URL            string
	MaxConns       int
	MinConns       int
	MigrationsPath string // empty uses the embedded schema
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

type LLMConfig struct {
	OpenAIKey        string
	OpenAIBaseURL    string // set to an OpenAI-compatible endpoint such as Groq
	AnthropicKey     string
	OllamaURL        string
	DefaultProvider  string
	DefaultModel     string
	FallbackProvider string
	MaxRetries       int
}

type VectorConfig struct {
	Backend           string // "pgvector" or "qdrant"
	QdrantURL         string
	QdrantAPIKey      string
	Collection        string
	EmbeddingProvider string
	EmbeddingModel    string
	ChunkSize         int
	ChunkOverlap      int
}

type StorageConfig struct {
	SupabaseURL string
	SupabaseKey string
	Bucket      string
}

type WorkerConfig struct {
	Concurrency int
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real env vars take precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var errs []error
	intVar := func(key string, fallback int) int {
		v, err := getEnvInt(key, fallback)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
		}
		return v
	}

	port := intVar("SERVER_PORT", 8080)
	burst := intVar("RATE_LIMIT_BURST", 200)
	maxConns := intVar("DB_MAX_CONNS", 20)
	minConns := intVar("DB_MIN_CONNS", 5)
	redisDB := intVar("REDIS_DB", 0)
	maxRetries := intVar("LLM_MAX_RETRIES", 3)
	chunkSize := intVar("CHUNK_SIZE", 2050)
	chunkOverlap := intVar("CHUNK_OVERLAP", 150)
	concurrency := intVar("WORKER_CONCURRENCY", 10)

	rps, err := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "100"), 64)
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err))
	}

	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "10m"))
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid CACHE_TTL: %w", err))
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		errs = append(errs, fmt.Errorf("invalid LOG_LEVEL: %w", err))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           port,
			CORSOrigins:    splitList(getEnv("CORS_ORIGINS", "*")),
			RateLimitRPS:   rps,
			RateLimitBurst: burst,
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConns:       maxConns,
			MinConns:       minConns,
			MigrationsPath: getEnv("MIGRATIONS_PATH", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
			CacheTTL: cacheTTL,
		},
		LLM: LLMConfig{
			OpenAIKey:        getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", ""),
			AnthropicKey:     getEnv("ANTHROPIC_API_KEY", ""),
			OllamaURL:        getEnv("OLLAMA_URL", "http://localhost:11434"),
			DefaultProvider:  getEnv("LLM_DEFAULT_PROVIDER", "openai"),
			DefaultModel:     getEnv("LLM_DEFAULT_MODEL", "llama3-8b-8192"),
			FallbackProvider: getEnv("LLM_FALLBACK_PROVIDER", ""),
			MaxRetries:       maxRetries,
		},
		Vector: VectorConfig{
			Backend:           strings.ToLower(getEnv("VECTOR_BACKEND", "pgvector")),
			QdrantURL:         getEnv("QDRANT_URL", ""),
			QdrantAPIKey:      getEnv("QDRANT_API_KEY", ""),
			Collection:        getEnv("COLLECTION_NAME", "legal_chunks"),
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", ""),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			ChunkSize:         chunkSize,
			ChunkOverlap:      chunkOverlap,
		},
		Storage: StorageConfig{
			SupabaseURL: getEnv("SUPABASE_URL", ""),
			SupabaseKey: getEnv("SUPABASE_SERVICE_KEY", ""),
			Bucket:      getEnv("STORAGE_BUCKET", "legal-documents"),
		},
		Worker: WorkerConfig{
			Concurrency: concurrency,
		},
		LogLevel: level,
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	var missing []string
	if c.Database.URL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.Vector.Backend == "qdrant" && c.Vector.QdrantURL == "" {
		missing = append(missing, "QDRANT_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
	}

	switch c.Vector.Backend {
	case "pgvector", "qdrant":
	default:
		return fmt.Errorf("unknown VECTOR_BACKEND %q", c.Vector.Backend)
	}
	if c.Vector.ChunkOverlap >= c.Vector.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP (%d) must be smaller than CHUNK_SIZE (%d)", c.Vector.ChunkOverlap, c.Vector.ChunkSize)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
