package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Key-value store. Empty KVURL keeps projects in memory.
	KVURL    string
	KVAPIKey string

	// Auth
	MemoireAPIKey string

	// Claude drafting
	AnthropicAPIKey  string
	AnthropicModel   string
	AnthropicBaseURL string

	// Worker pool
	WorkerCount        int
	MaxQueueSize       int
	MaxConcurrentDraft int

	// Upload limits
	MaxUploadBytes int64

	// Drafting
	DraftWords    int
	ContextBudget int // tokens of previous content sent with each section

	// Search chunking
	DefaultChunkSize    int
	DefaultChunkOverlap int

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first; variables already set win.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "config: ignoring .env: %v\n", err)
	}

	cfg := Config{
		Port: envOr("PORT", "8090"),

		KVURL:    os.Getenv("KV_URL"),
		KVAPIKey: os.Getenv("KV_API_KEY"),

		MemoireAPIKey: os.Getenv("MEMOIRE_API_KEY"),

		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:   envOr("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),
		AnthropicBaseURL: os.Getenv("ANTHROPIC_BASE_URL"),

		WorkerCount:        envInt("WORKER_COUNT", 2),
		MaxQueueSize:       envInt("MAX_QUEUE_SIZE", 100),
		MaxConcurrentDraft: envInt("MAX_CONCURRENT_DRAFT", 3),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 10485760), // 10MB

		DraftWords:    envInt("DRAFT_WORDS", 600),
		ContextBudget: envInt("CONTEXT_BUDGET", 2000),

		DefaultChunkSize:    envInt("DEFAULT_CHUNK_SIZE", 400),
		DefaultChunkOverlap: envInt("DEFAULT_CHUNK_OVERLAP", 50),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConcurrentDraft <= 0 {
		cfg.MaxConcurrentDraft = 3
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10485760
	}
	if cfg.DraftWords <= 0 {
		cfg.DraftWords = 600
	}
	if cfg.ContextBudget < 0 {
		cfg.ContextBudget = 0
	}
	if cfg.DefaultChunkSize <= 0 {
		cfg.DefaultChunkSize = 400
	}
	if cfg.DefaultChunkOverlap <= 0 {
		cfg.DefaultChunkOverlap = 50
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.MemoireAPIKey == "" {
		return fmt.Errorf("MEMOIRE_API_KEY is required")
	}
	if c.AnthropicAPIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY is required")
	}
	if c.KVURL != "" && c.KVAPIKey == "" {
		return fmt.Errorf("KV_API_KEY is required when KV_URL is set")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
