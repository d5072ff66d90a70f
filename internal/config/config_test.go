package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, k := range []string{"PORT", "KV_URL", "WORKER_COUNT", "DRAFT_WORDS", "JOB_TTL", "PDF_FALLBACK_PDFTOTEXT"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Port != "8090" {
		t.Errorf("expected port 8090, got %q", cfg.Port)
	}
	if cfg.KVURL != "" {
		t.Errorf("expected empty KV URL, got %q", cfg.KVURL)
	}
	if cfg.WorkerCount != 2 {
		t.Errorf("expected 2 workers, got %d", cfg.WorkerCount)
	}
	if cfg.DraftWords != 600 {
		t.Errorf("expected 600 draft words, got %d", cfg.DraftWords)
	}
	if cfg.JobTTL != time.Hour {
		t.Errorf("expected 1h job TTL, got %s", cfg.JobTTL)
	}
	if !cfg.PDFFallbackPdftotext {
		t.Error("expected pdftotext fallback enabled by default")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9000")
	t.Setenv("WORKER_COUNT", "8")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")
	t.Setenv("JOB_TTL", "15m")
	t.Setenv("PDF_FALLBACK_PDFTOTEXT", "false")
	t.Setenv("CONTEXT_BUDGET", "not-a-number")

	cfg := Load()
	if cfg.Port != "9000" {
		t.Errorf("expected port 9000, got %q", cfg.Port)
	}
	if cfg.WorkerCount != 8 {
		t.Errorf("expected 8 workers, got %d", cfg.WorkerCount)
	}
	if cfg.MaxUploadBytes != 1024 {
		t.Errorf("expected 1024 upload bytes, got %d", cfg.MaxUploadBytes)
	}
	if cfg.JobTTL != 15*time.Minute {
		t.Errorf("expected 15m TTL, got %s", cfg.JobTTL)
	}
	if cfg.PDFFallbackPdftotext {
		t.Error("expected pdftotext fallback disabled")
	}
	if cfg.ContextBudget != 2000 {
		t.Errorf("expected fallback context budget 2000, got %d", cfg.ContextBudget)
	}
}

func TestLoad_NonPositiveFallsBack(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("WORKER_COUNT", "0")
	t.Setenv("MAX_CONCURRENT_DRAFT", "-2")
	cfg := Load()
	if cfg.WorkerCount != 2 {
		t.Errorf("expected 2 workers, got %d", cfg.WorkerCount)
	}
	if cfg.MaxConcurrentDraft != 3 {
		t.Errorf("expected 3 concurrent drafts, got %d", cfg.MaxConcurrentDraft)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("ANTHROPIC_MODEL=claude-test\nPORT=7000\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("ANTHROPIC_MODEL", "")
	os.Unsetenv("ANTHROPIC_MODEL")
	t.Setenv("PORT", "7100")

	cfg := Load()
	if cfg.AnthropicModel != "claude-test" {
		t.Errorf("expected model from .env, got %q", cfg.AnthropicModel)
	}
	if cfg.Port != "7100" {
		t.Errorf("expected environment to win over .env, got %q", cfg.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"complete", Config{MemoireAPIKey: "k", AnthropicAPIKey: "a"}, false},
		{"missing api key", Config{AnthropicAPIKey: "a"}, true},
		{"missing anthropic key", Config{MemoireAPIKey: "k"}, true},
		{"kv url without key", Config{MemoireAPIKey: "k", AnthropicAPIKey: "a", KVURL: "http://kv"}, true},
		{"kv url with key", Config{MemoireAPIKey: "k", AnthropicAPIKey: "a", KVURL: "http://kv", KVAPIKey: "x"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
