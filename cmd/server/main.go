package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/memoire/internal/api"
	"github.com/dgallion1/memoire/internal/chunker"
	"github.com/dgallion1/memoire/internal/config"
	"github.com/dgallion1/memoire/internal/kvstore"
	"github.com/dgallion1/memoire/internal/llm"
	"github.com/dgallion1/memoire/internal/pipeline"
	"github.com/dgallion1/memoire/internal/project"
	"github.com/dgallion1/memoire/internal/search"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Persistence: a remote key-value service when configured, memory otherwise.
	var store kvstore.Store
	var remote *kvstore.HTTPStore
	if cfg.KVURL != "" {
		remote = kvstore.NewHTTPStore(cfg.KVURL, cfg.KVAPIKey)
		store = remote
		log.Info("using remote kv store", "url", cfg.KVURL)
	} else {
		store = kvstore.NewMemoryStore()
		log.Warn("KV_URL not set, projects are kept in memory only")
	}
	repo := project.NewRepository(store)

	index, err := search.New(chunker.Config{
		ChunkSize:    cfg.DefaultChunkSize,
		ChunkOverlap: cfg.DefaultChunkOverlap,
		MinChunk:     1,
	})
	if err != nil {
		log.Error("create search index", "error", err)
		os.Exit(1)
	}
	if n, err := repo.ReleaseStale(ctx); err != nil {
		log.Warn("release stale sections", "error", err)
	} else if n > 0 {
		log.Info("released stale sections", "sections", n)
	}
	reindexAll(ctx, repo, index, log)

	claude := llm.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	if cfg.AnthropicBaseURL != "" {
		claude.WithBaseURL(cfg.AnthropicBaseURL)
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, claude, repo, index, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(repo, orch, index, claude, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		claude.Close()
		index.Close()
		if remote != nil {
			remote.Close()
		}
	}()

	log.Info("starting memoire", "port", cfg.Port, "model", cfg.AnthropicModel)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

// reindexAll rebuilds the in-memory search index from persisted projects.
func reindexAll(ctx context.Context, repo *project.Repository, index *search.Index, log *slog.Logger) {
	summaries, err := repo.List(ctx)
	if err != nil {
		log.Warn("list projects for indexing", "error", err)
		return
	}
	docs := 0
	for _, s := range summaries {
		p, err := repo.Get(ctx, s.ID)
		if err != nil {
			log.Warn("load project for indexing", "project_id", s.ID, "error", err)
			continue
		}
		n, err := index.IndexProject(p.ID, p.Chapters)
		if err != nil {
			log.Warn("index project", "project_id", p.ID, "error", err)
			continue
		}
		docs += n
	}
	log.Info("search index ready", "projects", len(summaries), "documents", docs)
}
