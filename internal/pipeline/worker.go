package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgallion1/memoire/internal/chunker"
	"github.com/dgallion1/memoire/internal/llm"
	"github.com/dgallion1/memoire/internal/outline"
	"github.com/dgallion1/memoire/internal/project"
)

// Drafter writes the content of one section.
type Drafter interface {
	DraftSection(ctx context.Context, s llm.SectionBrief) (string, error)
}

// Indexer refreshes the search documents of a project.
type Indexer interface {
	IndexProject(projectID string, chapters []outline.Chapter) (int, error)
}

// Worker processes a single drafting job.
type Worker struct {
	drafter Drafter
	repo    *project.Repository
	index   Indexer
	log     *slog.Logger

	maxConcurrentDraft int
	draftWords         int
	contextBudget      int

	retry RetryPolicy
	delay func(attempt int, err error) time.Duration
}

func NewWorker(drafter Drafter, repo *project.Repository, index Indexer, log *slog.Logger, maxDraft, words, contextBudget int) *Worker {
	if maxDraft <= 0 {
		maxDraft = 1
	}
	w := &Worker{
		drafter:            drafter,
		repo:               repo,
		index:              index,
		log:                log,
		maxConcurrentDraft: maxDraft,
		draftWords:         words,
		contextBudget:      contextBudget,
		retry:              DefaultRetryPolicy,
	}
	w.delay = w.retry.Delay
	return w
}

// Process drafts the job's sections. A section is marked generating while
// the model works on it, completed with its content on success, and set back
// to pending on failure so the student can retry. Content already in the
// project is never overwritten by a failed attempt.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "project_id", job.ProjectID)

	job.SetStatus(StatusDrafting, "loading")
	p, err := w.repo.Get(ctx, job.ProjectID)
	if err != nil {
		log.Error("load project failed", "error", err)
		job.AddError(fmt.Sprintf("load project: %s", err))
		job.SetStatus(StatusFailed, "loading")
		return
	}

	targets := w.selectTargets(p, job)
	job.SetTotalSections(len(targets))
	if len(targets) == 0 {
		log.Info("nothing to draft")
		job.SetStatus(StatusCompleted, "done")
		return
	}

	// Claim every target up front so concurrent edits see them as in progress.
	_, err = w.repo.Update(ctx, p.ID, func(p *project.Project) error {
		for _, id := range targets {
			if err := p.SetSectionStatus(id, outline.StatusGenerating); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Error("claim sections failed", "error", err)
		job.AddError(fmt.Sprintf("claim sections: %s", err))
		job.SetStatus(StatusFailed, "loading")
		return
	}

	job.SetStatus(StatusDrafting, "drafting")
	log.Info("drafting sections", "sections", len(targets))

	type draftResult struct {
		sectionID string
		words     int
		err       error
	}
	results := make(chan draftResult, len(targets))
	sem := make(chan struct{}, w.maxConcurrentDraft)

	for _, id := range targets {
		sem <- struct{}{}
		go func(sectionID string) {
			defer func() { <-sem }()
			words, err := w.draftOne(ctx, log, job.ProjectID, sectionID)
			results <- draftResult{sectionID: sectionID, words: words, err: err}
		}(id)
	}

	drafted := 0
	for range targets {
		r := <-results
		if r.err != nil {
			log.Error("draft failed", "section_id", r.sectionID, "error", r.err)
			job.AddError(fmt.Sprintf("section %s: %s", r.sectionID, r.err))
			job.SectionFailed()
			continue
		}
		drafted++
		job.SectionDrafted(r.words)
	}
	log.Info("drafting complete", "drafted", drafted, "total", len(targets))

	if drafted > 0 && w.index != nil {
		job.SetStatus(StatusDrafting, "indexing")
		if err := w.reindex(context.WithoutCancel(ctx), job.ProjectID); err != nil {
			log.Warn("reindex failed", "error", err)
			job.AddError(fmt.Sprintf("index: %s", err))
		}
	}

	switch {
	case drafted == len(targets):
		job.SetStatus(StatusCompleted, "done")
	case drafted > 0:
		job.SetStatus(StatusPartial, "done")
	default:
		job.SetStatus(StatusFailed, "drafting")
	}
}

// selectTargets resolves the sections a job should draft. Unknown sections
// and sections already being drafted are reported and skipped.
func (w *Worker) selectTargets(p *project.Project, job *Job) []string {
	requested := job.SectionIDs()
	if len(requested) == 0 {
		return p.PendingSections()
	}
	seen := make(map[string]bool, len(requested))
	var targets []string
	for _, id := range requested {
		if seen[id] {
			continue
		}
		seen[id] = true
		_, sec, err := p.FindSection(id)
		if err != nil {
			job.AddError(fmt.Sprintf("section %s: %s", id, err))
			continue
		}
		if sec.Status == outline.StatusGenerating {
			job.AddError(fmt.Sprintf("section %s: already being drafted", id))
			continue
		}
		targets = append(targets, id)
	}
	return targets
}

// draftOne drafts a single section against the latest project state and
// stores the result. It returns the word count of the new content.
func (w *Worker) draftOne(ctx context.Context, log *slog.Logger, projectID, sectionID string) (int, error) {
	p, err := w.repo.Get(ctx, projectID)
	if err != nil {
		w.release(ctx, projectID, sectionID)
		return 0, fmt.Errorf("load project: %w", err)
	}
	ch, sec, err := p.FindSection(sectionID)
	if err != nil {
		return 0, err
	}

	brief := llm.SectionBrief{
		Brief: llm.Brief{
			Title:    p.Title,
			Topic:    p.Topic,
			Field:    p.Field,
			Level:    p.Level,
			Language: p.Language,
		},
		Breadcrumb: []string{ch.Title, sec.Title},
		Outline:    tableOfContents(p.Chapters),
		Context:    chunker.Window(p.Chapters, sectionID, w.contextBudget),
		Words:      w.draftWords,
	}

	var text string
	var lastErr error
	for attempt := 0; ; attempt++ {
		text, lastErr = w.drafter.DraftSection(ctx, brief)
		if lastErr == nil || !IsRetryable(lastErr) || attempt+1 >= w.retry.Attempts {
			break
		}
		wait := w.delay(attempt, lastErr)
		log.Warn("retryable draft error", "section_id", sectionID, "attempt", attempt, "wait", wait, "error", lastErr)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			lastErr = ctx.Err()
		}
		if ctx.Err() != nil {
			break
		}
	}
	if lastErr != nil {
		w.release(ctx, projectID, sectionID)
		return 0, lastErr
	}

	_, err = w.repo.Update(context.WithoutCancel(ctx), projectID, func(p *project.Project) error {
		return p.SetSectionContent(sectionID, text)
	})
	if err != nil {
		return 0, fmt.Errorf("save section: %w", err)
	}
	return len(strings.Fields(text)), nil
}

// release puts a section back to pending after a failed attempt.
func (w *Worker) release(ctx context.Context, projectID, sectionID string) {
	_, err := w.repo.Update(context.WithoutCancel(ctx), projectID, func(p *project.Project) error {
		return p.SetSectionStatus(sectionID, outline.StatusPending)
	})
	if err != nil && !errors.Is(err, project.ErrNotFound) {
		w.log.Warn("release section failed", "project_id", projectID, "section_id", sectionID, "error", err)
	}
}

func (w *Worker) reindex(ctx context.Context, projectID string) error {
	p, err := w.repo.Get(ctx, projectID)
	if err != nil {
		return err
	}
	_, err = w.index.IndexProject(p.ID, p.Chapters)
	return err
}

// tableOfContents renders a compact numbered outline for prompts.
func tableOfContents(chapters []outline.Chapter) string {
	var sb strings.Builder
	for i, ch := range chapters {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, ch.Title)
		for j, sec := range ch.Sections {
			fmt.Fprintf(&sb, "   %d.%d %s\n", i+1, j+1, sec.Title)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
