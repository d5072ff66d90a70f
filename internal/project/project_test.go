package project

import (
	"errors"
	"testing"

	"github.com/dgallion1/memoire/internal/outline"
)

func sampleProject() *Project {
	chapters := outline.Parse("Chapitre 1: Introduction\n- Contexte\n- Problématique\nChapitre 2: Méthodologie\n- Terrain")
	return New("Mémoire", "Télétravail et management", chapters)
}

func TestNew_NilOutline(t *testing.T) {
	p := New("  Titre  ", "", nil)
	if p.Chapters == nil {
		t.Error("expected non-nil chapters")
	}
	if p.Title != "Titre" {
		t.Errorf("expected trimmed title, got %q", p.Title)
	}
	if p.ID == "" {
		t.Error("expected an id")
	}
}

func TestAddSection(t *testing.T) {
	p := sampleProject()
	ch := p.Chapters[1]
	sec, err := p.AddSection(ch.ID, "Entretiens")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sec.Status != outline.StatusPending || sec.Content != "" {
		t.Errorf("expected fresh pending section, got %+v", sec)
	}
	if len(p.Chapters[1].Sections) != 2 {
		t.Errorf("expected 2 sections, got %d", len(p.Chapters[1].Sections))
	}

	if _, err := p.AddSection("missing", "x"); !errors.Is(err, ErrChapterNotFound) {
		t.Errorf("expected ErrChapterNotFound, got %v", err)
	}
	if _, err := p.AddSection(ch.ID, "   "); !errors.Is(err, ErrEmptyTitle) {
		t.Errorf("expected ErrEmptyTitle, got %v", err)
	}
}

func TestRemoveSection_KeepsLastSection(t *testing.T) {
	p := sampleProject()
	ch := p.Chapters[1]
	err := p.RemoveSection(ch.ID, ch.Sections[0].ID)
	if !errors.Is(err, ErrLastSection) {
		t.Fatalf("expected ErrLastSection, got %v", err)
	}

	intro := p.Chapters[0]
	if err := p.RemoveSection(intro.ID, intro.Sections[0].ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Chapters[0].Sections) != 1 || p.Chapters[0].Sections[0].Title != "Problématique" {
		t.Errorf("unexpected sections after removal: %+v", p.Chapters[0].Sections)
	}
	if err := p.RemoveSection(intro.ID, "missing"); !errors.Is(err, ErrSectionNotFound) {
		t.Errorf("expected ErrSectionNotFound, got %v", err)
	}
}

func TestRenameSectionAndChapter(t *testing.T) {
	p := sampleProject()
	secID := p.Chapters[0].Sections[0].ID
	if err := p.RenameSection(secID, "Contexte général"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Chapters[0].Sections[0].Title != "Contexte général" {
		t.Errorf("rename not applied: %q", p.Chapters[0].Sections[0].Title)
	}
	if err := p.RenameChapter(p.Chapters[1].ID, "Méthode"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Chapters[1].Title != "Méthode" {
		t.Errorf("rename not applied: %q", p.Chapters[1].Title)
	}
	if err := p.RenameSection("missing", "x"); !errors.Is(err, ErrSectionNotFound) {
		t.Errorf("expected ErrSectionNotFound, got %v", err)
	}
}

func TestAddAndRemoveChapter(t *testing.T) {
	p := sampleProject()
	ch, err := p.AddChapter("Conclusion")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ch.Sections) != 1 || ch.Sections[0].Title != outline.PlaceholderSectionTitle {
		t.Errorf("expected placeholder section, got %+v", ch.Sections)
	}
	if err := p.RemoveChapter(ch.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Chapters) != 2 {
		t.Errorf("expected 2 chapters, got %d", len(p.Chapters))
	}
}

func TestSetSectionContentAndProgress(t *testing.T) {
	p := sampleProject()
	secID := p.Chapters[0].Sections[0].ID
	if err := p.SetSectionContent(secID, "Le télétravail a progressé depuis 2020."); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pr := p.Progress()
	if pr.Sections != 3 || pr.Completed != 1 {
		t.Errorf("expected 1/3 completed, got %+v", pr)
	}
	if pr.Words != 6 {
		t.Errorf("expected 6 words, got %d", pr.Words)
	}
	if pr.Percent != 33 {
		t.Errorf("expected 33%%, got %d", pr.Percent)
	}

	pending := p.PendingSections()
	if len(pending) != 2 {
		t.Errorf("expected 2 pending sections, got %d", len(pending))
	}
}

func TestSetSectionStatus(t *testing.T) {
	p := sampleProject()
	secID := p.Chapters[0].Sections[0].ID
	if err := p.SetSectionStatus(secID, outline.StatusGenerating); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.SetSectionStatus(secID, "bogus"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestReplaceOutline(t *testing.T) {
	p := sampleProject()
	p.ReplaceOutline(outline.Parse("I. Nouveau\n- point"))
	if len(p.Chapters) != 1 || p.Chapters[0].Title != "Nouveau" {
		t.Errorf("unexpected outline after replace: %+v", p.Chapters)
	}
	p.ReplaceOutline(nil)
	if p.Chapters == nil {
		t.Error("expected non-nil chapters after replacing with nil")
	}
}

func TestReleaseGenerating(t *testing.T) {
	p := sampleProject()
	first := p.Chapters[0].Sections[0].ID
	second := p.Chapters[1].Sections[0].ID
	if err := p.SetSectionStatus(first, outline.StatusGenerating); err != nil {
		t.Fatal(err)
	}
	if err := p.SetSectionStatus(second, outline.StatusCompleted); err != nil {
		t.Fatal(err)
	}
	before := p.UpdatedAt

	if n := p.ReleaseGenerating(); n != 1 {
		t.Fatalf("released %d sections, want 1", n)
	}
	if got := p.Chapters[0].Sections[0].Status; got != outline.StatusPending {
		t.Errorf("first section status = %q, want pending", got)
	}
	if got := p.Chapters[1].Sections[0].Status; got != outline.StatusCompleted {
		t.Errorf("completed section changed to %q", got)
	}
	if p.UpdatedAt.Before(before) {
		t.Error("expected UpdatedAt to move forward")
	}
	if n := p.ReleaseGenerating(); n != 0 {
		t.Errorf("second release reset %d sections, want 0", n)
	}
}
