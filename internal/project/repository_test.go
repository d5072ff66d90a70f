package project

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dgallion1/memoire/internal/kvstore"
	"github.com/dgallion1/memoire/internal/outline"
)

func TestRepository_SaveGet(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(kvstore.NewMemoryStore())
	p := sampleProject()
	if err := repo.Save(ctx, p); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := repo.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != p.Title || len(got.Chapters) != len(p.Chapters) {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.Chapters[0].Sections[0].ID != p.Chapters[0].Sections[0].ID {
		t.Error("expected section ids to survive persistence")
	}
}

func TestRepository_GetMissing(t *testing.T) {
	repo := NewRepository(kvstore.NewMemoryStore())
	if _, err := repo.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRepository_UpdateFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(kvstore.NewMemoryStore())
	p := sampleProject()
	repo.Save(ctx, p)

	boom := errors.New("boom")
	_, err := repo.Update(ctx, p.ID, func(p *Project) error {
		p.Title = "changed"
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	got, _ := repo.Get(ctx, p.ID)
	if got.Title != "Mémoire" {
		t.Errorf("expected title unchanged, got %q", got.Title)
	}
}

func TestRepository_ConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(kvstore.NewMemoryStore())
	p := sampleProject()
	repo.Save(ctx, p)
	chapterID := p.Chapters[0].ID

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Update(ctx, p.ID, func(p *Project) error {
				_, err := p.AddSection(chapterID, "ajout")
				return err
			})
			if err != nil {
				t.Errorf("update: %v", err)
			}
		}()
	}
	wg.Wait()

	got, _ := repo.Get(ctx, p.ID)
	if n := len(got.Chapters[0].Sections); n != 22 {
		t.Errorf("expected 22 sections after concurrent updates, got %d", n)
	}
}

func TestRepository_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(kvstore.NewMemoryStore())
	older := New("Ancien", "", nil)
	older.UpdatedAt = time.Now().Add(-time.Hour)
	newer := New("Récent", "", nil)
	repo.Save(ctx, older)
	repo.Save(ctx, newer)

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(list))
	}
	if list[0].Title != "Récent" {
		t.Errorf("expected most recent first, got %q", list[0].Title)
	}

	if err := repo.Delete(ctx, older.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, older.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
	list, _ = repo.List(ctx)
	if len(list) != 1 {
		t.Errorf("expected 1 project after delete, got %d", len(list))
	}
}

func TestRepository_ReleaseStale(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(kvstore.NewMemoryStore())

	stuck := sampleProject()
	for _, sec := range stuck.Chapters[0].Sections {
		if err := stuck.SetSectionStatus(sec.ID, outline.StatusGenerating); err != nil {
			t.Fatal(err)
		}
	}
	idle := sampleProject()
	for _, p := range []*Project{stuck, idle} {
		if err := repo.Save(ctx, p); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	idleSaved := idle.UpdatedAt

	n, err := repo.ReleaseStale(ctx)
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if want := len(stuck.Chapters[0].Sections); n != want {
		t.Errorf("released %d sections, want %d", n, want)
	}

	got, err := repo.Get(ctx, stuck.ID)
	if err != nil {
		t.Fatal(err)
	}
	if pending := got.PendingSections(); len(pending) != got.Progress().Sections {
		t.Errorf("pending = %v, want every section", pending)
	}
	untouched, err := repo.Get(ctx, idle.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !untouched.UpdatedAt.Equal(idleSaved) {
		t.Error("project without stale sections was rewritten")
	}

	if n, err := repo.ReleaseStale(ctx); err != nil || n != 0 {
		t.Errorf("second release = %d, %v; want 0, nil", n, err)
	}
}
