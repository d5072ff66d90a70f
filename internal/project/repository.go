package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dgallion1/memoire/internal/kvstore"
)

// ErrNotFound is returned when no project is stored under an ID.
var ErrNotFound = errors.New("project not found")

var errUnchanged = errors.New("unchanged")

const keyPrefix = "memoire/projects"

// Repository persists projects as JSON documents in a key-value store.
type Repository struct {
	store kvstore.Store
	locks sync.Map // project id -> *sync.Mutex
}

func NewRepository(store kvstore.Store) *Repository {
	return &Repository{store: store}
}

func projectKey(id string) string {
	return keyPrefix + "/" + id
}

func (r *Repository) lock(id string) *sync.Mutex {
	v, _ := r.locks.LoadOrStore(id, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// Save writes p, replacing any previous version.
func (r *Repository) Save(ctx context.Context, p *Project) error {
	mu := r.lock(p.ID)
	mu.Lock()
	defer mu.Unlock()
	return r.save(ctx, p)
}

func (r *Repository) save(ctx context.Context, p *Project) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal project: %w", err)
	}
	if err := r.store.Set(ctx, projectKey(p.ID), data); err != nil {
		return fmt.Errorf("save project %s: %w", p.ID, err)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id string) (*Project, error) {
	data, ok, err := r.store.Get(ctx, projectKey(id))
	if err != nil {
		return nil, fmt.Errorf("load project %s: %w", id, err)
	}
	if !ok {
		return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode project %s: %w", id, err)
	}
	return &p, nil
}

// Update loads a project, applies fn and saves the result. Concurrent updates
// to the same project are serialized. Nothing is written when fn fails.
func (r *Repository) Update(ctx context.Context, id string, fn func(*Project) error) (*Project, error) {
	mu := r.lock(id)
	mu.Lock()
	defer mu.Unlock()

	p, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	if err := r.save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	mu := r.lock(id)
	mu.Lock()
	defer mu.Unlock()

	if _, ok, err := r.store.Get(ctx, projectKey(id)); err != nil {
		return fmt.Errorf("load project %s: %w", id, err)
	} else if !ok {
		return fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	if err := r.store.Remove(ctx, projectKey(id)); err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	r.locks.Delete(id)
	return nil
}

// Summary is the listing view of a project.
type Summary struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Chapters int      `json:"chapters"`
	Progress Progress `json:"progress"`
}

// List returns summaries of all stored projects, most recently updated first.
func (r *Repository) List(ctx context.Context) ([]Summary, error) {
	keys, err := r.store.List(ctx, keyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	type entry struct {
		s Summary
		p *Project
	}
	entries := make([]entry, 0, len(keys))
	for _, k := range keys {
		id := strings.TrimPrefix(k, keyPrefix+"/")
		p, err := r.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry{
			s: Summary{ID: p.ID, Title: p.Title, Chapters: len(p.Chapters), Progress: p.Progress()},
			p: p,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].p.UpdatedAt.After(entries[j].p.UpdatedAt)
	})
	out := make([]Summary, len(entries))
	for i, e := range entries {
		out[i] = e.s
	}
	return out, nil
}

// ReleaseStale resets sections a previous process left in generating, so
// drafting can pick them up again. It returns the number of sections reset.
func (r *Repository) ReleaseStale(ctx context.Context) (int, error) {
	keys, err := r.store.List(ctx, keyPrefix)
	if err != nil {
		return 0, fmt.Errorf("list projects: %w", err)
	}
	total := 0
	for _, k := range keys {
		id := strings.TrimPrefix(k, keyPrefix+"/")
		_, err := r.Update(ctx, id, func(p *Project) error {
			n := p.ReleaseGenerating()
			if n == 0 {
				return errUnchanged
			}
			total += n
			return nil
		})
		switch {
		case err == nil, errors.Is(err, errUnchanged), errors.Is(err, ErrNotFound):
		default:
			return total, err
		}
	}
	return total, nil
}
