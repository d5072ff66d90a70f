// Package project holds a student's thesis: its brief and outline tree.
package project

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgallion1/memoire/internal/outline"
)

var (
	ErrChapterNotFound = errors.New("chapter not found")
	ErrSectionNotFound = errors.New("section not found")
	ErrLastSection     = errors.New("a chapter must keep at least one section")
	ErrEmptyTitle      = errors.New("title is required")
	ErrInvalidStatus   = errors.New("invalid section status")
)

// Project is a thesis being drafted.
type Project struct {
	ID       string            `json:"id" yaml:"id"`
	Title    string            `json:"title" yaml:"title"`
	Topic    string            `json:"topic,omitempty" yaml:"topic,omitempty"`
	Field    string            `json:"field,omitempty" yaml:"field,omitempty"`
	Level    string            `json:"level,omitempty" yaml:"level,omitempty"`
	Language string            `json:"language,omitempty" yaml:"language,omitempty"`
	Chapters []outline.Chapter `json:"chapters" yaml:"chapters"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// New creates a project around an outline. A nil outline becomes empty.
func New(title, topic string, chapters []outline.Chapter) *Project {
	if chapters == nil {
		chapters = []outline.Chapter{}
	}
	now := time.Now().UTC()
	return &Project{
		ID:        outline.NewID(),
		Title:     strings.TrimSpace(title),
		Topic:     strings.TrimSpace(topic),
		Chapters:  chapters,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (p *Project) touch() {
	p.UpdatedAt = time.Now().UTC()
}

// ReplaceOutline discards the current tree in favour of chapters.
func (p *Project) ReplaceOutline(chapters []outline.Chapter) {
	if chapters == nil {
		chapters = []outline.Chapter{}
	}
	p.Chapters = chapters
	p.touch()
}

func (p *Project) chapterIndex(chapterID string) (int, error) {
	for i := range p.Chapters {
		if p.Chapters[i].ID == chapterID {
			return i, nil
		}
	}
	return -1, fmt.Errorf("chapter %s: %w", chapterID, ErrChapterNotFound)
}

// FindSection returns pointers into the tree for the given section.
func (p *Project) FindSection(sectionID string) (*outline.Chapter, *outline.Section, error) {
	for i := range p.Chapters {
		ch := &p.Chapters[i]
		for j := range ch.Sections {
			if ch.Sections[j].ID == sectionID {
				return ch, &ch.Sections[j], nil
			}
		}
	}
	return nil, nil, fmt.Errorf("section %s: %w", sectionID, ErrSectionNotFound)
}

// AddChapter appends a chapter holding one placeholder section.
func (p *Project) AddChapter(title string) (*outline.Chapter, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	p.Chapters = append(p.Chapters, outline.Chapter{
		ID:       outline.NewID(),
		Title:    title,
		Sections: []outline.Section{outline.NewSection(outline.PlaceholderSectionTitle)},
	})
	p.touch()
	return &p.Chapters[len(p.Chapters)-1], nil
}

func (p *Project) RenameChapter(chapterID, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	i, err := p.chapterIndex(chapterID)
	if err != nil {
		return err
	}
	p.Chapters[i].Title = title
	p.touch()
	return nil
}

func (p *Project) RemoveChapter(chapterID string) error {
	i, err := p.chapterIndex(chapterID)
	if err != nil {
		return err
	}
	p.Chapters = append(p.Chapters[:i], p.Chapters[i+1:]...)
	p.touch()
	return nil
}

// AddSection appends a pending section to a chapter.
func (p *Project) AddSection(chapterID, title string) (*outline.Section, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	i, err := p.chapterIndex(chapterID)
	if err != nil {
		return nil, err
	}
	ch := &p.Chapters[i]
	ch.Sections = append(ch.Sections, outline.NewSection(title))
	p.touch()
	return &ch.Sections[len(ch.Sections)-1], nil
}

func (p *Project) RenameSection(sectionID, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	_, sec, err := p.FindSection(sectionID)
	if err != nil {
		return err
	}
	sec.Title = title
	p.touch()
	return nil
}

// RemoveSection deletes a section. The last section of a chapter cannot be removed.
func (p *Project) RemoveSection(chapterID, sectionID string) error {
	i, err := p.chapterIndex(chapterID)
	if err != nil {
		return err
	}
	ch := &p.Chapters[i]
	for j := range ch.Sections {
		if ch.Sections[j].ID != sectionID {
			continue
		}
		if len(ch.Sections) == 1 {
			return ErrLastSection
		}
		ch.Sections = append(ch.Sections[:j], ch.Sections[j+1:]...)
		p.touch()
		return nil
	}
	return fmt.Errorf("section %s: %w", sectionID, ErrSectionNotFound)
}

// SetSectionContent stores drafted text and marks the section completed.
func (p *Project) SetSectionContent(sectionID, content string) error {
	_, sec, err := p.FindSection(sectionID)
	if err != nil {
		return err
	}
	sec.Content = content
	sec.Status = outline.StatusCompleted
	p.touch()
	return nil
}

func (p *Project) SetSectionStatus(sectionID string, status outline.Status) error {
	if !status.Valid() {
		return fmt.Errorf("%q: %w", status, ErrInvalidStatus)
	}
	_, sec, err := p.FindSection(sectionID)
	if err != nil {
		return err
	}
	sec.Status = status
	p.touch()
	return nil
}

// PendingSections returns the IDs of sections not yet drafted, in document order.
func (p *Project) PendingSections() []string {
	var ids []string
	for _, ch := range p.Chapters {
		for _, sec := range ch.Sections {
			if sec.Status == outline.StatusPending {
				ids = append(ids, sec.ID)
			}
		}
	}
	return ids
}

// ReleaseGenerating puts sections left in generating back to pending and
// returns how many were reset.
func (p *Project) ReleaseGenerating() int {
	n := 0
	for ci := range p.Chapters {
		for si := range p.Chapters[ci].Sections {
			sec := &p.Chapters[ci].Sections[si]
			if sec.Status == outline.StatusGenerating {
				sec.Status = outline.StatusPending
				n++
			}
		}
	}
	if n > 0 {
		p.touch()
	}
	return n
}

// Progress summarises drafting progress.
type Progress struct {
	Sections  int `json:"sections"`
	Completed int `json:"completed"`
	Words     int `json:"words"`
	Percent   int `json:"percent"`
}

func (p *Project) Progress() Progress {
	var pr Progress
	for _, ch := range p.Chapters {
		for _, sec := range ch.Sections {
			pr.Sections++
			if sec.Status == outline.StatusCompleted {
				pr.Completed++
			}
			pr.Words += len(strings.Fields(sec.Content))
		}
	}
	if pr.Sections > 0 {
		pr.Percent = pr.Completed * 100 / pr.Sections
	}
	return pr
}
