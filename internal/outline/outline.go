package outline

import "github.com/google/uuid"

// Status is the drafting state of a section.
type Status string

const (
	StatusPending    Status = "pending"
	StatusGenerating Status = "generating"
	StatusCompleted  Status = "completed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusGenerating, StatusCompleted:
		return true
	}
	return false
}

const (
	// DefaultChapterTitle names the chapter opened when items appear before any heading.
	DefaultChapterTitle = "Introduction & Contexte"
	// PlaceholderSectionTitle fills chapters that collected no sections.
	PlaceholderSectionTitle = "Introduction du chapitre"
)

// Chapter is a top-level outline node. It always holds at least one section.
type Chapter struct {
	ID       string    `json:"id" yaml:"id"`
	Title    string    `json:"title" yaml:"title"`
	Sections []Section `json:"sections" yaml:"sections"`
}

// Section is one unit of thesis content to be drafted.
type Section struct {
	ID      string `json:"id" yaml:"id"`
	Title   string `json:"title" yaml:"title"`
	Content string `json:"content" yaml:"content"`
	Status  Status `json:"status" yaml:"status"`
}

// NewID returns a fresh identifier for a chapter or section.
func NewID() string {
	return uuid.NewString()
}

// NewSection returns an empty pending section.
func NewSection(title string) Section {
	return Section{
		ID:     NewID(),
		Title:  title,
		Status: StatusPending,
	}
}

// CountSections returns the total number of sections across chapters.
func CountSections(chapters []Chapter) int {
	n := 0
	for _, ch := range chapters {
		n += len(ch.Sections)
	}
	return n
}
