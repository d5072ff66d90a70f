package llm

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/memoire/internal/outline"
)

// OutlineItem is one chapter of a generated outline as the model returns it.
type OutlineItem struct {
	Title    string   `json:"title"`
	Sections []string `json:"sections"`
}

const (
	maxTitleRunes    = 200
	maxChapters      = 30
	maxSectionsPerCh = 30
	maxInputRunes    = 20000
)

// ErrSuspiciousInput is returned for student input that tries to steer the model.
var ErrSuspiciousInput = errors.New("input looks like a prompt injection")

var injectionPattern = regexp.MustCompile(
	`(?i)(ignore\s+(previous|all|above)|system\s*prompt|you\s+are\s+now|` +
		`act\s+as\s+|pretend\s+|forget\s+(everything|all)|` +
		`new\s+instructions|ignore[sz]?\s+(les\s+)?(instructions|consignes)\s+pr[ée]c[ée]dentes)`,
)

// ScreenInput rejects empty, oversized or injection-like free text.
func ScreenInput(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("input is empty")
	}
	if utf8.RuneCountInString(s) > maxInputRunes {
		return errors.New("input is too long")
	}
	if injectionPattern.MatchString(s) {
		return ErrSuspiciousInput
	}
	return nil
}

func validTitle(s string) bool {
	n := utf8.RuneCountInString(s)
	return n > 0 && n <= maxTitleRunes && !injectionPattern.MatchString(s)
}

// BuildOutline turns model output into chapters. Invalid titles are dropped,
// numbering the model left in is stripped, and limits are enforced. The
// result obeys the same invariants as outline.Parse.
func BuildOutline(items []OutlineItem) []outline.Chapter {
	if len(items) > maxChapters {
		items = items[:maxChapters]
	}
	b := outline.NewBuilder()
	for _, it := range items {
		title := outline.CleanTitle(it.Title)
		if !validTitle(title) {
			continue
		}
		b.Chapter(title)
		sections := it.Sections
		if len(sections) > maxSectionsPerCh {
			sections = sections[:maxSectionsPerCh]
		}
		for _, s := range sections {
			s = outline.CleanItem(s)
			if validTitle(s) {
				b.Section(s)
			}
		}
	}
	return b.Chapters()
}
