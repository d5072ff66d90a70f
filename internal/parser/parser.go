// Package parser imports outline files of various formats.
package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/memoire/internal/outline"
)

// Parser converts an uploaded file into outline chapters.
type Parser interface {
	Parse(r io.Reader, filename string) ([]outline.Chapter, error)
}

// SupportedExtensions lists file extensions this service can import.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// Options tunes importers that shell out or guess.
type Options struct {
	PDFFallbackPdftotext bool
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// isChapterLevel reports whether a heading opens a chapter. The shallowest
// heading level used in a document (top) opens chapters; deeper headings
// become sections.
func isChapterLevel(level, top int) bool {
	return level > 0 && level <= top
}

// addTextLines feeds every line of text to b as section items.
func addTextLines(b *outline.Builder, text string) {
	for _, line := range strings.Split(text, "\n") {
		b.Section(outline.CleanItem(line))
	}
}
