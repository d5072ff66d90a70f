// Package export renders a project into downloadable documents.
package export

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/dgallion1/memoire/internal/project"
)

// Format names an export target.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "md"
	FormatDOCX     Format = "docx"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

var formats = map[Format]struct {
	ext         string
	contentType string
}{
	FormatHTML:     {".html", "text/html; charset=utf-8"},
	FormatMarkdown: {".md", "text/markdown; charset=utf-8"},
	FormatDOCX:     {".docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
	FormatJSON:     {".json", "application/json"},
	FormatYAML:     {".yaml", "application/yaml"},
}

// ParseFormat accepts a format name or a common alias.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "markdown":
		return FormatMarkdown, nil
	case "yml":
		return FormatYAML, nil
	case "":
		return FormatHTML, nil
	default:
		if _, ok := formats[f]; ok {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported export format: %s", s)
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	return formats[f].contentType
}

// Filename builds a download name from the project title.
func Filename(p *project.Project, f Format) string {
	slug := Slugify(p.Title)
	if slug == "" {
		slug = "memoire"
	}
	return slug + formats[f].ext
}

// Write renders p in format f.
func Write(w io.Writer, p *project.Project, f Format) error {
	switch f {
	case FormatHTML:
		return WriteHTML(w, p)
	case FormatMarkdown:
		return WriteMarkdown(w, p)
	case FormatDOCX:
		return WriteDOCX(w, p)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported export format: %s", f)
}

// Slugify lowercases s, strips accents and joins words with hyphens.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range norm.NFD.String(s) {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(unicode.ToLower(r))
		default:
			dash = true
		}
		if b.Len() >= 80 {
			break
		}
	}
	return b.String()
}

// ContentHash computes SHA-256 of a rendered document and returns the hex
// string. The API serves it as the export ETag.
func ContentHash(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
