package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dgallion1/memoire/internal/outline"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx outlines. Paragraphs styled with the shallowest
// heading level open chapters, deeper headings become sections, and unstyled
// paragraphs go through the plain-text heuristics.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) ([]outline.Chapter, error) {
	// go-docx needs a ReadSeeker+size, so write to temp file.
	tmp, err := os.CreateTemp("", "memoire-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var paras []*docx.Paragraph
	top := 0
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		if docxIsTitle(para) {
			continue
		}
		paras = append(paras, para)
		if level := docxHeadingLevel(para); level > 0 && (top == 0 || level < top) {
			top = level
		}
	}

	b := outline.NewBuilder()
	for _, para := range paras {
		text := docxParagraphText(para)
		if text == "" {
			continue
		}
		switch level := docxHeadingLevel(para); {
		case isChapterLevel(level, top):
			b.Chapter(outline.CleanTitle(text))
		case level > 0:
			b.Section(outline.CleanItem(text))
		default:
			outline.AddLine(b, text)
		}
	}
	return b.Chapters(), nil
}

// docxHeadingLevel reads the level from English ("Heading2") and French
// ("Titre2") Word style ids.
func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
	for _, prefix := range []string{"heading", "titre"} {
		rest, ok := strings.CutPrefix(style, prefix)
		if !ok || len(rest) != 1 {
			continue
		}
		if rest[0] >= '1' && rest[0] <= '6' {
			return int(rest[0] - '0')
		}
	}
	return 0
}

// docxIsTitle reports whether para carries a document title or subtitle
// style, which is not part of the outline.
func docxIsTitle(para *docx.Paragraph) bool {
	if para.Properties == nil || para.Properties.Style == nil {
		return false
	}
	switch strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", "")) {
	case "title", "titre", "subtitle", "sous-titre", "soustitre":
		return true
	}
	return false
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
