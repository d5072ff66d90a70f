package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/dgallion1/memoire/internal/outline"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown outlines using goldmark. The shallowest
// heading level opens chapters; deeper headings, list items and paragraph
// lines become sections. A document without headings is read as plain text so that
// numbered lines keep their meaning.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) ([]outline.Chapter, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	top := topHeadingLevel(doc)
	if top == 0 {
		return outline.Parse(string(src)), nil
	}

	b := outline.NewBuilder()
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			title := extractText(node, src)
			if isChapterLevel(node.Level, top) {
				b.Chapter(outline.CleanTitle(title))
			} else {
				b.Section(outline.CleanItem(title))
			}
		case *ast.List:
			addListItems(b, node, src)
		case *ast.ThematicBreak, *ast.HTMLBlock:
			// layout only
		default:
			addTextLines(b, extractText(n, src))
		}
	}
	return b.Chapters(), nil
}

// topHeadingLevel returns the smallest heading level in doc, or 0.
func topHeadingLevel(doc ast.Node) int {
	top := 0
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok && (top == 0 || h.Level < top) {
			top = h.Level
		}
	}
	return top
}

// addListItems flattens a possibly nested list into sections.
func addListItems(b *outline.Builder, list *ast.List, src []byte) {
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			if sub, ok := c.(*ast.List); ok {
				addListItems(b, sub, src)
				continue
			}
			addTextLines(b, extractText(c, src))
		}
	}
}

// extractText gets the text content of a goldmark AST node.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			v := line.Value(src)
			buf.Write(v)
			if !bytes.HasSuffix(v, []byte("\n")) {
				buf.WriteByte('\n')
			}
		}
		if lines.Len() > 0 {
			return strings.TrimSpace(buf.String())
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			buf.WriteString(extractText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
