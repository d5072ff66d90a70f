package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/fumiama/go-docx"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/dgallion1/memoire/internal/project"
)

// WriteDOCX writes a Word document. Chapter and section titles use the
// Heading1 and Heading2 style ids so the file imports back as the same outline.
func WriteDOCX(w io.Writer, p *project.Project) error {
	doc := docx.New().WithDefaultTheme()

	doc.AddParagraph().Style("Title").Justification("center").AddText(p.Title).Bold().Size("40")
	if p.Topic != "" {
		doc.AddParagraph().Style("Subtitle").Justification("center").AddText(p.Topic).Italic()
	}

	for _, ch := range p.Chapters {
		doc.AddParagraph().AddPageBreaks()
		doc.AddParagraph().Style("Heading1").AddText(ch.Title).Bold().Size("32")
		for _, sec := range ch.Sections {
			doc.AddParagraph().Style("Heading2").AddText(sec.Title).Bold().Size("28")
			addMarkdown(doc, sec.Content)
		}
	}

	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

// addMarkdown flattens section Markdown into Word paragraphs. Headings inside
// content become Heading3, list items get a bullet.
func addMarkdown(doc *docx.Docx, content string) {
	src := []byte(strings.TrimSpace(content))
	if len(src) == 0 {
		return
	}
	root := markdown.Parser().Parse(text.NewReader(src))
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			doc.AddParagraph().Style("Heading3").AddText(plainText(node, src)).Bold()
		case *ast.List:
			for item := node.FirstChild(); item != nil; item = item.NextSibling() {
				doc.AddParagraph().AddText("• " + plainText(item, src))
			}
		case *ast.ThematicBreak:
		default:
			if t := plainText(n, src); t != "" {
				doc.AddParagraph().AddText(t)
			}
		}
	}
}

// plainText joins the text segments below n, turning line breaks into spaces.
func plainText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		if c.Kind() == ast.KindCodeBlock || c.Kind() == ast.KindFencedCodeBlock {
			lines := c.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.Write(seg.Value(src))
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(b.String()), " ")
}
