package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dgallion1/memoire/internal/outline"
	"github.com/dgallion1/memoire/internal/project"
)

const stylesheet = `body{font-family:Georgia,serif;max-width:46em;margin:2em auto;line-height:1.6;padding:0 1em}
h1{text-align:center}nav ol{padding-left:1.2em}.pending{color:#888;font-style:italic}
section.chapter{page-break-before:always}`

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// WriteHTML renders the project as a standalone HTML document with a table
// of contents. Section content is converted from Markdown.
func WriteHTML(w io.Writer, p *project.Project) error {
	lang := "fr"
	if p.Language != "" && len(p.Language) <= 3 {
		lang = p.Language
	}

	root := &html.Node{Type: html.DocumentNode}
	root.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	doc := element(atom.Html, "lang", lang)
	root.AppendChild(doc)

	head := element(atom.Head)
	head.AppendChild(element(atom.Meta, "charset", "utf-8"))
	head.AppendChild(withText(element(atom.Title), p.Title))
	head.AppendChild(withText(element(atom.Style), stylesheet))
	doc.AppendChild(head)

	body := element(atom.Body)
	doc.AppendChild(body)

	body.AppendChild(withText(element(atom.H1), p.Title))
	if p.Topic != "" {
		body.AppendChild(withText(element(atom.P, "class", "topic"), p.Topic))
	}
	body.AppendChild(tableOfContents(p.Chapters))

	for _, ch := range p.Chapters {
		sec := element(atom.Section, "class", "chapter", "id", anchor(ch.ID))
		sec.AppendChild(withText(element(atom.H2), ch.Title))
		for _, s := range ch.Sections {
			sec.AppendChild(withText(element(atom.H3, "id", anchor(s.ID)), s.Title))
			nodes, err := renderContent(s)
			if err != nil {
				return fmt.Errorf("render section %s: %w", s.ID, err)
			}
			for _, n := range nodes {
				sec.AppendChild(n)
			}
		}
		body.AppendChild(sec)
	}

	if err := html.Render(w, root); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

func tableOfContents(chapters []outline.Chapter) *html.Node {
	nav := element(atom.Nav)
	nav.AppendChild(withText(element(atom.H2), "Sommaire"))
	list := element(atom.Ol)
	for _, ch := range chapters {
		li := element(atom.Li)
		li.AppendChild(withText(element(atom.A, "href", "#"+anchor(ch.ID)), ch.Title))
		sub := element(atom.Ol)
		for _, s := range ch.Sections {
			item := element(atom.Li)
			item.AppendChild(withText(element(atom.A, "href", "#"+anchor(s.ID)), s.Title))
			sub.AppendChild(item)
		}
		li.AppendChild(sub)
		list.AppendChild(li)
	}
	nav.AppendChild(list)
	return nav
}

// renderContent converts section Markdown to nodes ready to be appended to
// the body. Undrafted sections get a placeholder paragraph.
func renderContent(s outline.Section) ([]*html.Node, error) {
	content := strings.TrimSpace(s.Content)
	if content == "" {
		return []*html.Node{withText(element(atom.P, "class", "pending"), "Section à rédiger.")}, nil
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(content), &buf); err != nil {
		return nil, err
	}
	parent := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(&buf, parent)
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

func element(a atom.Atom, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: a.String(), DataAtom: a}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

func withText(n *html.Node, text string) *html.Node {
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return n
}

func anchor(id string) string {
	return "s-" + id
}
