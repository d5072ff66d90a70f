package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/memoire/internal/outline"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML outlines. The shallowest heading level opens
// chapters; deeper headings, list items and paragraphs become sections. A
// single h1 above deeper headings is the document title and is skipped.
// Pages without headings fall back to the text heuristics over their visible
// lines.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) ([]outline.Chapter, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	root := findBody(doc)
	if root == nil {
		root = doc
	}

	counts := headingCounts(root)
	top := 0
	for level := 1; level <= 6; level++ {
		if counts[level] > 0 {
			top = level
			break
		}
	}
	if top == 0 {
		return outline.Parse(visibleLines(root)), nil
	}
	skipTitle := top == 1 && counts[1] == 1 && len(counts) > 1
	if skipTitle {
		top = 7
		for level := 2; level <= 6; level++ {
			if counts[level] > 0 {
				top = level
				break
			}
		}
	}

	b := outline.NewBuilder()
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				if skipTitle && level == 1 {
					return
				}
				title := textContent(n)
				if isChapterLevel(level, top) {
					b.Chapter(outline.CleanTitle(title))
				} else {
					b.Section(outline.CleanItem(title))
				}
				return
			}

			switch n.Data {
			case "script", "style", "nav", "footer", "header":
				return
			case "li":
				// Nested lists are flattened; text of this item excludes sublists.
				b.Section(outline.CleanItem(ownText(n)))
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol") {
						walk(c)
					}
				}
				return
			case "p", "td", "blockquote":
				addTextLines(b, textContent(n))
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return b.Chapters(), nil
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

// headingCounts counts heading elements per level below n, ignoring
// navigation chrome.
func headingCounts(n *html.Node) map[int]int {
	counts := make(map[int]int)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "nav", "footer", "header":
				return
			}
			if level := headingLevel(n.Data); level > 0 {
				counts[level]++
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return counts
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && n.Data == "br" {
			buf.WriteString("\n")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

// ownText is the text of n without nested lists.
func ownText(n *html.Node) string {
	var buf strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol") {
			continue
		}
		if c.Type == html.TextNode {
			buf.WriteString(c.Data)
		} else {
			buf.WriteString(textContent(c))
		}
	}
	return strings.Join(strings.Fields(buf.String()), " ")
}

// visibleLines renders block-level text one line per block.
func visibleLines(n *html.Node) string {
	var lines []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "nav", "footer", "header":
				return
			case "li", "p", "div", "td", "blockquote", "pre":
				if !hasBlockChild(n) {
					lines = append(lines, textContent(n))
					return
				}
			}
		}
		if n.Type == html.TextNode && n.Parent != nil && n.Parent.Data == "body" {
			lines = append(lines, n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(lines, "\n")
}

func hasBlockChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "li", "p", "div", "ul", "ol", "table", "blockquote", "pre":
			return true
		}
	}
	return false
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
