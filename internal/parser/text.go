package parser

import (
	"bufio"
	"io"

	"github.com/dgallion1/memoire/internal/outline"
)

// TextParser handles plain text tables of contents.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) ([]outline.Chapter, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	b := outline.NewBuilder()
	for scanner.Scan() {
		outline.AddLine(b, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return b.Chapters(), nil
}
