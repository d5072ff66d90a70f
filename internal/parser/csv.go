package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/memoire/internal/outline"
)

// CSVParser handles two-column "chapter,section" spreadsheets. A row with an
// empty chapter cell adds its section to the previous chapter.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) ([]outline.Chapter, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) > 0 && isHeaderRow(records[0]) {
		records = records[1:]
	}

	b := outline.NewBuilder()
	last := ""
	for _, row := range records {
		if len(row) == 0 {
			continue
		}
		chapter := strings.TrimSpace(row[0])
		if chapter != "" && chapter != last {
			b.Chapter(outline.CleanTitle(chapter))
			last = chapter
		}
		if len(row) > 1 {
			b.Section(outline.CleanItem(row[1]))
		}
	}
	return b.Chapters(), nil
}

func isHeaderRow(row []string) bool {
	switch strings.ToLower(strings.TrimSpace(row[0])) {
	case "chapter", "chapitre", "partie":
		return true
	}
	return false
}
