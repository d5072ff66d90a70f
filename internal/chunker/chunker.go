// Package chunker splits drafted thesis text into token-bounded pieces.
package chunker

import (
	"strings"

	"github.com/dgallion1/memoire/internal/outline"
)

// Config controls chunking behavior.
type Config struct {
	ChunkSize    int // Target chunk size in tokens.
	ChunkOverlap int // Overlap between consecutive chunks in tokens.
	MinChunk     int // Minimum chunk size to emit.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    1500,
		ChunkOverlap: 200,
		MinChunk:     100,
	}
}

// Chunk is a sized slice of drafted text with its place in the outline.
type Chunk struct {
	Text       string   `json:"text"`
	Index      int      `json:"index"`
	ChapterID  string   `json:"chapter_id"`
	SectionID  string   `json:"section_id"`
	Breadcrumb []string `json:"breadcrumb"` // chapter title, section title
}

// ChunkChapters walks the outline in document order and splits every drafted
// section into chunks. Sections without content produce nothing.
func ChunkChapters(chapters []outline.Chapter, cfg Config) []Chunk {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1500
	}
	if cfg.ChunkOverlap <= 0 {
		cfg.ChunkOverlap = 200
	}
	if cfg.MinChunk <= 0 {
		cfg.MinChunk = 100
	}

	var chunks []Chunk
	for _, ch := range chapters {
		for _, sec := range ch.Sections {
			text := strings.TrimSpace(sec.Content)
			if text == "" {
				continue
			}
			var parts []string
			if EstimateTokens(text) <= cfg.ChunkSize {
				parts = []string{text}
			} else {
				parts = splitText(text, cfg.ChunkSize, cfg.ChunkOverlap)
			}
			for _, part := range parts {
				if EstimateTokens(part) < cfg.MinChunk {
					continue
				}
				chunks = append(chunks, Chunk{
					Text:       part,
					Index:      len(chunks),
					ChapterID:  ch.ID,
					SectionID:  sec.ID,
					Breadcrumb: []string{ch.Title, sec.Title},
				})
			}
		}
	}
	return chunks
}

// Window returns the text preceding sectionID, newest last, trimmed so that
// it fits in budget tokens. Chunks of sectionID itself and after it are ignored.
func Window(chapters []outline.Chapter, sectionID string, budget int) string {
	if budget <= 0 {
		return ""
	}
	var before []Chunk
	cfg := Config{ChunkSize: budget, ChunkOverlap: budget / 10, MinChunk: 1}
outer:
	for _, ch := range chapters {
		for _, sec := range ch.Sections {
			if sec.ID == sectionID {
				break outer
			}
			before = append(before, ChunkChapters([]outline.Chapter{{ID: ch.ID, Title: ch.Title, Sections: []outline.Section{sec}}}, cfg)...)
		}
	}

	var picked []string
	used := 0
	for i := len(before) - 1; i >= 0; i-- {
		c := before[i]
		entry := "[" + strings.Join(c.Breadcrumb, " > ") + "]\n" + c.Text
		tokens := EstimateTokens(entry)
		if used+tokens > budget {
			if used == 0 {
				picked = append(picked, tail(entry, budget))
			}
			break
		}
		picked = append(picked, entry)
		used += tokens
	}
	for i, j := 0, len(picked)-1; i < j; i, j = i+1, j-1 {
		picked[i], picked[j] = picked[j], picked[i]
	}
	return strings.Join(picked, "\n\n")
}

// tail keeps roughly the last budget tokens of text.
func tail(text string, budget int) string {
	words := strings.Fields(text)
	n := int(float64(budget) / 1.33)
	if n <= 0 {
		return ""
	}
	if len(words) <= n {
		return text
	}
	return strings.Join(words[len(words)-n:], " ")
}

// splitText breaks text into chunks of approximately targetTokens, with overlap.
func splitText(text string, targetTokens, overlapTokens int) []string {
	// Split by paragraphs first.
	paragraphs := splitByParagraphs(text)

	var result []string
	var current strings.Builder
	currentTokens := 0

	for _, para := range paragraphs {
		paraTokens := EstimateTokens(para)

		// If a single paragraph exceeds the target, split it further.
		if paraTokens > targetTokens {
			// Flush current buffer.
			if currentTokens > 0 {
				result = append(result, current.String())
				current.Reset()
				currentTokens = 0
			}
			// Split the large paragraph by sentences.
			subParts := splitBySentences(para, targetTokens, overlapTokens)
			result = append(result, subParts...)
			continue
		}

		// Would adding this paragraph exceed the target?
		if currentTokens+paraTokens > targetTokens && currentTokens > 0 {
			result = append(result, current.String())

			// Start next chunk with overlap from end of current.
			overlap := getOverlapText(current.String(), overlapTokens)
			current.Reset()
			currentTokens = 0
			if overlap != "" {
				current.WriteString(overlap)
				currentTokens = EstimateTokens(overlap)
			}
		}

		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
		currentTokens += paraTokens
	}

	if currentTokens > 0 {
		result = append(result, current.String())
	}

	return result
}

// splitByParagraphs splits on double-newlines.
func splitByParagraphs(text string) []string {
	parts := strings.Split(text, "\n\n")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// splitBySentences breaks a large paragraph into sentence-based chunks.
func splitBySentences(text string, targetTokens, overlapTokens int) []string {
	sentences := splitSentences(text)

	var result []string
	var current strings.Builder
	currentTokens := 0

	for _, sent := range sentences {
		sentTokens := EstimateTokens(sent)

		if currentTokens+sentTokens > targetTokens && currentTokens > 0 {
			result = append(result, current.String())
			overlap := getOverlapText(current.String(), overlapTokens)
			current.Reset()
			currentTokens = 0
			if overlap != "" {
				current.WriteString(overlap)
				currentTokens = EstimateTokens(overlap)
			}
		}

		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sent)
		currentTokens += sentTokens
	}

	if currentTokens > 0 {
		result = append(result, current.String())
	}

	return result
}

// splitSentences does basic sentence splitting.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && text[i+1] == ' ' {
			sentences = append(sentences, strings.TrimSpace(current.String()))
			current.Reset()
		}
	}
	if current.Len() > 0 {
		sentences = append(sentences, strings.TrimSpace(current.String()))
	}

	return sentences
}

// getOverlapText extracts the last N tokens worth of text for overlap.
func getOverlapText(text string, targetTokens int) string {
	words := strings.Fields(text)
	// Approximate: 1.33 tokens per word.
	targetWords := int(float64(targetTokens) / 1.33)
	if targetWords <= 0 || len(words) <= targetWords {
		return ""
	}
	return strings.Join(words[len(words)-targetWords:], " ")
}
