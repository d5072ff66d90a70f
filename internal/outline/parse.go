package outline

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// chapterWord matches a chapter word at the start of a line. Whether it is
	// a whole word is checked by chapterWordEnd.
	chapterWord = regexp.MustCompile(`(?i)^(?:chapitre|partie|module)`)

	// numberedHeading matches "3." or "IV." at the start of a line.
	numberedHeading = regexp.MustCompile(`(?i)^(?:\d+\.|[ivxlcdm]+\.)`)

	// numberPrefix is the numbering dropped from a numbered heading ("2.3.1").
	numberPrefix = regexp.MustCompile(`(?i)^(?:\d+\.(?:\d+\.?)*|[ivxlcdm]+\.)`)

	// chapterNumber is the number that may follow a chapter word. It only
	// counts when a separator, a space or the end of line comes after it.
	chapterNumber = regexp.MustCompile(`(?i)^(?:(\d+)\.?(?:\s*[:\-–]|\s+|$)|([ivxlcdm]+)\.?(?:\s*:|\s*[\-–](?:\s|$)|\s+|$))`)

	romanNumeral = regexp.MustCompile(`(?i)^m{0,4}(?:cm|cd|d?c{0,3})(?:xc|xl|l?x{0,3})(?:ix|iv|v?i{0,3})$`)

	separator    = regexp.MustCompile(`^\s*[:\-–]?\s*`)
	bulletPrefix = regexp.MustCompile(`^[-*•>]\s*`)
)

// chapterWordEnd returns the byte offset just past a leading chapter word,
// or 0 when the line does not start with one. A letter right after the word
// ("Partiellement") rules it out; a digit ("Chapitre1") does not.
func chapterWordEnd(line string) int {
	loc := chapterWord.FindStringIndex(line)
	if loc == nil {
		return 0
	}
	if r, _ := utf8.DecodeRuneInString(line[loc[1]:]); unicode.IsLetter(r) {
		return 0
	}
	return loc[1]
}

type lineKind int

const (
	kindSection lineKind = iota
	kindHeading
)

// classifier inspects a trimmed line and reports a kind when it recognizes it.
type classifier func(line string) (lineKind, bool)

// classifiers are tried in order; the first match wins.
var classifiers = []classifier{
	explicitHeading,
	capsHeading,
}

func explicitHeading(line string) (lineKind, bool) {
	if chapterWordEnd(line) > 0 || numberedHeading.MatchString(line) {
		return kindHeading, true
	}
	return kindSection, false
}

func capsHeading(line string) (lineKind, bool) {
	if utf8.RuneCountInString(line) <= 4 {
		return kindSection, false
	}
	if line != strings.ToUpper(line) {
		return kindSection, false
	}
	if strings.IndexFunc(line, unicode.IsLetter) < 0 {
		return kindSection, false
	}
	return kindHeading, true
}

func classify(line string) lineKind {
	for _, c := range classifiers {
		if kind, ok := c(line); ok {
			return kind
		}
	}
	return kindSection
}

// Parse converts a pasted table of contents into chapters. It never fails:
// blank input yields an empty slice and every returned chapter has at least
// one section. Numbered sub-points such as "1.1" are headings too, so nested
// outlines come back flattened.
func Parse(text string) []Chapter {
	b := NewBuilder()
	for _, raw := range strings.Split(text, "\n") {
		AddLine(b, raw)
	}
	return b.Chapters()
}

// AddLine classifies a single line of outline text and feeds it to b.
func AddLine(b *Builder, raw string) {
	line := strings.TrimSpace(raw)
	if line == "" {
		return
	}
	switch classify(line) {
	case kindHeading:
		b.Chapter(CleanTitle(line))
	default:
		b.Section(CleanItem(line))
	}
}

// CleanTitle strips a leading chapter marker from a heading line. A line made
// only of a marker ("Chapitre 3") is returned unchanged.
func CleanTitle(line string) string {
	line = strings.TrimSpace(line)
	title := strings.TrimSpace(stripMarker(line))
	if title == "" {
		return line
	}
	return title
}

func stripMarker(line string) string {
	if end := chapterWordEnd(line); end > 0 {
		rest := strings.TrimLeftFunc(line[end:], unicode.IsSpace)
		if m := chapterNumber.FindStringSubmatch(rest); m != nil && (m[1] != "" || romanNumeral.MatchString(m[2])) {
			rest = rest[len(m[0]):]
		}
		return separator.ReplaceAllString(rest, "")
	}
	if loc := numberPrefix.FindStringIndex(line); loc != nil {
		return separator.ReplaceAllString(line[loc[1]:], "")
	}
	return line
}

// CleanItem strips a leading bullet marker from a section line.
func CleanItem(line string) string {
	return strings.TrimSpace(bulletPrefix.ReplaceAllString(strings.TrimSpace(line), ""))
}
