package outline

// Builder accumulates chapters and sections in document order. The zero value
// is not usable; call NewBuilder.
type Builder struct {
	chapters []Chapter
	current  int
}

func NewBuilder() *Builder {
	return &Builder{current: -1}
}

// Chapter opens a new chapter; subsequent sections attach to it.
func (b *Builder) Chapter(title string) {
	b.chapters = append(b.chapters, Chapter{
		ID:    NewID(),
		Title: title,
	})
	b.current = len(b.chapters) - 1
}

// Section appends a section to the current chapter, opening the default
// chapter first when none is open. Empty titles are ignored.
func (b *Builder) Section(title string) {
	if title == "" {
		return
	}
	if b.current < 0 {
		b.Chapter(DefaultChapterTitle)
	}
	ch := &b.chapters[b.current]
	ch.Sections = append(ch.Sections, NewSection(title))
}

// HasChapter reports whether a chapter is currently open.
func (b *Builder) HasChapter() bool {
	return b.current >= 0
}

// Chapters finishes the tree. Chapters with no sections receive a placeholder
// section. The result is never nil.
func (b *Builder) Chapters() []Chapter {
	out := make([]Chapter, len(b.chapters))
	for i, ch := range b.chapters {
		if len(ch.Sections) == 0 {
			ch.Sections = []Section{NewSection(PlaceholderSectionTitle)}
		}
		out[i] = ch
	}
	return out
}
