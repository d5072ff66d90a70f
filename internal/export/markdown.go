package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/memoire/internal/project"
)

type frontMatter struct {
	Title    string `yaml:"title"`
	Topic    string `yaml:"topic,omitempty"`
	Field    string `yaml:"field,omitempty"`
	Level    string `yaml:"level,omitempty"`
	Language string `yaml:"lang,omitempty"`
}

// WriteMarkdown writes YAML front matter, then one "#" heading per chapter
// and one "##" heading per section followed by its content.
func WriteMarkdown(w io.Writer, p *project.Project) error {
	bw := bufio.NewWriter(w)

	fm, err := yaml.Marshal(frontMatter{
		Title:    p.Title,
		Topic:    p.Topic,
		Field:    p.Field,
		Level:    p.Level,
		Language: p.Language,
	})
	if err != nil {
		return fmt.Errorf("marshal front matter: %w", err)
	}
	bw.WriteString("---\n")
	bw.Write(fm)
	bw.WriteString("---\n")

	for _, ch := range p.Chapters {
		fmt.Fprintf(bw, "\n# %s\n", ch.Title)
		for _, sec := range ch.Sections {
			fmt.Fprintf(bw, "\n## %s\n", sec.Title)
			if content := strings.TrimSpace(sec.Content); content != "" {
				bw.WriteString("\n")
				bw.WriteString(content)
				bw.WriteString("\n")
			}
		}
	}
	return bw.Flush()
}
