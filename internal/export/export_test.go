package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"

	"github.com/dgallion1/memoire/internal/outline"
	"github.com/dgallion1/memoire/internal/parser"
	"github.com/dgallion1/memoire/internal/project"
)

func sampleProject() *project.Project {
	p := project.New("L'économie circulaire à Lyon", "Réemploi et collectivités", []outline.Chapter{
		{ID: "c1", Title: "Introduction", Sections: []outline.Section{
			{ID: "s1", Title: "Contexte", Content: "Le **réemploi** progresse.\n\n- collecte\n- tri", Status: outline.StatusCompleted},
			{ID: "s2", Title: "Problématique", Status: outline.StatusPending},
		}},
		{ID: "c2", Title: "Terrain <enquête>", Sections: []outline.Section{
			{ID: "s3", Title: "Entretiens", Content: "### Méthode\n\nVingt entretiens.", Status: outline.StatusCompleted},
		}},
	})
	p.Language = "fr"
	return p
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"html", FormatHTML, false},
		{"", FormatHTML, false},
		{"MD", FormatMarkdown, false},
		{"markdown", FormatMarkdown, false},
		{"docx", FormatDOCX, false},
		{"json", FormatJSON, false},
		{"yml", FormatYAML, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"L'économie circulaire à Lyon": "l-economie-circulaire-a-lyon",
		"  Mémoire -- M2  ":            "memoire-m2",
		"!!!":                          "",
		"Ça, c'est ÉTÉ":                "ca-c-est-ete",
	}
	for in, want := range tests {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFilename(t *testing.T) {
	p := sampleProject()
	if got := Filename(p, FormatDOCX); got != "l-economie-circulaire-a-lyon.docx" {
		t.Errorf("unexpected filename %q", got)
	}
	p.Title = "???"
	if got := Filename(p, FormatMarkdown); got != "memoire.md" {
		t.Errorf("unexpected fallback filename %q", got)
	}
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMarkdown(&buf, sampleProject()); err != nil {
		t.Fatalf("WriteMarkdown: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"---\ntitle: L'économie circulaire à Lyon\n",
		"lang: fr\n---\n",
		"\n# Introduction\n",
		"\n## Contexte\n\nLe **réemploi** progresse.",
		"\n## Problématique\n",
		"\n# Terrain <enquête>\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q\n%s", want, out)
		}
	}
}

func TestWriteMarkdown_ReimportsAsSameOutline(t *testing.T) {
	p := sampleProject()
	for i := range p.Chapters {
		for j := range p.Chapters[i].Sections {
			p.Chapters[i].Sections[j].Content = ""
		}
	}

	var buf bytes.Buffer
	if err := WriteMarkdown(&buf, p); err != nil {
		t.Fatalf("WriteMarkdown: %v", err)
	}
	parts := strings.SplitN(buf.String(), "---\n", 3)
	if len(parts) != 3 {
		t.Fatalf("expected front matter, got:\n%s", buf.String())
	}
	got, err := (&parser.MarkdownParser{}).Parse(strings.NewReader(parts[2]), "export.md")
	if err != nil {
		t.Fatalf("reimport: %v", err)
	}
	want := []string{"Introduction: Contexte, Problématique", "Terrain <enquête>: Entretiens"}
	var titles []string
	for _, ch := range got {
		var secs []string
		for _, s := range ch.Sections {
			secs = append(secs, s.Title)
		}
		titles = append(titles, ch.Title+": "+strings.Join(secs, ", "))
	}
	if diff := cmp.Diff(want, titles); diff != "" {
		t.Errorf("chapter titles mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHTML(&buf, sampleProject()); err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "<!DOCTYPE html>") {
		t.Errorf("expected doctype, got %q", out[:min(40, len(out))])
	}
	for _, want := range []string{
		`<html lang="fr">`,
		"<title>L&#39;économie circulaire à Lyon</title>",
		"<strong>réemploi</strong>",
		"<li>collecte</li>",
		`<h2>Terrain &lt;enquête&gt;</h2>`,
		`<p class="pending">Section à rédiger.</p>`,
		`<a href="#s-s3">Entretiens</a>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("html missing %q", want)
		}
	}

	// The output must be well-formed enough to parse back with three h3 titles.
	doc, err := html.Parse(strings.NewReader(out))
	if err != nil {
		t.Fatalf("parse rendered html: %v", err)
	}
	var h3 int
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "h3" {
			h3++
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	// Three section titles plus the "Méthode" heading inside content.
	if h3 != 4 {
		t.Errorf("expected 4 h3 elements, got %d", h3)
	}
}

func TestWriteDOCX_ReimportsAsSameOutline(t *testing.T) {
	p := sampleProject()
	var buf bytes.Buffer
	if err := WriteDOCX(&buf, p); err != nil {
		t.Fatalf("WriteDOCX: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected non-empty docx")
	}

	got, err := (&parser.DOCXParser{}).Parse(bytes.NewReader(buf.Bytes()), "export.docx")
	if err != nil {
		t.Fatalf("reimport docx: %v", err)
	}
	var chapters []string
	for _, ch := range got {
		chapters = append(chapters, ch.Title)
	}
	want := []string{"Introduction", "Terrain <enquête>"}
	if diff := cmp.Diff(want, chapters); diff != "" {
		t.Errorf("chapter titles mismatch (-want +got):\n%s", diff)
	}
}

func TestWrite_JSONAndYAML(t *testing.T) {
	p := sampleProject()

	var jbuf bytes.Buffer
	if err := Write(&jbuf, p, FormatJSON); err != nil {
		t.Fatalf("Write json: %v", err)
	}
	var fromJSON project.Project
	if err := json.Unmarshal(jbuf.Bytes(), &fromJSON); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if diff := cmp.Diff(p.Chapters, fromJSON.Chapters); diff != "" {
		t.Errorf("json chapters mismatch (-want +got):\n%s", diff)
	}

	var ybuf bytes.Buffer
	if err := Write(&ybuf, p, FormatYAML); err != nil {
		t.Fatalf("Write yaml: %v", err)
	}
	var fromYAML project.Project
	if err := yaml.Unmarshal(ybuf.Bytes(), &fromYAML); err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	if diff := cmp.Diff(p.Chapters, fromYAML.Chapters); diff != "" {
		t.Errorf("yaml chapters mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(ybuf.String(), "status: pending") {
		t.Errorf("expected yaml to carry section status:\n%s", ybuf.String())
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, sampleProject(), Format("rtf")); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestContentHash_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHash(data)
	h2 := ContentHash(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
	if ContentHash([]byte("aaa")) == ContentHash([]byte("bbb")) {
		t.Error("expected different hashes for different inputs")
	}
}
