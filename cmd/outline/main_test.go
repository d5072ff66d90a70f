package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/memoire/internal/outline"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParse_StdinTree(t *testing.T) {
	out, err := run(t, "Chapitre 1 : Introduction\n- Contexte\n- Enjeux\nCONCLUSION GENERALE\n", "parse")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := "1. Introduction\n" +
		"   ├─ Contexte\n" +
		"   └─ Enjeux\n" +
		"2. CONCLUSION GENERALE\n" +
		"   └─ Introduction du chapitre\n" +
		"2 chapters, 3 sections\n"
	if out != want {
		t.Errorf("unexpected tree:\n%s\nwant:\n%s", out, want)
	}
}

func TestParse_FileJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.md")
	if err := os.WriteFile(path, []byte("# Cadre\n\n- Concepts\n- Méthode\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	out, err := run(t, "", "parse", "--format", "json", path)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var chapters []outline.Chapter
	if err := json.Unmarshal([]byte(out), &chapters); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(chapters) != 1 || chapters[0].Title != "Cadre" || len(chapters[0].Sections) != 2 {
		t.Errorf("unexpected chapters %+v", chapters)
	}
}

func TestParse_Table(t *testing.T) {
	out, err := run(t, "PARTIE 1 : CADRE\n- Concepts\n", "parse", "-f", "table")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	for _, want := range []string{"Chapter", "CADRE", "Concepts", "pending", "1.1", "1 sections"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown format", []string{"parse", "--format", "xml"}},
		{"unsupported extension", []string{"parse", "plan.odt"}},
		{"missing file", []string{"parse", filepath.Join(t.TempDir(), "absent.txt")}},
		{"too many args", []string{"parse", "a.txt", "b.txt"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, "Intro", tt.args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestExport_Markdown(t *testing.T) {
	out, err := run(t, "I. Terrain\n* Entretiens\n", "export", "--title", "Vélo et ville")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	for _, want := range []string{"title: Vélo et ville", "# Terrain", "## Entretiens"} {
		if !strings.Contains(out, want) {
			t.Errorf("export output missing %q:\n%s", want, out)
		}
	}
}

func TestExport_DOCXFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.docx")
	if _, err := run(t, "Chapitre 1 : Introduction\nContexte\n", "export", "-f", "docx", "-o", path); err != nil {
		t.Fatalf("export: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat output: %v", err)
	}
	if info.Size() == 0 {
		t.Error("expected a non-empty docx file")
	}
}

func TestExport_BadFormat(t *testing.T) {
	if _, err := run(t, "Intro", "export", "--format", "rtf"); err == nil {
		t.Error("expected an error for unknown format")
	}
}
