package parser

import (
	"bytes"
	"testing"

	"github.com/fumiama/go-docx"
)

func TestDOCXParser_StylesAndText(t *testing.T) {
	w := docx.New().WithDefaultTheme()
	w.AddParagraph().Style("Title").AddText("PLAN DU MÉMOIRE")
	w.AddParagraph().Style("Heading1").AddText("Chapitre 1 : Introduction")
	w.AddParagraph().AddText("- Contexte")
	w.AddParagraph().Style("Heading3").AddText("Problématique")
	w.AddParagraph().Style("Title").AddText("MÉMOIRE DE MASTER")
	w.AddParagraph().Style("Titre1").AddText("Méthodologie")
	w.AddParagraph().AddText("3. Résultats")
	w.AddParagraph().AddText("Analyse statistique")

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		t.Fatalf("write docx: %v", err)
	}

	p := &DOCXParser{}
	got, err := p.Parse(&buf, "plan.docx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertOutline(t, got, []string{
		"Introduction: Contexte | Problématique",
		"Méthodologie: Introduction du chapitre",
		"Résultats: Analyse statistique",
	})
}

func TestDOCXParser_InvalidFile(t *testing.T) {
	p := &DOCXParser{}
	if _, err := p.Parse(bytes.NewReader([]byte("not a zip")), "bad.docx"); err == nil {
		t.Error("expected error for invalid docx")
	}
}
