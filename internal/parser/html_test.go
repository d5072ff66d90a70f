package parser

import (
	"strings"
	"testing"
)

func TestHTMLParser_Headings(t *testing.T) {
	input := `<html><head><title>Plan</title><style>h1{}</style></head><body>
<nav>Menu</nav>
<h1>Plan détaillé</h1>
<h2>Chapitre 1 : Introduction</h2>
<ul><li>Contexte<ul><li>Enjeux</li></ul></li><li>Problématique</li></ul>
<h2>II. Terrain</h2>
<p>Entretiens<br>Questionnaires</p>
<h3>Limites</h3>
<script>var x = 1;</script>
</body></html>`
	p := &HTMLParser{}
	got, err := p.Parse(strings.NewReader(input), "plan.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertOutline(t, got, []string{
		"Introduction: Contexte | Enjeux | Problématique",
		"Terrain: Entretiens | Questionnaires | Limites",
	})
}

func TestHTMLParser_TopLevelHeadingsOpenChapters(t *testing.T) {
	input := `<body><h1>Partie 1</h1><h2>Contexte</h2><h1>Partie 2</h1><p>Synthèse</p></body>`
	p := &HTMLParser{}
	got, err := p.Parse(strings.NewReader(input), "plan.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertOutline(t, got, []string{
		"Partie 1: Contexte",
		"Partie 2: Synthèse",
	})
}

func TestHTMLParser_NoHeadings(t *testing.T) {
	input := `<body><div>PREMIERE PARTIE</div><div>Point un</div><ul><li>Point deux</li></ul></body>`
	p := &HTMLParser{}
	got, err := p.Parse(strings.NewReader(input), "plan.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertOutline(t, got, []string{
		"PREMIERE PARTIE: Point un | Point deux",
	})
}
