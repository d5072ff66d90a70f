package llm

import (
	"fmt"
	"strings"
)

// Brief describes the thesis a student is writing.
type Brief struct {
	Title    string `json:"title"`
	Topic    string `json:"topic"`
	Field    string `json:"field,omitempty"`
	Level    string `json:"level,omitempty"`
	Language string `json:"language,omitempty"`
}

func (b Brief) language() string {
	if b.Language == "" {
		return "français"
	}
	return b.Language
}

const systemPrompt = `Tu es un directeur de mémoire universitaire exigeant et bienveillant. Tu aides des étudiants à structurer et rédiger leur mémoire. Tu écris dans un registre académique, sans inventer de sources précises (auteurs, dates, statistiques) que tu ne peux pas vérifier.`

const outlineInstructions = `Propose le plan détaillé d'un mémoire. Réponds avec un tableau JSON. Chaque élément est un chapitre avec ces champs :

- "title": titre du chapitre, sans numérotation (chaîne, 120 caractères max)
- "sections": liste ordonnée des titres de sections du chapitre (3 à 6 chaînes, sans numérotation)

Règles :
- 4 à 7 chapitres, de l'introduction générale à la conclusion générale
- Chaque chapitre a au moins une section
- Pas de texte en dehors du tableau JSON`

// BuildOutlinePrompt asks for a thesis outline as JSON.
func BuildOutlinePrompt(b Brief) string {
	var sb strings.Builder
	sb.WriteString(outlineInstructions)
	sb.WriteString("\n\n---\n")
	writeBrief(&sb, b)
	sb.WriteString("---\n")
	return sb.String()
}

// SectionBrief carries everything needed to draft one section.
type SectionBrief struct {
	Brief      Brief
	Breadcrumb []string // chapter title, section title
	Outline    string   // compact table of contents of the whole thesis
	Context    string   // previously drafted text, already trimmed to budget
	Words      int      // target length
}

// BuildSectionPrompt creates the prompt for drafting a section in Markdown.
func BuildSectionPrompt(s SectionBrief) string {
	words := s.Words
	if words <= 0 {
		words = 600
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Rédige la section suivante du mémoire en %s, en Markdown, d'environ %d mots.\n", s.Brief.language(), words)
	sb.WriteString("N'inclus pas le titre de la section. Utilise des paragraphes argumentés et, si utile, des sous-titres de niveau 3.\n\n---\n")
	writeBrief(&sb, s.Brief)
	if len(s.Breadcrumb) > 0 {
		sb.WriteString("Section à rédiger : ")
		sb.WriteString(strings.Join(s.Breadcrumb, " > "))
		sb.WriteString("\n")
	}
	if s.Outline != "" {
		sb.WriteString("\nPlan complet :\n")
		sb.WriteString(s.Outline)
		sb.WriteString("\n")
	}
	if s.Context != "" {
		sb.WriteString("\nExtraits déjà rédigés (pour la cohérence, ne pas répéter) :\n")
		sb.WriteString(s.Context)
		sb.WriteString("\n")
	}
	sb.WriteString("---\n")
	return sb.String()
}

func writeBrief(sb *strings.Builder, b Brief) {
	if b.Title != "" {
		fmt.Fprintf(sb, "Titre : %q\n", b.Title)
	}
	if b.Topic != "" {
		fmt.Fprintf(sb, "Sujet : %s\n", b.Topic)
	}
	if b.Field != "" {
		fmt.Fprintf(sb, "Discipline : %s\n", b.Field)
	}
	if b.Level != "" {
		fmt.Fprintf(sb, "Niveau : %s\n", b.Level)
	}
}

// Tool names one of the assistant utilities.
type Tool string

const (
	ToolCV          Tool = "cv"
	ToolOrientation Tool = "orientation"
	ToolJobs        Tool = "jobs"
)

var toolPrompts = map[Tool]string{
	ToolCV: `Tu es un coach carrière. Analyse le CV ci-dessous et donne :
1. trois points forts
2. trois axes d'amélioration concrets
3. une accroche de profil réécrite (3 lignes max)`,
	ToolOrientation: `Tu es conseiller d'orientation. À partir des réponses de l'étudiant ci-dessous, propose trois pistes de formation ou de métier, chacune avec une justification courte et une première action à mener.`,
	ToolJobs: `Tu es spécialiste du recrutement. À partir du profil et de la recherche ci-dessous, propose des intitulés de poste à cibler, des mots-clés de recherche et une stratégie de candidature en cinq étapes.`,
}

// ValidTool reports whether t is a known assistant utility.
func ValidTool(t Tool) bool {
	_, ok := toolPrompts[t]
	return ok
}

// BuildToolPrompt wraps the student's input in the instructions for tool.
func BuildToolPrompt(t Tool, input string) (string, error) {
	instr, ok := toolPrompts[t]
	if !ok {
		return "", fmt.Errorf("unknown tool %q", t)
	}
	return instr + "\n\n---\n" + strings.TrimSpace(input) + "\n---\n", nil
}
