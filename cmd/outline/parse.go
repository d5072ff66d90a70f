package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/dgallion1/memoire/internal/outline"
	"github.com/dgallion1/memoire/internal/parser"
)

func newParseCmd() *cobra.Command {
	var format string
	var pdftotext bool
	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse an outline file, or stdin, into chapters and sections",
		Long: `Parses a table of contents into chapters and sections.

The file type is picked from its extension (.txt, .md, .html, .docx, .pdf,
.csv). Without a file, plain text is read from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chapters, err := readOutline(cmd.InOrStdin(), args, parser.Options{PDFFallbackPdftotext: pdftotext})
			if err != nil {
				return err
			}
			switch format {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(chapters)
			case "tree":
				writeTree(cmd.OutOrStdout(), chapters)
				return nil
			case "table":
				writeTable(cmd.OutOrStdout(), chapters)
				return nil
			default:
				return fmt.Errorf("unknown --format %q (json, tree or table)", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "tree", "output format: json, tree or table")
	cmd.Flags().BoolVar(&pdftotext, "pdftotext", true, "fall back to pdftotext for PDFs with no text layer")
	return cmd
}

// readOutline parses the named file, or stdin as plain text when no file is given.
func readOutline(stdin io.Reader, args []string, opts parser.Options) ([]outline.Chapter, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return outline.Parse(string(data)), nil
	}

	path := args[0]
	p, err := parser.ForFile(path, opts)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	chapters, err := p.Parse(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return chapters, nil
}

func writeTree(w io.Writer, chapters []outline.Chapter) {
	for i, ch := range chapters {
		fmt.Fprintf(w, "%d. %s\n", i+1, ch.Title)
		for j, sec := range ch.Sections {
			branch := "├─"
			if j == len(ch.Sections)-1 {
				branch = "└─"
			}
			fmt.Fprintf(w, "   %s %s\n", branch, sec.Title)
		}
	}
	fmt.Fprintf(w, "%d chapters, %d sections\n", len(chapters), outline.CountSections(chapters))
}

// writeTable prints one row per section with its chapter and status.
func writeTable(w io.Writer, chapters []outline.Chapter) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Chapter", "Section", "Status"})
	for i, ch := range chapters {
		for j, sec := range ch.Sections {
			num := fmt.Sprintf("%d.%d", i+1, j+1)
			t.AppendRow(table.Row{num, ch.Title, sec.Title, sec.Status})
		}
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d chapters", len(chapters)), fmt.Sprintf("%d sections", outline.CountSections(chapters)), ""})
	t.Render()
}
