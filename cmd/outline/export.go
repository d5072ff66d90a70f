package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/memoire/internal/export"
	"github.com/dgallion1/memoire/internal/parser"
	"github.com/dgallion1/memoire/internal/project"
)

func newExportCmd() *cobra.Command {
	var (
		title  string
		topic  string
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Turn an outline into a thesis skeleton document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			chapters, err := readOutline(cmd.InOrStdin(), args, parser.Options{PDFFallbackPdftotext: true})
			if err != nil {
				return err
			}
			if strings.TrimSpace(title) == "" {
				title = "Mémoire"
			}
			p := project.New(title, topic, chapters)

			if output == "" || output == "-" {
				return export.Write(cmd.OutOrStdout(), p, f)
			}
			out, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			if err := export.Write(out, p, f); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return fmt.Errorf("close %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "thesis title")
	cmd.Flags().StringVar(&topic, "topic", "", "thesis topic")
	cmd.Flags().StringVarP(&format, "format", "f", "md", "html, md, docx, json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout when empty)")
	return cmd
}
