package cli

import (
	"fmt"
	"os"

	"mindmap/export"
	"mindmap/markdown"
	"mindmap/persist"

	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	var (
		format string
		output string
		into   string
		block  int
	)

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Convert the mind map to another text format",
		Long: "Convert the mind map to another text format.\n\nFormats: " + export.FormatNames() +
			"\n\nWith --into the mind map replaces a fenced diagram block of a Markdown\n" +
			"file, written in the block's language unless --format is given.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, args)
			if err != nil {
				return err
			}
			closer, err := setupLogging(cfg, true)
			if err != nil {
				return err
			}
			defer closer.Close()

			doc, loaded := persist.LoadDocument(persist.NewFileStore(cfg.File))
			if !loaded {
				return fmt.Errorf("no mind map in %s", cfg.File)
			}

			var (
				scanner *markdown.Scanner
				target  markdown.Block
			)
			if into != "" {
				data, err := os.ReadFile(into)
				if err != nil {
					return err
				}
				scanner = markdown.NewScanner(string(data))
				if target, err = pickBlock(scanner.Blocks(), block, into); err != nil {
					return err
				}
				if !cmd.Flags().Changed("format") {
					format = target.Lang
				}
			}

			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			exporter, err := export.NewExporter(f)
			if err != nil {
				return err
			}
			text, err := exporter.Export(doc)
			if err != nil {
				return fmt.Errorf("export to %s: %w", exporter.GetFormatName(), err)
			}

			if scanner != nil {
				updated, err := scanner.Replace(target, text)
				if err != nil {
					return err
				}
				if err := os.WriteFile(into, []byte(updated), 0o644); err != nil {
					return err
				}
				Good.Fprintf(cmd.ErrOrStderr(), "Updated block at line %d of %s\n", target.StartLine+1, into)
				return nil
			}

			if output == "" || output == "-" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), text)
				return err
			}
			if err := os.WriteFile(output, []byte(text), 0o644); err != nil {
				return err
			}
			Good.Fprintf(cmd.ErrOrStderr(), "Exported %s to %s\n", exporter.GetFormatName(), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "F", string(export.FormatMermaid), "Output format")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().StringVar(&into, "into", "", "Markdown file whose diagram block is replaced")
	cmd.Flags().IntVar(&block, "block", 0, "Diagram block of the Markdown file, counting from 1")
	return cmd
}
