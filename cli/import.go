package cli

import (
	"fmt"
	"os"

	"mindmap/diagram"
	"mindmap/importer"
	"mindmap/markdown"
	"mindmap/persist"

	"github.com/spf13/cobra"
)

func importCmd() *cobra.Command {
	var (
		format string
		force  bool
		block  int
	)

	cmd := &cobra.Command{
		Use:   "import <source> [file]",
		Short: "Create a mind map from a Mermaid or Graphviz flowchart",
		Long: `Create a mind map from a Mermaid or Graphviz flowchart.

The format is detected from the content unless --format is given. A
Markdown source is searched for fenced mermaid or dot blocks. The first
edge into a node makes its source the parent, and nodes are placed the way
the editor places new children.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, args[1:])
			if err != nil {
				return err
			}
			closer, err := setupLogging(cfg, true)
			if err != nil {
				return err
			}
			defer closer.Close()

			content, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			source := string(content)
			if isMarkdown(args[0]) {
				b, err := pickBlock(markdown.NewScanner(source).Blocks(), block, args[0])
				if err != nil {
					return err
				}
				source = b.Content
				if format == "" {
					format = b.Lang
				}
			}

			registry := importer.NewImporterRegistry()
			var doc diagram.Document
			if format != "" {
				doc, err = registry.ImportWithFormat(source, format)
			} else {
				doc, err = registry.Import(source)
			}
			if err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}

			if _, err := os.Stat(cfg.File); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to replace it)", cfg.File)
			}
			data, err := persist.Encode(doc)
			if err != nil {
				return err
			}
			if err := persist.NewFileStore(cfg.File).Save(data); err != nil {
				return err
			}
			Good.Fprintf(cmd.ErrOrStderr(), "Imported %d nodes and %d edges into %s\n", len(doc.Nodes), len(doc.Edges), cfg.File)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "F", "", "Source format: mermaid or graphviz (default: detect)")
	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing document")
	cmd.Flags().IntVar(&block, "block", 0, "Diagram block of a Markdown source, counting from 1")
	return cmd
}
