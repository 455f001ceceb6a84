package cli

import (
	"fmt"
	"io"
	"strings"

	"mindmap/diagram"
	"mindmap/export"
	"mindmap/persist"

	"github.com/spf13/cobra"
)

func outlineCmd() *cobra.Command {
	var showIDs bool

	cmd := &cobra.Command{
		Use:   "outline [file]",
		Short: "Print the mind map as an indented tree",
		Args:  cobra.MaximumNArgs(1),
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
			writeOutline(cmd.OutOrStdout(), doc, showIDs)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showIDs, "ids", false, "Show node ids")
	return cmd
}

// writeOutline prints every tree of the forest, roots in document order.
func writeOutline(w io.Writer, doc diagram.Document, showIDs bool) {
	for _, entry := range export.Outline(doc) {
		label := strings.Join(strings.Fields(entry.Node.Label), " ")
		if label == "" {
			label = Subtle.Sprint("(empty)")
		} else {
			label = depthColor(entry.Depth, entry.Node.Bold).Sprint(label)
		}

		line := strings.Repeat("  ", entry.Depth)
		if entry.Depth > 0 {
			line += Subtle.Sprint("- ")
		}
		line += label
		if showIDs {
			line += " " + Subtle.Sprintf("#%d", entry.Node.ID)
		}
		fmt.Fprintln(w, line)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, Subtle.Sprintf("%d nodes, %d edges", len(doc.Nodes), len(doc.Edges)))
}
