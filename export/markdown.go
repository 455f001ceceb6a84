package export

import (
	"strings"

	"mindmap/diagram"
)

// MarkdownExporter writes the forest as nested bullet lists. Edges that do
// not form the tree are dropped.
type MarkdownExporter struct{}

// NewMarkdownExporter creates a new Markdown exporter
func NewMarkdownExporter() *MarkdownExporter {
	return &MarkdownExporter{}
}

// Export converts the document to a Markdown outline
func (e *MarkdownExporter) Export(doc diagram.Document) (string, error) {
	var sb strings.Builder
	for _, entry := range Outline(doc) {
		sb.WriteString(strings.Repeat("  ", entry.Depth))
		sb.WriteString("- ")
		label := singleLine(entry.Node.Label)
		if entry.Node.Bold && label != "" {
			label = "**" + label + "**"
		}
		sb.WriteString(label)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// GetFileExtension returns the recommended file extension
func (e *MarkdownExporter) GetFileExtension() string {
	return ".md"
}

// GetFormatName returns the format name
func (e *MarkdownExporter) GetFormatName() string {
	return "Markdown"
}
