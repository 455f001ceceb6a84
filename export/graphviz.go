package export

import (
	"fmt"
	"strings"

	"mindmap/diagram"
)

// GraphvizExporter exports mind maps to Graphviz DOT format
type GraphvizExporter struct {
	// RankDir controls the layout direction: LR, TB, RL or BT
	RankDir string
}

// NewGraphvizExporter creates a new Graphviz exporter
func NewGraphvizExporter() *GraphvizExporter {
	return &GraphvizExporter{RankDir: "LR"}
}

// Export converts a document to DOT format
func (e *GraphvizExporter) Export(doc diagram.Document) (string, error) {
	var sb strings.Builder

	sb.WriteString("digraph G {\n")
	fmt.Fprintf(&sb, "    rankdir=%s;\n", e.RankDir)
	sb.WriteString("    node [shape=box, style=rounded];\n")

	if len(doc.Nodes) > 0 {
		sb.WriteString("\n")
	}
	for _, n := range doc.Nodes {
		fmt.Fprintf(&sb, "    %s [%s];\n", nodeName(n.ID), e.getNodeAttributes(n))
	}

	if len(doc.Edges) > 0 {
		sb.WriteString("\n")
	}
	for _, edge := range doc.Edges {
		line := fmt.Sprintf("    %s -> %s", nodeName(edge.Source), nodeName(edge.Target))
		if attrs := e.getEdgeAttributes(edge); attrs != "" {
			line += " [" + attrs + "]"
		}
		sb.WriteString(line + ";\n")
	}

	sb.WriteString("}\n")
	return sb.String(), nil
}

// getNodeAttributes builds DOT attributes from the node's style
func (e *GraphvizExporter) getNodeAttributes(n diagram.Node) string {
	attrs := []string{fmt.Sprintf("label=\"%s\"", e.escapeLabel(n.Label))}
	styles := []string{"rounded"}

	if n.Fill != "" {
		styles = append(styles, "filled")
		attrs = append(attrs, fmt.Sprintf("fillcolor=\"%s\"", n.Fill))
	}
	if n.Bold {
		styles = append(styles, "bold")
		attrs = append(attrs, "fontname=\"Helvetica-Bold\"")
	}
	if n.Stroke != "" {
		attrs = append(attrs, fmt.Sprintf("color=\"%s\"", n.Stroke))
	}
	if len(styles) > 1 {
		attrs = append(attrs, fmt.Sprintf("style=\"%s\"", strings.Join(styles, ",")))
	}
	return strings.Join(attrs, ", ")
}

// getEdgeAttributes builds DOT attributes for an edge
func (e *GraphvizExporter) getEdgeAttributes(edge diagram.Edge) string {
	var attrs []string
	if edge.Label != "" {
		attrs = append(attrs, fmt.Sprintf("label=\"%s\"", e.escapeLabel(edge.Label)))
	}
	if edge.Dashed {
		attrs = append(attrs, "style=dashed")
	}
	return strings.Join(attrs, ", ")
}

// escapeLabel escapes quotes and turns line breaks into DOT's centered breaks
func (e *GraphvizExporter) escapeLabel(label string) string {
	label = strings.ReplaceAll(label, "\\", "\\\\")
	label = strings.ReplaceAll(label, "\"", "\\\"")
	return strings.ReplaceAll(label, "\n", "\\n")
}

// GetFileExtension returns the recommended file extension
func (e *GraphvizExporter) GetFileExtension() string {
	return ".dot"
}

// GetFormatName returns the format name
func (e *GraphvizExporter) GetFormatName() string {
	return "Graphviz"
}
