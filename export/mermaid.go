package export

import (
	"fmt"
	"strings"

	"mindmap/diagram"
)

// MermaidExporter exports mind maps as Mermaid flowcharts
type MermaidExporter struct {
	// Direction is the flowchart direction: LR, TD, RL or BT
	Direction string
}

// NewMermaidExporter creates a new Mermaid exporter
func NewMermaidExporter() *MermaidExporter {
	return &MermaidExporter{Direction: "LR"}
}

// Export converts a document to a Mermaid flowchart
func (e *MermaidExporter) Export(doc diagram.Document) (string, error) {
	var sb strings.Builder
	sb.WriteString("flowchart " + e.Direction + "\n")

	for _, n := range doc.Nodes {
		fmt.Fprintf(&sb, "    %s[\"%s\"]\n", nodeName(n.ID), e.escapeLabel(n.Label))
	}

	if len(doc.Edges) > 0 {
		sb.WriteString("\n")
	}
	for _, edge := range doc.Edges {
		arrow := "-->"
		if edge.Dashed {
			arrow = "-.->"
		}
		if edge.Label != "" {
			fmt.Fprintf(&sb, "    %s %s|\"%s\"| %s\n", nodeName(edge.Source), arrow,
				e.escapeLabel(singleLine(edge.Label)), nodeName(edge.Target))
		} else {
			fmt.Fprintf(&sb, "    %s %s %s\n", nodeName(edge.Source), arrow, nodeName(edge.Target))
		}
	}

	var styles []string
	for _, n := range doc.Nodes {
		if style := e.nodeStyle(n); style != "" {
			styles = append(styles, fmt.Sprintf("    style %s %s\n", nodeName(n.ID), style))
		}
	}
	if len(styles) > 0 {
		sb.WriteString("\n")
		sb.WriteString(strings.Join(styles, ""))
	}

	return sb.String(), nil
}

func (e *MermaidExporter) nodeStyle(n diagram.Node) string {
	var parts []string
	if n.Fill != "" {
		parts = append(parts, "fill:"+n.Fill)
	}
	if n.Stroke != "" {
		parts = append(parts, "stroke:"+n.Stroke)
	}
	if n.Bold {
		parts = append(parts, "font-weight:bold")
	}
	return strings.Join(parts, ",")
}

// escapeLabel escapes characters that break quoted Mermaid labels
func (e *MermaidExporter) escapeLabel(label string) string {
	label = strings.ReplaceAll(label, "\"", "#quot;")
	return strings.ReplaceAll(label, "\n", "<br/>")
}

// GetFileExtension returns the recommended file extension
func (e *MermaidExporter) GetFileExtension() string {
	return ".mmd"
}

// GetFormatName returns the format name
func (e *MermaidExporter) GetFormatName() string {
	return "Mermaid"
}
