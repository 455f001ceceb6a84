package export

import (
	"fmt"
	"strings"

	"mindmap/diagram"
)

// D2Exporter exports mind maps to D2 syntax
type D2Exporter struct{}

// NewD2Exporter creates a new D2 exporter
func NewD2Exporter() *D2Exporter {
	return &D2Exporter{}
}

// Export converts the document to D2 syntax
func (e *D2Exporter) Export(doc diagram.Document) (string, error) {
	var sb strings.Builder

	for _, n := range doc.Nodes {
		id := e.getNodeID(n.ID)
		fmt.Fprintf(&sb, "%s: %s\n", id, e.escapeLabel(n.Label))
		e.writeNodeAttributes(&sb, id, n)
	}

	if len(doc.Edges) > 0 && len(doc.Nodes) > 0 {
		sb.WriteString("\n")
	}

	// D2 indexes repeated connections between the same pair from zero.
	seen := make(map[[2]int]int)
	for _, edge := range doc.Edges {
		from, to := e.getNodeID(edge.Source), e.getNodeID(edge.Target)
		if edge.Label != "" {
			fmt.Fprintf(&sb, "%s -> %s: %s\n", from, to, e.escapeLabel(singleLine(edge.Label)))
		} else {
			fmt.Fprintf(&sb, "%s -> %s\n", from, to)
		}

		pair := [2]int{edge.Source, edge.Target}
		index := seen[pair]
		seen[pair]++
		if edge.Dashed {
			fmt.Fprintf(&sb, "(%s -> %s)[%d].style.stroke-dash: 5\n", from, to, index)
		}
	}

	return sb.String(), nil
}

// getNodeID returns a valid D2 node identifier
func (e *D2Exporter) getNodeID(id int) string {
	return fmt.Sprintf("node_%d", id)
}

// escapeLabel quotes labels that contain D2 syntax
func (e *D2Exporter) escapeLabel(label string) string {
	if label == "" {
		return `""`
	}
	if !strings.ContainsAny(label, ":-><|{}[]()\"#;\n\\") {
		return label
	}
	label = strings.ReplaceAll(label, `\`, `\\`)
	label = strings.ReplaceAll(label, `"`, `\"`)
	label = strings.ReplaceAll(label, "\n", `\n`)
	return `"` + label + `"`
}

// writeNodeAttributes writes D2 style attributes for a node
func (e *D2Exporter) writeNodeAttributes(sb *strings.Builder, id string, n diagram.Node) {
	if n.Fill != "" {
		fmt.Fprintf(sb, "%s.style.fill: \"%s\"\n", id, n.Fill)
	}
	if n.Stroke != "" {
		fmt.Fprintf(sb, "%s.style.stroke: \"%s\"\n", id, n.Stroke)
	}
	if n.Bold {
		fmt.Fprintf(sb, "%s.style.bold: true\n", id)
	}
}

// GetFileExtension returns the recommended file extension
func (e *D2Exporter) GetFileExtension() string {
	return ".d2"
}

// GetFormatName returns the format name
func (e *D2Exporter) GetFormatName() string {
	return "D2"
}
