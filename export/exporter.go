// Package export writes mind maps in text formats other tools understand.
package export

import (
	"fmt"
	"sort"
	"strings"

	"mindmap/diagram"
	"mindmap/store"
)

// Format represents an export format
type Format string

const (
	// FormatMermaid exports a Mermaid flowchart
	FormatMermaid Format = "mermaid"
	// FormatGraphviz exports Graphviz DOT
	FormatGraphviz Format = "dot"
	// FormatD2 exports D2 diagram syntax
	FormatD2 Format = "d2"
	// FormatMarkdown exports a nested bullet list
	FormatMarkdown Format = "markdown"
)

// Exporter interface for different export formats
type Exporter interface {
	// Export converts a document to the target format
	Export(doc diagram.Document) (string, error)
	// GetFileExtension returns the recommended file extension for this format
	GetFileExtension() string
	// GetFormatName returns a human-readable name for this format
	GetFormatName() string
}

// NewExporter creates an exporter for the specified format
func NewExporter(format Format) (Exporter, error) {
	switch format {
	case FormatMermaid:
		return NewMermaidExporter(), nil
	case FormatGraphviz:
		return NewGraphvizExporter(), nil
	case FormatD2:
		return NewD2Exporter(), nil
	case FormatMarkdown:
		return NewMarkdownExporter(), nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// ParseFormat converts a string to a Format
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "mermaid", "mmd":
		return FormatMermaid, nil
	case "dot", "graphviz", "gv":
		return FormatGraphviz, nil
	case "d2":
		return FormatD2, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown format: %s", s)
	}
}

// GetAvailableFormats returns a list of all available export formats
func GetAvailableFormats() []Format {
	return []Format{FormatMermaid, FormatGraphviz, FormatD2, FormatMarkdown}
}

// GetFormatDescriptions returns human-readable descriptions of all formats
func GetFormatDescriptions() map[Format]string {
	return map[Format]string{
		FormatMermaid:  "Mermaid flowchart (for Markdown)",
		FormatGraphviz: "Graphviz DOT",
		FormatD2:       "D2 diagram syntax",
		FormatMarkdown: "Markdown bullet outline",
	}
}

// FormatNames lists the formats for help text.
func FormatNames() string {
	names := make([]string, 0, 4)
	for _, f := range GetAvailableFormats() {
		names = append(names, string(f))
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// Entry is one line of an outline.
type Entry struct {
	Node  diagram.Node
	Depth int
}

// Outline flattens the forest depth first, roots in document order. Nodes
// only reachable through a cycle start extra trees so every node appears
// exactly once.
func Outline(doc diagram.Document) []Entry {
	s := store.New(doc)
	visited := make(map[int]bool)
	entries := make([]Entry, 0, len(doc.Nodes))

	var walk func(id, depth int)
	walk = func(id, depth int) {
		if visited[id] {
			return
		}
		visited[id] = true
		n, _ := s.Node(id)
		entries = append(entries, Entry{Node: n, Depth: depth})
		for _, child := range s.ChildrenOf(id) {
			walk(child, depth+1)
		}
	}

	for _, n := range s.Nodes() {
		if s.ParentOf(n.ID) == 0 {
			walk(n.ID, 0)
		}
	}
	for _, n := range s.Nodes() {
		walk(n.ID, 0)
	}
	return entries
}

// singleLine folds a multi-line label for formats without line breaks.
func singleLine(label string) string {
	return strings.Join(strings.Fields(label), " ")
}

func nodeName(id int) string {
	return fmt.Sprintf("N%d", id)
}
