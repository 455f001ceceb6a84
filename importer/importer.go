// Package importer reads flowcharts written for other tools and lays them
// out as mind maps.
package importer

import (
	"fmt"
	"strings"

	"mindmap/diagram"
	"mindmap/store"

	"gonum.org/v1/gonum/spatial/r2"
)

// RootSpacing is the horizontal distance between the centers of imported trees.
const RootSpacing = 4 * store.ChildRadius

// Importer interface defines methods for importing diagrams from various formats
type Importer interface {
	// CanImport checks if the given content can be imported by this importer
	CanImport(content string) bool

	// Import converts the input content into a laid out mind map
	Import(content string) (diagram.Document, error)

	// GetFormatName returns the human-readable name of the format
	GetFormatName() string

	// GetFileExtensions returns common file extensions for this format
	GetFileExtensions() []string
}

// ImporterRegistry manages available importers
type ImporterRegistry struct {
	importers []Importer
}

// NewImporterRegistry creates a new importer registry
func NewImporterRegistry() *ImporterRegistry {
	return &ImporterRegistry{
		importers: []Importer{
			NewMermaidImporter(),
			NewGraphvizImporter(),
		},
	}
}

// Register adds a new importer to the registry
func (r *ImporterRegistry) Register(importer Importer) {
	r.importers = append(r.importers, importer)
}

// DetectFormat attempts to detect the format of the given content
func (r *ImporterRegistry) DetectFormat(content string) (Importer, error) {
	for _, imp := range r.importers {
		if imp.CanImport(content) {
			return imp, nil
		}
	}
	return nil, fmt.Errorf("unable to detect format")
}

// Import attempts to import content using auto-detection
func (r *ImporterRegistry) Import(content string) (diagram.Document, error) {
	importer, err := r.DetectFormat(content)
	if err != nil {
		return diagram.Document{}, err
	}
	return importer.Import(content)
}

// ImportWithFormat imports content using a specific format, named by its
// format name or one of its file extensions.
func (r *ImporterRegistry) ImportWithFormat(content, format string) (diagram.Document, error) {
	format = strings.TrimPrefix(strings.ToLower(format), ".")

	for _, imp := range r.importers {
		if strings.ToLower(imp.GetFormatName()) == format {
			return imp.Import(content)
		}
		for _, ext := range imp.GetFileExtensions() {
			if strings.TrimPrefix(ext, ".") == format {
				return imp.Import(content)
			}
		}
	}

	return diagram.Document{}, fmt.Errorf("unknown format: %s", format)
}

// GetAvailableFormats returns a list of available import formats
func (r *ImporterRegistry) GetAvailableFormats() []string {
	formats := make([]string, len(r.importers))
	for i, imp := range r.importers {
		formats[i] = imp.GetFormatName()
	}
	return formats
}

// Graph is a parsed flowchart before layout. Nodes keep the order in which
// they were first mentioned.
type Graph struct {
	Nodes []Node
	Edges []Edge
	index map[string]int
}

// Node is a parsed node, keyed by its identifier in the source.
type Node struct {
	Key    string
	Label  string
	Fill   string
	Stroke string
	Bold   bool
}

// Edge is a parsed connection between two node keys.
type Edge struct {
	From   string
	To     string
	Label  string
	Dashed bool
}

// node returns the node with key, creating it labeled with its key.
func (g *Graph) node(key string) *Node {
	if g.index == nil {
		g.index = make(map[string]int)
	}
	if i, ok := g.index[key]; ok {
		return &g.Nodes[i]
	}
	g.index[key] = len(g.Nodes)
	g.Nodes = append(g.Nodes, Node{Key: key, Label: key})
	return &g.Nodes[len(g.Nodes)-1]
}

func (g *Graph) connect(from, to, label string, dashed bool) {
	g.node(from)
	g.node(to)
	g.Edges = append(g.Edges, Edge{From: from, To: to, Label: label, Dashed: dashed})
}

// Build lays the graph out as a mind map. The first edge into a node makes
// its source the parent. Roots sit in a row RootSpacing apart and every
// child is placed around its parent the way the editor places new children.
// A pair of nodes is connected at most once and self loops are dropped.
func Build(g *Graph) (diagram.Document, error) {
	if len(g.Nodes) == 0 {
		return diagram.Document{}, fmt.Errorf("no nodes found")
	}

	parent := make(map[string]string)
	for _, e := range g.Edges {
		if _, ok := parent[e.To]; !ok && e.From != e.To {
			parent[e.To] = e.From
		}
	}
	children := make(map[string][]string)
	for _, n := range g.Nodes {
		if p, ok := parent[n.Key]; ok {
			children[p] = append(children[p], n.Key)
		}
	}

	s := store.New(diagram.Document{Nodes: []diagram.Node{}, Edges: []diagram.Edge{}})
	ids := make(map[string]int, len(g.Nodes))
	roots := 0

	place := func(root string) {
		ids[root] = s.AddStandalone(r2.Vec{X: float64(roots) * RootSpacing})
		roots++
		queue := []string{root}
		for len(queue) > 0 {
			key := queue[0]
			queue = queue[1:]
			for _, child := range children[key] {
				if _, done := ids[child]; done {
					continue
				}
				ids[child] = s.AddChild(ids[key])
				queue = append(queue, child)
			}
		}
	}

	for _, n := range g.Nodes {
		if _, ok := parent[n.Key]; !ok {
			place(n.Key)
		}
	}
	// Whatever is left hangs off a cycle.
	for _, n := range g.Nodes {
		if _, done := ids[n.Key]; !done {
			place(n.Key)
		}
	}

	for _, n := range g.Nodes {
		id := ids[n.Key]
		s.SetLabel(id, n.Label)
		s.SetFill(id, normalizeColor(n.Fill))
		s.SetStroke(id, normalizeColor(n.Stroke))
		if n.Bold {
			s.ToggleBold(id)
		}
	}

	for _, e := range g.Edges {
		id, _ := s.EnsureEdge(ids[e.From], ids[e.To])
		if id == 0 {
			continue
		}
		edge, _ := s.Edge(id)
		if edge.Label == "" && e.Label != "" {
			s.SetEdgeLabel(id, e.Label)
		}
		if e.Dashed && !edge.Dashed {
			s.ToggleEdgeDashed(id)
		}
	}

	return s.Document(), nil
}

// namedColors maps the color names flowchart tools accept most often.
var namedColors = map[string]string{
	"red":     "#ff6b6b",
	"green":   "#51cf66",
	"blue":    "#339af0",
	"yellow":  "#ffd43b",
	"orange":  "#ff922b",
	"purple":  "#9775fa",
	"magenta": "#ff6b9d",
	"cyan":    "#22b8cf",
	"white":   "#ffffff",
	"black":   "#000000",
	"gray":    "#868e96",
	"grey":    "#868e96",
}

// normalizeColor turns names and 3 or 6 digit hex codes into "#rrggbb".
// Anything else is dropped.
func normalizeColor(color string) string {
	color = strings.ToLower(strings.TrimSpace(color))
	if hex, ok := namedColors[color]; ok {
		return hex
	}
	hex := strings.TrimPrefix(color, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 || strings.Trim(hex, "0123456789abcdef") != "" {
		return ""
	}
	return diagram.NormalizeColor("#" + hex)
}

// splitStatements splits content at newlines and semicolons that are not
// inside double quotes. With escapes a backslash protects the next rune.
// Statements come back trimmed, empty ones dropped.
func splitStatements(content string, escapes bool) []string {
	var (
		stmts   []string
		current strings.Builder
		quoted  bool
		escaped bool
	)
	flush := func() {
		if stmt := strings.TrimSpace(current.String()); stmt != "" {
			stmts = append(stmts, stmt)
		}
		current.Reset()
	}
	for _, r := range content {
		switch {
		case escaped:
			escaped = false
		case escapes && r == '\\' && quoted:
			escaped = true
		case r == '"':
			quoted = !quoted
		case (r == ';' || r == '\n') && !quoted:
			flush()
			continue
		}
		current.WriteRune(r)
	}
	flush()
	return stmts
}
