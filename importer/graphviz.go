package importer

import (
	"regexp"
	"strings"

	"mindmap/diagram"
	"mindmap/logging"
)

// GraphvizImporter imports Graphviz DOT graphs
type GraphvizImporter struct{}

// NewGraphvizImporter creates a new Graphviz importer
func NewGraphvizImporter() *GraphvizImporter {
	return &GraphvizImporter{}
}

const dotID = `"(?:[^"\\]|\\.)*"|[A-Za-z0-9_.]+`

var (
	dotHeader    = regexp.MustCompile(`^(?:strict\s+)?(?:di)?graph\b[^{]*\{`)
	dotSubgraph  = regexp.MustCompile(`^subgraph\b[^{]*\{`)
	dotNodeID    = regexp.MustCompile(`^(` + dotID + `)\s*`)
	dotEdgeOp    = regexp.MustCompile(`^(->|--)\s*`)
	dotAttribute = regexp.MustCompile(`([A-Za-z_]+)\s*=\s*(` + dotID + `|#[0-9A-Fa-f]+)`)

	dotUnescaper = strings.NewReplacer(`\"`, `"`, `\n`, "\n", `\l`, "\n", `\r`, "\n", `\\`, `\`)
)

// CanImport checks if the content is a Graphviz DOT graph
func (g *GraphvizImporter) CanImport(content string) bool {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#") {
			continue
		}
		return dotHeader.MatchString(line)
	}
	return false
}

// Import converts a DOT graph to a mind map
func (g *GraphvizImporter) Import(content string) (diagram.Document, error) {
	graph := &Graph{}
	for _, stmt := range splitStatements(content, true) {
		g.parseStatement(graph, g.stripBraces(stmt))
	}
	return Build(graph)
}

// GetFormatName returns the format name
func (g *GraphvizImporter) GetFormatName() string {
	return "Graphviz"
}

// GetFileExtensions returns common file extensions
func (g *GraphvizImporter) GetFileExtensions() []string {
	return []string{".dot", ".gv"}
}

// stripBraces removes graph and subgraph openers and stray braces around a
// statement, so "digraph G { a -> b }" reads as "a -> b".
func (g *GraphvizImporter) stripBraces(stmt string) string {
	for {
		before := stmt
		if loc := dotHeader.FindStringIndex(stmt); loc != nil {
			stmt = stmt[loc[1]:]
		}
		if loc := dotSubgraph.FindStringIndex(stmt); loc != nil {
			stmt = stmt[loc[1]:]
		}
		stmt = strings.TrimSpace(strings.Trim(strings.TrimSpace(stmt), "{}"))
		if stmt == before {
			return stmt
		}
	}
}

func (g *GraphvizImporter) parseStatement(graph *Graph, stmt string) {
	if stmt == "" || strings.HasPrefix(stmt, "//") || strings.HasPrefix(stmt, "#") {
		return
	}

	head, attrs := stmt, ""
	if i := g.attributeStart(stmt); i >= 0 {
		head, attrs = stmt[:i], stmt[i:]
	}
	head = strings.TrimSpace(head)

	switch head {
	case "node", "edge", "graph":
		return
	}

	var keys []string
	rest := head
	for {
		m := dotNodeID.FindStringSubmatch(rest)
		if m == nil {
			// "rankdir=LR" and other graph attributes land here.
			logging.Debug("skipping dot statement", "statement", stmt)
			return
		}
		keys = append(keys, g.unquote(m[1]))
		rest = rest[len(m[0]):]
		if rest == "" {
			break
		}
		op := dotEdgeOp.FindString(rest)
		if op == "" {
			logging.Debug("skipping dot statement", "statement", stmt)
			return
		}
		rest = rest[len(op):]
	}

	values := g.parseAttributes(attrs)
	if len(keys) == 1 {
		g.applyNodeAttributes(graph.node(keys[0]), values)
		return
	}

	label := values["label"]
	style := values["style"]
	dashed := strings.Contains(style, "dashed") || strings.Contains(style, "dotted")
	for i := 1; i < len(keys); i++ {
		graph.connect(keys[i-1], keys[i], label, dashed)
	}
}

// attributeStart returns the index of the first "[" outside quotes, or -1.
func (g *GraphvizImporter) attributeStart(stmt string) int {
	quoted, escaped := false, false
	for i, r := range stmt {
		switch {
		case escaped:
			escaped = false
		case r == '\\' && quoted:
			escaped = true
		case r == '"':
			quoted = !quoted
		case r == '[' && !quoted:
			return i
		}
	}
	return -1
}

// parseAttributes parses one or more [key=value, ...] lists
func (g *GraphvizImporter) parseAttributes(attrs string) map[string]string {
	values := make(map[string]string)
	for _, m := range dotAttribute.FindAllStringSubmatch(attrs, -1) {
		values[strings.ToLower(m[1])] = g.unquote(m[2])
	}
	return values
}

func (g *GraphvizImporter) applyNodeAttributes(node *Node, values map[string]string) {
	if label, ok := values["label"]; ok {
		node.Label = label
	}
	if fill, ok := values["fillcolor"]; ok {
		node.Fill = fill
	}
	if color, ok := values["color"]; ok {
		node.Stroke = color
	}
	if strings.Contains(values["style"], "bold") || strings.Contains(strings.ToLower(values["fontname"]), "bold") {
		node.Bold = true
	}
}

func (g *GraphvizImporter) unquote(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return dotUnescaper.Replace(s[1 : len(s)-1])
	}
	return s
}
