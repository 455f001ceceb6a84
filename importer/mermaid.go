package importer

import (
	"regexp"
	"strconv"
	"strings"

	"mindmap/diagram"
	"mindmap/logging"
)

// MermaidImporter imports Mermaid flowcharts
type MermaidImporter struct{}

// NewMermaidImporter creates a new Mermaid importer
func NewMermaidImporter() *MermaidImporter {
	return &MermaidImporter{}
}

const mermaidLabel = `"[^"]*"|[^\]\)\}"]*`

var (
	// Matches ID[text], ID(text), ID{text}, ID((text)), ID([text]), ID[[text]], ID{{text}}, ID[(text)] and ID>text]
	mermaidNode = regexp.MustCompile(`^([A-Za-z0-9_]+)\s*(?:` +
		`\(\((` + mermaidLabel + `)\)\)|` +
		`\(\[(` + mermaidLabel + `)\]\)|` +
		`\[\[(` + mermaidLabel + `)\]\]|` +
		`\{\{(` + mermaidLabel + `)\}\}|` +
		`\[\((` + mermaidLabel + `)\)\]|` +
		`\[(` + mermaidLabel + `)\]|` +
		`\((` + mermaidLabel + `)\)|` +
		`\{(` + mermaidLabel + `)\}|` +
		`>(` + mermaidLabel + `)\])?`)

	// Matches "-- text -->", "-. text .->" and arrows with an optional |text|
	mermaidLink = regexp.MustCompile(`^\s*(?:` +
		`--\s+(.+?)\s+--+>|` +
		`-\.\s+(.+?)\s+\.-+>|` +
		`(<-->|-\.+->|-\.+-|==+>|==+|--+>|---+)\s*(?:\|([^|]*)\|)?` +
		`)\s*`)

	mermaidHeader = regexp.MustCompile(`^(graph|flowchart)\b`)

	labelUnescaper = strings.NewReplacer("#quot;", `"`, "<br/>", "\n", "<br>", "\n", "<br />", "\n")
)

// CanImport checks if the content is a Mermaid flowchart
func (m *MermaidImporter) CanImport(content string) bool {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "%%") {
			continue
		}
		return mermaidHeader.MatchString(line)
	}
	return false
}

// Import converts a Mermaid flowchart to a mind map
func (m *MermaidImporter) Import(content string) (diagram.Document, error) {
	g := &Graph{}
	for _, stmt := range splitStatements(content, false) {
		m.parseStatement(g, stmt)
	}
	return Build(g)
}

// GetFormatName returns the format name
func (m *MermaidImporter) GetFormatName() string {
	return "Mermaid"
}

// GetFileExtensions returns common file extensions
func (m *MermaidImporter) GetFileExtensions() []string {
	return []string{".mmd", ".mermaid"}
}

func (m *MermaidImporter) parseStatement(g *Graph, stmt string) {
	if stmt == "" || strings.HasPrefix(stmt, "%%") || mermaidHeader.MatchString(stmt) {
		return
	}
	first := strings.Fields(stmt)[0]
	switch first {
	case "style":
		m.parseStyle(g, stmt)
		return
	case "subgraph", "end", "direction", "classDef", "class", "linkStyle", "click":
		return
	}

	var (
		prev    string
		pending *Edge
		rest    = stmt
	)
	for {
		key, label, hasLabel, n := m.parseNode(rest)
		if n == 0 {
			logging.Debug("skipping mermaid statement", "statement", stmt)
			return
		}
		node := g.node(key)
		if hasLabel {
			node.Label = label
		}
		if pending != nil {
			g.connect(prev, key, pending.Label, pending.Dashed)
		}

		rest = strings.TrimSpace(rest[n:])
		if rest == "" {
			return
		}
		link := mermaidLink.FindStringSubmatch(rest)
		if link == nil {
			logging.Debug("skipping mermaid statement", "statement", stmt)
			return
		}
		pending = &Edge{
			Label:  m.unescape(link[1] + link[2] + link[4]),
			Dashed: link[2] != "" || strings.Contains(link[3], "."),
		}
		prev = key
		rest = rest[len(link[0]):]
	}
}

// parseNode reads a node reference at the start of s and returns its key,
// its label if a shape was given, and the number of bytes consumed.
func (m *MermaidImporter) parseNode(s string) (key, label string, hasLabel bool, n int) {
	loc := mermaidNode.FindStringSubmatchIndex(s)
	if loc == nil {
		return "", "", false, 0
	}
	key = s[loc[2]:loc[3]]
	for i := 4; i < len(loc); i += 2 {
		if loc[i] >= 0 {
			return key, m.unescape(s[loc[i]:loc[i+1]]), true, loc[1]
		}
	}
	return key, "", false, loc[1]
}

// parseStyle applies "style ID fill:#f9f,stroke:#333,font-weight:bold".
func (m *MermaidImporter) parseStyle(g *Graph, stmt string) {
	fields := strings.Fields(stmt)
	if len(fields) < 3 {
		return
	}
	node := g.node(fields[1])
	for _, prop := range strings.Split(strings.Join(fields[2:], ""), ",") {
		name, value, ok := strings.Cut(prop, ":")
		if !ok {
			continue
		}
		switch name {
		case "fill":
			node.Fill = value
		case "stroke":
			node.Stroke = value
		case "font-weight":
			weight, err := strconv.Atoi(value)
			node.Bold = value == "bold" || value == "bolder" || (err == nil && weight >= 600)
		}
	}
}

func (m *MermaidImporter) unescape(label string) string {
	label = strings.TrimSpace(label)
	if len(label) >= 2 && strings.HasPrefix(label, `"`) && strings.HasSuffix(label, `"`) {
		label = label[1 : len(label)-1]
	}
	return labelUnescaper.Replace(label)
}
