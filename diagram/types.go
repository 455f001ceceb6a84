// Package diagram contains the data model of a mind map: nodes, edges and the document holding them.
package diagram

import (
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultStroke is the outline color of nodes that never had one set.
const DefaultStroke = "#333333"

// StartLabel is the label of the node a fresh document starts with.
const StartLabel = "Type to change Text"

// Palette is the fixed set of colors offered by the context menu.
var Palette = []string{
	"#333333", "#e03131", "#f08c00", "#2f9e44",
	"#1971c2", "#6741d9", "#c2255c", "#0c8599",
}

// Node represents a labeled box in the mind map.
// X and Y are the world-space center; W and H always come from label layout.
type Node struct {
	ID       int     `json:"id"`
	Label    string  `json:"label"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	W        float64 `json:"w"`
	H        float64 `json:"h"`
	MinW     float64 `json:"minW,omitempty"`     // Box floor set by resizing
	MinH     float64 `json:"minH,omitempty"`     // Box floor set by resizing
	FontSize float64 `json:"fontSize,omitempty"` // Zero means the default size
	Stroke   string  `json:"strokeColor"`
	Fill     string  `json:"fillColor,omitempty"` // Empty means no fill
	Bold     bool    `json:"bold,omitempty"`
}

// Center returns the world position of the node.
func (n Node) Center() r2.Vec {
	return r2.Vec{X: n.X, Y: n.Y}
}

// Size returns the box dimensions of the node.
func (n Node) Size() r2.Vec {
	return r2.Vec{X: n.W, Y: n.H}
}

// Edge connects two nodes. For tree navigation Source is the parent of Target.
type Edge struct {
	ID     int    `json:"id"`
	Source int    `json:"source"`
	Target int    `json:"target"`
	Label  string `json:"label,omitempty"`
	Dashed bool   `json:"dashed,omitempty"`
}

// Touches reports whether the edge has id as either endpoint.
func (e Edge) Touches(id int) bool {
	return e.Source == id || e.Target == id
}

// Connects reports whether the edge joins a and b in either direction.
func (e Edge) Connects(a, b int) bool {
	return (e.Source == a && e.Target == b) || (e.Source == b && e.Target == a)
}

// Document is the persisted part of a mind map. Edges are kept in creation order.
type Document struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// NewDocument returns the default starting document: a single node at the origin.
func NewDocument() Document {
	return Document{
		Nodes: []Node{{ID: 1, Label: StartLabel, Stroke: DefaultStroke}},
		Edges: []Edge{},
	}
}

// Clone creates a deep copy of the document
func (d Document) Clone() Document {
	clone := Document{
		Nodes: make([]Node, len(d.Nodes)),
		Edges: make([]Edge, len(d.Edges)),
	}
	// Nodes and edges hold only value fields, so a slice copy is deep
	copy(clone.Nodes, d.Nodes)
	copy(clone.Edges, d.Edges)
	return clone
}

// NodeIndex returns the slice index of the node with the given id, or -1.
func (d Document) NodeIndex(id int) int {
	for i := range d.Nodes {
		if d.Nodes[i].ID == id {
			return i
		}
	}
	return -1
}

// EdgeIndex returns the slice index of the edge with the given id, or -1.
func (d Document) EdgeIndex(id int) int {
	for i := range d.Edges {
		if d.Edges[i].ID == id {
			return i
		}
	}
	return -1
}

// NormalizeColor canonicalises hex colors to lowercase #rrggbb.
// Values go-colorful cannot parse as hex (rgba(...) and friends) pass through trimmed.
func NormalizeColor(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	hex := s
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return s
	}
	return c.Hex()
}
