// Package store owns the nodes and edges of a mind map and every operation that mutates them.
package store

import (
	"slices"
	"unicode/utf8"

	"mindmap/diagram"
	"mindmap/geometry"

	"gonum.org/v1/gonum/spatial/r2"
)

// Resize limits for node boxes.
const (
	MinBoxWidth  = 80.0
	MaxBoxWidth  = 420.0
	MinBoxHeight = 48.0
	MaxBoxHeight = 240.0
)

// Store holds the document. Reads hand out copies; callers never get pointers
// into the store, so every change goes through a method here.
type Store struct {
	doc        diagram.Document
	nextNodeID int
	nextEdgeID int
	rev        int
	fontSize   float64
}

// New creates a store holding a copy of doc.
func New(doc diagram.Document) *Store {
	s := &Store{nextNodeID: 1, nextEdgeID: 1}
	s.Reset(doc)
	return s
}

// Reset adopts a copy of doc, fills in defaults and lays out every node.
// Id counters only ever move forward.
func (s *Store) Reset(doc diagram.Document) {
	s.doc = doc.Clone()
	for i := range s.doc.Nodes {
		if s.doc.Nodes[i].Stroke == "" {
			s.doc.Nodes[i].Stroke = diagram.DefaultStroke
		}
		relayout(&s.doc.Nodes[i])
	}
	s.reseed()
	s.rev++
}

// Restore adopts a copy of doc exactly as given. Used by undo and redo, where
// the document already went through the store once.
func (s *Store) Restore(doc diagram.Document) {
	s.doc = doc.Clone()
	s.reseed()
	s.rev++
}

// Revision counts changes to the document. Any successful mutation moves it.
func (s *Store) Revision() int {
	return s.rev
}

// SetFontSize sets the font size given to new nodes. Zero means the default.
func (s *Store) SetFontSize(size float64) {
	s.fontSize = max(size, 0)
}

func (s *Store) reseed() {
	for _, n := range s.doc.Nodes {
		s.nextNodeID = max(s.nextNodeID, n.ID+1)
	}
	for _, e := range s.doc.Edges {
		s.nextEdgeID = max(s.nextEdgeID, e.ID+1)
	}
}

// Document returns a deep copy of the current document.
func (s *Store) Document() diagram.Document {
	return s.doc.Clone()
}

// Nodes returns a copy of all nodes in insertion order.
func (s *Store) Nodes() []diagram.Node {
	return slices.Clone(s.doc.Nodes)
}

// Edges returns a copy of all edges in creation order.
func (s *Store) Edges() []diagram.Edge {
	return slices.Clone(s.doc.Edges)
}

// Len returns the number of nodes.
func (s *Store) Len() int {
	return len(s.doc.Nodes)
}

// Node looks up a node by id.
func (s *Store) Node(id int) (diagram.Node, bool) {
	if i := s.doc.NodeIndex(id); i >= 0 {
		return s.doc.Nodes[i], true
	}
	return diagram.Node{}, false
}

// Edge looks up an edge by id.
func (s *Store) Edge(id int) (diagram.Edge, bool) {
	if i := s.doc.EdgeIndex(id); i >= 0 {
		return s.doc.Edges[i], true
	}
	return diagram.Edge{}, false
}

// Has reports whether a node with the given id exists.
func (s *Store) Has(id int) bool {
	return s.doc.NodeIndex(id) >= 0
}

// Endpoints resolves the centers of an edge's nodes. ok is false for a
// dangling edge, which callers must skip.
func (s *Store) Endpoints(e diagram.Edge) (a, b r2.Vec, ok bool) {
	src, ok1 := s.Node(e.Source)
	dst, ok2 := s.Node(e.Target)
	if !ok1 || !ok2 {
		return r2.Vec{}, r2.Vec{}, false
	}
	return src.Center(), dst.Center(), true
}

// LabelOf lays out a node's label with its own font size and box floor.
func LabelOf(n diagram.Node) geometry.Label {
	return geometry.LayoutLabel(n.Label, n.FontSize, n.MinW)
}

func relayout(n *diagram.Node) {
	l := LabelOf(*n)
	n.W = l.Width
	n.H = max(l.Height, n.MinH)
}

func (s *Store) allocNodeID() int {
	id := s.nextNodeID
	s.nextNodeID++
	return id
}

func (s *Store) allocEdgeID() int {
	id := s.nextEdgeID
	s.nextEdgeID++
	return id
}

// insertNode appends a new, laid out node and returns its id.
func (s *Store) insertNode(p r2.Vec, stroke, fill string) int {
	if stroke == "" {
		stroke = diagram.DefaultStroke
	}
	n := diagram.Node{
		ID:       s.allocNodeID(),
		X:        p.X,
		Y:        p.Y,
		Stroke:   stroke,
		Fill:     fill,
		FontSize: s.fontSize,
	}
	relayout(&n)
	s.doc.Nodes = append(s.doc.Nodes, n)
	s.rev++
	return n.ID
}

// update applies fn to the node with the given id and lays it out again.
func (s *Store) update(id int, fn func(n *diagram.Node) bool) bool {
	i := s.doc.NodeIndex(id)
	if i < 0 {
		return false
	}
	if !fn(&s.doc.Nodes[i]) {
		return false
	}
	relayout(&s.doc.Nodes[i])
	s.rev++
	return true
}

func (s *Store) updateEdge(id int, fn func(e *diagram.Edge) bool) bool {
	i := s.doc.EdgeIndex(id)
	if i < 0 {
		return false
	}
	if !fn(&s.doc.Edges[i]) {
		return false
	}
	s.rev++
	return true
}

// RemoveNodes deletes the given nodes and every edge touching any of them.
// When exactly one node is removed and its parent survives, the parent id is
// returned so the caller can move the selection there; otherwise 0.
func (s *Store) RemoveNodes(ids []int) int {
	doomed := make(map[int]bool, len(ids))
	for _, id := range ids {
		if s.Has(id) {
			doomed[id] = true
		}
	}
	if len(doomed) == 0 {
		return 0
	}

	climb := 0
	if len(doomed) == 1 {
		for id := range doomed {
			if p := s.ParentOf(id); p != 0 && !doomed[p] {
				climb = p
			}
		}
	}

	s.doc.Nodes = slices.DeleteFunc(s.doc.Nodes, func(n diagram.Node) bool {
		return doomed[n.ID]
	})
	s.doc.Edges = slices.DeleteFunc(s.doc.Edges, func(e diagram.Edge) bool {
		return doomed[e.Source] || doomed[e.Target]
	})
	s.rev++
	return climb
}

// RemoveEdges deletes the given edges and reports whether any existed.
func (s *Store) RemoveEdges(ids []int) bool {
	before := len(s.doc.Edges)
	s.doc.Edges = slices.DeleteFunc(s.doc.Edges, func(e diagram.Edge) bool {
		return slices.Contains(ids, e.ID)
	})
	if len(s.doc.Edges) == before {
		return false
	}
	s.rev++
	return true
}

// EdgeBetween returns the id of the edge joining a and b in either direction, or 0.
func (s *Store) EdgeBetween(a, b int) int {
	for _, e := range s.doc.Edges {
		if e.Connects(a, b) {
			return e.ID
		}
	}
	return 0
}

// EnsureEdge connects a to b unless they are the same node, either is missing,
// or the pair is already connected in any direction. created reports whether
// a new edge was made; id is the new or existing edge.
func (s *Store) EnsureEdge(a, b int) (id int, created bool) {
	if a == b || !s.Has(a) || !s.Has(b) {
		return 0, false
	}
	if existing := s.EdgeBetween(a, b); existing != 0 {
		return existing, false
	}
	e := diagram.Edge{ID: s.allocEdgeID(), Source: a, Target: b}
	s.doc.Edges = append(s.doc.Edges, e)
	s.rev++
	return e.ID, true
}

// MoveNode sets a node's world position.
func (s *Store) MoveNode(id int, p r2.Vec) bool {
	i := s.doc.NodeIndex(id)
	if i < 0 {
		return false
	}
	n := &s.doc.Nodes[i]
	if n.X == p.X && n.Y == p.Y {
		return false
	}
	n.X, n.Y = p.X, p.Y
	s.rev++
	return true
}

// SetLabel replaces a node's label.
func (s *Store) SetLabel(id int, label string) bool {
	return s.update(id, func(n *diagram.Node) bool {
		if n.Label == label {
			return false
		}
		n.Label = label
		return true
	})
}

// AppendLabel appends text to a node's label.
func (s *Store) AppendLabel(id int, text string) bool {
	return s.update(id, func(n *diagram.Node) bool {
		n.Label += text
		return text != ""
	})
}

// TrimLabel removes the last character of a node's label. Empty labels are left alone.
func (s *Store) TrimLabel(id int) bool {
	return s.update(id, func(n *diagram.Node) bool {
		if n.Label == "" {
			return false
		}
		_, size := utf8.DecodeLastRuneInString(n.Label)
		n.Label = n.Label[:len(n.Label)-size]
		return true
	})
}

// ResizeNode scales a node's box floor by the given factors, clamped to the
// resize limits, then lays the node out again.
func (s *Store) ResizeNode(id int, factorW, factorH float64) bool {
	return s.update(id, func(n *diagram.Node) bool {
		w := geometry.Clamp(n.W*factorW, MinBoxWidth, MaxBoxWidth)
		h := geometry.Clamp(n.H*factorH, MinBoxHeight, MaxBoxHeight)
		if w == n.MinW && h == n.MinH {
			return false
		}
		n.MinW, n.MinH = w, h
		return true
	})
}

// ToggleBold flips a node's bold flag.
func (s *Store) ToggleBold(id int) bool {
	return s.update(id, func(n *diagram.Node) bool {
		n.Bold = !n.Bold
		return true
	})
}

// SetFill sets or, with an empty color, clears a node's fill.
func (s *Store) SetFill(id int, color string) bool {
	color = diagram.NormalizeColor(color)
	return s.update(id, func(n *diagram.Node) bool {
		if n.Fill == color {
			return false
		}
		n.Fill = color
		return true
	})
}

// SetStroke sets a node's outline color. An empty color restores the default.
func (s *Store) SetStroke(id int, color string) bool {
	color = diagram.NormalizeColor(color)
	if color == "" {
		color = diagram.DefaultStroke
	}
	return s.update(id, func(n *diagram.Node) bool {
		if n.Stroke == color {
			return false
		}
		n.Stroke = color
		return true
	})
}

// SetEdgeLabel replaces an edge's label. An empty label removes it.
func (s *Store) SetEdgeLabel(id int, label string) bool {
	return s.updateEdge(id, func(e *diagram.Edge) bool {
		if e.Label == label {
			return false
		}
		e.Label = label
		return true
	})
}

// AppendEdgeLabel appends text to an edge's label.
func (s *Store) AppendEdgeLabel(id int, text string) bool {
	return s.updateEdge(id, func(e *diagram.Edge) bool {
		e.Label += text
		return text != ""
	})
}

// TrimEdgeLabel removes the last character of an edge's label.
func (s *Store) TrimEdgeLabel(id int) bool {
	return s.updateEdge(id, func(e *diagram.Edge) bool {
		if e.Label == "" {
			return false
		}
		_, size := utf8.DecodeLastRuneInString(e.Label)
		e.Label = e.Label[:len(e.Label)-size]
		return true
	})
}

// ToggleEdgeDashed flips an edge's dashed flag.
func (s *Store) ToggleEdgeDashed(id int) bool {
	return s.updateEdge(id, func(e *diagram.Edge) bool {
		e.Dashed = !e.Dashed
		return true
	})
}
