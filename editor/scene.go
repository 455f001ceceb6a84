package editor

import (
	"mindmap/diagram"
	"mindmap/geometry"
	"mindmap/store"

	"gonum.org/v1/gonum/spatial/r2"
)

// Scene is the read-only picture a renderer draws: laid out nodes, resolvable
// edges, the selection, gesture previews and the viewport.
type Scene struct {
	Nodes     []SceneNode    `json:"nodes"`
	Edges     []SceneEdge    `json:"edges"`
	Selection Selection      `json:"selection"`
	Link      *LinkPreview   `json:"link,omitempty"`
	Marquee   *geometry.Rect `json:"marquee,omitempty"` // World coordinates
	Viewport  Viewport       `json:"viewport"`
	Gesture   string         `json:"gesture"`
	CanUndo   bool           `json:"canUndo"`
	CanRedo   bool           `json:"canRedo"`
}

// SceneNode is a node with its wrapped label.
type SceneNode struct {
	diagram.Node
	Lines      []string `json:"lines"`
	LineHeight float64  `json:"lineHeight"`
	Selected   bool     `json:"selected"`
}

// SceneEdge is an edge with the centers of its endpoints.
type SceneEdge struct {
	diagram.Edge
	From     r2.Vec `json:"from"`
	To       r2.Vec `json:"to"`
	Selected bool   `json:"selected"`
}

// LinkPreview is the rubber band of a link being drawn.
type LinkPreview struct {
	Source int    `json:"source"`
	From   r2.Vec `json:"from"`
	To     r2.Vec `json:"to"`
}

// Scene builds the current render snapshot. Edges with a missing endpoint are left out.
func (e *Editor) Scene() Scene {
	s := Scene{
		Selection: e.sel.Clone(),
		Viewport:  e.view,
		Gesture:   e.gesture.kind.String(),
		CanUndo:   e.history.CanUndo(),
		CanRedo:   e.history.CanRedo(),
	}

	for _, n := range e.store.Nodes() {
		label := store.LabelOf(n)
		s.Nodes = append(s.Nodes, SceneNode{
			Node:       n,
			Lines:      label.Lines,
			LineHeight: label.LineHeight,
			Selected:   e.sel.HasNode(n.ID),
		})
	}

	for _, edge := range e.store.Edges() {
		from, to, ok := e.store.Endpoints(edge)
		if !ok {
			continue
		}
		s.Edges = append(s.Edges, SceneEdge{
			Edge:     edge,
			From:     from,
			To:       to,
			Selected: e.sel.HasEdge(edge.ID),
		})
	}

	g := e.gesture
	switch g.kind {
	case GestureLinkActive:
		if src, ok := e.store.Node(g.node); ok {
			s.Link = &LinkPreview{Source: g.node, From: src.Center(), To: g.current}
		}
	case GestureMarquee:
		r := geometry.RectFromPoints(g.startWorld, g.current)
		s.Marquee = &r
	}
	return s
}
