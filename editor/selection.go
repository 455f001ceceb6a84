package editor

import "slices"

// Selection is either a set of nodes with a primary, or a set of edges.
type Selection struct {
	Primary int   `json:"primary"` // 0 when no node is selected
	Nodes   []int `json:"nodes"`
	Edges   []int `json:"edges"`
}

// Clone creates a deep copy of the selection
func (s Selection) Clone() Selection {
	return Selection{
		Primary: s.Primary,
		Nodes:   slices.Clone(s.Nodes),
		Edges:   slices.Clone(s.Edges),
	}
}

// Empty reports whether nothing is selected.
func (s Selection) Empty() bool {
	return len(s.Nodes) == 0 && len(s.Edges) == 0
}

// HasNode reports whether id is among the selected nodes.
func (s Selection) HasNode(id int) bool {
	return slices.Contains(s.Nodes, id)
}

// HasEdge reports whether id is among the selected edges.
func (s Selection) HasEdge(id int) bool {
	return slices.Contains(s.Edges, id)
}

func (s Selection) equal(o Selection) bool {
	return s.Primary == o.Primary && slices.Equal(s.Nodes, o.Nodes) && slices.Equal(s.Edges, o.Edges)
}

func nodeSelection(ids ...int) Selection {
	if len(ids) == 0 {
		return Selection{}
	}
	return Selection{Primary: ids[0], Nodes: slices.Clone(ids)}
}

func edgeSelection(ids ...int) Selection {
	if len(ids) == 0 {
		return Selection{}
	}
	return Selection{Edges: slices.Clone(ids)}
}

// setSelection replaces the selection. Any change re-arms fresh typing and
// drops a climb path the new primary is not on.
func (e *Editor) setSelection(s Selection) {
	if !s.equal(e.sel) {
		e.freshTyping = true
	}
	e.sel = s
	if e.climb != nil && !slices.Contains(e.climb.path, s.Primary) {
		e.climb = nil
	}
}

// selectNode makes id the only selected node. Selecting a node always re-arms
// fresh typing, even when it was already selected.
func (e *Editor) selectNode(id int) {
	e.setSelection(nodeSelection(id))
	e.freshTyping = true
}

func (e *Editor) clearSelection() {
	e.setSelection(Selection{})
}

// toggleNode adds or removes id from the node selection, keeping the primary
// on the first remaining node.
func (e *Editor) toggleNode(id int) {
	ids := slices.Clone(e.sel.Nodes)
	if i := slices.Index(ids, id); i >= 0 {
		ids = slices.Delete(ids, i, i+1)
	} else {
		ids = append(ids, id)
	}
	e.setSelection(nodeSelection(ids...))
}

// pruneSelection drops selected ids that no longer resolve.
func (e *Editor) pruneSelection() {
	nodes := slices.DeleteFunc(slices.Clone(e.sel.Nodes), func(id int) bool {
		return !e.store.Has(id)
	})
	edges := slices.DeleteFunc(slices.Clone(e.sel.Edges), func(id int) bool {
		_, ok := e.store.Edge(id)
		return !ok
	})
	if len(nodes) > 0 {
		primary := e.sel.Primary
		if !slices.Contains(nodes, primary) {
			primary = nodes[0]
		}
		e.setSelection(Selection{Primary: primary, Nodes: nodes})
		return
	}
	e.setSelection(edgeSelection(edges...))
}
