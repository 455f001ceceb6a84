package store

import (
	"math"
	"slices"
	"sort"

	"mindmap/geometry"

	"gonum.org/v1/gonum/spatial/r2"
)

// The graph is general, but navigation treats it as a rooted forest: a node's
// parent is the source of the first edge, in creation order, that targets it
// from a live node. Later incoming edges are ignored for navigation.

// ParentOf returns the parent of id, or 0 for a root.
func (s *Store) ParentOf(id int) int {
	if !s.Has(id) {
		return 0
	}
	for _, e := range s.doc.Edges {
		if e.Target == id && e.Source != id && s.Has(e.Source) {
			return e.Source
		}
	}
	return 0
}

// ChildrenOf returns the ids of the nodes whose parent is id, sorted by id.
func (s *Store) ChildrenOf(id int) []int {
	var children []int
	for _, n := range s.doc.Nodes {
		if n.ID != id && s.ParentOf(n.ID) == id {
			children = append(children, n.ID)
		}
	}
	slices.Sort(children)
	return children
}

// SiblingsClockwise returns the children of id's parent, id included, ordered
// by descending angle around the parent. Angles are measured with Y pointing
// up, so the order runs clockwise on a screen whose Y grows downwards.
// Roots have no siblings.
func (s *Store) SiblingsClockwise(id int) []int {
	parent := s.ParentOf(id)
	if parent == 0 {
		return nil
	}
	pn, _ := s.Node(parent)
	siblings := s.ChildrenOf(parent)

	angle := make(map[int]float64, len(siblings))
	for _, sid := range siblings {
		n, _ := s.Node(sid)
		angle[sid] = math.Atan2(pn.Y-n.Y, n.X-pn.X)
	}
	sort.SliceStable(siblings, func(i, j int) bool {
		return angle[siblings[i]] > angle[siblings[j]]
	})
	return siblings
}

// RootPath returns the parent chain of id from its root down to id itself.
// A cycle in the parent relation stops the walk at the first repeat.
func (s *Store) RootPath(id int) []int {
	if !s.Has(id) {
		return nil
	}
	seen := map[int]bool{}
	var path []int
	for cur := id; cur != 0 && !seen[cur]; cur = s.ParentOf(cur) {
		seen[cur] = true
		path = append(path, cur)
	}
	slices.Reverse(path)
	return path
}

// NodeAt returns the topmost node whose box contains p, or 0.
func (s *Store) NodeAt(p r2.Vec) int {
	for i := len(s.doc.Nodes) - 1; i >= 0; i-- {
		n := s.doc.Nodes[i]
		if geometry.PointInRect(p, n.Center(), n.Size()) {
			return n.ID
		}
	}
	return 0
}

// EdgeAt returns the most recent edge passing within tolerance of p, or 0.
func (s *Store) EdgeAt(p r2.Vec, tolerance float64) int {
	for i := len(s.doc.Edges) - 1; i >= 0; i-- {
		e := s.doc.Edges[i]
		a, b, ok := s.Endpoints(e)
		if !ok {
			continue
		}
		if geometry.DistPointToSeg(p, a, b) <= tolerance {
			return e.ID
		}
	}
	return 0
}

// NodesInRect returns, in store order, the nodes whose center lies inside r.
func (s *Store) NodesInRect(r geometry.Rect) []int {
	var ids []int
	for _, n := range s.doc.Nodes {
		if r.Contains(n.Center()) {
			ids = append(ids, n.ID)
		}
	}
	return ids
}
