package store

import (
	"mindmap/geometry"

	"gonum.org/v1/gonum/spatial/r2"
)

// Placement tuning. Attempt budgets are hard limits: when a search runs out
// the node goes to the last point tried, even if that overlaps.
const (
	NodePadding = 24.0
	EdgePadding = 12.0

	ChildRadius     = 160.0
	ChildRadiusStep = 60.0
	ChildAttempts   = 96
	ChildStepEvery  = 8

	StandaloneRadiusStep = 50.0
	AtAttempts           = 60
	CenterAttempts       = 120
	StandaloneStepEvery  = 6
)

var baseSize = r2.Vec{X: geometry.BaseWidth, Y: geometry.BaseHeight}

// IsPositionFree reports whether a base-size node centered at p would keep
// NodePadding clear of every node's bounding circle and EdgePadding clear of
// every edge, ignoring edges that touch excludeParent (0 for none).
func (s *Store) IsPositionFree(p r2.Vec, excludeParent int) bool {
	r0 := geometry.BoundingRadius(baseSize)

	for _, n := range s.doc.Nodes {
		limit := r0 + geometry.BoundingRadius(n.Size()) + NodePadding
		if geometry.Distance(p, n.Center()) < limit {
			return false
		}
	}

	for _, e := range s.doc.Edges {
		if excludeParent != 0 && e.Touches(excludeParent) {
			continue
		}
		a, b, ok := s.Endpoints(e)
		if !ok {
			continue
		}
		if geometry.DistPointToSeg(p, a, b) < r0+EdgePadding {
			return false
		}
	}
	return true
}

// findFree walks the golden-angle spiral and returns the first free point, or
// the last point tried once the attempt budget is spent.
func (s *Store) findFree(origin r2.Vec, startAngle, base, step float64, every, attempts, excludeParent int) r2.Vec {
	var p r2.Vec
	for i := 0; i < attempts; i++ {
		p = geometry.SpiralPoint(origin, i, startAngle, base, step, every)
		if s.IsPositionFree(p, excludeParent) {
			return p
		}
	}
	return p
}

// AddStandaloneAt creates an unconnected node at p, or near it when p is taken.
func (s *Store) AddStandaloneAt(p r2.Vec) int {
	if !s.IsPositionFree(p, 0) {
		p = s.findFree(p, 0, StandaloneRadiusStep, StandaloneRadiusStep, StandaloneStepEvery, AtAttempts, 0)
	}
	return s.insertNode(p, "", "")
}

// AddStandalone creates an unconnected node as close to center as space allows.
func (s *Store) AddStandalone(center r2.Vec) int {
	if !s.IsPositionFree(center, 0) {
		center = s.findFree(center, 0, StandaloneRadiusStep, StandaloneRadiusStep, StandaloneStepEvery, CenterAttempts, 0)
	}
	return s.insertNode(center, "", "")
}

// AddChild creates a node around parent, inheriting its colors, and connects
// them. The search starts at angle childIndex*GoldenAngle so consecutive
// children fan out. An unknown parent yields a standalone node at the origin.
func (s *Store) AddChild(parent int) int {
	pn, ok := s.Node(parent)
	if !ok {
		return s.AddStandalone(r2.Vec{})
	}

	index := len(s.ChildrenOf(parent))
	start := float64(index) * geometry.GoldenAngle
	p := s.findFree(pn.Center(), start, ChildRadius, ChildRadiusStep, ChildStepEvery, ChildAttempts, parent)

	id := s.insertNode(p, pn.Stroke, pn.Fill)
	s.EnsureEdge(parent, id)
	return id
}

// AddSiblingOf adds a child to id's parent. Without a parent it falls back to
// AddStandalone around center, the current view center.
func (s *Store) AddSiblingOf(id int, center r2.Vec) int {
	if p := s.ParentOf(id); p != 0 {
		return s.AddChild(p)
	}
	return s.AddStandalone(center)
}
