package store

import (
	"reflect"
	"testing"

	"mindmap/diagram"
	"mindmap/geometry"

	"gonum.org/v1/gonum/spatial/r2"
)

// ===== Test helpers =====

func newTestStore() *Store {
	return New(diagram.NewDocument())
}

// storeWithNodes builds a store with unconnected nodes at the given positions,
// ids 1..len(points).
func storeWithNodes(points ...r2.Vec) *Store {
	doc := diagram.Document{}
	for i, p := range points {
		doc.Nodes = append(doc.Nodes, diagram.Node{ID: i + 1, X: p.X, Y: p.Y})
	}
	return New(doc)
}

func TestNewLaysOutNodes(t *testing.T) {
	s := newTestStore()
	n, ok := s.Node(1)
	if !ok {
		t.Fatal("Starting node missing")
	}
	want := geometry.LayoutLabel(diagram.StartLabel, geometry.DefaultFontSize, 0)
	if n.W != want.Width || n.H != want.Height {
		t.Errorf("Expected %vx%v, got %vx%v", want.Width, want.Height, n.W, n.H)
	}
	if n.Stroke != diagram.DefaultStroke {
		t.Errorf("Expected default stroke, got %q", n.Stroke)
	}
}

func TestAddChildCreatesEdgeAndInheritsColors(t *testing.T) {
	s := newTestStore()
	s.SetFill(1, "#ffec99")
	s.SetStroke(1, "#e03131")

	id := s.AddChild(1)
	if id != 2 {
		t.Errorf("Expected id 2, got %d", id)
	}
	if s.ParentOf(id) != 1 {
		t.Errorf("Expected parent 1, got %d", s.ParentOf(id))
	}
	n, _ := s.Node(id)
	if n.Fill != "#ffec99" || n.Stroke != "#e03131" {
		t.Errorf("Colors not inherited: fill=%q stroke=%q", n.Fill, n.Stroke)
	}
	if n.W < geometry.BaseWidth || n.H < geometry.BaseHeight {
		t.Errorf("New node smaller than base: %vx%v", n.W, n.H)
	}
}

func TestAddChildIsCollisionFree(t *testing.T) {
	s := newTestStore()
	var kids []int
	for i := 0; i < 20; i++ {
		kids = append(kids, s.AddChild(1))
	}

	minGap := 2*geometry.BoundingRadius(baseSize) + NodePadding
	for i := 0; i < len(kids); i++ {
		a, _ := s.Node(kids[i])
		for j := i + 1; j < len(kids); j++ {
			b, _ := s.Node(kids[j])
			if d := geometry.Distance(a.Center(), b.Center()); d < minGap-1e-9 {
				t.Errorf("Children %d and %d are %.1f apart, want at least %.1f", a.ID, b.ID, d, minGap)
			}
		}
	}
}

func TestAddStandaloneAtFreeSpotKeepsPoint(t *testing.T) {
	s := newTestStore()
	p := r2.Vec{X: 1000, Y: 1000}
	id := s.AddStandaloneAt(p)
	n, _ := s.Node(id)
	if n.Center() != p {
		t.Errorf("Expected node at %v, got %v", p, n.Center())
	}
}

func TestAddStandaloneAtOccupiedSpotMoves(t *testing.T) {
	s := newTestStore()
	id := s.AddStandaloneAt(r2.Vec{})
	n, _ := s.Node(id)
	if n.Center() == (r2.Vec{}) {
		t.Fatal("Node placed on top of the existing node")
	}
	if !s.IsPositionFree(r2.Vec{X: 5000}, 0) {
		t.Error("Far away point should be free")
	}
}

func TestAddStandaloneNeverFails(t *testing.T) {
	s := newTestStore()
	for i := 0; i < 300; i++ {
		s.AddStandalone(r2.Vec{})
	}
	if s.Len() != 301 {
		t.Errorf("Expected 301 nodes, got %d", s.Len())
	}
}

func TestAddSiblingOf(t *testing.T) {
	s := newTestStore()
	child := s.AddChild(1)
	sibling := s.AddSiblingOf(child, r2.Vec{})
	if s.ParentOf(sibling) != 1 {
		t.Errorf("Expected sibling under 1, got parent %d", s.ParentOf(sibling))
	}

	root := s.AddSiblingOf(1, r2.Vec{X: 2000, Y: 2000})
	if s.ParentOf(root) != 0 {
		t.Error("Sibling of a root should be standalone")
	}
	n, _ := s.Node(root)
	if n.Center() != (r2.Vec{X: 2000, Y: 2000}) {
		t.Errorf("Expected standalone at view center, got %v", n.Center())
	}
}

func TestRemoveNodesPurgesEdges(t *testing.T) {
	s := newTestStore()
	a := s.AddChild(1)
	b := s.AddChild(a)
	s.EnsureEdge(b, 1)

	s.RemoveNodes([]int{a})
	for _, e := range s.Edges() {
		if e.Touches(a) {
			t.Errorf("Edge %d still references removed node %d", e.ID, a)
		}
	}
	if s.EdgeBetween(b, 1) == 0 {
		t.Error("Unrelated edge was removed")
	}
}

func TestRemoveStandaloneLeavesEdges(t *testing.T) {
	s := newTestStore()
	child := s.AddChild(1)
	lone := s.AddStandalone(r2.Vec{X: 3000})
	before := s.Edges()

	s.RemoveNodes([]int{lone})
	if !reflect.DeepEqual(before, s.Edges()) {
		t.Errorf("Edge set changed: %v -> %v", before, s.Edges())
	}
	if !s.Has(child) {
		t.Error("Child disappeared")
	}
}

func TestRemoveNodesClimb(t *testing.T) {
	s := newTestStore()
	a := s.AddChild(1)
	b := s.AddChild(1)

	if got := s.RemoveNodes([]int{a}); got != 1 {
		t.Errorf("Expected climb to 1, got %d", got)
	}
	if got := s.RemoveNodes([]int{b, 1}); got != 0 {
		t.Errorf("Expected no climb for multi removal, got %d", got)
	}
	if got := s.RemoveNodes([]int{99}); got != 0 {
		t.Errorf("Expected no climb for unknown id, got %d", got)
	}
}

func TestIDsAreNotReused(t *testing.T) {
	s := newTestStore()
	a := s.AddChild(1)
	s.RemoveNodes([]int{a})
	b := s.AddChild(1)
	if b == a {
		t.Errorf("Node id %d reused after deletion", a)
	}

	e1 := s.EdgeBetween(1, b)
	s.RemoveEdges([]int{e1})
	e2, _ := s.EnsureEdge(1, b)
	if e2 == e1 {
		t.Errorf("Edge id %d reused after deletion", e1)
	}
}

func TestEnsureEdge(t *testing.T) {
	s := storeWithNodes(r2.Vec{}, r2.Vec{X: 300})

	id, created := s.EnsureEdge(1, 2)
	if !created || id == 0 {
		t.Fatal("Expected a new edge")
	}
	if again, created := s.EnsureEdge(1, 2); created || again != id {
		t.Error("Second EnsureEdge created a duplicate")
	}
	if _, created := s.EnsureEdge(2, 1); created {
		t.Error("Reverse direction created a duplicate")
	}
	if _, created := s.EnsureEdge(1, 1); created {
		t.Error("Self loop created")
	}
	if _, created := s.EnsureEdge(1, 42); created {
		t.Error("Edge to a missing node created")
	}
	if len(s.Edges()) != 1 {
		t.Errorf("Expected 1 edge, got %d", len(s.Edges()))
	}
}

func TestParentUsesFirstEdge(t *testing.T) {
	s := storeWithNodes(r2.Vec{}, r2.Vec{X: 300}, r2.Vec{X: 600})
	s.EnsureEdge(2, 3)
	s.EnsureEdge(1, 3)

	if got := s.ParentOf(3); got != 2 {
		t.Errorf("Expected first edge source 2, got %d", got)
	}
	if got := s.ChildrenOf(1); len(got) != 0 {
		t.Errorf("Node 1 should have no children, got %v", got)
	}
	if got := s.RootPath(3); !reflect.DeepEqual(got, []int{2, 3}) {
		t.Errorf("Expected path [2 3], got %v", got)
	}
}

func TestRootPathSurvivesCycles(t *testing.T) {
	s := storeWithNodes(r2.Vec{}, r2.Vec{X: 300})
	s.doc.Edges = []diagram.Edge{
		{ID: 1, Source: 1, Target: 2},
		{ID: 2, Source: 2, Target: 1},
	}
	if got := s.RootPath(2); len(got) != 2 {
		t.Errorf("Expected a two node path, got %v", got)
	}
}

func TestSiblingsClockwise(t *testing.T) {
	s := storeWithNodes(
		r2.Vec{},              // 1 parent
		r2.Vec{X: 200},        // 2 right
		r2.Vec{Y: 200},        // 3 below
		r2.Vec{X: -200},       // 4 left
		r2.Vec{Y: -200},       // 5 above
	)
	for id := 2; id <= 5; id++ {
		s.EnsureEdge(1, id)
	}

	// Clockwise on screen starting from the left: left, above, right, below.
	want := []int{4, 5, 2, 3}
	if got := s.SiblingsClockwise(2); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
	if got := s.SiblingsClockwise(1); got != nil {
		t.Errorf("Root should have no siblings, got %v", got)
	}
}

func TestChildrenSortedByID(t *testing.T) {
	s := storeWithNodes(r2.Vec{}, r2.Vec{X: 300}, r2.Vec{X: -300}, r2.Vec{Y: 300})
	s.EnsureEdge(1, 4)
	s.EnsureEdge(1, 2)
	s.EnsureEdge(1, 3)
	if got := s.ChildrenOf(1); !reflect.DeepEqual(got, []int{2, 3, 4}) {
		t.Errorf("Expected [2 3 4], got %v", got)
	}
}

func TestDanglingEdgesAreSkipped(t *testing.T) {
	s := storeWithNodes(r2.Vec{}, r2.Vec{X: 300})
	s.doc.Edges = []diagram.Edge{{ID: 7, Source: 1, Target: 99}}

	if !s.IsPositionFree(r2.Vec{X: 1000}, 0) {
		t.Error("Dangling edge should not block placement")
	}
	if s.EdgeAt(r2.Vec{X: 150}, 10) != 0 {
		t.Error("Dangling edge should not be hit")
	}
	if s.ParentOf(99) != 0 {
		t.Error("Missing node should have no parent")
	}
	if got := s.ChildrenOf(1); len(got) != 0 {
		t.Errorf("Dangling edge should yield no children, got %v", got)
	}
}

func TestHitTesting(t *testing.T) {
	s := storeWithNodes(r2.Vec{}, r2.Vec{X: 300})
	s.EnsureEdge(1, 2)

	if got := s.NodeAt(r2.Vec{X: 10, Y: 5}); got != 1 {
		t.Errorf("Expected node 1, got %d", got)
	}
	if got := s.NodeAt(r2.Vec{X: 150, Y: 100}); got != 0 {
		t.Errorf("Expected no node, got %d", got)
	}
	if got := s.EdgeAt(r2.Vec{X: 150, Y: 3}, 6); got == 0 {
		t.Error("Expected edge hit")
	}

	r := geometry.RectFromPoints(r2.Vec{X: -10, Y: -10}, r2.Vec{X: 310, Y: 10})
	if got := s.NodesInRect(r); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Errorf("Expected [1 2], got %v", got)
	}
}

func TestResizeNodeClamps(t *testing.T) {
	s := newTestStore()
	for i := 0; i < 20; i++ {
		s.ResizeNode(1, 1.2, 1.15)
	}
	n, _ := s.Node(1)
	if n.W > MaxBoxWidth || n.H > MaxBoxHeight {
		t.Errorf("Grew past limits: %vx%v", n.W, n.H)
	}
	if n.W != MaxBoxWidth || n.H != MaxBoxHeight {
		t.Errorf("Expected to reach limits, got %vx%v", n.W, n.H)
	}

	for i := 0; i < 20; i++ {
		s.ResizeNode(1, 1/1.2, 1/1.15)
	}
	n, _ = s.Node(1)
	label := LabelOf(diagram.Node{Label: n.Label})
	if n.W != label.Width || n.H != label.Height {
		t.Errorf("Shrinking should stop at the label size, got %vx%v", n.W, n.H)
	}

	rev := s.Revision()
	if s.ResizeNode(1, 1/1.2, 1/1.15) {
		t.Error("Shrinking at the floor should report no change")
	}
	if s.Revision() != rev {
		t.Error("Shrinking at the floor moved the revision")
	}
}

func TestLabelEditingRelayouts(t *testing.T) {
	s := storeWithNodes(r2.Vec{})
	s.SetLabel(1, "")
	before, _ := s.Node(1)

	s.AppendLabel(1, "a considerably longer label than before")
	after, _ := s.Node(1)
	if after.W <= before.W && after.H <= before.H {
		t.Error("Node did not grow with its label")
	}

	if s.TrimLabel(1) == false {
		t.Error("Trim of non-empty label reported no change")
	}
	s.SetLabel(1, "")
	if s.TrimLabel(1) {
		t.Error("Trim of empty label reported a change")
	}
}

func TestTrimLabelHandlesMultibyte(t *testing.T) {
	s := storeWithNodes(r2.Vec{})
	s.SetLabel(1, "héé")
	s.TrimLabel(1)
	n, _ := s.Node(1)
	if n.Label != "hé" {
		t.Errorf("Expected %q, got %q", "hé", n.Label)
	}
}

func TestReadsAreCopies(t *testing.T) {
	s := newTestStore()
	nodes := s.Nodes()
	nodes[0].Label = "mutated"
	if n, _ := s.Node(1); n.Label == "mutated" {
		t.Error("Nodes() exposed internal storage")
	}
}

func TestRevisionTracksMutations(t *testing.T) {
	s := newTestStore()
	rev := s.Revision()

	s.SetLabel(1, s.doc.Nodes[0].Label)
	if s.Revision() != rev {
		t.Error("No-op label change moved the revision")
	}

	s.AddChild(1)
	if s.Revision() == rev {
		t.Error("AddChild did not move the revision")
	}

	rev = s.Revision()
	s.RemoveEdges([]int{99})
	if s.Revision() != rev {
		t.Error("Removing a missing edge moved the revision")
	}
}

func TestFontSizeAppliesToNewNodes(t *testing.T) {
	s := newTestStore()
	s.SetFontSize(24)
	id := s.AddStandalone(r2.Vec{X: 500, Y: 500})
	n, _ := s.Node(id)
	if n.FontSize != 24 {
		t.Errorf("Expected font size 24, got %v", n.FontSize)
	}
	if l := LabelOf(n); l.FontSize != 24 {
		t.Errorf("Expected layout at 24, got %v", l.FontSize)
	}
}
