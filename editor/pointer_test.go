package editor

import (
	"math"
	"slices"
	"testing"

	"mindmap/persist"

	"github.com/google/go-cmp/cmp"
	"gonum.org/v1/gonum/spatial/r2"
)

func screenOf(e *Editor, world r2.Vec) r2.Vec {
	return e.Viewport().ToScreen(world)
}

// drag presses pointer 1 at from, moves through to, and releases there. All in world coordinates.
func drag(e *Editor, from, to r2.Vec, shift bool) {
	e.PointerDown(PointerEvent{Pointer: 1, Screen: screenOf(e, from), Shift: shift})
	mid := r2.Scale(0.5, r2.Add(from, to))
	e.PointerMove(PointerEvent{Pointer: 1, Screen: screenOf(e, mid), Shift: shift})
	e.PointerMove(PointerEvent{Pointer: 1, Screen: screenOf(e, to), Shift: shift})
	e.PointerUp(PointerEvent{Pointer: 1, Screen: screenOf(e, to), Shift: shift})
}

func center(t *testing.T, e *Editor, id int) r2.Vec {
	t.Helper()
	n, ok := e.Node(id)
	if !ok {
		t.Fatalf("Node %d not found", id)
	}
	return n.Center()
}

func TestMarqueeSelectsNodeCenters(t *testing.T) {
	e := editorWithNodes([]r2.Vec{{X: 0, Y: 0}, {X: 300, Y: 0}})
	e.gesture = gesture{kind: GestureMarquee, pointer: 1, startWorld: r2.Vec{X: -10, Y: -10}}
	e.pointers[1] = screenOf(e, r2.Vec{X: -10, Y: -10})

	e.PointerUp(PointerEvent{Pointer: 1, Screen: screenOf(e, r2.Vec{X: 310, Y: 10})})

	sel := e.Selection()
	if sel.Primary != 1 || !slices.Equal(sel.Nodes, []int{1, 2}) {
		t.Errorf("Expected both nodes selected with 1 primary, got %+v", sel)
	}
}

func TestMarqueeDrag(t *testing.T) {
	e := editorWithNodes([]r2.Vec{{X: 0, Y: 0}, {X: 300, Y: 0}, {X: 0, Y: 400}})

	e.PointerDown(PointerEvent{Pointer: 1, Screen: screenOf(e, r2.Vec{X: -60, Y: -40}), Shift: true})
	if e.Gesture() != GestureMarquee {
		t.Fatalf("Expected marquee, got %v", e.Gesture())
	}
	e.PointerMove(PointerEvent{Pointer: 1, Screen: screenOf(e, r2.Vec{X: 310, Y: 10}), Shift: true})
	if s := e.Scene(); s.Marquee == nil {
		t.Error("Expected a marquee preview in the scene")
	}
	e.PointerUp(PointerEvent{Pointer: 1, Screen: screenOf(e, r2.Vec{X: 310, Y: 10}), Shift: true})

	if got := e.Selection().Nodes; !slices.Equal(got, []int{1, 2}) {
		t.Errorf("Expected [1 2], got %v", got)
	}
	if e.Scene().Marquee != nil {
		t.Error("Marquee preview outlived the gesture")
	}
}

func TestEmptyMarqueeClearsSelection(t *testing.T) {
	e := editorWithNodes([]r2.Vec{{X: 0, Y: 0}})
	drag(e, r2.Vec{X: 200, Y: 200}, r2.Vec{X: 300, Y: 300}, true)
	if !e.Selection().Empty() {
		t.Errorf("Expected empty selection, got %+v", e.Selection())
	}
}

func TestDragNodeIsOneUndoStep(t *testing.T) {
	e := editorWithNodes([]r2.Vec{{X: 0, Y: 0}, {X: 300, Y: 0}})
	before := e.snapshot()

	drag(e, r2.Vec{X: 300, Y: 0}, r2.Vec{X: 360, Y: 50}, false)

	if got := center(t, e, 2); got != (r2.Vec{X: 360, Y: 50}) {
		t.Errorf("Expected node at (360,50), got %v", got)
	}
	if got := e.Selection().Primary; got != 2 {
		t.Errorf("Expected pressed node selected, got %d", got)
	}
	if undo, _ := e.HistoryStats(); undo != 1 {
		t.Fatalf("Expected 1 undo step, got %d", undo)
	}

	e.Undo()
	if diff := cmp.Diff(before, e.snapshot()); diff != "" {
		t.Errorf("Undo did not restore the pre-drag state (-want +got):\n%s", diff)
	}
}

func TestDragKeepsGrabOffset(t *testing.T) {
	e := editorWithNodes([]r2.Vec{{X: 0, Y: 0}})
	drag(e, r2.Vec{X: 10, Y: 5}, r2.Vec{X: 110, Y: 5}, false)
	if got := center(t, e, 1); got != (r2.Vec{X: 100, Y: 0}) {
		t.Errorf("Expected node at (100,0), got %v", got)
	}
}

func TestClickWithoutMovingPushesNothing(t *testing.T) {
	e := editorWithNodes([]r2.Vec{{X: 0, Y: 0}, {X: 300, Y: 0}})
	e.PointerDown(PointerEvent{Pointer: 1, Screen: screenOf(e, r2.Vec{X: 300})})
	e.PointerUp(PointerEvent{Pointer: 1, Screen: screenOf(e, r2.Vec{X: 300})})

	if undo, _ := e.HistoryStats(); undo != 0 {
		t.Errorf("Expected no undo step, got %d", undo)
	}
	if got := e.Selection().Primary; got != 2 {
		t.Errorf("Expected click to select 2, got %d", got)
	}
}

func TestDragGroup(t *testing.T) {
	e := editorWithNodes([]r2.Vec{{X: 0, Y: 0}, {X: 300, Y: 0}, {X: 0, Y: 400}})
	e.setSelection(nodeSelection(1, 2))

	drag(e, r2.Vec{X: 0, Y: 0}, r2.Vec{X: 50, Y: 20}, false)

	if got := center(t, e, 1); got != (r2.Vec{X: 50, Y: 20}) {
		t.Errorf("Node 1: expected (50,20), got %v", got)
	}
	if got := center(t, e, 2); got != (r2.Vec{X: 350, Y: 20}) {
		t.Errorf("Node 2: expected (350,20), got %v", got)
	}
	if got := center(t, e, 3); got != (r2.Vec{X: 0, Y: 400}) {
		t.Errorf("Unselected node moved to %v", got)
	}
	if undo, _ := e.HistoryStats(); undo != 1 {
		t.Errorf("Expected 1 undo step, got %d", undo)
	}
	if got := e.Selection().Nodes; !slices.Equal(got, []int{1, 2}) {
		t.Errorf("Group drag changed the selection to %v", got)
	}
}

func TestLinkGestureCreatesEdge(t *testing.T) {
	e := editorWithNodes([]r2.Vec{{X: 0, Y: 0}, {X: 300, Y: 0}})

	e.PointerDown(PointerEvent{Pointer: 1, Screen: screenOf(e, r2.Vec{}), Shift: true})
	e.PointerMove(PointerEvent{Pointer: 1, Screen: screenOf(e, r2.Vec{X: 150}), Shift: true})
	if e.Gesture() != GestureLinkActive {
		t.Fatalf("Expected active link, got %v", e.Gesture())
	}
	if s := e.Scene(); s.Link == nil || s.Link.Source != 1 || s.Link.To != (r2.Vec{X: 150}) {
		t.Errorf("Unexpected link preview %+v", s.Link)
	}
	e.PointerUp(PointerEvent{Pointer: 1, Screen: screenOf(e, r2.Vec{X: 300}), Shift: true})

	doc := e.Document()
	if len(doc.Edges) != 1 || !doc.Edges[0].Connects(1, 2) || doc.Edges[0].Source != 1 {
		t.Errorf("Expected edge 1->2, got %+v", doc.Edges)
	}
	if got := e.Selection().Primary; got != 2 {
		t.Errorf("Expected target selected, got %d", got)
	}
	if center(t, e, 1) != (r2.Vec{}) {
		t.Error("Link gesture moved the source node")
	}
}

func TestLinkToExistingPairAddsNothing(t *testing.T) {
	e := editorWithNodes([]r2.Vec{{X: 0, Y: 0}, {X: 300, Y: 0}}, [2]int{2, 1})
	drag(e, r2.Vec{}, r2.Vec{X: 300}, true)

	if n := len(e.Document().Edges); n != 1 {
		t.Errorf("Expected 1 edge, got %d", n)
	}
	if undo, _ := e.HistoryStats(); undo != 0 {
		t.Errorf("Expected no undo step, got %d", undo)
	}
	if got := e.Selection().Primary; got != 2 {
		t.Errorf("Expected target selected, got %d", got)
	}
}

func TestLinkReleasedOnBackgroundCancels(t *testing.T) {
	e := editorWithNodes([]r2.Vec{{X: 0, Y: 0}, {X: 300, Y: 0}})
	drag(e, r2.Vec{}, r2.Vec{X: 150, Y: 200}, true)

	if n := len(e.Document().Edges); n != 0 {
		t.Errorf("Expected no edge, got %d", n)
	}
	if e.Gesture() != GestureIdle {
		t.Errorf("Expected idle, got %v", e.Gesture())
	}
}

func TestShiftClickTogglesSelection(t *testing.T) {
	e := editorWithNodes([]r2.Vec{{X: 0, Y: 0}, {X: 300, Y: 0}})
	click := func(world r2.Vec) {
		e.PointerDown(PointerEvent{Pointer: 1, Screen: screenOf(e, world), Shift: true})
		e.PointerUp(PointerEvent{Pointer: 1, Screen: screenOf(e, world), Shift: true})
	}

	click(r2.Vec{X: 300})
	if got := e.Selection().Nodes; !slices.Equal(got, []int{1, 2}) {
		t.Errorf("Expected [1 2], got %v", got)
	}
	click(r2.Vec{})
	if got := e.Selection(); !slices.Equal(got.Nodes, []int{2}) || got.Primary != 2 {
		t.Errorf("Expected only 2, got %+v", got)
	}
}

func TestBackgroundPressPans(t *testing.T) {
	e := editorWithNodes([]r2.Vec{{X: 0, Y: 0}})
	start := e.Viewport().Pan

	e.PointerDown(PointerEvent{Pointer: 1, Screen: r2.Vec{X: 100, Y: 100}})
	if !e.Selection().Empty() {
		t.Error("Background press should clear the selection")
	}
	e.PointerMove(PointerEvent{Pointer: 1, Screen: r2.Vec{X: 150, Y: 120}})
	e.PointerUp(PointerEvent{Pointer: 1, Screen: r2.Vec{X: 150, Y: 120}})

	want := r2.Add(start, r2.Vec{X: 50, Y: 20})
	if got := e.Viewport().Pan; got != want {
		t.Errorf("Expected pan %v, got %v", want, got)
	}
	if undo, _ := e.HistoryStats(); undo != 0 {
		t.Errorf("Panning should not be undoable, got %d steps", undo)
	}
}

func TestPressNearEdgeSelectsIt(t *testing.T) {
	e := editorWithNodes([]r2.Vec{{X: 0, Y: 0}, {X: 300, Y: 0}}, [2]int{1, 2})
	e.PointerDown(PointerEvent{Pointer: 1, Screen: screenOf(e, r2.Vec{X: 150, Y: 5})})

	sel := e.Selection()
	if !slices.Equal(sel.Edges, []int{1}) || len(sel.Nodes) != 0 {
		t.Errorf("Expected edge 1 selected, got %+v", sel)
	}
	if e.Gesture() != GestureIdle {
		t.Errorf("Expected no pan after selecting an edge, got %v", e.Gesture())
	}
}

func TestPinchZoom(t *testing.T) {
	e := editorWithNodes([]r2.Vec{{X: 0, Y: 0}})
	origin := screenOf(e, r2.Vec{})
	left := r2.Sub(origin, r2.Vec{X: 100})
	right := r2.Add(origin, r2.Vec{X: 100})
	// Start away from the node so the first pointer pans.
	left.Y += 200
	right.Y += 200

	e.PointerDown(PointerEvent{Pointer: 1, Screen: left})
	e.PointerDown(PointerEvent{Pointer: 2, Screen: right})
	if e.Gesture() != GesturePinch {
		t.Fatalf("Expected pinch, got %v", e.Gesture())
	}
	anchor := e.Viewport().ToWorld(r2.Scale(0.5, r2.Add(left, right)))

	right2 := r2.Add(right, r2.Vec{X: 200})
	e.PointerMove(PointerEvent{Pointer: 2, Screen: right2})

	v := e.Viewport()
	if math.Abs(v.Scale-2) > 1e-9 {
		t.Errorf("Expected scale 2, got %v", v.Scale)
	}
	centroid := r2.Scale(0.5, r2.Add(left, right2))
	if !near(v.ToScreen(anchor), centroid) {
		t.Errorf("Expected anchor under centroid %v, got %v", centroid, v.ToScreen(anchor))
	}

	e.PointerUp(PointerEvent{Pointer: 2, Screen: right2})
	if e.Gesture() != GestureIdle {
		t.Errorf("Expected pinch to end, got %v", e.Gesture())
	}
}

func TestPinchClampsScale(t *testing.T) {
	e := editorWithNodes(nil)
	e.PointerDown(PointerEvent{Pointer: 1, Screen: r2.Vec{X: 100, Y: 100}})
	e.PointerDown(PointerEvent{Pointer: 2, Screen: r2.Vec{X: 110, Y: 100}})
	e.PointerMove(PointerEvent{Pointer: 2, Screen: r2.Vec{X: 1100, Y: 100}})

	if got := e.Viewport().Scale; got != MaxScale {
		t.Errorf("Expected scale clamped to %v, got %v", MaxScale, got)
	}
}

func TestCancelAbortsWithoutCommit(t *testing.T) {
	e := editorWithNodes([]r2.Vec{{X: 0, Y: 0}, {X: 300, Y: 0}})

	e.PointerDown(PointerEvent{Pointer: 1, Screen: screenOf(e, r2.Vec{}), Shift: true})
	e.PointerMove(PointerEvent{Pointer: 1, Screen: screenOf(e, r2.Vec{X: 300}), Shift: true})
	e.PointerCancel(PointerEvent{Pointer: 1})

	if n := len(e.Document().Edges); n != 0 {
		t.Errorf("Cancelled link created %d edges", n)
	}
	if e.Gesture() != GestureIdle {
		t.Errorf("Expected idle, got %v", e.Gesture())
	}
}

func TestCancelKeepsDraggedPosition(t *testing.T) {
	e := editorWithNodes([]r2.Vec{{X: 0, Y: 0}})
	e.PointerDown(PointerEvent{Pointer: 1, Screen: screenOf(e, r2.Vec{})})
	e.PointerMove(PointerEvent{Pointer: 1, Screen: screenOf(e, r2.Vec{X: 40, Y: 40})})
	e.PointerCancel(PointerEvent{Pointer: 1})

	if undo, _ := e.HistoryStats(); undo != 1 {
		t.Errorf("Expected the drag to be recorded, got %d steps", undo)
	}
}

func TestWheelZoomKeepsCursorPoint(t *testing.T) {
	e := editorWithNodes([]r2.Vec{{X: 0, Y: 0}})
	cursor := r2.Vec{X: 900, Y: 300}
	world := e.Viewport().ToWorld(cursor)

	e.Wheel(WheelEvent{Screen: cursor, Delta: r2.Vec{Y: -120}})

	v := e.Viewport()
	if v.Scale <= 1 {
		t.Errorf("Expected wheel up to zoom in, got scale %v", v.Scale)
	}
	if !near(v.ToScreen(world), cursor) {
		t.Errorf("Expected %v to stay under the cursor, got %v", world, v.ToScreen(world))
	}
}

func TestShiftWheelPans(t *testing.T) {
	e := editorWithNodes([]r2.Vec{{X: 0, Y: 0}})
	start := e.Viewport()

	e.Wheel(WheelEvent{Screen: r2.Vec{X: 10, Y: 10}, Delta: r2.Vec{X: 30, Y: -40}, Shift: true})

	v := e.Viewport()
	if want := r2.Add(start.Pan, r2.Vec{X: -30, Y: 40}); v.Pan != want {
		t.Errorf("Expected pan %v, got %v", want, v.Pan)
	}
	if v.Scale != start.Scale {
		t.Errorf("Shift wheel changed the scale to %v", v.Scale)
	}
}

func TestDragSavesOnceAtEnd(t *testing.T) {
	e := editorWithNodes([]r2.Vec{{X: 0, Y: 0}})
	bs := persist.NewMemoryStore(nil)
	e.SetPersister(bs)

	e.PointerDown(PointerEvent{Pointer: 1, Screen: screenOf(e, r2.Vec{})})
	for i := 1; i <= 5; i++ {
		e.PointerMove(PointerEvent{Pointer: 1, Screen: screenOf(e, r2.Vec{X: float64(i * 10)})})
	}
	if bs.Saves() != 0 {
		t.Errorf("Expected no saves mid-drag, got %d", bs.Saves())
	}
	e.PointerUp(PointerEvent{Pointer: 1, Screen: screenOf(e, r2.Vec{X: 50})})
	if bs.Saves() != 1 {
		t.Errorf("Expected 1 save after the drag, got %d", bs.Saves())
	}
}

func TestGestureKindString(t *testing.T) {
	tests := map[GestureKind]string{
		GestureIdle:       "IDLE",
		GesturePanning:    "PAN",
		GestureLinkActive: "LINK",
		GestureKind(99):   "UNKNOWN",
	}
	for kind, want := range tests {
		if got := kind.String(); got != want {
			t.Errorf("Expected %q, got %q", want, got)
		}
	}
}

func TestTypingDuringDragSplitsUndo(t *testing.T) {
	e := editorWithNodes([]r2.Vec{{X: 0, Y: 0}, {X: 300, Y: 0}})
	start := e.snapshot()

	e.PointerDown(PointerEvent{Pointer: 1, Screen: screenOf(e, r2.Vec{X: 300})})
	e.PointerMove(PointerEvent{Pointer: 1, Screen: screenOf(e, r2.Vec{X: 400})})
	moved := e.snapshot()
	e.HandleKey(KeyEvent{Key: KeyRune, Rune: 'x'})
	typed := e.snapshot()
	e.PointerMove(PointerEvent{Pointer: 1, Screen: screenOf(e, r2.Vec{X: 500})})
	e.PointerUp(PointerEvent{Pointer: 1, Screen: screenOf(e, r2.Vec{X: 500})})

	if undo, _ := e.HistoryStats(); undo != 3 {
		t.Fatalf("Expected 3 undo steps, got %d", undo)
	}
	for i, want := range []Snapshot{typed, moved, start} {
		e.Undo()
		if diff := cmp.Diff(want, e.snapshot()); diff != "" {
			t.Errorf("Undo %d restored the wrong state (-want +got):\n%s", i+1, diff)
		}
	}
}
