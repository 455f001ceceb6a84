package editor

import (
	"math"

	"mindmap/geometry"

	"gonum.org/v1/gonum/spatial/r2"
)

// PointerEvent is a press, move, release or cancel of one pointer (mouse
// button or touch) at a screen position.
type PointerEvent struct {
	Pointer int    `json:"pointer"`
	Screen  r2.Vec `json:"screen"`
	Shift   bool   `json:"shift"`
}

// WheelEvent is a scroll at a screen position. Delta is in screen pixels.
type WheelEvent struct {
	Screen r2.Vec `json:"screen"`
	Delta  r2.Vec `json:"delta"`
	Shift  bool   `json:"shift"`
}

// gesture is the single value describing what the pointer is doing.
// Only the fields relevant to kind are meaningful.
type gesture struct {
	kind    GestureKind
	pointer int // Pointer that owns the gesture

	startScreen r2.Vec
	startWorld  r2.Vec
	startPan    r2.Vec
	current     r2.Vec // Latest world position (marquee, link)

	node    int            // Dragged node or link source
	grab    r2.Vec         // Node center minus press point
	origins map[int]r2.Vec // Group positions at gesture start
	moved   bool
	before  *Snapshot // State to push once the drag ends

	pinch      [2]int
	startDist  float64
	startScale float64
	anchor     r2.Vec // World point under the initial centroid
}

// PointerDown starts a gesture.
func (e *Editor) PointerDown(ev PointerEvent) {
	e.run(func() {
		e.pointers[ev.Pointer] = ev.Screen

		if len(e.pointers) >= 2 {
			if e.gesture.kind == GestureIdle || e.gesture.kind == GesturePanning {
				e.startPinch(ev.Pointer)
			}
			return
		}
		if e.gesture.kind != GestureIdle {
			return
		}

		world := e.view.ToWorld(ev.Screen)
		g := gesture{
			pointer:     ev.Pointer,
			startScreen: ev.Screen,
			startWorld:  world,
			startPan:    e.view.Pan,
			current:     world,
		}

		if hit := e.store.NodeAt(world); hit != 0 {
			e.pressNode(g, hit, ev.Shift)
			return
		}

		if ev.Shift {
			g.kind = GestureMarquee
			e.gesture = g
			return
		}

		if edge := e.store.EdgeAt(world, e.opts.EdgeHitTolerance/e.view.Scale); edge != 0 {
			e.setSelection(edgeSelection(edge))
			return
		}
		e.clearSelection()
		g.kind = GesturePanning
		e.gesture = g
	})
}

func (e *Editor) pressNode(g gesture, id int, shift bool) {
	g.node = id
	if shift {
		g.kind = GestureLinkPending
		e.gesture = g
		return
	}

	before := e.snapshot()
	g.before = &before

	if e.sel.HasNode(id) && len(e.sel.Nodes) > 1 {
		g.kind = GestureDraggingGroup
		g.origins = make(map[int]r2.Vec, len(e.sel.Nodes))
		for _, sid := range e.sel.Nodes {
			if n, ok := e.store.Node(sid); ok {
				g.origins[sid] = n.Center()
			}
		}
		e.gesture = g
		return
	}

	n, _ := e.store.Node(id)
	g.kind = GestureDraggingNode
	g.grab = r2.Sub(n.Center(), g.startWorld)
	e.selectNode(id)
	e.gesture = g
}

func (e *Editor) startPinch(pointer int) {
	other := e.gesture.pointer
	if e.gesture.kind == GestureIdle || other == pointer {
		for id := range e.pointers {
			if id != pointer {
				other = id
				break
			}
		}
	}
	a, b := e.pointers[other], e.pointers[pointer]
	centroid := r2.Scale(0.5, r2.Add(a, b))

	e.gesture = gesture{
		kind:       GesturePinch,
		pointer:    pointer,
		pinch:      [2]int{other, pointer},
		startDist:  geometry.Distance(a, b),
		startScale: e.view.Scale,
		anchor:     e.view.ToWorld(centroid),
	}
}

// PointerMove advances the gesture owned by the pointer.
func (e *Editor) PointerMove(ev PointerEvent) {
	e.run(func() {
		if _, down := e.pointers[ev.Pointer]; down {
			e.pointers[ev.Pointer] = ev.Screen
		}

		g := &e.gesture
		if g.kind == GesturePinch {
			if ev.Pointer == g.pinch[0] || ev.Pointer == g.pinch[1] {
				e.updatePinch()
			}
			return
		}
		if g.kind == GestureIdle || ev.Pointer != g.pointer {
			return
		}

		world := e.view.ToWorld(ev.Screen)
		switch g.kind {
		case GesturePanning:
			e.view.Pan = r2.Add(g.startPan, r2.Sub(ev.Screen, g.startScreen))

		case GestureDraggingNode:
			if e.store.MoveNode(g.node, r2.Add(world, g.grab)) {
				g.moved = true
			}

		case GestureDraggingGroup:
			delta := r2.Sub(world, g.startWorld)
			for id, origin := range g.origins {
				if e.store.MoveNode(id, r2.Add(origin, delta)) {
					g.moved = true
				}
			}

		case GestureMarquee:
			g.current = world

		case GestureLinkPending:
			g.current = world
			if geometry.Distance(world, g.startWorld) > e.opts.DragThreshold/e.view.Scale {
				g.kind = GestureLinkActive
			}

		case GestureLinkActive:
			g.current = world
		}
	})
}

func (e *Editor) updatePinch() {
	g := &e.gesture
	a, b := e.pointers[g.pinch[0]], e.pointers[g.pinch[1]]
	if g.startDist == 0 {
		return
	}
	centroid := r2.Scale(0.5, r2.Add(a, b))
	e.view.Scale = geometry.Clamp(g.startScale*geometry.Distance(a, b)/g.startDist, MinScale, MaxScale)
	e.view.Pan = r2.Sub(centroid, r2.Scale(e.view.Scale, g.anchor))
}

// PointerUp commits the gesture owned by the pointer.
func (e *Editor) PointerUp(ev PointerEvent) {
	e.run(func() {
		delete(e.pointers, ev.Pointer)

		g := e.gesture
		if g.kind == GesturePinch {
			if ev.Pointer == g.pinch[0] || ev.Pointer == g.pinch[1] {
				e.gesture = gesture{}
			}
			return
		}
		if g.kind == GestureIdle || ev.Pointer != g.pointer {
			return
		}
		e.gesture = gesture{}

		world := e.view.ToWorld(ev.Screen)
		switch g.kind {
		case GestureDraggingNode, GestureDraggingGroup:
			e.commitDrag(g)

		case GestureMarquee:
			r := geometry.RectFromPoints(g.startWorld, world)
			e.setSelection(nodeSelection(e.store.NodesInRect(r)...))

		case GestureLinkPending:
			e.toggleNode(g.node)

		case GestureLinkActive:
			target := e.store.NodeAt(world)
			if target == 0 || target == g.node {
				return
			}
			e.mutate(func() {
				e.store.EnsureEdge(g.node, target)
			})
			e.selectNode(target)
		}
	})
}

// PointerCancel ends the gesture owned by the pointer. Pans, pinches,
// marquees and links are dropped; a drag keeps what it moved.
func (e *Editor) PointerCancel(ev PointerEvent) {
	e.run(func() {
		delete(e.pointers, ev.Pointer)

		g := e.gesture
		owns := ev.Pointer == g.pointer || (g.kind == GesturePinch && (ev.Pointer == g.pinch[0] || ev.Pointer == g.pinch[1]))
		if g.kind == GestureIdle || !owns {
			return
		}
		e.gesture = gesture{}
		if g.kind.Dragging() {
			e.commitDrag(g)
		}
	})
}

// commitDrag records a finished drag as one undo step.
func (e *Editor) commitDrag(g gesture) {
	if g.moved && g.before != nil {
		e.history.Push(*g.before)
	}
}

// Wheel zooms around the cursor, or pans with shift held.
func (e *Editor) Wheel(ev WheelEvent) {
	e.run(func() {
		if ev.Shift {
			e.view.PanBy(r2.Scale(-1, ev.Delta))
			return
		}
		factor := math.Exp(-ev.Delta.Y * e.opts.WheelZoomRate)
		e.view.ZoomAt(ev.Screen, e.view.Scale*factor)
	})
}

// ZoomBy scales the view around its center.
func (e *Editor) ZoomBy(factor float64) {
	e.run(func() {
		e.view.ZoomAt(r2.Scale(0.5, e.view.Size), e.view.Scale*factor)
	})
}

// PanBy shifts the view by d screen pixels.
func (e *Editor) PanBy(d r2.Vec) {
	e.run(func() {
		e.view.PanBy(d)
	})
}
