// Package editor is the interaction engine of the mind map: pointer and
// keyboard state machines, undo history, the viewport and the command surface
// used by menus. It is single threaded; callers deliver one event at a time.
package editor

import (
	"reflect"

	"mindmap/diagram"
	"mindmap/logging"
	"mindmap/persist"
	"mindmap/store"

	"gonum.org/v1/gonum/spatial/r2"
)

// Options tunes the interaction engine.
type Options struct {
	DragThreshold    float64 // Screen pixels a shift-press must travel before it draws a link
	EdgeHitTolerance float64 // Screen pixels within which a click selects an edge
	ViewMargin       float64 // Screen pixels kept between a focused node and the screen border
	WheelZoomRate    float64 // Zoom factor is exp(-dy*rate)
	HistoryLimit     int
	FontSize         float64 // Font size of new nodes, zero for the default
	ViewSize         r2.Vec  // Initial screen size in pixels
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		DragThreshold:    4,
		EdgeHitTolerance: 8,
		ViewMargin:       40,
		WheelZoomRate:    0.0015,
		HistoryLimit:     500,
		ViewSize:         r2.Vec{X: 1280, Y: 800},
	}
}

// Editor owns the store, the history, the viewport, the selection and all
// transient gesture state. Every exported method is one event: it runs to
// completion, then deferred follow-ups run, then the document is saved and
// subscribers are told about the new scene.
type Editor struct {
	opts    Options
	store   *store.Store
	history *History
	view    Viewport

	sel         Selection
	gesture     gesture
	pointers    map[int]r2.Vec // Screen position of every pointer that is down
	climb       *climbState
	freshTyping bool // Next keystroke replaces the label instead of appending
	textFocus   bool

	depth    int
	deferred []func()

	persister   persist.BlobStore
	savedRev    int
	subscribers map[int]func(Scene)
	nextSub     int
	lastScene   *Scene
}

// New creates an editor on a copy of doc. The first node starts selected.
func New(doc diagram.Document, opts Options) *Editor {
	defaults := DefaultOptions()
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = defaults.HistoryLimit
	}
	if opts.ViewSize.X <= 0 || opts.ViewSize.Y <= 0 {
		opts.ViewSize = defaults.ViewSize
	}

	s := store.New(doc)
	s.SetFontSize(opts.FontSize)

	e := &Editor{
		opts:        opts,
		store:       s,
		history:     NewHistory(opts.HistoryLimit),
		view:        NewViewport(opts.ViewSize),
		pointers:    make(map[int]r2.Vec),
		freshTyping: true,
		subscribers: make(map[int]func(Scene)),
	}
	if nodes := s.Nodes(); len(nodes) > 0 {
		e.sel = nodeSelection(nodes[0].ID)
	}
	e.savedRev = s.Revision()
	return e
}

// SetPersister saves the document to bs after every event that changed it.
func (e *Editor) SetPersister(bs persist.BlobStore) {
	e.persister = bs
	e.savedRev = e.store.Revision()
}

// Subscribe registers fn to receive the scene after every event that changed
// it. The returned function unregisters it.
func (e *Editor) Subscribe(fn func(Scene)) func() {
	id := e.nextSub
	e.nextSub++
	e.subscribers[id] = fn
	return func() { delete(e.subscribers, id) }
}

// Document returns a copy of the current document.
func (e *Editor) Document() diagram.Document {
	return e.store.Document()
}

// Node returns a copy of the node with the given id.
func (e *Editor) Node(id int) (diagram.Node, bool) {
	return e.store.Node(id)
}

// Selection returns a copy of the current selection.
func (e *Editor) Selection() Selection {
	return e.sel.Clone()
}

// Viewport returns the current viewport.
func (e *Editor) Viewport() Viewport {
	return e.view
}

// Gesture returns the pointer gesture in progress.
func (e *Editor) Gesture() GestureKind {
	return e.gesture.kind
}

// HistoryStats returns the number of undo and redo steps available.
func (e *Editor) HistoryStats() (undo, redo int) {
	return e.history.Stats()
}

// SetTextFocus switches the keyboard machine off while an inline text
// control owns the keyboard.
func (e *Editor) SetTextFocus(focused bool) {
	e.textFocus = focused
}

// SetViewSize tells the editor how large the drawing surface is.
func (e *Editor) SetViewSize(size r2.Vec) {
	e.run(func() {
		e.view.Resize(size)
	})
}

// ReplaceDocument adopts doc as an undoable change, as when the file was
// edited elsewhere.
func (e *Editor) ReplaceDocument(doc diagram.Document) {
	e.run(func() {
		e.mutate(func() {
			e.store.Reset(doc)
		})
		e.gesture = gesture{}
		e.pruneSelection()
	})
}

// run executes one event. Nested calls join the outer event.
func (e *Editor) run(fn func()) {
	e.depth++
	fn()
	e.depth--
	if e.depth > 0 {
		return
	}

	// Deferred tasks may defer more work; drain until quiet.
	for len(e.deferred) > 0 {
		task := e.deferred[0]
		e.deferred = e.deferred[1:]
		task()
	}
	e.settle()
}

// nextTick schedules fn to run once the current event has finished. fn must
// read whatever state it needs when it runs.
func (e *Editor) nextTick(fn func()) {
	e.deferred = append(e.deferred, fn)
}

// settle saves and publishes the outcome of an event.
func (e *Editor) settle() {
	if e.persister != nil && e.store.Revision() != e.savedRev && !e.gesture.kind.Dragging() {
		e.save()
	}
	if len(e.subscribers) == 0 {
		return
	}
	scene := e.Scene()
	if e.lastScene != nil && reflect.DeepEqual(*e.lastScene, scene) {
		return
	}
	e.lastScene = &scene
	for _, fn := range e.subscribers {
		fn(scene)
	}
}

func (e *Editor) save() {
	e.savedRev = e.store.Revision()
	data, err := persist.Encode(e.store.Document())
	if err != nil {
		logging.Warn("failed to encode document", "error", err)
		return
	}
	if err := e.persister.Save(data); err != nil {
		logging.Warn("failed to save document", "error", err)
		return
	}
	logging.Debug("document saved", "bytes", len(data), "revision", e.savedRev)
}

// snapshot captures the full undoable state.
func (e *Editor) snapshot() Snapshot {
	return Snapshot{
		Doc:       e.store.Document(),
		Pan:       e.view.Pan,
		Scale:     e.view.Scale,
		Selection: e.sel.Clone(),
	}
}

// restore adopts a snapshot. Gesture and climb state do not survive it.
func (e *Editor) restore(s Snapshot) {
	e.store.Restore(s.Doc)
	e.view.Pan = s.Pan
	e.view.Scale = s.Scale
	e.sel = s.Selection.Clone()
	e.gesture = gesture{}
	e.climb = nil
	e.freshTyping = true
}

// mutate runs fn and records the state before it as one undo step, if fn
// changed the document. A drag in progress is split around the change so
// every step stays a committed state.
func (e *Editor) mutate(fn func()) {
	before := e.snapshot()
	rev := e.store.Revision()
	g := e.gesture
	fn()
	if e.store.Revision() == rev {
		return
	}
	if g.kind.Dragging() {
		e.commitDrag(g)
	}
	e.history.Push(before)
	if e.gesture.kind.Dragging() {
		after := e.snapshot()
		e.gesture.before = &after
		e.gesture.moved = false
	}
}

// bringIntoView pans so the node is comfortably on screen, using the node's
// size and position at the time the task runs.
func (e *Editor) bringIntoView(id int) {
	n, ok := e.store.Node(id)
	if !ok {
		return
	}
	e.view.BringIntoView(n.Center(), n.Size(), e.opts.ViewMargin)
}

func (e *Editor) focusLater(id int) {
	e.nextTick(func() { e.bringIntoView(id) })
}
