package editor

import (
	"mindmap/diagram"

	"gonum.org/v1/gonum/spatial/r2"
)

// Snapshot is one undo step: the document plus the view and selection it was seen with.
type Snapshot struct {
	Doc       diagram.Document
	Pan       r2.Vec
	Scale     float64
	Selection Selection
}

// Clone creates a deep copy of the snapshot
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Doc:       s.Doc.Clone(),
		Pan:       s.Pan,
		Scale:     s.Scale,
		Selection: s.Selection.Clone(),
	}
}

// History manages undo/redo with two stacks of snapshots (direct struct storage)
type History struct {
	undo []Snapshot
	redo []Snapshot
	max  int // Maximum number of undo steps to keep
}

// NewHistory creates a history keeping at most max undo steps
func NewHistory(max int) *History {
	if max <= 0 {
		max = 500
	}
	return &History{max: max}
}

// Push records the state before a change. Any redo branch is discarded.
func (h *History) Push(s Snapshot) {
	h.undo = h.pushBounded(h.undo, s.Clone())
	h.redo = nil
}

// Undo swaps current onto the redo stack and returns the state to restore.
func (h *History) Undo(current Snapshot) (Snapshot, bool) {
	if !h.CanUndo() {
		return Snapshot{}, false
	}
	prev := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = h.pushBounded(h.redo, current.Clone())
	return prev.Clone(), true
}

// Redo is the inverse of Undo.
func (h *History) Redo(current Snapshot) (Snapshot, bool) {
	if !h.CanRedo() {
		return Snapshot{}, false
	}
	next := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = h.pushBounded(h.undo, current.Clone())
	return next.Clone(), true
}

func (h *History) pushBounded(stack []Snapshot, s Snapshot) []Snapshot {
	stack = append(stack, s)
	// If we exceed max, remove oldest
	if len(stack) > h.max {
		stack = append(stack[:0], stack[len(stack)-h.max:]...)
	}
	return stack
}

// CanUndo returns true if we can undo
func (h *History) CanUndo() bool {
	return len(h.undo) > 0
}

// CanRedo returns true if we can redo
func (h *History) CanRedo() bool {
	return len(h.redo) > 0
}

// Clear clears all history
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}

// Stats returns the number of undo and redo steps available
func (h *History) Stats() (undo, redo int) {
	return len(h.undo), len(h.redo)
}
