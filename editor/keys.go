package editor

import (
	"unicode"
)

// Key identifies the keys the editor reacts to. Printable characters arrive
// as KeyRune with Rune set.
type Key int

const (
	KeyRune Key = iota
	KeyEnter
	KeyTab
	KeyBackspace
	KeyEscape
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
)

// KeyEvent is one key press with its modifiers.
type KeyEvent struct {
	Key   Key  `json:"key"`
	Rune  rune `json:"rune,omitempty"`
	Shift bool `json:"shift,omitempty"`
	Ctrl  bool `json:"ctrl,omitempty"`
	Alt   bool `json:"alt,omitempty"`
	Meta  bool `json:"meta,omitempty"`
}

// Resize factors for Shift + and Shift -.
const (
	growWidth  = 1.2
	growHeight = 1.15
)

// HandleKey processes one key press and reports whether it was consumed.
// Keys are ignored while an inline text control has focus.
func (e *Editor) HandleKey(ev KeyEvent) bool {
	if e.textFocus {
		return false
	}
	handled := false
	e.run(func() {
		handled = e.handleKey(ev)
	})
	return handled
}

func (e *Editor) handleKey(ev KeyEvent) bool {
	platform := ev.Ctrl || ev.Meta

	switch ev.Key {
	case KeyRune:
		if platform {
			return e.handleShortcut(ev)
		}
		if ev.Shift && !ev.Alt {
			switch ev.Rune {
			case '+', '=':
				e.resizeSelected(growWidth, growHeight)
				return true
			case '-', '_':
				e.resizeSelected(1/growWidth, 1/growHeight)
				return true
			}
		}
		if ev.Alt || !unicode.IsPrint(ev.Rune) {
			return false
		}
		e.typeRune(ev.Rune)
		return true

	case KeyEnter:
		if e.sel.Primary == 0 {
			return false
		}
		if ev.Shift {
			e.addSibling(e.sel.Primary)
		} else {
			e.addChild(e.sel.Primary)
		}
		return true

	case KeyEscape:
		e.clearSelection()
		return true

	case KeyBackspace:
		if ev.Shift {
			e.deleteSelection()
		} else {
			e.backspace()
		}
		return true

	case KeyTab:
		switch {
		case ev.Shift:
			e.climbStep()
		case ev.Alt || ev.Meta:
			e.firstChild()
		case ev.Ctrl:
			return false
		default:
			e.nextSibling()
		}
		return true

	case KeyUp, KeyDown, KeyLeft, KeyRight:
		e.moveSelection(ev.Key)
		return true
	}
	return false
}

// handleShortcut covers platform-modifier chords: undo and redo.
func (e *Editor) handleShortcut(ev KeyEvent) bool {
	switch unicode.ToLower(ev.Rune) {
	case 'z':
		if ev.Shift {
			e.redo()
		} else {
			e.undo()
		}
		return true
	case 'y':
		e.redo()
		return true
	}
	return false
}

func (e *Editor) resizeSelected(factorW, factorH float64) {
	if len(e.sel.Nodes) == 0 {
		return
	}
	e.mutate(func() {
		for _, id := range e.sel.Nodes {
			e.store.ResizeNode(id, factorW, factorH)
		}
	})
	e.focusLater(e.sel.Primary)
}

// typeRune writes r into the selected edge labels, or else the selected node
// labels. The first keystroke after a selection change replaces, later ones append.
func (e *Editor) typeRune(r rune) {
	text := string(r)
	fresh := e.freshTyping

	switch {
	case len(e.sel.Nodes) > 0:
		e.mutate(func() {
			for _, id := range e.sel.Nodes {
				if fresh {
					e.store.SetLabel(id, text)
				} else {
					e.store.AppendLabel(id, text)
				}
			}
		})
		e.focusLater(e.sel.Primary)

	case len(e.sel.Edges) > 0:
		e.mutate(func() {
			for _, id := range e.sel.Edges {
				if fresh {
					e.store.SetEdgeLabel(id, text)
				} else {
					e.store.AppendEdgeLabel(id, text)
				}
			}
		})

	default:
		return
	}
	e.freshTyping = false
}

// backspace deletes a multi-selection, or trims the label of a single
// selected node or of the selected edges.
func (e *Editor) backspace() {
	switch {
	case len(e.sel.Nodes) > 1:
		e.removeNodes(e.sel.Nodes)

	case len(e.sel.Nodes) == 1:
		e.mutate(func() {
			e.store.TrimLabel(e.sel.Nodes[0])
		})
		e.freshTyping = false

	case len(e.sel.Edges) > 0:
		e.mutate(func() {
			for _, id := range e.sel.Edges {
				e.store.TrimEdgeLabel(id)
			}
		})
		e.freshTyping = false
	}
}

// deleteSelection removes the selected nodes, or else the selected edges.
func (e *Editor) deleteSelection() {
	switch {
	case len(e.sel.Nodes) > 0:
		e.removeNodes(e.sel.Nodes)
	case len(e.sel.Edges) > 0:
		e.removeEdges(e.sel.Edges)
	}
}
