package terminal

import (
	"mindmap/editor"

	"github.com/gdamore/tcell/v2"
	"gonum.org/v1/gonum/spatial/r2"
)

// wheelStep is the screen distance of one wheel notch.
const wheelStep = 100.0

// mousePointer is the pointer id used for the terminal mouse.
const mousePointer = 1

// translateKey maps a terminal key to an editor key. Terminals report most
// printable characters without modifiers, so '+' and '_' are treated as the
// shifted resize keys and Delete stands in for Shift+Backspace.
func translateKey(ev *tcell.EventKey) (editor.KeyEvent, bool) {
	mod := ev.Modifiers()
	k := editor.KeyEvent{
		Shift: mod&tcell.ModShift != 0,
		Ctrl:  mod&tcell.ModCtrl != 0,
		Alt:   mod&tcell.ModAlt != 0,
		Meta:  mod&tcell.ModMeta != 0,
	}

	switch ev.Key() {
	case tcell.KeyRune:
		k.Key = editor.KeyRune
		k.Rune = ev.Rune()
		if k.Rune == '+' || k.Rune == '_' {
			k.Shift = true
		}
	case tcell.KeyEnter:
		k.Key = editor.KeyEnter
	case tcell.KeyTab:
		k.Key = editor.KeyTab
	case tcell.KeyBacktab:
		k.Key = editor.KeyTab
		k.Shift = true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		k.Key = editor.KeyBackspace
	case tcell.KeyDelete:
		k.Key = editor.KeyBackspace
		k.Shift = true
	case tcell.KeyEscape:
		k.Key = editor.KeyEscape
	case tcell.KeyUp:
		k.Key = editor.KeyUp
	case tcell.KeyDown:
		k.Key = editor.KeyDown
	case tcell.KeyLeft:
		k.Key = editor.KeyLeft
	case tcell.KeyRight:
		k.Key = editor.KeyRight
	case tcell.KeyCtrlZ:
		k.Key, k.Rune, k.Ctrl = editor.KeyRune, 'z', true
	case tcell.KeyCtrlY:
		k.Key, k.Rune, k.Ctrl = editor.KeyRune, 'y', true
	default:
		return editor.KeyEvent{}, false
	}
	return k, true
}

// cellCenter returns the screen position of the middle of a cell.
func (t *Terminal) cellCenter(x, y int) r2.Vec {
	return r2.Vec{
		X: (float64(x) + 0.5) * t.opts.CellWidth,
		Y: (float64(y) + 0.5) * t.opts.CellHeight,
	}
}

// handleMouse diffs the primary button against the previous event to
// synthesize pointer down, move and up. Wheel notches become wheel events.
// Ctrl counts as Shift because many terminals keep Shift-click for their
// own text selection.
func (t *Terminal) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	buttons := ev.Buttons()
	mod := ev.Modifiers()
	p := t.cellCenter(x, y)
	shift := mod&(tcell.ModShift|tcell.ModCtrl) != 0

	var delta r2.Vec
	switch {
	case buttons&tcell.WheelUp != 0:
		delta.Y = -wheelStep
	case buttons&tcell.WheelDown != 0:
		delta.Y = wheelStep
	case buttons&tcell.WheelLeft != 0:
		delta.X = -wheelStep
	case buttons&tcell.WheelRight != 0:
		delta.X = wheelStep
	}
	if delta != (r2.Vec{}) {
		t.ed.Wheel(editor.WheelEvent{Screen: p, Delta: delta, Shift: shift})
		return
	}

	pe := editor.PointerEvent{Pointer: mousePointer, Screen: p, Shift: shift}
	pressed := buttons&tcell.Button1 != 0
	wasPressed := t.buttons&tcell.Button1 != 0
	t.buttons = buttons

	switch {
	case pressed && !wasPressed:
		t.ed.PointerDown(pe)
	case pressed:
		t.ed.PointerMove(pe)
	case wasPressed:
		t.ed.PointerUp(pe)
	}
}
