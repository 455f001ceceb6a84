package editor

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"
)

// Structural operations shared by keys and menu commands. Each records one
// undo step and schedules the view to follow the node it selects.

func (e *Editor) addChild(parent int) int {
	var id int
	e.mutate(func() {
		id = e.store.AddChild(parent)
	})
	e.selectNode(id)
	e.focusLater(id)
	return id
}

func (e *Editor) addSibling(of int) int {
	var id int
	e.mutate(func() {
		id = e.store.AddSiblingOf(of, e.view.Center())
	})
	e.selectNode(id)
	e.focusLater(id)
	return id
}

func (e *Editor) addStandaloneAt(p r2.Vec) int {
	var id int
	e.mutate(func() {
		id = e.store.AddStandaloneAt(p)
	})
	e.selectNode(id)
	e.focusLater(id)
	return id
}

// removeNodes deletes ids. Deleting a single node selects its parent.
func (e *Editor) removeNodes(ids []int) {
	ids = slices.Clone(ids)
	climb := 0
	e.mutate(func() {
		climb = e.store.RemoveNodes(ids)
	})
	if climb != 0 {
		e.selectNode(climb)
		e.focusLater(climb)
		return
	}
	e.clearSelection()
}

func (e *Editor) removeEdges(ids []int) {
	ids = slices.Clone(ids)
	e.mutate(func() {
		e.store.RemoveEdges(ids)
	})
	e.pruneSelection()
}

func (e *Editor) undo() {
	if s, ok := e.history.Undo(e.snapshot()); ok {
		e.restore(s)
	}
}

func (e *Editor) redo() {
	if s, ok := e.history.Redo(e.snapshot()); ok {
		e.restore(s)
	}
}

// Command surface used by context menus. Every call is one event and, when
// it changes the document, one undo step.

// AddStandaloneAt creates an unconnected node at or near the world point and selects it.
func (e *Editor) AddStandaloneAt(p r2.Vec) int {
	var id int
	e.run(func() { id = e.addStandaloneAt(p) })
	return id
}

// AddChild creates and selects a child of id.
func (e *Editor) AddChild(id int) int {
	var child int
	e.run(func() { child = e.addChild(id) })
	return child
}

// AddSiblingOf creates and selects a sibling of id.
func (e *Editor) AddSiblingOf(id int) int {
	var sibling int
	e.run(func() { sibling = e.addSibling(id) })
	return sibling
}

// RenameStart selects id so the next keystroke replaces its label.
func (e *Editor) RenameStart(id int) {
	e.run(func() {
		if !e.store.Has(id) {
			return
		}
		e.selectNode(id)
		e.focusLater(id)
	})
}

// ToggleBold flips the bold flag of id.
func (e *Editor) ToggleBold(id int) {
	e.run(func() {
		e.mutate(func() { e.store.ToggleBold(id) })
	})
}

// SetFill colors the given nodes. An empty color removes the fill.
func (e *Editor) SetFill(ids []int, color string) {
	e.run(func() {
		e.mutate(func() {
			for _, id := range ids {
				e.store.SetFill(id, color)
			}
		})
	})
}

// SetStroke sets the outline color of id.
func (e *Editor) SetStroke(id int, color string) {
	e.run(func() {
		e.mutate(func() { e.store.SetStroke(id, color) })
	})
}

// ToggleEdgeDashed flips the dashed flag of edge id.
func (e *Editor) ToggleEdgeDashed(id int) {
	e.run(func() {
		e.mutate(func() { e.store.ToggleEdgeDashed(id) })
	})
}

// SetEdgeLabel sets the label of edge id. An empty text removes it.
func (e *Editor) SetEdgeLabel(id int, text string) {
	e.run(func() {
		e.mutate(func() { e.store.SetEdgeLabel(id, text) })
	})
}

// RemoveNodes deletes the given nodes and their edges.
func (e *Editor) RemoveNodes(ids []int) {
	e.run(func() { e.removeNodes(ids) })
}

// RemoveEdges deletes the given edges.
func (e *Editor) RemoveEdges(ids []int) {
	e.run(func() { e.removeEdges(ids) })
}

// Undo restores the state before the last change.
func (e *Editor) Undo() {
	e.run(e.undo)
}

// Redo reapplies the last undone change.
func (e *Editor) Redo() {
	e.run(e.redo)
}

// CommandArgs carries the arguments of a named command. Each command reads
// only the fields it needs.
type CommandArgs struct {
	ID    int     `json:"id"`
	IDs   []int   `json:"ids"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Color string  `json:"color"`
	Text  string  `json:"text"`
}

// Commands lists the names Dispatch accepts.
var Commands = []string{
	"addStandaloneAt", "addChild", "addSiblingOf", "renameStart", "toggleBold",
	"setFill", "setStroke", "toggleEdgeDashed", "setEdgeLabel",
	"removeNodes", "removeEdges", "undo", "redo",
}

// Dispatch runs the named command. The result is the id of a created node, or 0.
func (e *Editor) Dispatch(name string, args CommandArgs) (int, error) {
	switch name {
	case "addStandaloneAt":
		return e.AddStandaloneAt(r2.Vec{X: args.X, Y: args.Y}), nil
	case "addChild":
		if !e.store.Has(args.ID) {
			return 0, fmt.Errorf("node %d not found", args.ID)
		}
		return e.AddChild(args.ID), nil
	case "addSiblingOf":
		if !e.store.Has(args.ID) {
			return 0, fmt.Errorf("node %d not found", args.ID)
		}
		return e.AddSiblingOf(args.ID), nil
	case "renameStart":
		e.RenameStart(args.ID)
	case "toggleBold":
		e.ToggleBold(args.ID)
	case "setFill":
		ids := args.IDs
		if len(ids) == 0 && args.ID != 0 {
			ids = []int{args.ID}
		}
		e.SetFill(ids, args.Color)
	case "setStroke":
		e.SetStroke(args.ID, args.Color)
	case "toggleEdgeDashed":
		e.ToggleEdgeDashed(args.ID)
	case "setEdgeLabel":
		e.SetEdgeLabel(args.ID, args.Text)
	case "removeNodes":
		e.RemoveNodes(args.IDs)
	case "removeEdges":
		e.RemoveEdges(args.IDs)
	case "undo":
		e.Undo()
	case "redo":
		e.Redo()
	default:
		return 0, fmt.Errorf("unknown command: %s", name)
	}
	return 0, nil
}
