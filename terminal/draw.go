package terminal

import (
	"fmt"
	"math"

	"mindmap/editor"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mattn/go-runewidth"
	"gonum.org/v1/gonum/spatial/r2"
)

var (
	white = colorful.Color{R: 1, G: 1, B: 1}

	selectedColor = tcell.NewRGBColor(0x4d, 0xab, 0xf7)
	edgeColor     = tcell.NewRGBColor(0x86, 0x8e, 0x96)
	statusStyle   = tcell.StyleDefault.Reverse(true)
)

// Box drawing sets: plain and selected.
type boxRunes struct {
	h, v, tl, tr, bl, br rune
}

var (
	plainBox    = boxRunes{'─', '│', '┌', '┐', '└', '┘'}
	selectedBox = boxRunes{'━', '┃', '┏', '┓', '┗', '┛'}
	marqueeBox  = boxRunes{'┄', '┆', '┌', '┐', '└', '┘'}
)

// cell is a terminal position.
type cell struct{ x, y int }

// Draw renders the editor scene and the status line. The caller shows the
// screen.
func (t *Terminal) Draw() {
	t.screen.Clear()
	scene := t.ed.Scene()

	for _, e := range scene.Edges {
		t.drawEdge(scene.Viewport, e)
	}
	for _, n := range scene.Nodes {
		t.drawNode(scene.Viewport, n)
	}
	if l := scene.Link; l != nil {
		style := tcell.StyleDefault.Foreground(selectedColor)
		t.drawLine(t.cellOf(scene.Viewport, l.From), t.cellOf(scene.Viewport, l.To), style, false)
	}
	if m := scene.Marquee; m != nil {
		style := tcell.StyleDefault.Foreground(selectedColor)
		t.drawBox(t.cellOf(scene.Viewport, m.Min), t.cellOf(scene.Viewport, m.Max), marqueeBox, style)
	}
	t.drawStatus(scene)
}

// cellOf maps a world point to the cell it lands in.
func (t *Terminal) cellOf(v editor.Viewport, p r2.Vec) cell {
	s := v.ToScreen(p)
	return cell{
		x: int(math.Floor(s.X / t.opts.CellWidth)),
		y: int(math.Floor(s.Y / t.opts.CellHeight)),
	}
}

func (t *Terminal) drawNode(v editor.Viewport, n editor.SceneNode) {
	half := r2.Scale(0.5, n.Size())
	tl := t.cellOf(v, r2.Sub(n.Center(), half))
	br := t.cellOf(v, r2.Add(n.Center(), half))
	br.x = max(br.x, tl.x+2)
	br.y = max(br.y, tl.y+2)

	inner := tcell.StyleDefault
	if fill, ok := parseColor(n.Fill); ok {
		inner = inner.Background(toTcell(fill)).Foreground(toTcell(textOn(fill)))
	}
	for y := tl.y + 1; y < br.y; y++ {
		for x := tl.x + 1; x < br.x; x++ {
			t.screen.SetContent(x, y, ' ', nil, inner)
		}
	}

	border := inner.Foreground(strokeColor(n.Stroke))
	runes := plainBox
	if n.Selected {
		border = border.Foreground(selectedColor)
		runes = selectedBox
	}
	t.drawBox(tl, br, runes, border)

	// Lines are centered on the node's row and clipped to the box interior.
	width := br.x - tl.x - 1
	center := t.cellOf(v, n.Center())
	top := center.y - (len(n.Lines)-1)/2
	text := inner.Bold(n.Bold)
	for i, line := range n.Lines {
		y := top + i
		if y <= tl.y || y >= br.y {
			continue
		}
		line = runewidth.Truncate(line, width, "…")
		x := tl.x + 1 + (width-runewidth.StringWidth(line))/2
		t.drawText(x, y, line, text)
	}
}

func (t *Terminal) drawBox(tl, br cell, r boxRunes, style tcell.Style) {
	for x := tl.x + 1; x < br.x; x++ {
		t.screen.SetContent(x, tl.y, r.h, nil, style)
		t.screen.SetContent(x, br.y, r.h, nil, style)
	}
	for y := tl.y + 1; y < br.y; y++ {
		t.screen.SetContent(tl.x, y, r.v, nil, style)
		t.screen.SetContent(br.x, y, r.v, nil, style)
	}
	t.screen.SetContent(tl.x, tl.y, r.tl, nil, style)
	t.screen.SetContent(br.x, tl.y, r.tr, nil, style)
	t.screen.SetContent(tl.x, br.y, r.bl, nil, style)
	t.screen.SetContent(br.x, br.y, r.br, nil, style)
}

func (t *Terminal) drawEdge(v editor.Viewport, e editor.SceneEdge) {
	style := tcell.StyleDefault.Foreground(edgeColor)
	if e.Selected {
		style = style.Foreground(selectedColor).Bold(true)
	}
	from, to := t.cellOf(v, e.From), t.cellOf(v, e.To)
	t.drawLine(from, to, style, e.Dashed)

	if e.Label != "" {
		mid := cell{x: (from.x + to.x) / 2, y: (from.y + to.y) / 2}
		t.drawText(mid.x-runewidth.StringWidth(e.Label)/2, mid.y, e.Label, style)
	}
}

// drawLine draws a Bresenham line between two cells. Dashed lines skip
// every other cell.
func (t *Terminal) drawLine(a, b cell, style tcell.Style, dashed bool) {
	ch := lineRune(b.x-a.x, b.y-a.y)
	dx, dy := abs(b.x-a.x), -abs(b.y-a.y)
	sx, sy := sign(b.x-a.x), sign(b.y-a.y)
	errAcc := dx + dy

	for step := 0; ; step++ {
		if !dashed || step%2 == 0 {
			t.screen.SetContent(a.x, a.y, ch, nil, style)
		}
		if a == b {
			return
		}
		e2 := 2 * errAcc
		if e2 >= dy {
			errAcc += dy
			a.x += sx
		}
		if e2 <= dx {
			errAcc += dx
			a.y += sy
		}
	}
}

// lineRune picks the character closest to the direction of a line.
func lineRune(dx, dy int) rune {
	switch {
	case abs(dy)*2 <= abs(dx):
		return '─'
	case abs(dx)*2 <= abs(dy):
		return '│'
	case sign(dx) == sign(dy):
		return '╲'
	default:
		return '╱'
	}
}

// drawText writes s from x, advancing by display width. Returns the column
// after the last rune.
func (t *Terminal) drawText(x, y int, s string, style tcell.Style) int {
	for _, r := range s {
		t.screen.SetContent(x, y, r, nil, style)
		x += runewidth.RuneWidth(r)
	}
	return x
}

func (t *Terminal) drawStatus(scene editor.Scene) {
	w, h := t.screen.Size()
	y := h - 1
	for x := 0; x < w; x++ {
		t.screen.SetContent(x, y, ' ', nil, statusStyle)
	}

	undo, redo := t.ed.HistoryStats()
	status := fmt.Sprintf(" %s | Nodes: %d | Edges: %d | Zoom: %d%% | Undo: %d Redo: %d",
		scene.Gesture, len(scene.Nodes), len(scene.Edges),
		int(math.Round(scene.Viewport.Scale*100)), undo, redo)
	if n := len(scene.Selection.Nodes) + len(scene.Selection.Edges); n > 0 {
		status += fmt.Sprintf(" | Selected: %d", n)
	}
	if t.message != "" {
		status += " | " + t.message
	}
	hint := "^E edit  ^Q quit "

	t.drawText(0, y, runewidth.Truncate(status, w, "…"), statusStyle)
	if room := w - runewidth.StringWidth(status) - 1; room >= len(hint) {
		t.drawText(w-len(hint), y, hint, statusStyle)
	}
}

// parseColor reads a stored color. Empty and non-hex values report false.
func parseColor(s string) (colorful.Color, bool) {
	if s == "" {
		return colorful.Color{}, false
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, false
	}
	return c, true
}

// strokeColor lightens dark outlines so they stay visible on dark terminals.
func strokeColor(s string) tcell.Color {
	c, ok := parseColor(s)
	if !ok {
		return tcell.ColorDefault
	}
	if l, _, _ := c.Lab(); l < 0.45 {
		c = c.BlendLab(white, 0.5)
	}
	return toTcell(c)
}

// textOn picks black or white text for a fill.
func textOn(fill colorful.Color) colorful.Color {
	if l, _, _ := fill.Lab(); l > 0.6 {
		return colorful.Color{}
	}
	return white
}

func toTcell(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
