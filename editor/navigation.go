package editor

import (
	"slices"

	"gonum.org/v1/gonum/spatial/r2"
)

// navProximityBias weighs closeness against alignment when arrows pick a
// node: score = cos(angle) + navProximityBias/distance.
const navProximityBias = 1.0

// climbState remembers the root path Shift+Tab walks. The walk climbs to the
// root, then comes back down the same path and stops at the leaf it began on.
type climbState struct {
	path       []int // Root first
	pos        int   // Index of the selected node in path
	descending bool
}

var arrowDirections = map[Key]r2.Vec{
	KeyUp:    {X: 0, Y: -1},
	KeyDown:  {X: 0, Y: 1},
	KeyLeft:  {X: -1, Y: 0},
	KeyRight: {X: 1, Y: 0},
}

// moveSelection selects the best aligned node in the arrow's direction.
// Nothing happens when no node lies on that side.
func (e *Editor) moveSelection(k Key) {
	cur, ok := e.store.Node(e.sel.Primary)
	if !ok {
		return
	}
	dir := arrowDirections[k]

	best, bestScore := 0, 0.0
	for _, n := range e.store.Nodes() {
		if n.ID == cur.ID {
			continue
		}
		d := r2.Sub(n.Center(), cur.Center())
		dist := r2.Norm(d)
		if dist == 0 {
			continue
		}
		cos := r2.Dot(d, dir) / dist
		if cos <= 0 {
			continue
		}
		score := cos + navProximityBias/dist
		if best == 0 || score > bestScore {
			best, bestScore = n.ID, score
		}
	}
	if best == 0 {
		return
	}
	e.selectNode(best)
	e.focusLater(best)
}

// climbStep moves one step along the remembered root path.
func (e *Editor) climbStep() {
	p := e.sel.Primary
	if p == 0 || !e.store.Has(p) {
		return
	}
	c := e.climb
	if c == nil || c.pos >= len(c.path) || c.path[c.pos] != p {
		path := e.store.RootPath(p)
		c = &climbState{path: path, pos: len(path) - 1}
	}

	if !c.descending {
		if c.pos > 0 {
			c.pos--
			e.selectOnPath(c)
			return
		}
		c.descending = true
	}
	if c.pos < len(c.path)-1 {
		c.pos++
		e.selectOnPath(c)
		return
	}
	e.climb = c
}

func (e *Editor) selectOnPath(c *climbState) {
	e.climb = c
	id := c.path[c.pos]
	e.selectNode(id)
	e.focusLater(id)
}

// nextSibling cycles clockwise around the shared parent.
func (e *Editor) nextSibling() {
	siblings := e.store.SiblingsClockwise(e.sel.Primary)
	if len(siblings) < 2 {
		return
	}
	i := slices.Index(siblings, e.sel.Primary)
	next := siblings[(i+1)%len(siblings)]
	e.selectNode(next)
	e.focusLater(next)
}

// firstChild selects the lowest-id child.
func (e *Editor) firstChild() {
	children := e.store.ChildrenOf(e.sel.Primary)
	if len(children) == 0 {
		return
	}
	e.selectNode(children[0])
	e.focusLater(children[0])
}
