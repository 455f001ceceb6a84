// Package terminal is the tcell front-end of the mind map editor. It turns
// terminal mouse and key events into editor events and draws the editor's
// scene with box characters.
package terminal

import (
	"context"
	"errors"
	"fmt"

	"mindmap/diagram"
	"mindmap/editor"
	"mindmap/logging"
	"mindmap/persist"

	"github.com/gdamore/tcell/v2"
	"gonum.org/v1/gonum/spatial/r2"
)

// Options configures the terminal front-end.
type Options struct {
	CellWidth  float64 // Screen pixels per terminal column
	CellHeight float64 // Screen pixels per terminal row

	// Store is the file the document lives in. With Watch set, changes made
	// to it by other programs are loaded into the editor.
	Store *persist.FileStore
	Watch bool
}

// DefaultOptions returns cell metrics that keep default sized nodes readable.
func DefaultOptions() Options {
	return Options{CellWidth: 8, CellHeight: 16}
}

// Terminal binds an editor to a tcell screen. All editor calls happen on the
// goroutine running the event loop.
type Terminal struct {
	screen  tcell.Screen
	ed      *editor.Editor
	opts    Options
	buttons tcell.ButtonMask // Mouse buttons held at the last mouse event
	message string           // Shown in the status line until the next key
}

// quitEvent asks the event loop to stop.
type quitEvent struct{}

// New creates a terminal front-end on an initialised screen and sizes the
// editor's view to it.
func New(screen tcell.Screen, ed *editor.Editor, opts Options) *Terminal {
	defaults := DefaultOptions()
	if opts.CellWidth <= 0 {
		opts.CellWidth = defaults.CellWidth
	}
	if opts.CellHeight <= 0 {
		opts.CellHeight = defaults.CellHeight
	}
	t := &Terminal{screen: screen, ed: ed, opts: opts}
	t.resize()
	return t
}

// Run opens the terminal, runs the editor until the user quits or ctx is
// done, and restores the terminal.
func Run(ctx context.Context, ed *editor.Editor, opts Options) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize screen: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()
	screen.Clear()

	t := New(screen, ed, opts)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if opts.Watch && opts.Store != nil {
		if err := persist.Watch(ctx, opts.Store, t.Reload); err != nil {
			logging.Warn("file watching disabled", "error", err)
		}
	}
	go func() {
		<-ctx.Done()
		screen.PostEvent(tcell.NewEventInterrupt(quitEvent{}))
	}()

	t.Loop()
	return nil
}

// Reload hands a document changed on disk to the event loop. It is safe to
// call from any goroutine.
func (t *Terminal) Reload(doc diagram.Document) {
	if err := t.screen.PostEvent(tcell.NewEventInterrupt(doc)); err != nil {
		logging.Warn("dropped document reload", "error", err)
	}
}

// Loop draws and handles events until the user quits.
func (t *Terminal) Loop() {
	for {
		t.Draw()
		t.screen.Show()

		if t.HandleEvent(t.screen.PollEvent()) {
			return
		}
	}
}

// HandleEvent processes one screen event and reports whether the editor
// should quit.
func (t *Terminal) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case nil:
		// Screen finalised
		return true
	case *tcell.EventResize:
		t.screen.Sync()
		t.resize()
	case *tcell.EventKey:
		return t.handleKey(ev)
	case *tcell.EventMouse:
		t.handleMouse(ev)
	case *tcell.EventInterrupt:
		switch data := ev.Data().(type) {
		case quitEvent:
			return true
		case diagram.Document:
			t.ed.ReplaceDocument(data)
			t.message = "Reloaded from disk"
		}
	}
	return false
}

// resize gives the editor the drawing area above the status line.
func (t *Terminal) resize() {
	w, h := t.screen.Size()
	rows := max(h-1, 1)
	t.ed.SetViewSize(r2.Vec{X: float64(w) * t.opts.CellWidth, Y: float64(rows) * t.opts.CellHeight})
}

func (t *Terminal) handleKey(ev *tcell.EventKey) bool {
	t.message = ""
	switch ev.Key() {
	case tcell.KeyCtrlQ, tcell.KeyCtrlC:
		return true
	case tcell.KeyCtrlE:
		if err := t.editExternally(); err != nil {
			logging.Warn("external edit failed", "error", err)
			t.message = err.Error()
		}
		return false
	}

	if key, ok := translateKey(ev); ok {
		t.ed.HandleKey(key)
	}
	return false
}

// editExternally opens the document in $EDITOR and adopts the result.
func (t *Terminal) editExternally() error {
	if err := t.screen.Suspend(); err != nil {
		return fmt.Errorf("failed to suspend screen: %w", err)
	}
	doc, changed, err := editDocument(t.ed.Document())
	if resumeErr := t.screen.Resume(); resumeErr != nil {
		err = errors.Join(err, fmt.Errorf("failed to resume screen: %w", resumeErr))
	}
	if err != nil {
		return err
	}
	if changed {
		t.ed.ReplaceDocument(doc)
		t.message = "Document updated"
	}
	return nil
}
