package persist

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mindmap/diagram"
	"mindmap/logging"

	"github.com/fsnotify/fsnotify"
)

// DebounceDelay is how long the file must stay quiet before a change is reported.
const DebounceDelay = 100 * time.Millisecond

// Watch reports documents written to the store's file by other programs.
// Blobs equal to the store's own last save and blobs that do not decode are
// ignored. onChange runs on the watcher goroutine. Watching stops when ctx is done.
func Watch(ctx context.Context, store *FileStore, onChange func(diagram.Document)) error {
	path, err := filepath.Abs(store.Path())
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", store.Path(), err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	// Editors and our own saves replace the file, so watch its directory.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	logging.Info("watching document", "path", path)
	go processEvents(ctx, watcher, path, store, onChange)
	return nil
}

func processEvents(ctx context.Context, watcher *fsnotify.Watcher, path string, store *FileStore, onChange func(diagram.Document)) {
	defer watcher.Close()

	flushTimer := time.NewTimer(DebounceDelay)
	flushTimer.Stop()

	flush := func() {
		data, err := os.ReadFile(path)
		if err != nil {
			logging.Debug("changed document is unreadable", "path", path, "error", err)
			return
		}
		if store.IsOwnWrite(data) {
			return
		}
		doc, ok := Decode(data)
		if !ok {
			logging.Warn("ignoring malformed document change", "path", path)
			return
		}
		logging.Info("document changed on disk", "nodes", len(doc.Nodes), "edges", len(doc.Edges))
		onChange(doc)
	}

	for {
		select {
		case <-ctx.Done():
			flushTimer.Stop()
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				flushTimer.Reset(DebounceDelay)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logging.Warn("watcher error", "error", err)

		case <-flushTimer.C:
			flush()
		}
	}
}
