// Package watcher keeps the search index in step with edits made to the notes
// directory outside the server.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	notefs "mdnotes/internal/storage/fs"
)

type Indexer interface {
	IndexFile(ctx context.Context, path string) error
	RemoveNote(ctx context.Context, id string) error
}

type Watcher struct {
	dir string
	idx Indexer
	fsw *fsnotify.Watcher
}

func New(dir string, idx Indexer) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &Watcher{dir: dir, idx: idx, fsw: fsw}, nil
}

// Run handles events until ctx is cancelled, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	slog.Info("watching notes", "dir", w.dir)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", "err", err)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	name := filepath.Base(event.Name)
	if !notefs.IsNoteFile(name) {
		return
	}
	var err error
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		err = w.idx.RemoveNote(ctx, name)
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		err = w.idx.IndexFile(ctx, event.Name)
	default:
		return
	}
	if err != nil {
		slog.Warn("reindex note", "note", name, "op", event.Op.String(), "err", err)
		return
	}
	slog.Debug("reindexed note", "note", name, "op", event.Op.String())
}
