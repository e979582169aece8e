// Package track feeds editor events into the stores. Events are expected
// one at a time, in the order the editor raised them.
package track

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/its-jojoo/otterkeep/internal/core"
	"github.com/its-jojoo/otterkeep/internal/usecase/navigate"
)

// FileHistory is the part of the file history the tracker writes to.
type FileHistory interface {
	Add(c core.Change) (core.Item, bool)
}

// Reconciler reloads a store changed by another process.
type Reconciler interface {
	CheckExternalUpdate(ctx context.Context) bool
}

type Options struct {
	// Exclude lists doublestar globs of paths that are never recorded.
	Exclude []string
	Logger  *slog.Logger
}

type Tracker struct {
	files   FileHistory
	stores  []Reconciler
	exclude []string
	logger  *slog.Logger

	mu         sync.Mutex
	selections map[string]core.Range // by path
}

func New(files FileHistory, stores []Reconciler, opts Options) (*Tracker, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	for _, p := range opts.Exclude {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("exclude pattern %q: %w", p, doublestar.ErrBadPattern)
		}
	}
	return &Tracker{
		files:      files,
		stores:     stores,
		exclude:    opts.Exclude,
		logger:     opts.Logger,
		selections: make(map[string]core.Range),
	}, nil
}

func (t *Tracker) excluded(path string) bool {
	slashed := filepath.ToSlash(path)
	for _, p := range t.exclude {
		if ok, _ := doublestar.Match(p, slashed); ok {
			return true
		}
	}
	return false
}

// DocumentOpened records path, a filesystem path or file:// URI, in the
// file history.
func (t *Tracker) DocumentOpened(ctx context.Context, path string, language string) {
	_ = ctx
	path = navigate.PathFromURI(path)
	if path == "" {
		return
	}
	if t.excluded(path) {
		t.logger.Debug("file excluded from history", "path", path)
		return
	}
	t.files.Add(core.Change{
		Value:    path,
		Language: language,
		Location: &core.Location{URI: navigate.URIFromPath(path)},
	})
}

// SelectionChanged remembers where the cursor is in ed's document.
func (t *Tracker) SelectionChanged(ed core.EditorContext) {
	if ed.URI == "" {
		return
	}
	t.mu.Lock()
	t.selections[navigate.PathFromURI(ed.URI)] = ed.Selection
	t.mu.Unlock()
}

// DocumentClosed moves the file history entry's location to the last
// selection seen in that document, without counting it as a use.
func (t *Tracker) DocumentClosed(ctx context.Context, path string) {
	_ = ctx
	path = navigate.PathFromURI(path)

	t.mu.Lock()
	sel, ok := t.selections[path]
	delete(t.selections, path)
	t.mu.Unlock()
	if !ok || t.excluded(path) {
		return
	}

	t.files.Add(core.Change{
		Value:        path,
		Location:     &core.Location{URI: navigate.URIFromPath(path), Range: sel},
		LocationOnly: true,
	})
}

// WindowFocusChanged reconciles every store with disk when the window
// regains focus, since another window may have written meanwhile.
func (t *Tracker) WindowFocusChanged(ctx context.Context, focused bool) {
	if !focused {
		return
	}
	for _, s := range t.stores {
		if s.CheckExternalUpdate(ctx) {
			t.logger.Debug("store reloaded on focus")
		}
	}
}
