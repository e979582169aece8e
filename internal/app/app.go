// Package app wires configuration, storage and use cases together.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/its-jojoo/otterkeep/internal/adapter/clipboard"
	"github.com/its-jojoo/otterkeep/internal/adapter/storage"
	"github.com/its-jojoo/otterkeep/internal/adapter/storage/jsonfile"
	"github.com/its-jojoo/otterkeep/internal/adapter/storage/memory"
	"github.com/its-jojoo/otterkeep/internal/adapter/storage/sqlite"
	"github.com/its-jojoo/otterkeep/internal/adapter/storage/watch"
	"github.com/its-jojoo/otterkeep/internal/config"
	"github.com/its-jojoo/otterkeep/internal/core"
	"github.com/its-jojoo/otterkeep/internal/store"
	"github.com/its-jojoo/otterkeep/internal/usecase/capture"
	"github.com/its-jojoo/otterkeep/internal/usecase/navigate"
	"github.com/its-jojoo/otterkeep/internal/usecase/track"
)

// Deps are the host collaborators. Nil fields get defaults.
type Deps struct {
	Logger    *slog.Logger
	Clipboard clipboard.Clipboard
	Host      navigate.Host
	Notifier  store.Notifier
}

type App struct {
	Clipboard      *store.Store
	Files          *store.Store
	Bookmarks      *store.Store
	QuickBookmarks *store.Store

	Monitor  *clipboard.Monitor
	Capture  *capture.Service
	Navigate *navigate.Service
	Track    *track.Tracker

	cfg     *config.Config
	logger  *slog.Logger
	watcher *watch.Watcher
}

func New(ctx context.Context, cfg *config.Config, deps Deps) (*App, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Clipboard == nil {
		deps.Clipboard = clipboard.System()
	}
	if deps.Host == nil {
		deps.Host = navigate.FSHost{}
	}

	a := &App{cfg: cfg, logger: deps.Logger}

	open := func(name string, sc config.StoreConfig) (storage.Gateway, store.Options, error) {
		opts := store.Options{
			AvoidDuplicates: &sc.AvoidDuplicates,
			MaxItems:        &sc.MaxItems,
			MoveToTop:       &sc.MoveToTop,
			FlushInterval:   cfg.FlushInterval,
			Logger:          deps.Logger,
			Notifier:        deps.Notifier,
		}
		gw, err := openGateway(cfg.StoreDir, name, sc)
		return gw, opts, err
	}

	var opened []storage.Gateway
	fail := func(err error) (*App, error) {
		for _, gw := range opened {
			_ = gw.Close()
		}
		return nil, err
	}

	gw, opts, err := open(store.NameClipboard, cfg.Clipboard)
	if err != nil {
		return fail(err)
	}
	opened = append(opened, gw)
	a.Clipboard = store.NewClipboardHistory(ctx, gw, opts)

	gw, opts, err = open(store.NameFiles, cfg.Files.StoreConfig)
	if err != nil {
		return fail(err)
	}
	opened = append(opened, gw)
	a.Files = store.NewFileHistory(ctx, gw, opts)

	gw, opts, err = open(store.NameBookmarks, cfg.Bookmarks)
	if err != nil {
		return fail(err)
	}
	opened = append(opened, gw)
	a.Bookmarks = store.NewBookmarks(ctx, gw, opts)

	gw, opts, err = open(store.NameQuickBookmarks, cfg.QuickBookmarks.StoreConfig)
	if err != nil {
		return fail(err)
	}
	opened = append(opened, gw)
	a.QuickBookmarks = store.NewQuickBookmarks(ctx, gw, cfg.QuickBookmarks.ScratchKey, opts)

	privacy, err := core.NewPrivacyFilter(cfg.Capture.Ignore, cfg.Capture.IgnoreRegex)
	if err != nil {
		return fail(err)
	}

	a.Monitor = clipboard.NewMonitor(deps.Clipboard, clipboard.MonitorOptions{
		Interval: cfg.Capture.PollInterval,
		MaxSize:  cfg.Capture.MaxClipboardSize,
		Logger:   deps.Logger,
	})
	a.Capture = capture.New(a.Clipboard, a.Monitor, privacy, capture.Config{
		MaxClipboardSize: cfg.Capture.MaxClipboardSize,
		Logger:           deps.Logger,
	})
	a.Navigate = navigate.NewService(deps.Host, deps.Logger)
	a.Track, err = track.New(a.Files, []track.Reconciler{a.Clipboard, a.Files, a.Bookmarks, a.QuickBookmarks}, track.Options{
		Exclude: cfg.Files.Exclude,
		Logger:  deps.Logger,
	})
	if err != nil {
		return fail(err)
	}

	return a, nil
}

// openGateway picks the storage for one store: memory when persistence is
// off, SQLite for .db and .sqlite files, a JSON file otherwise.
func openGateway(dir, name string, sc config.StoreConfig) (storage.Gateway, error) {
	path, ok := sc.Persisted()
	if !ok {
		return memory.New(), nil
	}
	if path == "" {
		path = filepath.Join(dir, "."+name+".json")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite":
		gw, err := sqlite.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s store: %w", name, err)
		}
		return gw, nil
	default:
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("open %s store: %w", name, err)
		}
		return jsonfile.New(path), nil
	}
}

// Stores returns every store in a fixed order.
func (a *App) Stores() []*store.Store {
	return []*store.Store{a.Clipboard, a.Files, a.Bookmarks, a.QuickBookmarks}
}

// Store looks a store up by name, case-insensitively.
func (a *App) Store(name string) (*store.Store, bool) {
	for _, s := range a.Stores() {
		if strings.EqualFold(s.Name(), name) {
			return s, true
		}
	}
	return nil, false
}

// Start runs the periodic flushers and reloads stores as soon as another
// process rewrites their files. Watching is best effort.
func (a *App) Start(ctx context.Context) {
	for _, s := range a.Stores() {
		s.Start(ctx)
	}

	w, err := watch.New(a.logger, watch.DefaultDebounce)
	if err != nil {
		a.logger.Warn("store watcher unavailable", "error", err)
		return
	}
	for _, s := range a.Stores() {
		s := s
		path := s.Path()
		if path == "" {
			continue
		}
		reload := func(string) { s.CheckExternalUpdate(ctx) }
		paths := []string{path}
		if ext := strings.ToLower(filepath.Ext(path)); ext == ".db" || ext == ".sqlite" {
			paths = append(paths, path+"-wal")
		}
		for _, p := range paths {
			if err := w.Add(p, reload); err != nil {
				a.logger.Warn("cannot watch store", "store", s.Name(), "path", p, "error", err)
			}
		}
	}
	a.watcher = w
	go w.Run(ctx)
}

// Close stops watching and flushes every store.
func (a *App) Close() error {
	var errs []error
	if a.watcher != nil {
		errs = append(errs, a.watcher.Close())
	}
	for _, s := range a.Stores() {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}
