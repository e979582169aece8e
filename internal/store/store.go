// Package store combines an item registry with a persistence gateway.
//
// A Store reloads its list when the backing file was changed by another
// process, marks itself dirty on every mutation and writes back on a timer.
// Close performs the final synchronous write; the timer alone is not
// trusted at shutdown.
package store

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/its-jojoo/otterkeep/internal/adapter/storage"
	"github.com/its-jojoo/otterkeep/internal/core"
	"github.com/its-jojoo/otterkeep/internal/registry"
)

// DefaultFlushInterval is how often dirty stores are written.
const DefaultFlushInterval = 10 * time.Second

// Notifier surfaces problems the user should see.
type Notifier interface {
	Warn(msg string)
}

type nopNotifier struct{}

func (nopNotifier) Warn(string) {}

// Options overrides a store's defaults. Nil pointers keep the default.
type Options struct {
	AvoidDuplicates *bool
	MaxItems        *int
	MoveToTop       *bool

	FlushInterval time.Duration
	Logger        *slog.Logger
	Notifier      Notifier
}

type Store struct {
	name   string
	reg    *registry.Registry
	gw     storage.Gateway
	logger *slog.Logger
	notify Notifier
	every  time.Duration

	// mu serializes reload, mutation and save against the flush timer.
	mu       sync.Mutex
	dirty    atomic.Bool
	reported bool
	// unsaved is set while the last write failed. The timer does not retry
	// on it; Close does.
	unsaved bool

	stopOnce sync.Once
	stop     chan struct{}
	wg       sync.WaitGroup
}

// New builds a store from policy and gw and loads its items. A nil gw keeps
// the list in memory only.
func New(ctx context.Context, name string, policy registry.Policy, gw storage.Gateway, opts Options) *Store {
	if opts.AvoidDuplicates != nil {
		policy.AvoidDuplicates = *opts.AvoidDuplicates
	}
	if opts.MaxItems != nil {
		policy.MaxItems = *opts.MaxItems
	}
	if opts.MoveToTop != nil && !*opts.MoveToTop {
		policy.PromoteOnAdd = false
		policy.PromoteOnUpdate = false
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = DefaultFlushInterval
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Notifier == nil {
		opts.Notifier = nopNotifier{}
	}

	s := &Store{
		name:   name,
		reg:    registry.New(policy),
		gw:     gw,
		logger: opts.Logger.With("store", name),
		notify: opts.Notifier,
		every:  opts.FlushInterval,
		stop:   make(chan struct{}),
	}

	s.mu.Lock()
	s.load(ctx)
	s.mu.Unlock()
	return s
}

func (s *Store) Name() string { return s.name }

// Path returns the backing location, or "" when not persisted.
func (s *Store) Path() string {
	if s.gw == nil {
		return ""
	}
	return s.gw.Path()
}

// load must be called with mu held.
func (s *Store) load(ctx context.Context) {
	if s.gw == nil {
		return
	}
	items, err := s.gw.Load(ctx)
	if err != nil {
		// a broken file is not worth interrupting the user for; the next
		// save replaces it
		s.logger.Warn("failed to load store, starting empty", "path", s.gw.Path(), "error", err)
		items = nil
	}
	s.reg.Replace(items)
	s.logger.Debug("store loaded", "items", len(items))
}

// CheckExternalUpdate reloads the list if the backing storage was changed
// by another process. Unsaved changes in this process are discarded.
func (s *Store) CheckExternalUpdate(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh(ctx)
}

func (s *Store) refresh(ctx context.Context) bool {
	if s.gw == nil {
		return false
	}
	stale, err := s.gw.Stale(ctx)
	if err != nil {
		s.logger.Debug("staleness check failed", "error", err)
		return false
	}
	if !stale {
		return false
	}
	s.logger.Info("store changed externally, reloading", "path", s.gw.Path())
	s.load(ctx)
	s.dirty.Store(false)
	s.unsaved = false
	return true
}

// mutate runs fn after reconciling with disk and marks the store dirty when
// fn reports a change.
func (s *Store) mutate(fn func() bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh(context.Background())
	changed := fn()
	if changed {
		s.dirty.Store(true)
	}
	return changed
}

// Add merges c into the store. See registry.Registry.Add.
func (s *Store) Add(c core.Change) (core.Item, bool) {
	var item core.Item
	var created bool
	s.mutate(func() bool {
		if c.Value == "" {
			return false
		}
		item, created = s.reg.Add(c)
		return true
	})
	return item, created
}

func (s *Store) Update(value string) bool {
	return s.mutate(func() bool { return s.reg.Update(value) })
}

func (s *Store) UpdateItem(item core.Item) bool {
	return s.mutate(func() bool { return s.reg.UpdateItem(item) })
}

func (s *Store) Remove(value string) bool {
	return s.mutate(func() bool { return s.reg.Remove(value) })
}

func (s *Store) RemoveItem(id string) bool {
	return s.mutate(func() bool { return s.reg.RemoveItem(id) })
}

func (s *Store) RemoveAllByKey(key string) int {
	var n int
	s.mutate(func() bool {
		n = s.reg.RemoveAllByKey(key)
		return n > 0
	})
	return n
}

func (s *Store) ClearAll() bool {
	return s.mutate(func() bool {
		s.reg.ClearAll()
		return true
	})
}

func (s *Store) GetByValue(value string) (core.Item, bool) { return s.reg.GetByValue(value) }

// GetByKey cycles through the items labelled key. See registry.Registry.GetByKey.
func (s *Store) GetByKey(key string) (core.Item, bool) { return s.reg.GetByKey(key) }

// Items returns a snapshot of the list.
func (s *Store) Items() []core.Item { return s.reg.Items() }

func (s *Store) Len() int { return s.reg.Len() }

// OnDidChangeItemList subscribes fn to list changes. fn receives the
// affected item, or nil for bulk changes such as reloads.
func (s *Store) OnDidChangeItemList(fn func(item *core.Item)) func() {
	return s.reg.OnChange(fn)
}

// Dirty reports whether there are changes not yet written.
func (s *Store) Dirty() bool { return s.dirty.Load() }

// Flush writes the list if it is dirty. A failure is reported to the
// notifier once; the store stays usable and the write is retried after the
// next mutation or at Close.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flush(ctx, false)
}

// flush must be called with mu held. final also writes after a failed save
// with no mutation since.
func (s *Store) flush(ctx context.Context, final bool) error {
	dirty := s.dirty.Swap(false)
	if s.gw == nil || !(dirty || final && s.unsaved) {
		return nil
	}

	items := s.reg.Items()
	if s.reg.Sorted() {
		items = s.reg.ByRecency()
	}
	if err := s.gw.Save(ctx, items); err != nil {
		s.unsaved = true
		s.logger.Error("failed to save store", "path", s.gw.Path(), "error", err)
		if !s.reported {
			s.reported = true
			s.notify.Warn("Failed to save " + s.name + " to " + s.gw.Path() + ": " + err.Error())
		}
		return err
	}
	s.unsaved = false
	s.reported = false
	return nil
}

// Start writes dirty changes every flush interval until ctx is done or
// Close is called.
func (s *Store) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		t := time.NewTicker(s.every)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			case <-t.C:
				_ = s.Flush(ctx)
			}
		}
	}()
}

// Close stops the timer and writes pending changes synchronously.
func (s *Store) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	s.wg.Wait()

	s.mu.Lock()
	err := s.flush(context.Background(), true)
	s.mu.Unlock()
	if s.gw != nil {
		if cerr := s.gw.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
