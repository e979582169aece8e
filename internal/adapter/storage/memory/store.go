package memory

import (
	"context"
	"sync"

	"github.com/its-jojoo/otterkeep/internal/adapter/storage"
	"github.com/its-jojoo/otterkeep/internal/core"
)

var _ storage.Gateway = (*Store)(nil)

// Store keeps the last saved snapshot in process memory. It backs stores
// whose persistence is disabled and is handy in tests.
type Store struct {
	mu    sync.RWMutex
	items []core.Item
	saves int
	fail  error
}

func New(items ...core.Item) *Store {
	s := &Store{}
	s.items = clone(items)
	return s
}

func (s *Store) Load(ctx context.Context) ([]core.Item, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.items), nil
}

func (s *Store) Save(ctx context.Context, items []core.Item) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.items = clone(items)
	s.saves++
	return nil
}

func (s *Store) Stale(ctx context.Context) (bool, error) {
	_ = ctx
	return false, nil
}

func (s *Store) Path() string { return "" }
func (s *Store) Close() error { return nil }

// Fail makes subsequent saves return err; nil restores normal behaviour.
func (s *Store) Fail(err error) {
	s.mu.Lock()
	s.fail = err
	s.mu.Unlock()
}

// Saves returns how many successful saves happened.
func (s *Store) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

func clone(items []core.Item) []core.Item {
	out := make([]core.Item, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}
