package storage

import (
	"context"

	"github.com/its-jojoo/otterkeep/internal/core"
)

// Gateway persists the item list of one store.
type Gateway interface {
	// Load returns the stored items, front first. A missing backing file
	// yields no items and no error.
	Load(ctx context.Context) ([]core.Item, error)
	Save(ctx context.Context, items []core.Item) error

	// Stale reports whether the backing storage was changed by someone
	// else since this gateway last read or wrote it.
	Stale(ctx context.Context) (bool, error)

	Path() string
	Close() error
}
