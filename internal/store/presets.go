package store

import (
	"cmp"
	"context"

	"github.com/its-jojoo/otterkeep/internal/adapter/storage"
	"github.com/its-jojoo/otterkeep/internal/core"
	"github.com/its-jojoo/otterkeep/internal/registry"
)

// Store names. They double as the default file stem (".Clipboard.json").
const (
	NameClipboard      = "Clipboard"
	NameFiles          = "Files"
	NameBookmarks      = "Bookmarks"
	NameQuickBookmarks = "QuickBookmarks"
)

// DefaultScratchKey labels quick bookmarks that are never merged.
const DefaultScratchKey = "*"

// NewClipboardHistory keeps copied text, most recent first.
func NewClipboardHistory(ctx context.Context, gw storage.Gateway, opts Options) *Store {
	return New(ctx, NameClipboard, registry.Policy{
		Equal:           registry.ByValue,
		AvoidDuplicates: true,
		MaxItems:        1000,
		PromoteOnAdd:    true,
	}, gw, opts)
}

// NewFileHistory keeps opened file URIs. Reopening or jumping to a file
// moves it to the top.
func NewFileHistory(ctx context.Context, gw storage.Gateway, opts Options) *Store {
	return New(ctx, NameFiles, registry.Policy{
		Equal:           registry.ByValue,
		AvoidDuplicates: true,
		MaxItems:        10000,
		PromoteOnAdd:    true,
		PromoteOnUpdate: true,
	}, gw, opts)
}

// NewBookmarks keeps named positions in files, ordered by file and line.
// A bookmark is the same bookmark when it has the same text on the same
// line of the same file.
func NewBookmarks(ctx context.Context, gw storage.Gateway, opts Options) *Store {
	return New(ctx, NameBookmarks, registry.Policy{
		Equal:           sameBookmark,
		AvoidDuplicates: true,
		MaxItems:        10000,
		Compare:         CompareBookmarks,
	}, gw, opts)
}

// NewQuickBookmarks keeps single-key marks. Setting a mark again replaces
// it, except for scratchKey, which accumulates.
func NewQuickBookmarks(ctx context.Context, gw storage.Gateway, scratchKey string, opts Options) *Store {
	if scratchKey == "" {
		scratchKey = DefaultScratchKey
	}
	return New(ctx, NameQuickBookmarks, registry.Policy{
		Equal: func(item core.Item, c core.Change) bool {
			return c.Key != scratchKey && item.Key == c.Key
		},
		AvoidDuplicates: true,
		MaxItems:        10000,
		Compare:         CompareBookmarks,
	}, gw, opts)
}

func sameBookmark(item core.Item, c core.Change) bool {
	if item.Value != c.Value || item.Location == nil || c.Location == nil {
		return false
	}
	return item.Location.URI == c.Location.URI &&
		item.Location.Range.Start.Line == c.Location.Range.Start.Line
}

// CompareBookmarks orders keyed items first by key, then all items by file
// path and start line. Items without a location sort last.
func CompareBookmarks(a, b core.Item) int {
	if (a.Key != "") != (b.Key != "") {
		if a.Key != "" {
			return -1
		}
		return 1
	}
	if c := cmp.Compare(a.Key, b.Key); c != 0 {
		return c
	}
	if (a.Location == nil) != (b.Location == nil) {
		if a.Location == nil {
			return 1
		}
		return -1
	}
	if a.Location == nil {
		return 0
	}
	if c := cmp.Compare(a.Path(), b.Path()); c != 0 {
		return c
	}
	return cmp.Compare(a.Location.Range.Start.Line, b.Location.Range.Start.Line)
}
