// Package navigate jumps to the remembered location of an item, correcting
// the location first if the document changed underneath it.
package navigate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/its-jojoo/otterkeep/internal/anchor"
	"github.com/its-jojoo/otterkeep/internal/core"
)

var ErrNoLocation = errors.New("item has no location")

// Document is an open text document.
type Document interface {
	URI() string
	Text() string
}

// Host opens and shows documents.
type Host interface {
	OpenDocument(ctx context.Context, uri string) (Document, error)
	// ShowDocument reveals doc with the given selection.
	ShowDocument(ctx context.Context, doc Document, selection core.Range) error
}

// Recorder records that an item was used. *store.Store satisfies it.
type Recorder interface {
	UpdateItem(item core.Item) bool
}

type Service struct {
	host   Host
	logger *slog.Logger
}

func NewService(host Host, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{host: host, logger: logger}
}

// ResolveAndShow opens the item's document, re-anchors its range if the
// text there no longer matches, records the use in rec and shows the
// document with the cursor at the start of the range. The returned item
// carries the corrected range and drift flag.
func (s *Service) ResolveAndShow(ctx context.Context, item core.Item, rec Recorder) (core.Item, error) {
	item = item.Clone()
	if item.Location == nil {
		return item, ErrNoLocation
	}

	doc, err := s.host.OpenDocument(ctx, item.Location.URI)
	if err != nil {
		return item, fmt.Errorf("open %s: %w", item.Location.URI, err)
	}

	text := doc.Text()
	idx := anchor.NewLineIndex(text)
	if idx.TextIn(text, item.Location.Range) == item.Value {
		item.Drift = core.DriftNone
	} else if !anchor.Relocate(text, &item) {
		s.logger.Debug("item not found in document", "uri", item.Location.URI, "id", item.ID)
	}

	if rec != nil {
		rec.UpdateItem(item)
	}

	start := item.Location.Range.Start
	if err := s.host.ShowDocument(ctx, doc, core.Range{Start: start, End: start}); err != nil {
		return item, fmt.Errorf("show %s: %w", item.Location.URI, err)
	}
	return item, nil
}
