package capture

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/its-jojoo/otterkeep/internal/adapter/clipboard"
	"github.com/its-jojoo/otterkeep/internal/core"
)

// Store is the part of the clipboard history the service writes to.
type Store interface {
	Add(c core.Change) (core.Item, bool)
	Update(value string) bool
}

// Watcher reports clipboard changes. *clipboard.Monitor satisfies it.
type Watcher interface {
	Watch(ctx context.Context) (<-chan string, error)
}

type Config struct {
	// MaxClipboardSize is the largest text, in bytes, that is kept.
	MaxClipboardSize int
	// ActiveEditor, when set, reports the editor a change came from.
	ActiveEditor func() *core.EditorContext
	Logger       *slog.Logger
}

type Service struct {
	store   Store
	clip    clipboard.Clipboard
	privacy *core.PrivacyFilter
	cfg     Config

	mu        sync.Mutex
	lastValue string
}

func New(store Store, clip clipboard.Clipboard, privacy *core.PrivacyFilter, cfg Config) *Service {
	if cfg.MaxClipboardSize <= 0 {
		cfg.MaxClipboardSize = clipboard.DefaultMaxSize
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Service{store: store, clip: clip, privacy: privacy, cfg: cfg}
}

// ProcessText records raw as a clipboard entry. It reports false for text
// that is blank, too large, matched by the privacy filter or identical to
// the previous capture.
func (s *Service) ProcessText(ctx context.Context, raw string, ed *core.EditorContext) (*core.Item, bool, error) {
	_ = ctx
	if strings.TrimSpace(raw) == "" {
		return nil, false, nil
	}
	if len(raw) > s.cfg.MaxClipboardSize {
		s.cfg.Logger.Debug("clipboard text too large", "size", len(raw), "max", s.cfg.MaxClipboardSize)
		return nil, false, nil
	}
	if s.privacy.Blocks(raw) {
		return nil, false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if raw == s.lastValue {
		return nil, false, nil
	}

	item, _ := s.store.Add(core.NewChange(ed, raw))
	s.lastValue = raw
	return &item, true, nil
}

// Paste puts value on the clipboard and records the use.
func (s *Service) Paste(ctx context.Context, value string) error {
	if value == "" {
		return core.ErrEmptyValue
	}
	if err := s.clip.WriteText(ctx, value); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	s.mu.Lock()
	s.lastValue = value
	s.mu.Unlock()
	s.store.Update(value)
	return nil
}

// Run captures every change w reports until ctx is done. A failure to start
// watching is returned as is; the caller should disable capture.
func (s *Service) Run(ctx context.Context, w Watcher) error {
	ch, err := w.Watch(ctx)
	if err != nil {
		return err
	}
	for txt := range ch {
		var ed *core.EditorContext
		if s.cfg.ActiveEditor != nil {
			ed = s.cfg.ActiveEditor()
		}
		if item, ok, err := s.ProcessText(ctx, txt, ed); err != nil {
			s.cfg.Logger.Warn("capture failed", "error", err)
		} else if ok {
			s.cfg.Logger.Debug("captured", "id", item.ID, "preview", core.Preview(item.Value, 40))
		}
	}
	return ctx.Err()
}
