package clipboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var ErrUnsupported = errors.New("clipboard not supported on this OS yet")

const (
	DefaultInterval = 500 * time.Millisecond
	MinInterval     = 100 * time.Millisecond
	DefaultMaxSize  = 1_000_000
)

type MonitorOptions struct {
	Interval time.Duration
	// MaxSize is the largest text, in bytes, that is reported.
	MaxSize int
	Logger  *slog.Logger
}

// Monitor polls a Clipboard and reports text that changed since the last
// poll. Text written through the Monitor itself is not reported.
type Monitor struct {
	clip     Clipboard
	interval time.Duration
	maxSize  int
	logger   *slog.Logger

	mu   sync.Mutex
	last string
	// gen counts writes through the monitor; a poll that overlaps one is
	// discarded
	gen uint64
}

func NewMonitor(clip Clipboard, opts MonitorOptions) *Monitor {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Interval < MinInterval {
		opts.Interval = MinInterval
	}
	if opts.MaxSize <= 0 {
		opts.MaxSize = DefaultMaxSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Monitor{clip: clip, interval: opts.Interval, maxSize: opts.MaxSize, logger: opts.Logger}
}

// Watch primes the current clipboard value and then emits every new value
// until ctx is done. The channel is closed on return. An error reading the
// initial value is returned, since the clipboard is then unusable.
func (m *Monitor) Watch(ctx context.Context) (<-chan string, error) {
	txt, err := m.clip.ReadText(ctx)
	if err != nil {
		return nil, fmt.Errorf("read clipboard: %w", err)
	}
	m.setLast(txt)

	ch := make(chan string)
	t := time.NewTicker(m.interval)

	go func() {
		defer t.Stop()
		defer close(ch)

		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				txt, ok := m.poll(ctx)
				if !ok {
					continue
				}
				select {
				case ch <- txt:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}

func (m *Monitor) poll(ctx context.Context) (string, bool) {
	m.mu.Lock()
	gen := m.gen
	m.mu.Unlock()

	txt, err := m.clip.ReadText(ctx)
	if err != nil {
		m.logger.Debug("clipboard read failed", "error", err)
		return "", false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen || txt == "" || txt == m.last {
		return "", false
	}
	m.last = txt
	if len(txt) > m.maxSize {
		m.logger.Debug("clipboard text too large, skipped", "size", len(txt), "max", m.maxSize)
		return "", false
	}
	return txt, true
}

func (m *Monitor) setLast(txt string) {
	m.mu.Lock()
	m.last = txt
	m.mu.Unlock()
}

func (m *Monitor) ReadText(ctx context.Context) (string, error) {
	return m.clip.ReadText(ctx)
}

// WriteText writes text to the clipboard without it being reported as a
// change.
func (m *Monitor) WriteText(ctx context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	if err := m.clip.WriteText(ctx, text); err != nil {
		return err
	}
	m.last = text
	return nil
}
