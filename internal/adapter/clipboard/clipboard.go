// Package clipboard reads and writes the system clipboard and watches it
// for changes.
package clipboard

import (
	"context"
	"sync"
)

// Clipboard is a text clipboard. Implementations may block on the host.
type Clipboard interface {
	ReadText(ctx context.Context) (string, error)
	WriteText(ctx context.Context, text string) error
}

// Memory is an in-process clipboard.
type Memory struct {
	mu   sync.Mutex
	text string
	err  error
}

func NewMemory(text string) *Memory { return &Memory{text: text} }

func (m *Memory) ReadText(ctx context.Context) (string, error) {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

func (m *Memory) WriteText(ctx context.Context, text string) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.text = text
	return nil
}

// Fail makes every call return err until Fail(nil).
func (m *Memory) Fail(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}
