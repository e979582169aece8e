package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Item struct {
	ID    string
	Value string
	Key   string

	AddCount    int
	UpdateCount int
	Language    string

	CreatedAt time.Time
	UpdatedAt time.Time

	Location *Location
	Drift    Drift
}

// Clone returns a copy that shares no pointers with it.
func (it Item) Clone() Item {
	if it.Location != nil {
		loc := *it.Location
		it.Location = &loc
	}
	return it
}

// Path returns the location URI, or "" for non-positional items.
func (it Item) Path() string {
	if it.Location == nil {
		return ""
	}
	return it.Location.URI
}

// Change is a candidate item handed to a store's Add.
type Change struct {
	Value    string
	Key      string
	Language string
	Location *Location

	// LocationOnly replaces the location of a matching item without
	// bumping counters or promoting it.
	LocationOnly bool

	CreatedAt time.Time
}

func NewItem(c Change) Item {
	now := c.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	it := Item{
		ID:          uuid.NewString(),
		Value:       c.Value,
		Key:         c.Key,
		AddCount:    1,
		UpdateCount: 0,
		Language:    c.Language,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if c.Location != nil {
		loc := *c.Location
		it.Location = &loc
	}
	return it
}

// EditorContext describes the editor a change originates from.
type EditorContext struct {
	URI          string
	Language     string
	Selection    Range
	HasSelection bool
	Focused      bool
}

// NewChange builds a change for value. Without an editor only the value is set;
// otherwise the change is anchored at the document start, or at the selection
// when the window is focused.
func NewChange(ed *EditorContext, value string) Change {
	c := Change{Value: value, CreatedAt: time.Now()}
	if ed == nil || strings.TrimSpace(ed.URI) == "" {
		return c
	}

	c.Language = ed.Language
	c.Location = &Location{URI: ed.URI}
	if ed.Focused && ed.HasSelection {
		c.Location.Range = ed.Selection
	}
	return c
}
