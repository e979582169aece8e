package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChange_NoEditor(t *testing.T) {
	c := NewChange(nil, "hello")
	assert.Equal(t, "hello", c.Value)
	assert.Nil(t, c.Location)
	assert.Empty(t, c.Language)
	assert.False(t, c.CreatedAt.IsZero())
}

func TestNewChange_UnfocusedEditorAnchorsAtDocumentStart(t *testing.T) {
	ed := &EditorContext{
		URI:          "file:///a.go",
		Language:     "go",
		Selection:    Range{Start: Position{Line: 3, Character: 1}, End: Position{Line: 3, Character: 4}},
		HasSelection: true,
	}
	c := NewChange(ed, "foo")
	require.NotNil(t, c.Location)
	assert.Equal(t, "file:///a.go", c.Location.URI)
	assert.Equal(t, Range{}, c.Location.Range)
	assert.Equal(t, "go", c.Language)
}

func TestNewChange_FocusedEditorUsesSelection(t *testing.T) {
	sel := Range{Start: Position{Line: 3, Character: 1}, End: Position{Line: 3, Character: 4}}
	c := NewChange(&EditorContext{URI: "file:///a.go", Selection: sel, HasSelection: true, Focused: true}, "foo")
	require.NotNil(t, c.Location)
	assert.Equal(t, sel, c.Location.Range)
}

func TestNewItem(t *testing.T) {
	loc := &Location{URI: "file:///a.go"}
	it := NewItem(Change{Value: "x", Key: "m", Location: loc})
	assert.NotEmpty(t, it.ID)
	assert.Equal(t, 1, it.AddCount)
	assert.Equal(t, 0, it.UpdateCount)
	assert.Equal(t, it.CreatedAt, it.UpdatedAt)

	// location is copied, not shared
	loc.URI = "file:///b.go"
	assert.Equal(t, "file:///a.go", it.Location.URI)
}

func TestItemClone(t *testing.T) {
	it := Item{Value: "x", Location: &Location{URI: "u"}}
	cp := it.Clone()
	cp.Location.URI = "v"
	assert.Equal(t, "u", it.Location.URI)
}
