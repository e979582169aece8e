package anchor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/its-jojoo/otterkeep/internal/core"
)

func TestLocate_FastPath(t *testing.T) {
	doc := "foo bar foo"
	got := Locate(doc, "foo", 8)
	assert.Equal(t, Result{Start: 8, End: 11, Found: true}, got)
}

func TestLocate_NearestOccurrence(t *testing.T) {
	// occurrences of "needle" at 5, 50 and 120
	b := []byte(strings.Repeat(".", 130))
	for _, at := range []int{5, 50, 120} {
		copy(b[at:], "needle")
	}
	doc := string(b)

	got := Locate(doc, "needle", 48)
	require.True(t, got.Found)
	assert.Equal(t, 50, got.Start)
	assert.Equal(t, 56, got.End)

	got = Locate(doc, "needle", 110)
	assert.Equal(t, 120, got.Start)

	got = Locate(doc, "needle", 0)
	assert.Equal(t, 5, got.Start)
}

func TestLocate_EditedDocument(t *testing.T) {
	// the remembered offset 8 no longer holds "foo"; occurrences are at 0 and 9
	doc := "foo bar  foo"
	got := Locate(doc, "foo", 8)
	assert.Equal(t, Result{Start: 9, End: 12, Found: true}, got)
}

func TestLocate_TieGoesToEarliest(t *testing.T) {
	doc := "ab....ab"
	// offset 3: distance 3 to both 0 and 6
	got := Locate(doc, "ab", 3)
	require.True(t, got.Found)
	assert.Equal(t, 0, got.Start)
}

func TestLocate_NotFound(t *testing.T) {
	assert.False(t, Locate("nothing here", "foo", 3).Found)
}

func TestLocate_EmptyValue(t *testing.T) {
	assert.False(t, Locate("anything", "", 0).Found)
}

func TestLocate_OffsetOutOfRange(t *testing.T) {
	got := Locate("xx foo", "foo", 100)
	assert.Equal(t, Result{Start: 3, End: 6, Found: true}, got)

	got = Locate("foo xx", "foo", -4)
	assert.Equal(t, Result{Start: 0, End: 3, Found: true}, got)
}

func TestLocate_NonOverlapping(t *testing.T) {
	// "aa" in "aaa." is found at 0 only; the overlapping match at 1 is skipped
	got := Locate("aaa.", "aa", 3)
	require.True(t, got.Found)
	assert.Equal(t, 0, got.Start)
}

func TestLineIndex(t *testing.T) {
	text := "ab\ncde\n\nf"
	idx := NewLineIndex(text)

	assert.Equal(t, 0, idx.OffsetAt(core.Position{Line: 0, Character: 0}))
	assert.Equal(t, 4, idx.OffsetAt(core.Position{Line: 1, Character: 1}))
	assert.Equal(t, 6, idx.OffsetAt(core.Position{Line: 1, Character: 99}), "clamped to line end")
	assert.Equal(t, len(text), idx.OffsetAt(core.Position{Line: 42}))

	assert.Equal(t, core.Position{Line: 1, Character: 1}, idx.PositionAt(4))
	assert.Equal(t, core.Position{Line: 2, Character: 0}, idx.PositionAt(7))
	assert.Equal(t, core.Position{Line: 3, Character: 1}, idx.PositionAt(999))

	r := core.Range{Start: core.Position{Line: 1, Character: 0}, End: core.Position{Line: 1, Character: 3}}
	assert.Equal(t, "cde", idx.TextIn(text, r))
}

func TestRelocate(t *testing.T) {
	text := "package main\n\nfunc helper() {}\n"
	item := &core.Item{
		Value: "helper",
		Location: &core.Location{
			URI:   "file:///main.go",
			Range: core.Range{Start: core.Position{Line: 0, Character: 3}, End: core.Position{Line: 0, Character: 9}},
		},
	}

	require.True(t, Relocate(text, item))
	assert.Equal(t, core.DriftNone, item.Drift)
	assert.Equal(t, core.Position{Line: 2, Character: 5}, item.Location.Range.Start)
	assert.Equal(t, core.Position{Line: 2, Character: 11}, item.Location.Range.End)
}

func TestRelocate_NotFoundKeepsRange(t *testing.T) {
	orig := core.Range{Start: core.Position{Line: 4, Character: 2}, End: core.Position{Line: 4, Character: 6}}
	item := &core.Item{Value: "gone", Location: &core.Location{URI: "u", Range: orig}}

	assert.False(t, Relocate("other text", item))
	assert.Equal(t, core.DriftNotFound, item.Drift)
	assert.Equal(t, orig, item.Location.Range)
}

func TestRelocate_Guards(t *testing.T) {
	assert.False(t, Relocate("x", nil))
	assert.False(t, Relocate("x", &core.Item{Value: "x"}))

	empty := &core.Item{Location: &core.Location{URI: "u"}}
	assert.False(t, Relocate("x", empty))
	assert.Equal(t, core.DriftNone, empty.Drift)
}
