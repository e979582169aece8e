// Package anchor re-locates a remembered piece of text inside a document
// whose content may have changed since the text was recorded.
//
// Offsets are byte offsets into the document text, and Position.Character
// is a byte column within its line.
package anchor

import (
	"sort"
	"strings"

	"github.com/its-jojoo/otterkeep/internal/core"
)

// Result is the outcome of Locate. Start and End are meaningful only when
// Found is true.
type Result struct {
	Start int
	End   int
	Found bool
}

// Locate finds the occurrence of value in text closest to lastOffset.
//
// If the text at lastOffset already equals value, that range is returned
// without searching. Otherwise every non-overlapping occurrence is
// considered and the one with the smallest distance to lastOffset wins;
// ties go to the earlier occurrence. An empty value never matches.
func Locate(text, value string, lastOffset int) Result {
	if value == "" {
		return Result{}
	}

	if lastOffset >= 0 && lastOffset+len(value) <= len(text) &&
		text[lastOffset:lastOffset+len(value)] == value {
		return Result{Start: lastOffset, End: lastOffset + len(value), Found: true}
	}

	best, bestDist := -1, 0
	for from := 0; from+len(value) <= len(text); {
		i := strings.Index(text[from:], value)
		if i < 0 {
			break
		}
		start := from + i
		dist := start - lastOffset
		if dist < 0 {
			dist = -dist
		}
		if best < 0 || dist < bestDist {
			best, bestDist = start, dist
		}
		// past lastOffset distances only grow
		if start >= lastOffset {
			break
		}
		from = start + len(value)
	}

	if best < 0 {
		return Result{}
	}
	return Result{Start: best, End: best + len(value), Found: true}
}

// LineIndex converts between offsets and line/character positions.
type LineIndex struct {
	size   int
	starts []int
}

func NewLineIndex(text string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{size: len(text), starts: starts}
}

// OffsetAt returns the offset of pos, clamped to the document and to the
// end of pos's line.
func (x *LineIndex) OffsetAt(pos core.Position) int {
	if pos.Line < 0 {
		return 0
	}
	if pos.Line >= len(x.starts) {
		return x.size
	}
	lineEnd := x.size
	if pos.Line+1 < len(x.starts) {
		lineEnd = x.starts[pos.Line+1] - 1
	}
	off := x.starts[pos.Line] + max(pos.Character, 0)
	return min(off, lineEnd)
}

func (x *LineIndex) PositionAt(offset int) core.Position {
	offset = min(max(offset, 0), x.size)
	line := sort.Search(len(x.starts), func(i int) bool { return x.starts[i] > offset }) - 1
	return core.Position{Line: line, Character: offset - x.starts[line]}
}

func (x *LineIndex) RangeAt(start, end int) core.Range {
	return core.Range{Start: x.PositionAt(start), End: x.PositionAt(end)}
}

// TextIn returns the text covered by r.
func (x *LineIndex) TextIn(text string, r core.Range) string {
	s, e := x.OffsetAt(r.Start), x.OffsetAt(r.End)
	if e < s {
		return ""
	}
	return text[s:e]
}

// Relocate corrects item's range against text. On success the range is
// moved onto the nearest occurrence of the item's value and the drift flag
// cleared; otherwise the flag is set to DriftNotFound and the previous range
// is kept for display. Items without a value or location are left alone.
func Relocate(text string, item *core.Item) bool {
	if item == nil || item.Location == nil || item.Value == "" {
		return false
	}

	idx := NewLineIndex(text)
	res := Locate(text, item.Value, idx.OffsetAt(item.Location.Range.Start))
	if !res.Found {
		item.Drift = core.DriftNotFound
		return false
	}
	item.Location.Range = idx.RangeAt(res.Start, res.End)
	item.Drift = core.DriftNone
	return true
}
