package navigate

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/its-jojoo/otterkeep/internal/anchor"
	"github.com/its-jojoo/otterkeep/internal/core"
)

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// WordAt returns the word touching pos and its range. A cursor directly
// after a word still selects it.
func WordAt(text string, pos core.Position) (string, core.Range, bool) {
	idx := anchor.NewLineIndex(text)
	off := idx.OffsetAt(pos)
	lineStart := idx.OffsetAt(core.Position{Line: pos.Line})
	lineEnd := idx.OffsetAt(core.Position{Line: pos.Line, Character: len(text)})

	start := off
	for start > lineStart {
		r, size := utf8.DecodeLastRuneInString(text[lineStart:start])
		if !isWordRune(r) {
			break
		}
		start -= size
	}
	end := off
	for end < lineEnd {
		r, size := utf8.DecodeRuneInString(text[end:lineEnd])
		if !isWordRune(r) {
			break
		}
		end += size
	}
	if start == end {
		return "", core.Range{}, false
	}
	return text[start:end], idx.RangeAt(start, end), true
}

// BookmarkChange builds the change for bookmarking at the cursor: the
// selected text if any, else the word under the cursor, else the trimmed
// current line.
func BookmarkChange(text string, ed core.EditorContext, cursor core.Position) core.Change {
	c := core.Change{Language: ed.Language, CreatedAt: time.Now()}
	idx := anchor.NewLineIndex(text)

	var r core.Range
	switch {
	case ed.HasSelection && !ed.Selection.IsEmpty():
		r = ed.Selection
		c.Value = idx.TextIn(text, r)
	default:
		if w, wr, ok := WordAt(text, cursor); ok {
			c.Value, r = w, wr
			break
		}
		lineStart := idx.OffsetAt(core.Position{Line: cursor.Line})
		lineEnd := idx.OffsetAt(core.Position{Line: cursor.Line, Character: len(text)})
		line := text[lineStart:lineEnd]
		c.Value = strings.TrimSpace(line)
		lead := len(line) - len(strings.TrimLeftFunc(line, unicode.IsSpace))
		r = idx.RangeAt(lineStart+lead, lineStart+lead+len(c.Value))
	}

	if ed.URI != "" {
		c.Location = &core.Location{URI: ed.URI, Range: r}
	}
	return c
}
