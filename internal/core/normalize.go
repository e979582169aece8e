package core

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxMatchLen bounds how much of a value is considered when matching.
const MaxMatchLen = 32_000

// Normalize lowercases s and collapses whitespace runs to single spaces.
// Only used for matching; stored values keep their literal text.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if len(s) > MaxMatchLen {
		s = s[:MaxMatchLen]
	}

	var b strings.Builder
	b.Grow(len(s))

	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !space {
				b.WriteByte(' ')
				space = true
			}
			continue
		}
		space = false
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// Preview flattens s to one line of at most max runes.
func Preview(s string, max int) string {
	s = strings.TrimSpace(strings.Join(strings.Fields(s), " "))
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-1]) + "…"
}
