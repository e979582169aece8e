package core

import (
	"fmt"
	"regexp"
	"strings"
)

// PrivacyFilter decides which clipboard text must never enter the history,
// e.g. tokens or passwords copied from a terminal.
type PrivacyFilter struct {
	patterns []string
	compiled []*regexp.Regexp
}

// NewPrivacyFilter builds a filter from case-insensitive substrings, or from
// regular expressions when useRegex is set. Blank patterns are skipped.
func NewPrivacyFilter(patterns []string, useRegex bool) (*PrivacyFilter, error) {
	pf := &PrivacyFilter{}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !useRegex {
			pf.patterns = append(pf.patterns, strings.ToLower(p))
			continue
		}
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("privacy pattern %q: %w", p, err)
		}
		pf.compiled = append(pf.compiled, re)
	}
	return pf, nil
}

// Blocks reports whether content matches any pattern. A nil filter blocks nothing.
func (pf *PrivacyFilter) Blocks(content string) bool {
	if pf == nil {
		return false
	}
	for _, re := range pf.compiled {
		if re.MatchString(content) {
			return true
		}
	}
	if len(pf.patterns) == 0 {
		return false
	}
	low := strings.ToLower(content)
	for _, p := range pf.patterns {
		if strings.Contains(low, p) {
			return true
		}
	}
	return false
}
