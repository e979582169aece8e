package search

import (
	"sort"
	"strings"
	"time"

	"github.com/its-jojoo/otterkeep/internal/core"
)

type Options struct {
	OutLimit int
	Now      time.Time // optional, for tests
}

// Query ranks items matching q, best first. Matching is done on normalized
// text, so case and runs of whitespace are ignored.
func Query(items []core.Item, q string, opt Options) []core.Item {
	if opt.OutLimit <= 0 {
		opt.OutLimit = 20
	}
	now := opt.Now
	if now.IsZero() {
		now = time.Now()
	}

	q = core.Normalize(q)
	if q == "" {
		return nil
	}

	type scored struct {
		it    core.Item
		score int
	}

	scoredItems := make([]scored, 0, len(items))

	for _, it := range items {
		matchScore := scoreMatch(core.Normalize(it.Value), q)
		if matchScore == 0 {
			continue
		}

		score := matchScore

		// usage boost
		score += min(max(it.AddCount+it.UpdateCount-1, 0), 10) * 30

		// recency boost
		age := now.Sub(it.UpdatedAt)
		switch {
		case age < 10*time.Minute:
			score += 400
		case age < time.Hour:
			score += 250
		case age < 24*time.Hour:
			score += 120
		case age < 7*24*time.Hour:
			score += 40
		}

		scoredItems = append(scoredItems, scored{it: it, score: score})
	}

	sort.SliceStable(scoredItems, func(i, j int) bool {
		if scoredItems[i].score != scoredItems[j].score {
			return scoredItems[i].score > scoredItems[j].score
		}
		return scoredItems[i].it.UpdatedAt.After(scoredItems[j].it.UpdatedAt)
	})

	if opt.OutLimit > len(scoredItems) {
		opt.OutLimit = len(scoredItems)
	}

	out := make([]core.Item, 0, opt.OutLimit)
	for i := 0; i < opt.OutLimit; i++ {
		out = append(out, scoredItems[i].it)
	}
	return out
}

func scoreMatch(s, q string) int {
	// Basic match:
	// - exact match strongest
	// - prefix strong
	// - substring ok (earlier index slightly better)
	if s == q {
		return 3000
	}
	if strings.HasPrefix(s, q) {
		return 2000
	}
	if idx := strings.Index(s, q); idx >= 0 {
		return 1000 + max(0, 200-idx)
	}
	return 0
}
