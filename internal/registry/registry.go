// Package registry implements the ordered, bounded, deduplicating item list
// shared by every store. Behaviour differences between stores are expressed
// through a Policy rather than through separate types.
package registry

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/its-jojoo/otterkeep/internal/core"
)

// Policy configures a Registry.
type Policy struct {
	// Equal reports whether an existing item matches a candidate change.
	// A nil Equal never matches.
	Equal func(item core.Item, c core.Change) bool

	AvoidDuplicates bool
	// MaxItems <= 0 means unbounded.
	MaxItems        int
	PromoteOnAdd    bool
	PromoteOnUpdate bool

	// Compare, when set, defines the list order. The list is fully
	// re-sorted after each change.
	Compare func(a, b core.Item) int
}

func ByValue(item core.Item, c core.Change) bool { return item.Value == c.Value }

// Listener receives the affected item, or nil for bulk changes.
type Listener func(item *core.Item)

type entry struct {
	item core.Item
	seq  uint64 // recency; higher is more recent
}

type Registry struct {
	mu      sync.Mutex
	policy  Policy
	now     func() time.Time
	entries []*entry
	seq     uint64

	// round-robin state for GetByKey, keyed by item ID
	visited map[string]struct{}

	lmu       sync.Mutex
	listeners map[int]Listener
	nextLID   int
}

func New(p Policy) *Registry {
	return &Registry{
		policy:    p,
		now:       time.Now,
		visited:   make(map[string]struct{}),
		listeners: make(map[int]Listener),
	}
}

// OnChange subscribes fn to change notifications and returns a func that
// removes the subscription.
func (r *Registry) OnChange(fn Listener) func() {
	r.lmu.Lock()
	defer r.lmu.Unlock()
	id := r.nextLID
	r.nextLID++
	r.listeners[id] = fn
	return func() {
		r.lmu.Lock()
		delete(r.listeners, id)
		r.lmu.Unlock()
	}
}

func (r *Registry) fire(item *core.Item) {
	r.lmu.Lock()
	fns := make([]Listener, 0, len(r.listeners))
	for _, fn := range r.listeners {
		fns = append(fns, fn)
	}
	r.lmu.Unlock()

	for _, fn := range fns {
		if item == nil {
			fn(nil)
			continue
		}
		cp := item.Clone()
		fn(&cp)
	}
}

// Add merges c into the list. It returns the stored item and whether a new
// item was created. Empty values are ignored.
func (r *Registry) Add(c core.Change) (core.Item, bool) {
	if c.Value == "" {
		return core.Item{}, false
	}

	r.mu.Lock()
	idx := -1
	if r.policy.AvoidDuplicates && r.policy.Equal != nil {
		idx = slices.IndexFunc(r.entries, func(e *entry) bool { return r.policy.Equal(e.item, c) })
	}

	var e *entry
	created := idx < 0
	if created {
		r.seq++
		e = &entry{item: core.NewItem(c), seq: r.seq}
		r.entries = slices.Insert(r.entries, 0, e)
	} else {
		e = r.entries[idx]
		e.item.Value = c.Value
		e.item.Key = c.Key
		if c.Language != "" {
			e.item.Language = c.Language
		}
		if c.Location != nil {
			loc := *c.Location
			e.item.Location = &loc
			e.item.Drift = core.DriftNone
		}
		if !c.LocationOnly {
			e.item.AddCount++
			e.item.UpdatedAt = r.now()
			r.seq++
			e.seq = r.seq
			if r.policy.PromoteOnAdd {
				r.moveToFront(idx)
			}
		}
	}

	r.trim()
	r.sort()
	out := e.item.Clone()
	r.mu.Unlock()

	r.fire(&out)
	return out, created
}

// Update records a use of the item with the given value.
func (r *Registry) Update(value string) bool {
	return r.update(func(e *entry) bool { return e.item.Value == value }, nil)
}

// UpdateItem records a use of the item with item.ID, also taking over its
// location and drift flag.
func (r *Registry) UpdateItem(item core.Item) bool {
	return r.update(func(e *entry) bool { return e.item.ID == item.ID }, func(dst *core.Item) {
		if item.Location != nil {
			loc := *item.Location
			dst.Location = &loc
		}
		dst.Drift = item.Drift
	})
}

func (r *Registry) update(match func(*entry) bool, apply func(*core.Item)) bool {
	r.mu.Lock()
	idx := slices.IndexFunc(r.entries, match)
	if idx < 0 {
		r.mu.Unlock()
		return false
	}

	e := r.entries[idx]
	if apply != nil {
		apply(&e.item)
		if dup := r.duplicateOf(idx); dup >= 0 {
			r.mergeInto(dup, idx)
			r.mu.Unlock()

			// one item went away; listeners reload the whole list
			r.fire(nil)
			return true
		}
	}
	e.item.UpdateCount++
	e.item.UpdatedAt = r.now()
	r.seq++
	e.seq = r.seq
	if r.policy.PromoteOnUpdate {
		r.moveToFront(idx)
	}
	r.sort()
	out := e.item.Clone()
	r.mu.Unlock()

	r.fire(&out)
	return true
}

// duplicateOf returns the index of another entry equal to entries[idx], or
// -1. It is used after a location change, which can make an item collide
// with one that is already there.
func (r *Registry) duplicateOf(idx int) int {
	if !r.policy.AvoidDuplicates || r.policy.Equal == nil {
		return -1
	}
	it := r.entries[idx].item
	c := core.Change{Value: it.Value, Key: it.Key, Language: it.Language, Location: it.Location}
	for i, e := range r.entries {
		if i != idx && r.policy.Equal(e.item, c) {
			return i
		}
	}
	return -1
}

// mergeInto folds the counters of entries[src] into entries[dst], records
// the use on dst and drops src.
func (r *Registry) mergeInto(dst, src int) {
	d, s := r.entries[dst], r.entries[src]
	d.item.AddCount += s.item.AddCount
	d.item.UpdateCount += s.item.UpdateCount + 1
	d.item.UpdatedAt = r.now()
	d.item.Drift = s.item.Drift
	if s.item.CreatedAt.Before(d.item.CreatedAt) {
		d.item.CreatedAt = s.item.CreatedAt
	}
	r.seq++
	d.seq = r.seq

	delete(r.visited, s.item.ID)
	r.entries = slices.Delete(r.entries, src, src+1)
	if dst > src {
		dst--
	}
	if r.policy.PromoteOnUpdate {
		r.moveToFront(dst)
	}
	r.sort()
}

func (r *Registry) Remove(value string) bool {
	return r.removeFirst(func(e *entry) bool { return e.item.Value == value })
}

func (r *Registry) RemoveItem(id string) bool {
	return r.removeFirst(func(e *entry) bool { return e.item.ID == id })
}

func (r *Registry) removeFirst(match func(*entry) bool) bool {
	r.mu.Lock()
	idx := slices.IndexFunc(r.entries, match)
	if idx < 0 {
		r.mu.Unlock()
		return false
	}
	out := r.entries[idx].item.Clone()
	r.entries = slices.Delete(r.entries, idx, idx+1)
	delete(r.visited, out.ID)
	r.mu.Unlock()

	r.fire(&out)
	return true
}

// RemoveAllByKey deletes every item labelled key and returns how many were
// removed.
func (r *Registry) RemoveAllByKey(key string) int {
	r.mu.Lock()
	before := len(r.entries)
	r.entries = slices.DeleteFunc(r.entries, func(e *entry) bool {
		if e.item.Key != key {
			return false
		}
		delete(r.visited, e.item.ID)
		return true
	})
	n := before - len(r.entries)
	r.mu.Unlock()

	if n > 0 {
		r.fire(nil)
	}
	return n
}

func (r *Registry) ClearAll() {
	r.mu.Lock()
	r.entries = nil
	clear(r.visited)
	r.mu.Unlock()

	r.fire(nil)
}

// Replace swaps in items, e.g. after reading them from disk. Recency is
// restored from UpdatedAt; items with equal timestamps count as more recent
// the earlier they appear.
func (r *Registry) Replace(items []core.Item) {
	r.mu.Lock()
	r.entries = make([]*entry, len(items))
	for i, it := range items {
		r.entries[i] = &entry{item: it.Clone()}
	}

	byAge := slices.Clone(r.entries)
	slices.SortStableFunc(byAge, func(a, b *entry) int {
		return a.item.UpdatedAt.Compare(b.item.UpdatedAt)
	})
	// byAge is oldest first except within equal timestamps, where list
	// order must win: walk ties from the back.
	for i := 0; i < len(byAge); {
		j := i + 1
		for j < len(byAge) && byAge[j].item.UpdatedAt.Equal(byAge[i].item.UpdatedAt) {
			j++
		}
		slices.Reverse(byAge[i:j])
		i = j
	}
	for _, e := range byAge {
		r.seq++
		e.seq = r.seq
	}

	clear(r.visited)
	r.trim()
	r.sort()
	r.mu.Unlock()

	r.fire(nil)
}

// ByRecency returns a snapshot ordered most recent first. Stores whose list
// order comes from Compare persist this order so that recency survives a
// reload; the display order is restored by sorting.
func (r *Registry) ByRecency() []core.Item {
	r.mu.Lock()
	defer r.mu.Unlock()
	es := slices.Clone(r.entries)
	slices.SortStableFunc(es, func(a, b *entry) int {
		return cmp.Compare(b.seq, a.seq)
	})
	out := make([]core.Item, len(es))
	for i, e := range es {
		out[i] = e.item.Clone()
	}
	return out
}

// Sorted reports whether the list order comes from Policy.Compare.
func (r *Registry) Sorted() bool { return r.policy.Compare != nil }

func (r *Registry) GetByValue(value string) (core.Item, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.item.Value == value {
			return e.item.Clone(), true
		}
	}
	return core.Item{}, false
}

// GetByKey returns the next item labelled key in round-robin order: repeated
// calls visit every such item once before starting over. The visited set is
// only reset when a call finds no unvisited item.
func (r *Registry) GetByKey(key string) (core.Item, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	first := -1
	for i, e := range r.entries {
		if e.item.Key != key {
			continue
		}
		if first < 0 {
			first = i
		}
		if _, seen := r.visited[e.item.ID]; !seen {
			r.visited[e.item.ID] = struct{}{}
			return e.item.Clone(), true
		}
	}
	if first < 0 {
		return core.Item{}, false
	}

	clear(r.visited)
	e := r.entries[first]
	r.visited[e.item.ID] = struct{}{}
	return e.item.Clone(), true
}

// Items returns a snapshot of the list in order.
func (r *Registry) Items() []core.Item {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]core.Item, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.item.Clone()
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) moveToFront(idx int) {
	if idx <= 0 {
		return
	}
	e := r.entries[idx]
	copy(r.entries[1:idx+1], r.entries[:idx])
	r.entries[0] = e
}

// trim evicts the least recently added or updated entries until the list
// fits MaxItems.
func (r *Registry) trim() {
	over := len(r.entries) - r.policy.MaxItems
	if r.policy.MaxItems <= 0 || over <= 0 {
		return
	}

	seqs := make([]uint64, len(r.entries))
	for i, e := range r.entries {
		seqs[i] = e.seq
	}
	slices.Sort(seqs)
	cutoff := seqs[over-1]

	r.entries = slices.DeleteFunc(r.entries, func(e *entry) bool {
		if e.seq > cutoff {
			return false
		}
		delete(r.visited, e.item.ID)
		return true
	})
}

func (r *Registry) sort() {
	if r.policy.Compare == nil {
		return
	}
	slices.SortStableFunc(r.entries, func(a, b *entry) int {
		return r.policy.Compare(a.item, b.item)
	})
}
