package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/its-jojoo/otterkeep/internal/adapter/storage/jsonfile"
	"github.com/its-jojoo/otterkeep/internal/adapter/storage/memory"
	"github.com/its-jojoo/otterkeep/internal/core"
)

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (n *recordingNotifier) Warn(msg string) {
	n.mu.Lock()
	n.msgs = append(n.msgs, msg)
	n.mu.Unlock()
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.msgs)
}

func ptr[T any](v T) *T { return &v }

func values(items []core.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Value
	}
	return out
}

func mark(value, key, uri string, line int) core.Change {
	return core.Change{
		Value: value,
		Key:   key,
		Location: &core.Location{
			URI: uri,
			Range: core.Range{
				Start: core.Position{Line: line},
				End:   core.Position{Line: line, Character: len(value)},
			},
		},
	}
}

func TestClipboardHistory_EvictsOldest(t *testing.T) {
	s := NewClipboardHistory(context.Background(), memory.New(), Options{MaxItems: ptr(3)})
	for _, v := range []string{"a", "b", "c", "d"} {
		s.Add(core.Change{Value: v})
	}
	assert.Equal(t, []string{"d", "c", "b"}, values(s.Items()))
}

func TestClipboardHistory_MoveToTopDisabled(t *testing.T) {
	s := NewClipboardHistory(context.Background(), nil, Options{MoveToTop: ptr(false)})
	s.Add(core.Change{Value: "a"})
	s.Add(core.Change{Value: "b"})
	s.Add(core.Change{Value: "a"})
	assert.Equal(t, []string{"b", "a"}, values(s.Items()))

	it, ok := s.GetByValue("a")
	require.True(t, ok)
	assert.Equal(t, 2, it.AddCount)
}

func TestFileHistory_UpdatePromotes(t *testing.T) {
	s := NewFileHistory(context.Background(), nil, Options{})
	s.Add(core.Change{Value: "/a.go"})
	s.Add(core.Change{Value: "/b.go"})
	require.True(t, s.Update("/a.go"))
	assert.Equal(t, []string{"/a.go", "/b.go"}, values(s.Items()))
	assert.False(t, s.Update("/missing.go"))
}

func TestQuickBookmarks_SameKeyReplaces(t *testing.T) {
	s := NewQuickBookmarks(context.Background(), nil, "", Options{})
	s.Add(core.Change{Value: "x", Key: "m"})
	s.Add(core.Change{Value: "y", Key: "m"})

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "y", items[0].Value)
	assert.Equal(t, 2, items[0].AddCount)
}

func TestQuickBookmarks_ScratchKeyAccumulates(t *testing.T) {
	s := NewQuickBookmarks(context.Background(), nil, "", Options{})
	s.Add(mark("todo one", DefaultScratchKey, "file:///a.go", 1))
	s.Add(mark("todo two", DefaultScratchKey, "file:///a.go", 5))
	assert.Equal(t, 2, s.Len())

	first, ok := s.GetByKey(DefaultScratchKey)
	require.True(t, ok)
	second, ok := s.GetByKey(DefaultScratchKey)
	require.True(t, ok)
	assert.NotEqual(t, first.ID, second.ID)

	assert.Equal(t, 2, s.RemoveAllByKey(DefaultScratchKey))
	assert.Zero(t, s.Len())
}

func TestQuickBookmarks_CustomScratchKey(t *testing.T) {
	s := NewQuickBookmarks(context.Background(), nil, "!", Options{})
	s.Add(core.Change{Value: "a", Key: "!"})
	s.Add(core.Change{Value: "b", Key: "!"})
	s.Add(core.Change{Value: "c", Key: "*"})
	s.Add(core.Change{Value: "d", Key: "*"})
	assert.Equal(t, 3, s.Len())
}

func TestBookmarks_DedupAndSort(t *testing.T) {
	s := NewBookmarks(context.Background(), nil, Options{})
	s.Add(mark("beta", "", "file:///b.go", 3))
	s.Add(mark("alpha", "", "file:///a.go", 9))
	s.Add(mark("alpha2", "", "file:///a.go", 2))
	s.Add(core.Change{Value: "loose"})
	s.Add(mark("beta", "", "file:///b.go", 3))

	// same text on another line is a different bookmark
	s.Add(mark("beta", "", "file:///b.go", 4))

	assert.Equal(t, []string{"alpha2", "alpha", "beta", "beta", "loose"}, values(s.Items()))

	it, ok := s.GetByValue("beta")
	require.True(t, ok)
	assert.Equal(t, 2, it.AddCount)
}

func TestCompareBookmarks_KeyedFirst(t *testing.T) {
	loc := func(uri string, line int) *core.Location {
		return &core.Location{URI: uri, Range: core.Range{Start: core.Position{Line: line}}}
	}
	keyedB := core.Item{Key: "b", Location: loc("file:///a.go", 1)}
	keyedA := core.Item{Key: "a", Location: loc("file:///z.go", 1)}
	plain := core.Item{Location: loc("file:///a.go", 0)}
	bare := core.Item{}

	assert.Negative(t, CompareBookmarks(keyedA, keyedB))
	assert.Negative(t, CompareBookmarks(keyedB, plain))
	assert.Negative(t, CompareBookmarks(plain, bare))
	assert.Positive(t, CompareBookmarks(bare, plain))
	assert.Zero(t, CompareBookmarks(bare, core.Item{}))
}

func TestStore_CloseFlushes(t *testing.T) {
	gw := memory.New()
	s := NewClipboardHistory(context.Background(), gw, Options{})
	s.Add(core.Change{Value: "a"})
	assert.True(t, s.Dirty())
	assert.Zero(t, gw.Saves())

	require.NoError(t, s.Close())
	assert.Equal(t, 1, gw.Saves())
	assert.False(t, s.Dirty())

	got, err := gw.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, values(got))
}

func TestStore_FlushSkipsWhenClean(t *testing.T) {
	gw := memory.New()
	s := NewClipboardHistory(context.Background(), gw, Options{})
	require.NoError(t, s.Flush(context.Background()))
	assert.Zero(t, gw.Saves())

	// an add of an empty value changes nothing
	s.Add(core.Change{})
	assert.False(t, s.Dirty())
}

func TestStore_TickerFlushes(t *testing.T) {
	gw := memory.New()
	s := NewClipboardHistory(context.Background(), gw, Options{FlushInterval: 10 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.Close()

	s.Add(core.Change{Value: "a"})
	require.Eventually(t, func() bool { return gw.Saves() == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.False(t, s.Dirty())
}

func TestStore_WriteFailureReportedOnce(t *testing.T) {
	gw := memory.New()
	n := &recordingNotifier{}
	s := NewClipboardHistory(context.Background(), gw, Options{Notifier: n})
	ctx := context.Background()

	gw.Fail(errors.New("read-only file system"))
	s.Add(core.Change{Value: "a"})
	require.Error(t, s.Flush(ctx))
	s.Add(core.Change{Value: "b"})
	require.Error(t, s.Flush(ctx))
	assert.Equal(t, 1, n.count())

	// memory is kept
	assert.Equal(t, []string{"b", "a"}, values(s.Items()))

	// no retry without a new change
	require.NoError(t, s.Flush(ctx))

	gw.Fail(nil)
	s.Add(core.Change{Value: "c"})
	require.NoError(t, s.Flush(ctx))
	assert.Equal(t, 1, gw.Saves())

	// a new streak is reported again
	gw.Fail(errors.New("disk full"))
	s.Add(core.Change{Value: "d"})
	require.Error(t, s.Flush(ctx))
	assert.Equal(t, 2, n.count())
}

func TestStore_MalformedFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".Clipboard.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	n := &recordingNotifier{}
	s := NewClipboardHistory(context.Background(), jsonfile.New(path), Options{Notifier: n})
	assert.Zero(t, s.Len())
	assert.Zero(t, n.count())

	s.Add(core.Change{Value: "fresh"})
	require.NoError(t, s.Close())

	again := NewClipboardHistory(context.Background(), jsonfile.New(path), Options{})
	assert.Equal(t, []string{"fresh"}, values(again.Items()))
}

func TestStore_ReloadsBeforeMutationWhenFileChanged(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), ".Clipboard.json")

	s := NewClipboardHistory(ctx, jsonfile.New(path), Options{})
	s.Add(core.Change{Value: "mine"})
	require.NoError(t, s.Flush(ctx))

	// another process rewrites the file
	other := jsonfile.New(path)
	require.NoError(t, other.Save(ctx, []core.Item{core.NewItem(core.Change{Value: "theirs"})}))
	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, future, future))

	var bulk int
	s.OnDidChangeItemList(func(it *core.Item) {
		if it == nil {
			bulk++
		}
	})

	s.Add(core.Change{Value: "new"})
	assert.Equal(t, []string{"new", "theirs"}, values(s.Items()))
	assert.Equal(t, 1, bulk)

	// nothing changed since
	assert.False(t, s.CheckExternalUpdate(ctx))
}

func TestStore_RoundTripThroughJSONFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), ".QuickBookmarks.json")

	s := NewQuickBookmarks(ctx, jsonfile.New(path), "", Options{})
	s.Add(mark("func main()", "m", "file:///main.go", 4))
	s.Add(mark("todo", DefaultScratchKey, "file:///main.go", 10))
	it, ok := s.GetByKey("m")
	require.True(t, ok)
	require.True(t, s.UpdateItem(it))
	require.NoError(t, s.Close())

	again := NewQuickBookmarks(ctx, jsonfile.New(path), "", Options{})
	want, got := s.Items(), again.Items()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.Equal(t, want[i].Value, got[i].Value)
		assert.Equal(t, want[i].Key, got[i].Key)
		assert.Equal(t, want[i].AddCount, got[i].AddCount)
		assert.Equal(t, want[i].UpdateCount, got[i].UpdateCount)
		assert.Equal(t, want[i].Location, got[i].Location)
	}
	assert.Equal(t, path, again.Path())
	assert.Equal(t, NameQuickBookmarks, again.Name())
}

func TestStore_MemoryOnly(t *testing.T) {
	s := NewFileHistory(context.Background(), nil, Options{})
	s.Add(core.Change{Value: "/a"})
	assert.Empty(t, s.Path())
	assert.False(t, s.CheckExternalUpdate(context.Background()))
	require.NoError(t, s.Close())
	assert.True(t, s.ClearAll())
	assert.Zero(t, s.Len())
}

func TestStore_CloseRetriesFailedWrite(t *testing.T) {
	gw := memory.New()
	n := &recordingNotifier{}
	s := NewClipboardHistory(context.Background(), gw, Options{Notifier: n})
	ctx := context.Background()

	gw.Fail(errors.New("disk full"))
	s.Add(core.Change{Value: "a"})
	require.Error(t, s.Flush(ctx))

	// the timer does not retry on its own
	require.NoError(t, s.Flush(ctx))
	assert.Zero(t, gw.Saves())

	gw.Fail(nil)
	require.NoError(t, s.Close())
	assert.Equal(t, 1, gw.Saves())
	assert.Equal(t, 1, n.count())

	got, err := gw.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, values(got))
}

func TestBookmarks_EvictionAfterReloadKeepsNewest(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), ".Bookmarks.json")
	opts := Options{MaxItems: ptr(2)}

	s := NewBookmarks(ctx, jsonfile.New(path), opts)
	s.Add(mark("first", "", "file:///a.go", 1))
	s.Add(mark("second", "", "file:///z.go", 1))
	require.NoError(t, s.Close())

	again := NewBookmarks(ctx, jsonfile.New(path), opts)
	require.Equal(t, []string{"first", "second"}, values(again.Items()))

	again.Add(mark("third", "", "file:///m.go", 1))
	assert.Equal(t, []string{"third", "second"}, values(again.Items()))
}

func TestBookmarks_RelocationOntoExistingMerges(t *testing.T) {
	s := NewBookmarks(context.Background(), nil, Options{})
	s.Add(mark("foo", "", "file:///a.go", 0))
	s.Add(mark("foo", "", "file:///a.go", 2))
	require.Equal(t, 2, s.Len())

	var moved, target core.Item
	for _, it := range s.Items() {
		if it.Location.Range.Start.Line == 0 {
			moved = it
		} else {
			target = it
		}
	}
	moved.Location.Range.Start.Line = 2
	moved.Location.Range.End.Line = 2
	require.True(t, s.UpdateItem(moved))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, target.ID, items[0].ID)
	assert.Equal(t, 2, items[0].Location.Range.Start.Line)
	assert.Equal(t, 2, items[0].AddCount)
	assert.Equal(t, 1, items[0].UpdateCount)
	assert.True(t, s.Dirty())
}
