// Package jsonfile stores an item list as a single JSON document on local
// disk. Several processes may share one file; each notices changes made by
// the others through the file's modification time.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/its-jojoo/otterkeep/internal/adapter/storage"
	"github.com/its-jojoo/otterkeep/internal/core"
)

// Version is the schema version written by Save.
const Version = 3

// TimeLayout is how timestamps are rendered in the file.
const TimeLayout = "2006/1/2 15:04:05"

var _ storage.Gateway = (*Store)(nil)

type document struct {
	Version int      `json:"version"`
	Count   int      `json:"count"`
	Items   []record `json:"items"`
}

type record struct {
	ID          string         `json:"id,omitempty"`
	Value       string         `json:"value"`
	Key         string         `json:"key,omitempty"`
	AddCount    int            `json:"addCount"`
	UpdateCount int            `json:"updateCount"`
	Language    string         `json:"language,omitempty"`
	CreatedAt   string         `json:"createdAt"`
	UpdatedAt   string         `json:"updatedAt"`
	Location    *core.Location `json:"location,omitempty"`
	Drift       core.Drift     `json:"drift,omitempty"`
}

type Store struct {
	path string

	mu      sync.Mutex
	lastMod time.Time
}

func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string { return s.path }
func (s *Store) Close() error { return nil }

func (s *Store) Load(ctx context.Context) ([]core.Item, error) {
	_ = ctx

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	s.touch()

	items, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return items, nil
}

func (s *Store) Save(ctx context.Context, items []core.Item) error {
	_ = ctx

	doc := document{Version: Version, Count: len(items), Items: make([]record, 0, len(items))}
	for _, it := range items {
		doc.Items = append(doc.Items, toRecord(it))
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}

	s.touch()
	return nil
}

// Stale reports whether the file was modified after this store last read
// or wrote it. A missing file is never stale.
func (s *Store) Stale(ctx context.Context) (bool, error) {
	_ = ctx

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return info.ModTime().After(s.lastMod), nil
}

func (s *Store) touch() {
	info, err := os.Stat(s.path)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.lastMod = info.ModTime()
	s.mu.Unlock()
}

func decode(data []byte) ([]core.Item, error) {
	var probe struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrMalformedStore, err)
	}

	switch probe.Version {
	case Version:
		var doc document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrMalformedStore, err)
		}
		items := make([]core.Item, 0, len(doc.Items))
		for _, r := range doc.Items {
			items = append(items, fromRecord(r))
		}
		return items, nil
	case Version - 1:
		return migrateV2(data)
	case 0:
		return nil, fmt.Errorf("%w: missing version", core.ErrMalformedStore)
	default:
		return nil, fmt.Errorf("%w: %d", core.ErrUnsupportedVersion, probe.Version)
	}
}

func toRecord(it core.Item) record {
	return record{
		ID:          it.ID,
		Value:       it.Value,
		Key:         it.Key,
		AddCount:    it.AddCount,
		UpdateCount: it.UpdateCount,
		Language:    it.Language,
		CreatedAt:   formatTime(it.CreatedAt),
		UpdatedAt:   formatTime(it.UpdatedAt),
		Location:    it.Location,
		Drift:       it.Drift,
	}
}

func fromRecord(r record) core.Item {
	it := core.Item{
		ID:          r.ID,
		Value:       r.Value,
		Key:         r.Key,
		AddCount:    r.AddCount,
		UpdateCount: r.UpdateCount,
		Language:    r.Language,
		CreatedAt:   parseTime(r.CreatedAt),
		UpdatedAt:   parseTime(r.UpdatedAt),
		Location:    r.Location,
		Drift:       r.Drift,
	}
	return repair(it)
}

// repair fills fields older writers left out.
func repair(it core.Item) core.Item {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	if it.AddCount < 1 {
		it.AddCount = 1
	}
	if it.UpdateCount < 0 {
		it.UpdateCount = 0
	}
	if it.UpdatedAt.IsZero() {
		it.UpdatedAt = it.CreatedAt
	}
	return it
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(TimeLayout)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.ParseInLocation(TimeLayout, s, time.Local); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}
