package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/its-jojoo/otterkeep/internal/adapter/storage"
	"github.com/its-jojoo/otterkeep/internal/core"
)

const schemaVersion = 1

var _ storage.Gateway = (*Store)(nil)

// Store keeps an item list in a SQLite database. Staleness is detected with
// PRAGMA data_version, which only changes when another connection commits.
type Store struct {
	db   *sql.DB
	path string

	mu          sync.Mutex
	dataVersion int64
}

func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// data_version is per connection
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }
func (s *Store) Path() string { return s.path }

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS meta (
  version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS items (
  id           TEXT PRIMARY KEY,
  position     INTEGER NOT NULL,
  value        TEXT NOT NULL,
  key          TEXT NOT NULL DEFAULT '',
  add_count    INTEGER NOT NULL,
  update_count INTEGER NOT NULL,
  language     TEXT NOT NULL DEFAULT '',
  created_at   INTEGER NOT NULL,
  updated_at   INTEGER NOT NULL,
  uri          TEXT,
  start_line   INTEGER,
  start_char   INTEGER,
  end_line     INTEGER,
  end_char     INTEGER,
  drift        TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_items_position ON items(position);
`)
	if err != nil {
		return err
	}

	var v int
	err = s.db.QueryRow(`SELECT version FROM meta LIMIT 1`).Scan(&v)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = s.db.Exec(`INSERT INTO meta(version) VALUES(?)`, schemaVersion)
		return err
	case err != nil:
		return err
	case v > schemaVersion:
		return fmt.Errorf("%w: %d", core.ErrUnsupportedVersion, v)
	}
	return nil
}

func (s *Store) Load(ctx context.Context) ([]core.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, value, key, add_count, update_count, language, created_at, updated_at,
       uri, start_line, start_char, end_line, end_char, drift
FROM items
ORDER BY position ASC
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.Item
	for rows.Next() {
		var it core.Item
		var cAt, uAt int64
		var uri sql.NullString
		var sl, sc, el, ec sql.NullInt64
		var drift string

		if err := rows.Scan(&it.ID, &it.Value, &it.Key, &it.AddCount, &it.UpdateCount, &it.Language,
			&cAt, &uAt, &uri, &sl, &sc, &el, &ec, &drift); err != nil {
			return nil, err
		}
		it.CreatedAt = time.UnixMilli(cAt)
		it.UpdatedAt = time.UnixMilli(uAt)
		it.Drift = core.Drift(drift)
		if uri.Valid {
			it.Location = &core.Location{
				URI: uri.String,
				Range: core.Range{
					Start: core.Position{Line: int(sl.Int64), Character: int(sc.Int64)},
					End:   core.Position{Line: int(el.Int64), Character: int(ec.Int64)},
				},
			}
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, s.recordDataVersion(ctx)
}

// Save replaces the stored list in one transaction.
func (s *Store) Save(ctx context.Context, items []core.Item) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM items`); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO items(id, position, value, key, add_count, update_count, language, created_at, updated_at,
                  uri, start_line, start_char, end_line, end_char, drift)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, it := range items {
		if it.ID == "" {
			return errors.New("item ID required")
		}
		var uri any
		var sl, sc, el, ec any
		if loc := it.Location; loc != nil {
			uri = loc.URI
			sl, sc = loc.Range.Start.Line, loc.Range.Start.Character
			el, ec = loc.Range.End.Line, loc.Range.End.Character
		}
		if _, err := stmt.ExecContext(ctx, it.ID, i, it.Value, it.Key, it.AddCount, it.UpdateCount, it.Language,
			it.CreatedAt.UnixMilli(), it.UpdatedAt.UnixMilli(), uri, sl, sc, el, ec, string(it.Drift)); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	return s.recordDataVersion(ctx)
}

func (s *Store) Stale(ctx context.Context) (bool, error) {
	v, err := s.readDataVersion(ctx)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return v != s.dataVersion, nil
}

func (s *Store) recordDataVersion(ctx context.Context) error {
	v, err := s.readDataVersion(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.dataVersion = v
	s.mu.Unlock()
	return nil
}

func (s *Store) readDataVersion(ctx context.Context) (int64, error) {
	var v int64
	err := s.db.QueryRowContext(ctx, `PRAGMA data_version`).Scan(&v)
	return v, err
}
