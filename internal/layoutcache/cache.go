// Package layoutcache persists settled layouts in a small SQLite database,
// keyed by the SHA-256 digest of the input document. Reopening an unchanged
// document seeds relaxation with last session's settled positions instead of
// starting from the radial default.
package layoutcache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/orbweave/pkg/model"
	"github.com/vanderheijden86/orbweave/pkg/view"
)

const schema = `
CREATE TABLE IF NOT EXISTS layouts (
	digest     TEXT NOT NULL,
	filter_key TEXT NOT NULL,
	positions  TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	PRIMARY KEY (digest, filter_key)
);
`

// Cache is a settled-layout store. Safe for use from one process; SQLite's
// busy timeout covers concurrent invocations.
type Cache struct {
	db   *sql.DB
	path string
}

// Digest returns the cache key for a document's raw bytes.
func Digest(doc []byte) string {
	sum := sha256.Sum256(doc)
	return hex.EncodeToString(sum[:])
}

// Open opens (or creates) the cache database at the given path.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open layout cache: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create layout schema: %w", err)
	}

	return &Cache{db: db, path: path}, nil
}

// Close closes the database.
func (c *Cache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Get returns the cached positions for a document digest and filter key.
// A miss reports ok == false without an error.
func (c *Cache) Get(digest, filterKey string) (map[int]view.Point, bool, error) {
	var blob string
	err := c.db.QueryRow(
		"SELECT positions FROM layouts WHERE digest = ? AND filter_key = ?",
		digest, filterKey,
	).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read layout cache: %w", err)
	}

	var positions map[int]view.Point
	if err := json.Unmarshal([]byte(blob), &positions); err != nil {
		// A corrupt row is treated as a miss; the next Put overwrites it.
		return nil, false, nil
	}
	return positions, true, nil
}

// Put stores settled positions for a document digest and filter key,
// replacing any previous entry.
func (c *Cache) Put(digest, filterKey string, positions map[int]view.Point) error {
	blob, err := json.Marshal(positions)
	if err != nil {
		return fmt.Errorf("marshal positions: %w", err)
	}
	_, err = c.db.Exec(
		`INSERT INTO layouts (digest, filter_key, positions, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (digest, filter_key) DO UPDATE SET
		   positions = excluded.positions,
		   updated_at = excluded.updated_at`,
		digest, filterKey, string(blob), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("write layout cache: %w", err)
	}
	return nil
}

// Prune removes entries older than the given age.
func (c *Cache) Prune(maxAge time.Duration) error {
	_, err := c.db.Exec(
		"DELETE FROM layouts WHERE updated_at < ?",
		time.Now().UTC().Add(-maxAge),
	)
	if err != nil {
		return fmt.Errorf("prune layout cache: %w", err)
	}
	return nil
}

// SnapshotPositions extracts the free-node positions of a snapshot for
// caching. Pinned nodes are skipped; their positions are deterministic.
func SnapshotPositions(snap *view.Snapshot) map[int]view.Point {
	positions := make(map[int]view.Point, len(snap.Nodes))
	for _, n := range snap.Nodes {
		if n.Pinned {
			continue
		}
		positions[n.ID] = view.Point{X: n.X, Y: n.Y}
	}
	return positions
}

// FilterKey canonicalizes a snapshot's visibility state into a stable cache
// key, so each filter combination caches its own settled layout.
func FilterKey(snap *view.Snapshot) string {
	return StateKey(snap.State)
}

// StateKey canonicalizes a visibility state into a stable cache key.
func StateKey(vs model.VisibilityState) string {
	type state struct {
		Categories map[string]bool `json:"categories"`
		Depths     map[int]bool    `json:"depths"`
	}
	blob, err := json.Marshal(state{Categories: vs.Categories, Depths: vs.Depths})
	if err != nil {
		return "default"
	}
	sum := sha256.Sum256(blob)
	return hex.EncodeToString(sum[:8])
}
