// Package cache persists classification results keyed by profile content
// hash, so reruns over unchanged files skip the LLM entirely.
package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/seqlab/prospect/internal/rubric"
)

const schema = `
CREATE TABLE IF NOT EXISTS classifications (
	file_hash     TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	criteria_json TEXT NOT NULL,
	scores_json   TEXT NOT NULL,
	label         TEXT NOT NULL,
	justification TEXT NOT NULL,
	timestamp     TEXT NOT NULL
);
`

// Entry is one cached classification.
type Entry struct {
	Hash          string
	Name          string
	Criteria      rubric.CriterionSet
	Scores        map[string]float64
	Label         string
	Justification string
}

// Cache is a SQLite-backed result store. Safe for use from a single
// goroutine, which is all the sequential pipeline needs.
type Cache struct {
	db *sql.DB
}

// Open opens (creating if needed) the cache database at path.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing cache schema: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get looks up a cached result by content hash. The boolean reports whether
// an entry was found; a miss is not an error.
func (c *Cache) Get(hash string) (Entry, bool, error) {
	row := c.db.QueryRow(`
		SELECT name, criteria_json, scores_json, label, justification
		FROM classifications WHERE file_hash = ?`, hash)

	var e Entry
	var criteriaJSON, scoresJSON string
	err := row.Scan(&e.Name, &criteriaJSON, &scoresJSON, &e.Label, &e.Justification)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("reading cache entry: %w", err)
	}

	if err := json.Unmarshal([]byte(criteriaJSON), &e.Criteria); err != nil {
		return Entry{}, false, fmt.Errorf("decoding cached criteria: %w", err)
	}
	if err := json.Unmarshal([]byte(scoresJSON), &e.Scores); err != nil {
		return Entry{}, false, fmt.Errorf("decoding cached scores: %w", err)
	}
	e.Hash = hash
	return e, true, nil
}

// Put stores a result, replacing any previous entry for the same hash.
func (c *Cache) Put(e Entry) error {
	criteriaJSON, err := json.Marshal(e.Criteria)
	if err != nil {
		return fmt.Errorf("encoding criteria: %w", err)
	}
	scoresJSON, err := json.Marshal(e.Scores)
	if err != nil {
		return fmt.Errorf("encoding scores: %w", err)
	}

	_, err = c.db.Exec(`
		INSERT OR REPLACE INTO classifications
		(file_hash, name, criteria_json, scores_json, label, justification, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.Hash, e.Name, string(criteriaJSON), string(scoresJSON),
		e.Label, e.Justification, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Len counts stored entries.
func (c *Cache) Len() (int, error) {
	var n int
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM classifications`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting cache entries: %w", err)
	}
	return n, nil
}
