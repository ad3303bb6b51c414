// Package journal keeps an append-only activity log of story mutations in
// SQLite, so an assistant can ask what happened to a story and when.
//
// The journal is an optional companion to the story file: the story store
// never reads it, and the server keeps working when it cannot be opened.
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// DBFile is the database file name inside the data directory.
const DBFile = "journal.db"

// ─── Types ───────────────────────────────────────────────────────────────────

// Kind classifies a journal event.
type Kind string

const (
	KindCreated   Kind = "created"
	KindEdited    Kind = "edited"
	KindProgress  Kind = "progress"
	KindReordered Kind = "reordered"
)

var validKinds = map[Kind]bool{
	KindCreated:   true,
	KindEdited:    true,
	KindProgress:  true,
	KindReordered: true,
}

// Event is one recorded mutation.
type Event struct {
	ID        int64  `json:"id"`
	StoryID   string `json:"story_id"`
	Kind      Kind   `json:"kind"`
	Summary   string `json:"summary"`
	CreatedAt string `json:"created_at"`
}

// ─── Config ──────────────────────────────────────────────────────────────────

// Config holds journal configuration.
type Config struct {
	DataDir          string
	MaxSummaryLength int
	DefaultLimit     int
}

// DefaultConfig returns the default configuration for a journal living next
// to the story file in dataDir.
func DefaultConfig(dataDir string) Config {
	return Config{
		DataDir:          dataDir,
		MaxSummaryLength: 500,
		DefaultLimit:     20,
	}
}

// ─── Store ───────────────────────────────────────────────────────────────────

// Store is the journal backed by SQLite.
type Store struct {
	db  *sql.DB
	cfg Config
}

// New opens (creating if needed) the journal database and runs migrations.
func New(cfg Config) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("journal: create data dir: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, DBFile)
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("journal: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("journal: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, cfg: cfg}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal: migration: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS events (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			story_id   TEXT NOT NULL,
			kind       TEXT NOT NULL,
			summary    TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_events_story ON events(story_id, id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// ─── Writes ──────────────────────────────────────────────────────────────────

// Record appends an event and returns its id. CreatedAt defaults to now.
func (s *Store) Record(e Event) (int64, error) {
	if strings.TrimSpace(e.StoryID) == "" {
		return 0, fmt.Errorf("journal: story id is required")
	}
	if !validKinds[e.Kind] {
		return 0, fmt.Errorf("journal: unknown event kind %q", e.Kind)
	}
	if e.CreatedAt == "" {
		e.CreatedAt = Now()
	}

	res, err := s.db.Exec(
		`INSERT INTO events (story_id, kind, summary, created_at) VALUES (?, ?, ?, ?)`,
		e.StoryID, string(e.Kind), Truncate(e.Summary, s.cfg.MaxSummaryLength), e.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("journal: insert event: %w", err)
	}
	return res.LastInsertId()
}

// ─── Reads ───────────────────────────────────────────────────────────────────

// History returns the newest events for one story, or for all stories when
// storyID is empty. A non-positive limit uses the configured default.
func (s *Store) History(storyID string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}

	query := `SELECT id, story_id, kind, summary, created_at FROM events`
	var args []any
	if storyID != "" {
		query += ` WHERE story_id = ?`
		args = append(args, storyID)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("journal: query history: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var kind string
		if err := rows.Scan(&e.ID, &e.StoryID, &kind, &e.Summary, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("journal: scan event: %w", err)
		}
		e.Kind = Kind(kind)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: iterate history: %w", err)
	}
	return events, nil
}

// Recent returns the newest events across all stories.
func (s *Store) Recent(limit int) ([]Event, error) {
	return s.History("", limit)
}

// Count returns the number of events recorded for a story, or overall when
// storyID is empty.
func (s *Store) Count(storyID string) (int, error) {
	query := `SELECT COUNT(*) FROM events`
	var args []any
	if storyID != "" {
		query += ` WHERE story_id = ?`
		args = append(args, storyID)
	}

	var n int
	if err := s.db.QueryRow(query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("journal: count events: %w", err)
	}
	return n, nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// Truncate shortens s to at most max runes, marking the cut with "...".
// A non-positive max disables truncation.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

// Now returns the current UTC time formatted for storage.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
