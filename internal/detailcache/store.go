package detailcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"mediaminder/internal/catalog"
	"mediaminder/internal/media"
)

// timeLayout is fixed width so fetched_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Entry is one cached detail row.
type Entry struct {
	MediaType  media.Type
	ExternalID string
	Genres     []catalog.Genre
	Subjects   []string
	FetchedAt  time.Time
}

type payload struct {
	Genres   []catalog.Genre `json:"genres,omitempty"`
	Subjects []string        `json:"subjects,omitempty"`
}

// Store persists catalog genre and subject lists in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the detail cache database.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("detail cache path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create detail cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Get returns the cached entry for (t, externalID). A missing row reports
// false with a nil error.
func (s *Store) Get(ctx context.Context, t media.Type, externalID string) (Entry, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT payload, fetched_at FROM catalog_details WHERE media_type = ? AND external_id = ?`,
		string(t), externalID,
	)
	var raw, fetchedRaw string
	if err := row.Scan(&raw, &fetchedRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("get detail: %w", err)
	}
	var p payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Entry{}, false, fmt.Errorf("decode detail payload: %w", err)
	}
	fetchedAt, err := time.Parse(timeLayout, fetchedRaw)
	if err != nil {
		return Entry{}, false, fmt.Errorf("parse fetched_at: %w", err)
	}
	return Entry{
		MediaType:  t,
		ExternalID: externalID,
		Genres:     p.Genres,
		Subjects:   p.Subjects,
		FetchedAt:  fetchedAt,
	}, true, nil
}

// Put stores or replaces an entry.
func (s *Store) Put(ctx context.Context, entry Entry) error {
	raw, err := json.Marshal(payload{Genres: entry.Genres, Subjects: entry.Subjects})
	if err != nil {
		return fmt.Errorf("encode detail payload: %w", err)
	}
	fetchedAt := entry.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO catalog_details (media_type, external_id, payload, fetched_at)
         VALUES (?, ?, ?, ?)
         ON CONFLICT(media_type, external_id) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at`,
		string(entry.MediaType),
		entry.ExternalID,
		string(raw),
		fetchedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("put detail: %w", err)
	}
	return nil
}

// Prune deletes entries fetched before cutoff and returns the count removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM catalog_details WHERE fetched_at < ?`,
		cutoff.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("prune details: %w", err)
	}
	return res.RowsAffected()
}

// Clear deletes every entry and returns the count removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM catalog_details`)
	if err != nil {
		return 0, fmt.Errorf("clear details: %w", err)
	}
	return res.RowsAffected()
}

// Stats returns the number of cached entries per media type.
func (s *Store) Stats(ctx context.Context) (map[media.Type]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT media_type, COUNT(1) FROM catalog_details GROUP BY media_type`)
	if err != nil {
		return nil, fmt.Errorf("detail stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[media.Type]int)
	for rows.Next() {
		var t string
		var count int
		if err := rows.Scan(&t, &count); err != nil {
			return nil, err
		}
		stats[media.Type(t)] = count
	}
	return stats, rows.Err()
}
