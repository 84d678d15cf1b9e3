package bookmarks

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"newsdesk/internal/news"
)

// SQLiteStore keeps bookmarks in a SQLite database file.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (and if needed creates) the database at dsn.
func OpenSQLite(dsn string) (*SQLiteStore, error) {
	if dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("creating bookmarks dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening bookmarks db: %w", err)
	}
	// one connection serializes writers and keeps :memory: databases alive
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, now: time.Now}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS bookmarks (
			id            TEXT PRIMARY KEY,
			owner         TEXT NOT NULL,
			url           TEXT NOT NULL,
			article       TEXT NOT NULL,
			bookmarked_at TEXT NOT NULL,
			UNIQUE(owner, url)
		);
		CREATE INDEX IF NOT EXISTS idx_bookmarks_owner ON bookmarks(owner);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) List(ctx context.Context, owner string) ([]Bookmark, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, article, bookmarked_at FROM bookmarks
		WHERE owner = ? ORDER BY rowid`, owner)
	if err != nil {
		return nil, fmt.Errorf("querying bookmarks: %w", err)
	}
	defer rows.Close()

	out := []Bookmark{}
	for rows.Next() {
		var (
			b       Bookmark
			payload string
			at      string
		)
		if err := rows.Scan(&b.ID, &payload, &at); err != nil {
			return nil, fmt.Errorf("scanning bookmark: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &b.Article); err != nil {
			return nil, fmt.Errorf("decoding bookmark %s: %w", b.ID, err)
		}
		b.BookmarkedAt, err = time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return nil, fmt.Errorf("decoding bookmark %s time: %w", b.ID, err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Add(ctx context.Context, owner string, article news.Article) (int, error) {
	if article.URL == "" {
		return 0, ErrMissingURL
	}
	payload, err := json.Marshal(article)
	if err != nil {
		return 0, fmt.Errorf("encoding article: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO bookmarks (id, owner, url, article, bookmarked_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(owner, url) DO NOTHING`,
		uuid.NewString(), owner, article.URL, string(payload), s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("inserting bookmark: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	n, err := countTx(ctx, tx, owner)
	if err != nil {
		return 0, err
	}
	if inserted == 0 {
		return n, ErrAlreadyBookmarked
	}
	return n, tx.Commit()
}

func (s *SQLiteStore) Remove(ctx context.Context, owner, articleURL string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM bookmarks WHERE owner = ? AND url = ?`, owner, articleURL); err != nil {
		return 0, fmt.Errorf("deleting bookmark: %w", err)
	}
	n, err := countTx(ctx, tx, owner)
	if err != nil {
		return 0, err
	}
	return n, tx.Commit()
}

func (s *SQLiteStore) Contains(ctx context.Context, owner, articleURL string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookmarks WHERE owner = ? AND url = ?`, owner, articleURL).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking bookmark: %w", err)
	}
	return n > 0, nil
}

func countTx(ctx context.Context, tx *sql.Tx, owner string) (int, error) {
	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookmarks WHERE owner = ?`, owner).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting bookmarks: %w", err)
	}
	return n, nil
}
