package sink

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hazyhaar/ghostmap/ghost/annotation"

	_ "modernc.org/sqlite"
)

// Schema for the run history table.
const Schema = `
CREATE TABLE IF NOT EXISTS ghost_runs (
	id         TEXT PRIMARY KEY,
	page_url   TEXT NOT NULL DEFAULT '',
	marked     INTEGER NOT NULL,
	rendered   INTEGER NOT NULL,
	report     TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_ghost_runs_page ON ghost_runs(page_url, created_at);
`

var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 10000",
	"PRAGMA synchronous = NORMAL",
}

// SQLite records every report as one row of ghost_runs. It is a diagnostic
// history of runs; annotations themselves are never restored from it.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the history database at path.
// Use ":memory:" in tests.
func OpenSQLite(path string) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: mkdir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	if path == ":memory:" {
		// Each pooled connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", p, err)
		}
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Send(ctx context.Context, rep annotation.Report) error {
	data, err := annotation.MarshalReport(&rep)
	if err != nil {
		return fmt.Errorf("sqlite: marshal report: %w", err)
	}
	created := rep.Timestamp
	if created == 0 {
		created = time.Now().UnixMilli()
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO ghost_runs (id, page_url, marked, rendered, report, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rep.ID, rep.PageURL, rep.Marked, rep.Rendered, string(data), created)
	if err != nil {
		return fmt.Errorf("sqlite: insert run %s: %w", rep.ID, err)
	}
	return nil
}

// Recent returns the latest reports for pageURL, newest first. An empty
// pageURL matches every page.
func (s *SQLite) Recent(ctx context.Context, pageURL string, limit int) ([]annotation.Report, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT report FROM ghost_runs
		WHERE (? = '' OR page_url = ?)
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, pageURL, pageURL, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query runs: %w", err)
	}
	defer rows.Close()

	var out []annotation.Report
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		rep, err := annotation.UnmarshalReport([]byte(raw))
		if err != nil {
			return nil, err
		}
		out = append(out, *rep)
	}
	return out, rows.Err()
}

func (s *SQLite) Close() error { return s.db.Close() }
