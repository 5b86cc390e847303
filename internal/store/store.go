// Package store archives crawl reports in a local SQLite database so past
// runs can be listed and their pages reloaded.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/ramkansal/docfang/pkg/plugin"
)

// ErrRunNotFound is returned when a run ID has no archived run.
var ErrRunNotFound = errors.New("run not found")

// Store is a SQLite-backed archive of crawl runs.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Run summarizes one archived crawl.
type Run struct {
	ID         int64
	Platform   string
	BaseURL    string
	TotalPages int
	ScrapedAt  string
	CreatedAt  time.Time
}

// DefaultPath returns the archive location under the XDG data directory,
// creating parent directories as needed.
func DefaultPath() (string, error) {
	path, err := xdg.DataFile(filepath.Join("docfang", "docfang.db"))
	if err != nil {
		return "", errors.Wrap(err, "resolving data directory")
	}
	return path, nil
}

// Open opens or creates the archive at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, errors.Wrap(err, "creating database directory")
	}

	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, path: path, now: time.Now}
	if err := s.createTables(context.Background()); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "creating tables")
	}
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		platform TEXT NOT NULL,
		base_url TEXT NOT NULL,
		total_pages INTEGER NOT NULL,
		scraped_at TEXT NOT NULL,
		analysis_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		title TEXT NOT NULL,
		section TEXT,
		page_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_pages_run ON pages(run_id);
	CREATE INDEX IF NOT EXISTS idx_pages_url ON pages(url);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// SaveReport archives report as a new run and returns its ID. Pages keep
// their report order.
func (s *Store) SaveReport(ctx context.Context, baseURL string, report *plugin.Report) (int64, error) {
	analysisJSON, err := json.Marshal(report.Analysis)
	if err != nil {
		return 0, errors.Wrap(err, "serializing analysis")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "starting transaction")
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
	INSERT INTO runs (platform, base_url, total_pages, scraped_at, analysis_json, created_at)
	VALUES (?, ?, ?, ?, ?, ?)
	`,
		report.Platform,
		baseURL,
		report.TotalPages,
		report.ScrapedAt,
		string(analysisJSON),
		s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, errors.Wrap(err, "inserting run")
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "reading run id")
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO pages (run_id, url, title, section, page_json)
	VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, errors.Wrap(err, "preparing page insert")
	}
	defer stmt.Close()

	for _, page := range report.Pages {
		pageJSON, err := json.Marshal(page)
		if err != nil {
			return 0, errors.Wrapf(err, "serializing page %s", page.URL)
		}
		if _, err := stmt.ExecContext(ctx, runID, page.URL, page.Title, page.Section, string(pageJSON)); err != nil {
			return 0, errors.Wrapf(err, "inserting page %s", page.URL)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "committing run")
	}
	return runID, nil
}

// Runs lists archived runs, newest first. A limit of zero or less returns all runs.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	query := `
	SELECT id, platform, base_url, total_pages, scraped_at, created_at
	FROM runs
	ORDER BY id DESC
	`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var createdAt string
		if err := rows.Scan(&run.ID, &run.Platform, &run.BaseURL, &run.TotalPages, &run.ScrapedAt, &createdAt); err != nil {
			return nil, errors.Wrap(err, "scanning run")
		}
		run.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Pages reloads the pages archived for runID in their original order.
func (s *Store) Pages(ctx context.Context, runID int64) ([]*plugin.DocumentationPage, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, runID).Scan(&exists)
	if err != nil {
		return nil, errors.Wrap(err, "looking up run")
	}
	if exists == 0 {
		return nil, errors.Wrapf(ErrRunNotFound, "id %d", runID)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT page_json FROM pages WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, errors.Wrap(err, "querying pages")
	}
	defer rows.Close()

	pages := []*plugin.DocumentationPage{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, errors.Wrap(err, "scanning page")
		}
		var page plugin.DocumentationPage
		if err := json.Unmarshal([]byte(raw), &page); err != nil {
			return nil, errors.Wrap(err, "decoding page")
		}
		pages = append(pages, &page)
	}
	return pages, rows.Err()
}
