// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists search sessions and their result sets in a
// SQLite database, with FTS5 full-text search over stored papers.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/litscout/pkg/types"
)

const dbFile = "litscout.db"

// SearchSummary is a stored search session without its results.
type SearchSummary struct {
	ID          int64     `json:"id" yaml:"id"`
	Query       string    `json:"query" yaml:"query"`
	SubQueries  []string  `json:"sub_queries,omitempty" yaml:"sub_queries,omitempty"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	ResultCount int       `json:"result_count" yaml:"result_count"`
}

// SavedSearch is a stored session with its merged result list.
type SavedSearch struct {
	SearchSummary
	Results []types.PaperRecord `json:"results" yaml:"results"`
}

// ResultStore persists search sessions.
type ResultStore interface {
	SaveSearch(ctx context.Context, query string, subQueries []string, results []types.PaperRecord) (int64, error)
	GetSearch(ctx context.Context, id int64) (*SavedSearch, error)
	ListSearches(ctx context.Context, limit int) ([]SearchSummary, error)
	FindPapers(ctx context.Context, query string, limit int) ([]types.PaperRecord, error)
	Close() error
}

// SQLiteStore is the production ResultStore.
type SQLiteStore struct {
	db *sql.DB
}

var _ ResultStore = (*SQLiteStore)(nil)

// Open opens or creates the database at cfg.Dir/litscout.db, creating
// the schema if needed. The schema includes an FTS5 virtual table, so
// the binary must be built with the sqlite_fts5 tag.
func Open(cfg types.StoreConfig) (*SQLiteStore, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS searches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			query TEXT NOT NULL,
			sub_queries TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS papers (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			search_id INTEGER NOT NULL REFERENCES searches(id),
			paper_id TEXT NOT NULL,
			title TEXT,
			authors TEXT,
			abstract TEXT,
			url TEXT,
			pdf_url TEXT,
			source TEXT,
			published_date TEXT,
			score_bm25 REAL,
			position INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_search_id ON papers(search_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='papers_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE papers_fts USING fts5(title, abstract, content=papers, content_rowid=rowid)`,
			`CREATE TRIGGER papers_ai AFTER INSERT ON papers BEGIN
				INSERT INTO papers_fts(rowid, title, abstract) VALUES (new.rowid, new.title, new.abstract);
			END`,
			`CREATE TRIGGER papers_ad AFTER DELETE ON papers BEGIN
				INSERT INTO papers_fts(papers_fts, rowid, title, abstract) VALUES('delete', old.rowid, old.title, old.abstract);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}
	return nil
}

// SaveSearch stores a session and its merged result list in one
// transaction, returning the session id.
func (s *SQLiteStore) SaveSearch(ctx context.Context, query string, subQueries []string, results []types.PaperRecord) (int64, error) {
	subJSON, err := json.Marshal(subQueries)
	if err != nil {
		return 0, fmt.Errorf("marshaling sub-queries: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO searches (query, sub_queries, created_at) VALUES (?, ?, ?)`,
		query, string(subJSON), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting search: %w", err)
	}
	searchID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading search id: %w", err)
	}

	for i, r := range results {
		authorsJSON, err := json.Marshal(r.Authors)
		if err != nil {
			return 0, fmt.Errorf("marshaling authors: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO papers
				(search_id, paper_id, title, authors, abstract, url, pdf_url, source, published_date, score_bm25, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			searchID, r.ID, r.Title, string(authorsJSON), r.Abstract,
			r.CanonicalURL, r.PDFURL, r.Source, formatDate(r.PublishedDate), r.BM25Score, i,
		); err != nil {
			return 0, fmt.Errorf("inserting paper %q: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing search: %w", err)
	}
	return searchID, nil
}

// GetSearch loads one session with its results in stored order.
func (s *SQLiteStore) GetSearch(ctx context.Context, id int64) (*SavedSearch, error) {
	var (
		saved   SavedSearch
		subJSON sql.NullString
		created string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, query, sub_queries, created_at FROM searches WHERE id = ?`, id,
	).Scan(&saved.ID, &saved.Query, &subJSON, &created)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no search with id %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading search: %w", err)
	}

	if subJSON.Valid {
		json.Unmarshal([]byte(subJSON.String), &saved.SubQueries)
	}
	if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
		saved.CreatedAt = t
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT paper_id, title, authors, abstract, url, pdf_url, source, published_date, score_bm25
		FROM papers WHERE search_id = ? ORDER BY position`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("loading results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		r, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		saved.Results = append(saved.Results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating results: %w", err)
	}
	saved.ResultCount = len(saved.Results)
	return &saved, nil
}

// ListSearches returns recent sessions, newest first.
func (s *SQLiteStore) ListSearches(ctx context.Context, limit int) ([]SearchSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.id, s.query, s.sub_queries, s.created_at,
			(SELECT count(*) FROM papers p WHERE p.search_id = s.id)
		FROM searches s ORDER BY s.id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing searches: %w", err)
	}
	defer rows.Close()

	var out []SearchSummary
	for rows.Next() {
		var (
			sum     SearchSummary
			subJSON sql.NullString
			created string
		)
		if err := rows.Scan(&sum.ID, &sum.Query, &subJSON, &created, &sum.ResultCount); err != nil {
			return nil, fmt.Errorf("scanning search row: %w", err)
		}
		if subJSON.Valid {
			json.Unmarshal([]byte(subJSON.String), &sum.SubQueries)
		}
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			sum.CreatedAt = t
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// FindPapers runs a full-text search over stored titles and abstracts,
// ranked by FTS5 relevance. A paper stored by several sessions appears
// once.
func (s *SQLiteStore) FindPapers(ctx context.Context, query string, limit int) ([]types.PaperRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.paper_id, p.title, p.authors, p.abstract, p.url, p.pdf_url, p.source, p.published_date, p.score_bm25
		FROM papers_fts
		JOIN papers p ON p.rowid = papers_fts.rowid
		WHERE papers_fts MATCH ?
		GROUP BY coalesce(nullif(p.paper_id, ''), nullif(p.url, ''), p.rowid)
		ORDER BY min(papers_fts.rank) LIMIT ?`, query, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying papers: %w", err)
	}
	defer rows.Close()

	var out []types.PaperRecord
	for rows.Next() {
		r, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanPaper(rows *sql.Rows) (types.PaperRecord, error) {
	var (
		r           types.PaperRecord
		authorsJSON sql.NullString
		published   sql.NullString
	)
	if err := rows.Scan(
		&r.ID, &r.Title, &authorsJSON, &r.Abstract,
		&r.CanonicalURL, &r.PDFURL, &r.Source, &published, &r.BM25Score,
	); err != nil {
		return r, fmt.Errorf("scanning paper row: %w", err)
	}
	if authorsJSON.Valid {
		json.Unmarshal([]byte(authorsJSON.String), &r.Authors)
	}
	if published.Valid && published.String != "" {
		if t, err := time.Parse(time.RFC3339, published.String); err == nil {
			r.PublishedDate = t
		}
	}
	return r, nil
}

// formatDate serializes a publication date for the published_date
// column, empty for the zero time.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
