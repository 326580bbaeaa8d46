package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS workflows (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	name          TEXT    NOT NULL,
	description   TEXT    NOT NULL DEFAULT '',
	prompt        TEXT    NOT NULL,
	workflow_json TEXT    NOT NULL,
	node_count    INTEGER NOT NULL,
	created_at    TEXT    NOT NULL
)`

// SQLiteStore persists records in a single SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path. Use
// ":memory:" for a throwaway database.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	dsn := path
	if path != ":memory:" {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection serializes writers; it also keeps a :memory: database
	// alive for the life of the store.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Create(ctx context.Context, w *WorkflowRecord) error {
	created := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO workflows (name, description, prompt, workflow_json, node_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		w.Name, w.Description, w.Prompt, string(w.WorkflowJSON), w.NodeCount,
		created.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert workflow: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read workflow id: %w", err)
	}
	w.ID = id
	w.CreatedAt = created
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id int64) (*WorkflowRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, prompt, workflow_json, node_count, created_at
		FROM workflows WHERE id = ?`, id)
	rec, err := scanSQLiteRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]WorkflowRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, prompt, workflow_json, node_count, created_at
		FROM workflows ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	defer rows.Close()

	records := []WorkflowRecord{}
	for rows.Next() {
		rec, err := scanSQLiteRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteRecord(row rowScanner) (*WorkflowRecord, error) {
	var (
		rec     WorkflowRecord
		doc     string
		created string
	)
	if err := row.Scan(&rec.ID, &rec.Name, &rec.Description, &rec.Prompt, &doc, &rec.NodeCount, &created); err != nil {
		return nil, err
	}
	rec.WorkflowJSON = []byte(doc)
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	rec.CreatedAt = t
	return &rec, nil
}
