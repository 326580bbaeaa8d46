package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGConfig holds PostgreSQL connection configuration.
type PGConfig struct {
	URL      string `yaml:"url" json:"url"`
	MaxConns int32  `yaml:"max_conns" json:"max_conns"`
	MinConns int32  `yaml:"min_conns" json:"min_conns"`
}

const pgSchema = `
CREATE TABLE IF NOT EXISTS generated_workflows (
	id            BIGSERIAL PRIMARY KEY,
	name          TEXT        NOT NULL,
	description   TEXT        NOT NULL DEFAULT '',
	prompt        TEXT        NOT NULL,
	workflow_json JSONB       NOT NULL,
	node_count    INTEGER     NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// PGStore persists records in PostgreSQL.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore connects to PostgreSQL and creates the table if missing.
func NewPGStore(ctx context.Context, cfg PGConfig) (*PGStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse pg config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pg pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping pg: %w", err)
	}
	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create pg schema: %w", err)
	}
	return &PGStore{pool: pool}, nil
}

func (s *PGStore) Create(ctx context.Context, w *WorkflowRecord) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO generated_workflows (name, description, prompt, workflow_json, node_count)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		w.Name, w.Description, w.Prompt, string(w.WorkflowJSON), w.NodeCount,
	).Scan(&w.ID, &w.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert workflow: %w", err)
	}
	return nil
}

func (s *PGStore) Get(ctx context.Context, id int64) (*WorkflowRecord, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, name, description, prompt, workflow_json::text, node_count, created_at
		FROM generated_workflows WHERE id = $1`, id)
	rec, err := scanPGRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get workflow: %w", err)
	}
	return rec, nil
}

func (s *PGStore) List(ctx context.Context) ([]WorkflowRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, description, prompt, workflow_json::text, node_count, created_at
		FROM generated_workflows ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	defer rows.Close()

	records := []WorkflowRecord{}
	for rows.Next() {
		rec, err := scanPGRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// Close closes the connection pool.
func (s *PGStore) Close() error {
	s.pool.Close()
	return nil
}

func scanPGRecord(row pgx.Row) (*WorkflowRecord, error) {
	var (
		rec WorkflowRecord
		doc string
	)
	if err := row.Scan(&rec.ID, &rec.Name, &rec.Description, &rec.Prompt, &doc, &rec.NodeCount, &rec.CreatedAt); err != nil {
		return nil, err
	}
	rec.WorkflowJSON = []byte(doc)
	return &rec, nil
}
