package store

import (
	"context"
	"fmt"
)

// Config selects and configures a backend.
type Config struct {
	// Driver is one of memory, sqlite, postgres or redis.
	Driver string      `yaml:"driver" json:"driver"`
	SQLite string      `yaml:"sqlite" json:"sqlite"`
	PG     PGConfig    `yaml:"postgres" json:"postgres"`
	Redis  RedisConfig `yaml:"redis" json:"redis"`
}

// Open builds the backend named by cfg.Driver. An empty driver means memory.
func Open(ctx context.Context, cfg Config) (WorkflowStore, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		path := cfg.SQLite
		if path == "" {
			path = "workflowgen.db"
		}
		return NewSQLiteStore(ctx, path)
	case "postgres":
		return NewPGStore(ctx, cfg.PG)
	case "redis":
		return NewRedisStore(ctx, cfg.Redis)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
