package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backend struct {
	name string
	open func(t *testing.T) WorkflowStore
}

func backends() []backend {
	return []backend{
		{"memory", func(t *testing.T) WorkflowStore { return NewMemoryStore() }},
		{"sqlite", func(t *testing.T) WorkflowStore {
			s, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "wf.db"))
			require.NoError(t, err)
			return s
		}},
		{"redis", func(t *testing.T) WorkflowStore {
			mr := miniredis.RunT(t)
			client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			return NewRedisStoreWithClient(client, "test")
		}},
		{"postgres", func(t *testing.T) WorkflowStore {
			url := os.Getenv("PG_URL")
			if url == "" {
				t.Skip("PG_URL not set")
			}
			s, err := NewPGStore(context.Background(), PGConfig{URL: url})
			require.NoError(t, err)
			_, err = s.pool.Exec(context.Background(), "TRUNCATE generated_workflows RESTART IDENTITY")
			require.NoError(t, err)
			return s
		}},
	}
}

func sampleRecord(name string) *WorkflowRecord {
	return &WorkflowRecord{
		Name:         name,
		Description:  "desc " + name,
		Prompt:       "send an email for " + name,
		WorkflowJSON: json.RawMessage(`{"name":"` + name + `","nodes":[],"active":true}`),
		NodeCount:    3,
	}
}

func TestWorkflowStores(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			t.Run("create assigns increasing ids", func(t *testing.T) {
				s := b.open(t)
				defer s.Close()
				ctx := context.Background()

				first := sampleRecord("first")
				second := sampleRecord("second")
				require.NoError(t, s.Create(ctx, first))
				require.NoError(t, s.Create(ctx, second))

				assert.Greater(t, first.ID, int64(0))
				assert.Greater(t, second.ID, first.ID)
				assert.False(t, first.CreatedAt.IsZero())
			})

			t.Run("get round trips", func(t *testing.T) {
				s := b.open(t)
				defer s.Close()
				ctx := context.Background()

				rec := sampleRecord("lookup")
				require.NoError(t, s.Create(ctx, rec))

				got, err := s.Get(ctx, rec.ID)
				require.NoError(t, err)
				assert.Equal(t, rec.ID, got.ID)
				assert.Equal(t, "lookup", got.Name)
				assert.Equal(t, rec.Prompt, got.Prompt)
				assert.Equal(t, 3, got.NodeCount)
				assert.JSONEq(t, string(rec.WorkflowJSON), string(got.WorkflowJSON))
				assert.WithinDuration(t, rec.CreatedAt, got.CreatedAt, 1e9)
			})

			t.Run("get missing", func(t *testing.T) {
				s := b.open(t)
				defer s.Close()
				_, err := s.Get(context.Background(), 4242)
				assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
			})

			t.Run("list in id order", func(t *testing.T) {
				s := b.open(t)
				defer s.Close()
				ctx := context.Background()

				empty, err := s.List(ctx)
				require.NoError(t, err)
				assert.NotNil(t, empty)
				assert.Empty(t, empty)

				for i := range 3 {
					require.NoError(t, s.Create(ctx, sampleRecord(fmt.Sprintf("wf-%d", i))))
				}
				list, err := s.List(ctx)
				require.NoError(t, err)
				require.Len(t, list, 3)
				for i, rec := range list {
					assert.Equal(t, fmt.Sprintf("wf-%d", i), rec.Name)
					if i > 0 {
						assert.Greater(t, rec.ID, list[i-1].ID)
					}
				}
			})

			t.Run("concurrent creates get unique ids", func(t *testing.T) {
				s := b.open(t)
				defer s.Close()
				ctx := context.Background()

				const n = 20
				ids := make([]int64, n)
				var wg sync.WaitGroup
				for i := range n {
					wg.Add(1)
					go func() {
						defer wg.Done()
						rec := sampleRecord(fmt.Sprintf("c-%d", i))
						if err := s.Create(ctx, rec); err != nil {
							t.Errorf("create: %v", err)
							return
						}
						ids[i] = rec.ID
					}()
				}
				wg.Wait()

				seen := make(map[int64]bool, n)
				for _, id := range ids {
					assert.False(t, seen[id], "duplicate id %d", id)
					seen[id] = true
				}
				list, err := s.List(ctx)
				require.NoError(t, err)
				assert.Len(t, list, n)
			})
		})
	}
}

func TestMemoryStore_RecordsAreCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	rec := sampleRecord("copy")
	require.NoError(t, s.Create(ctx, rec))

	rec.Name = "mutated"
	rec.WorkflowJSON[0] = '['

	got, err := s.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "copy", got.Name)
	assert.Equal(t, byte('{'), got.WorkflowJSON[0])
}

func TestRedisStore_KeyLayout(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisStoreWithClient(client, "")
	defer s.Close()

	require.NoError(t, s.Create(context.Background(), sampleRecord("keys")))

	assert.True(t, mr.Exists("workflowgen:workflow:1"))
	assert.True(t, mr.Exists("workflowgen:workflows"))
	seq, err := mr.Get("workflowgen:workflow:seq")
	require.NoError(t, err)
	assert.Equal(t, "1", seq)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Config{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(ctx, Config{Driver: "sqlite", SQLite: filepath.Join(t.TempDir(), "open.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, Config{Driver: "cassandra"})
	assert.ErrorIs(t, err, ErrUnknownDriver)
}
