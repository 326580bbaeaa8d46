package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Address  string `yaml:"address" json:"address"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`
	Prefix   string `yaml:"prefix" json:"prefix"`
}

// RedisStore keeps each record as a JSON string and the id order in a
// sorted set scored by id.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisStoreWithClient(client, cfg.Prefix), nil
}

// NewRedisStoreWithClient wraps an existing client. An empty prefix
// defaults to "workflowgen".
func NewRedisStoreWithClient(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "workflowgen"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) seqKey() string   { return s.prefix + ":workflow:seq" }
func (s *RedisStore) indexKey() string { return s.prefix + ":workflows" }
func (s *RedisStore) recordKey(id int64) string {
	return s.prefix + ":workflow:" + strconv.FormatInt(id, 10)
}

func (s *RedisStore) Create(ctx context.Context, w *WorkflowRecord) error {
	id, err := s.client.Incr(ctx, s.seqKey()).Result()
	if err != nil {
		return fmt.Errorf("allocate workflow id: %w", err)
	}
	w.ID = id
	w.CreatedAt = time.Now().UTC()

	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("encode workflow: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.recordKey(id), data, 0)
		pipe.ZAdd(ctx, s.indexKey(), redis.Z{Score: float64(id), Member: id})
		return nil
	})
	if err != nil {
		return fmt.Errorf("store workflow: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id int64) (*WorkflowRecord, error) {
	data, err := s.client.Get(ctx, s.recordKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get workflow: %w", err)
	}
	var rec WorkflowRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode workflow %d: %w", id, err)
	}
	return &rec, nil
}

func (s *RedisStore) List(ctx context.Context) ([]WorkflowRecord, error) {
	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list workflow ids: %w", err)
	}
	records := make([]WorkflowRecord, 0, len(ids))
	if len(ids) == 0 {
		return records, nil
	}

	keys := make([]string, len(ids))
	for i, raw := range ids {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad workflow id %q in index: %w", raw, err)
		}
		keys[i] = s.recordKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load workflows: %w", err)
	}
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			// Indexed but missing; skip rather than fail the listing.
			continue
		}
		var rec WorkflowRecord
		if err := json.Unmarshal([]byte(str), &rec); err != nil {
			return nil, fmt.Errorf("decode %s: %w", keys[i], err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Close closes the client.
func (s *RedisStore) Close() error { return s.client.Close() }
