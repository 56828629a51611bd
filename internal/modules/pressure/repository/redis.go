package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/2co2co0417/P-Alert/internal/config"
	"github.com/2co2co0417/P-Alert/internal/modules/pressure/page"
)

const snapshotKeyPrefix = "palert:snapshot:"

// KV is the slice of redis the snapshot store needs.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

type RedisKV struct {
	c *redis.Client
}

func NewRedisClient(cfg config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

func NewRedisKV(c *redis.Client) *RedisKV { return &RedisKV{c: c} }

func (r *RedisKV) Get(ctx context.Context, key string) (string, error) {
	val, err := r.c.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrCacheMiss
		}
		return "", err
	}
	return val, nil
}

func (r *RedisKV) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.c.Set(ctx, key, value, ttl).Err()
}

type kvSnapshots struct {
	kv  KV
	ttl time.Duration
}

// NewKVSnapshotStore stores snapshots as JSON strings. A ttl of 0 keeps them
// until overwritten.
func NewKVSnapshotStore(kv KV, ttl time.Duration) SnapshotStore {
	return &kvSnapshots{kv: kv, ttl: ttl}
}

func (s *kvSnapshots) SaveSnapshot(ctx context.Context, dashboardID string, snap page.Snapshot) error {
	body, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.kv.Set(ctx, snapshotKeyPrefix+dashboardID, string(body), s.ttl); err != nil {
		return fmt.Errorf("save snapshot %q: %w", dashboardID, err)
	}
	return nil
}

func (s *kvSnapshots) LoadSnapshot(ctx context.Context, dashboardID string) (page.Snapshot, error) {
	body, err := s.kv.Get(ctx, snapshotKeyPrefix+dashboardID)
	if errors.Is(err, ErrCacheMiss) {
		return page.Snapshot{}, ErrCacheMiss
	}
	if err != nil {
		return page.Snapshot{}, fmt.Errorf("load snapshot %q: %w", dashboardID, err)
	}
	return decodeSnapshot(dashboardID, body)
}
