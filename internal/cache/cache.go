package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kettari/games-bot/internal/entity"
)

const key = "games-bot:sessions:v1"

// ErrMiss is returned when nothing is cached.
var ErrMiss = errors.New("cache miss")

// kv is the part of redis.Cmdable the cache needs.
type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

type payload struct {
	Timestamp time.Time        `json:"timestamp"`
	Items     []entity.Session `json:"items"`
}

// Cache keeps the last successful result set in Redis.
type Cache struct {
	client kv
	ttl    time.Duration
}

// New returns a cache whose entries expire after ttl; zero keeps them forever.
func New(client redis.Cmdable, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) Put(ctx context.Context, sessions []entity.Session, at time.Time) error {
	data, err := json.Marshal(payload{Timestamp: at.UTC(), Items: sessions})
	if err != nil {
		return fmt.Errorf("failed to encode sessions: %w", err)
	}
	if err = c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache sessions: %w", err)
	}
	return nil
}

func (c *Cache) Get(ctx context.Context) ([]entity.Session, time.Time, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, time.Time{}, ErrMiss
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to read cache: %w", err)
	}
	var p payload
	if err = json.Unmarshal(data, &p); err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to decode cached sessions: %w", err)
	}
	if len(p.Items) == 0 {
		return nil, time.Time{}, ErrMiss
	}
	return p.Items, p.Timestamp, nil
}
