package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/joseph-ayodele/plan-parser/internal/entity"
)

type Config struct {
	Addr      string
	Password  string
	DB        int
	TTL       time.Duration
	KeyPrefix string
}

// ResultCache keeps analysis results in redis keyed by content hash.
type ResultCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
	logger *slog.Logger
}

func NewResultCache(cfg Config, logger *slog.Logger) *ResultCache {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "plan:result:"
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &ResultCache{rdb: rdb, ttl: cfg.TTL, prefix: cfg.KeyPrefix, logger: logger}
}

func (c *ResultCache) key(hash string) string { return c.prefix + hash }

// Ping checks the connection at startup.
func (c *ResultCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *ResultCache) Get(ctx context.Context, hash string) (*entity.AnalysisResult, bool, error) {
	b, err := c.rdb.Get(ctx, c.key(hash)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	var res entity.AnalysisResult
	if err := json.Unmarshal(b, &res); err != nil {
		c.logger.Warn("cache.entry.corrupt", "hash", hash, "error", err)
		_ = c.rdb.Del(ctx, c.key(hash)).Err()
		return nil, false, nil
	}
	return &res, true, nil
}

func (c *ResultCache) Set(ctx context.Context, hash string, res *entity.AnalysisResult) error {
	b, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.rdb.Set(ctx, c.key(hash), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *ResultCache) Close() error {
	return c.rdb.Close()
}
