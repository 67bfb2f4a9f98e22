package storage

import (
	"context"
	"fmt"
	"time"

	"crypto-signals/src/logger"
	"crypto-signals/src/models"

	"github.com/redis/go-redis/v9"
)

// -----------------------------------------------------------------------------
// RedisCache backs the optional durability substrate. Every value carries the
// configured TTL; list keys are trimmed to a bounded length on append.
// -----------------------------------------------------------------------------

type RedisCache struct {
	Config *models.MConfig
	Client *redis.Client
	TTL    time.Duration
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewRedisCache(cfg *models.MConfig, log *logger.Logger) (*RedisCache, error) {
	opts, err := redis.ParseURL(cfg.Cache.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second
	log.Info("RedisCache connected (TTL %v)", ttl)

	return &RedisCache{
		Config: cfg,
		Client: client,
		TTL:    ttl,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.Client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}
	return val, nil
}

// -----------------------------------------------------------------------------

func (c *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	return c.Client.Set(ctx, key, value, c.TTL).Err()
}

// -----------------------------------------------------------------------------

// AppendList pushes onto the tail of a list key and trims it to the newest
// maxLen entries. The list expires on the same TTL as plain keys.
func (c *RedisCache) AppendList(ctx context.Context, key string, value []byte, maxLen int) error {
	pipe := c.Client.TxPipeline()
	pipe.RPush(ctx, key, value)
	if maxLen > 0 {
		pipe.LTrim(ctx, key, int64(-maxLen), -1)
	}
	pipe.Expire(ctx, key, c.TTL)

	_, err := pipe.Exec(ctx)
	return err
}

// -----------------------------------------------------------------------------

func (c *RedisCache) Close() error {
	return c.Client.Close()
}
