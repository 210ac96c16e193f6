package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/odds-aggregator-poc/internal/shared/config"
)

// ConnectRedis abre o cliente Redis a partir da config
// REDIS_URL (rediss:// inclusive) tem prioridade; senão usa host/porta/senha/db
// Timeouts curtos: uma dependência lenta não pode segurar o request
func ConnectRedis(cfg config.Config) (*redis.Client, error) {
	var opts *redis.Options

	if cfg.RedisURL != "" {
		parsed, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}
	}

	opts.DialTimeout = 2 * time.Second
	opts.ReadTimeout = 2 * time.Second
	opts.WriteTimeout = 2 * time.Second

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}
