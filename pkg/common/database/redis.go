package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/synaptica-ai/diagnostic/pkg/common/config"
	"github.com/synaptica-ai/diagnostic/pkg/common/logger"
)

var (
	redisClient *redis.Client
	redisOnce   sync.Once
)

// GetRedis returns the process-wide client, or nil when REDIS_HOST is unset.
func GetRedis(cfg *config.Config) *redis.Client {
	redisOnce.Do(func() {
		if cfg.RedisHost == "" {
			logger.Log.Info("Redis not configured, using in-process rate limiting")
			return
		}
		redisClient = NewRedis(cfg)
	})

	return redisClient
}

// NewRedis dials Redis and pings it. An unreachable server is logged, not
// fatal; the limiter fails open until it comes back.
func NewRedis(cfg *config.Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Log.WithError(err).Error("Failed to connect to Redis")
	} else {
		logger.Log.Info("Connected to Redis")
	}
	return client
}

func CloseRedis() error {
	if redisClient != nil {
		return redisClient.Close()
	}
	return nil
}
