package auth

import (
	"context"
	"fmt"
	"log/slog"

	"finance-dashboard/internal/config"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to the configured Redis, directly or through
// Sentinel, and checks the connection.
func NewRedisClient(ctx context.Context, logger *slog.Logger, cfg *config.RedisConfig) (*redis.Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config is nil")
	}

	var client *redis.Client

	if cfg.Sentinel != nil {
		logger.Info("connecting to redis via sentinel",
			"master", cfg.Sentinel.MasterName,
			"sentinels", cfg.Sentinel.SentinelAddresses)

		client = redis.NewFailoverClient(&redis.FailoverOptions{
			MasterName:       cfg.Sentinel.MasterName,
			SentinelAddrs:    cfg.Sentinel.SentinelAddresses,
			SentinelUsername: cfg.Sentinel.SentinelUsername,
			SentinelPassword: cfg.Sentinel.SentinelPassword,
			Username:         cfg.Username,
			Password:         cfg.Password,
			DB:               cfg.SessionIndex,
			MinIdleConns:     2,
		})
	} else {
		logger.Info("connecting to redis", "address", cfg.Address)

		client = redis.NewClient(&redis.Options{
			Addr:         cfg.Address,
			Username:     cfg.Username,
			Password:     cfg.Password,
			DB:           cfg.SessionIndex,
			MinIdleConns: 2,
		})
	}

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return client, nil
}
