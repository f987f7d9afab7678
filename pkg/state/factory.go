package state

import (
	"context"
	"fmt"

	"mail2slack/pkg/logger"
)

// NewKV creates a KV store based on configuration.
func NewKV(ctx context.Context, log *logger.Logger, cfg *Config) (KV, error) {
	switch cfg.Backend {
	case BackendFile, "":
		if cfg.FilePath == "" {
			return nil, fmt.Errorf("state file path is required")
		}
		return NewFileStore(log, cfg.FilePath)

	case BackendRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("redis address is required")
		}
		return NewRedisStore(ctx, log, &RedisStoreConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})

	default:
		return nil, fmt.Errorf("unknown backend type: %s", cfg.Backend)
	}
}
