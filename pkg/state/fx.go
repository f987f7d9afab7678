package state

import (
	"context"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"mail2slack/pkg/config"
	"mail2slack/pkg/logger"
)

// Module is the fx module for state management.
var Module = fx.Module("state",
	fx.Provide(NewKVStore),
)

// ConfigFrom translates the application config into a state.Config.
func ConfigFrom(cfg *config.Config) *Config {
	return &Config{
		Backend:       BackendType(strings.ToLower(strings.TrimSpace(cfg.State.Backend))),
		FilePath:      cfg.State.FilePath,
		RedisAddr:     cfg.Redis.Addr,
		RedisPassword: cfg.Redis.Password,
		RedisDB:       cfg.Redis.DB,
		RedisPrefix:   cfg.State.Prefix,
	}
}

// NewKVStore creates the KV store for fx and closes it on shutdown.
func NewKVStore(lc fx.Lifecycle, log *logger.Logger, cfg *config.Config) (KV, error) {
	stateConfig := ConfigFrom(cfg)

	store, err := NewKV(context.Background(), log, stateConfig)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("State store initialized", zap.String("backend", string(stateConfig.Backend)))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return store.Close()
		},
	})

	return store, nil
}
