package config

import (
	"go.uber.org/fx"

	"mail2slack/pkg/logger"
)

// Module provides configuration for fx dependency injection.
var Module = fx.Module("config",
	fx.Provide(ProvideLoader),
	fx.Provide(ProvideLoggerConfig),
)

// ProvideLoader provides a configuration loader.
func ProvideLoader() *Loader {
	return NewLoader()
}

// ProvideConfigWithPath loads and validates configuration from path, falling
// back to the environment and default search paths when path is empty.
func ProvideConfigWithPath(path string) func(*Loader) (*Config, error) {
	return func(loader *Loader) (*Config, error) {
		cfg, err := loader.Load(path)
		if err != nil {
			return nil, err
		}
		if err := ValidateConfig(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
}

// ProvideLoggerConfig derives the logger configuration.
func ProvideLoggerConfig(cfg *Config) *logger.Config {
	return cfg.Logger.ToLoggerConfig()
}
