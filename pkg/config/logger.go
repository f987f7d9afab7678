package config

import (
	"strings"

	"mail2slack/pkg/logger"
)

// ToLoggerConfig converts LoggerConfig to logger.Config.
func (lc *LoggerConfig) ToLoggerConfig() *logger.Config {
	cfg := logger.DefaultConfig()
	cfg.Level = logger.Level(strings.ToLower(lc.Level))
	cfg.OutputPath = lc.OutputPath
	cfg.Development = lc.Development
	cfg.Compress = lc.Compress
	if lc.MaxSize > 0 {
		cfg.MaxSize = lc.MaxSize
	}
	if lc.MaxBackups > 0 {
		cfg.MaxBackups = lc.MaxBackups
	}
	if lc.MaxAge > 0 {
		cfg.MaxAge = lc.MaxAge
	}
	return cfg
}
