// internal/util/logger.go
package util

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

// InitLogger initializes the global structured logger.
// format "console" gives a human readable development logger, anything else JSON.
func InitLogger(level, format string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build()
	if err != nil {
		return err
	}
	logger = l
	zap.ReplaceGlobals(l)
	return nil
}

// GetLogger returns the initialized global logger.
func GetLogger() *zap.Logger {
	if logger == nil {
		// Should be initialized explicitly at app start
		if err := InitLogger("info", "json"); err != nil {
			logger = zap.NewNop()
		}
	}
	return logger
}
