// Package obslog builds the process-wide structured logger, grounded
// on the New(cfg) constructor shape of
// pkg/logger/logger.go from the adp-api reference repo: environment-
// driven zap.Config selection, JSON by default, ISO-8601 timestamps.
package obslog

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	global *zap.SugaredLogger
)

func init() {
	l, err := New("production", "info")
	if err != nil {
		l = zap.NewNop()
	}
	global = l.Sugar()
}

// New builds a zap.Logger for the given environment ("production" or
// anything else for development) and level ("debug","info","warn","error").
func New(env, level string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	if level != "" {
		if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		}
	}
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// Configure replaces the global logger, used once at process startup
// once pkg/config has parsed the requested environment and level.
func Configure(env, level string) error {
	l, err := New(env, level)
	if err != nil {
		return err
	}
	mu.Lock()
	global = l.Sugar()
	mu.Unlock()
	return nil
}

// L returns the current global logger.
func L() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}
