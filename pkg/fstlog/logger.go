// Package fstlog provides structured logging for the fststore engine.
// Adapted from pkg/logger: the same zap.Config/zap.Field idiom, narrowed to
// a library-friendly default (a no-op logger, so importing fstore never
// prints anything unless a caller opts in with SetLogger) instead of the
// original's eager JSON-to-stdout global.
package fstlog

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	global = zap.NewNop()
)

// SetLogger replaces the package-level logger used by Store.Write/Meta/Read.
// Passing nil restores the no-op default.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if l == nil {
		l = zap.NewNop()
	}
	global = l
}

// Get returns the current package-level logger.
func Get() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// NewDevelopment builds a human-readable console logger, for use with
// SetLogger during local debugging — mirrors pkg/logger's Development
// encoder configuration.
func NewDevelopment() (*zap.Logger, error) {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapcore.DebugLevel),
		Development:      true,
		Encoding:         "console",
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return cfg.Build()
}

// With creates a child logger with additional fields off the current
// package-level logger.
func With(fields ...zap.Field) *zap.Logger {
	return Get().With(fields...)
}
