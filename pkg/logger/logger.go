// pkg/logger/logger.go

package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.Logger

// L returns the process-wide logger, or nil when uninitialized.
func L() *zap.Logger {
	return log
}

// GetLogger returns the process-wide logger, falling back to a console
// logger when InitializeWithFallback has not run yet.
func GetLogger() *zap.Logger {
	if log == nil {
		log = NewFallbackLogger()
	}
	return log
}

// Sync flushes buffered log entries. Sync on stderr fails on some
// platforms, so callers treat the error as advisory.
func Sync() error {
	if log == nil {
		return nil
	}
	return log.Sync()
}

// ParseLogLevel maps a LOG_LEVEL environment value to a zap level,
// defaulting to Info.
func ParseLogLevel(raw string) zapcore.Level {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// FindWritableLogPath returns the first log file path whose directory can be
// created and written, trying the system location before the user's home.
func FindWritableLogPath() (string, error) {
	candidates := []string{
		"/var/log/steward/steward.log",
		filepath.Join(os.Getenv("HOME"), ".steward", "steward.log"),
		filepath.Join(os.TempDir(), "steward.log"),
	}

	var lastErr error
	for _, path := range candidates {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			lastErr = err
			continue
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			lastErr = err
			continue
		}
		_ = f.Close()
		return path, nil
	}
	return "", lastErr
}
