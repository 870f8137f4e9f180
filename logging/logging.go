// logging/logging.go
package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// BootstrapLogger logs to stderr at info level until configuration is
// loaded. It never fails; a build error yields a no-op logger.
func BootstrapLogger() *zap.Logger {
	logger, err := baseConfig("dev", zapcore.InfoLevel).Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// ParseLevel parses a zap level name case-insensitively.
func ParseLevel(level string) (zapcore.Level, error) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q", level)
	}
	return l, nil
}

// IsValidLogLevel reports whether ParseLevel accepts level.
func IsValidLogLevel(level string) bool {
	_, err := ParseLevel(level)
	return err == nil
}

// BuildLogger returns a JSON logger for env "prod" and a console logger
// otherwise. An unknown level falls back to info with a warning on stderr.
func BuildLogger(level, env string) (*zap.Logger, error) {
	l, err := ParseLevel(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: %v; defaulting to info\n", err)
	}
	return baseConfig(env, l).Build()
}

// MustBuildLogger is BuildLogger for main; it exits on failure.
func MustBuildLogger(level, env string) *zap.Logger {
	logger, err := BuildLogger(level, env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

func baseConfig(env string, level zapcore.Level) zap.Config {
	cfg := zap.NewDevelopmentConfig()
	if env == "prod" {
		cfg = zap.NewProductionConfig()
		cfg.Encoding = "json"
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg
}
