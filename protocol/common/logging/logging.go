package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DevelopmentConfig returns a logging configuration with reasonable defaults for
// development.
// Time is encoded in ISO8601 format and level is encoded in capital letters.
func DevelopmentConfig(level zapcore.Level) func(*zap.Config) {
	return func(config *zap.Config) {
		config.Level = zap.NewAtomicLevelAt(level)
		config.Development = true
		config.DisableCaller = false
		config.DisableStacktrace = level > zapcore.ErrorLevel
		config.Encoding = "console"
		config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		config.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	}
}

// JSONConfig returns a configuration suitable for log shipping: JSON lines, ISO8601 time.
func JSONConfig(level zapcore.Level) func(*zap.Config) {
	return func(config *zap.Config) {
		config.Level = zap.NewAtomicLevelAt(level)
		config.Development = false
		config.Encoding = "json"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		config.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	}
}

// ParseLevel parses a level name such as "debug" or "WARN". Unknown or empty values yield InfoLevel.
func ParseLevel(s string) zapcore.Level {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil || s == "" {
		return zapcore.InfoLevel
	}
	return level
}
