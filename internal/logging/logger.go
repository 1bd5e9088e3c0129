package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LevelEnvVar controls logging verbosity. When unset logging is silent.
// Valid values: "debug", "info", "warn", "error".
const LevelEnvVar = "HUE_LOG_LEVEL"

// FileEnvVar redirects log output to a file. Without it, command line use
// logs to stderr and the full-screen UI logs to its default file.
const FileEnvVar = "HUE_LOG_FILE"

var logger atomic.Pointer[zap.Logger]

func init() {
	logger.Store(zap.NewNop())
}

// Initialize builds the global logger for the given level. An empty level
// falls back to HUE_LOG_LEVEL, and if that is empty too the logger stays a
// no-op.
func Initialize(level string) error {
	output := "stderr"
	if path := os.Getenv(FileEnvVar); path != "" {
		output = path
	}
	return build(level, output)
}

// InitializeForUI is Initialize for the full-screen UI, which shares the
// terminal with stderr. Logs go to HUE_LOG_FILE or else fallbackPath; with
// neither the logger stays a no-op.
func InitializeForUI(level, fallbackPath string) error {
	if level == "" {
		level = os.Getenv(LevelEnvVar)
	}
	output := os.Getenv(FileEnvVar)
	if output == "" {
		output = fallbackPath
	}
	if level == "" || output == "" {
		logger.Store(zap.NewNop())
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return build(level, output)
}

func build(level, output string) error {
	if level == "" {
		level = os.Getenv(LevelEnvVar)
	}
	if level == "" {
		logger.Store(zap.NewNop())
		return nil
	}

	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{output},
		ErrorOutputPaths: []string{output},
	}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	if output == "stderr" {
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	built, err := config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Store(built)
	return nil
}

// Disable replaces the global logger with a no-op
func Disable() {
	logger.Store(zap.NewNop())
}

// InitializeFromEnv initializes the logger from HUE_LOG_LEVEL
func InitializeFromEnv() error {
	return Initialize("")
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	return logger.Load()
}

// Named returns a child of the global logger for a component
func Named(name string) *zap.Logger {
	return GetLogger().Named(name)
}

// Sync flushes buffered log entries
func Sync() {
	_ = GetLogger().Sync()
}

func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}
