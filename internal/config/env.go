package config

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/angristan/hue-panel/internal/logging"
)

// LoadDotEnv loads variables from the given .env files (default ".env") into
// the process environment. Variables that are already set win.
func LoadDotEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logging.Warn("Failed to load .env file", zap.Error(err))
	}
}
