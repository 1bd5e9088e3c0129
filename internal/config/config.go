package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/angristan/hue-panel/internal/logging"
)

// Environment variables consulted when no config file is present
const (
	EnvBridgeIP = "HUE_BRIDGE_IP"
	EnvUsername = "HUE_USERNAME"
	// EnvConfigPath overrides the config file location
	EnvConfigPath = "HUE_CONFIG"
)

// BridgeConfig stores connection details for the Hue bridge
type BridgeConfig struct {
	// IP address (optionally host:port) of the bridge
	BridgeIP string `json:"bridge_ip"`
	// Credential issued by the bridge when pairing
	Username string `json:"username"`
}

// Configured reports whether both the bridge address and credential are set
func (c BridgeConfig) Configured() bool {
	return strings.TrimSpace(c.BridgeIP) != "" && strings.TrimSpace(c.Username) != ""
}

// ErrInvalidConfig is returned by Save when a required field is blank
var ErrInvalidConfig = errors.New("bridge ip and username are required")

// PersistenceError reports a config file that could not be written
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to save config to %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Store persists a single BridgeConfig as JSON
type Store struct {
	path string
	mu   sync.RWMutex
}

// NewStore returns a store backed by the file at path. An empty path resolves
// to HUE_CONFIG or the platform default.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return &Store{path: path}, nil
}

// Path returns the location of the config file
func (s *Store) Path() string {
	return s.path
}

// Load returns the stored config, falling back to the environment and then to
// an empty config. It never fails.
func (s *Store) Load() BridgeConfig {
	if cfg, ok := s.loadFile(); ok {
		return cfg
	}

	ip := strings.TrimSpace(os.Getenv(EnvBridgeIP))
	user := strings.TrimSpace(os.Getenv(EnvUsername))
	if ip != "" && user != "" {
		return BridgeConfig{BridgeIP: ip, Username: user}
	}
	return BridgeConfig{}
}

func (s *Store) loadFile() (BridgeConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warn("Config file unreadable", zap.String("path", s.path), zap.Error(err))
		}
		return BridgeConfig{}, false
	}

	var cfg BridgeConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		logging.Warn("Config file is not valid JSON", zap.String("path", s.path), zap.Error(err))
		return BridgeConfig{}, false
	}
	if strings.TrimSpace(cfg.BridgeIP) == "" {
		return BridgeConfig{}, false
	}
	return cfg, true
}

// Save writes the config atomically. Write failures are reported as
// *PersistenceError.
func (s *Store) Save(cfg BridgeConfig) error {
	cfg.BridgeIP = strings.TrimSpace(cfg.BridgeIP)
	cfg.Username = strings.TrimSpace(cfg.Username)
	if !cfg.Configured() {
		return ErrInvalidConfig
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return &PersistenceError{Path: s.path, Err: err}
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return &PersistenceError{Path: s.path, Err: err}
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return &PersistenceError{Path: s.path, Err: err}
	}

	logging.Debug("Config saved", zap.String("path", s.path), zap.String("bridge_ip", cfg.BridgeIP))
	return nil
}
