package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	t.Setenv(EnvBridgeIP, "")
	t.Setenv(EnvUsername, "")
	store, err := NewStore(filepath.Join(t.TempDir(), "hue-panel", "config.json"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store
}

func TestStoreSaveLoad(t *testing.T) {
	store := newTestStore(t)

	cfg := BridgeConfig{BridgeIP: "192.168.1.50", Username: "abc"}
	if err := store.Save(cfg); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	if _, err := os.Stat(store.Path()); os.IsNotExist(err) {
		t.Fatal("Config file was not created")
	}
	if _, err := os.Stat(store.Path() + ".tmp"); !os.IsNotExist(err) {
		t.Error("Temporary file was left behind")
	}

	loaded := store.Load()
	if loaded != cfg {
		t.Errorf("Expected %+v, got %+v", cfg, loaded)
	}
}

func TestStoreSaveOverwrites(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save(BridgeConfig{BridgeIP: "10.0.0.2", Username: "old"}); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}
	if err := store.Save(BridgeConfig{BridgeIP: "10.0.0.3", Username: "new"}); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	loaded := store.Load()
	if loaded.BridgeIP != "10.0.0.3" || loaded.Username != "new" {
		t.Errorf("Expected second save to win, got %+v", loaded)
	}
}

func TestStoreLoadMissing(t *testing.T) {
	store := newTestStore(t)

	if cfg := store.Load(); cfg.Configured() || cfg.BridgeIP != "" {
		t.Errorf("Expected empty config, got %+v", cfg)
	}
}

func TestStoreLoadEnvFallback(t *testing.T) {
	store := newTestStore(t)
	t.Setenv(EnvBridgeIP, "192.168.1.77")
	t.Setenv(EnvUsername, "envuser")

	cfg := store.Load()
	if cfg.BridgeIP != "192.168.1.77" || cfg.Username != "envuser" {
		t.Errorf("Expected env config, got %+v", cfg)
	}
}

func TestStoreLoadEnvRequiresBoth(t *testing.T) {
	store := newTestStore(t)
	t.Setenv(EnvBridgeIP, "192.168.1.77")

	if cfg := store.Load(); cfg.BridgeIP != "" {
		t.Errorf("Expected empty config with partial env, got %+v", cfg)
	}
}

func TestStoreFilePreferredOverEnv(t *testing.T) {
	store := newTestStore(t)
	if err := store.Save(BridgeConfig{BridgeIP: "10.1.1.1", Username: "file"}); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}
	t.Setenv(EnvBridgeIP, "10.2.2.2")
	t.Setenv(EnvUsername, "env")

	if cfg := store.Load(); cfg.Username != "file" {
		t.Errorf("Expected file config, got %+v", cfg)
	}
}

func TestStoreLoadCorruptFile(t *testing.T) {
	store := newTestStore(t)
	if err := os.MkdirAll(filepath.Dir(store.Path()), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(store.Path(), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	if cfg := store.Load(); cfg.BridgeIP != "" {
		t.Errorf("Expected corrupt file to be ignored, got %+v", cfg)
	}
}

func TestStoreSaveValidation(t *testing.T) {
	store := newTestStore(t)

	tests := []BridgeConfig{
		{BridgeIP: "", Username: "abc"},
		{BridgeIP: "10.0.0.1", Username: "  "},
	}
	for _, cfg := range tests {
		if err := store.Save(cfg); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Save(%+v) error = %v, want ErrInvalidConfig", cfg, err)
		}
	}
}

func TestStoreSaveUnwritable(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced here")
	}

	dir := t.TempDir()
	if err := os.Chmod(dir, 0o500); err != nil {
		t.Fatal(err)
	}
	defer os.Chmod(dir, 0o700)

	store, err := NewStore(filepath.Join(dir, "config.json"))
	if err != nil {
		t.Fatal(err)
	}

	err = store.Save(BridgeConfig{BridgeIP: "10.0.0.1", Username: "abc"})
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected PersistenceError, got %v", err)
	}
	if perr.Path != store.Path() {
		t.Errorf("Expected path %s, got %s", store.Path(), perr.Path)
	}
}

func TestDefaultPathUsesXDG(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath() error = %v", err)
	}
	if want := filepath.Join(tmpDir, "hue-panel", "config.json"); path != want {
		t.Errorf("Expected %s, got %s", want, path)
	}
}

func TestDefaultLogPathBesideConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	got, err := DefaultLogPath()
	if err != nil {
		t.Fatalf("DefaultLogPath() error = %v", err)
	}
	if want := filepath.Join("/tmp/xdg", "hue-panel", "hue.log"); got != want {
		t.Errorf("DefaultLogPath() = %q, want %q", got, want)
	}
}

func TestNewStoreHonoursOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.json")
	t.Setenv(EnvConfigPath, path)

	store, err := NewStore("")
	if err != nil {
		t.Fatal(err)
	}
	if store.Path() != path {
		t.Errorf("Expected %s, got %s", path, store.Path())
	}
}
