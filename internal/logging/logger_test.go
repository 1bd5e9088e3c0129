package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitializeSilentByDefault(t *testing.T) {
	t.Setenv(LevelEnvVar, "")
	if err := Initialize(""); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if GetLogger().Core().Enabled(-1) {
		t.Error("expected no-op logger when level is unset")
	}
}

func TestInitializeToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hue.log")
	t.Setenv(FileEnvVar, path)

	if err := Initialize("debug"); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	defer func() { _ = Initialize("") }()

	if !GetLogger().Core().Enabled(-1) {
		t.Error("expected debug level to be enabled")
	}
	Debug("hello")
	Sync()
}

func TestInitializeForUIAvoidsTerminal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "hue.log")
	t.Setenv(LevelEnvVar, "info")
	t.Setenv(FileEnvVar, "")

	if err := InitializeForUI("", path); err != nil {
		t.Fatalf("InitializeForUI() error = %v", err)
	}
	defer func() { _ = Initialize("") }()

	Info("drawn elsewhere")
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected log file at %s: %v", path, err)
	}
	if !strings.Contains(string(data), "drawn elsewhere") {
		t.Errorf("log file missing entry:\n%s", data)
	}
}

func TestInitializeForUIWithoutFileIsSilent(t *testing.T) {
	t.Setenv(LevelEnvVar, "debug")
	t.Setenv(FileEnvVar, "")

	if err := InitializeForUI("", ""); err != nil {
		t.Fatalf("InitializeForUI() error = %v", err)
	}
	defer func() { _ = Initialize("") }()

	if GetLogger().Core().Enabled(-1) {
		t.Error("expected no-op logger when no file is available")
	}
}
