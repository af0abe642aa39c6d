package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewConfigWatcher(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "ifmapd.toml")
	if err := os.WriteFile(configPath, []byte("[listen]\naddress = \":8443\"\n"), DefaultFilePermissions); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cw, err := NewConfigWatcher(configPath)
	if err != nil {
		t.Fatalf("NewConfigWatcher() failed: %v", err)
	}
	defer cw.Stop()

	if cw.configPath != configPath {
		t.Errorf("expected configPath %q, got %q", configPath, cw.configPath)
	}
}

func TestNewConfigWatcher_MissingFile(t *testing.T) {
	_, err := NewConfigWatcher("/nonexistent/ifmapd.toml")
	if err == nil {
		t.Error("expected error watching nonexistent file, got nil")
	}
}

func TestConfigWatcher_MarkOwnWrite(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "ifmapd.toml")
	if err := os.WriteFile(configPath, []byte("[listen]\naddress = \":8443\"\n"), DefaultFilePermissions); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cw, err := NewConfigWatcher(configPath)
	if err != nil {
		t.Fatalf("NewConfigWatcher() failed: %v", err)
	}
	defer cw.Stop()

	if cw.checkOwnWrite() {
		t.Error("expected checkOwnWrite() to be false before MarkOwnWrite()")
	}

	cw.MarkOwnWrite()

	if !cw.checkOwnWrite() {
		t.Error("expected checkOwnWrite() to be true immediately after MarkOwnWrite()")
	}

	if cw.checkOwnWrite() {
		t.Error("expected checkOwnWrite() to reset to false after being consumed")
	}
}

func TestConfigWatcher_OnReload(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "ifmapd.toml")
	if err := os.WriteFile(configPath, []byte("[listen]\naddress = \":8443\"\n"), DefaultFilePermissions); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cw, err := NewConfigWatcher(configPath)
	if err != nil {
		t.Fatalf("NewConfigWatcher() failed: %v", err)
	}
	defer cw.Stop()
	cw.debouncePeriod = 20 * time.Millisecond

	called := make(chan *Config, 1)
	cw.OnReload(func(cfg *Config) error {
		called <- cfg
		return nil
	})

	Reset()
	defer Reset()

	cw.scheduleReload()

	select {
	case cfg := <-called:
		if cfg == nil {
			t.Error("expected non-nil config passed to reload callback")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reload callback")
	}
}

func TestIsBackupFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/etc/ifmapd/ifmapd.toml", false},
		{"/etc/ifmapd/ifmapd.toml.back1", true},
		{"/etc/ifmapd/ifmapd.toml.back2", true},
		{"/etc/ifmapd/ifmapd.toml.back3", true},
		{"/etc/ifmapd/whitelist.toml", false},
	}

	for _, tt := range tests {
		if got := isBackupFile(tt.path); got != tt.want {
			t.Errorf("isBackupFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestGlobalWatcher(t *testing.T) {
	if GetGlobalWatcher() != nil {
		t.Skip("global watcher already set by another test")
	}

	dir := t.TempDir()
	configPath := filepath.Join(dir, "ifmapd.toml")
	if err := os.WriteFile(configPath, []byte("[listen]\naddress = \":8443\"\n"), DefaultFilePermissions); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cw, err := NewConfigWatcher(configPath)
	if err != nil {
		t.Fatalf("NewConfigWatcher() failed: %v", err)
	}
	defer cw.Stop()
	defer SetGlobalWatcher(nil)

	SetGlobalWatcher(cw)

	if GetGlobalWatcher() != cw {
		t.Error("expected GetGlobalWatcher() to return the watcher set by SetGlobalWatcher()")
	}
}
