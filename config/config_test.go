package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestLoadWithViper_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	if err != nil {
		t.Fatalf("LoadWithViper() failed: %v", err)
	}

	if cfg.Listen.Address != DefaultListenAddress {
		t.Errorf("expected default listen address %q, got %q", DefaultListenAddress, cfg.Listen.Address)
	}

	if cfg.Clients.Max != DefaultMaxClients {
		t.Errorf("expected default max clients %d, got %d", DefaultMaxClients, cfg.Clients.Max)
	}

	if cfg.Message.ObjectsPerMessage != DefaultObjectsPerMessage {
		t.Errorf("expected default objects per message %d, got %d", DefaultObjectsPerMessage, cfg.Message.ObjectsPerMessage)
	}

	if cfg.WhiteList.Path != DefaultWhiteListPath {
		t.Errorf("expected default whitelist path %q, got %q", DefaultWhiteListPath, cfg.WhiteList.Path)
	}

	if cfg.Log.Verbosity != 0 {
		t.Errorf("expected default verbosity 0, got %d", cfg.Log.Verbosity)
	}
}

func TestSetDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	tests := []struct {
		key  string
		want interface{}
	}{
		{"listen.address", DefaultListenAddress},
		{"clients.max", DefaultMaxClients},
		{"message.objects_per_message", DefaultObjectsPerMessage},
		{"whitelist.path", DefaultWhiteListPath},
		{"log.verbosity", 0},
		{"log.json", false},
	}

	for _, tt := range tests {
		got := v.Get(tt.key)
		if got != tt.want {
			t.Errorf("default %s = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "valid config",
			config: Config{
				Listen:    ListenConfig{Address: ":8443"},
				Clients:   ClientsConfig{Max: 1024},
				Message:   MessageConfig{ObjectsPerMessage: 64},
				WhiteList: WhiteListConfig{Path: "whitelist.toml"},
				Log:       LogConfig{Verbosity: 0},
			},
			wantErr: false,
		},
		{
			name: "empty listen address is invalid",
			config: Config{
				Listen:    ListenConfig{Address: ""},
				Clients:   ClientsConfig{Max: 1024},
				Message:   MessageConfig{ObjectsPerMessage: 64},
				WhiteList: WhiteListConfig{Path: "whitelist.toml"},
			},
			wantErr: true,
		},
		{
			name: "zero max clients is invalid",
			config: Config{
				Listen:    ListenConfig{Address: ":8443"},
				Clients:   ClientsConfig{Max: 0},
				Message:   MessageConfig{ObjectsPerMessage: 64},
				WhiteList: WhiteListConfig{Path: "whitelist.toml"},
			},
			wantErr: true,
		},
		{
			name: "negative max clients is invalid",
			config: Config{
				Listen:    ListenConfig{Address: ":8443"},
				Clients:   ClientsConfig{Max: -1},
				Message:   MessageConfig{ObjectsPerMessage: 64},
				WhiteList: WhiteListConfig{Path: "whitelist.toml"},
			},
			wantErr: true,
		},
		{
			name: "zero objects per message is invalid",
			config: Config{
				Listen:    ListenConfig{Address: ":8443"},
				Clients:   ClientsConfig{Max: 1024},
				Message:   MessageConfig{ObjectsPerMessage: 0},
				WhiteList: WhiteListConfig{Path: "whitelist.toml"},
			},
			wantErr: true,
		},
		{
			name: "empty whitelist path is invalid",
			config: Config{
				Listen:    ListenConfig{Address: ":8443"},
				Clients:   ClientsConfig{Max: 1024},
				Message:   MessageConfig{ObjectsPerMessage: 64},
				WhiteList: WhiteListConfig{Path: ""},
			},
			wantErr: true,
		},
		{
			name: "negative verbosity is invalid",
			config: Config{
				Listen:    ListenConfig{Address: ":8443"},
				Clients:   ClientsConfig{Max: 1024},
				Message:   MessageConfig{ObjectsPerMessage: 64},
				WhiteList: WhiteListConfig{Path: "whitelist.toml"},
				Log:       LogConfig{Verbosity: -1},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "ifmapd.toml")

	content := `
[listen]
address = ":9443"

[clients]
max = 256

[message]
objects_per_message = 32

[whitelist]
path = "custom-whitelist.toml"
`
	if err := os.WriteFile(configPath, []byte(content), DefaultFilePermissions); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() failed: %v", err)
	}

	if cfg.Listen.Address != ":9443" {
		t.Errorf("expected listen address :9443, got %q", cfg.Listen.Address)
	}

	if cfg.Clients.Max != 256 {
		t.Errorf("expected max clients 256, got %d", cfg.Clients.Max)
	}

	if cfg.Message.ObjectsPerMessage != 32 {
		t.Errorf("expected objects per message 32, got %d", cfg.Message.ObjectsPerMessage)
	}

	if cfg.WhiteList.Path != "custom-whitelist.toml" {
		t.Errorf("expected whitelist path custom-whitelist.toml, got %q", cfg.WhiteList.Path)
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/ifmapd.toml")
	if err == nil {
		t.Error("expected error loading nonexistent config file, got nil")
	}
}

func TestLoad_Caching(t *testing.T) {
	Reset()
	defer Reset()

	cfg1, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	cfg2, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg1 != cfg2 {
		t.Error("expected Load() to return the cached instance on subsequent calls")
	}
}

func TestReset(t *testing.T) {
	Reset()
	defer Reset()

	if _, err := Load(); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if globalConfig == nil {
		t.Fatal("expected globalConfig to be populated after Load()")
	}

	Reset()

	if globalConfig != nil {
		t.Error("expected Reset() to clear globalConfig")
	}
	if viperInstance != nil {
		t.Error("expected Reset() to clear viperInstance")
	}
}

func TestBindSensitiveEnvVars(t *testing.T) {
	t.Setenv("IFMAPD_WHITELIST_PATH", "/etc/ifmapd/whitelist.toml")

	v := viper.New()
	SetDefaults(v)
	BindSensitiveEnvVars(v)

	if got := v.GetString("whitelist.path"); got != "/etc/ifmapd/whitelist.toml" {
		t.Errorf("expected whitelist.path from env var, got %q", got)
	}
}
