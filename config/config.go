// Package config loads ifmapd's runtime configuration: the listen
// address, the maximum number of concurrently registered clients, the
// per-message object batch size, and the whitelist table path.
package config

// Config represents ifmapd's runtime configuration.
type Config struct {
	Listen    ListenConfig    `mapstructure:"listen"`
	Clients   ClientsConfig   `mapstructure:"clients"`
	Message   MessageConfig   `mapstructure:"message"`
	WhiteList WhiteListConfig `mapstructure:"whitelist"`
	Log       LogConfig       `mapstructure:"log"`
}

// ListenConfig configures the session-layer WebSocket listener.
type ListenConfig struct {
	Address string `mapstructure:"address"` // e.g. ":8443"
}

// ClientsConfig bounds the registered-client bitset width.
type ClientsConfig struct {
	Max int `mapstructure:"max"` // maximum concurrently registered clients
}

// MessageConfig configures update batching toward each client.
type MessageConfig struct {
	ObjectsPerMessage int `mapstructure:"objects_per_message"`
}

// WhiteListConfig locates the node-type/link-type permission table.
type WhiteListConfig struct {
	Path string `mapstructure:"path"` // path to the whitelist TOML file
}

// LogConfig configures process-wide logging.
type LogConfig struct {
	Verbosity int  `mapstructure:"verbosity"` // -v/-vv/-vvv count, see logger.VerbosityToLevel
	JSON      bool `mapstructure:"json"`      // structured JSON output instead of console
}

// Default listen/batching values, mirrored into SetDefaults.
const (
	DefaultListenAddress      = ":8443"
	DefaultMaxClients         = 1024
	DefaultObjectsPerMessage  = 64
	DefaultWhiteListPath      = "whitelist.toml"
)

// File system permissions used when writing configuration-adjacent files.
const (
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644
)
