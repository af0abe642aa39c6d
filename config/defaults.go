package config

import "github.com/spf13/viper"

// SetDefaults configures default values for every configuration option.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("listen.address", DefaultListenAddress)
	v.SetDefault("clients.max", DefaultMaxClients)
	v.SetDefault("message.objects_per_message", DefaultObjectsPerMessage)
	v.SetDefault("whitelist.path", DefaultWhiteListPath)
	v.SetDefault("log.verbosity", 0)
	v.SetDefault("log.json", false)
}

// BindSensitiveEnvVars explicitly binds configuration values that should be
// settable via environment variable even without IFMAPD_ prefix discovery.
func BindSensitiveEnvVars(v *viper.Viper) {
	v.BindEnv("whitelist.path", "IFMAPD_WHITELIST_PATH")
	v.BindEnv("listen.address", "IFMAPD_LISTEN_ADDRESS")
}
