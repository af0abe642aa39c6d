package config

import "fmt"

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Listen.Address == "" {
		return fmt.Errorf("listen.address must not be empty")
	}

	if c.Clients.Max <= 0 {
		return fmt.Errorf("clients.max must be > 0, got %d", c.Clients.Max)
	}

	if c.Message.ObjectsPerMessage <= 0 {
		return fmt.Errorf("message.objects_per_message must be > 0, got %d", c.Message.ObjectsPerMessage)
	}

	if c.WhiteList.Path == "" {
		return fmt.Errorf("whitelist.path must not be empty")
	}

	if c.Log.Verbosity < 0 {
		return fmt.Errorf("log.verbosity must be >= 0, got %d", c.Log.Verbosity)
	}

	return nil
}
