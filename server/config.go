package server

import (
	"errors"
	"fmt"
)

// Config holds the HTTP server settings.
type Config struct {
	// Host is the listen address.
	Host string

	// Port is the listen port.
	Port int

	// AllowedOrigin is the value sent in CORS headers.
	AllowedOrigin string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Host:          "127.0.0.1",
		Port:          8000,
		AllowedOrigin: "*",
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Host == "" {
		return errors.New("host must not be empty")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	return nil
}

// Addr returns the host:port listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
