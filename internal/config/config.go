// Package config loads the settings a server or client process reads at
// startup from a YAML file on disk.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPlayerName = "Player"
	DefaultServerPort = 32455

	MaxPlayerNameBytes = 64
	MaxServerNameBytes = 32
)

// Configuration holds the settings recognized by both the server and
// client binaries. Fields absent from the YAML file keep their zero
// value until Defaults fills them in.
type Configuration struct {
	PlayerName string `yaml:"player_name"`
	ServerPort uint16 `yaml:"server_port"`
	ServerName string `yaml:"server_name"`
	VSync      bool   `yaml:"vsync"`

	ChatMessageDisplayTime  float64 `yaml:"chat_message_display_time"`
	EventMessageDisplayTime float64 `yaml:"event_message_display_time"`
}

// Load reads and decodes the YAML file at path, then applies Defaults
// to any field the file left at its zero value.
func Load(path string) (Configuration, error) {
	f, err := os.Open(path)
	if err != nil {
		return Configuration{}, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	var cfg Configuration
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return Configuration{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Configuration{}, err
	}
	return cfg, nil
}

// applyDefaults fills zero-valued fields with their documented defaults.
func (c *Configuration) applyDefaults() {
	if c.PlayerName == "" {
		c.PlayerName = DefaultPlayerName
	}
	if c.ServerPort == 0 {
		c.ServerPort = DefaultServerPort
	}
}

// Validate rejects a configuration that would violate the documented
// field limits. Load already calls this; callers building a
// Configuration by hand (tests, flag overrides) should call it too.
func (c Configuration) Validate() error {
	if len(c.PlayerName) > MaxPlayerNameBytes {
		return fmt.Errorf("config: player_name exceeds %d bytes", MaxPlayerNameBytes)
	}
	if len(c.ServerName) > MaxServerNameBytes {
		return fmt.Errorf("config: server_name exceeds %d bytes", MaxServerNameBytes)
	}
	return nil
}
