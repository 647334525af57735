// Package config stores the host tools' settings: the instrument configuration plus the MIDI and serial
// ports to connect to.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/calvinmclean/autolyre"
)

// MIDIConfig names the host MIDI ports. Names are matched by substring
type MIDIConfig struct {
	InPort  string `json:"inPort,omitempty"`
	OutPort string `json:"outPort,omitempty"`
}

// SerialConfig is a serial line carrying a raw MIDI stream
type SerialConfig struct {
	Port string `json:"port,omitempty"`
	Baud int    `json:"baud,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	Instrument autolyre.Config `json:"instrument"`
	MIDI       MIDIConfig      `json:"midi,omitempty"`
	Serial     SerialConfig    `json:"serial,omitempty"`
}

// DefaultConfig returns the 16 string lyre with no ports selected
func DefaultConfig() *Config {
	return &Config{
		Instrument: autolyre.DefaultConfig(),
		Serial: SerialConfig{
			Baud: 115200,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "autolyre"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config at path, or the default location when path is empty. A missing file yields the
// defaults. Fields absent from the file keep their default values.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = ConfigPath()
		if err != nil {
			return DefaultConfig(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	err = json.Unmarshal(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", path, err)
	}

	err = cfg.Instrument.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid instrument config in %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the config to path, or the default location when path is empty
func (c *Config) Save(path string) error {
	if path == "" {
		var err error
		path, err = ConfigPath()
		if err != nil {
			return err
		}
	}

	err := os.MkdirAll(filepath.Dir(path), 0755)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
