// Package config loads and saves the acidstep YAML configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/james-see/acidstep/pkg/control"
)

// Config is the on-disk configuration
type Config struct {
	Device   string           `yaml:"device"`
	Tempo    float64          `yaml:"tempo"`
	BaseNote int              `yaml:"base_note"`
	MIDI     MIDIConfig       `yaml:"midi"`
	Serial   SerialConfig     `yaml:"serial"`
	Server   ServerConfig     `yaml:"server"`
	Log      LogConfig        `yaml:"log"`
	Control  control.Settings `yaml:"control"`
}

// MIDIConfig selects the MIDI output port
type MIDIConfig struct {
	Port    string `yaml:"port"`
	Channel uint8  `yaml:"channel"`
}

// SerialConfig selects the serial CV/gate output
type SerialConfig struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

// ServerConfig configures the API server
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LogConfig configures logging
type LogConfig struct {
	Level string `yaml:"level"`
	Debug bool   `yaml:"debug"`
	File  string `yaml:"file"`
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() Config {
	return Config{
		Device:   "td3",
		Tempo:    120,
		BaseNote: control.BaseNote,
		Serial:   SerialConfig{Baud: 115200},
		Server:   ServerConfig{Port: 8080},
		Log:      LogConfig{Level: "info"},
		Control:  control.DefaultSettings(),
	}
}

// Dir returns the configuration directory, ~/.config/acidstep
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config directory: %w", err)
	}
	return filepath.Join(base, "acidstep"), nil
}

// DefaultPath returns the path of config.yaml in Dir
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating the directory if needed
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate checks value ranges
func (c Config) Validate() error {
	var errs []error
	if c.Tempo < 20 || c.Tempo > 300 {
		errs = append(errs, fmt.Errorf("tempo %v outside 20..300", c.Tempo))
	}
	if c.BaseNote < 0 || c.BaseNote > 127-23 {
		errs = append(errs, fmt.Errorf("base_note %d outside 0..104", c.BaseNote))
	}
	if c.MIDI.Channel > 15 {
		errs = append(errs, fmt.Errorf("midi.channel %d outside 0..15", c.MIDI.Channel))
	}
	if c.Serial.Baud <= 0 {
		errs = append(errs, fmt.Errorf("serial.baud %d must be positive", c.Serial.Baud))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d outside 1..65535", c.Server.Port))
	}
	return errors.Join(errs...)
}
