// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Version is the settings layout written by SaveConfig.
const Version = 2

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Version *int        `toml:"version"`
	Play    PlayConfig  `toml:"play"`
	Serve   ServeConfig `toml:"serve"`
}

// PlayConfig maps play-related settings.
type PlayConfig struct {
	Mode        *string  `toml:"mode"`
	Sound       *bool    `toml:"sound"`
	Hazards     *bool    `toml:"hazards"`
	PeriodMs    *float64 `toml:"period-ms"`
	AutoDelayMs *float64 `toml:"auto-delay-ms"`
	Seed        *int64   `toml:"seed"`
}

// ServeConfig maps SSH server settings.
type ServeConfig struct {
	Host    *string `toml:"host"`
	Port    *int    `toml:"port"`
	HostKey *string `toml:"host-key"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path, creating parent directories as needed.
func SaveConfig(path string, cfg FileConfig) error {
	if path == "" {
		return fmt.Errorf("config path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	if cfg.Version == nil {
		v := Version
		cfg.Version = &v
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close on encode failure.
			_ = cerr
		}
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return f.Close()
}

// Template returns a config populated with the built-in defaults.
func Template() FileConfig {
	version := Version
	mode := "two"
	sound := true
	hazards := true
	period := 2000.0
	delay := 1000.0
	host := DefaultSSHHost
	port := DefaultSSHPort
	key := DefaultHostKeyPath()
	return FileConfig{
		Version: &version,
		Play: PlayConfig{
			Mode:        &mode,
			Sound:       &sound,
			Hazards:     &hazards,
			PeriodMs:    &period,
			AutoDelayMs: &delay,
		},
		Serve: ServeConfig{
			Host:    &host,
			Port:    &port,
			HostKey: &key,
		},
	}
}
