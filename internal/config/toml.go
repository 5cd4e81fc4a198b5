// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Quiz    QuizConfig    `toml:"quiz"`
	Stats   StatsConfig   `toml:"stats"`
	Storage StorageConfig `toml:"storage"`
	Bank    BankConfig    `toml:"bank"`
}

// QuizConfig maps quiz-related settings.
type QuizConfig struct {
	Questions *int    `toml:"questions"`
	Domain    *string `toml:"domain"`
	Timed     *bool   `toml:"timed"`
	TimeLimit *int    `toml:"time-limit"`
}

// StatsConfig maps stats-related settings.
type StatsConfig struct {
	Window *int `toml:"window"`
	Last   *int `toml:"last"`
}

// StorageConfig maps progress storage settings.
type StorageConfig struct {
	Path     *string `toml:"path"`
	Disabled *bool   `toml:"disabled"`
}

// BankConfig maps question bank settings.
type BankConfig struct {
	Path *string `toml:"path"`
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
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
