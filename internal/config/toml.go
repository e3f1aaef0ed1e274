// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Analyze AnalyzeConfig `toml:"analyze"`
	Merge   MergeConfig   `toml:"merge"`
}

// AnalyzeConfig maps report-related settings.
type AnalyzeConfig struct {
	StatsDir        *string `toml:"stats-dir"`
	Top             *int    `toml:"top"`
	Format          *string `toml:"format"`
	Color           *bool   `toml:"color"`
	LogLevel        *string `toml:"log-level"`
	MaxDownloadSize *int64  `toml:"max-download-size"`
}

// MergeConfig maps merge-related settings.
type MergeConfig struct {
	Output *string `toml:"output"`
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
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
