// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Tournament  TournamentConfig `toml:"tournament"`
	SizeClasses map[string]int   `toml:"size-classes"`
}

// TournamentConfig maps dataset generation settings.
type TournamentConfig struct {
	Out         *string   `toml:"out"`
	Repetitions *int      `toml:"repetitions"`
	Shapes      *[]string `toml:"shapes"`
	Algorithms  *[]string `toml:"algorithms"`
	DefaultSize *int      `toml:"default-size"`
	MaxValue    *int      `toml:"max-value"`
	Seed        *int64    `toml:"seed"`
	MaxSteps    *int64    `toml:"max-steps"`
	Timeout     *Duration `toml:"timeout"`
	SleepUnit   *Duration `toml:"sleep-unit"`
	Store       *bool     `toml:"store"`
	DB          *string   `toml:"db"`
}

// Duration decodes TOML strings such as "5s" or "100us".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
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
