// Package config loads the optional .ru.toml settings file. The file
// provides defaults for flags the user does not pass on the command
// line; command-line flags always win.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/standardbeagle/ru/internal/pattern"
	"github.com/standardbeagle/ru/internal/types"
)

// FileName is the settings file looked up in the working directory and
// the user's home directory, nearest first.
const FileName = ".ru.toml"

type Config struct {
	Search Search `toml:"search"`
	Walk   Walk   `toml:"walk"`
	Output Output `toml:"output"`
}

type Search struct {
	Backend     string `toml:"backend"`      // "std", "grafana" or "dfa"
	Workers     int    `toml:"workers"`      // 0 = NumCPU
	MaxFileSize int64  `toml:"max_filesize"` // bytes
	SmartCase   bool   `toml:"smart_case"`
}

type Walk struct {
	Hidden   bool     `toml:"hidden"`
	Follow   bool     `toml:"follow"`
	NoIgnore bool     `toml:"no_ignore"`
	MaxDepth int      `toml:"max_depth"`
	Include  []string `toml:"include"`
	Exclude  []string `toml:"exclude"`
}

type Output struct {
	Color   string `toml:"color"` // "auto", "always" or "never"
	Context int    `toml:"context"`
}

// Default returns the built-in settings used when no file exists.
func Default() *Config {
	return &Config{
		Search: Search{
			Backend:     string(pattern.BackendStd),
			MaxFileSize: types.DefaultMaxFileSize,
		},
		Output: Output{Color: "auto"},
	}
}

// Load reads the settings file at path. An empty path triggers the
// default lookup: .ru.toml in the working directory, then in the home
// directory. A missing file is not an error; a file that exists but
// does not parse is.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = locate()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func locate() string {
	if wd, err := os.Getwd(); err == nil {
		p := filepath.Join(wd, FileName)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, FileName)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Validate checks enum fields and numeric ranges.
func (c *Config) Validate() error {
	if _, err := pattern.ParseBackend(c.Search.Backend); err != nil {
		return err
	}
	if c.Search.Workers < 0 {
		return fmt.Errorf("search.workers must not be negative, got %d", c.Search.Workers)
	}
	if c.Search.MaxFileSize < 0 {
		return fmt.Errorf("search.max_filesize must not be negative, got %d", c.Search.MaxFileSize)
	}
	if c.Walk.MaxDepth < 0 {
		return fmt.Errorf("walk.max_depth must not be negative, got %d", c.Walk.MaxDepth)
	}
	switch c.Output.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("output.color must be auto, always or never, got %q", c.Output.Color)
	}
	if c.Output.Context < 0 {
		return fmt.Errorf("output.context must not be negative, got %d", c.Output.Context)
	}
	return nil
}
