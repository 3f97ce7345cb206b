// Package config loads the checker configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileNames are the configuration files looked up, in order.
var FileNames = []string{"fzpcheck.yaml", "fzpcheck.yml", ".fzpcheck.yaml", ".fzpcheck.yml"}

// Output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Config holds the settings shared by the check and watch commands.
type Config struct {
	Checks   []string `yaml:"checks"`
	Fix      bool     `yaml:"fix"`
	LogLevel string   `yaml:"log_level"`
	PartsDir string   `yaml:"parts_dir"`
	Ignore   []string `yaml:"ignore"`
	Output   string   `yaml:"output"`

	// Path is the file the configuration was read from, if any.
	Path string `yaml:"-"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		Checks:   []string{"all"},
		LogLevel: "warning",
		Output:   OutputText,
	}
}

// Load reads the configuration file at path. Fields absent from the file
// keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// LoadFromDir loads the first configuration file found in dir, or the
// defaults when there is none.
func LoadFromDir(dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		_, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		return Load(path)
	}
	return Default(), nil
}

// Validate checks field values that can be verified without the registry.
func (c *Config) Validate() error {
	switch c.Output {
	case "", OutputText, OutputJSON:
	default:
		return fmt.Errorf("unknown output format %q", c.Output)
	}
	if len(c.Checks) == 0 {
		return errors.New("checks must not be empty")
	}
	return nil
}
