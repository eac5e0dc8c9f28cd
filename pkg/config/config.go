// Package config loads scan settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in a scan root.
const FileName = ".checkparens.yaml"

// DefaultMaxFileSize is the size limit used when none is configured.
const DefaultMaxFileSize int64 = 10 * 1024 * 1024

// Config holds scan settings.
type Config struct {
	// Exclude lists gitignore-style patterns relative to the scan root.
	Exclude []string `yaml:"exclude"`

	// IncludeHidden includes files and directories starting with ".".
	IncludeHidden bool `yaml:"include_hidden"`

	// MaxFileSize skips larger files (0 = no limit).
	MaxFileSize int64 `yaml:"max_file_size"`

	// Archives checks the members of .zip and .7z files.
	Archives bool `yaml:"archives"`
}

// Default returns the settings used when no file is present.
func Default() *Config {
	return &Config{MaxFileSize: DefaultMaxFileSize}
}

// LoadBytes parses YAML on top of the defaults.
func LoadBytes(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Discover loads FileName from root, or returns defaults if there is none.
// A root that is a file is looked up in its directory.
func Discover(root string) (*Config, error) {
	dir := root
	if info, err := os.Stat(root); err == nil && !info.IsDir() {
		dir = filepath.Dir(root)
	}

	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	if c.MaxFileSize < 0 {
		return fmt.Errorf("max_file_size must not be negative, got %d", c.MaxFileSize)
	}
	for i, p := range c.Exclude {
		if p == "" {
			return fmt.Errorf("exclude[%d] is empty", i)
		}
	}
	return nil
}
