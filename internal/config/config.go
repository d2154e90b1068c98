// Package config loads the optional .mirror.yaml file that supplies
// defaults for the mirror command's flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/unbound-force/mirror/internal/taxonomy"
)

// FileName is the config file looked up in the working directory.
const FileName = ".mirror.yaml"

// Config holds the flag defaults.
type Config struct {
	// Binding is the default binding mask, e.g. "public,instance" or
	// "any".
	Binding string `yaml:"binding"`

	// Format is the default output format: text or json.
	Format string `yaml:"format"`

	Complexity ComplexityConfig `yaml:"complexity"`
}

// ComplexityConfig controls the complexity column of member listings.
type ComplexityConfig struct {
	// Threshold flags members whose cyclomatic complexity exceeds it.
	// Zero disables flagging.
	Threshold int `yaml:"threshold"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Binding: "any",
		Format:  "text",
		Complexity: ComplexityConfig{
			Threshold: 15,
		},
	}
}

// Load reads the file at path over the defaults. A missing file is not
// an error: the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %q: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every field.
func (c *Config) Validate() error {
	if _, err := taxonomy.ParseBinding(c.Binding); err != nil {
		return fmt.Errorf("binding: %w", err)
	}
	if c.Format != "text" && c.Format != "json" {
		return fmt.Errorf("format %q: must be 'text' or 'json'", c.Format)
	}
	if c.Complexity.Threshold < 0 {
		return fmt.Errorf("complexity.threshold %d: must not be negative", c.Complexity.Threshold)
	}
	return nil
}

// BindingMask parses Binding. It must only be called on a validated
// config.
func (c *Config) BindingMask() taxonomy.Binding {
	b, err := taxonomy.ParseBinding(c.Binding)
	if err != nil {
		return taxonomy.AnyBinding
	}
	return b
}
