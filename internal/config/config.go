// Package config loads and saves the settings file shared by the abacus
// commands.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/goccy/go-yaml"

	"github.com/zephyrtronium/abacus"
)

// DefaultHistory is the number of REPL history entries kept by default.
const DefaultHistory = 100

// Config is the content of a settings file.
type Config struct {
	// Precision is the number of significant decimal digits of float results.
	Precision int `yaml:"precision"`
	// Constants are defined in every session in addition to pi and e.
	Constants map[string]string `yaml:"constants,omitempty"`
	// History is the number of REPL history entries to keep.
	History int `yaml:"history"`
}

// Default returns the settings used when there is no settings file.
func Default() *Config {
	return &Config{
		Precision: abacus.DefaultPrecision,
		History:   DefaultHistory,
	}
}

// Load reads a settings file. Settings missing from the file keep their
// default values. If the file does not exist, the result is Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the settings to path, creating its directory if needed.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Validate checks the settings for values that cannot be used.
func (c *Config) Validate() error {
	var errs []error
	if c.Precision < 1 {
		errs = append(errs, errors.New("precision must be positive, not "+strconv.Itoa(c.Precision)))
	}
	if c.History < 0 {
		errs = append(errs, errors.New("history must not be negative, not "+strconv.Itoa(c.History)))
	}
	for _, name := range c.names() {
		if !abacus.ValidIdent(name) {
			errs = append(errs, fmt.Errorf("constant %q: invalid name", name))
			continue
		}
		if _, err := abacus.ParseValue(c.Constants[name]); err != nil {
			errs = append(errs, fmt.Errorf("constant %q: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Apply sets the working precision and adds the configured constants to cs.
// Constants with invalid names or values are skipped and reported.
func (c *Config) Apply(cs *abacus.Constants) error {
	abacus.SetPrecision(c.Precision)
	var errs []error
	for _, name := range c.names() {
		text := c.Constants[name]
		if !abacus.ValidIdent(name) {
			errs = append(errs, fmt.Errorf("constant %q: invalid name", name))
			continue
		}
		if _, err := abacus.ParseValue(text); err != nil {
			errs = append(errs, fmt.Errorf("constant %q: %w", name, err))
			continue
		}
		cs.Set(name, text)
	}
	return errors.Join(errs...)
}

// SetConstants replaces the configured constants with those of cs which are
// not standard constants with their standard values.
func (c *Config) SetConstants(cs *abacus.Constants) {
	std := abacus.StdConstants(abacus.Precision())
	m := cs.Map()
	for name, text := range m {
		if s, ok := std[name]; ok && s == text {
			delete(m, name)
		}
	}
	if len(m) == 0 {
		m = nil
	}
	c.Constants = m
}

func (c *Config) names() []string {
	r := make([]string, 0, len(c.Constants))
	for name := range c.Constants {
		r = append(r, name)
	}
	sort.Strings(r)
	return r
}
