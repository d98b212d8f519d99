// Package config loads the lazo YAML configuration and applies environment
// overrides on top of it.
package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// KnownModules are the module names accepted under modules.
var KnownModules = []string{"sqlite", "time"}

type Config struct {
	Prompt             string   `yaml:"prompt"`
	ContinuationPrompt string   `yaml:"continuation_prompt"`
	HistoryFile        string   `yaml:"history_file"`
	Color              string   `yaml:"color"`
	Verbose            bool     `yaml:"verbose"`
	MaxTraces          int      `yaml:"max_traces"`
	Modules            []string `yaml:"modules"`
}

func Default() Config {
	c := Config{
		Prompt:             "> ",
		ContinuationPrompt: ".. ",
		Color:              ColorAuto,
		MaxTraces:          1000,
	}
	if home, err := os.UserHomeDir(); err == nil {
		c.HistoryFile = filepath.Join(home, ".lazo_history")
	}
	return c
}

// DefaultPath is $XDG_CONFIG_HOME/lazo/config.yaml or the platform equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "locating config directory")
	}
	return filepath.Join(dir, "lazo", "config.yaml"), nil
}

// Load builds a Config from defaults, then the YAML file, then the
// environment. An empty path falls back to LAZO_CONFIG and then DefaultPath;
// only a missing default file is tolerated.
func Load(path string) (Config, error) {
	c := Default()

	explicit := true
	if path == "" {
		path = os.Getenv("LAZO_CONFIG")
	}
	if path == "" {
		explicit = false
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := decode(b, &c); err != nil {
				return Config{}, errors.Wrapf(err, "parsing %s", path)
			}
		case os.IsNotExist(err) && !explicit:
		default:
			return Config{}, errors.Wrapf(err, "reading config %s", path)
		}
	}

	if err := applyEnv(&c); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func decode(b []byte, c *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && err != io.EOF {
		return err
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func applyEnv(c *Config) error {
	c.Prompt = envOr("LAZO_PROMPT", c.Prompt)
	c.HistoryFile = envOr("LAZO_HISTORY", c.HistoryFile)
	c.Color = envOr("LAZO_COLOR", c.Color)
	if v := os.Getenv("LAZO_VERBOSE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrapf(err, "LAZO_VERBOSE=%q", v)
		}
		c.Verbose = b
	}
	return nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs *multierror.Error
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		errs = multierror.Append(errs, errors.Errorf("color must be auto, always or never, got %q", c.Color))
	}
	if c.MaxTraces < 0 {
		errs = multierror.Append(errs, errors.Errorf("max_traces must not be negative, got %d", c.MaxTraces))
	}
	for _, m := range c.Modules {
		if !slices.Contains(KnownModules, m) {
			errs = multierror.Append(errs, errors.Errorf("unknown module %q", m))
		}
	}
	return errs.ErrorOrNil()
}

// HasModule reports whether the named module is enabled.
func (c Config) HasModule(name string) bool {
	return slices.Contains(c.Modules, name)
}
