// SPDX-License-Identifier: GPL-2.0-or-later

// Package config holds the settings of the viewer.
package config

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"q2view/maps"
)

const (
	// EnvConfig names the config file if no path is given.
	EnvConfig = "Q2VIEW_CONFIG"
	// EnvBaseDir overrides an empty basedir.
	EnvBaseDir = "Q2VIEW_BASEDIR"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	BaseDir string        `yaml:"basedir"`
	Game    string        `yaml:"game"`
	View    ViewConfig    `yaml:"view"`
	Logging LoggingConfig `yaml:"logging"`
	Maps    []maps.Map    `yaml:"maps"`
}

type ViewConfig struct {
	// Scale is the size of one map unit in engine units.
	Scale float32 `yaml:"scale"`
	// FatPVS is the radius in map units around the viewer whose clusters
	// are merged into the visible set. 0 uses the plain PVS.
	FatPVS float32 `yaml:"fatpvs"`
	FovX   float32 `yaml:"fov_x"`
	FovY   float32 `yaml:"fov_y"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() *Config {
	return &Config{
		BaseDir: ".",
		Game:    "baseq2",
		View: ViewConfig{
			Scale:  0.0005,
			FatPVS: 8,
			FovX:   90,
			FovY:   73.74,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the YAML file at path on top of Default. If path is empty the
// file named by Q2VIEW_CONFIG is used, and without it the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(err, "reading config")
		}
		defer f.Close()
		if err := cfg.decode(f); err != nil {
			return nil, errors.Wrapf(err, "config %s", path)
		}
	}
	if cfg.BaseDir == "" || cfg.BaseDir == "." {
		if d := os.Getenv(EnvBaseDir); d != "" {
			cfg.BaseDir = d
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse reads YAML from r on top of Default.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(r); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(r io.Reader) error {
	d := yaml.NewDecoder(r)
	d.KnownFields(true)
	if err := d.Decode(c); err != nil && err != io.EOF {
		return errors.Wrap(err, "decoding yaml")
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Game == "" || strings.ContainsAny(c.Game, `/\`) {
		return errors.Wrapf(ErrInvalid, "game %q", c.Game)
	}
	if !(c.View.Scale > 0) {
		return errors.Wrapf(ErrInvalid, "view.scale %v", c.View.Scale)
	}
	if c.View.FatPVS < 0 {
		return errors.Wrapf(ErrInvalid, "view.fatpvs %v", c.View.FatPVS)
	}
	if c.View.FovX <= 0 || c.View.FovX >= 180 || c.View.FovY <= 0 || c.View.FovY >= 180 {
		return errors.Wrapf(ErrInvalid, "view fov %vx%v", c.View.FovX, c.View.FovY)
	}
	if _, err := c.Logging.level(); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return errors.Wrapf(ErrInvalid, "logging.format %q", c.Logging.Format)
	}
	for _, m := range c.Maps {
		if m.ID == "" {
			return errors.Wrapf(ErrInvalid, "map without id (%q)", m.Name)
		}
	}
	return nil
}

// Catalog returns the stock maps plus the configured ones.
func (c *Config) Catalog() (*maps.Catalog, error) {
	cat, err := maps.NewCatalog(c.Maps...)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalid, "maps: %v", err)
	}
	return cat, nil
}

func (l LoggingConfig) level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, errors.Wrapf(ErrInvalid, "logging.level %q", l.Level)
	}
	return lvl, nil
}

// Handler returns the slog handler described by the config.
func (l LoggingConfig) Handler(w io.Writer) (slog.Handler, error) {
	lvl, err := l.level()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if l.Format == "json" {
		return slog.NewJSONHandler(w, opts), nil
	}
	return slog.NewTextHandler(w, opts), nil
}
