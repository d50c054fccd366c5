// Package config loads project configuration from a TOML file. Every field
// has a default, so a missing config file is not an error.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/hwaldner/pinout/pkg/errors"
	"github.com/hwaldner/pinout/pkg/fonts"
)

// FileName is the config file looked up next to the input document.
const FileName = "pinout.toml"

// Config holds project-level render defaults. Command-line flags override
// these; commands inside the document override both.
type Config struct {
	Render RenderConfig `toml:"render"`
	Cache  CacheConfig  `toml:"cache"`
	Fonts  FontsConfig  `toml:"fonts"`
}

// RenderConfig sets the default output parameters.
type RenderConfig struct {
	// Page is the default page identifier, e.g. "A4-L".
	Page string `toml:"page"`

	// DPI is the default pixel density.
	DPI int `toml:"dpi"`

	// Formats lists the output formats produced when none are requested.
	Formats []string `toml:"formats"`

	// Background fills the canvas behind all primitives when set.
	Background string `toml:"background"`
}

// CacheConfig controls the artifact cache.
type CacheConfig struct {
	// Enabled turns artifact caching on.
	Enabled bool `toml:"enabled"`

	// Dir is the cache directory. Empty means a "pinout" subdirectory of
	// the user cache directory.
	Dir string `toml:"dir"`
}

// FontsConfig sets typography defaults.
type FontsConfig struct {
	// Family is the font family used when the document sets none.
	Family string `toml:"family"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Render: RenderConfig{
			Page:    "A4-L",
			DPI:     300,
			Formats: []string{"svg"},
		},
		Cache: CacheConfig{
			Enabled: true,
		},
		Fonts: FontsConfig{
			Family: fonts.DefaultFamily,
		},
	}
}

// Load reads the config file at path, applying defaults for absent fields.
// A missing file yields the defaults; a malformed file is a CONFIG_ERROR.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeConfig, err, "reading config %s", path)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeConfig, err, "parsing config %s", path)
	}
	return cfg, nil
}

// LoadNear looks for the config file in the directory containing the input
// document and falls back to defaults when none exists.
func LoadNear(inputPath string) (Config, error) {
	dir := filepath.Dir(inputPath)
	return Load(filepath.Join(dir, FileName))
}

// CacheDir resolves the cache directory, creating a per-user default when
// the config leaves it empty.
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeConfig, err, "resolving user cache directory")
	}
	return filepath.Join(base, "pinout"), nil
}
