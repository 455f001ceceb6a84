// Package config loads mind map settings from defaults, a TOML file,
// MINDMAP_* environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"mindmap/editor"

	"github.com/BurntSushi/toml"
	koanftoml "github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultFile is the config file read from the working directory.
const DefaultFile = "mindmap.toml"

// EnvPrefix prefixes environment overrides, e.g. MINDMAP_LOG_LEVEL=debug.
const EnvPrefix = "MINDMAP_"

// Config holds all settings of the editor and its front-ends.
type Config struct {
	File     string `koanf:"file" toml:"file"`           // Document path
	LogLevel string `koanf:"log_level" toml:"log_level"` // debug, info, warn or error
	LogFile  string `koanf:"log_file" toml:"log_file"`   // Empty logs to stderr outside the TUI
	Addr     string `koanf:"addr" toml:"addr"`           // Listen address of serve
	Watch    bool   `koanf:"watch" toml:"watch"`         // Reload the document when it changes on disk

	FontSize   float64 `koanf:"font_size" toml:"font_size"`
	CellWidth  float64 `koanf:"cell_width" toml:"cell_width"`
	CellHeight float64 `koanf:"cell_height" toml:"cell_height"`

	WheelZoomRate    float64 `koanf:"wheel_zoom_rate" toml:"wheel_zoom_rate"`
	DragThreshold    float64 `koanf:"drag_threshold" toml:"drag_threshold"`
	EdgeHitTolerance float64 `koanf:"edge_hit_tolerance" toml:"edge_hit_tolerance"`
	ViewMargin       float64 `koanf:"view_margin" toml:"view_margin"`
	HistoryLimit     int     `koanf:"history_limit" toml:"history_limit"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	opts := editor.DefaultOptions()
	return &Config{
		File:             "mindmap.json",
		LogLevel:         "info",
		Addr:             "localhost:8080",
		Watch:            true,
		FontSize:         16,
		CellWidth:        8,
		CellHeight:       16,
		WheelZoomRate:    opts.WheelZoomRate,
		DragThreshold:    opts.DragThreshold,
		EdgeHitTolerance: opts.EdgeHitTolerance,
		ViewMargin:       opts.ViewMargin,
		HistoryLimit:     opts.HistoryLimit,
	}
}

// defaultMap lists the defaults under their config keys.
func defaultMap() map[string]interface{} {
	d := Default()
	return map[string]interface{}{
		"file":               d.File,
		"log_level":          d.LogLevel,
		"log_file":           d.LogFile,
		"addr":               d.Addr,
		"watch":              d.Watch,
		"font_size":          d.FontSize,
		"cell_width":         d.CellWidth,
		"cell_height":        d.CellHeight,
		"wheel_zoom_rate":    d.WheelZoomRate,
		"drag_threshold":     d.DragThreshold,
		"edge_hit_tolerance": d.EdgeHitTolerance,
		"view_margin":        d.ViewMargin,
		"history_limit":      d.HistoryLimit,
	}
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
//
// The file is DefaultFile unless the flag set has a "config" flag. A missing
// file is skipped; a file that does not parse is an error. Flag names use
// dashes where keys use underscores (--log-level sets log_level).
func Load(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(makeMapProvider(defaultMap()), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	path := DefaultFile
	if f != nil {
		if p, err := f.GetString("config"); err == nil && p != "" {
			path = p
		}
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), koanftoml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	// 3. Environment variables
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		provider := posflag.ProviderWithFlag(f, ".", k, func(fl *pflag.Flag) (string, interface{}) {
			return strings.ReplaceAll(fl.Name, "-", "_"), posflag.FlagVal(f, fl)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// EditorOptions converts the settings the editor engine cares about.
func (c *Config) EditorOptions() editor.Options {
	opts := editor.DefaultOptions()
	opts.DragThreshold = c.DragThreshold
	opts.EdgeHitTolerance = c.EdgeHitTolerance
	opts.ViewMargin = c.ViewMargin
	opts.WheelZoomRate = c.WheelZoomRate
	opts.HistoryLimit = c.HistoryLimit
	opts.FontSize = c.FontSize
	if c.CellWidth > 0 && c.CellHeight > 0 {
		// An 80x24 terminal until the real size is known
		opts.ViewSize = r2.Vec{X: 80 * c.CellWidth, Y: 24 * c.CellHeight}
	}
	return opts
}

// WriteDefaults writes the default configuration to path. An existing file
// is never overwritten.
func WriteDefaults(path string) error {
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%s already exists", path)
		}
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer out.Close()

	if err := toml.NewEncoder(out).Encode(Default()); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
