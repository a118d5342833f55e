// Package config loads the settings of the ewsxml tool from a TOML file and
// the environment.
//
// A file holds any subset of the keys below; missing keys keep their defaults:
//
//	version = "Exchange2013"
//	log_level = "debug"
//	shape = "IdOnly"
//	properties = ["Subject", "Size"]
//	summary_only = false
//	color = "auto"
//
// EWSCORE_VERSION and EWSCORE_LOG_LEVEL override the file.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/smnsjas/go-ewscore/propdef"
	"github.com/smnsjas/go-ewscore/propset"
)

// Environment variables read by ApplyEnv.
const (
	EnvVersion  = "EWSCORE_VERSION"
	EnvLogLevel = "EWSCORE_LOG_LEVEL"
)

// ErrInvalid is returned for settings that cannot be used.
var ErrInvalid = errors.New("config: invalid setting")

// ColorMode selects colored output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// Enabled reports whether output to a terminal-or-not sink should be colored.
func (m ColorMode) Enabled(terminal bool) bool {
	switch m {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	return terminal
}

// Config holds the tool settings.
type Config struct {
	Version     propdef.Version
	LogLevel    slog.Level
	Shape       propset.BaseShape
	Properties  []string // local names of extra properties to request
	SummaryOnly bool
	Color       ColorMode
}

type fileConfig struct {
	Version     string   `toml:"version"`
	LogLevel    string   `toml:"log_level"`
	Shape       string   `toml:"shape"`
	Properties  []string `toml:"properties"`
	SummaryOnly bool     `toml:"summary_only"`
	Color       string   `toml:"color"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Version:  propdef.Latest,
		LogLevel: slog.LevelWarn,
		Shape:    propset.BaseFirstClass,
		Color:    ColorAuto,
	}
}

// Load reads the file at path over the defaults and applies the environment.
// An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("load config: %w", err)
		}
		defer f.Close()
		if cfg, err = Decode(f); err != nil {
			return Config{}, fmt.Errorf("load config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Decode reads TOML settings over the defaults. Unknown keys are an error.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.NewDecoder(r).Decode(&raw)
	if err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%w: unknown key %q", ErrInvalid, undecoded[0].String())
	}

	if meta.IsDefined("version") {
		if cfg.Version, err = propdef.ParseVersion(strings.TrimSpace(raw.Version)); err != nil {
			return Config{}, fmt.Errorf("parse version: %w", err)
		}
	}
	if meta.IsDefined("log_level") {
		if cfg.LogLevel, err = parseLevel(raw.LogLevel); err != nil {
			return Config{}, err
		}
	}
	if meta.IsDefined("shape") {
		shape, ok := propset.ParseBaseShape(strings.TrimSpace(raw.Shape))
		if !ok {
			return Config{}, fmt.Errorf("%w: shape %q", ErrInvalid, raw.Shape)
		}
		cfg.Shape = shape
	}
	if meta.IsDefined("properties") {
		cfg.Properties = normalizeNames(raw.Properties)
	}
	if meta.IsDefined("summary_only") {
		cfg.SummaryOnly = raw.SummaryOnly
	}
	if meta.IsDefined("color") {
		cfg.Color = ColorMode(strings.ToLower(strings.TrimSpace(raw.Color)))
	}
	return cfg, nil
}

// ApplyEnv applies environment overrides read through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if s, ok := lookup(EnvVersion); ok && s != "" {
		v, err := propdef.ParseVersion(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvVersion, err)
		}
		c.Version = v
	}
	if s, ok := lookup(EnvLogLevel); ok && s != "" {
		l, err := parseLevel(s)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvLogLevel, err)
		}
		c.LogLevel = l
	}
	return nil
}

// Validate checks settings that decoding cannot.
func (c Config) Validate() error {
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%w: color %q", ErrInvalid, c.Color)
	}
	if c.Version < propdef.Exchange2007SP1 || c.Version > propdef.Latest {
		return fmt.Errorf("%w: version %d", ErrInvalid, int(c.Version))
	}
	return nil
}

// PropertySet builds the requested property set for entities of s.
func (c Config) PropertySet(s *propdef.Schema) (*propset.PropertySet, error) {
	set := propset.New(c.Shape)
	for _, name := range c.Properties {
		def, ok := s.LookupLocal(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s has no property %q", ErrInvalid, s.Name, name)
		}
		if err := set.Add(def); err != nil {
			return nil, err
		}
	}
	return set, nil
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("%w: log level %q", ErrInvalid, s)
	}
	return l, nil
}

func normalizeNames(in []string) []string {
	out := make([]string, 0, len(in))
	for _, n := range in {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}
