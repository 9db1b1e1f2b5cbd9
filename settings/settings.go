// SPDX-FileCopyrightText: 2019 Kent Gibson <warthog618@gmail.com>
//
// SPDX-License-Identifier: MIT

// Package settings loads the layered configuration used by the iotkit
// commands.
//
// Settings are drawn, in decreasing order of precedence, from command line
// flags, the environment, a YAML config file, and defaults.  Keys are dotted
// paths, e.g. "pins.button", which map to nested sections in the config file
// and to IOTKIT_PINS_BUTTON in the environment.
package settings

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/warthog618/config"
	"github.com/warthog618/config/blob"
	"github.com/warthog618/config/dict"
	"github.com/warthog618/config/env"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment variables mapped to settings.
const EnvPrefix = "IOTKIT_"

// Defaults are the settings used when no other source provides them.
var Defaults = map[string]interface{}{
	"log.level":          "info",
	"log.format":         "text",
	"simulate":           false,
	"i2c.bus":            "",
	"gpiochip":           "gpiochip0",
	"telemetry.udp":      "localhost:41234",
	"telemetry.http":     "",
	"telemetry.record":   "",
	"telemetry.device":   "myFirstDevice",
	"telemetry.discover": false,
	"spi.sclk":           11,
	"spi.ssz":            8,
	"spi.mosi":           10,
	"spi.miso":           9,
	"spi.tclk":           "2500ns",
	"gps.port":           "/dev/ttyS1",
	"gps.baud":           9600,
	"gps.declination":    0.0,
}

// Options control the sources used by Load.
type Options struct {
	// Flags provides values for changed flags, mapped to keys by FlagKeys.
	Flags *pflag.FlagSet
	// FlagKeys maps flag names to setting keys.  Flags not in the map use
	// their name as the key.
	FlagKeys map[string]string
	// File is the path of an optional YAML config file, overridden by the
	// config.file setting.
	File string
	// Defaults are overlaid over the package Defaults.
	Defaults map[string]interface{}
	// Overrides are dotted key values that take precedence over flags.
	Overrides map[string]interface{}
}

// Load builds the configuration from the sources in opts.
func Load(opts Options) (*config.Config, error) {
	defs := make(map[string]interface{}, len(Defaults)+len(opts.Defaults))
	for k, v := range Defaults {
		defs[k] = v
	}
	for k, v := range opts.Defaults {
		defs[k] = v
	}
	flags := FlagValues(opts.Flags, opts.FlagKeys)
	for k, v := range opts.Overrides {
		SetPath(flags, k, v)
	}
	cfg := config.New(
		dict.New(dict.WithMap(flags)),
		env.New(env.WithEnvPrefix(EnvPrefix)),
		config.WithDefault(dict.New(dict.WithMap(Nest(defs)))))
	path := opts.File
	if v, err := cfg.Get("config.file"); err == nil {
		path = v.String()
	}
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	d := &yamlDecoder{}
	cfg.Append(blob.NewConfigFile(cfg, "config.file", path, d))
	// load now so decoding errors are reported by Load
	cfg.Get(fileOnlyKey)
	if d.err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", path, d.err)
	}
	return cfg, nil
}

// fileOnlyKey is a key only the config file could provide.
const fileOnlyKey = "config.loaded"

// yamlDecoder decodes YAML config files, retaining the first error.
type yamlDecoder struct {
	err error
}

func (d *yamlDecoder) Decode(b []byte, v interface{}) error {
	err := yaml.Unmarshal(b, v)
	if err != nil && d.err == nil {
		d.err = err
	}
	return err
}

// FlagValues returns the values of the changed flags as a tree of settings.
func FlagValues(fs *pflag.FlagSet, keys map[string]string) map[string]interface{} {
	flat := map[string]interface{}{}
	if fs == nil {
		return flat
	}
	fs.Visit(func(f *pflag.Flag) {
		key, ok := keys[f.Name]
		if !ok {
			key = f.Name
		}
		flat[key] = f.Value.String()
	})
	return Nest(flat)
}

// Nest converts a map with dotted keys into a tree of nested maps.
func Nest(flat map[string]interface{}) map[string]interface{} {
	m := map[string]interface{}{}
	for k, v := range flat {
		SetPath(m, k, v)
	}
	return m
}

// SetPath sets the value at the dotted key path in the tree m, creating
// intermediate sections as required.
func SetPath(m map[string]interface{}, key string, v interface{}) {
	path := strings.Split(key, ".")
	for _, p := range path[:len(path)-1] {
		sub, ok := m[p].(map[string]interface{})
		if !ok {
			sub = map[string]interface{}{}
			m[p] = sub
		}
		m = sub
	}
	m[path[len(path)-1]] = v
}

// NewLogger creates the logger described by the log.level and log.format
// settings.
func NewLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	lv, err := cfg.Get("log.level")
	if err != nil {
		return nil, err
	}
	if err := level.UnmarshalText([]byte(lv.String())); err != nil {
		return nil, err
	}
	fv, err := cfg.Get("log.format")
	if err != nil {
		return nil, err
	}
	hopts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(fv.String()) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, hopts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, hopts)), nil
	default:
		return nil, fmt.Errorf("unknown log format '%s'", fv.String())
	}
}
