// Package config loads the TOML configuration that declares providers and
// composite layers with their sublayers.
package config

import (
	"io"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/atlasdatatech/sublayer/dict"
	"github.com/atlasdatatech/sublayer/internal/log"
	"github.com/atlasdatatech/sublayer/provider"
	"github.com/atlasdatatech/sublayer/sublayer"
)

const DefaultPort = ":8080"

// Config represents a config file.
type Config struct {
	// LogLevel is one of trace, debug, info, warn, error
	LogLevel  string      `toml:"log_level"`
	Webserver Webserver   `toml:"webserver"`
	Providers []dict.Dict `toml:"providers"`
	Layers    []Layer     `toml:"layers"`
}

type Webserver struct {
	Hostname string `toml:"hostname"`
	Port     string `toml:"port"`
}

// Layer declares a composite layer.
type Layer struct {
	ID       string `toml:"id"`
	Name     string `toml:"name"`
	Provider string `toml:"provider"`
	// Sublayers are the declared children, in display order
	Sublayers []Sublayer `toml:"sublayers"`
}

// Sublayer declares one child of a composite layer. Index is the service
// index in string form, e.g. "3".
type Sublayer struct {
	Index   string   `toml:"index"`
	Name    string   `toml:"name"`
	Visible *bool    `toml:"visible"`
	Opacity *float64 `toml:"opacity"`
}

// Config returns the sublayer config with defaults applied: visible and
// fully opaque.
func (s Sublayer) Config() sublayer.Config {
	cfg := sublayer.Config{
		Name:    s.Name,
		Visible: true,
		Opacity: 1,
	}
	if s.Visible != nil {
		cfg.Visible = *s.Visible
	}
	if s.Opacity != nil {
		cfg.Opacity = *s.Opacity
	}
	return cfg
}

// Validate checks the config for problems the program cannot run with.
func (c *Config) Validate() error {
	providers := map[string]bool{}
	for i, p := range c.Providers {
		name, err := p.String(provider.ConfigKeyName, nil)
		if err != nil {
			return errors.Wrapf(err, "provider %d", i)
		}
		if providers[name] {
			return ErrProviderNameDuplicate{Name: name}
		}
		providers[name] = true
	}

	layers := map[string]bool{}
	for _, l := range c.Layers {
		if l.ID == "" {
			return ErrLayerIDRequired{Name: l.Name}
		}
		if layers[l.ID] {
			return ErrLayerIDDuplicate{ID: l.ID}
		}
		layers[l.ID] = true

		if !providers[l.Provider] {
			return ErrUnknownProviderReference{Layer: l.ID, Provider: l.Provider}
		}

		indices := map[string]bool{}
		for _, s := range l.Sublayers {
			// "01", "+1" and " 1" all parse to 1 but never match a service index
			if n, err := strconv.Atoi(s.Index); err != nil || n < 0 || strconv.Itoa(n) != s.Index {
				return ErrInvalidSublayerIndex{Layer: l.ID, Index: s.Index}
			}
			if indices[s.Index] {
				return ErrSublayerIndexDuplicate{Layer: l.ID, Index: s.Index}
			}
			indices[s.Index] = true

			if s.Opacity != nil && (*s.Opacity < 0 || *s.Opacity > 1) {
				return ErrOpacityOutOfRange{Layer: l.ID, Index: s.Index, Opacity: *s.Opacity}
			}
		}
	}
	return nil
}

// Load reads a TOML config from reader. Defaults are filled in but the
// config is not validated.
func Load(reader io.Reader) (conf Config, err error) {
	if _, err := toml.DecodeReader(reader, &conf); err != nil {
		return conf, errors.Wrap(err, "decoding config")
	}
	if conf.Webserver.Port == "" {
		conf.Webserver.Port = DefaultPort
	}
	return conf, nil
}

// LoadAndValidate loads and validates a config.
func LoadAndValidate(reader io.Reader) (conf Config, err error) {
	conf, err = Load(reader)
	if err != nil {
		return conf, err
	}
	return conf, conf.Validate()
}

// Parse opens and loads the config file at location.
func Parse(location string) (conf Config, err error) {
	log.Infof("loading config file: %v", location)

	f, err := os.Open(location)
	if err != nil {
		return conf, err
	}
	defer f.Close()

	return LoadAndValidate(f)
}
