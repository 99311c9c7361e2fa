// Package app wires a config file into loaded composite layers. It is shared
// by the command line and lambda entry points.
package app

import (
	"context"
	"time"

	"github.com/atlasdatatech/sublayer/cmd/internal/register"
	"github.com/atlasdatatech/sublayer/composite"
	"github.com/atlasdatatech/sublayer/config"
	"github.com/atlasdatatech/sublayer/internal/log"

	// register provider drivers
	_ "github.com/atlasdatatech/sublayer/provider/debug"
	_ "github.com/atlasdatatech/sublayer/provider/gpkg"
)

// DefaultLoadTimeout bounds how long Setup waits for layer definitions.
const DefaultLoadTimeout = 30 * time.Second

// Setup registers the providers and layers in conf and loads every layer.
// A layer that fails to load keeps its placeholders; the failure is logged
// and the remaining layers are still loaded.
func Setup(ctx context.Context, conf config.Config) ([]*composite.Layer, error) {
	if conf.LogLevel != "" {
		lvl, err := log.ParseLevel(conf.LogLevel)
		if err != nil {
			return nil, err
		}
		log.SetLogLevel(lvl)
	}

	providers, err := register.Providers(conf.Providers)
	if err != nil {
		return nil, err
	}
	layers, err := register.Layers(conf.Layers, providers)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultLoadTimeout)
	defer cancel()

	for _, l := range layers {
		if err := l.Load(ctx); err != nil {
			log.Errorf("layer %v stays unresolved: %v", l.ID, err)
		}
	}
	return layers, nil
}
