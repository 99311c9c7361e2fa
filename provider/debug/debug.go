// The debug provider publishes a fixed pair of sublayers: an outline line
// layer and a centre point layer. It is handy for wiring up a composite
// layer without a real service.
package debug

import (
	"context"
	"strconv"

	"github.com/go-spatial/geom"

	"github.com/atlasdatatech/sublayer/dict"
	"github.com/atlasdatatech/sublayer/provider"
	"github.com/atlasdatatech/sublayer/sublayer"
	"github.com/atlasdatatech/sublayer/symbology"
)

const Name = "debug"

const (
	LayerDebugTileOutline = "debug-tile-outline"
	LayerDebugTileCenter  = "debug-tile-center"
)

// config keys
const (
	ConfigKeySupportsDynamicLayers = "supports_dynamic_layers"
)

func init() {
	provider.Register(Name, NewProvider, nil)
}

// NewProvider sets up a debug provider. supports_dynamic_layers is the only
// config param and defaults to true.
func NewProvider(config dict.Dicter) (provider.Provider, error) {
	dynamic := true
	dynamic, err := config.Bool(ConfigKeySupportsDynamicLayers, &dynamic)
	if err != nil {
		return nil, err
	}

	return &Provider{
		dynamic: dynamic,
		gen:     symbology.SVGGenerator{},
	}, nil
}

// Provider provides the debug provider
type Provider struct {
	dynamic bool
	gen     symbology.Generator
}

var layers = []Layer{
	{
		id:        "0",
		name:      LayerDebugTileOutline,
		geomType:  geom.Line{},
		layerType: sublayer.LayerTypeFeature,
		fcount:    1,
	},
	{
		id:        "1",
		name:      LayerDebugTileCenter,
		geomType:  geom.Point{},
		layerType: sublayer.LayerTypeFeature,
		fcount:    1,
	},
}

func (p *Provider) SupportsDynamicLayers() bool { return p.dynamic }

// Layers returns information about the various layers the provider supports
func (p *Provider) Layers(ctx context.Context) ([]provider.LayerInfo, error) {
	ls := make([]provider.LayerInfo, len(layers))
	for i := range layers {
		ls[i] = layers[i]
	}
	return ls, nil
}

func (p *Provider) layer(idx int) (Layer, error) {
	id := strconv.Itoa(idx)
	for i := range layers {
		if layers[i].id == id {
			return layers[i], nil
		}
	}
	return Layer{}, provider.ErrSublayerNotFound{Provider: Name, Index: idx}
}

// LayerData returns the metadata of one of the debug layers
func (p *Provider) LayerData(ctx context.Context, idx int) (sublayer.LayerData, error) {
	l, err := p.layer(idx)
	if err != nil {
		return sublayer.LayerData{}, err
	}
	return provider.DataFromInfo(l), nil
}

// Symbology returns a single entry per debug layer
func (p *Provider) Symbology(ctx context.Context, idx int) ([]symbology.Entry, error) {
	l, err := p.layer(idx)
	if err != nil {
		return nil, err
	}
	return []symbology.Entry{
		p.gen.Placeholder(l.name, symbology.PlaceholderColor(l.name)),
	}, nil
}
