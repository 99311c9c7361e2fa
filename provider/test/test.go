// Package test provides an in memory provider for tests. Failures and
// latency can be injected and calls are counted.
package test

import (
	"context"
	"strconv"
	"sync"

	"github.com/go-spatial/geom"

	"github.com/atlasdatatech/sublayer/dict"
	"github.com/atlasdatatech/sublayer/provider"
	"github.com/atlasdatatech/sublayer/sublayer"
	"github.com/atlasdatatech/sublayer/symbology"
)

const Name = "test"

func init() {
	provider.Register(Name, NewProvider, nil)
}

// NewProvider returns a provider with a single point sublayer "0".
func NewProvider(config dict.Dicter) (provider.Provider, error) {
	return &Provider{
		Dynamic: true,
		Sublayers: []Layer{
			{Index: "0", Title: "test-layer", Geom: geom.Point{}, Type: sublayer.LayerTypeFeature},
		},
	}, nil
}

// Layer is a sublayer published by the test provider.
type Layer struct {
	Index string
	Title string
	Geom  geom.Geometry
	Type  sublayer.LayerType
	Min   float64
	Max   float64
	Count int
	// Symbols returned by Symbology. nil means a single generated entry.
	Symbols []symbology.Entry
}

func (l Layer) ID() string                    { return l.Index }
func (l Layer) Name() string                  { return l.Title }
func (l Layer) GeomType() geom.Geometry       { return l.Geom }
func (l Layer) LayerType() sublayer.LayerType { return l.Type }
func (l Layer) MinScale() float64             { return l.Min }
func (l Layer) MaxScale() float64             { return l.Max }
func (l Layer) FeatureCount() int             { return l.Count }

// Provider is an in memory provider.
type Provider struct {
	Dynamic   bool
	Sublayers []Layer

	// injected failures
	LayersErr    error
	LayerDataErr error
	SymbologyErr error

	// Gate, when set, blocks LayerData and Symbology until it is closed
	Gate chan struct{}

	mu             sync.Mutex
	layersCalls    int
	layerDataCalls int
	symbologyCalls int
}

func (p *Provider) SupportsDynamicLayers() bool { return p.Dynamic }

func (p *Provider) wait(ctx context.Context) error {
	if p.Gate == nil {
		return nil
	}
	select {
	case <-p.Gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Provider) Layers(ctx context.Context) ([]provider.LayerInfo, error) {
	p.mu.Lock()
	p.layersCalls++
	p.mu.Unlock()

	if p.LayersErr != nil {
		return nil, p.LayersErr
	}
	ls := make([]provider.LayerInfo, len(p.Sublayers))
	for i := range p.Sublayers {
		ls[i] = p.Sublayers[i]
	}
	return ls, nil
}

func (p *Provider) layer(idx int) (Layer, error) {
	id := strconv.Itoa(idx)
	for i := range p.Sublayers {
		if p.Sublayers[i].Index == id {
			return p.Sublayers[i], nil
		}
	}
	return Layer{}, provider.ErrSublayerNotFound{Provider: Name, Index: idx}
}

func (p *Provider) LayerData(ctx context.Context, idx int) (sublayer.LayerData, error) {
	p.mu.Lock()
	p.layerDataCalls++
	p.mu.Unlock()

	if err := p.wait(ctx); err != nil {
		return sublayer.LayerData{}, err
	}
	if p.LayerDataErr != nil {
		return sublayer.LayerData{}, p.LayerDataErr
	}
	l, err := p.layer(idx)
	if err != nil {
		return sublayer.LayerData{}, err
	}
	return provider.DataFromInfo(l), nil
}

func (p *Provider) Symbology(ctx context.Context, idx int) ([]symbology.Entry, error) {
	p.mu.Lock()
	p.symbologyCalls++
	p.mu.Unlock()

	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	if p.SymbologyErr != nil {
		return nil, p.SymbologyErr
	}
	l, err := p.layer(idx)
	if err != nil {
		return nil, err
	}
	if l.Symbols != nil {
		return l.Symbols, nil
	}
	return []symbology.Entry{
		symbology.SVGGenerator{}.Placeholder(l.Title, symbology.PlaceholderColor(l.Title)),
	}, nil
}

// Calls returns how often each method was called.
func (p *Provider) Calls() (layers, layerData, sym int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.layersCalls, p.layerDataCalls, p.symbologyCalls
}
