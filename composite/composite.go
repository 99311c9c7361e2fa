// Package composite implements the parent side of a dynamic map layer: it
// owns the visible set and the per sublayer drawing options, and swaps each
// sublayer's placeholder for a resolved facade once the layer definition
// has loaded.
package composite

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pborman/uuid"
	"github.com/pkg/errors"

	"github.com/atlasdatatech/sublayer/internal/log"
	"github.com/atlasdatatech/sublayer/provider"
	"github.com/atlasdatatech/sublayer/registry"
	"github.com/atlasdatatech/sublayer/sublayer"
	"github.com/atlasdatatech/sublayer/symbology"
)

// Declared is a sublayer as declared in the layer's configuration.
type Declared struct {
	// Index is the service index, an integer in string form
	Index  string
	Config sublayer.Config
}

// ErrSublayerNotFound is returned by Load when the service does not publish
// a declared sublayer.
type ErrSublayerNotFound struct {
	Layer string
	Index string
}

func (e ErrSublayerNotFound) Error() string {
	return fmt.Sprintf("layer %v: service does not publish sublayer %v", e.Layer, e.Index)
}

// ErrNotResolved is returned for operations that need a resolved sublayer
// while it is still a placeholder.
type ErrNotResolved struct {
	Layer string
	Index string
}

func (e ErrNotResolved) Error() string {
	return fmt.Sprintf("layer %v: sublayer %v has not loaded yet", e.Layer, e.Index)
}

// ErrUnknownSublayer is returned when an index was never declared.
type ErrUnknownSublayer struct {
	Layer string
	Index string
}

func (e ErrUnknownSublayer) Error() string {
	return fmt.Sprintf("layer %v: no sublayer %v", e.Layer, e.Index)
}

// Slot is the stable handle of one sublayer. It always holds a facade.
type Slot struct {
	idx  string
	decl sublayer.Config

	mu     sync.RWMutex
	facade sublayer.Facade
}

func (s *Slot) Index() string { return s.idx }

// Facade returns the current facade: a placeholder before the layer loads,
// a *sublayer.Dynamic afterwards.
func (s *Slot) Facade() sublayer.Facade {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.facade
}

// Dynamic returns the resolved facade, if the sublayer has resolved.
func (s *Slot) Dynamic() (*sublayer.Dynamic, bool) {
	d, ok := s.Facade().(*sublayer.Dynamic)
	return d, ok
}

func (s *Slot) swap(f sublayer.Facade) {
	s.mu.Lock()
	s.facade = f
	s.mu.Unlock()
}

const (
	// DefaultFetchTimeout bounds a single sublayer metadata fetch.
	DefaultFetchTimeout = 30 * time.Second
	// DefaultSymbologyTimeout bounds each symbology load started by Load.
	DefaultSymbologyTimeout = 30 * time.Second
)

// Option configures a Layer.
type Option func(*Layer)

// WithGenerator sets the placeholder symbology generator.
func WithGenerator(gen symbology.Generator) Option {
	return func(l *Layer) { l.gen = gen }
}

// WithFetchTimeout bounds each sublayer metadata fetch. A fetch that times
// out fails and is retried by the next caller.
func WithFetchTimeout(d time.Duration) Option {
	return func(l *Layer) { l.loader.timeout = d }
}

// WithSymbologyTimeout bounds each symbology load started by Load.
func WithSymbologyTimeout(d time.Duration) Option {
	return func(l *Layer) { l.symTimeout = d }
}

// Layer is a composite dynamic layer.
type Layer struct {
	// ID identifies the layer in configuration and URLs
	ID string
	// Name is shown to users
	Name string
	// UUID is unique per Layer instance
	UUID string

	src     provider.Provider
	loader  *memoLoader
	gen     symbology.Generator
	visible *registry.VisibleSet

	// loadMu serializes Load
	loadMu sync.Mutex

	symTimeout time.Duration
	// symWG tracks the symbology loads started by Load
	symWG sync.WaitGroup

	mu      sync.RWMutex
	drawing map[int]sublayer.DrawingOptions
	loaded  bool

	slots []*Slot
	byIdx map[string]*Slot
}

var _ sublayer.Parent = (*Layer)(nil)

// New creates the layer and one placeholder per declared sublayer. Declaring
// an index twice is a configuration error and panics; config validation
// rejects it first.
func New(id, name string, decls []Declared, src provider.Provider, opts ...Option) *Layer {
	l := &Layer{
		ID:      id,
		Name:    name,
		UUID:    uuid.New(),
		src:     src,
		loader:     newMemoLoader(src, DefaultFetchTimeout),
		gen:        symbology.SVGGenerator{},
		visible:    registry.NewVisibleSet(),
		symTimeout: DefaultSymbologyTimeout,
		drawing:    make(map[int]sublayer.DrawingOptions),
		byIdx:      make(map[string]*Slot, len(decls)),
	}
	for _, opt := range opts {
		opt(l)
	}

	for _, d := range decls {
		if _, ok := l.byIdx[d.Index]; ok {
			panic(fmt.Sprintf("composite: layer %v declares sublayer %v twice", id, d.Index))
		}
		s := &Slot{
			idx:    d.Index,
			decl:   d.Config,
			facade: sublayer.NewPlaceholder(l, d.Config.Name, l.gen),
		}
		l.slots = append(l.slots, s)
		l.byIdx[d.Index] = s
	}

	return l
}

func (l *Layer) VisibleLayers() *registry.VisibleSet { return l.visible }

func (l *Layer) SupportsDynamicLayers() bool { return l.src.SupportsDynamicLayers() }

func (l *Layer) SetLayerDrawingOptions(idx int, opts sublayer.DrawingOptions) {
	l.mu.Lock()
	l.drawing[idx] = opts
	l.mu.Unlock()

	log.Debugf("layer %v: sublayer %v transparency %v", l.ID, idx, opts.Transparency)
}

// DrawingOptions returns the override applied to sublayer idx.
func (l *Layer) DrawingOptions(idx int) (sublayer.DrawingOptions, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	opts, ok := l.drawing[idx]
	return opts, ok
}

// VisibleIDs returns the visible sublayer ids in ascending order.
func (l *Layer) VisibleIDs() []int {
	ids := l.visible.IDs()
	sort.Ints(ids)
	return ids
}

func (l *Layer) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loaded
}

// Sublayers returns the slots in declaration order.
func (l *Layer) Sublayers() []*Slot {
	slots := make([]*Slot, len(l.slots))
	copy(slots, l.slots)
	return slots
}

func (l *Layer) Sublayer(idx string) (*Slot, bool) {
	s, ok := l.byIdx[idx]
	return s, ok
}

// Load fetches the layer definition and replaces every placeholder with a
// resolved facade built from the declared config. Symbology loads are then
// started for each sublayer in the background, bounded by the symbology
// timeout rather than ctx; failures are logged and leave the initial entry
// in place. Load does not wait for them, see WaitSymbology.
//
// If the definition cannot be fetched, or a declared sublayer is missing
// from it, the placeholders are kept and an error is returned. Calling Load
// on a loaded layer does nothing.
func (l *Layer) Load(ctx context.Context) error {
	l.loadMu.Lock()
	defer l.loadMu.Unlock()

	if l.Loaded() {
		return nil
	}

	infos, err := l.src.Layers(ctx)
	if err != nil {
		return errors.Wrapf(err, "loading definition of layer %v", l.ID)
	}

	matched := make([]provider.LayerInfo, len(l.slots))
	for i, s := range l.slots {
		info := provider.FindLayer(infos, s.idx)
		if info == nil {
			return ErrSublayerNotFound{Layer: l.ID, Index: s.idx}
		}
		matched[i] = info
	}

	resolved := make([]*sublayer.Dynamic, len(l.slots))
	for i, s := range l.slots {
		info := matched[i]
		d := sublayer.NewDynamic(l, s.idx, provider.DataFromInfo(info), s.decl, l.loader, l.gen)
		d.SetLayerType(info.LayerType())
		d.SetGeometryType(sublayer.GeometryTypeOf(info.GeomType()))
		if n := info.FeatureCount(); n >= 0 {
			d.SetFeatureCount(n)
		}
		s.swap(d)
		resolved[i] = d
	}

	l.mu.Lock()
	l.loaded = true
	l.mu.Unlock()
	log.Infof("layer %v: resolved %d sublayers", l.ID, len(resolved))

	for _, d := range resolved {
		l.symWG.Add(1)
		go func(d *sublayer.Dynamic) {
			defer l.symWG.Done()
			ctx, cancel := context.WithTimeout(context.Background(), l.symTimeout)
			defer cancel()
			if err := d.LoadSymbology(ctx); err != nil {
				log.Warnf("layer %v: %v", l.ID, err)
			}
		}(d)
	}

	return nil
}

// WaitSymbology blocks until the symbology loads started by Load have
// finished, successfully or not.
func (l *Layer) WaitSymbology() {
	l.symWG.Wait()
}

func (l *Layer) dynamic(idx string) (*sublayer.Dynamic, error) {
	s, ok := l.Sublayer(idx)
	if !ok {
		return nil, ErrUnknownSublayer{Layer: l.ID, Index: idx}
	}
	d, ok := s.Dynamic()
	if !ok {
		return nil, ErrNotResolved{Layer: l.ID, Index: idx}
	}
	return d, nil
}

// SetVisibility shows or hides sublayer idx.
func (l *Layer) SetVisibility(idx string, visible bool) error {
	d, err := l.dynamic(idx)
	if err != nil {
		return err
	}
	d.SetVisibility(visible)
	return nil
}

// SetOpacity sets the opacity of sublayer idx and applies the resulting
// drawing override.
func (l *Layer) SetOpacity(idx string, opacity float64) (sublayer.OpacityChange, error) {
	d, err := l.dynamic(idx)
	if err != nil {
		return sublayer.OpacityChange{}, err
	}
	return d.UpdateOpacity(opacity), nil
}

// ScaleSet returns the scale range of sublayer idx.
func (l *Layer) ScaleSet(ctx context.Context, idx string) (sublayer.ScaleSet, error) {
	d, err := l.dynamic(idx)
	if err != nil {
		return sublayer.ScaleSet{}, err
	}
	return d.ScaleSet(ctx)
}
