package sublayer

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/pkg/errors"

	"github.com/atlasdatatech/sublayer/internal/log"
	"github.com/atlasdatatech/sublayer/symbology"
)

// StyleState tracks whether real symbology has been loaded.
type StyleState int

const (
	StyleUnresolved StyleState = iota
	StyleResolved
)

// MetaState tracks whether sublayer metadata has been resolved.
type MetaState int

const (
	MetaUnresolved MetaState = iota
	MetaResolved
)

// Dynamic is the resolved facade of a sublayer of a dynamic layer.
// Visibility is not stored on the facade; it is read from and written to
// the parent's visible set.
type Dynamic struct {
	parent Parent
	loader Loader

	// idx is the service index, an integer in string form
	idx    string
	intIdx int

	mu        sync.RWMutex
	name      string
	layerType Optional[LayerType]
	geomType  Optional[GeometryType]
	fcount    Optional[int]
	opacity   float64
	meta      MetaState
	style     StyleState

	symbology *symbology.Stack
}

var _ Facade = (*Dynamic)(nil)

// NewDynamic builds the resolved facade for sublayer idx. info supplies the
// name when cfg has none. The initial opacity is applied to the parent and
// the visible set is updated to cfg.Visible.
//
// A nil parent or an idx that is not a non-negative integer is a wiring
// error and panics.
func NewDynamic(parent Parent, idx string, info LayerData, cfg Config, loader Loader, gen symbology.Generator) *Dynamic {
	if parent == nil {
		panic("sublayer: nil parent")
	}
	intIdx, err := strconv.Atoi(idx)
	if err != nil || intIdx < 0 {
		panic(fmt.Sprintf("sublayer: invalid index %q", idx))
	}

	d := &Dynamic{
		parent: parent,
		loader: loader,
		idx:    idx,
		intIdx: intIdx,
		name:   cfg.Name,
	}
	if d.name == "" {
		d.name = info.Name
	}

	label := d.name
	if label == "" {
		label = "?"
	}
	d.symbology = symbology.NewStack(gen.Placeholder(label, symbology.DefaultColor))

	d.UpdateOpacity(cfg.Opacity)
	d.SetVisibility(cfg.Visible)

	return d
}

func (d *Dynamic) Index() string  { return d.idx }
func (d *Dynamic) IntIndex() int  { return d.intIdx }
func (d *Dynamic) Resolved() bool { return true }

func (d *Dynamic) Name() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.name
}

// Symbology returns the stack. The same *Stack is returned for the life of
// the facade.
func (d *Dynamic) Symbology() *symbology.Stack { return d.symbology }

func (d *Dynamic) Opacity() float64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.opacity
}

// SetOpacity stores v, clamped to [0,1], and returns the drawing override
// the parent should apply. It has no effect on the parent by itself.
func (d *Dynamic) SetOpacity(v float64) OpacityChange {
	v = clampOpacity(v)

	d.mu.Lock()
	d.opacity = v
	d.mu.Unlock()

	if !d.parent.SupportsDynamicLayers() {
		return OpacityChange{Index: d.intIdx}
	}
	return OpacityChange{
		Index:        d.intIdx,
		Transparency: Transparency(v),
		Applied:      true,
	}
}

// UpdateOpacity sets the opacity and applies the result to the parent.
func (d *Dynamic) UpdateOpacity(v float64) OpacityChange {
	c := d.SetOpacity(v)
	c.Apply(d.parent)
	return c
}

// SetVisibility adds or removes the sublayer from the parent's visible set.
func (d *Dynamic) SetVisibility(visible bool) {
	vs := d.parent.VisibleLayers()
	if visible {
		if vs.Add(d.intIdx) {
			log.Debugf("sublayer %v: now visible", d.idx)
		}
		return
	}
	if vs.Remove(d.intIdx) {
		log.Debugf("sublayer %v: now hidden", d.idx)
	}
}

// Visible reports whether the sublayer is in the parent's visible set.
func (d *Dynamic) Visible() bool {
	return d.parent.VisibleLayers().Contains(d.intIdx)
}

func (d *Dynamic) LayerType() Optional[LayerType] {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.layerType
}

func (d *Dynamic) SetLayerType(lt LayerType) {
	d.mu.Lock()
	d.layerType = Known(lt)
	d.meta = MetaResolved
	d.mu.Unlock()
}

func (d *Dynamic) GeometryType() Optional[GeometryType] {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.geomType
}

func (d *Dynamic) SetGeometryType(gt GeometryType) {
	d.mu.Lock()
	d.geomType = Known(gt)
	d.mu.Unlock()
}

func (d *Dynamic) FeatureCount() Optional[int] {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.fcount
}

func (d *Dynamic) SetFeatureCount(n int) {
	d.mu.Lock()
	d.fcount = Known(n)
	d.mu.Unlock()
}

func (d *Dynamic) MetaState() MetaState {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.meta
}

func (d *Dynamic) StyleState() StyleState {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.style
}

// ScaleSet waits for the sublayer's metadata and returns its scale range.
// Nothing is cached here; every call goes back to the loader. The fetched
// metadata also fills in the feature count, and the geometry and layer
// types when the layer definition left them unresolved.
func (d *Dynamic) ScaleSet(ctx context.Context) (ScaleSet, error) {
	data, err := d.loader.LayerData(ctx, d.intIdx)
	if err != nil {
		return ScaleSet{}, errors.Wrapf(err, "loading scale set of sublayer %v", d.idx)
	}

	d.mu.Lock()
	if data.FeatureCount >= 0 {
		d.fcount = Known(data.FeatureCount)
	}
	if !d.geomType.IsKnown() && data.GeometryType != GeometryTypeUnknown {
		d.geomType = Known(data.GeometryType)
	}
	if !d.layerType.IsKnown() && data.LayerType != LayerTypeUnknown {
		d.layerType = Known(data.LayerType)
	}
	d.meta = MetaResolved
	d.mu.Unlock()

	return ScaleSet{
		MinScale: data.MinScale,
		MaxScale: data.MaxScale,
	}, nil
}

// LoadSymbology fetches the sublayer's symbology and replaces the stack
// contents with it. On failure the stack is left as it was. Overlapping
// calls are not ordered; the last one to finish wins.
func (d *Dynamic) LoadSymbology(ctx context.Context) error {
	entries, err := d.loader.Symbology(ctx, d.intIdx)
	if err != nil {
		return errors.Wrapf(err, "loading symbology of sublayer %v", d.idx)
	}

	d.symbology.Replace(entries)

	d.mu.Lock()
	d.style = StyleResolved
	d.mu.Unlock()

	log.Debugf("sublayer %v: loaded %d symbology entries", d.idx, len(entries))
	return nil
}
