// Package sublayer models the UI facing state of one child of a composite
// dynamic map layer. A Placeholder stands in for the child until the remote
// layer definition loads; a Dynamic facade replaces it afterwards.
package sublayer

import (
	"context"
	"encoding/json"

	"github.com/go-spatial/geom"

	"github.com/atlasdatatech/sublayer/registry"
	"github.com/atlasdatatech/sublayer/symbology"
)

// LayerType is the client side kind of a sublayer.
type LayerType int

const (
	LayerTypeUnknown LayerType = iota
	LayerTypeFeature
	LayerTypeRaster
	LayerTypeGroup
)

func (lt LayerType) String() string {
	switch lt {
	case LayerTypeFeature:
		return "feature"
	case LayerTypeRaster:
		return "raster"
	case LayerTypeGroup:
		return "group"
	default:
		return "unknown"
	}
}

func (lt LayerType) MarshalText() ([]byte, error) { return []byte(lt.String()), nil }

// GeometryType is the geometry kind of a feature sublayer.
type GeometryType int

const (
	GeometryTypeUnknown GeometryType = iota
	GeometryTypePoint
	GeometryTypeLineString
	GeometryTypePolygon
	GeometryTypeMultiPoint
	GeometryTypeMultiLineString
	GeometryTypeMultiPolygon
)

func (gt GeometryType) String() string {
	switch gt {
	case GeometryTypePoint:
		return "point"
	case GeometryTypeLineString:
		return "linestring"
	case GeometryTypePolygon:
		return "polygon"
	case GeometryTypeMultiPoint:
		return "multipoint"
	case GeometryTypeMultiLineString:
		return "multilinestring"
	case GeometryTypeMultiPolygon:
		return "multipolygon"
	default:
		return "unknown"
	}
}

func (gt GeometryType) MarshalText() ([]byte, error) { return []byte(gt.String()), nil }

// GeometryTypeOf maps a geometry value, as reported by a provider, to a
// GeometryType.
func GeometryTypeOf(g geom.Geometry) GeometryType {
	switch g.(type) {
	case geom.Point, *geom.Point:
		return GeometryTypePoint
	case geom.LineString, *geom.LineString, geom.Line, *geom.Line:
		return GeometryTypeLineString
	case geom.Polygon, *geom.Polygon:
		return GeometryTypePolygon
	case geom.MultiPoint, *geom.MultiPoint:
		return GeometryTypeMultiPoint
	case geom.MultiLineString, *geom.MultiLineString:
		return GeometryTypeMultiLineString
	case geom.MultiPolygon, *geom.MultiPolygon:
		return GeometryTypeMultiPolygon
	default:
		return GeometryTypeUnknown
	}
}

// Optional is a value that is either unresolved or known.
type Optional[T any] struct {
	v  T
	ok bool
}

// Known returns a resolved Optional holding v.
func Known[T any](v T) Optional[T] { return Optional[T]{v: v, ok: true} }

func (o Optional[T]) Get() (T, bool) { return o.v, o.ok }
func (o Optional[T]) IsKnown() bool  { return o.ok }

// MarshalJSON encodes an unresolved value as null.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	return json.Marshal(o.v)
}

// Config is the per sublayer configuration consumed when a facade is built.
type Config struct {
	Name    string
	Visible bool
	// Opacity in [0,1]
	Opacity float64
}

// LayerData is the metadata of a sublayer once its definition has loaded.
type LayerData struct {
	Name         string
	MinScale     float64
	MaxScale     float64
	LayerType    LayerType
	GeometryType GeometryType
	FeatureCount int
}

// ScaleSet is the scale range a sublayer is drawn at.
type ScaleSet struct {
	MinScale float64 `json:"minScale"`
	MaxScale float64 `json:"maxScale"`
}

// DrawingOptions is a per sublayer drawing override applied by the parent.
type DrawingOptions struct {
	// Transparency in [0,100], 100 being fully transparent
	Transparency float64
}

// Parent is the composite layer a facade belongs to.
type Parent interface {
	VisibleLayers() *registry.VisibleSet
	// SupportsDynamicLayers reports whether per sublayer drawing
	// options can be applied.
	SupportsDynamicLayers() bool
	SetLayerDrawingOptions(idx int, opts DrawingOptions)
}

// Loader fetches sublayer metadata and symbology. Implementations are
// expected to memoize LayerData.
type Loader interface {
	LayerData(ctx context.Context, idx int) (LayerData, error)
	Symbology(ctx context.Context, idx int) ([]symbology.Entry, error)
}

// Facade is what the UI sees for a sublayer, before and after it resolves.
type Facade interface {
	Name() string
	LayerType() Optional[LayerType]
	SetLayerType(LayerType)
	Visible() bool
	Symbology() *symbology.Stack
	Resolved() bool
}
