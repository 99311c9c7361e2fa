package provider

import (
	"github.com/go-spatial/geom"

	"github.com/atlasdatatech/sublayer/sublayer"
)

// LayerInfo is the important information about a sublayer
type LayerInfo interface {
	// ID is the service index of the sublayer, an integer in string form
	ID() string
	// Name is the name of the sublayer as published by the service
	Name() string
	// GeomType is the geometry type of the sublayer. nil for non feature layers
	GeomType() geom.Geometry
	// LayerType is the kind of sublayer
	LayerType() sublayer.LayerType
	// MinScale and MaxScale bound the scales the sublayer is drawn at. 0 is unbounded
	MinScale() float64
	MaxScale() float64
	// FeatureCount is the number of features, or -1 when unknown
	FeatureCount() int
}

// DataFromInfo converts a LayerInfo to the metadata a sublayer facade uses.
func DataFromInfo(info LayerInfo) sublayer.LayerData {
	return sublayer.LayerData{
		Name:         info.Name(),
		MinScale:     info.MinScale(),
		MaxScale:     info.MaxScale(),
		LayerType:    info.LayerType(),
		GeometryType: sublayer.GeometryTypeOf(info.GeomType()),
		FeatureCount: info.FeatureCount(),
	}
}

// FindLayer returns the info with the given id, or nil.
func FindLayer(infos []LayerInfo, id string) LayerInfo {
	for i := range infos {
		if infos[i].ID() == id {
			return infos[i]
		}
	}
	return nil
}
