package gpkg

import (
	"github.com/go-spatial/geom"

	"github.com/atlasdatatech/sublayer/sublayer"
)

type Layer struct {
	id        string
	tablename string
	geomType  geom.Geometry
	minScale  float64
	maxScale  float64
	fcount    int
}

func (l Layer) ID() string                    { return l.id }
func (l Layer) Name() string                  { return l.tablename }
func (l Layer) GeomType() geom.Geometry       { return l.geomType }
func (l Layer) LayerType() sublayer.LayerType { return sublayer.LayerTypeFeature }
func (l Layer) MinScale() float64             { return l.minScale }
func (l Layer) MaxScale() float64             { return l.maxScale }
func (l Layer) FeatureCount() int             { return l.fcount }
