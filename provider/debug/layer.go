package debug

import (
	"github.com/go-spatial/geom"

	"github.com/atlasdatatech/sublayer/sublayer"
)

type Layer struct {
	id        string
	name      string
	geomType  geom.Geometry
	layerType sublayer.LayerType
	fcount    int
}

func (l Layer) ID() string                    { return l.id }
func (l Layer) Name() string                  { return l.name }
func (l Layer) GeomType() geom.Geometry       { return l.geomType }
func (l Layer) LayerType() sublayer.LayerType { return l.layerType }
func (l Layer) MinScale() float64             { return 0 }
func (l Layer) MaxScale() float64             { return 0 }
func (l Layer) FeatureCount() int             { return l.fcount }
