//go:build cgo
// +build cgo

// Package gpkg publishes the feature tables of a GeoPackage as sublayers.
// Sublayer indices follow the table names in ascending order.
package gpkg

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/go-spatial/geom"
	_ "github.com/mattn/go-sqlite3"

	"github.com/atlasdatatech/sublayer/dict"
	"github.com/atlasdatatech/sublayer/internal/log"
	"github.com/atlasdatatech/sublayer/provider"
	"github.com/atlasdatatech/sublayer/sublayer"
	"github.com/atlasdatatech/sublayer/symbology"
)

const Name = "gpkg"

// config keys
const (
	ConfigKeyFilePath              = "filepath"
	ConfigKeyLayers                = "layers"
	ConfigKeyTableName             = "tablename"
	ConfigKeyMinScale              = "min_scale"
	ConfigKeyMaxScale              = "max_scale"
	ConfigKeySupportsDynamicLayers = "supports_dynamic_layers"
)

var (
	openMu    sync.Mutex
	openProvs []*Provider
)

func init() {
	provider.Register(Name, NewProvider, Cleanup)
}

// Cleanup closes every provider opened by NewProvider.
func Cleanup() {
	openMu.Lock()
	defer openMu.Unlock()

	for _, p := range openProvs {
		if err := p.Close(); err != nil {
			log.Errorf("closing gpkg %v: %v", p.Filepath, err)
		}
	}
	openProvs = nil
}

type Provider struct {
	// path to the geopackage file
	Filepath string
	dynamic  bool
	// layers in index order
	layers []Layer
	// reference to the database connection
	db  *sql.DB
	gen symbology.Generator
}

// NewProvider opens the geopackage at filepath and reads its feature tables.
func NewProvider(config dict.Dicter) (provider.Provider, error) {
	filepath, err := config.String(ConfigKeyFilePath, nil)
	if err != nil {
		return nil, err
	}
	if filepath == "" {
		return nil, ErrMissingFilePath
	}

	dynamic := true
	if dynamic, err = config.Bool(ConfigKeySupportsDynamicLayers, &dynamic); err != nil {
		return nil, err
	}

	scales, err := layerScales(config)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", filepath)
	if err != nil {
		return nil, err
	}

	p := &Provider{
		Filepath: filepath,
		dynamic:  dynamic,
		db:       db,
		gen:      symbology.SVGGenerator{},
	}
	if err := p.readLayers(context.Background(), scales); err != nil {
		db.Close()
		return nil, err
	}

	openMu.Lock()
	openProvs = append(openProvs, p)
	openMu.Unlock()

	return p, nil
}

type scaleRange struct{ min, max float64 }

func layerScales(config dict.Dicter) (map[string]scaleRange, error) {
	layers, err := config.MapSlice(ConfigKeyLayers)
	if err != nil {
		return nil, err
	}

	scales := make(map[string]scaleRange, len(layers))
	for _, l := range layers {
		table, err := l.String(ConfigKeyTableName, nil)
		if err != nil {
			return nil, fmt.Errorf("gpkg layer config: %v", err)
		}
		var zero float64
		minScale, err := l.Float(ConfigKeyMinScale, &zero)
		if err != nil {
			return nil, fmt.Errorf("gpkg layer (%v): %v", table, err)
		}
		maxScale, err := l.Float(ConfigKeyMaxScale, &zero)
		if err != nil {
			return nil, fmt.Errorf("gpkg layer (%v): %v", table, err)
		}
		scales[table] = scaleRange{min: minScale, max: maxScale}
	}
	return scales, nil
}

func (p *Provider) readLayers(ctx context.Context, scales map[string]scaleRange) error {
	const qtext = `
		SELECT
			c.table_name, gc.geometry_type_name
		FROM
			gpkg_contents c JOIN gpkg_geometry_columns gc ON c.table_name = gc.table_name
		WHERE
			c.data_type = 'features'
		ORDER BY c.table_name;`

	rows, err := p.db.QueryContext(ctx, qtext)
	if err != nil {
		log.Errorf("err during query: %v - %v", qtext, err)
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var tablename, geomType string
		if err := rows.Scan(&tablename, &geomType); err != nil {
			return err
		}

		// map the returned geom type to a geom type
		tg, err := geomNameToGeom(geomType)
		if err != nil {
			log.Warnf("table %v: %v", tablename, err)
		}

		s := scales[tablename]
		p.layers = append(p.layers, Layer{
			id:        strconv.Itoa(len(p.layers)),
			tablename: tablename,
			geomType:  tg,
			minScale:  s.min,
			maxScale:  s.max,
			fcount:    -1,
		})
	}
	if err := rows.Err(); err != nil {
		return err
	}

	log.Debugf("gpkg %v: found %d feature tables", p.Filepath, len(p.layers))
	return nil
}

func geomNameToGeom(name string) (geom.Geometry, error) {
	switch name {
	case "POINT":
		return geom.Point{}, nil
	case "LINESTRING":
		return geom.LineString{}, nil
	case "POLYGON":
		return geom.Polygon{}, nil
	case "MULTIPOINT":
		return geom.MultiPoint{}, nil
	case "MULTILINESTRING":
		return geom.MultiLineString{}, nil
	case "MULTIPOLYGON":
		return geom.MultiPolygon{}, nil
	}

	return nil, fmt.Errorf("unsupported geometry type: %v", name)
}

func (p *Provider) SupportsDynamicLayers() bool { return p.dynamic }

func (p *Provider) Layers(ctx context.Context) ([]provider.LayerInfo, error) {
	ls := make([]provider.LayerInfo, len(p.layers))
	for i := range p.layers {
		ls[i] = p.layers[i]
	}
	return ls, nil
}

func (p *Provider) layer(idx int) (Layer, error) {
	if idx < 0 || idx >= len(p.layers) {
		return Layer{}, provider.ErrSublayerNotFound{Provider: Name, Index: idx}
	}
	return p.layers[idx], nil
}

// LayerData counts the features of the table behind sublayer idx.
func (p *Provider) LayerData(ctx context.Context, idx int) (sublayer.LayerData, error) {
	l, err := p.layer(idx)
	if err != nil {
		return sublayer.LayerData{}, err
	}

	qtext := fmt.Sprintf("SELECT COUNT(*) FROM %v;", quoteIdent(l.tablename))
	if err := p.db.QueryRowContext(ctx, qtext).Scan(&l.fcount); err != nil {
		log.Errorf("err during query: %v - %v", qtext, err)
		return sublayer.LayerData{}, err
	}

	return provider.DataFromInfo(l), nil
}

// quoteIdent quotes a table name read from gpkg_contents for use as an SQL
// identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Symbology returns a single entry per table.
func (p *Provider) Symbology(ctx context.Context, idx int) ([]symbology.Entry, error) {
	l, err := p.layer(idx)
	if err != nil {
		return nil, err
	}
	return []symbology.Entry{
		p.gen.Placeholder(l.tablename, symbology.PlaceholderColor(l.tablename)),
	}, nil
}

// Close will close the Provider's database connection
func (p *Provider) Close() error {
	return p.db.Close()
}
