// Package crs builds coordinate transforms between reference frames and
// applies them to geometries. Downstream area and distance arithmetic
// assumes Euclidean semantics, so the target frame must be planar.
package crs

import (
	"github.com/ctessum/geom/proj"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// ErrReferenceFrame indicates an unusable reference frame: an unparsable
// projection string or a non-planar target. Fatal before any computation.
var ErrReferenceFrame = eris.New("crs: unusable reference frame")

// Default PROJ.4 strings for the Mexico City analysis. The target is UTM
// zone 14N (EPSG:32614) spelled out as its transverse-mercator definition;
// it keeps distances and areas in meters across the valley.
const (
	DefaultSource = "+proj=longlat +datum=WGS84 +no_defs"
	DefaultTarget = "+proj=tmerc +lat_0=0 +lon_0=-99 +k=0.9996 +x_0=500000 +y_0=0 +datum=WGS84 +units=m +no_defs"
)

// Transformer maps a coordinate pair from the source frame to the target
// frame.
type Transformer func(x, y float64) (float64, float64, error)

// geographic projection names produce degree coordinates and are rejected
// as targets.
var geographicNames = map[string]bool{
	"longlat": true,
	"latlong": true,
	"latlon":  true,
	"lonlat":  true,
}

// NewTransform parses the source and target PROJ.4 strings and returns a
// transformer between them. The target must be a planar (projected) frame.
func NewTransform(source, target string) (Transformer, error) {
	src, err := proj.Parse(source)
	if err != nil {
		return nil, eris.Wrapf(ErrReferenceFrame, "parse source %q: %v", source, err)
	}
	dst, err := proj.Parse(target)
	if err != nil {
		return nil, eris.Wrapf(ErrReferenceFrame, "parse target %q: %v", target, err)
	}
	if geographicNames[dst.Name] {
		return nil, eris.Wrapf(ErrReferenceFrame, "target %q is geographic, not planar", target)
	}
	tr, err := src.NewTransform(dst)
	if err != nil {
		return nil, eris.Wrapf(ErrReferenceFrame, "build transform: %v", err)
	}
	return Transformer(tr), nil
}

// Identity returns coordinates unchanged. Used when inputs are already in
// the target frame.
func Identity(x, y float64) (float64, float64, error) {
	return x, y, nil
}

// TransformMultiPolygon reprojects every coordinate of g and returns a new
// geometry; g is not modified. Fails on the first coordinate the
// transformer rejects, so callers can drop the record.
func TransformMultiPolygon(g *geom.MultiPolygon, tr Transformer) (*geom.MultiPolygon, error) {
	flat := g.FlatCoords()
	stride := g.Stride()
	out := make([]float64, len(flat))
	copy(out, flat)
	for i := 0; i < len(flat); i += stride {
		x, y, err := tr(flat[i], flat[i+1])
		if err != nil {
			return nil, eris.Wrap(err, "crs: transform polygon coordinate")
		}
		out[i], out[i+1] = x, y
	}
	return geom.NewMultiPolygonFlat(g.Layout(), out, g.Endss()), nil
}
