// Package normalize turns raw zone and stop records into analysis-ready
// geometry: everything reprojected into one planar frame, population joined,
// per-zone area, density, and centroid derived, slivers filtered out.
package normalize

import (
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"

	"github.com/urbanmetrics/transitgap/internal/crs"
	"github.com/urbanmetrics/transitgap/internal/model"
)

// DefaultMinAreaKm2 excludes sliver polygons whose tiny area would produce
// anomalously high density.
const DefaultMinAreaKm2 = 0.01

// Options configures zone normalization.
type Options struct {
	MinAreaKm2 float64
}

// Zones reprojects raw zones into the target frame, joins population by
// zone ID, and derives area, density, and centroid. Records failing any
// data-quality check are dropped and counted; only configuration errors are
// fatal.
func Zones(raw []model.RawZone, population map[string]int, tr crs.Transformer, opts Options) ([]model.Zone, model.DropStats, error) {
	if opts.MinAreaKm2 == 0 {
		opts.MinAreaKm2 = DefaultMinAreaKm2
	}
	if opts.MinAreaKm2 < 0 {
		return nil, model.DropStats{}, eris.Errorf("normalize: negative minimum area %v", opts.MinAreaKm2)
	}
	if tr == nil {
		return nil, model.DropStats{}, eris.New("normalize: nil transformer")
	}

	var zones []model.Zone
	var drops model.DropStats

	for _, rz := range raw {
		if rz.Geometry == nil || rz.Geometry.NumPolygons() == 0 {
			drops.BadGeometry++
			continue
		}

		pop, ok := population[rz.ID]
		if !ok || pop < 0 {
			drops.NoPopulation++
			continue
		}

		projected, err := crs.TransformMultiPolygon(rz.Geometry, tr)
		if err != nil {
			drops.Reprojection++
			continue
		}

		// Shapefile rings wind clockwise, which yields a negative signed
		// area; the magnitude is what density needs.
		areaKm2 := math.Abs(projected.Area()) / 1e6
		if areaKm2 < opts.MinAreaKm2 {
			drops.SubFloorArea++
			continue
		}

		centroid, err := multiPolygonCentroid(projected)
		if err != nil {
			drops.BadGeometry++
			continue
		}

		zones = append(zones, model.Zone{
			ID:         rz.ID,
			Geometry:   projected,
			Population: pop,
			AreaKm2:    areaKm2,
			Density:    float64(pop) / areaKm2,
			Centroid:   centroid,
		})
	}

	if drops.Total() > 0 {
		zap.L().Info("normalize: dropped zone records",
			zap.Int("no_population", drops.NoPopulation),
			zap.Int("bad_geometry", drops.BadGeometry),
			zap.Int("reprojection", drops.Reprojection),
			zap.Int("sub_floor_area", drops.SubFloorArea),
		)
	}

	return zones, drops, nil
}

// Stops reprojects raw stops into the target frame. Stops whose coordinates
// the transformer rejects are dropped and counted.
func Stops(raw []model.RawStop, tr crs.Transformer) ([]model.Stop, model.DropStats, error) {
	if tr == nil {
		return nil, model.DropStats{}, eris.New("normalize: nil transformer")
	}

	stops := make([]model.Stop, 0, len(raw))
	var drops model.DropStats

	for _, rs := range raw {
		x, y, err := tr(rs.X, rs.Y)
		if err != nil {
			drops.Reprojection++
			continue
		}
		stops = append(stops, model.Stop{Mode: rs.Mode, X: x, Y: y})
	}

	if drops.Reprojection > 0 {
		zap.L().Info("normalize: dropped stop records",
			zap.Int("reprojection", drops.Reprojection),
		)
	}

	return stops, drops, nil
}

// multiPolygonCentroid computes the area-weighted centroid over all member
// polygons.
func multiPolygonCentroid(mp *geom.MultiPolygon) (geom.Coord, error) {
	n := mp.NumPolygons()
	if n == 0 {
		return nil, eris.New("normalize: empty multipolygon")
	}
	extra := make([]*geom.Polygon, 0, n-1)
	for i := 1; i < n; i++ {
		extra = append(extra, mp.Polygon(i))
	}
	return xy.PolygonsCentroid(mp.Polygon(0), extra...), nil
}
