// Package ingest reads census zone shapefiles, transport stop layers, and
// the census population workbook into the model types.
package ingest

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/urbanmetrics/transitgap/internal/model"
)

// ReadZones reads polygon records from a shapefile, keyed by the idField
// attribute (CVEGEO for INEGI AGEB layers). Records with missing IDs or
// non-polygon geometry are skipped and counted, not fatal.
func ReadZones(shpPath, idField string) ([]model.RawZone, int, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, 0, eris.Wrapf(err, "ingest: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	idIdx, err := fieldIndex(reader, idField)
	if err != nil {
		return nil, 0, err
	}

	var zones []model.RawZone
	var skipped int

	for reader.Next() {
		_, shape := reader.Shape()

		id := attribute(reader, idIdx)
		if id == "" {
			skipped++
			continue
		}

		poly, ok := shape.(*shp.Polygon)
		if !ok {
			skipped++
			continue
		}
		mp := PolygonToMultiPolygon(poly)
		if mp == nil {
			skipped++
			continue
		}

		zones = append(zones, model.RawZone{ID: id, Geometry: mp})
	}

	if skipped > 0 {
		zap.L().Debug("ingest: skipped zone records",
			zap.String("path", shpPath),
			zap.Int("skipped", skipped),
		)
	}

	return zones, skipped, nil
}

// fieldIndex returns the DBF field index for name, case-insensitive.
func fieldIndex(reader *shp.Reader, name string) (int, error) {
	for i, f := range reader.Fields() {
		fname := strings.TrimRight(f.String(), "\x00")
		if strings.EqualFold(fname, name) {
			return i, nil
		}
	}
	return 0, eris.Errorf("ingest: field %q not found in shapefile", name)
}

// attribute reads and cleans a DBF attribute: Latin-1 decoded, NUL and
// whitespace trimmed.
func attribute(reader *shp.Reader, idx int) string {
	val := strings.TrimRight(reader.Attribute(idx), "\x00")
	return strings.TrimSpace(DecodeLatin1(val))
}

// PolygonToMultiPolygon converts a shapefile Polygon to a go-geom
// MultiPolygon. Returns nil for empty or degenerate shapes.
func PolygonToMultiPolygon(p *shp.Polygon) *geom.MultiPolygon {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY)

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		var end int32
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		} else {
			end = int32(len(p.Points))
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		ring := geom.NewLinearRingFlat(geom.XY, flat)
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(ring); err != nil {
			zap.L().Debug("ingest: skipping malformed polygon ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
		if err := mp.Push(poly); err != nil {
			zap.L().Debug("ingest: skipping malformed polygon part", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}
