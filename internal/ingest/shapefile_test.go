package ingest

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolygonToMultiPolygon_Square(t *testing.T) {
	poly := &shp.Polygon{
		NumParts: 1,
		Parts:    []int32{0},
		Points: []shp.Point{
			{X: 0, Y: 0},
			{X: 0, Y: 10},
			{X: 10, Y: 10},
			{X: 10, Y: 0},
			{X: 0, Y: 0},
		},
	}

	mp := PolygonToMultiPolygon(poly)
	require.NotNil(t, mp)
	assert.Equal(t, 1, mp.NumPolygons())
	assert.InDelta(t, 100.0, math.Abs(mp.Area()), 1e-9)
}

func TestPolygonToMultiPolygon_MultiPart(t *testing.T) {
	poly := &shp.Polygon{
		NumParts: 2,
		Parts:    []int32{0, 5},
		Points: []shp.Point{
			{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 0},
			{X: 5, Y: 0}, {X: 5, Y: 2}, {X: 7, Y: 2}, {X: 7, Y: 0}, {X: 5, Y: 0},
		},
	}

	mp := PolygonToMultiPolygon(poly)
	require.NotNil(t, mp)
	assert.Equal(t, 2, mp.NumPolygons())
	assert.InDelta(t, 5.0, math.Abs(mp.Area()), 1e-9)
}

func TestPolygonToMultiPolygon_Degenerate(t *testing.T) {
	assert.Nil(t, PolygonToMultiPolygon(nil))
	assert.Nil(t, PolygonToMultiPolygon(&shp.Polygon{}))
}

// writeZoneShapefile writes a small polygon shapefile with a CVEGEO field.
func writeZoneShapefile(t *testing.T, path string) {
	t.Helper()

	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)
	defer w.Close()

	w.SetFields([]shp.Field{shp.StringField("CVEGEO", 20)})

	square := func(x, y, side float64) *shp.Polygon {
		return &shp.Polygon{
			Box:       shp.Box{MinX: x, MinY: y, MaxX: x + side, MaxY: y + side},
			NumParts:  1,
			NumPoints: 5,
			Parts:     []int32{0},
			Points: []shp.Point{
				{X: x, Y: y},
				{X: x, Y: y + side},
				{X: x + side, Y: y + side},
				{X: x + side, Y: y},
				{X: x, Y: y},
			},
		}
	}

	w.Write(square(0, 0, 1))
	w.WriteAttribute(0, 0, "0901000010001")
	w.Write(square(2, 0, 1))
	w.WriteAttribute(1, 0, "0901000010002")
}

func TestReadZones(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zones.shp")
	writeZoneShapefile(t, path)

	zones, skipped, err := ReadZones(path, "CVEGEO")
	require.NoError(t, err)

	assert.Zero(t, skipped)
	require.Len(t, zones, 2)
	assert.Equal(t, "0901000010001", zones[0].ID)
	assert.Equal(t, "0901000010002", zones[1].ID)
	assert.Equal(t, 1, zones[0].Geometry.NumPolygons())
}

func TestReadZones_MissingField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zones.shp")
	writeZoneShapefile(t, path)

	_, _, err := ReadZones(path, "NO_SUCH_FIELD")
	assert.Error(t, err)
}

func TestReadZones_MissingFile(t *testing.T) {
	_, _, err := ReadZones(filepath.Join(t.TempDir(), "nope.shp"), "CVEGEO")
	assert.Error(t, err)
}
