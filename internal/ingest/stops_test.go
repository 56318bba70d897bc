package ingest

import (
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writePointShapefile writes a point shapefile with the given coordinates.
func writePointShapefile(t *testing.T, path string, points [][2]float64) {
	t.Helper()

	w, err := shp.Create(path, shp.POINT)
	require.NoError(t, err)
	defer w.Close()

	w.SetFields([]shp.Field{shp.StringField("NOMBRE", 40)})

	for i, p := range points {
		w.Write(&shp.Point{X: p[0], Y: p[1]})
		w.WriteAttribute(i, 0, "stop")
	}
}

func TestReadStops_Union(t *testing.T) {
	dir := t.TempDir()
	metroPath := filepath.Join(dir, "metro.shp")
	rtpPath := filepath.Join(dir, "rtp.shp")
	writePointShapefile(t, metroPath, [][2]float64{{-99.1, 19.4}, {-99.2, 19.5}})
	writePointShapefile(t, rtpPath, [][2]float64{{-99.15, 19.45}})

	layers := []StopLayer{
		{Path: metroPath, Mode: "Metro"},
		{Path: rtpPath, Mode: "RTP"},
	}

	stops, counts, dropped, err := ReadStops(layers)
	require.NoError(t, err)

	assert.Zero(t, dropped)
	require.Len(t, stops, 3)
	assert.Equal(t, 2, counts["Metro"])
	assert.Equal(t, 1, counts["RTP"])

	// Union keeps layer order and tags each point with its mode.
	assert.Equal(t, "Metro", stops[0].Mode)
	assert.Equal(t, "RTP", stops[2].Mode)
	assert.InDelta(t, -99.15, stops[2].X, 1e-9)
}

func TestReadStops_NonPointLayerDropped(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lines.shp")

	w, err := shp.Create(path, shp.POLYLINE)
	require.NoError(t, err)
	w.SetFields([]shp.Field{shp.StringField("NOMBRE", 10)})
	w.Write(&shp.PolyLine{
		Box:       shp.Box{MaxX: 1, MaxY: 1},
		NumParts:  1,
		NumPoints: 2,
		Parts:     []int32{0},
		Points:    []shp.Point{{X: 0, Y: 0}, {X: 1, Y: 1}},
	})
	w.WriteAttribute(0, 0, "route")
	w.Close()

	stops, counts, dropped, err := ReadStops([]StopLayer{{Path: path, Mode: "Trolebús"}})
	require.NoError(t, err)

	assert.Empty(t, stops)
	assert.Equal(t, 1, dropped)
	assert.Zero(t, counts["Trolebús"])
}

func TestReadStops_MissingFile(t *testing.T) {
	_, _, _, err := ReadStops([]StopLayer{{Path: "/does/not/exist.shp", Mode: "Metro"}})
	assert.Error(t, err)
}
