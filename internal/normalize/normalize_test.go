package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/urbanmetrics/transitgap/internal/crs"
	"github.com/urbanmetrics/transitgap/internal/model"
)

// squareZone builds a raw zone covering a side×side square with its lower
// left corner at (x, y). Coordinates are already in meters.
func squareZone(id string, x, y, side float64) model.RawZone {
	return model.RawZone{
		ID: id,
		Geometry: geom.NewMultiPolygonFlat(geom.XY, []float64{
			x, y,
			x + side, y,
			x + side, y + side,
			x, y + side,
			x, y,
		}, [][]int{{10}}),
	}
}

func TestZones_AreaDensityCentroid(t *testing.T) {
	raw := []model.RawZone{squareZone("z1", 0, 0, 1000)} // 1 km²
	population := map[string]int{"z1": 8500}

	zones, drops, err := Zones(raw, population, crs.Identity, Options{})
	require.NoError(t, err)
	require.Len(t, zones, 1)
	assert.Zero(t, drops.Total())

	z := zones[0]
	assert.InDelta(t, 1.0, z.AreaKm2, 1e-9)
	assert.InDelta(t, 8500.0, z.Density, 1e-6)
	assert.Equal(t, 8500, z.Population)
	assert.InDelta(t, 500.0, z.Centroid.X(), 1e-9)
	assert.InDelta(t, 500.0, z.Centroid.Y(), 1e-9)
}

func TestZones_DensityEqualsPopulationOverArea(t *testing.T) {
	raw := []model.RawZone{
		squareZone("a", 0, 0, 2000),    // 4 km²
		squareZone("b", 5000, 0, 500),  // 0.25 km²
		squareZone("c", 9000, 0, 1000), // 1 km²
	}
	population := map[string]int{"a": 40000, "b": 1000, "c": 12345}

	zones, _, err := Zones(raw, population, crs.Identity, Options{})
	require.NoError(t, err)
	require.Len(t, zones, 3)

	for _, z := range zones {
		assert.InDelta(t, float64(z.Population)/z.AreaKm2, z.Density, 1e-9, "zone %s", z.ID)
		assert.GreaterOrEqual(t, z.AreaKm2, DefaultMinAreaKm2)
	}
}

func TestZones_MissingPopulationDropped(t *testing.T) {
	raw := []model.RawZone{
		squareZone("known", 0, 0, 1000),
		squareZone("unknown", 2000, 0, 1000),
	}
	population := map[string]int{"known": 100}

	zones, drops, err := Zones(raw, population, crs.Identity, Options{})
	require.NoError(t, err)

	require.Len(t, zones, 1)
	assert.Equal(t, "known", zones[0].ID)
	assert.Equal(t, 1, drops.NoPopulation)
}

func TestZones_SliverFiltered(t *testing.T) {
	raw := []model.RawZone{
		squareZone("normal", 0, 0, 1000),
		squareZone("sliver", 2000, 0, 50), // 0.0025 km², below the 0.01 floor
	}
	population := map[string]int{"normal": 100, "sliver": 100}

	zones, drops, err := Zones(raw, population, crs.Identity, Options{})
	require.NoError(t, err)

	require.Len(t, zones, 1)
	assert.Equal(t, "normal", zones[0].ID)
	assert.Equal(t, 1, drops.SubFloorArea)
}

func TestZones_ConfigurableFloor(t *testing.T) {
	raw := []model.RawZone{squareZone("small", 0, 0, 50)}
	population := map[string]int{"small": 10}

	// The default floor excludes it, a lower floor keeps it.
	zones, _, err := Zones(raw, population, crs.Identity, Options{})
	require.NoError(t, err)
	assert.Empty(t, zones)

	zones, _, err = Zones(raw, population, crs.Identity, Options{MinAreaKm2: 0.001})
	require.NoError(t, err)
	assert.Len(t, zones, 1)
}

func TestZones_NegativeFloorFatal(t *testing.T) {
	_, _, err := Zones(nil, nil, crs.Identity, Options{MinAreaKm2: -1})
	assert.Error(t, err)
}

func TestZones_NilGeometryDropped(t *testing.T) {
	raw := []model.RawZone{{ID: "broken"}}
	population := map[string]int{"broken": 10}

	zones, drops, err := Zones(raw, population, crs.Identity, Options{})
	require.NoError(t, err)
	assert.Empty(t, zones)
	assert.Equal(t, 1, drops.BadGeometry)
}

func TestZones_TransformFailureDropped(t *testing.T) {
	failing := func(x, y float64) (float64, float64, error) {
		return 0, 0, assert.AnError
	}
	raw := []model.RawZone{squareZone("z1", 0, 0, 1000)}
	population := map[string]int{"z1": 10}

	zones, drops, err := Zones(raw, population, failing, Options{})
	require.NoError(t, err)
	assert.Empty(t, zones)
	assert.Equal(t, 1, drops.Reprojection)
}

func TestZones_EmptyInput(t *testing.T) {
	zones, drops, err := Zones(nil, nil, crs.Identity, Options{})
	require.NoError(t, err)
	assert.Empty(t, zones)
	assert.Zero(t, drops.Total())
}

func TestStops_Reprojection(t *testing.T) {
	shift := func(x, y float64) (float64, float64, error) {
		return x + 100, y - 100, nil
	}
	raw := []model.RawStop{{Mode: "Metro", X: 1, Y: 2}}

	stops, drops, err := Stops(raw, shift)
	require.NoError(t, err)
	require.Len(t, stops, 1)
	assert.Zero(t, drops.Total())
	assert.Equal(t, "Metro", stops[0].Mode)
	assert.InDelta(t, 101.0, stops[0].X, 1e-9)
	assert.InDelta(t, -98.0, stops[0].Y, 1e-9)
}

func TestStops_FailuresDropped(t *testing.T) {
	calls := 0
	flaky := func(x, y float64) (float64, float64, error) {
		calls++
		if calls == 2 {
			return 0, 0, assert.AnError
		}
		return x, y, nil
	}
	raw := []model.RawStop{{X: 1}, {X: 2}, {X: 3}}

	stops, drops, err := Stops(raw, flaky)
	require.NoError(t, err)
	assert.Len(t, stops, 2)
	assert.Equal(t, 1, drops.Reprojection)
}

func TestZones_IdentityIsIdempotent(t *testing.T) {
	// Normalizing already-projected geometry with the identity transform
	// must not drift coordinates.
	raw := []model.RawZone{squareZone("z1", 482000, 2148000, 1000)}
	population := map[string]int{"z1": 100}

	once, _, err := Zones(raw, population, crs.Identity, Options{})
	require.NoError(t, err)
	again, _, err := Zones([]model.RawZone{{ID: "z1", Geometry: once[0].Geometry}}, population, crs.Identity, Options{})
	require.NoError(t, err)

	assert.InDelta(t, once[0].AreaKm2, again[0].AreaKm2, 1e-12)
	assert.InDelta(t, once[0].Centroid.X(), again[0].Centroid.X(), 1e-9)
	assert.InDelta(t, once[0].Centroid.Y(), again[0].Centroid.Y(), 1e-9)
}
