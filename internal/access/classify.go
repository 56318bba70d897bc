package access

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/urbanmetrics/transitgap/internal/model"
)

// Default thresholds for the Mexico City analysis: zones denser than 8,000
// people/km² that sit more than 800 m walking distance from any stop.
const (
	DefaultDensityThreshold  = 8000.0 // people per km²
	DefaultDistanceThreshold = 800.0  // meters
)

// Thresholds define the high-potential predicate: high density AND low
// access, each as a strict > comparison.
type Thresholds struct {
	DensityPerKm2 float64
	DistanceM     float64
}

// Validate rejects negative thresholds before any computation; proceeding
// would silently corrupt every downstream classification.
func (t Thresholds) Validate() error {
	if t.DensityPerKm2 < 0 {
		return eris.Errorf("access: negative density threshold %v", t.DensityPerKm2)
	}
	if t.DistanceM < 0 {
		return eris.Errorf("access: negative distance threshold %v", t.DistanceM)
	}
	return nil
}

// BuildMetrics combines normalized zones with their nearest-stop distances
// into the output records, applying the threshold classification and the
// attractiveness index. distances must be in zone order, one per zone.
func BuildMetrics(zones []model.Zone, distances []float64, t Thresholds) ([]model.ZoneMetrics, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if len(zones) != len(distances) {
		return nil, eris.Errorf("access: %d zones but %d distances", len(zones), len(distances))
	}

	metrics := make([]model.ZoneMetrics, len(zones))
	for i, z := range zones {
		d := distances[i]
		m := model.ZoneMetrics{
			ZoneID:         z.ID,
			Population:     z.Population,
			AreaKm2:        z.AreaKm2,
			Density:        z.Density,
			CentroidX:      z.Centroid.X(),
			CentroidY:      z.Centroid.Y(),
			DistanceM:      d,
			HighDensity:    z.Density > t.DensityPerKm2,
			LowAccess:      d > t.DistanceM, // +Inf always exceeds the threshold
			Attractiveness: Attractiveness(z.Density, d),
		}
		m.HighPotential = m.HighDensity && m.LowAccess
		metrics[i] = m
	}
	return metrics, nil
}

// Attractiveness is the ranking heuristic: density divided by the distance
// to the nearest stop in kilometers. Zones with no coverage at all rank 0;
// +Inf distance means there is nothing to invest next to.
func Attractiveness(density, distanceM float64) float64 {
	if math.IsInf(distanceM, 1) || distanceM <= 0 {
		return 0
	}
	return density / (distanceM / 1000)
}
