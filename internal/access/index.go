// Package access computes nearest-stop distances for zone centroids and
// classifies zones against density and access thresholds.
package access

import (
	"math"

	"github.com/tidwall/rtree"

	"github.com/urbanmetrics/transitgap/internal/model"
)

// StopIndex is an R-tree over stop locations supporting exact
// nearest-neighbor queries under Euclidean distance. Immutable once built;
// safe for concurrent readers.
type StopIndex struct {
	tree rtree.RTreeG[model.Stop]
}

// NewStopIndex builds the index over all stops. Build cost is amortized
// across every subsequent centroid query.
func NewStopIndex(stops []model.Stop) *StopIndex {
	idx := &StopIndex{}
	for _, s := range stops {
		p := [2]float64{s.X, s.Y}
		idx.tree.Insert(p, p, s)
	}
	return idx
}

// Len returns the number of indexed stops.
func (idx *StopIndex) Len() int {
	return idx.tree.Len()
}

// Nearest returns the stop closest to (x, y) and its Euclidean distance.
// The reported distance is exact; when several stops are equidistant, any
// one of them may be returned. ok is false only for an empty index, in
// which case the distance is +Inf.
func (idx *StopIndex) Nearest(x, y float64) (nearest model.Stop, dist float64, ok bool) {
	dist = math.Inf(1)
	if idx.tree.Len() == 0 {
		return model.Stop{}, dist, false
	}

	target := [2]float64{x, y}
	idx.tree.Nearby(
		rtree.BoxDist[float64, model.Stop](target, target, nil),
		func(_, _ [2]float64, s model.Stop, _ float64) bool {
			// Items arrive in ascending distance order, so the first one
			// is the exact nearest. Recompute the distance from the stop
			// coordinates rather than trusting the traversal metric.
			nearest = s
			dist = math.Hypot(s.X-x, s.Y-y)
			ok = true
			return false
		},
	)
	return nearest, dist, ok
}
