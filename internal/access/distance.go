package access

import (
	"context"
	"math"
	"runtime"

	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/urbanmetrics/transitgap/internal/model"
)

// DefaultBruteForceCutoff is the stop count below which a linear scan beats
// the indexed path: tree construction costs O(M log M) and a scan over a few
// dozen points stays in cache, so the index only pays off past this point.
const DefaultBruteForceCutoff = 64

// Options configures the distance computation.
type Options struct {
	Concurrency      int // parallel query workers; default NumCPU
	BruteForceCutoff int // max stop count for the linear-scan path; default 64
}

// NearestDistances returns, for every centroid, the Euclidean distance to
// the nearest stop, in input order. An empty stop set yields +Inf for every
// centroid: total lack of coverage is a valid outcome, not an error. The
// result is a pure function of the inputs; permuting the stop set or the
// query scheduling does not change any returned value.
func NearestDistances(ctx context.Context, centroids []geom.Coord, stops []model.Stop, opts Options) ([]float64, error) {
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.NumCPU()
	}
	if opts.BruteForceCutoff <= 0 {
		opts.BruteForceCutoff = DefaultBruteForceCutoff
	}

	distances := make([]float64, len(centroids))

	if len(stops) == 0 {
		for i := range distances {
			distances[i] = math.Inf(1)
		}
		zap.L().Warn("access: no stops available, all zones uncovered",
			zap.Int("centroids", len(centroids)),
		)
		return distances, nil
	}

	if len(centroids) == 0 {
		return distances, nil
	}

	if len(stops) <= opts.BruteForceCutoff {
		for i, c := range centroids {
			distances[i] = bruteForceNearest(c.X(), c.Y(), stops)
		}
		return distances, nil
	}

	// Build phase: construct the index once, before any query runs.
	idx := NewStopIndex(stops)

	// Query phase: workers own disjoint centroid ranges and share the
	// read-only index. Results land at fixed positions, so no locking.
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	chunk := (len(centroids) + opts.Concurrency - 1) / opts.Concurrency
	for start := 0; start < len(centroids); start += chunk {
		end := min(start+chunk, len(centroids))
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			for i := start; i < end; i++ {
				c := centroids[i]
				_, d, _ := idx.Nearest(c.X(), c.Y())
				distances[i] = d
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return distances, nil
}

// bruteForceNearest is the small-M correctness baseline: a linear scan over
// all stops.
func bruteForceNearest(x, y float64, stops []model.Stop) float64 {
	best := math.Inf(1)
	for _, s := range stops {
		if d := math.Hypot(s.X-x, s.Y-y); d < best {
			best = d
		}
	}
	return best
}
