// Package model defines the core data types shared across the analysis
// pipeline: census zones, transport stops, and per-zone access metrics.
package model

import (
	"math"

	"github.com/twpayne/go-geom"
)

// RawZone is a census zone as read from a shapefile, before normalization.
// Geometry is in the source reference frame.
type RawZone struct {
	ID       string
	Geometry *geom.MultiPolygon
}

// Zone is a normalized census zone: reprojected, joined with population,
// with derived area, density, and centroid in the target reference frame.
type Zone struct {
	ID         string
	Geometry   *geom.MultiPolygon
	Population int
	AreaKm2    float64
	Density    float64
	Centroid   geom.Coord
}

// RawStop is a transport access point as read from a stop layer, before
// reprojection.
type RawStop struct {
	Mode string
	X, Y float64
}

// Stop is a transport access point in the target reference frame. Mode is
// carried for reporting only; the distance engine pools all modes.
type Stop struct {
	Mode string
	X, Y float64
}

// ZoneMetrics is the per-zone output record of the core pipeline and the
// sole contract surface passed to downstream reporting.
type ZoneMetrics struct {
	ZoneID         string
	Population     int
	AreaKm2        float64
	Density        float64
	CentroidX      float64
	CentroidY      float64
	DistanceM      float64 // +Inf when no stops exist
	HighDensity    bool
	LowAccess      bool
	HighPotential  bool
	Attractiveness float64 // density / distance_km; 0 when DistanceM is +Inf
}

// Covered reports whether the zone has any transport reference at all.
func (m ZoneMetrics) Covered() bool {
	return !math.IsInf(m.DistanceM, 1)
}

// DropStats counts records filtered out during normalization. Drops are
// data-quality recoveries, never fatal; callers surface them as diagnostics.
type DropStats struct {
	NoPopulation  int // zone had no matching population record or a negative count
	BadGeometry   int // geometry was nil or empty
	Reprojection  int // per-record transform failure
	SubFloorArea  int // projected area below the sliver floor
	NonPointStops int // stop layer record with a non-point geometry
}

// Total returns the total number of dropped records.
func (d DropStats) Total() int {
	return d.NoPopulation + d.BadGeometry + d.Reprojection + d.SubFloorArea + d.NonPointStops
}

// Add accumulates counts from another DropStats.
func (d *DropStats) Add(other DropStats) {
	d.NoPopulation += other.NoPopulation
	d.BadGeometry += other.BadGeometry
	d.Reprojection += other.Reprojection
	d.SubFloorArea += other.SubFloorArea
	d.NonPointStops += other.NonPointStops
}
