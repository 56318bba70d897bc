// Package report turns zone metrics into tabular outputs: the full zone
// table, the top-N ranking, and per-borough summaries.
package report

import (
	"encoding/csv"
	"math"
	"os"
	"sort"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/urbanmetrics/transitgap/internal/model"
)

// zoneColumns defines the ordered zone table CSV columns.
var zoneColumns = []string{
	"zone_id",
	"population",
	"area_km2",
	"density",
	"centroid_x",
	"centroid_y",
	"dist_to_transport_m",
	"high_density",
	"low_access",
	"high_potential",
	"attractiveness_index",
}

// ExportZonesCSV writes the full zone metrics table to outputPath.
func ExportZonesCSV(metrics []model.ZoneMetrics, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return eris.Wrap(err, "report: create zone csv")
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write(zoneColumns); err != nil {
		return eris.Wrap(err, "report: write zone header")
	}
	for _, m := range metrics {
		if err := w.Write(zoneRow(m)); err != nil {
			return eris.Wrap(err, "report: write zone row")
		}
	}

	w.Flush()
	return w.Error()
}

// TopZones returns the n highest-potential zones ranked by attractiveness,
// descending. Only high-potential zones are ranked.
func TopZones(metrics []model.ZoneMetrics, n int) []model.ZoneMetrics {
	var flagged []model.ZoneMetrics
	for _, m := range metrics {
		if m.HighPotential {
			flagged = append(flagged, m)
		}
	}
	sort.SliceStable(flagged, func(i, j int) bool {
		return flagged[i].Attractiveness > flagged[j].Attractiveness
	})
	if n > 0 && len(flagged) > n {
		flagged = flagged[:n]
	}
	return flagged
}

// ExportTopZonesCSV writes the top-n attractiveness ranking to outputPath.
func ExportTopZonesCSV(metrics []model.ZoneMetrics, n int, outputPath string) error {
	top := TopZones(metrics, n)

	f, err := os.Create(outputPath)
	if err != nil {
		return eris.Wrap(err, "report: create top zones csv")
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := []string{"zone_id", "population", "density", "dist_to_transport_m", "attractiveness_index"}
	if err := w.Write(header); err != nil {
		return eris.Wrap(err, "report: write top zones header")
	}
	for _, m := range top {
		row := []string{
			m.ZoneID,
			strconv.Itoa(m.Population),
			formatFloat(m.Density),
			formatFloat(m.DistanceM),
			formatFloat(m.Attractiveness),
		}
		if err := w.Write(row); err != nil {
			return eris.Wrap(err, "report: write top zones row")
		}
	}

	w.Flush()
	return w.Error()
}

func zoneRow(m model.ZoneMetrics) []string {
	return []string{
		m.ZoneID,
		strconv.Itoa(m.Population),
		formatFloat(m.AreaKm2),
		formatFloat(m.Density),
		formatFloat(m.CentroidX),
		formatFloat(m.CentroidY),
		formatFloat(m.DistanceM),
		strconv.FormatBool(m.HighDensity),
		strconv.FormatBool(m.LowAccess),
		strconv.FormatBool(m.HighPotential),
		formatFloat(m.Attractiveness),
	}
}

// formatFloat renders distances and densities; +Inf (no coverage) becomes
// an explicit marker rather than a numeric literal.
func formatFloat(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}
