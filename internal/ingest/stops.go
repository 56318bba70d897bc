package ingest

import (
	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/urbanmetrics/transitgap/internal/model"
)

// StopLayer names one transport-mode shapefile to pull into the union.
type StopLayer struct {
	Path string `yaml:"path" mapstructure:"path"`
	Mode string `yaml:"mode" mapstructure:"mode"`
}

// ReadStops reads and unions all stop layers, keeping only point
// geometries. Returns the pooled stops, per-mode counts, and the number of
// non-point records dropped.
func ReadStops(layers []StopLayer) ([]model.RawStop, map[string]int, int, error) {
	var stops []model.RawStop
	counts := make(map[string]int, len(layers))
	var dropped int

	for _, layer := range layers {
		layerStops, skipped, err := readStopLayer(layer)
		if err != nil {
			return nil, nil, 0, err
		}
		stops = append(stops, layerStops...)
		counts[layer.Mode] += len(layerStops)
		dropped += skipped

		zap.L().Info("ingest: stop layer loaded",
			zap.String("mode", layer.Mode),
			zap.Int("stops", len(layerStops)),
			zap.Int("non_point_dropped", skipped),
		)
	}

	return stops, counts, dropped, nil
}

// readStopLayer reads one stop shapefile, tagging every point with the
// layer's mode.
func readStopLayer(layer StopLayer) ([]model.RawStop, int, error) {
	reader, err := shp.Open(layer.Path)
	if err != nil {
		return nil, 0, eris.Wrapf(err, "ingest: open stop layer %s", layer.Path)
	}
	defer func() { _ = reader.Close() }()

	var stops []model.RawStop
	var skipped int

	for reader.Next() {
		_, shape := reader.Shape()

		switch s := shape.(type) {
		case *shp.Point:
			stops = append(stops, model.RawStop{Mode: layer.Mode, X: s.X, Y: s.Y})
		case *shp.PointZ:
			stops = append(stops, model.RawStop{Mode: layer.Mode, X: s.X, Y: s.Y})
		case *shp.PointM:
			stops = append(stops, model.RawStop{Mode: layer.Mode, X: s.X, Y: s.Y})
		default:
			skipped++
		}
	}

	return stops, skipped, nil
}
