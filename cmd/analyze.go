package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/urbanmetrics/transitgap/internal/access"
	"github.com/urbanmetrics/transitgap/internal/crs"
	"github.com/urbanmetrics/transitgap/internal/ingest"
	"github.com/urbanmetrics/transitgap/internal/model"
	"github.com/urbanmetrics/transitgap/internal/normalize"
	"github.com/urbanmetrics/transitgap/internal/report"
	"github.com/urbanmetrics/transitgap/internal/store"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the full zone analysis",
	Long: `Reads the zone shapefile and census workbook, unions the transport stop
layers, reprojects everything into the target frame, computes per-zone
density and nearest-stop distance, classifies high-potential zones, and
writes the zone table, top-N ranking, and analysis record.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log := zap.L().With(zap.String("command", "analyze"))

		// Flag overrides.
		if s, _ := cmd.Flags().GetString("zones"); s != "" {
			cfg.Zones.Shapefile = s
		}
		if s, _ := cmd.Flags().GetString("census"); s != "" {
			cfg.Zones.CensusXLSX = s
		}
		if layers, _ := cmd.Flags().GetStringSlice("stops"); len(layers) > 0 {
			parsed, err := parseStopLayers(layers)
			if err != nil {
				return err
			}
			cfg.Stops.Layers = parsed
		}
		if v, _ := cmd.Flags().GetFloat64("density-threshold"); cmd.Flags().Changed("density-threshold") {
			cfg.Thresholds.DensityPerKm2 = v
		}
		if v, _ := cmd.Flags().GetFloat64("distance-threshold"); cmd.Flags().Changed("distance-threshold") {
			cfg.Thresholds.DistanceM = v
		}

		if cfg.Zones.Shapefile == "" {
			return eris.New("analyze: no zone shapefile configured (--zones or zones.shapefile)")
		}
		if cfg.Zones.CensusXLSX == "" {
			return eris.New("analyze: no census workbook configured (--census or zones.census_xlsx)")
		}
		if len(cfg.Stops.Layers) == 0 {
			return eris.New("analyze: no stop layers configured (--stops or stops.layers)")
		}

		// Validate configuration before touching any input.
		thresholds := access.Thresholds{
			DensityPerKm2: cfg.Thresholds.DensityPerKm2,
			DistanceM:     cfg.Thresholds.DistanceM,
		}
		if err := thresholds.Validate(); err != nil {
			return err
		}
		transform, err := crs.NewTransform(cfg.CRS.Source, cfg.CRS.Target)
		if err != nil {
			return err
		}

		// Ingest.
		rawZones, zoneSkipped, err := ingest.ReadZones(cfg.Zones.Shapefile, cfg.Zones.IDField)
		if err != nil {
			return err
		}
		population, censusDropped, err := ingest.ReadPopulation(cfg.Zones.CensusXLSX, cfg.Zones.CensusSheet)
		if err != nil {
			return err
		}
		rawStops, modeCounts, nonPoint, err := ingest.ReadStops(cfg.Stops.Layers)
		if err != nil {
			return err
		}
		log.Info("inputs loaded",
			zap.Int("zones", len(rawZones)),
			zap.Int("population_rows", len(population)),
			zap.Int("stops", len(rawStops)),
			zap.Any("stops_by_mode", modeCounts),
		)

		// Normalize.
		zones, zoneDrops, err := normalize.Zones(rawZones, population, transform, normalize.Options{
			MinAreaKm2: cfg.Zones.MinAreaKm2,
		})
		if err != nil {
			return err
		}
		stops, stopDrops, err := normalize.Stops(rawStops, transform)
		if err != nil {
			return err
		}

		drops := zoneDrops
		drops.Add(stopDrops)
		drops.BadGeometry += zoneSkipped
		drops.NoPopulation += censusDropped
		drops.NonPointStops += nonPoint

		// Distance engine.
		centroids := make([]geom.Coord, len(zones))
		for i, z := range zones {
			centroids[i] = z.Centroid
		}
		distances, err := access.NearestDistances(ctx, centroids, stops, access.Options{
			Concurrency:      cfg.Engine.Concurrency,
			BruteForceCutoff: cfg.Engine.BruteForceCutoff,
		})
		if err != nil {
			return err
		}

		metrics, err := access.BuildMetrics(zones, distances, thresholds)
		if err != nil {
			return err
		}

		// Reports.
		zonesPath := filepath.Join(cfg.Output.Dir, "zones.csv")
		if err := report.ExportZonesCSV(metrics, zonesPath); err != nil {
			return err
		}
		topPath := filepath.Join(cfg.Output.Dir, "top_zones.csv")
		if err := report.ExportTopZonesCSV(metrics, cfg.Output.TopN, topPath); err != nil {
			return err
		}

		summary := report.Summarize(metrics)
		log.Info("analysis complete",
			zap.Int("zones", summary.Zones),
			zap.Int("high_potential", summary.HighPotentialZones),
			zap.Int("population_high_potential", summary.PopulationHighPotential),
			zap.Int("dropped_records", drops.Total()),
		)

		// Persist.
		noStore, _ := cmd.Flags().GetBool("no-store")
		if !noStore {
			if err := persistAnalysis(ctx, stops, drops, metrics); err != nil {
				return err
			}
		}

		fmt.Printf("Zones analyzed: %d\n", summary.Zones)
		fmt.Printf("High-potential zones: %d\n", summary.HighPotentialZones)
		fmt.Printf("Population in high-potential zones: %d\n", summary.PopulationHighPotential)
		fmt.Printf("Zone table: %s\n", zonesPath)
		fmt.Printf("Top %d ranking: %s\n", cfg.Output.TopN, topPath)

		return nil
	},
}

// persistAnalysis records the run in the SQLite store.
func persistAnalysis(ctx context.Context, stops []model.Stop, drops model.DropStats, metrics []model.ZoneMetrics) error {
	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		return err
	}

	params := store.Params{
		SourceCRS:         cfg.CRS.Source,
		TargetCRS:         cfg.CRS.Target,
		MinAreaKm2:        cfg.Zones.MinAreaKm2,
		DensityThreshold:  cfg.Thresholds.DensityPerKm2,
		DistanceThreshold: cfg.Thresholds.DistanceM,
	}
	id, err := st.SaveAnalysis(ctx, params, len(stops), drops, metrics)
	if err != nil {
		return err
	}
	zap.L().Info("analysis persisted", zap.String("analysis_id", id), zap.String("db", cfg.Store.Path))
	return nil
}

// parseStopLayers parses repeated mode=path flags into stop layers.
func parseStopLayers(specs []string) ([]ingest.StopLayer, error) {
	layers := make([]ingest.StopLayer, 0, len(specs))
	for _, spec := range specs {
		mode, path, ok := strings.Cut(spec, "=")
		if !ok || strings.TrimSpace(mode) == "" || strings.TrimSpace(path) == "" {
			return nil, eris.Errorf("analyze: invalid stop layer %q (want mode=path)", spec)
		}
		layers = append(layers, ingest.StopLayer{Mode: strings.TrimSpace(mode), Path: strings.TrimSpace(path)})
	}
	return layers, nil
}

func init() {
	analyzeCmd.Flags().String("zones", "", "zone shapefile path")
	analyzeCmd.Flags().String("census", "", "census population workbook path")
	analyzeCmd.Flags().StringSlice("stops", nil, "stop layer as mode=path (repeatable)")
	analyzeCmd.Flags().Float64("density-threshold", 0, "high-density threshold (people/km²)")
	analyzeCmd.Flags().Float64("distance-threshold", 0, "low-access threshold (meters)")
	analyzeCmd.Flags().Bool("no-store", false, "skip persisting the analysis to SQLite")
	rootCmd.AddCommand(analyzeCmd)
}
