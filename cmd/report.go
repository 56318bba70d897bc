package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/urbanmetrics/transitgap/internal/report"
	"github.com/urbanmetrics/transitgap/internal/store"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize the latest persisted analysis",
	Long: `Reads the most recent analysis from the SQLite store and prints the
headline numbers, the per-borough breakdown of high-potential zones, and
the top-N attractiveness ranking.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, err := store.NewSQLite(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		analysis, err := st.LatestAnalysis(ctx)
		if err != nil {
			return err
		}
		if analysis == nil {
			return eris.New("report: no analyses found; run `transitgap analyze` first")
		}

		metrics, err := st.ZoneMetrics(ctx, analysis.ID)
		if err != nil {
			return err
		}

		summary := report.Summarize(metrics)

		fmt.Printf("Analysis %s (%s)\n", analysis.ID, analysis.CreatedAt.Format("2006-01-02 15:04"))
		fmt.Printf("  Zones: %d  Stops: %d  Dropped records: %d\n", analysis.Zones, analysis.Stops, analysis.Dropped)
		fmt.Printf("  Thresholds: density > %.0f people/km², distance > %.0f m\n",
			analysis.Params.DensityThreshold, analysis.Params.DistanceThreshold)
		fmt.Printf("  High-potential zones: %d (population %d)\n",
			summary.HighPotentialZones, summary.PopulationHighPotential)

		if len(summary.Boroughs) > 0 {
			fmt.Println("\nHigh-potential zones by borough:")
			for _, b := range summary.Boroughs {
				fmt.Printf("  %-24s %4d zones  population %d\n", b.Borough, b.ZoneCount, b.Population)
			}
		}

		topN, _ := cmd.Flags().GetInt("top")
		top := report.TopZones(metrics, topN)
		if len(top) > 0 {
			fmt.Printf("\nTop %d zones by attractiveness:\n", len(top))
			for i, m := range top {
				fmt.Printf("  %2d. %s  density %.0f  distance %.0f m  index %.1f\n",
					i+1, m.ZoneID, m.Density, m.DistanceM, m.Attractiveness)
			}
		}

		return nil
	},
}

func init() {
	reportCmd.Flags().Int("top", 10, "number of zones in the attractiveness ranking")
	rootCmd.AddCommand(reportCmd)
}
