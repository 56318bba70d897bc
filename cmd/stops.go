package main

import (
	"fmt"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/urbanmetrics/transitgap/internal/ingest"
)

var stopsCmd = &cobra.Command{
	Use:   "stops",
	Short: "Inspect the configured transport stop layers",
	Long: `Reads every configured stop layer, filters out non-point geometries,
and prints per-mode stop counts. Useful for validating the union before
running an analysis.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if layers, _ := cmd.Flags().GetStringSlice("stops"); len(layers) > 0 {
			parsed, err := parseStopLayers(layers)
			if err != nil {
				return err
			}
			cfg.Stops.Layers = parsed
		}
		if len(cfg.Stops.Layers) == 0 {
			return eris.New("stops: no stop layers configured (--stops or stops.layers)")
		}

		stops, counts, dropped, err := ingest.ReadStops(cfg.Stops.Layers)
		if err != nil {
			return err
		}

		modes := make([]string, 0, len(counts))
		for mode := range counts {
			modes = append(modes, mode)
		}
		sort.Strings(modes)

		fmt.Println("Stops per mode:")
		for _, mode := range modes {
			fmt.Printf("  %s: %d\n", mode, counts[mode])
		}
		fmt.Printf("Total: %d (non-point records dropped: %d)\n", len(stops), dropped)

		zap.L().Info("stop layers inspected",
			zap.Int("total", len(stops)),
			zap.Int("non_point_dropped", dropped),
		)
		return nil
	},
}

func init() {
	stopsCmd.Flags().StringSlice("stops", nil, "stop layer as mode=path (repeatable)")
	rootCmd.AddCommand(stopsCmd)
}
