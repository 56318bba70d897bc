package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/urbanmetrics/transitgap/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "transitgap",
	Short: "Identify high-density, low-access urban zones",
	Long:  "Joins census-tract population with public-transport stop locations, computes per-zone density and distance to the nearest stop, and flags high-potential zones for transport investment.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
