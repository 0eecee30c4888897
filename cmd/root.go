package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/auphere/places-sync/internal/config"
	"github.com/auphere/places-sync/internal/geo"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "places-sync",
	Short: "City-wide Google Places synchronization",
	Long:  "Sweeps city boundaries cell by cell against the Google Places API, enriches each hit with details, reviews and photos, and upserts everything into the place store.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		if cfg.Geo.BoundariesFile != "" {
			if err := geo.RegisterBoundariesFromFile(cfg.Geo.BoundariesFile); err != nil {
				return fmt.Errorf("load boundaries: %w", err)
			}
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
