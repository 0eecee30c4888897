package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/auphere/places-sync/internal/sync"
)

var (
	syncPlaceType string
	syncCellKM    float64
	syncRadiusM   int
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize places from Google",
}

var syncCityCmd = &cobra.Command{
	Use:   "city <name>",
	Short: "Sync a single city",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		source, err := newGoogleClient()
		if err != nil {
			return err
		}

		syncer := sync.New(store, source, syncOptions())
		stats, err := syncer.SyncCity(ctx, args[0], syncPlaceType, cellKM(), radiusM())
		if err != nil {
			return eris.Wrapf(err, "sync city %s", args[0])
		}

		return printJSON(stats)
	},
}

func cellKM() float64 {
	if syncCellKM > 0 {
		return syncCellKM
	}
	return cfg.Sync.CellKM
}

func radiusM() int {
	if syncRadiusM > 0 {
		return syncRadiusM
	}
	return cfg.Sync.RadiusM
}

func splitCities(raw string) []string {
	var out []string
	for _, c := range strings.Split(raw, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	syncCmd.PersistentFlags().StringVar(&syncPlaceType, "type", "", "restrict search to one place type (e.g. restaurant)")
	syncCmd.PersistentFlags().Float64Var(&syncCellKM, "cell-km", 0, "grid cell size in km (default from config)")
	syncCmd.PersistentFlags().IntVar(&syncRadiusM, "radius-m", 0, "search radius per cell in meters (default from config)")

	syncCmd.AddCommand(syncCityCmd)
	syncCmd.AddCommand(syncBatchCmd)
	syncCmd.AddCommand(syncStatusCmd)
	rootCmd.AddCommand(syncCmd)
}
