package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/auphere/places-sync/internal/sync"
)

var syncBatchCmd = &cobra.Command{
	Use:   "batch <city,city,...>",
	Short: "Sync several cities sequentially",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cities := splitCities(args[0])
		if len(cities) == 0 {
			return eris.New("no cities given")
		}

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
		details := syncer.SyncCities(ctx, cities, syncPlaceType)
		summary := sync.Aggregate(details)

		zap.L().Info("batch finished",
			zap.Int("cities", len(details)),
			zap.Int("created", summary.PlacesCreated),
			zap.Int("errors", len(summary.Errors)),
		)

		return printJSON(map[string]any{"summary": summary, "details": details})
	},
}
