package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/auphere/places-sync/internal/db"
	"github.com/auphere/places-sync/internal/place"
	"github.com/auphere/places-sync/internal/sync"
	"github.com/auphere/places-sync/pkg/google"
)

// openStore builds the configured store backend and runs migrations.
func openStore(ctx context.Context) (place.Store, error) {
	var store place.Store

	switch cfg.Store.Driver {
	case "postgres":
		pool, err := db.New(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		store = place.NewPostgresStore(pool)
	case "sqlite":
		s, err := place.NewSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		store = s
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

func newGoogleClient() (google.Client, error) {
	if cfg.Google.APIKey == "" {
		return nil, eris.New("google.api_key is required (PLACES_GOOGLE_API_KEY)")
	}
	var opts []google.Option
	if cfg.Google.BaseURL != "" {
		opts = append(opts, google.WithBaseURL(cfg.Google.BaseURL))
	}
	return google.NewClient(cfg.Google.APIKey, opts...), nil
}

func syncOptions() sync.Options {
	opts := sync.DefaultOptions()
	if cfg.Sync.RequestsPerSecond > 0 {
		opts.RequestsPerSecond = cfg.Sync.RequestsPerSecond
	}
	if cfg.Sync.DetailDelayMS > 0 {
		opts.DetailDelay = time.Duration(cfg.Sync.DetailDelayMS) * time.Millisecond
	}
	if cfg.Sync.CellDelayMS > 0 {
		opts.CellDelay = time.Duration(cfg.Sync.CellDelayMS) * time.Millisecond
	}
	if cfg.Sync.CityDelayMS > 0 {
		opts.CityDelay = time.Duration(cfg.Sync.CityDelayMS) * time.Millisecond
	}
	return opts
}
