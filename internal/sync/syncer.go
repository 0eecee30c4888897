package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/auphere/places-sync/internal/geo"
	"github.com/auphere/places-sync/internal/place"
	"github.com/auphere/places-sync/pkg/google"
)

// Options tunes the pacing of a Syncer.
type Options struct {
	// RequestsPerSecond caps API calls via a token bucket. Zero means 10.
	RequestsPerSecond float64
	// DetailDelay is the pause after processing each place record.
	DetailDelay time.Duration
	// CellDelay is the pause after each grid cell.
	CellDelay time.Duration
	// CityDelay is the pause between cities in a batch run.
	CityDelay time.Duration
}

// DefaultOptions matches the pacing of the production sync jobs.
func DefaultOptions() Options {
	return Options{
		RequestsPerSecond: 10,
		DetailDelay:       100 * time.Millisecond,
		CellDelay:         100 * time.Millisecond,
		CityDelay:         5 * time.Second,
	}
}

// Syncer imports places cell by cell from a source into the store.
type Syncer struct {
	store   place.Store
	source  google.Client
	limiter *rate.Limiter
	opts    Options
}

// New creates a Syncer with the given dependencies.
func New(store place.Store, source google.Client, opts Options) *Syncer {
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = 10
	}
	return &Syncer{
		store:   store,
		source:  source,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		opts:    opts,
	}
}

// SyncCity covers a city with a search grid and upserts every place found.
// An unknown city fails fast with no stats. A rate-limit response from the
// source aborts the remaining cells; the partial stats are still returned.
func (s *Syncer) SyncCity(ctx context.Context, city, placeType string, cellKM float64, radiusM int) (*Stats, error) {
	cells, err := geo.GenerateForCity(city, cellKM, radiusM)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	stats := NewStats(city)
	log := zap.L().With(zap.String("city", city), zap.String("place_type", placeType))
	log.Info("starting sync", zap.Int("cells", len(cells)))

cellLoop:
	for i, cell := range cells {
		if ctx.Err() != nil {
			break
		}

		if err := s.limiter.Wait(ctx); err != nil {
			break
		}
		results, err := s.source.NearbySearch(ctx, cell.Latitude, cell.Longitude, cell.RadiusM, placeType, "")
		if err != nil {
			msg := fmt.Sprintf("API error for cell %s: %v", cell.CellID, err)
			stats.Errors = append(stats.Errors, msg)
			log.Error("cell search failed", zap.String("cell_id", cell.CellID), zap.Error(err))

			if errors.Is(err, google.ErrRateLimited) {
				log.Error("rate limit exceeded, stopping sync")
				break cellLoop
			}
			sleepCtx(ctx, s.opts.CellDelay)
			continue
		}

		stats.APIRequests++
		stats.PlacesRetrieved += len(results)
		log.Debug("cell searched",
			zap.String("cell_id", cell.CellID),
			zap.Int("cell_index", i+1),
			zap.Int("results", len(results)),
		)

		for _, gp := range results {
			s.syncPlace(ctx, gp, city, stats, log)
		}

		sleepCtx(ctx, s.opts.CellDelay)
	}

	stats.Complete(time.Since(start))
	log.Info("sync completed",
		zap.Int("created", stats.PlacesCreated),
		zap.Int("skipped", stats.PlacesSkipped),
		zap.Int("failed", stats.PlacesFailed),
		zap.Float64("duration_seconds", stats.DurationSeconds),
	)
	return stats, nil
}

// syncPlace enriches one record via Place Details, upserts it, and stores
// its reviews and photos. Detail failures degrade to the basic record.
func (s *Syncer) syncPlace(ctx context.Context, gp google.Place, city string, stats *Stats, log *zap.Logger) {
	detailed := &gp
	if err := s.limiter.Wait(ctx); err != nil {
		return
	}
	if d, err := s.source.PlaceDetails(ctx, gp.PlaceID); err != nil {
		log.Warn("could not fetch details, using basic info",
			zap.String("name", gp.Name), zap.Error(err))
	} else {
		stats.APIRequests++
		detailed = d
	}

	req := MapPlace(*detailed, city)

	p, created, err := s.store.UpsertPlace(ctx, req)
	if err != nil {
		stats.PlacesFailed++
		msg := fmt.Sprintf("failed to store %s: %v", req.Name, err)
		stats.Errors = append(stats.Errors, msg)
		log.Warn("upsert failed", zap.String("name", req.Name), zap.Error(err))
		return
	}
	if created {
		stats.PlacesCreated++
	} else {
		stats.PlacesSkipped++
	}

	for _, review := range detailed.Reviews {
		if review.Rating == nil {
			continue
		}

		postedAt := time.Now().UTC()
		if review.Time > 0 {
			postedAt = time.Unix(review.Time, 0).UTC()
		}
		sourceID := fmt.Sprintf("%s_%d", detailed.PlaceID, review.Time)

		err := s.store.UpsertReview(ctx, place.CreateReviewRequest{
			PlaceID:  p.ID,
			Source:   "google",
			SourceID: &sourceID,
			Author:   strPtr(review.AuthorName),
			Rating:   *review.Rating,
			Text:     strPtr(review.Text),
			PostedAt: postedAt,
			HasPhoto: review.ProfilePhotoURL != "",
		})
		if err != nil {
			log.Warn("failed to save review", zap.String("name", req.Name), zap.Error(err))
			continue
		}
		stats.ReviewsCreated++
	}

	for idx, photo := range detailed.Photos {
		ref := photo.PhotoReference
		err := s.store.UpsertPhoto(ctx, place.CreatePhotoRequest{
			PlaceID:              p.ID,
			Source:               "google",
			SourcePhotoReference: &ref,
			PhotoURL:             s.source.PhotoURL(ref, 800),
			ThumbnailURL:         strPtr(s.source.PhotoURL(ref, 400)),
			Width:                intPtr(photo.Width),
			Height:               intPtr(photo.Height),
			Attribution:          strPtr(strings.Join(photo.HTMLAttributions, ", ")),
			IsPrimary:            idx == 0,
			DisplayOrder:         idx,
		})
		if err != nil {
			log.Warn("failed to save photo", zap.String("name", req.Name), zap.Error(err))
			continue
		}
		stats.PhotosCreated++
	}

	sleepCtx(ctx, s.opts.DetailDelay)
}

// SyncCities runs SyncCity sequentially for each city. A failed city yields
// an error-only stats record; the batch continues.
func (s *Syncer) SyncCities(ctx context.Context, cities []string, placeType string) []*Stats {
	all := make([]*Stats, 0, len(cities))

	for i, city := range cities {
		stats, err := s.SyncCity(ctx, city, placeType, 0, 0)
		if err != nil {
			zap.L().Error("city sync failed", zap.String("city", city), zap.Error(err))
			stats = NewStats(city)
			stats.Errors = append(stats.Errors, fmt.Sprintf("sync failed: %v", err))
			stats.Complete(0)
		}
		all = append(all, stats)

		if i < len(cities)-1 {
			sleepCtx(ctx, s.opts.CityDelay)
		}
	}
	return all
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}

func intPtr(n int) *int {
	if n == 0 {
		return nil
	}
	return &n
}
